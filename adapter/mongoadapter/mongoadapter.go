package mongoadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"go.schemadrift.dev/mschema/adapter"
	"go.schemadrift.dev/mschema/validator"
)

// Adapter implements adapter.Adapter against a live MongoDB database,
// identified once at construction (spec §6.7's default_db).
type Adapter struct {
	client *mongo.Client
	db     *mongo.Database
}

// Dial connects to uri and binds to database. Callers are responsible for
// calling Close when done.
func Dial(ctx context.Context, uri, database string) (*Adapter, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongoadapter: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongoadapter: ping: %w", err)
	}

	return &Adapter{client: client, db: client.Database(database)}, nil
}

// Close disconnects the underlying client.
func (a *Adapter) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}

// Count implements adapter.Adapter.
func (a *Adapter) Count(ctx context.Context, collection string) (int64, error) {
	n, err := a.db.Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("mongoadapter: count %s: %w", collection, err)
	}

	return n, nil
}

// Sample implements adapter.Adapter via the $sample aggregation stage,
// which MongoDB itself guarantees is a uniform random draw.
func (a *Adapter) Sample(ctx context.Context, collection string, n int) (adapter.Cursor, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: n}}}},
	}

	cur, err := a.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongoadapter: sample %s: %w", collection, err)
	}

	return &cursor{raw: cur}, nil
}

// Iterate implements adapter.Adapter, ordering by "_id" ascending and
// skipping any key at or before afterKey.
func (a *Adapter) Iterate(ctx context.Context, collection string, afterKey adapter.Key) (adapter.KeyedCursor, error) {
	filter := bson.D{}

	if afterKey != "" {
		filter = bson.D{{Key: "_id", Value: bson.D{{Key: "$gt", Value: string(afterKey)}}}}
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := a.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongoadapter: iterate %s: %w", collection, err)
	}

	return &keyedCursor{raw: cur}, nil
}

// UpdateOne implements adapter.Adapter, translating a mutation set into a
// single $set/$unset update document.
func (a *Adapter) UpdateOne(ctx context.Context, collection string, key adapter.Key, mutation adapter.Mutation) (adapter.MatchResult, error) {
	if mutation.IsEmpty() {
		return adapter.MatchResult{Matched: 1, Modified: 0}, nil
	}

	sets := bson.M{}
	unsets := bson.M{}

	for _, f := range mutation.Fields {
		if f.Unset {
			unsets[f.Path.String()] = ""
		} else {
			sets[f.Path.String()] = toNative(f.Value)
		}
	}

	update := bson.D{}
	if len(sets) > 0 {
		update = append(update, bson.E{Key: "$set", Value: sets})
	}

	if len(unsets) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unsets})
	}

	res, err := a.db.Collection(collection).UpdateOne(ctx, bson.D{{Key: "_id", Value: string(key)}}, update)
	if err != nil {
		return adapter.MatchResult{}, fmt.Errorf("mongoadapter: update_one %s/%s: %w", collection, key, err)
	}

	return adapter.MatchResult{Matched: int(res.MatchedCount), Modified: int(res.ModifiedCount)}, nil
}

// SetValidator implements adapter.Adapter via the collMod command.
func (a *Adapter) SetValidator(ctx context.Context, collection string, doc validator.Document, level adapter.ValidatorLevel, action adapter.ValidatorAction) error {
	var validatorDoc bson.M

	if err := json.Unmarshal(doc, &validatorDoc); err != nil {
		return fmt.Errorf("mongoadapter: decode validator document: %w", err)
	}

	cmd := bson.D{
		{Key: "collMod", Value: collection},
		{Key: "validator", Value: validatorDoc},
		{Key: "validationLevel", Value: string(level)},
		{Key: "validationAction", Value: string(action)},
	}

	if err := a.db.RunCommand(ctx, cmd).Err(); err != nil {
		return fmt.Errorf("mongoadapter: set_validator %s: %w", collection, err)
	}

	return nil
}

type cursor struct {
	raw *mongo.Cursor
}

func (c *cursor) Next(ctx context.Context) (adapter.Document, bool, error) {
	if !c.raw.Next(ctx) {
		if err := c.raw.Err(); err != nil {
			return adapter.Document{}, false, fmt.Errorf("mongoadapter: cursor: %w", err)
		}

		return adapter.Document{}, false, nil
	}

	doc, err := fromRaw(c.raw.Current)
	if err != nil {
		return adapter.Document{}, false, err
	}

	return doc, true, nil
}

func (c *cursor) Close() error {
	return c.raw.Close(context.Background())
}

type keyedCursor struct {
	raw *mongo.Cursor
}

func (c *keyedCursor) Next(ctx context.Context) (adapter.Key, adapter.Document, bool, error) {
	if !c.raw.Next(ctx) {
		if err := c.raw.Err(); err != nil {
			return "", adapter.Document{}, false, fmt.Errorf("mongoadapter: cursor: %w", err)
		}

		return "", adapter.Document{}, false, nil
	}

	doc, err := fromRaw(c.raw.Current)
	if err != nil {
		return "", adapter.Document{}, false, err
	}

	id, ok := doc.Object["_id"]
	if !ok {
		return "", adapter.Document{}, false, fmt.Errorf("mongoadapter: document missing _id")
	}

	return adapter.Key(fmt.Sprint(id.Raw)), doc, true, nil
}

func (c *keyedCursor) Close() error {
	return c.raw.Close(context.Background())
}
