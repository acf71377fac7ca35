package mongoadapter

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"go.schemadrift.dev/mschema/docvalue"
	"go.schemadrift.dev/mschema/lattice"
)

// fromRaw decodes a raw BSON document into a tagged docvalue.Value,
// dispatching on each element's wire type rather than decoding into a Go
// map[string]any first — that would collapse int32/int64/double/decimal
// into whatever the driver's generic decode picks, losing exactly the
// numeric fidelity spec §4.1 requires preserving.
func fromRaw(raw bson.Raw) (docvalue.Value, error) {
	elems, err := raw.Elements()
	if err != nil {
		return docvalue.Value{}, fmt.Errorf("mongoadapter: decode document: %w", err)
	}

	fields := make(map[string]docvalue.Value, len(elems))

	for _, elem := range elems {
		v, err := fromRawValue(elem.Value())
		if err != nil {
			return docvalue.Value{}, fmt.Errorf("mongoadapter: decode field %q: %w", elem.Key(), err)
		}

		fields[elem.Key()] = v
	}

	return docvalue.NewObject(fields), nil
}

func fromRawValue(v bson.RawValue) (docvalue.Value, error) {
	switch v.Type {
	case bson.TypeString:
		return docvalue.NewScalar(lattice.String, v.StringValue()), nil
	case bson.TypeInt32:
		return docvalue.NewScalar(lattice.Int32, v.Int32()), nil
	case bson.TypeInt64:
		return docvalue.NewScalar(lattice.Int64, v.Int64()), nil
	case bson.TypeDouble:
		return docvalue.NewScalar(lattice.Double, v.Double()), nil
	case bson.TypeDecimal128:
		dec, ok := v.Decimal128OK()
		if !ok {
			return docvalue.Value{}, fmt.Errorf("mongoadapter: invalid decimal128")
		}

		return docvalue.NewScalar(lattice.Decimal, dec), nil
	case bson.TypeBoolean:
		return docvalue.NewScalar(lattice.Bool, v.Boolean()), nil
	case bson.TypeDateTime:
		return docvalue.NewScalar(lattice.Date, bson.DateTime(v.DateTime())), nil
	case bson.TypeObjectID:
		oid, ok := v.ObjectIDOK()
		if !ok {
			return docvalue.Value{}, fmt.Errorf("mongoadapter: invalid objectId")
		}

		return docvalue.NewScalar(lattice.ObjectID, oid), nil
	case bson.TypeBinary:
		subtype, data := v.Binary()

		return docvalue.NewScalar(lattice.Binary, bson.Binary{Subtype: subtype, Data: data}), nil
	case bson.TypeRegex:
		pattern, options := v.Regex()

		return docvalue.NewScalar(lattice.Regex, bson.Regex{Pattern: pattern, Options: options}), nil
	case bson.TypeTimestamp:
		t, i := v.Timestamp()

		return docvalue.NewScalar(lattice.Timestamp, bson.Timestamp{T: t, I: i}), nil
	case bson.TypeJavaScript:
		return docvalue.NewScalar(lattice.JavaScript, bson.JavaScript(v.JavaScript())), nil
	case bson.TypeMinKey:
		return docvalue.NewScalar(lattice.MinKey, bson.MinKey{}), nil
	case bson.TypeMaxKey:
		return docvalue.NewScalar(lattice.MaxKey, bson.MaxKey{}), nil
	case bson.TypeDBPointer:
		ns, oid := v.DBPointer()

		return docvalue.NewScalar(lattice.DBPointer, bson.DBPointer{DB: ns, Pointer: oid}), nil
	case bson.TypeNull:
		return docvalue.Null, nil
	case bson.TypeEmbeddedDocument:
		doc, ok := v.DocumentOK()
		if !ok {
			return docvalue.Value{}, fmt.Errorf("mongoadapter: invalid embedded document")
		}

		return fromRaw(doc)
	case bson.TypeArray:
		arr, ok := v.ArrayOK()
		if !ok {
			return docvalue.Value{}, fmt.Errorf("mongoadapter: invalid array")
		}

		values, err := arr.Values()
		if err != nil {
			return docvalue.Value{}, fmt.Errorf("mongoadapter: decode array: %w", err)
		}

		elems := make([]docvalue.Value, 0, len(values))

		for _, item := range values {
			ev, err := fromRawValue(item)
			if err != nil {
				return docvalue.Value{}, err
			}

			elems = append(elems, ev)
		}

		return docvalue.NewArray(elems), nil
	default:
		return docvalue.Value{}, fmt.Errorf("mongoadapter: unsupported bson type %v", v.Type)
	}
}

// toNative converts a docvalue.Value back into the Go value the driver's
// own bson marshaler expects, for building $set update documents. Raw
// already carries the exact driver-native type for every non-container
// tag (see fromRawValue above), so containers are the only case handled
// recursively here.
func toNative(v docvalue.Value) any {
	switch v.Tag {
	case lattice.Null:
		return nil
	case lattice.Object:
		m := bson.M{}
		for k, child := range v.Object {
			m[k] = toNative(child)
		}

		return m
	case lattice.Array:
		arr := make(bson.A, 0, len(v.Array))
		for _, child := range v.Array {
			arr = append(arr, toNative(child))
		}

		return arr
	default:
		return v.Raw
	}
}
