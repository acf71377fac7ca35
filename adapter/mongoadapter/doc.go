// Package mongoadapter implements adapter.Adapter against a live MongoDB
// deployment using go.mongodb.org/mongo-driver/v2. It is the one
// out-of-pack dependency this module takes on: no retrieved example repo
// imports a MongoDB driver, so this package is named rather than grounded
// (see DESIGN.md) — the spec's collection/document/validator model maps
// directly onto Mongo's own, making it the obvious concrete adapter.
package mongoadapter
