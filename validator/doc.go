// Package validator implements the schema-to-validator projection from
// spec §4.5: a pure function mapping a schema tree to the database
// engine's native JSON-Schema-style validator document, using the
// bsonType keyword, object properties, required arrays (from the derived
// Required flag) and array items. It performs no I/O — the adapter
// package is responsible for installing the resulting [Document] on a
// live collection (spec §4.8's set_validator).
package validator
