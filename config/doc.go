// Package config resolves the external configuration surface from spec
// §6.7: a MongoDB connection string and default database name (both
// required), plus optional operational defaults for sample size, batch
// size, rate limiting, and an advisory-only AI recommender key ignored by
// the core.
//
// Resolution precedence, highest first: process environment, per-user
// local config ($XDG_CONFIG_HOME/mschema/config.yaml, falling back to
// $HOME/.config/mschema/config.yaml), project config (./.mschema.yaml in
// the current directory). Missing files at any layer are not an error;
// a missing mongodb_uri or default_db after all layers are merged is
// spec §7 error kind 1, a config error, and aborts before any I/O.
package config
