// Package config loads, normalizes, and validates moviematch configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OMDB_API_KEY, including values placed in a .env file next to the working
// directory. A missing OMDb credential is deliberately valid: the poster
// resolver degrades to placeholders instead of refusing to start.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, a known cache backend, and clear validation errors.
package config
