// Package main implements the moviematch command-line interface.
//
// The binary lists the title catalog, prints recommendations for a single
// title, serves the browser page and JSON API, and maintains the poster
// response cache. Configuration is loaded lazily so commands such as
// `config init` work before a config file exists.
package main
