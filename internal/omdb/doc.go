// Package omdb is a minimal client for the OMDb title lookup endpoint.
//
// Only the "t" (exact title) query is used. Responses flow through a
// respcache.Fetcher so callers decide whether lookups are cached in memory,
// on disk, or not at all.
package omdb
