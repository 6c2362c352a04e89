// Package respcache stores upstream HTTP response bodies with a time-based
// expiry so repeated metadata lookups do not leave the process.
//
// Callers depend on the Fetcher interface. Memory keeps entries in process and
// is what tests use; SQLite persists entries across runs in the same spirit as
// an on-disk requests cache. Passthrough disables caching entirely.
//
// Keys come from RequestKey, which hashes the request method and canonical
// URL so credentials embedded in query strings never reach storage.
package respcache
