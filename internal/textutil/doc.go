// Package textutil fingerprints movie titles for fuzzy matching.
//
// A fingerprint is a TF-IDF weighted vector over lowercase word tokens and
// character trigrams, so both reordered words and small typos still overlap.
// TitleIndex uses it to suggest catalog titles for a query that has no exact
// match.
package textutil
