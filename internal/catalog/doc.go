// Package catalog loads the offline-built title list and similarity matrix
// and exposes them as an immutable, index-aligned handle.
//
// Titles may be stored as CSV (with a "title" header column) or JSON (an
// array of strings or of objects carrying a "title" field). The matrix may be
// JSON, header-less CSV, or a NumPy .npy file holding a little-endian 2-D
// float64 or float32 array in C order. Loaders are chosen by file extension.
//
// A Catalog is safe for concurrent readers; nothing mutates it after Load.
package catalog
