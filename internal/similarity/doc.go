// Package similarity ranks catalog titles against a query title.
package similarity
