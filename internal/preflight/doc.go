// Package preflight provides readiness checks for the files, directories and
// external services moviematch depends on.
//
// The CLI "moviematch status" command runs RunAll and renders the results.
// Checks for optional features report Optional so a missing poster
// credential shows as a warning rather than a failure.
package preflight
