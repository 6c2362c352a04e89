// Package recommend runs the user-facing flow: look up the selected title,
// resolve a poster for each neighbour in rank order, and collect notices the
// surfaces show inline.
package recommend
