// Package web serves the browser page and JSON API.
//
// Routes:
//
//	GET /                         selection page; ?title= runs a recommendation, ?theme=dark|light
//	GET /api/titles               sorted catalog titles
//	GET /api/recommendations      ?title= recommendation result
//	GET /healthz                  liveness and catalog summary
//	GET /metrics                  Prometheus exposition
//
// The /api routes are rate limited per client IP.
package web
