// Package metrics registers the Prometheus collectors moviematch exports on
// /metrics. Collectors live in the default registry and are recorded through
// the Record* helpers so call sites stay one line.
package metrics
