// Package metrics exposes the daemon's runtime gauges and counters
// over a Prometheus /metrics endpoint.
package metrics
