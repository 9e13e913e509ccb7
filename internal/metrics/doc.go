// Package metrics defines the Prometheus metrics exported by photo-cull.
package metrics
