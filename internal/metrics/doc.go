// Package metrics records pipeline counters behind a Recorder interface.
//
// Components receive a Recorder through injection and default to NoopRecorder, so no
// call site needs a nil check. The CLI swaps in a PrometheusRecorder when a textfile
// path is configured and writes the registry to that file on exit, for pickup by a
// node_exporter textfile collector.
package metrics
