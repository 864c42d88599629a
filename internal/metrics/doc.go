// Package metrics records pipeline measurements.
//
// Components depend on the Recorder interface and default to NoopRecorder,
// so no call site needs a nil check. PrometheusRecorder is the real
// implementation; the CLI exposes it over HTTP in watch mode or writes it
// as a textfile-collector file after a build.
package metrics
