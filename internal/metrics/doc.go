// Package metrics provides build metrics for docsite.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so callers never check for nil:
//
//	svc := build.NewService(build.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// PrometheusRecorder registers its collectors on the supplied registry and
// HTTPHandler serves that registry for scraping while `docsite watch` runs.
package metrics
