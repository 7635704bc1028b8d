// Package tracing wraps OpenTelemetry so that engine operations open a span
// per call without importing the SDK directly. Spans are no-ops until Init
// or InitWithExporter installs a provider.
package tracing
