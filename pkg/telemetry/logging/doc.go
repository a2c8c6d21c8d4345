// Package logging provides structured logging for Saturn built on log/slog.
//
// The logger supports JSON and text output formats, configurable levels,
// and automatic redaction of credential-like attribute values. Every
// component receives a *slog.Logger scoped with a "component" attribute.
package logging
