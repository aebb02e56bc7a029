// Package logging builds the slog loggers used across reelsplit.
//
// It offers a console handler that prints one aligned line per record with
// the component promoted into the message prefix, and a JSON handler for
// machine consumption. Attr helpers keep call sites terse and field names
// consistent (component, job_id, correlation_id).
package logging
