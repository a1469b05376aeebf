// Package logging provides file-based logging with rotation for the
// resume retrieval service. Setup writes JSON logs to a rotating file,
// optionally mirrored to stderr.
//
// SetupDefault, which the serve command calls on every start, writes
// debug-level logs to ~/.resumeretrieval/logs/server.log and to stderr.
package logging
