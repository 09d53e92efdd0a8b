// Package errors provides the structured error type shared by the bus, the
// evaluation pipeline and the surrounding tooling. Every error carries a
// machine-readable code and a retryable flag; stage failures wrap their
// upstream cause so a failed pipeline reports the full chain of stages.
package errors
