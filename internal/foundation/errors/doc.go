// Package errors provides the classified error type used across docharvest.
//
// A ClassifiedError carries a category (config, validation, protocol, load, runtime,
// internal), a severity, structured context and the stack captured at Build time.
// The protocol driver renders that stack into the "traceback" field of line-mode
// error objects; the CLI adapter maps categories to process exit codes.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryProtocol, "invalid request JSON").
//		WithContext("line", 3).
//		Build()
package errors
