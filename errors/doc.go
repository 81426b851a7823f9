// Package errors provides structured error types for the js-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: the offending value, host/engine type names,
// and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindRange).
//		Value(3.5).
//		HostType("int32").
//		Detail("can't treat 3.5 as int32").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Range(3.5, "int32")
//	err := errors.Unresolved("T")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
