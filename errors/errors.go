package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve   Phase = "resolve"   // generic type resolution
	PhaseAdapt     Phase = "adapt"     // adapter construction
	PhaseConvert   Phase = "convert"   // host <-> engine conversion
	PhaseEval      Phase = "eval"      // script evaluation
	PhaseLifecycle Phase = "lifecycle" // context/runtime lifecycle
)

// Kind categorizes the error
type Kind string

const (
	KindUnresolved   Kind = "unresolved_type"
	KindNoAdapter    Kind = "no_adapter"
	KindRange        Kind = "range"
	KindTypeMismatch Kind = "type_mismatch"
	KindInvalidData  Kind = "invalid_data"
	KindEvaluation   Kind = "evaluation"
	KindClosed       Kind = "closed"
	KindUnsupported  Kind = "unsupported"
	KindInvalidInput Kind = "invalid_input"
	KindLeak         Kind = "leak"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	HostType   string
	EngineType string
	Detail     string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.HostType != "" || e.EngineType != "" {
		b.WriteString(": ")
		if e.HostType != "" && e.EngineType != "" {
			b.WriteString("host type ")
			b.WriteString(e.HostType)
			b.WriteString(", engine type ")
			b.WriteString(e.EngineType)
		} else if e.HostType != "" {
			b.WriteString("host type ")
			b.WriteString(e.HostType)
		} else {
			b.WriteString("engine type ")
			b.WriteString(e.EngineType)
		}
	}

	if e.Detail != "" {
		if e.HostType != "" || e.EngineType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// HostType sets the host-side type name
func (b *Builder) HostType(t string) *Builder {
	b.err.HostType = t
	return b
}

// EngineType sets the engine-side type name
func (b *Builder) EngineType(t string) *Builder {
	b.err.EngineType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Unresolved creates an unresolved-type-variable error.
// Adapter factories treat it as "no adapter available" and decline.
func Unresolved(variable string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnresolved,
		Detail: fmt.Sprintf("type variable %q could not be substituted", variable),
		Value:  variable,
	}
}

// IsUnresolved reports whether err signals an unresolved type variable
func IsUnresolved(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindUnresolved
}

// NoAdapter creates a depot-wide "no factory produced an adapter" error
func NoAdapter(typeKey string) *Error {
	return &Error{
		Phase:      PhaseAdapt,
		Kind:       KindNoAdapter,
		EngineType: typeKey,
		Detail:     fmt.Sprintf("no adapter available for %s", typeKey),
	}
}

// Range creates a conversion-range error naming the offending value and target type
func Range(value any, targetType string) *Error {
	return &Error{
		Phase:    PhaseConvert,
		Kind:     KindRange,
		HostType: targetType,
		Detail:   fmt.Sprintf("can't treat %v as %s", value, targetType),
		Value:    value,
	}
}

// TypeMismatch creates a conversion type-mismatch error
func TypeMismatch(expected, actual string) *Error {
	return &Error{
		Phase:      PhaseConvert,
		Kind:       KindTypeMismatch,
		EngineType: actual,
		Detail:     fmt.Sprintf("expected: %s, actual: %s", expected, actual),
	}
}

// InvalidData creates a conversion data error
func InvalidData(detail string, value any) *Error {
	return &Error{
		Phase:  PhaseConvert,
		Kind:   KindInvalidData,
		Detail: detail,
		Value:  value,
	}
}

// Evaluation creates an engine-evaluation error carrying the engine's diagnostic text
func Evaluation(diagnostic string, cause error) *Error {
	return &Error{
		Phase:  PhaseEval,
		Kind:   KindEvaluation,
		Detail: diagnostic,
		Cause:  cause,
	}
}

// Closed creates a lifecycle-misuse error for operations on a closed context/runtime
func Closed(what string) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("the %s is closed", what),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Leak creates an internal invariant-violation error for handle misuse.
// These indicate defects, not recoverable runtime conditions.
func Leak(detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindLeak,
		Detail: detail,
	}
}
