package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:      PhaseConvert,
				Kind:       KindRange,
				HostType:   "int32",
				EngineType: "float64",
				Detail:     "can't treat 3.5 as int32",
			},
			contains: []string{"[convert]", "range", "int32", "float64", "can't treat 3.5 as int32"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseEval,
				Kind:  KindEvaluation,
			},
			contains: []string{"[eval]", "evaluation"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLifecycle,
				Kind:   KindClosed,
				Detail: "the context is closed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[lifecycle]", "closed", "the context is closed", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEval,
		Kind:  KindEvaluation,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := Range(3.5, "int32")

	if !errors.Is(err, &Error{Phase: PhaseConvert, Kind: KindRange}) {
		t.Error("expected Is to match on phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseConvert, Kind: KindTypeMismatch}) {
		t.Error("expected Is to reject different kind")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseAdapt, KindNoAdapter).
		EngineType("List<T>").
		Detail("no adapter for %s", "List<T>").
		Build()

	if err.Phase != PhaseAdapt || err.Kind != KindNoAdapter {
		t.Fatalf("wrong phase/kind: %v %v", err.Phase, err.Kind)
	}
	if err.Detail != "no adapter for List<T>" {
		t.Fatalf("wrong detail: %q", err.Detail)
	}
}

func TestRange_NamesValueAndTarget(t *testing.T) {
	err := Range(3.5, "int32")
	msg := err.Error()
	if !strings.Contains(msg, "3.5") || !strings.Contains(msg, "int32") {
		t.Fatalf("range error must name value and target type, got %q", msg)
	}
	if err.Value != 3.5 {
		t.Fatalf("expected offending value 3.5, got %v", err.Value)
	}
}

func TestIsUnresolved(t *testing.T) {
	if !IsUnresolved(Unresolved("T")) {
		t.Error("expected IsUnresolved for Unresolved error")
	}
	if IsUnresolved(NoAdapter("int32")) {
		t.Error("NoAdapter should not be unresolved")
	}
	if IsUnresolved(errors.New("plain")) {
		t.Error("plain error should not be unresolved")
	}
}
