package types

import (
	"testing"

	"github.com/wippyai/js-runtime/errors"
)

func TestMethod_Signature(t *testing.T) {
	owner := NewNamed("Calculator", nil)

	tests := []struct {
		name   string
		ret    Descriptor
		params []Descriptor
		want   string
	}{
		{"add", Int32Type, []Descriptor{Int32Type, Int32Type}, "(II)I"},
		{"greet", StringType, []Descriptor{StringType}, "(Lstring;)Lstring;"},
		{"sum", Int64Type, []Descriptor{NewArray(Int64Type)}, "([J)J"},
		{"flags", VoidType, []Descriptor{BoolType, Int8Type, RuneType, Int16Type}, "(ZBCS)V"},
		{"scale", Float64Type, []Descriptor{Float32Type}, "(F)D"},
		{"boxed", NewNullable(Int32Type), []Descriptor{NewNullable(BoolType)}, "(Z)I"},
		{"matrix", NewArray(NewArray(Float64Type)), nil, "()[[D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMethod(owner, tt.name, tt.ret, tt.params...)
			if err != nil {
				t.Fatalf("NewMethod failed: %v", err)
			}
			if got := m.Signature(); got != tt.want {
				t.Fatalf("signature mismatch: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMethod_ResolvesAgainstOwner(t *testing.T) {
	owner := NewNamed("Box", []string{"T"}, StringType)

	m, err := NewMethod(owner, "get", NewVariable("T"))
	if err != nil {
		t.Fatalf("NewMethod failed: %v", err)
	}
	if Key(m.Return) != "string" {
		t.Fatalf("expected resolved return string, got %s", Key(m.Return))
	}
	if m.Signature() != "()Lstring;" {
		t.Fatalf("unexpected signature %s", m.Signature())
	}
}

func TestMethod_DeclinesUnresolved(t *testing.T) {
	owner := NewNamed("Box", []string{"T"})

	if _, err := NewMethod(owner, "get", NewVariable("T")); !errors.IsUnresolved(err) {
		t.Fatalf("expected unresolved error for return type, got %v", err)
	}
	if _, err := NewMethod(owner, "put", VoidType, NewVariable("T")); !errors.IsUnresolved(err) {
		t.Fatalf("expected unresolved error for parameter type, got %v", err)
	}
}

func TestMethod_String(t *testing.T) {
	owner := NewNamed("Calculator", nil)
	m, err := NewMethod(owner, "add", Int32Type, Int32Type, Int32Type)
	if err != nil {
		t.Fatalf("NewMethod failed: %v", err)
	}
	if got := m.String(); got != "int32 add(int32, int32)" {
		t.Fatalf("unexpected String(): %q", got)
	}
}
