package types

import (
	"testing"

	"github.com/wippyai/js-runtime/errors"
)

func TestResolve_Primitives(t *testing.T) {
	owner := NewNamed("Owner", nil)

	for _, d := range []Descriptor{BoolType, Int8Type, Int32Type, Float64Type, RuneType, StringType} {
		r, err := Resolve(owner, d)
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", d, err)
		}
		if Key(r) != Key(d) {
			t.Fatalf("expected %s, got %s", Key(d), Key(r))
		}
	}
}

func TestResolve_VariableSubstitution(t *testing.T) {
	owner := NewNamed("Box", []string{"T"}, Int32Type)

	r, err := Resolve(owner, NewVariable("T"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if Key(r) != "int32" {
		t.Fatalf("expected int32, got %s", Key(r))
	}
}

func TestResolve_UnresolvedVariable(t *testing.T) {
	tests := []struct {
		name  string
		owner Descriptor
		d     Descriptor
	}{
		{"raw owner", NewNamed("Box", []string{"T"}), NewVariable("T")},
		{"unknown variable", NewNamed("Box", []string{"T"}, Int32Type), NewVariable("U")},
		{"non-named owner", Int32Type, NewVariable("T")},
		{"variable bound to variable", NewNamed("Box", []string{"T"}, NewVariable("U")), NewVariable("T")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.owner, tt.d)
			if !errors.IsUnresolved(err) {
				t.Fatalf("expected unresolved error, got %v", err)
			}
		})
	}
}

func TestResolve_ArrayPropagatesUnresolved(t *testing.T) {
	owner := NewNamed("Box", []string{"T"})

	_, err := Resolve(owner, NewArray(NewVariable("T")))
	if !errors.IsUnresolved(err) {
		t.Fatalf("expected unresolved error for array of unresolved component, got %v", err)
	}
}

func TestResolve_NestedArray(t *testing.T) {
	owner := NewNamed("Box", []string{"T"}, Int64Type)

	r, err := Resolve(owner, NewArray(NewArray(NewVariable("T"))))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if Key(r) != "[][]int64" {
		t.Fatalf("expected [][]int64, got %s", Key(r))
	}
}

func TestResolve_WildcardUpperBound(t *testing.T) {
	owner := NewNamed("Owner", nil)

	// "? extends int32" collapses to int32: wildcard spelling must not
	// produce a distinct cache key.
	r1, err := Resolve(owner, Wildcard{Upper: Int32Type})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	r2, err := Resolve(owner, Int32Type)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if Key(r1) != Key(r2) {
		t.Fatalf("wildcard spelling produced distinct keys: %s vs %s", Key(r1), Key(r2))
	}
}

func TestResolve_WildcardLowerBoundRejected(t *testing.T) {
	owner := NewNamed("Owner", nil)

	_, err := Resolve(owner, Wildcard{Lower: Int32Type})
	if err == nil {
		t.Fatal("expected lower-bounded wildcard to be rejected")
	}
}

func TestResolve_Deterministic(t *testing.T) {
	owner := NewNamed("Pair", []string{"K", "V"}, StringType, NewArray(Int32Type))
	d := NewNamed("Map", []string{"K", "V"}, NewVariable("K"), NewVariable("V"))

	r1, err := Resolve(owner, d)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	r2, err := Resolve(owner, d)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if Key(r1) != Key(r2) {
		t.Fatalf("resolution not deterministic: %s vs %s", Key(r1), Key(r2))
	}
	if Key(r1) != "Map<string,[]int32>" {
		t.Fatalf("unexpected key: %s", Key(r1))
	}

	// Idempotent: resolving a resolved descriptor is a no-op.
	r3, err := Resolve(owner, r1)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if Key(r3) != Key(r1) {
		t.Fatalf("resolution not idempotent: %s vs %s", Key(r3), Key(r1))
	}
}

func TestResolve_Nullable(t *testing.T) {
	owner := NewNamed("Box", []string{"T"}, Float64Type)

	r, err := Resolve(owner, NewNullable(NewVariable("T")))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if Key(r) != "*float64" {
		t.Fatalf("expected *float64, got %s", Key(r))
	}
}

func TestCanonicalize_CollapsesWildcards(t *testing.T) {
	d := NewArray(Wildcard{Upper: StringType})
	c, err := Canonicalize(d)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	if Key(c) != "[]string" {
		t.Fatalf("expected []string, got %s", Key(c))
	}
}
