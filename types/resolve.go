package types

import (
	"github.com/wippyai/js-runtime/errors"
)

// Canonicalize normalizes d to its canonical form. Wildcards with an upper
// bound collapse to the bound; wildcards with only a lower bound are
// rejected, the engine world has no contravariant container distinction.
// Arrays and named arguments canonicalize recursively. Variables survive
// canonicalization; they only disappear through Resolve.
func Canonicalize(d Descriptor) (Descriptor, error) {
	switch t := d.(type) {
	case Primitive, Variable:
		return d, nil
	case Nullable:
		elem, err := Canonicalize(t.Elem)
		if err != nil {
			return nil, err
		}
		return Nullable{Elem: elem}, nil
	case Array:
		elem, err := Canonicalize(t.Elem)
		if err != nil {
			return nil, err
		}
		return Array{Elem: elem}, nil
	case Named:
		if len(t.Args) == 0 {
			return t, nil
		}
		args := make([]Descriptor, len(t.Args))
		for i, arg := range t.Args {
			a, err := Canonicalize(arg)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return Named{Name: t.Name, Params: t.Params, Args: args}, nil
	case Wildcard:
		if t.Upper != nil {
			return Canonicalize(t.Upper)
		}
		return nil, errors.Unsupported(errors.PhaseResolve,
			"lower-bounded wildcard is not representable in the engine value model")
	default:
		return nil, errors.InvalidInput(errors.PhaseResolve, "unknown descriptor %T", d)
	}
}

// Resolve substitutes type variables in d using the owner's actual type
// arguments and returns the canonical concrete shape. Resolution is
// deterministic and idempotent: resolving the same pair twice yields equal
// descriptors usable as equal cache keys.
//
// A variable with no matching argument on the owner is a terminal failure
// reported with an unresolved-type error; callers constructing adapters
// must decline rather than proceed.
func Resolve(owner Descriptor, d Descriptor) (Descriptor, error) {
	switch t := d.(type) {
	case Primitive:
		return t, nil
	case Nullable:
		elem, err := Resolve(owner, t.Elem)
		if err != nil {
			return nil, err
		}
		return Nullable{Elem: elem}, nil
	case Array:
		// An unresolved component propagates as unresolved for the array.
		elem, err := Resolve(owner, t.Elem)
		if err != nil {
			return nil, err
		}
		return Array{Elem: elem}, nil
	case Named:
		if len(t.Args) == 0 {
			return t, nil
		}
		args := make([]Descriptor, len(t.Args))
		for i, arg := range t.Args {
			a, err := Resolve(owner, arg)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return Named{Name: t.Name, Params: t.Params, Args: args}, nil
	case Variable:
		arg, ok := substitute(owner, t.Name)
		if !ok || containsVariable(arg) {
			return nil, errors.Unresolved(t.Name)
		}
		return Canonicalize(arg)
	case Wildcard:
		c, err := Canonicalize(t)
		if err != nil {
			return nil, err
		}
		return Resolve(owner, c)
	default:
		return nil, errors.InvalidInput(errors.PhaseResolve, "unknown descriptor %T", d)
	}
}

// substitute looks up the actual argument bound to the named type parameter
// on the owner. Only an instantiated Named owner can substitute.
func substitute(owner Descriptor, name string) (Descriptor, bool) {
	n, ok := owner.(Named)
	if !ok || len(n.Args) == 0 {
		return nil, false
	}
	for i, param := range n.Params {
		if param == name && i < len(n.Args) {
			return n.Args[i], true
		}
	}
	return nil, false
}

func containsVariable(d Descriptor) bool {
	switch t := d.(type) {
	case Variable:
		return true
	case Nullable:
		return containsVariable(t.Elem)
	case Array:
		return containsVariable(t.Elem)
	case Named:
		for _, arg := range t.Args {
			if containsVariable(arg) {
				return true
			}
		}
		return false
	case Wildcard:
		return (t.Upper != nil && containsVariable(t.Upper)) ||
			(t.Lower != nil && containsVariable(t.Lower))
	default:
		return false
	}
}
