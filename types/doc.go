// Package types defines the type-descriptor algebra used for adapter lookup.
//
// A Descriptor names one host value shape: a primitive kind, a nullable
// (pointer) wrapper, an array, a named parameterized type, a type variable
// awaiting substitution, or a bounded wildcard. Descriptors are built ahead
// of time from host type information; resolution is a pure function over
// the algebra and needs no runtime reflection.
//
// # Resolution
//
// Resolve substitutes type variables against a concrete owner type and
// canonicalizes the result:
//
//	owner := types.NewNamed("Box", []string{"T"}, types.Int32Type)
//	resolved, err := types.Resolve(owner, types.NewVariable("T"))
//	// resolved == types.Int32Type
//
// A variable that cannot be substituted is reported with an unresolved-type
// error; adapter factories treat that as "no adapter available".
//
// # Identity
//
// Key returns a canonical, structural identity string: two descriptors that
// denote the same concrete shape after substitution produce equal keys, so
// the adapter cache collapses wildcard spellings to one entry.
package types
