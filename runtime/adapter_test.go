package runtime

import (
	"reflect"
	"testing"

	"github.com/wippyai/js-runtime/errors"
	"github.com/wippyai/js-runtime/types"
)

// descMust builds the descriptor for the type of sample.
func descMust(t *testing.T, sample any) types.Descriptor {
	t.Helper()
	d, err := descriptorFor(reflect.TypeOf(sample))
	if err != nil {
		t.Fatalf("descriptorFor(%T) error = %v", sample, err)
	}
	return d
}

func TestDepotCachesByKey(t *testing.T) {
	depot := NewDepot()

	a1, err := depot.Adapter(types.NewArray(types.Int32Type))
	if err != nil {
		t.Fatalf("Adapter() error = %v", err)
	}
	a2, err := depot.Adapter(types.NewArray(types.Int32Type))
	if err != nil {
		t.Fatalf("Adapter() error = %v", err)
	}
	if a1 != a2 {
		t.Error("same descriptor produced distinct adapter instances")
	}
}

func TestDepotWildcardCollapses(t *testing.T) {
	depot := NewDepot()

	plain, err := depot.Adapter(types.NewArray(types.Int32Type))
	if err != nil {
		t.Fatalf("Adapter(plain) error = %v", err)
	}
	wild, err := depot.Adapter(types.NewArray(types.Wildcard{Upper: types.Int32Type}))
	if err != nil {
		t.Fatalf("Adapter(wildcard) error = %v", err)
	}
	if plain != wild {
		t.Error("wildcard spelling produced a distinct adapter instance")
	}
}

func TestDepotNoAdapter(t *testing.T) {
	depot := NewDepot()

	_, err := depot.Adapter(types.NewVariable("T"))
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.KindNoAdapter {
		t.Errorf("Adapter($T) error = %v, want no-adapter", err)
	}

	_, err = depot.Adapter(types.VoidType)
	if err == nil {
		t.Error("Adapter(void) error = nil, want no-adapter")
	}
}

func TestDepotLowerBoundRejected(t *testing.T) {
	depot := NewDepot()
	_, err := depot.Adapter(types.Wildcard{Lower: types.Int32Type})
	if err == nil {
		t.Error("Adapter(? super int32) error = nil, want unsupported")
	}
}

func TestNullableDoubleWrap(t *testing.T) {
	inner := Nullable(int32Adapter{})
	if Nullable(inner) != inner {
		t.Error("Nullable(Nullable(a)) produced a new wrapper")
	}
}

func TestNamedFallsBackToObject(t *testing.T) {
	ctx := newTestCtx(t)

	adapter, err := ctx.rt.Adapter(types.NewNamed("config", nil))
	if err != nil {
		t.Fatalf("Adapter(named) error = %v", err)
	}
	v, err := ctx.ToEngine(adapter, map[string]any{"debug": true})
	if err != nil {
		t.Fatalf("ToEngine() error = %v", err)
	}
	out, err := ctx.FromEngine(adapter, v)
	if err != nil {
		t.Fatalf("FromEngine() error = %v", err)
	}
	m, ok := out.(map[string]any)
	if !ok || m["debug"] != true {
		t.Errorf("round trip = %v, want map with debug=true", out)
	}
}

// pointFactory exercises custom factory ordering: it claims the named
// type "point" before the object fallback sees it.
type pointFactory struct{}

type point struct {
	X, Y int32
}

func (pointFactory) Create(depot *Depot, desc types.Descriptor) (TypeAdapter, error) {
	n, ok := desc.(types.Named)
	if !ok || n.Name != "point" {
		return nil, nil
	}
	return pointAdapter{}, nil
}

type pointAdapter struct{}

func (pointAdapter) ToEngine(s *Scope, value any) (JSValue, error) {
	p, ok := value.(point)
	if !ok {
		return nil, hostMismatch("point", value)
	}
	obj, err := s.NewObject()
	if err != nil {
		return nil, err
	}
	x, err := s.Int(p.X)
	if err != nil {
		return nil, err
	}
	if err := s.SetProperty(obj, "x", x); err != nil {
		return nil, err
	}
	y, err := s.Int(p.Y)
	if err != nil {
		return nil, err
	}
	if err := s.SetProperty(obj, "y", y); err != nil {
		return nil, err
	}
	return obj, nil
}

func (pointAdapter) FromEngine(s *Scope, value JSValue) (any, error) {
	obj, ok := value.(*JSObject)
	if !ok {
		return nil, errors.TypeMismatch("object", value.Tag().String())
	}
	var p point
	xv, err := s.GetProperty(obj, "x")
	if err != nil {
		return nil, err
	}
	xi, ok := xv.(*JSInt)
	if !ok {
		return nil, errors.TypeMismatch("int", xv.Tag().String())
	}
	p.X = xi.Int32()
	yv, err := s.GetProperty(obj, "y")
	if err != nil {
		return nil, err
	}
	yi, ok := yv.(*JSInt)
	if !ok {
		return nil, errors.TypeMismatch("int", yv.Tag().String())
	}
	p.Y = yi.Int32()
	return p, nil
}

func TestCustomFactory(t *testing.T) {
	ctx := newTestCtx(t, WithFactory(pointFactory{}))

	adapter, err := ctx.rt.Adapter(types.NewNamed("point", nil))
	if err != nil {
		t.Fatalf("Adapter(point) error = %v", err)
	}
	v, err := ctx.ToEngine(adapter, point{X: 3, Y: 4})
	if err != nil {
		t.Fatalf("ToEngine() error = %v", err)
	}
	out, err := ctx.FromEngine(adapter, v)
	if err != nil {
		t.Fatalf("FromEngine() error = %v", err)
	}
	if out != (point{X: 3, Y: 4}) {
		t.Errorf("round trip = %v, want {3 4}", out)
	}
}

func TestArrayOfCustomType(t *testing.T) {
	ctx := newTestCtx(t, WithFactory(pointFactory{}))

	// The array factory resolves its element adapter through the depot,
	// picking up the custom factory.
	adapter, err := ctx.rt.Adapter(types.NewArray(types.NewNamed("point", nil)))
	if err != nil {
		t.Fatalf("Adapter([]point) error = %v", err)
	}
	v, err := ctx.ToEngine(adapter, []any{point{1, 2}, point{3, 4}})
	if err != nil {
		t.Fatalf("ToEngine() error = %v", err)
	}
	out, err := ctx.FromEngine(adapter, v)
	if err != nil {
		t.Fatalf("FromEngine() error = %v", err)
	}
	arr, ok := out.([]any)
	if !ok || len(arr) != 2 || arr[1] != (point{3, 4}) {
		t.Errorf("round trip = %v, want [{1 2} {3 4}]", out)
	}
}

// treeFactory claims the named type "tree" and re-requests it through
// an array mid-construction, so the depot must hand back the in-flight
// placeholder instead of recursing forever.
type treeFactory struct{}

type tree struct {
	children []any
}

func (treeFactory) Create(depot *Depot, desc types.Descriptor) (TypeAdapter, error) {
	n, ok := desc.(types.Named)
	if !ok || n.Name != "tree" {
		return nil, nil
	}
	children, err := depot.Adapter(types.NewArray(types.NewNamed("tree", nil)))
	if err != nil {
		return nil, err
	}
	return treeAdapter{children: children}, nil
}

type treeAdapter struct {
	children TypeAdapter
}

func (a treeAdapter) ToEngine(s *Scope, value any) (JSValue, error) {
	nd, ok := value.(tree)
	if !ok {
		return nil, hostMismatch("tree", value)
	}
	obj, err := s.NewObject()
	if err != nil {
		return nil, err
	}
	kids, err := a.children.ToEngine(s, nd.children)
	if err != nil {
		return nil, err
	}
	return obj, s.SetProperty(obj, "children", kids)
}

func (a treeAdapter) FromEngine(s *Scope, value JSValue) (any, error) {
	obj, ok := value.(*JSObject)
	if !ok {
		return nil, errors.TypeMismatch("object", value.Tag().String())
	}
	raw, err := s.GetProperty(obj, "children")
	if err != nil {
		return nil, err
	}
	kids, err := a.children.FromEngine(s, raw)
	if err != nil {
		return nil, err
	}
	nd := tree{}
	if kids != nil {
		nd.children = kids.([]any)
	}
	return nd, nil
}

func TestSelfReferentialFactory(t *testing.T) {
	ctx := newTestCtx(t, WithFactory(treeFactory{}))

	adapter, err := ctx.rt.Adapter(types.NewNamed("tree", nil))
	if err != nil {
		t.Fatalf("Adapter(tree) error = %v", err)
	}

	in := tree{children: []any{tree{}, tree{children: []any{tree{}}}}}
	v, err := ctx.ToEngine(adapter, in)
	if err != nil {
		t.Fatalf("ToEngine() error = %v", err)
	}
	out, err := ctx.FromEngine(adapter, v)
	if err != nil {
		t.Fatalf("FromEngine() error = %v", err)
	}
	root, ok := out.(tree)
	if !ok {
		t.Fatalf("round trip type = %T, want tree", out)
	}
	if len(root.children) != 2 {
		t.Fatalf("children = %d, want 2", len(root.children))
	}
	inner, ok := root.children[1].(tree)
	if !ok || len(inner.children) != 1 {
		t.Errorf("second child = %#v, want tree with one child", root.children[1])
	}
}

func TestDescriptorFor(t *testing.T) {
	tests := []struct {
		name   string
		sample any
		want   string
	}{
		{"bool", false, "bool"},
		{"int32", int32(0), "int32"},
		{"int64", int64(0), "int64"},
		{"float64", float64(0), "float64"},
		{"string", "", "string"},
		{"slice", []int32{}, "[]int32"},
		{"nested slice", [][]int64{}, "[][]int64"},
		{"pointer", (*float64)(nil), "*float64"},
		{"any map", map[string]any{}, "any"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := descMust(t, tt.sample)
			if got := types.Key(d); got != tt.want {
				t.Errorf("Key = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := descriptorFor(reflect.TypeOf(uint32(0))); err == nil {
		t.Error("descriptorFor(uint32) error = nil, want unsupported")
	}
}
