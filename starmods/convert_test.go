package starmods

import (
	"testing"

	"github.com/reusee/places/taivm"
	"go.starlark.net/starlark"
)

func TestToStarlark(t *testing.T) {
	inst := newInstance(t)
	sym, err := inst.Intern(inst.Context(), "sym")
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name     string
		input    any
		expected starlark.Value
	}{
		{"nil", nil, starlark.None},
		{"bool", true, starlark.True},
		{"string", "hello", starlark.String("hello")},
		{"str", inst.Heap().NewStr("hello"), starlark.String("hello")},
		{"symbol", sym, starlark.String("sym")},
		{"path", inst.Heap().NewPath([]byte("/tmp")), starlark.Bytes("/tmp")},
		{"int", 42, starlark.MakeInt(42)},
		{"int8", int8(42), starlark.MakeInt(42)},
		{"uint64", uint64(42), starlark.MakeUint64(42)},
		{"float64", 3.14, starlark.Float(3.14)},
		{"list", inst.Heap().NewList(1, "a"), starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.String("a")})},
		{"[]int", []int{1, 2}, starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.MakeInt(2)})},
		{"map", map[string]any{"a": 1}, func() starlark.Value {
			d := starlark.NewDict(1)
			d.SetKey(starlark.String("a"), starlark.MakeInt(1))
			return d
		}()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := ToStarlark(inst, tc.input)
			if err != nil {
				t.Fatal(err)
			}
			equal, err := starlark.Equal(actual, tc.expected)
			if err != nil {
				t.Fatalf("comparison failed: %v", err)
			}
			if !equal {
				t.Fatalf("got %v, expected %v", actual, tc.expected)
			}
		})
	}
}

func TestOpaqueRoundTrip(t *testing.T) {
	inst := newInstance(t)
	type handle struct {
		id int
	}
	h := &handle{id: 1}
	v, err := ToStarlark(inst, h)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(Opaque); !ok {
		t.Fatalf("got %T", v)
	}
	back, err := FromStarlark(inst, v)
	if err != nil {
		t.Fatal(err)
	}
	if back != h {
		t.Fatalf("got %v", back)
	}
}

func TestProcedureRoundTrip(t *testing.T) {
	inst := newInstance(t)
	fn, ok := inst.Lookup("string-append")
	if !ok {
		t.Fatal("no string-append")
	}
	v, err := ToStarlark(inst, fn)
	if err != nil {
		t.Fatal(err)
	}
	ret, err := starlark.Call(newThread(inst, "test"), v, starlark.Tuple{
		starlark.String("a"),
		starlark.String("b"),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ret != starlark.String("ab") {
		t.Fatalf("got %v", ret)
	}

	back, err := FromStarlark(inst, v)
	if err != nil {
		t.Fatal(err)
	}
	if native, ok := back.(taivm.NativeFunc); !ok || native.Name != "string-append" || native.Heap != nil {
		t.Fatalf("got %v", back)
	}
}

func TestFromStarlark(t *testing.T) {
	inst := newInstance(t)
	v, err := FromStarlark(inst, starlark.Tuple{
		starlark.MakeInt(1),
		starlark.String("s"),
		starlark.Bytes("p"),
		starlark.None,
	})
	if err != nil {
		t.Fatal(err)
	}
	l := v.(*taivm.List)
	if !l.Immutable || len(l.Elements) != 4 {
		t.Fatalf("got %+v", l)
	}
	if s := l.Elements[1].(*taivm.Str); s.Heap != inst.Heap() {
		t.Fatal("bad heap")
	}
	if _, ok := l.Elements[2].(*taivm.Path); !ok {
		t.Fatalf("got %T", l.Elements[2])
	}

	if _, err := FromStarlark(inst, starlark.NewDict(0)); err == nil {
		t.Fatal("should fail")
	}
}
