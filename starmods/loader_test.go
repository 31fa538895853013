package starmods

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/reusee/places/master"
	"github.com/reusee/places/runtimes"
	"github.com/reusee/places/taivm"
)

func newInstance(t *testing.T, dirs ...string) *runtimes.Instance {
	t.Helper()
	m := master.Start(context.Background(), nil)
	client := m.NewClient()
	t.Cleanup(func() {
		client.Close()
		if err := m.Shutdown(context.Background()); err != nil {
			t.Fatal(err)
		}
	})
	inst, _, err := runtimes.New(context.Background(), runtimes.Config{
		Canonicalizer: client,
		Params: runtimes.Params{
			CollectionPaths: dirs,
		},
		Stdlib:  []runtimes.Library{runtimes.Std},
		Loaders: runtimes.Loaders{Loader{}},
		Stdout:  new(bytes.Buffer),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := inst.Bootstrap(inst.Context()); err != nil {
		t.Fatal(err)
	}
	return inst
}

func writeModule(t *testing.T, dir, name, src string) {
	t.Helper()
	file := filepath.Join(dir, name+Ext)
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadModule(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "greet", `
greeting = "hello"
_private = 1

def place_main(name):
    print("greeting", name)
    return string_append(greeting, " ", name)
`)
	inst := newInstance(t, t.TempDir(), dir)
	ctx := inst.Context()

	main, err := inst.Require(ctx, "greet", "place-main")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := main.(taivm.NativeFunc); !ok {
		t.Fatalf("got %T", main)
	}
	if taivm.HeapOf(main) != inst.Heap() {
		t.Fatal("procedure not bound to instance heap")
	}
	ret, err := inst.Apply(ctx, main, inst.Heap().NewStr("world"))
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := ret.(*taivm.Str); !ok || s.String() != "hello world" {
		t.Fatalf("got %v", ret)
	}
	if got := inst.Stdout.(*bytes.Buffer).String(); got != "greeting world\n" {
		t.Fatalf("got %q", got)
	}

	greeting, err := inst.Require(ctx, "greet", "greeting")
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := greeting.(*taivm.Str); !ok || s.String() != "hello" {
		t.Fatalf("got %v", greeting)
	}

	_, err = inst.Require(ctx, "greet", "_private")
	var exportErr *runtimes.ExportNotFoundError
	if !errors.As(err, &exportErr) {
		t.Fatalf("got %v", err)
	}
}

func TestLoadModuleRequire(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "lib/base", `
def double(x):
    return x + x
`)
	writeModule(t, dir, "app", `
_double = require("lib/base", "double")

def place_main(x):
    return _double(x)
`)
	inst := newInstance(t, dir)
	ctx := inst.Context()
	main, err := inst.Require(ctx, "app", "place_main")
	if err != nil {
		t.Fatal(err)
	}
	ret, err := inst.Apply(ctx, main, 21)
	if err != nil {
		t.Fatal(err)
	}
	if ret != 42 {
		t.Fatalf("got %v", ret)
	}
}

func TestLoadModuleCycle(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a", `x = require("b", "y")`)
	writeModule(t, dir, "b", `y = require("a", "x")`)
	inst := newInstance(t, dir)
	_, err := inst.Require(inst.Context(), "a", "x")
	if err == nil {
		t.Fatal("should fail")
	}
}

func TestLoadModuleNotFound(t *testing.T) {
	inst := newInstance(t, t.TempDir())
	_, err := inst.Require(inst.Context(), "nope", "place-main")
	if !errors.Is(err, runtimes.ErrModuleNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestLoadModuleSyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "bad", `def (`)
	inst := newInstance(t, dir)
	_, err := inst.Require(inst.Context(), "bad", "place-main")
	if err == nil {
		t.Fatal("should fail")
	}
	if errors.Is(err, runtimes.ErrModuleNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestStarlarkName(t *testing.T) {
	for name, expected := range map[string]string{
		"place":        "place",
		"place?":       "is_place",
		"place-wait":   "place_wait",
		"path->string": "path_to_string",
		"string-set!":  "",
		"+":            "",
		"<":            "",
	} {
		got, ok := StarlarkName(name)
		if expected == "" {
			if ok {
				t.Fatalf("%s: got %v", name, got)
			}
			continue
		}
		if got != expected {
			t.Fatalf("%s: got %v", name, got)
		}
	}
}
