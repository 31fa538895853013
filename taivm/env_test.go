package taivm

import "testing"

func TestEnvAll(t *testing.T) {
	root := new(Env)
	root.Def("a", 1)
	root.Def("b", 2)
	child := root.NewChild()
	child.Def("b", 3)
	child.Def("c", 4)

	var names []string
	var values []any
	for name, value := range child.All() {
		names = append(names, name)
		values = append(values, value)
	}
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Fatalf("got %v", names)
	}
	if values[1] != 3 {
		t.Fatalf("got %v", values[1])
	}

	if !child.Set("a", 5) {
		t.Fatal()
	}
	if v, _ := root.Get("a"); v != 5 {
		t.Fatalf("got %v", v)
	}
	if child.Set("d", 1) {
		t.Fatal("should not define")
	}
}
