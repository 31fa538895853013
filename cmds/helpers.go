package cmds

// Var defines name to set the returned value, and "name." to reset it.
func Var[T any](name string) *T {
	var value T

	// set
	Define(name, Func(func(v T) {
		value = v
	}))

	// set zero
	var zero T
	Define(name+".", Func(func() {
		value = zero
	}))

	return &value
}

// Switch defines name to turn the returned value on, and "!name" to turn it
// off.
func Switch(name string) *bool {
	var value bool

	// set true
	Define(name, Func(func() {
		value = true
	}))

	// set false
	Define("!"+name, Func(func() {
		value = false
	}))

	return &value
}

// Collect defines name to append to the returned list, and "name." to clear
// it.
func Collect[T any](name string) *[]T {
	var value []T

	// append
	Define(name, Func(func(v T) {
		value = append(value, v)
	}))

	// clear
	Define(name+".", Func(func() {
		value = nil
	}))

	return &value
}
