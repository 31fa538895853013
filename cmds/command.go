package cmds

import (
	"fmt"
	"reflect"
)

// Command is either a function taking positional arguments or a set of sub
// commands selected by the next argument.
type Command struct {
	Func        reflect.Value
	Subs        map[string]*Command
	Description string
	Aliases     []string
}

func (c *Command) Desc(desc string) *Command {
	c.Description = desc
	return c
}

func (c *Command) Alias(names ...string) *Command {
	c.Aliases = append(c.Aliases, names...)
	return c
}

// Func wraps fn, which must return nothing or a single error.
func Func(fn any) *Command {
	fnValue := reflect.ValueOf(fn)

	if fnValue.Kind() != reflect.Func {
		panic(fmt.Errorf("must be function, got %T", fn))
	}

	fnType := fnValue.Type()
	if fnType.IsVariadic() {
		panic(fmt.Errorf("variadic function not supported: %v", fnType))
	}
	switch fnType.NumOut() {
	case 0:
	case 1:
		if fnType.Out(0) != errorType {
			panic(fmt.Errorf("must return error, got %v", fnType.Out(0)))
		}
	default:
		panic(fmt.Errorf("must return 0 or 1 value"))
	}

	return &Command{
		Func: fnValue,
	}
}

// Sub groups commands. Aliases of the sub commands are registered alongside
// their names.
func Sub(subs map[string]*Command) *Command {
	all := make(map[string]*Command, len(subs))
	add := func(name string, command *Command) {
		if existing, ok := all[name]; ok && existing != command {
			panic(fmt.Errorf("duplicated sub command %s", name))
		}
		all[name] = command
	}
	for name, command := range subs {
		add(name, command)
		if command == nil {
			continue
		}
		for _, alias := range command.Aliases {
			add(alias, command)
		}
	}
	return &Command{
		Subs: all,
	}
}
