package transfer

import (
	"context"
	"fmt"
	"slices"

	"github.com/reusee/places/taivm"
)

// Closure rebuilds cl in target: function constants are deep-copied and the
// result closes over env instead of the original environment. cl.Env is
// dropped, so free names of cl resolve in env; callers reject closures whose
// environment holds bindings env cannot provide.
func Closure(ctx context.Context, target Target, cl *taivm.Closure, env *taivm.Env) (*taivm.Closure, error) {
	fn, err := copyFunction(ctx, target, cl.Fun, make(map[*taivm.Function]*taivm.Function))
	if err != nil {
		return nil, err
	}
	return &taivm.Closure{
		Fun: fn,
		Env: env,
	}, nil
}

func copyFunction(ctx context.Context, target Target, fn *taivm.Function, seen map[*taivm.Function]*taivm.Function) (*taivm.Function, error) {
	if copied, ok := seen[fn]; ok {
		return copied, nil
	}
	ret := &taivm.Function{
		Name:       fn.Name,
		NumParams:  fn.NumParams,
		ParamNames: slices.Clone(fn.ParamNames),
		Code:       slices.Clone(fn.Code),
		Constants:  make([]any, len(fn.Constants)),
	}
	seen[fn] = ret
	for i, c := range fn.Constants {
		if inner, ok := c.(*taivm.Function); ok {
			copied, err := copyFunction(ctx, target, inner, seen)
			if err != nil {
				return nil, err
			}
			ret.Constants[i] = copied
			continue
		}
		copied, err := DeepCopy(ctx, target, c)
		if err != nil {
			return nil, fmt.Errorf("function %s constant %d: %w", fn.Name, i, err)
		}
		ret.Constants[i] = copied
	}
	return ret, nil
}
