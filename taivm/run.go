package taivm

import "fmt"

func (v *VM) Run(yield func(*Interrupt, error) bool) {
	for {
		if v.IP < 0 || v.IP >= len(v.CurrentFun.Code) {
			return
		}

		inst := v.CurrentFun.Code[v.IP]
		v.IP++
		op := inst & 0xff

		switch op {
		case OpLoadConst:
			idx := int(inst >> 8)
			v.push(v.CurrentFun.Constants[idx])

		case OpLoadVar:
			idx := int(inst >> 8)
			name := v.CurrentFun.Constants[idx].(string)
			val, ok := v.Scope.Get(name)
			if !ok {
				if !yield(nil, fmt.Errorf("undefined variable: %s", name)) {
					return
				}
				v.push(nil)
				continue
			}
			v.push(val)

		case OpDefVar:
			idx := int(inst >> 8)
			name := v.CurrentFun.Constants[idx].(string)
			v.Scope.Def(name, v.pop())

		case OpSetVar:
			idx := int(inst >> 8)
			name := v.CurrentFun.Constants[idx].(string)
			if !v.Scope.Set(name, v.pop()) {
				if !yield(nil, fmt.Errorf("variable not found: %s", name)) {
					return
				}
			}

		case OpPop:
			v.pop()

		case OpJump:
			offset := int(int32(inst) >> 8)
			v.IP += offset

		case OpJumpFalse:
			offset := int(int32(inst) >> 8)
			if !truthy(v.pop()) {
				v.IP += offset
			}

		case OpMakeClosure:
			idx := int(inst >> 8)
			fun := v.CurrentFun.Constants[idx].(*Function)
			v.push(&Closure{
				Fun: fun,
				Env: v.Scope,
			})

		case OpCall:
			argc := int(inst >> 8)
			if v.SP < argc+1 {
				if !yield(nil, fmt.Errorf("stack underflow during call")) {
					return
				}
				continue
			}

			// callee is below args on the stack
			calleeIdx := v.SP - argc - 1
			callee := v.OperandStack[calleeIdx]

			switch fn := callee.(type) {
			case *Closure:
				if argc != fn.Fun.NumParams {
					if !yield(nil, fmt.Errorf("arity mismatch: want %d, got %d", fn.Fun.NumParams, argc)) {
						return
					}
					v.drop(argc + 1)
					v.push(nil)
					continue
				}
				if v.MaxFrames > 0 && len(v.CallStack) >= v.MaxFrames {
					if !yield(nil, fmt.Errorf("%w: more than %d frames", ErrStackOverflow, v.MaxFrames)) {
						return
					}
					v.drop(argc + 1)
					v.push(nil)
					continue
				}

				newEnv := fn.Env.NewChild()
				for i, name := range fn.Fun.ParamNames {
					newEnv.Def(name, v.OperandStack[calleeIdx+1+i])
				}

				v.CallStack = append(v.CallStack, Frame{
					Fun:      v.CurrentFun,
					ReturnIP: v.IP,
					Env:      v.Scope,
					BaseSP:   calleeIdx,
					BP:       v.BP,
				})
				v.BP = calleeIdx + 1
				v.CurrentFun = fn.Fun
				v.IP = 0
				v.Scope = newEnv

			case NativeFunc:
				args := v.OperandStack[calleeIdx+1 : v.SP]
				res, err := fn.Call(v, args)
				if err != nil {
					if !yield(nil, err) {
						return
					}
					res = nil
				}
				v.OperandStack[calleeIdx] = res
				for i := calleeIdx + 1; i < v.SP; i++ {
					v.OperandStack[i] = nil
				}
				v.SP = calleeIdx + 1

			default:
				if !yield(nil, fmt.Errorf("calling non-function: %T", callee)) {
					return
				}
				v.drop(argc + 1)
				v.push(nil)
			}

		case OpReturn:
			retVal := v.pop()
			n := len(v.CallStack)
			if n == 0 {
				if v.BP > 0 {
					v.drop(v.SP - (v.BP - 1))
				} else {
					v.drop(v.SP)
				}
				v.push(retVal)
				return
			}
			frame := v.CallStack[n-1]
			v.CallStack = v.CallStack[:n-1]

			v.CurrentFun = frame.Fun
			v.IP = frame.ReturnIP
			v.Scope = frame.Env
			v.BP = frame.BP
			// discard what the callee left on the stack
			v.drop(v.SP - frame.BaseSP)

			v.push(retVal)

		case OpSuspend:
			if !yield(InterruptSuspend, nil) {
				return
			}

		case OpEnterScope:
			v.Scope = v.Scope.NewChild()

		case OpLeaveScope:
			if v.Scope.Parent != nil {
				v.Scope = v.Scope.Parent
			}

		case OpMakeList:
			n := int(inst >> 8)
			if v.SP < n {
				if !yield(nil, fmt.Errorf("stack underflow during list creation")) {
					return
				}
				continue
			}
			elems := make([]any, n)
			copy(elems, v.OperandStack[v.SP-n:v.SP])
			v.drop(n)
			if v.Heap != nil {
				v.push(v.Heap.NewList(elems...))
			} else {
				v.push(&List{
					Elements: elems,
				})
			}

		case OpAdd, OpSub:
			if v.SP < 2 {
				if !yield(nil, fmt.Errorf("stack underflow during math op")) {
					return
				}
				continue
			}
			b := v.pop()
			a := v.pop()
			i1, ok1 := a.(int)
			i2, ok2 := b.(int)
			if !ok1 || !ok2 {
				if op == OpAdd {
					s1, ok1 := a.(string)
					s2, ok2 := b.(string)
					if ok1 && ok2 {
						v.push(s1 + s2)
						continue
					}
				}
				if !yield(nil, fmt.Errorf("math operands must be int, got %T and %T", a, b)) {
					return
				}
				v.push(nil)
				continue
			}
			if op == OpAdd {
				v.push(i1 + i2)
			} else {
				v.push(i1 - i2)
			}

		case OpEq:
			if v.SP < 2 {
				if !yield(nil, fmt.Errorf("stack underflow during comparison")) {
					return
				}
				continue
			}
			b := v.pop()
			a := v.pop()
			v.push(Equal(a, b))

		case OpLt:
			if v.SP < 2 {
				if !yield(nil, fmt.Errorf("stack underflow during comparison")) {
					return
				}
				continue
			}
			b := v.pop()
			a := v.pop()
			switch a := a.(type) {
			case int:
				i2, ok := b.(int)
				if !ok {
					if !yield(nil, fmt.Errorf("comparison type mismatch: int vs %T", b)) {
						return
					}
					v.push(nil)
					continue
				}
				v.push(a < i2)
			case string:
				s2, ok := b.(string)
				if !ok {
					if !yield(nil, fmt.Errorf("comparison type mismatch: string vs %T", b)) {
						return
					}
					v.push(nil)
					continue
				}
				v.push(a < s2)
			default:
				if !yield(nil, fmt.Errorf("unsupported type for comparison: %T", a)) {
					return
				}
				v.push(nil)
			}

		case OpNot:
			if v.SP < 1 {
				if !yield(nil, fmt.Errorf("stack underflow during not")) {
					return
				}
				continue
			}
			v.push(!truthy(v.pop()))

		default:
			if !yield(nil, fmt.Errorf("unknown opcode: %d", op)) {
				return
			}
		}
	}
}

func truthy(val any) bool {
	switch x := val.(type) {
	case nil:
		return false
	case bool:
		return x
	case int:
		return x != 0
	case string:
		return x != ""
	}
	return true
}
