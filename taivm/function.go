package taivm

type Function struct {
	Name       string
	NumParams  int
	ParamNames []string
	Code       []OpCode
	Constants  []any
}

type Closure struct {
	Fun *Function
	Env *Env
}

type Frame struct {
	Fun      *Function
	ReturnIP int
	Env      *Env
	BaseSP   int
	BP       int
}
