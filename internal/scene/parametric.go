package scene

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/inamate/easel/internal/geom"
)

// Expressions define a parametric curve: coordinate functions of t over
// [TMin, TMax].
type Expressions struct {
	X      string  `json:"x"`
	Y      string  `json:"y"`
	Z      string  `json:"z"`
	TMin   float64 `json:"tMin"`
	TMax   float64 `json:"tMax"`
	Closed bool    `json:"closed"`
}

// unary registers f under name with a float64 signature so the checker can
// type expressions that call it.
func unary(name string, f func(float64) float64) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s expects one argument", name)
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		return f(x), nil
	}, new(func(float64) float64))
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return 0, fmt.Errorf("not a number: %v", v)
}

var mathFuncs = []expr.Option{
	unary("sin", math.Sin),
	unary("cos", math.Cos),
	unary("tan", math.Tan),
	unary("asin", math.Asin),
	unary("acos", math.Acos),
	unary("atan", math.Atan),
	unary("sinh", math.Sinh),
	unary("cosh", math.Cosh),
	unary("tanh", math.Tanh),
	unary("exp", math.Exp),
	unary("log", math.Log),
	unary("sqrt", math.Sqrt),
}

func newEnv(t float64) map[string]any {
	return map[string]any{"t": t, "pi": math.Pi, "e": math.E}
}

func compileOne(src string) (*vm.Program, error) {
	opts := append([]expr.Option{expr.Env(newEnv(0)), expr.AsFloat64()}, mathFuncs...)
	return expr.Compile(src, opts...)
}

// Compile turns the expressions into a function of t. The function returns
// the zero vector when evaluation fails at a particular t.
func (e Expressions) Compile() (func(float64) geom.Vector3, error) {
	var progs [3]*vm.Program
	for i, src := range []string{e.X, e.Y, e.Z} {
		p, err := compileOne(src)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", src, err)
		}
		progs[i] = p
	}
	fn := func(t float64) geom.Vector3 {
		env := newEnv(t)
		var out [3]float64
		for i, p := range progs {
			v, err := expr.Run(p, env)
			if err != nil {
				return geom.Vector3{}
			}
			f, err := toFloat(v)
			if err != nil {
				return geom.Vector3{}
			}
			out[i] = f
		}
		return geom.V3(out[0], out[1], out[2])
	}
	if fn(e.TMin).IsZero(geom.Epsilon) {
		return fn, fmt.Errorf("expressions vanish or fail at t=%g", e.TMin)
	}
	return fn, nil
}
