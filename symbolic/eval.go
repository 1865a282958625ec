package symbolic

import "math"

// EvalFloat evaluates e in float64 with the given symbol values. ok is false
// when a symbol is unbound, a function leaves its real domain, or the result
// is not finite.
func EvalFloat(e Expr, env map[string]float64) (float64, bool) {
	v, ok := evalFloat(e, env)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func evalFloat(e Expr, env map[string]float64) (float64, bool) {
	switch v := e.(type) {
	case *Num:
		return v.Float64(), true
	case *Sym:
		switch v.name {
		case ConstE:
			return math.E, true
		case ConstPi:
			return math.Pi, true
		}
		x, ok := env[v.name]
		return x, ok
	case *Add:
		sum := 0.0
		for _, t := range v.terms {
			x, ok := evalFloat(t, env)
			if !ok {
				return 0, false
			}
			sum += x
		}
		return sum, true
	case *Mul:
		prod := 1.0
		for _, f := range v.factors {
			x, ok := evalFloat(f, env)
			if !ok {
				return 0, false
			}
			prod *= x
		}
		return prod, true
	case *Pow:
		base, ok := evalFloat(v.base, env)
		if !ok {
			return 0, false
		}
		exp, ok := evalFloat(v.exp, env)
		if !ok {
			return 0, false
		}
		if base == 0 && exp < 0 {
			return 0, false
		}
		r := math.Pow(base, exp)
		return r, !math.IsNaN(r)
	case *Func:
		x, ok := evalFloat(v.args[0], env)
		if !ok {
			return 0, false
		}
		return evalFunc(v.name, x)
	}
	return 0, false
}

func evalFunc(name string, x float64) (float64, bool) {
	switch name {
	case "sin":
		return math.Sin(x), true
	case "cos":
		return math.Cos(x), true
	case "tan":
		return math.Tan(x), true
	case "sec":
		return 1 / math.Cos(x), true
	case "csc":
		return 1 / math.Sin(x), true
	case "cot":
		return 1 / math.Tan(x), true
	case "asin":
		return math.Asin(x), x >= -1 && x <= 1
	case "acos":
		return math.Acos(x), x >= -1 && x <= 1
	case "atan":
		return math.Atan(x), true
	case "sinh":
		return math.Sinh(x), true
	case "cosh":
		return math.Cosh(x), true
	case "tanh":
		return math.Tanh(x), true
	case "exp":
		return math.Exp(x), true
	case "log":
		return math.Log(x), x > 0
	case "abs":
		return math.Abs(x), true
	}
	return 0, false
}
