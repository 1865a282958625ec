package symbolic

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ============================================================
// Func: named elementary function
// ============================================================

var (
	// ErrUnknownFunction is returned by Apply for names outside the catalogue.
	ErrUnknownFunction = errors.New("symbolic: unknown function")
	// ErrArity is returned by Apply when a function gets the wrong number of arguments.
	ErrArity = errors.New("symbolic: wrong number of arguments")
)

var unaryFunctions = map[string]bool{
	"sin": true, "cos": true, "tan": true, "sec": true, "csc": true, "cot": true,
	"asin": true, "acos": true, "atan": true,
	"sinh": true, "cosh": true, "tanh": true,
	"exp": true, "log": true, "abs": true,
}

// FunctionNames lists the function names Apply accepts.
func FunctionNames() []string {
	out := make([]string, 0, len(unaryFunctions)+1)
	for name := range unaryFunctions {
		out = append(out, name)
	}
	return append(out, "sqrt")
}

type Func struct {
	name  string
	args  []Expr
	canon bool
}

func funcOf(name string, args ...Expr) *Func { return &Func{name: name, args: args} }

func SinOf(x Expr) Expr { return funcOf("sin", x).Simplify() }
func CosOf(x Expr) Expr { return funcOf("cos", x).Simplify() }
func TanOf(x Expr) Expr { return funcOf("tan", x).Simplify() }
func ExpOf(x Expr) Expr { return funcOf("exp", x).Simplify() }
func LogOf(x Expr) Expr { return funcOf("log", x).Simplify() }
func AbsOf(x Expr) Expr { return funcOf("abs", x).Simplify() }

// Apply builds name(args...). sqrt becomes a power of one half and a
// two-argument log becomes a quotient of natural logs.
func Apply(name string, args ...Expr) (Expr, error) {
	switch name {
	case "sqrt":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: sqrt takes 1, got %d", ErrArity, len(args))
		}
		return SqrtOf(args[0]), nil
	case "log":
		if len(args) == 2 {
			return Div(LogOf(args[0]), LogOf(args[1])), nil
		}
	}
	if !unaryFunctions[name] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: %s takes 1, got %d", ErrArity, name, len(args))
	}
	return funcOf(name, args[0]).Simplify(), nil
}

func (f *Func) Name() string     { return f.name }
func (f *Func) Args() []Expr     { return append([]Expr(nil), f.args...) }
func (f *Func) exprType() string { return "func" }

func (f *Func) Simplify() Expr {
	if f.canon {
		return f
	}
	args := make([]Expr, len(f.args))
	for i, a := range f.args {
		args[i] = a.Simplify()
	}
	arg := args[0]
	switch f.name {
	case "sin":
		if k, ok := halfPiMultiple(arg); ok {
			return N([]int64{0, 1, 0, -1}[k])
		}
		if isNegative(arg) {
			return Neg(SinOf(Neg(arg)))
		}
	case "cos":
		if k, ok := halfPiMultiple(arg); ok {
			return N([]int64{1, 0, -1, 0}[k])
		}
		if isNegative(arg) {
			return CosOf(Neg(arg))
		}
	case "tan", "asin", "atan", "sinh", "tanh":
		if IsZero(arg) {
			return N(0)
		}
		if isNegative(arg) {
			return Neg(funcOf(f.name, Neg(arg)).Simplify())
		}
	case "cosh":
		if IsZero(arg) {
			return N(1)
		}
		if isNegative(arg) {
			return funcOf(f.name, Neg(arg)).Simplify()
		}
	case "acos":
		if n, ok := arg.(*Num); ok && n.IsOne() {
			return N(0)
		}
	case "exp":
		if n, ok := arg.(*Num); ok {
			if n.IsZero() {
				return N(1)
			}
			if n.IsOne() {
				return E
			}
		}
		if inner, ok := arg.(*Func); ok && inner.name == "log" {
			return inner.args[0]
		}
	case "log":
		if n, ok := arg.(*Num); ok && n.IsOne() {
			return N(0)
		}
		if s, ok := arg.(*Sym); ok && s.name == ConstE {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.args[0]
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			if n.IsNegative() {
				return numNeg(n)
			}
			return n
		}
		if inner, ok := arg.(*Func); ok && inner.name == "abs" {
			return inner
		}
		if isNegative(arg) {
			return AbsOf(Neg(arg))
		}
	}
	return &Func{name: f.name, args: args, canon: true}
}

// halfPiMultiple reports k in 0..3 when arg is k*pi/2 modulo 2*pi.
func halfPiMultiple(arg Expr) (int, bool) {
	var c *big.Rat
	switch v := arg.(type) {
	case *Num:
		if !v.IsZero() {
			return 0, false
		}
		c = new(big.Rat)
	case *Sym:
		if v.name != ConstPi {
			return 0, false
		}
		c = big.NewRat(1, 1)
	case *Mul:
		n, ok := v.factors[0].(*Num)
		if !ok || len(v.factors) != 2 || !v.factors[1].Equal(Pi) {
			return 0, false
		}
		c = n.Rat()
	default:
		return 0, false
	}
	twice := new(big.Rat).Mul(c, big.NewRat(2, 1))
	if !twice.IsInt() {
		return 0, false
	}
	m := new(big.Int).Mod(twice.Num(), big.NewInt(4))
	return int(m.Int64()), true
}

// isNegative reports whether e carries a negative leading coefficient.
func isNegative(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.IsNegative()
	case *Mul:
		c, ok := v.factors[0].(*Num)
		return ok && c.IsNegative()
	}
	return false
}

func (f *Func) String() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.String()
	}
	return f.name + "(" + strings.Join(parts, ", ") + ")"
}

var latexFunctionNames = map[string]string{
	"sin": `\sin`, "cos": `\cos`, "tan": `\tan`, "sec": `\sec`, "csc": `\csc`, "cot": `\cot`,
	"asin": `\arcsin`, "acos": `\arccos`, "atan": `\arctan`,
	"sinh": `\sinh`, "cosh": `\cosh`, "tanh": `\tanh`,
	"log": `\log`,
}

func (f *Func) LaTeX() string {
	arg := f.args[0].LaTeX()
	switch f.name {
	case "exp":
		return "e^{" + arg + "}"
	case "abs":
		return `\left|` + arg + `\right|`
	}
	name, ok := latexFunctionNames[f.name]
	if !ok {
		name = `\operatorname{` + f.name + `}`
	}
	return name + `\left(` + arg + `\right)`
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && equalAll(f.args, o.args)
}

func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "args": jsonAll(f.args)}
}
