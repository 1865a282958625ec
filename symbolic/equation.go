package symbolic

import (
	"encoding/json"
	"sort"
)

// ============================================================
// Equation
// ============================================================

// Equation is a top-level "lhs = rhs" statement. It is not an Expr; it is
// compared through its residual.
type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }

func (e *Equation) String() string { return e.LHS.String() + " = " + e.RHS.String() }
func (e *Equation) LaTeX() string  { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }

// Residual returns lhs - rhs.
func (e *Equation) Residual() Expr { return Sub(e.LHS, e.RHS) }

// ============================================================
// Symbols
// ============================================================

// FreeSymbols returns the names of the variables in e. The constants E and pi
// are not variables.
func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

// SortedSymbols returns the free symbols of all given expressions in name order.
func SortedSymbols(es ...Expr) []string {
	seen := map[string]struct{}{}
	for _, e := range es {
		collectSymbols(e, seen)
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		if !v.IsConstant() {
			out[v.name] = struct{}{}
		}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		for _, a := range v.args {
			collectSymbols(a, out)
		}
	}
}

// ============================================================
// JSON
// ============================================================

// ToJSON encodes the tree as nested objects tagged by node type.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// Tree returns the same nested-object form as ToJSON without encoding it.
func Tree(e Expr) map[string]interface{} { return e.toJSON() }

// EquationTree encodes an equation as {"type":"eq","lhs":...,"rhs":...}.
func EquationTree(eq *Equation) map[string]interface{} {
	return map[string]interface{}{"type": "eq", "lhs": eq.LHS.toJSON(), "rhs": eq.RHS.toJSON()}
}
