// Package symbolic provides the deterministic expression kernel behind the
// grader.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Immutable trees; every rewrite builds new nodes
//   - Auto-simplifying constructors with one stable ordering
//   - A single printer whose output parses back to the same tree
package symbolic

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is an immutable expression node. Nodes returned by Simplify and by the
// *Of constructors are canonical: flattened, collected and sorted.
type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num: exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// Decimal exponents beyond this magnitude are rejected.
const maxDecimalExponent = 1000

// ParseNum reads a decimal literal such as "2", "2.50", ".5" or "1.5e-3" as
// an exact rational, so "0.1" is 1/10 and not the nearest binary float.
func ParseNum(lit string) (*Num, error) {
	s := lit
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		exp, err := strconv.Atoi(s[i+1:])
		if err != nil || exp > maxDecimalExponent || exp < -maxDecimalExponent {
			return nil, fmt.Errorf("symbolic: invalid number %q", lit)
		}
		mant, err := ParseNum(s[:i])
		if err != nil {
			return nil, fmt.Errorf("symbolic: invalid number %q", lit)
		}
		neg := exp < 0
		if neg {
			exp = -exp
		}
		scale := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
		if neg {
			scale.Inv(scale)
		}
		return &Num{val: mant.val.Mul(mant.val, scale)}, nil
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("symbolic: invalid number %q", lit)
	}
	return &Num{val: r}, nil
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

// Int64 returns the value when it is an integer that fits in an int64.
func (n *Num) Int64() (int64, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	return n.val.Num().Int64(), true
}

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.String()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}

// ============================================================
// Sym: symbolic variable or named constant
// ============================================================

// Names of the two constants the kernel knows about. They are stored as
// symbols so that printing and ordering treat them uniformly.
const (
	ConstE  = "E"
	ConstPi = "pi"
)

var (
	E  = S(ConstE)
	Pi = S(ConstPi)
)

type Sym struct{ name string }

func S(name string) *Sym                { return &Sym{name: name} }
func (s *Sym) Simplify() Expr           { return s }
func (s *Sym) Equal(other Expr) bool    { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string         { return "sym" }
func (s *Sym) Name() string             { return s.name }
func (s *Sym) IsConstant() bool         { return s.name == ConstE || s.name == ConstPi }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}

// String prints plain names as is and wraps any other name in \mathrm{...}
// so the tokenizer will not split it into single-letter factors.
func (s *Sym) String() string {
	if IsPlainName(s.name) {
		return s.name
	}
	return `\mathrm{` + s.name + `}`
}

func (s *Sym) LaTeX() string {
	switch s.name {
	case ConstE:
		return "e"
	case ConstPi:
		return `\pi`
	}
	base, sub, hasSub := strings.Cut(s.name, "_")
	switch {
	case IsGreek(base):
		base = `\` + base
	case len(base) > 1:
		base = `\mathrm{` + base + `}`
	}
	if hasSub {
		return base + "_{" + sub + "}"
	}
	return base
}
