package symbolic

import (
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct {
	terms []Expr
	canon bool
}

// AddOf builds the canonical sum of terms.
func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Sub builds a - b.
func Sub(a, b Expr) Expr { return AddOf(a, Neg(b)) }

// Neg builds -e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// Terms returns the summands of a canonical sum.
func (a *Add) Terms() []Expr { return append([]Expr(nil), a.terms...) }

func (a *Add) exprType() string { return "add" }

func (a *Add) Simplify() Expr {
	if a.canon {
		return a
	}
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	// Like terms share the printed form of their non-numeric part.
	constant := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	var keys []string
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant = numAdd(constant, n)
			continue
		}
		c, rest := SplitCoeff(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			keys = append(keys, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], c)
	}

	result := make([]Expr, 0, len(keys)+1)
	for _, key := range keys {
		if c := coeffs[key]; !c.IsZero() {
			result = append(result, scale(c, rests[key]))
		}
	}
	sortTerms(result)
	if !constant.IsZero() {
		result = append(result, constant)
	}
	switch len(result) {
	case 0:
		return N(0)
	case 1:
		return result[0]
	}
	return &Add{terms: result, canon: true}
}

// sortTerms orders summands by descending total degree, then by printed form.
func sortTerms(terms []Expr) {
	type keyed struct {
		e      Expr
		degree int
		key    string
	}
	ks := make([]keyed, len(terms))
	for i, t := range terms {
		_, rest := SplitCoeff(t)
		ks[i] = keyed{e: t, degree: totalDegree(rest), key: rest.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].degree != ks[j].degree {
			return ks[i].degree > ks[j].degree
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		terms[i] = ks[i].e
	}
}

func totalDegree(e Expr) int {
	switch v := e.(type) {
	case *Sym:
		if v.IsConstant() {
			return 0
		}
		return 1
	case *Pow:
		s, ok := v.base.(*Sym)
		if !ok || s.IsConstant() {
			return 0
		}
		if n, ok := v.exp.(*Num); ok {
			if k, ok := n.Int64(); ok {
				return int(k)
			}
		}
	case *Mul:
		d := 0
		for _, f := range v.factors {
			d += totalDegree(f)
		}
		return d
	}
	return 0
}

func (a *Add) String() string {
	var sb strings.Builder
	for i, t := range a.terms {
		abs, neg := negatedTerm(t)
		switch {
		case i == 0 && neg:
			sb.WriteString("-")
		case neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(abs.String())
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		abs, neg := negatedTerm(t)
		switch {
		case i == 0 && neg:
			sb.WriteString("-")
		case neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(abs.LaTeX())
	}
	return sb.String()
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	return ok && equalAll(a.terms, o.terms)
}

func (a *Add) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "add", "terms": jsonAll(a.terms)}
}

// negatedTerm returns -t and true when t carries a negative coefficient.
func negatedTerm(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			return scale(numNeg(c), restOf(v)), true
		}
	}
	return t, false
}

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct {
	factors []Expr
	canon   bool
}

// MulOf builds the canonical product of factors.
func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Div builds a / b.
func Div(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

// Factors returns the factors of a canonical product, coefficient first.
func (m *Mul) Factors() []Expr { return append([]Expr(nil), m.factors...) }

func (m *Mul) exprType() string { return "mul" }

func (m *Mul) Simplify() Expr {
	if m.canon {
		return m
	}
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	// Equal bases combine by adding exponents; exp(a) counts as E**a.
	type group struct {
		base Expr
		orig Expr
		exps []Expr
	}
	coeff := N(1)
	groups := map[string]*group{}
	var keys []string
	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		base, exp := splitPower(f)
		key := base.String()
		g, seen := groups[key]
		if !seen {
			g = &group{base: base, orig: f}
			groups[key] = g
			keys = append(keys, key)
		}
		g.exps = append(g.exps, exp)
	}
	if coeff.IsZero() {
		return N(0)
	}

	factors := make([]Expr, 0, len(keys))
	regroup := false
	for _, key := range keys {
		g := groups[key]
		var p Expr
		if len(g.exps) == 1 {
			p = g.orig
		} else {
			p = PowOf(g.base, AddOf(g.exps...))
		}
		switch v := p.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			factors = append(factors, v.factors...)
			regroup = true
		default:
			factors = append(factors, p)
		}
	}
	if regroup {
		return (&Mul{factors: append([]Expr{coeff}, factors...)}).Simplify()
	}
	if coeff.IsZero() {
		return N(0)
	}
	sortFactors(factors)
	switch {
	case len(factors) == 0:
		return coeff
	case coeff.IsOne() && len(factors) == 1:
		return factors[0]
	case coeff.IsOne():
		return &Mul{factors: factors, canon: true}
	}
	return &Mul{factors: append([]Expr{coeff}, factors...), canon: true}
}

func splitPower(e Expr) (base, exp Expr) {
	switch v := e.(type) {
	case *Pow:
		return v.base, v.exp
	case *Func:
		if v.name == "exp" {
			return E, v.args[0]
		}
	}
	return e, N(1)
}

func sortFactors(factors []Expr) {
	keys := make([]string, len(factors))
	for i, f := range factors {
		keys[i] = f.String()
	}
	idx := make([]int, len(factors))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return keys[idx[i]] < keys[idx[j]] })
	sorted := make([]Expr, len(factors))
	for i, k := range idx {
		sorted[i] = factors[k]
	}
	copy(factors, sorted)
}

// SplitCoeff separates the rational coefficient of a term from the rest.
func SplitCoeff(e Expr) (*Num, Expr) {
	switch v := e.(type) {
	case *Num:
		return v, N(1)
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok {
			return c, restOf(v)
		}
	}
	return N(1), e
}

// restOf returns m without its leading coefficient. The result is canonical
// because a suffix of sorted, grouped factors stays sorted and grouped.
func restOf(m *Mul) Expr {
	if _, ok := m.factors[0].(*Num); !ok {
		return m
	}
	if len(m.factors) == 2 {
		return m.factors[1]
	}
	return &Mul{factors: m.factors[1:], canon: true}
}

// scale multiplies a canonical non-numeric expression by c without
// re-simplifying it.
func scale(c *Num, rest Expr) Expr {
	if c.IsOne() {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{c}, m.factors...), canon: true}
	}
	return &Mul{factors: []Expr{c, rest}, canon: true}
}

func (m *Mul) String() string {
	parts := make([]string, 0, len(m.factors))
	prefix := ""
	rest := m.factors
	if c, ok := m.factors[0].(*Num); ok {
		rest = m.factors[1:]
		if c.IsNegOne() {
			prefix = "-"
		} else {
			parts = append(parts, c.String())
		}
	}
	for _, f := range rest {
		if _, ok := f.(*Add); ok {
			parts = append(parts, "("+f.String()+")")
		} else {
			parts = append(parts, f.String())
		}
	}
	return prefix + strings.Join(parts, "*")
}

// LaTeX moves negative powers and the coefficient's denominator below a
// fraction bar.
func (m *Mul) LaTeX() string {
	var num, den []string
	sign := ""
	for _, f := range m.factors {
		switch v := f.(type) {
		case *Num:
			r := v.Rat()
			if r.Sign() < 0 {
				sign = "-"
				r.Neg(r)
			}
			if !r.IsInt() {
				den = append(den, r.Denom().String())
			}
			if n := r.Num(); n.Cmp(big.NewInt(1)) != 0 {
				num = append(num, n.String())
			}
		case *Pow:
			if e, ok := v.exp.(*Num); ok && e.IsNegative() {
				den = append(den, PowOf(v.base, numNeg(e)).LaTeX())
				continue
			}
			num = append(num, v.LaTeX())
		case *Add:
			num = append(num, `\left(`+v.LaTeX()+`\right)`)
		default:
			num = append(num, f.LaTeX())
		}
	}
	top := strings.Join(num, " ")
	if top == "" {
		top = "1"
	}
	if len(den) == 0 {
		return sign + top
	}
	return sign + `\frac{` + top + `}{` + strings.Join(den, " ") + `}`
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	return ok && equalAll(m.factors, o.factors)
}

func (m *Mul) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "mul", "factors": jsonAll(m.factors)}
}

// ============================================================
// Pow: base raised to an exponent
// ============================================================

type Pow struct {
	base, exp Expr
	canon     bool
}

// Limits on exact rational powers; anything larger stays symbolic.
const (
	maxExactPow  = 1024
	maxExactBits = 8192
	maxRootIndex = 64
)

// PowOf builds the canonical power base**exp.
func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// SqrtOf builds base**(1/2).
func SqrtOf(base Expr) Expr { return PowOf(base, F(1, 2)) }

func (p *Pow) Base() Expr       { return p.base }
func (p *Pow) Exp() Expr        { return p.exp }
func (p *Pow) exprType() string { return "pow" }

func (p *Pow) Simplify() Expr {
	if p.canon {
		return p
	}
	base := p.base.Simplify()
	exp := p.exp.Simplify()
	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}
	if s, ok := base.(*Sym); ok && s.name == ConstE {
		return (&Func{name: "exp", args: []Expr{exp}}).Simplify()
	}

	switch b := base.(type) {
	case *Num:
		if b.IsOne() {
			return N(1)
		}
		if b.IsZero() {
			if expIsNum && en.IsPositive() {
				return N(0)
			}
			break
		}
		if expIsNum {
			if r, ok := numPow(b, en); ok {
				return r
			}
		}
	case *Pow:
		inner, innerIsNum := b.exp.(*Num)
		unit := innerIsNum && inner.val.Cmp(big.NewRat(-1, 1)) > 0 && inner.val.Cmp(big.NewRat(1, 1)) <= 0
		if (expIsNum && en.IsInteger()) || unit {
			return PowOf(b.base, MulOf(b.exp, exp))
		}
	case *Mul:
		if expIsNum && en.IsInteger() {
			fs := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				fs[i] = PowOf(f, exp)
			}
			return MulOf(fs...)
		}
		if c, ok := b.factors[0].(*Num); ok && c.IsPositive() {
			return MulOf(PowOf(c, exp), PowOf(restOf(b), exp))
		}
	case *Func:
		if b.name == "exp" && expIsNum && en.IsInteger() {
			return ExpOf(MulOf(b.args[0], exp))
		}
	}
	return &Pow{base: base, exp: exp, canon: true}
}

// numPow evaluates b**e exactly when the result is rational and small.
func numPow(b, e *Num) (Expr, bool) {
	if e.IsInteger() {
		k, ok := e.Int64()
		if !ok || k > maxExactPow || k < -maxExactPow {
			return nil, false
		}
		if k < 0 && b.IsZero() {
			return nil, false
		}
		abs := k
		if abs < 0 {
			abs = -abs
		}
		bits := int64(b.val.Num().BitLen() + b.val.Denom().BitLen())
		if bits*abs > maxExactBits {
			return nil, false
		}
		kk := big.NewInt(abs)
		num := new(big.Int).Exp(b.val.Num(), kk, nil)
		den := new(big.Int).Exp(b.val.Denom(), kk, nil)
		r := &Num{val: new(big.Rat).SetFrac(num, den)}
		if k < 0 {
			r = numRecip(r)
		}
		return r, true
	}
	if b.IsNegative() {
		return nil, false
	}
	q := e.val.Denom()
	if !q.IsInt64() || q.Int64() > maxRootIndex {
		return nil, false
	}
	rn, ok := intRoot(b.val.Num(), int(q.Int64()))
	if !ok {
		return nil, false
	}
	rd, ok := intRoot(b.val.Denom(), int(q.Int64()))
	if !ok {
		return nil, false
	}
	root := &Num{val: new(big.Rat).SetFrac(rn, rd)}
	return numPow(root, &Num{val: new(big.Rat).SetInt(e.val.Num())})
}

// intRoot returns the exact k-th root of n >= 0, if there is one.
func intRoot(n *big.Int, k int) (*big.Int, bool) {
	if n.Sign() == 0 {
		return new(big.Int), true
	}
	var x *big.Int
	if k == 2 {
		x = new(big.Int).Sqrt(n)
	} else {
		x = new(big.Int).Lsh(big.NewInt(1), uint(n.BitLen()/k+1))
		kk := big.NewInt(int64(k))
		km1 := big.NewInt(int64(k - 1))
		for {
			y := new(big.Int).Div(n, new(big.Int).Exp(x, km1, nil))
			y.Add(y, new(big.Int).Mul(km1, x))
			y.Div(y, kk)
			if y.Cmp(x) >= 0 {
				break
			}
			x = y
		}
	}
	if new(big.Int).Exp(x, big.NewInt(int64(k)), nil).Cmp(n) != 0 {
		return nil, false
	}
	return x, true
}

func (p *Pow) String() string {
	base := p.base.String()
	if needsParenAsBase(p.base) {
		base = "(" + base + ")"
	}
	exp := p.exp.String()
	if needsParenAsExp(p.exp) {
		exp = "(" + exp + ")"
	}
	return base + "**" + exp
}

func needsParenAsBase(e Expr) bool {
	switch v := e.(type) {
	case *Add, *Mul, *Pow:
		return true
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	}
	return false
}

func needsParenAsExp(e Expr) bool {
	switch v := e.(type) {
	case *Sym, *Func:
		return false
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	}
	return true
}

func (p *Pow) LaTeX() string {
	if e, ok := p.exp.(*Num); ok {
		if e.Equal(F(1, 2)) {
			return `\sqrt{` + p.base.LaTeX() + `}`
		}
		if e.IsNegative() {
			return `\frac{1}{` + PowOf(p.base, numNeg(e)).LaTeX() + `}`
		}
	}
	base := p.base.LaTeX()
	if needsParenAsBase(p.base) {
		base = `\left(` + base + `\right)`
	} else if _, ok := p.base.(*Func); ok {
		base = `\left(` + base + `\right)`
	}
	return base + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}

// ============================================================
// Helpers
// ============================================================

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func jsonAll(es []Expr) []interface{} {
	out := make([]interface{}, len(es))
	for i, e := range es {
		out[i] = e.toJSON()
	}
	return out
}

// IsZero reports whether e is the number 0.
func IsZero(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsZero()
}
