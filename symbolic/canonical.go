package symbolic

// ============================================================
// Trigonometric rewriting
// ============================================================

// Largest integer multiple n for which sin(n*x) and cos(n*x) are expanded.
const maxAngleMultiple = 12

// rewriteTrig expresses tan, cot, sec and csc through sin and cos and
// expands sines and cosines of sums and of integer multiples.
func (b *Budget) rewriteTrig(e Expr) Expr {
	b.tick()
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = b.rewriteTrig(t)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = b.rewriteTrig(f)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(b.rewriteTrig(v.base), b.rewriteTrig(v.exp))
	case *Func:
		args := make([]Expr, len(v.args))
		for i, a := range v.args {
			args[i] = b.rewriteTrig(a)
		}
		switch v.name {
		case "sin":
			s, _ := b.sinCos(args[0])
			return s
		case "cos":
			_, c := b.sinCos(args[0])
			return c
		case "tan":
			s, c := b.sinCos(args[0])
			return Div(s, c)
		case "cot":
			s, c := b.sinCos(args[0])
			return Div(c, s)
		case "sec":
			_, c := b.sinCos(args[0])
			return PowOf(c, N(-1))
		case "csc":
			s, _ := b.sinCos(args[0])
			return PowOf(s, N(-1))
		}
		return funcOf(v.name, args...).Simplify()
	}
	return e
}

// sinCos returns sin(arg) and cos(arg) with angle sums and integer multiples
// expanded. Expansions that would exceed MaxTerms are left as sin(arg) and
// cos(arg).
func (b *Budget) sinCos(arg Expr) (Expr, Expr) {
	b.tick()
	switch v := arg.(type) {
	case *Add:
		s, c := b.sinCos(v.terms[0])
		for _, t := range v.terms[1:] {
			st, ct := b.sinCos(t)
			var ok bool
			if s, c, ok = b.angleSum(s, c, st, ct); !ok {
				return SinOf(arg), CosOf(arg)
			}
		}
		return s, c
	case *Mul:
		k, ok := v.factors[0].(*Num)
		if !ok {
			break
		}
		if k.IsNegative() {
			s, c := b.sinCos(Neg(arg))
			return Neg(s), c
		}
		n, ok := k.Int64()
		if !ok || n < 2 || n > maxAngleMultiple {
			break
		}
		s1, c1 := b.sinCos(restOf(v))
		s, c := s1, c1
		for i := int64(1); i < n; i++ {
			if s, c, ok = b.angleSum(s, c, s1, c1); !ok {
				return SinOf(arg), CosOf(arg)
			}
		}
		return s, c
	}
	return SinOf(arg), CosOf(arg)
}

// angleSum returns sin(u+v) and cos(u+v), expanded, from the sines and
// cosines of u and v. ok is false when the result would exceed MaxTerms.
func (b *Budget) angleSum(su, cu, sv, cv Expr) (s, c Expr, ok bool) {
	b.tick()
	wsu, wcu, wsv, wcv := width(su), width(cu), width(sv), width(cv)
	est := satAdd(satAdd(satMul(wsu, wcv), satMul(wcu, wsv)), satAdd(satMul(wcu, wcv), satMul(wsu, wsv)))
	if est > b.MaxTerms {
		return nil, nil, false
	}
	s = b.expand(AddOf(MulOf(su, cv), MulOf(cu, sv)))
	c = b.expand(Sub(MulOf(cu, cv), MulOf(su, sv)))
	if satAdd(width(s), width(c)) > b.MaxTerms {
		return nil, nil, false
	}
	return s, c, true
}

// reducePythagorean replaces cos(u)**n, n >= 2, by
// cos(u)**(n mod 2) * (1 - sin(u)**2)**(n div 2).
func (b *Budget) reducePythagorean(e Expr) (Expr, bool) {
	b.tick()
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		changed := false
		for i, t := range v.terms {
			var c bool
			terms[i], c = b.reducePythagorean(t)
			changed = changed || c
		}
		if !changed {
			return e, false
		}
		return AddOf(terms...), true
	case *Mul:
		factors := make([]Expr, len(v.factors))
		changed := false
		for i, f := range v.factors {
			var c bool
			factors[i], c = b.reducePythagorean(f)
			changed = changed || c
		}
		if !changed {
			return e, false
		}
		return MulOf(factors...), true
	case *Pow:
		if f, ok := v.base.(*Func); ok && f.name == "cos" {
			if n, ok := v.exp.(*Num); ok {
				if k, ok := n.Int64(); ok && k >= 2 && k <= int64(2*b.MaxDegree) {
					out := PowOf(Sub(N(1), PowOf(SinOf(f.args[0]), N(2))), N(k/2))
					if k%2 == 1 {
						out = MulOf(f, out)
					}
					return out, true
				}
			}
		}
		base, cb := b.reducePythagorean(v.base)
		exp, ce := b.reducePythagorean(v.exp)
		if !cb && !ce {
			return e, false
		}
		return PowOf(base, exp), true
	case *Func:
		args := make([]Expr, len(v.args))
		changed := false
		for i, a := range v.args {
			var c bool
			args[i], c = b.reducePythagorean(a)
			changed = changed || c
		}
		if !changed {
			return e, false
		}
		return funcOf(v.name, args...).Simplify(), true
	}
	return e, false
}

// ============================================================
// Logarithms
// ============================================================

// combineLogs merges two or more integer multiples of logarithms in one sum:
// a*log(x) + b*log(y) becomes log(x**a * y**b).
func (b *Budget) combineLogs(e Expr) Expr {
	b.tick()
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, 0, len(v.terms))
		var logTerms, logArgs []Expr
		for _, t := range v.terms {
			t = b.combineLogs(t)
			c, rest := SplitCoeff(t)
			if f, ok := rest.(*Func); ok && f.name == "log" && c.IsInteger() {
				logTerms = append(logTerms, t)
				logArgs = append(logArgs, PowOf(f.args[0], c))
				continue
			}
			terms = append(terms, t)
		}
		if len(logArgs) >= 2 {
			terms = append(terms, LogOf(MulOf(logArgs...)))
		} else {
			terms = append(terms, logTerms...)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = b.combineLogs(f)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(b.combineLogs(v.base), b.combineLogs(v.exp))
	case *Func:
		args := make([]Expr, len(v.args))
		for i, a := range v.args {
			args[i] = b.combineLogs(a)
		}
		return funcOf(v.name, args...).Simplify()
	}
	return e
}

// ============================================================
// Canonical form
// ============================================================

const maxCanonicalPasses = 8

// Canonicalize rewrites e into the form used for printing and comparison:
// trigonometric functions through sin and cos, products expanded, even
// powers of cos reduced, logarithms combined. Passes repeat until the
// printed form stops changing.
func Canonicalize(e Expr) Expr { return DefaultBudget().Canonicalize(e) }

func (b *Budget) Canonicalize(e Expr) Expr {
	curr := e.Simplify()
	prev := curr.String()
	for i := 0; i < maxCanonicalPasses; i++ {
		next := b.expand(b.rewriteTrig(curr))
		if r, changed := b.reducePythagorean(next); changed {
			next = b.expand(r)
		}
		next = b.combineLogs(next)
		curr = next
		s := next.String()
		if s == prev {
			break
		}
		prev = s
	}
	return curr
}

// IsZeroDifference reports whether a - b canonicalizes to zero, either
// directly or after bringing the difference over a common denominator.
func (b *Budget) IsZeroDifference(a, c Expr) bool {
	d := b.Canonicalize(Sub(a, c))
	if IsZero(d) {
		return true
	}
	num, _ := b.Together(d)
	return IsZero(b.Canonicalize(num))
}
