package symbolic

import (
	"context"
	"errors"
	"fmt"
	"math/big"
)

// ============================================================
// Budget
// ============================================================

// ErrBudgetExceeded is the panic value raised when a rewrite runs past its
// context or step limit. Callers recover it at their own boundary.
var ErrBudgetExceeded = errors.New("symbolic: budget exceeded")

// Defaults used when no explicit budget is given.
const (
	DefaultMaxTerms  = 512
	DefaultMaxDegree = 12
	maxSteps         = 1 << 20
)

// Budget bounds one rewrite. Exceeding MaxTerms or MaxDegree leaves the
// affected subtree unexpanded; exceeding the context or step limit aborts the
// whole rewrite with ErrBudgetExceeded. A Budget is not safe for concurrent use.
type Budget struct {
	ctx       context.Context
	MaxTerms  int
	MaxDegree int
	steps     int
}

func NewBudget(ctx context.Context, maxTerms, maxDegree int) *Budget {
	if ctx == nil {
		ctx = context.Background()
	}
	if maxTerms <= 0 {
		maxTerms = DefaultMaxTerms
	}
	if maxDegree <= 0 {
		maxDegree = DefaultMaxDegree
	}
	return &Budget{ctx: ctx, MaxTerms: maxTerms, MaxDegree: maxDegree}
}

func DefaultBudget() *Budget {
	return NewBudget(context.Background(), DefaultMaxTerms, DefaultMaxDegree)
}

func (b *Budget) tick() {
	b.steps++
	if b.steps > maxSteps {
		panic(fmt.Errorf("%w: step limit reached", ErrBudgetExceeded))
	}
	select {
	case <-b.ctx.Done():
		panic(fmt.Errorf("%w: %v", ErrBudgetExceeded, b.ctx.Err()))
	default:
	}
}

// width estimates how many terms e has once fully expanded, saturating at
// maxWidth.
func width(e Expr) int {
	switch v := e.(type) {
	case *Add:
		w := 0
		for _, t := range v.terms {
			w = satAdd(w, width(t))
		}
		return w
	case *Mul:
		w := 1
		for _, f := range v.factors {
			w = satMul(w, width(f))
		}
		return w
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInteger() && n.IsPositive() {
			k, ok := n.Int64()
			if !ok {
				return maxWidth
			}
			bw, w := width(v.base), 1
			for i := int64(0); i < k && w < maxWidth; i++ {
				w = satMul(w, bw)
			}
			return w
		}
	}
	return 1
}

const maxWidth = 1 << 30

func satAdd(a, b int) int {
	if a+b > maxWidth {
		return maxWidth
	}
	return a + b
}

func satMul(a, b int) int {
	if a != 0 && b > maxWidth/a {
		return maxWidth
	}
	return a * b
}

// ============================================================
// Expand
// ============================================================

// Expand distributes products over sums and raises sums to small positive
// integer powers using the default budget.
func Expand(e Expr) Expr { return DefaultBudget().Expand(e) }

func (b *Budget) Expand(e Expr) Expr { return b.expand(e.Simplify()) }

func (b *Budget) expand(e Expr) Expr {
	b.tick()
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = b.expand(t)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = b.expand(f)
		}
		acc := []Expr{N(1)}
		for _, f := range factors {
			next, ok := b.distribute(acc, termsOf(f))
			if !ok {
				return MulOf(factors...)
			}
			acc = next
		}
		return AddOf(acc...)
	case *Pow:
		base := b.expand(v.base)
		exp := b.expand(v.exp)
		add, isAdd := base.(*Add)
		n, isNum := exp.(*Num)
		if !isAdd || !isNum || !n.IsInteger() || !n.IsPositive() {
			return PowOf(base, exp)
		}
		k, ok := n.Int64()
		if !ok || k > int64(b.MaxDegree) {
			return PowOf(base, exp)
		}
		acc := add.terms
		for i := int64(1); i < k; i++ {
			next, ok := b.distribute(acc, add.terms)
			if !ok {
				return PowOf(base, exp)
			}
			acc = next
		}
		return AddOf(acc...)
	case *Func:
		args := make([]Expr, len(v.args))
		for i, a := range v.args {
			args[i] = b.expand(a)
		}
		return funcOf(v.name, args...).Simplify()
	}
	return e
}

// distribute multiplies two sums given as term lists and collects the result.
func (b *Budget) distribute(as, bs []Expr) ([]Expr, bool) {
	if len(as)*len(bs) > b.MaxTerms {
		return nil, false
	}
	out := make([]Expr, 0, len(as)*len(bs))
	for _, x := range as {
		for _, y := range bs {
			b.tick()
			out = append(out, MulOf(x, y))
		}
	}
	return termsOf(AddOf(out...)), true
}

func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Together
// ============================================================

// Together splits e into numerator and denominator over a common
// denominator. Negative powers move below the line; equal denominators are
// not multiplied twice.
func (b *Budget) Together(e Expr) (num, den Expr) {
	b.tick()
	switch v := e.(type) {
	case *Add:
		num, den = N(0), N(1)
		for _, t := range v.terms {
			n, d := b.Together(t)
			if d.Equal(den) {
				num = AddOf(num, n)
				continue
			}
			num = AddOf(MulOf(num, d), MulOf(n, den))
			den = MulOf(den, d)
		}
		return num, den
	case *Mul:
		nums := make([]Expr, 0, len(v.factors))
		dens := make([]Expr, 0, len(v.factors))
		for _, f := range v.factors {
			n, d := b.Together(f)
			nums = append(nums, n)
			dens = append(dens, d)
		}
		return MulOf(nums...), MulOf(dens...)
	case *Pow:
		exp, ok := v.exp.(*Num)
		if !ok {
			return e, N(1)
		}
		if exp.IsNegative() {
			n, d := b.Together(PowOf(v.base, numNeg(exp)))
			return d, n
		}
		if exp.IsInteger() {
			n, d := b.Together(v.base)
			return PowOf(n, exp), PowOf(d, exp)
		}
	case *Num:
		if !v.IsInteger() {
			return &Num{val: new(big.Rat).SetInt(v.val.Num())}, &Num{val: new(big.Rat).SetInt(v.val.Denom())}
		}
	}
	return e, N(1)
}
