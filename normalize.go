package mathgrade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/njchilds90/mathgrade/symbolic"
)

var errSymbolicPanic = errors.New("mathgrade: symbolic rewrite panicked")

// guard runs fn and turns a panic into an error. Budget aborts keep their
// ErrBudgetExceeded identity.
func guard(fn func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok && errors.Is(e, symbolic.ErrBudgetExceeded) {
				err = e
				return
			}
			err = fmt.Errorf("%w: %v", errSymbolicPanic, p)
		}
	}()
	fn()
	return nil
}

// canonicalize rewrites the tree of r into canonical form. Equations are
// canonicalized side by side. On error r is returned unchanged.
func (n *Normalizer) canonicalize(ctx context.Context, r ParseResult) (ParseResult, error) {
	out := r
	err := guard(func() {
		b := n.budget(ctx)
		if r.Equation != nil {
			out.Equation = symbolic.Eq(b.Canonicalize(r.Equation.LHS), b.Canonicalize(r.Equation.RHS))
			return
		}
		out.Expr = b.Canonicalize(r.Expr)
	})
	if err != nil {
		return r, err
	}
	return out, nil
}

// canonicalString prints the canonical form of r. Fallback results print
// their fallback string; a failed rewrite prints the unsimplified tree.
func (n *Normalizer) canonicalString(ctx context.Context, r ParseResult) (string, error) {
	if !r.Symbolic() {
		return r.Fallback, nil
	}
	c, err := n.canonicalize(ctx, r)
	return c.String(), err
}

// Normalize returns the canonical storage form of raw. It never panics;
// unparseable input yields the basic string normalization.
func (n *Normalizer) Normalize(ctx context.Context, raw string) string {
	if n.normalized == nil {
		s, _ := n.normalize(ctx, raw)
		return s
	}
	return n.normalized.getOrCompute(raw, func() (string, bool) { return n.normalize(ctx, raw) })
}

func (n *Normalizer) normalize(ctx context.Context, raw string) (out string, cacheable bool) {
	defer func() {
		if p := recover(); p != nil {
			n.logger.Error("normalize panicked", zap.String("input", clip(raw)), zap.Any("panic", p))
			out, cacheable = strings.TrimSpace(raw), false
		}
	}()
	ctx, cancel := n.withTimeout(ctx)
	defer cancel()

	res := n.parse(ctx, raw)
	s, err := n.canonicalString(ctx, res)
	if err != nil {
		n.logger.Debug("canonicalization failed, keeping parsed form",
			zap.String("input", clip(raw)),
			zap.String("strategy", res.Strategy),
			zap.Error(err))
		return s, false
	}
	return s, ctx.Err() == nil
}

// Analysis is the full outcome of normalizing one input.
type Analysis struct {
	Strategy   string
	Normalized string
	LaTeX      string
	// Tree is the JSON-ready expression tree, nil for fallback results.
	Tree map[string]interface{}
}

// Analyze parses and canonicalizes raw and returns every rendering of it.
func (n *Normalizer) Analyze(ctx context.Context, raw string) (a Analysis) {
	defer func() {
		if p := recover(); p != nil {
			n.logger.Error("analyze panicked", zap.String("input", clip(raw)), zap.Any("panic", p))
			trimmed := strings.TrimSpace(raw)
			a = Analysis{Strategy: StrategyFallback, Normalized: trimmed, LaTeX: trimmed}
		}
	}()
	ctx, cancel := n.withTimeout(ctx)
	defer cancel()

	res := n.parse(ctx, raw)
	a.Strategy = res.Strategy
	if !res.Symbolic() {
		a.Normalized = res.Fallback
		a.LaTeX = strings.TrimSpace(raw)
		return a
	}
	c, err := n.canonicalize(ctx, res)
	if err != nil {
		n.logger.Debug("canonicalization failed, keeping parsed form", zap.String("input", clip(raw)), zap.Error(err))
	}
	a.Normalized = c.String()
	if c.Equation != nil {
		a.LaTeX = c.Equation.LaTeX()
		a.Tree = symbolic.EquationTree(c.Equation)
	} else {
		a.LaTeX = c.Expr.LaTeX()
		a.Tree = symbolic.Tree(c.Expr)
	}
	return a
}

// SimplifiedLaTeX renders the canonical form of raw as LaTeX. Input that
// does not parse is returned trimmed.
func (n *Normalizer) SimplifiedLaTeX(ctx context.Context, raw string) string {
	return n.Analyze(ctx, raw).LaTeX
}
