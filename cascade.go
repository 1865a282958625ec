package mathgrade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/njchilds90/mathgrade/symbolic"
)

// Strategy names, in cascade order.
const (
	StrategyStrict   = "strict"
	StrategyExplicit = "explicit"
	StrategyLiteral  = "bare"
	StrategyFallback = "fallback"
)

var (
	ErrEmptyInput     = errors.New("mathgrade: empty input")
	ErrInputTooLong   = errors.New("mathgrade: input too long")
	ErrNestingTooDeep = errors.New("mathgrade: nesting too deep")
	errStrategyPanic  = errors.New("mathgrade: strategy panicked")
)

// ParseResult is the outcome of one parse attempt. Exactly one of Expr,
// Equation or Fallback is meaningful when Err is nil.
type ParseResult struct {
	Strategy string
	Cleaned  string
	Expr     symbolic.Expr
	Equation *symbolic.Equation
	Fallback string
	Err      error
}

// Symbolic reports whether the result carries a tree.
func (r ParseResult) Symbolic() bool { return r.Expr != nil || r.Equation != nil }

// String prints the tree, or the fallback string when there is none.
func (r ParseResult) String() string {
	switch {
	case r.Equation != nil:
		return r.Equation.String()
	case r.Expr != nil:
		return r.Expr.String()
	}
	return r.Fallback
}

// comparable returns the expression compared against the other side:
// the residual for equations.
func (r ParseResult) comparable() symbolic.Expr {
	if r.Equation != nil {
		return r.Equation.Residual()
	}
	return r.Expr
}

// Strategy is one attempt in the parse cascade. Parse receives the raw input
// and its strictly cleaned form.
type Strategy struct {
	Name  string
	Parse func(raw, cleaned string) ParseResult
}

func (n *Normalizer) defaultStrategies() []Strategy {
	return []Strategy{
		{Name: StrategyStrict, Parse: func(_, cleaned string) ParseResult {
			return treeResult(StrategyStrict, cleaned, strictResolver(cleaned))
		}},
		{Name: StrategyExplicit, Parse: func(_, cleaned string) ParseResult {
			return treeResult(StrategyExplicit, cleaned, autoResolver())
		}},
		{Name: StrategyLiteral, Parse: func(raw, _ string) ParseResult {
			return treeResult(StrategyLiteral, n.literal.Clean(raw), autoResolver())
		}},
		{Name: StrategyFallback, Parse: func(_, cleaned string) ParseResult {
			return ParseResult{Strategy: StrategyFallback, Cleaned: cleaned, Fallback: basicNormalize(cleaned)}
		}},
	}
}

func treeResult(name, cleaned string, r resolver) ParseResult {
	res := ParseResult{Strategy: name, Cleaned: cleaned}
	res.Expr, res.Equation, res.Err = parseStatement(cleaned, r)
	return res
}

// parse runs the cascade and returns the first successful result. The last
// strategy never fails. Input over the size limits skips preprocessing and
// goes to the last strategy as is.
func (n *Normalizer) parse(ctx context.Context, raw string) ParseResult {
	last := n.strategies[len(n.strategies)-1]
	if err := n.checkLimits(raw); err != nil {
		n.logger.Debug("skipping symbolic parse", zap.String("input", clip(raw)), zap.Error(err))
		return n.run(last, raw, raw)
	}
	cleaned := n.strict.Clean(raw)
	if strings.TrimSpace(cleaned) == "" {
		n.logger.Debug("skipping symbolic parse", zap.String("input", clip(raw)), zap.Error(ErrEmptyInput))
		return n.run(last, raw, cleaned)
	}
	for _, s := range n.strategies[:len(n.strategies)-1] {
		if ctx.Err() != nil {
			break
		}
		r := n.run(s, raw, cleaned)
		if r.Err == nil {
			return r
		}
		n.logger.Debug("parse strategy failed",
			zap.String("strategy", s.Name),
			zap.String("input", clip(raw)),
			zap.Error(r.Err))
	}
	n.logger.Warn("falling back to string normalization", zap.String("input", clip(raw)))
	return n.run(last, raw, cleaned)
}

func (n *Normalizer) run(s Strategy, raw, cleaned string) (r ParseResult) {
	defer func() {
		if p := recover(); p != nil {
			r = ParseResult{Strategy: s.Name, Cleaned: cleaned, Err: fmt.Errorf("%w: %v", errStrategyPanic, p)}
		}
	}()
	r = s.Parse(raw, cleaned)
	if r.Err == nil {
		n.recorder.ObserveStrategy(s.Name)
	}
	return r
}

// checkLimits rejects raw input too long or too deeply nested for the
// preprocessor and the symbolic strategies.
func (n *Normalizer) checkLimits(raw string) error {
	if l := utf8.RuneCountInString(raw); n.cfg.MaxInputLength > 0 && l > n.cfg.MaxInputLength {
		return fmt.Errorf("%w: %d > %d", ErrInputTooLong, l, n.cfg.MaxInputLength)
	}
	if d := nestingDepth(raw); n.cfg.MaxNesting > 0 && d > n.cfg.MaxNesting {
		return fmt.Errorf("%w: %d > %d", ErrNestingTooDeep, d, n.cfg.MaxNesting)
	}
	return nil
}

func nestingDepth(s string) int {
	depth, deepest := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
			if depth > deepest {
				deepest = depth
			}
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return deepest
}

func clip(s string) string {
	const limit = 120
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
