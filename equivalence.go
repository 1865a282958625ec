package mathgrade

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Tier names the check that decided a comparison.
type Tier string

const (
	TierIdentical Tier = "identical"
	TierSymbolic  Tier = "symbolic"
	TierNumeric   Tier = "numeric"
	TierCanonical Tier = "canonical"
	// TierString matches on basic string normalization only. It can report
	// unrelated expressions as equal when their text happens to coincide.
	TierString Tier = "string"
	TierNone   Tier = "none"
)

// Verdict is the outcome of one comparison.
type Verdict struct {
	Equivalent bool `json:"equivalent"`
	Tier       Tier `json:"tier"`
}

// Equivalent reports whether a and b denote the same expression.
func (n *Normalizer) Equivalent(ctx context.Context, a, b string) bool {
	return n.Compare(ctx, a, b).Equivalent
}

// Compare runs the tiers from cheapest to most permissive and stops at the
// first that matches. It never panics.
func (n *Normalizer) Compare(ctx context.Context, a, b string) Verdict {
	if n.verdicts == nil {
		v, _ := n.compare(ctx, a, b)
		return v
	}
	return n.verdicts.getOrCompute(pairKey(a, b), func() (Verdict, bool) { return n.compare(ctx, a, b) })
}

// pairKey is order independent so that a cached verdict serves both
// argument orders.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

func (n *Normalizer) compare(ctx context.Context, a, b string) (v Verdict, cacheable bool) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			n.logger.Error("compare panicked",
				zap.String("a", clip(a)),
				zap.String("b", clip(b)),
				zap.Any("panic", p))
			v, cacheable = Verdict{Tier: TierNone}, false
		}
		elapsed := time.Since(start)
		n.recorder.ObserveVerdict(string(v.Tier), v.Equivalent, elapsed)
		n.logger.Debug("equivalence verdict",
			zap.String("a", clip(a)),
			zap.String("b", clip(b)),
			zap.Bool("equivalent", v.Equivalent),
			zap.String("tier", string(v.Tier)),
			zap.Duration("elapsed", elapsed))
	}()

	if strings.TrimSpace(a) == strings.TrimSpace(b) {
		return Verdict{Equivalent: true, Tier: TierIdentical}, true
	}

	ctx, cancel := n.withTimeout(ctx)
	defer cancel()

	ra, rb := n.parse(ctx, a), n.parse(ctx, b)
	cacheable = true

	if ra.Symbolic() && rb.Symbolic() {
		ea, eb := ra.comparable(), rb.comparable()
		var zero bool
		err := guard(func() { zero = n.budget(ctx).IsZeroDifference(ea, eb) })
		switch {
		case err != nil:
			n.logger.Debug("symbolic difference aborted", zap.Error(err))
			cacheable = false
		case zero:
			return Verdict{Equivalent: true, Tier: TierSymbolic}, true
		}
		if n.cfg.NumericProbe && n.probe(ea, eb) {
			return Verdict{Equivalent: true, Tier: TierNumeric}, cacheable
		}
	}

	ca, errA := n.canonicalString(ctx, ra)
	cb, errB := n.canonicalString(ctx, rb)
	if errA != nil || errB != nil {
		cacheable = false
	}
	if ca != "" && ca == cb {
		return Verdict{Equivalent: true, Tier: TierCanonical}, cacheable
	}

	if fa := basicNormalize(ra.Cleaned); fa != "" && fa == basicNormalize(rb.Cleaned) {
		return Verdict{Equivalent: true, Tier: TierString}, cacheable
	}

	if ctx.Err() != nil {
		cacheable = false
	}
	return Verdict{Tier: TierNone}, cacheable
}
