// Package mathgrade decides whether two student-entered mathematical
// expressions, in plain text or LaTeX, denote the same mathematical object,
// and produces a canonical string form for storage.
//
// Design goals:
//   - Never fail: every input yields a string and every pair a verdict
//   - Deterministic: same inputs, same outputs, on every run
//   - Bounded: every call runs under a deadline and expansion caps
//   - Safe for concurrent use
package mathgrade

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/njchilds90/mathgrade/symbolic"
)

// ============================================================
// Configuration
// ============================================================

// Config holds the engine limits.
type Config struct {
	Timeout         time.Duration
	MaxInputLength  int
	MaxNesting      int
	MaxExpandTerms  int
	MaxExpandDegree int
	CacheSize       int
	NumericProbe    bool
	ProbeSamples    int
}

// DefaultConfig returns the limits used by the package-level functions.
func DefaultConfig() Config {
	return Config{
		Timeout:         2 * time.Second,
		MaxInputLength:  2000,
		MaxNesting:      64,
		MaxExpandTerms:  symbolic.DefaultMaxTerms,
		MaxExpandDegree: symbolic.DefaultMaxDegree,
		CacheSize:       1024,
		NumericProbe:    true,
		ProbeSamples:    8,
	}
}

// Recorder receives engine outcomes, typically for metrics.
type Recorder interface {
	ObserveStrategy(strategy string)
	ObserveVerdict(tier string, equivalent bool, elapsed time.Duration)
	ObserveCache(cache string, hit bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStrategy(string)                     {}
func (nopRecorder) ObserveVerdict(string, bool, time.Duration) {}
func (nopRecorder) ObserveCache(string, bool)                  {}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithConfig replaces the default limits.
func WithConfig(cfg Config) Option { return func(n *Normalizer) { n.cfg = cfg } }

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithRecorder sets the outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(n *Normalizer) {
		if r != nil {
			n.recorder = r
		}
	}
}

// ============================================================
// Normalizer
// ============================================================

// Normalizer canonicalizes and compares expressions. It is immutable after
// New returns and safe for concurrent use.
type Normalizer struct {
	cfg        Config
	logger     *zap.Logger
	recorder   Recorder
	strict     *Preprocessor
	literal    *Preprocessor
	strategies []Strategy
	normalized *resultCache[string]
	verdicts   *resultCache[Verdict]
}

// New builds a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		cfg:      DefaultConfig(),
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
		strict:   NewPreprocessor(),
		literal:  NewLiteralPreprocessor(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.strategies = n.defaultStrategies()
	if n.cfg.CacheSize > 0 {
		n.normalized = newResultCache[string]("normalize", n.cfg.CacheSize, n.recorder)
		n.verdicts = newResultCache[Verdict]("equivalence", n.cfg.CacheSize, n.recorder)
	}
	return n
}

// Config returns the limits in effect.
func (n *Normalizer) Config() Config { return n.cfg }

func (n *Normalizer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if n.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, n.cfg.Timeout)
}

func (n *Normalizer) budget(ctx context.Context) *symbolic.Budget {
	return symbolic.NewBudget(ctx, n.cfg.MaxExpandTerms, n.cfg.MaxExpandDegree)
}

// ============================================================
// Package-level defaults
// ============================================================

var (
	defaultOnce       sync.Once
	defaultNormalizer *Normalizer
)

// Default returns the shared Normalizer behind the package-level functions.
func Default() *Normalizer {
	defaultOnce.Do(func() { defaultNormalizer = New() })
	return defaultNormalizer
}

// NormalizeExpression returns the canonical storage form of raw.
func NormalizeExpression(raw string) string {
	return Default().Normalize(context.Background(), raw)
}

// ExpressionsEquivalent reports whether a and b denote the same expression.
// Either side may be raw input or a previously normalized form.
func ExpressionsEquivalent(a, b string) bool {
	return Default().Equivalent(context.Background(), a, b)
}

// SimplifiedLaTeX renders the canonical form of raw as LaTeX.
func SimplifiedLaTeX(raw string) string {
	return Default().SimplifiedLaTeX(context.Background(), raw)
}
