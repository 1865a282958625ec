package mathgrade_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/mathgrade"
)

// ============================================================
// Normalization
// ============================================================

func TestNormalizeExpression(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2x + 3", "2*x + 3"},
		{"3 + 2*x", "2*x + 3"},
		{"(x+1)^2", "x**2 + 2*x + 1"},
		{"b + a", "a + b"},
		{`\frac{a}{b}`, "a*b**(-1)"},
		{"0.5x", "1/2*x"},
		{"1.0", "1"},
		{`\sqrt{x}`, "x**(1/2)"},
		{"e^x", "exp(x)"},
		{"tan(x)", "cos(x)**(-1)*sin(x)"},
		{"sin(2x)", "2*cos(x)*sin(x)"},
		{"sin^2(x) + cos^2(x)", "1"},
		{"log(a) + log(b)", "log(a*b)"},
		{`\text{speed} t`, `\mathrm{speed}*t`},
		{"x^2 = 4", "x**2 = 4"},
		{"", ""},
		{"   ", ""},
		{"((", "(("},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, mathgrade.NormalizeExpression(tc.in))
		})
	}
}

func TestNormalizeExpression_Idempotent(t *testing.T) {
	inputs := []string{
		"2x+3", "(x+1)^2", `\frac{a}{b}`, "sin(2x)", `\text{speed} t`, "x^2 = 4", "1/3",
		"0.5x", `\sqrt{x}`, "e^x", "tan(x)", "-x", "x - 2", `\alpha_1 \theta`, "|x - 1|",
		"((unbalanced",
	}
	for _, in := range inputs {
		once := mathgrade.NormalizeExpression(in)
		assert.Equal(t, once, mathgrade.NormalizeExpression(once), "input %q", in)
	}
}

func TestNormalizeExpression_WhitespaceInvariance(t *testing.T) {
	assert.Equal(t,
		mathgrade.NormalizeExpression("2*x+3"),
		mathgrade.NormalizeExpression("  2 *  x +   3 "))
}

func TestNormalize_InputTooLongFallsBack(t *testing.T) {
	cfg := mathgrade.DefaultConfig()
	cfg.MaxInputLength = 5
	n := mathgrade.New(mathgrade.WithConfig(cfg))
	assert.Equal(t, "x+y+z", n.Normalize(context.Background(), "x + y + z"))
}

func TestNormalize_DeepNestingDegrades(t *testing.T) {
	deep := strings.Repeat("(", 200) + "x" + strings.Repeat(")", 200)
	var out string
	require.NotPanics(t, func() { out = mathgrade.NormalizeExpression(deep) })
	assert.Equal(t, deep, out)
}

func TestSimplifiedLaTeX(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`\frac{1}{2}x`, `\frac{x}{2}`},
		{"x^2", "x^{2}"},
		{"x^2 = 4", "x^{2} = 4"},
		{"  ((  ", "(("},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, mathgrade.SimplifiedLaTeX(tc.in))
		})
	}
}

func TestAnalyze_Tree(t *testing.T) {
	a := mathgrade.Default().Analyze(context.Background(), "2x + 3")
	assert.Equal(t, mathgrade.StrategyStrict, a.Strategy)
	assert.Equal(t, "2*x + 3", a.Normalized)
	require.NotNil(t, a.Tree)
	assert.Equal(t, "add", a.Tree["type"])

	a = mathgrade.Default().Analyze(context.Background(), "((")
	assert.Equal(t, mathgrade.StrategyFallback, a.Strategy)
	assert.Nil(t, a.Tree)
}

// ============================================================
// Equivalence
// ============================================================

func TestExpressionsEquivalent_Scenarios(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"2*x + 3", "3 + 2*x", true},
		{"x^2 + 2*x + 1", "(x + 1)^2", true},
		{`c\left(a+b\right)`, "c*(a+b)", true},
		{`\frac{x^2 + 2x + 1}{x + 1}`, "(x^2 + 2*x + 1)/(x + 1)", true},
		{"sin^2(x) + cos^2(x)", "1", true},
		{"x", "y", false},
		{"((unbalanced", "x", false},
		{"2x", "2*x", true},
		{"x + 1", "x + 2", false},
		{`\frac{a}{b}`, "a/b", true},
		{"x^{2}", "x^2", true},
		{`2x + \frac{3}{4}y^{2}`, "2*x + (3/4)*y^2", true},
		{"sin(2x)", "2 sin(x) cos(x)", true},
		{"log(a)+log(b)", "log(a*b)", true},
		{"1/3", "0.333333", false},
		{"(x^2+2x+1)/(x+1)", "x+1", true},
		{"x^2 = 4", "x^2 - 4 = 0", true},
		{"1.0", "1", true},
		{"0.1", "1/10", true},
		{"a+b", "b+a", true},
		{"a*b", "b*a", true},
		{"tan(x)", `\frac{\sin x}{\cos x}`, true},
		{"x", "abs(x)", false},
		{"", "", true},
		{"", "   ", true},
		{"", "x", false},
	}
	for _, tc := range cases {
		t.Run(tc.a+" vs "+tc.b, func(t *testing.T) {
			assert.Equal(t, tc.want, mathgrade.ExpressionsEquivalent(tc.a, tc.b))
			assert.Equal(t, tc.want, mathgrade.ExpressionsEquivalent(tc.b, tc.a), "symmetry")
		})
	}
}

func TestExpressionsEquivalent_Reflexive(t *testing.T) {
	for _, e := range []string{"x", "2x+3", `\frac{1}{x}`, "((unbalanced", "", "sin(x)^2"} {
		assert.True(t, mathgrade.ExpressionsEquivalent(e, e), "input %q", e)
	}
}

func TestExpressionsEquivalent_NormalizedForm(t *testing.T) {
	raw := `\frac{x^2 - 1}{x - 1}`
	stored := mathgrade.NormalizeExpression(raw)
	assert.True(t, mathgrade.ExpressionsEquivalent(stored, raw))
	assert.True(t, mathgrade.ExpressionsEquivalent(stored, "x + 1"))
}

func TestCompare_Tiers(t *testing.T) {
	n := mathgrade.New(mathgrade.WithConfig(noCache()))
	ctx := context.Background()
	cases := []struct {
		a, b string
		want mathgrade.Verdict
	}{
		{"x", "  x ", mathgrade.Verdict{Equivalent: true, Tier: mathgrade.TierIdentical}},
		{"2*x + 3", "3 + 2*x", mathgrade.Verdict{Equivalent: true, Tier: mathgrade.TierSymbolic}},
		{"sqrt(x^2)", "abs(x)", mathgrade.Verdict{Equivalent: true, Tier: mathgrade.TierNumeric}},
		{"((a", "((a ", mathgrade.Verdict{Equivalent: true, Tier: mathgrade.TierIdentical}},
		{"x", "y", mathgrade.Verdict{Tier: mathgrade.TierNone}},
		{"1e5", "100000", mathgrade.Verdict{Equivalent: true, Tier: mathgrade.TierSymbolic}},
		{"1099511627776", "1099511627777", mathgrade.Verdict{Tier: mathgrade.TierNone}},
		{"2^40", "2^40 + 1", mathgrade.Verdict{Tier: mathgrade.TierNone}},
		{"10^12 x", "10^12 x + 1", mathgrade.Verdict{Tier: mathgrade.TierNone}},
		{"1.2.3", "0.36", mathgrade.Verdict{Tier: mathgrade.TierNone}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, n.Compare(ctx, tc.a, tc.b), "%q vs %q", tc.a, tc.b)
	}
}

func TestCompare_NumericProbeDisabled(t *testing.T) {
	cfg := noCache()
	cfg.NumericProbe = false
	n := mathgrade.New(mathgrade.WithConfig(cfg))
	v := n.Compare(context.Background(), "sqrt(x^2)", "abs(x)")
	assert.False(t, v.Equivalent)
	assert.Equal(t, mathgrade.TierNone, v.Tier)
}

func TestCompare_LargePowersStayBounded(t *testing.T) {
	n := mathgrade.New(mathgrade.WithConfig(noCache()))
	v := n.Compare(context.Background(), "(x+1)^40", "(1+x)^40")
	assert.True(t, v.Equivalent)
}

func TestCompare_TrigExpansionHonorsTimeout(t *testing.T) {
	cfg := noCache()
	cfg.Timeout = 250 * time.Millisecond
	n := mathgrade.New(mathgrade.WithConfig(cfg))
	for _, expr := range []string{
		"sin(12(a+b+c+d+e+f+g+h))",
		"tan(12(a+b+c+d+e+f))^12",
		"cos(7x + 11y + 5z)^24",
	} {
		start := time.Now()
		v := n.Compare(context.Background(), expr, "x")
		assert.False(t, v.Equivalent, expr)
		assert.Less(t, time.Since(start), 3*time.Second, expr)
	}
}

func TestNormalize_HugeNestedInputStaysBounded(t *testing.T) {
	deep := strings.Repeat(`\frac{`, 40000) + "x" + strings.Repeat("}{2}", 40000)
	n := mathgrade.New(mathgrade.WithConfig(noCache()))
	start := time.Now()
	out := n.Normalize(context.Background(), deep)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.NotEmpty(t, out)
	assert.False(t, n.Equivalent(context.Background(), deep, "x"))
}

func TestNormalizeExpression_ScientificNotation(t *testing.T) {
	assert.Equal(t, "100000", mathgrade.NormalizeExpression("1e5"))
	assert.Equal(t, "3/2000", mathgrade.NormalizeExpression("1.5e-3"))
	assert.Equal(t, "2500*x", mathgrade.NormalizeExpression("2.5E3 x"))
}

func TestCompare_Cancelled(t *testing.T) {
	n := mathgrade.New(mathgrade.WithConfig(noCache()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NotPanics(t, func() { n.Compare(ctx, "(a+b+c)^6", "x") })
}

func TestEquivalent_Concurrent(t *testing.T) {
	n := mathgrade.New()
	ctx := context.Background()
	var wg sync.WaitGroup
	results := make([]bool, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				results[i] = n.Equivalent(ctx, "x^2 + 2*x + 1", "(x + 1)^2")
			} else {
				results[i] = n.Equivalent(ctx, "(x + 1)^2", "x^2 + 2*x + 1")
			}
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		assert.True(t, r, "goroutine %d", i)
	}
}

// ============================================================
// Tool interface
// ============================================================

func TestHandleToolCall(t *testing.T) {
	n := mathgrade.New()
	ctx := context.Background()

	resp := n.HandleToolCall(ctx, mathgrade.ToolRequest{
		Tool:   mathgrade.ToolNormalize,
		Params: map[string]interface{}{"expr": "3 + 2x"},
	})
	assert.Empty(t, resp.Error)
	assert.Equal(t, "2*x + 3", resp.String)
	assert.Equal(t, "2 x + 3", resp.LaTeX)

	resp = n.HandleToolCall(ctx, mathgrade.ToolRequest{
		Tool:   mathgrade.ToolEquivalent,
		Params: map[string]interface{}{"a": "a+b", "b": "b+a"},
	})
	assert.Equal(t, "true", resp.String)
	assert.Equal(t, mathgrade.Verdict{Equivalent: true, Tier: mathgrade.TierSymbolic}, resp.Result)

	resp = n.HandleToolCall(ctx, mathgrade.ToolRequest{Tool: mathgrade.ToolLaTeX, Params: map[string]interface{}{"expr": "x^2"}})
	assert.Equal(t, "x^{2}", resp.LaTeX)

	resp = n.HandleToolCall(ctx, mathgrade.ToolRequest{Tool: mathgrade.ToolEquivalent, Params: map[string]interface{}{"a": "x"}})
	assert.Equal(t, "missing param: b", resp.Error)

	resp = n.HandleToolCall(ctx, mathgrade.ToolRequest{Tool: mathgrade.ToolNormalize, Params: map[string]interface{}{"expr": 3}})
	assert.Equal(t, "param expr must be a string", resp.Error)

	resp = n.HandleToolCall(ctx, mathgrade.ToolRequest{Tool: "integrate"})
	assert.Equal(t, "unknown tool: integrate", resp.Error)
}

func TestToolSpec(t *testing.T) {
	spec := mathgrade.ToolSpec()
	for _, name := range []string{mathgrade.ToolNormalize, mathgrade.ToolEquivalent, mathgrade.ToolLaTeX} {
		assert.Contains(t, spec, `"name": "`+name+`"`)
	}
}

func noCache() mathgrade.Config {
	cfg := mathgrade.DefaultConfig()
	cfg.CacheSize = 0
	return cfg
}
