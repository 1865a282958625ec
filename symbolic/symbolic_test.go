package symbolic_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/njchilds90/mathgrade/symbolic"
)

var (
	x = symbolic.S("x")
	y = symbolic.S("y")
	z = symbolic.S("z")
)

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := symbolic.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := symbolic.F(2, 6)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	n := symbolic.F(2, 5)
	if n.LaTeX() != `\frac{2}{5}` {
		t.Errorf("want \\frac{2}{5}, got %s", n.LaTeX())
	}
}

func TestParseNum_Decimals(t *testing.T) {
	cases := map[string]string{
		"2":    "2",
		"2.50": "5/2",
		".5":   "1/2",
		"3.":   "3",
		"0.1":  "1/10",
	}
	for lit, want := range cases {
		n, err := symbolic.ParseNum(lit)
		if err != nil {
			t.Fatalf("ParseNum(%q): %v", lit, err)
		}
		if n.String() != want {
			t.Errorf("ParseNum(%q): want %s, got %s", lit, want, n.String())
		}
	}
}

func TestParseNum_Invalid(t *testing.T) {
	if _, err := symbolic.ParseNum("1.2.3"); err == nil {
		t.Error("want error for 1.2.3")
	}
}

// ============================================================
// Sym tests
// ============================================================

func TestSym_String(t *testing.T) {
	cases := map[string]string{
		"x":       "x",
		"x_1":     "x_1",
		"theta":   "theta",
		"speed":   `\mathrm{speed}`,
		"pi":      "pi",
		"alpha_k": "alpha_k",
	}
	for name, want := range cases {
		if got := symbolic.S(name).String(); got != want {
			t.Errorf("S(%q): want %s, got %s", name, want, got)
		}
	}
}

func TestSym_LaTeX(t *testing.T) {
	cases := map[string]string{
		"theta": `\theta`,
		"x_12":  "x_{12}",
		"pi":    `\pi`,
		"E":     "e",
		"speed": `\mathrm{speed}`,
	}
	for name, want := range cases {
		if got := symbolic.S(name).LaTeX(); got != want {
			t.Errorf("S(%q).LaTeX(): want %s, got %s", name, want, got)
		}
	}
}

// ============================================================
// Add tests
// ============================================================

func TestAdd_Simple(t *testing.T) {
	e := symbolic.AddOf(x, symbolic.N(1))
	if e.String() != "x + 1" {
		t.Errorf("want x + 1, got %s", e.String())
	}
}

func TestAdd_CollapseToZero(t *testing.T) {
	e := symbolic.AddOf(x, symbolic.Neg(x))
	if e.String() != "0" {
		t.Errorf("want 0, got %s", e.String())
	}
}

func TestAdd_LikeTerms(t *testing.T) {
	e := symbolic.AddOf(x, x, x)
	if e.String() != "3*x" {
		t.Errorf("want 3*x, got %s", e.String())
	}
}

func TestAdd_LikeProducts(t *testing.T) {
	e := symbolic.AddOf(symbolic.MulOf(symbolic.N(2), x, y), symbolic.MulOf(symbolic.N(3), y, x))
	if e.String() != "5*x*y" {
		t.Errorf("want 5*x*y, got %s", e.String())
	}
}

func TestAdd_OrderAndSigns(t *testing.T) {
	e := symbolic.AddOf(symbolic.N(-1), symbolic.Neg(x), symbolic.PowOf(x, symbolic.N(2)))
	if e.String() != "x**2 - x - 1" {
		t.Errorf("want x**2 - x - 1, got %s", e.String())
	}
}

func TestAdd_RationalCoefficient(t *testing.T) {
	e := symbolic.AddOf(x, symbolic.MulOf(symbolic.F(-1, 2), y))
	if e.String() != "x - 1/2*y" {
		t.Errorf("want x - 1/2*y, got %s", e.String())
	}
}

func TestAdd_OrderIndependent(t *testing.T) {
	a := symbolic.AddOf(y, x, symbolic.N(3))
	b := symbolic.AddOf(symbolic.N(3), x, y)
	if a.String() != b.String() || !a.Equal(b) {
		t.Errorf("want equal sums, got %s and %s", a, b)
	}
}

// ============================================================
// Mul tests
// ============================================================

func TestMul_SameBase(t *testing.T) {
	e := symbolic.MulOf(x, x)
	if e.String() != "x**2" {
		t.Errorf("want x**2, got %s", e.String())
	}
}

func TestMul_ZeroCollapse(t *testing.T) {
	e := symbolic.MulOf(symbolic.N(0), x)
	if e.String() != "0" {
		t.Errorf("want 0, got %s", e.String())
	}
}

func TestMul_OneElide(t *testing.T) {
	e := symbolic.MulOf(symbolic.N(1), x)
	if e.String() != "x" {
		t.Errorf("want x, got %s", e.String())
	}
}

func TestMul_Cancel(t *testing.T) {
	e := symbolic.Div(x, x)
	if e.String() != "1" {
		t.Errorf("want 1, got %s", e.String())
	}
}

func TestMul_HalfPowers(t *testing.T) {
	h := symbolic.SqrtOf(x)
	e := symbolic.MulOf(h, h)
	if e.String() != "x" {
		t.Errorf("want x, got %s", e.String())
	}
}

func TestMul_ExpCombines(t *testing.T) {
	e := symbolic.MulOf(symbolic.ExpOf(x), symbolic.ExpOf(y))
	if e.String() != "exp(x + y)" {
		t.Errorf("want exp(x + y), got %s", e.String())
	}
}

func TestMul_NegatedSum(t *testing.T) {
	e := symbolic.Neg(symbolic.AddOf(x, symbolic.N(1)))
	if e.String() != "-(x + 1)" {
		t.Errorf("want -(x + 1), got %s", e.String())
	}
}

func TestMul_RationalCoefficient(t *testing.T) {
	e := symbolic.MulOf(symbolic.F(1, 2), x)
	if e.String() != "1/2*x" {
		t.Errorf("want 1/2*x, got %s", e.String())
	}
}

// ============================================================
// Pow tests
// ============================================================

func TestPow_Basics(t *testing.T) {
	cases := []struct {
		name string
		e    symbolic.Expr
		want string
	}{
		{"zero exponent", symbolic.PowOf(x, symbolic.N(0)), "1"},
		{"one exponent", symbolic.PowOf(x, symbolic.N(1)), "x"},
		{"integer power", symbolic.PowOf(symbolic.N(2), symbolic.N(10)), "1024"},
		{"negative power", symbolic.PowOf(symbolic.N(2), symbolic.N(-2)), "1/4"},
		{"exact root", symbolic.PowOf(symbolic.N(4), symbolic.F(1, 2)), "2"},
		{"rational root", symbolic.PowOf(symbolic.F(8, 27), symbolic.F(2, 3)), "4/9"},
		{"inexact root", symbolic.PowOf(symbolic.N(2), symbolic.F(1, 2)), "2**(1/2)"},
		{"nested", symbolic.PowOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(3)), "x**6"},
		{"product", symbolic.PowOf(symbolic.MulOf(symbolic.N(2), x), symbolic.N(2)), "4*x**2"},
		{"reciprocal", symbolic.PowOf(x, symbolic.N(-1)), "x**(-1)"},
		{"sum base", symbolic.PowOf(symbolic.AddOf(x, symbolic.N(1)), symbolic.N(2)), "(x + 1)**2"},
		{"e base", symbolic.PowOf(symbolic.E, x), "exp(x)"},
	}
	for _, tc := range cases {
		if got := tc.e.String(); got != tc.want {
			t.Errorf("%s: want %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestPow_LaTeX(t *testing.T) {
	if got := symbolic.PowOf(x, symbolic.N(2)).LaTeX(); got != "x^{2}" {
		t.Errorf("want x^{2}, got %s", got)
	}
	if got := symbolic.SqrtOf(x).LaTeX(); got != `\sqrt{x}` {
		t.Errorf("want \\sqrt{x}, got %s", got)
	}
}

// ============================================================
// Func tests
// ============================================================

func TestFunc_SpecialValues(t *testing.T) {
	cases := []struct {
		e    symbolic.Expr
		want string
	}{
		{symbolic.SinOf(symbolic.N(0)), "0"},
		{symbolic.CosOf(symbolic.N(0)), "1"},
		{symbolic.SinOf(symbolic.Pi), "0"},
		{symbolic.CosOf(symbolic.Pi), "-1"},
		{symbolic.SinOf(symbolic.MulOf(symbolic.F(1, 2), symbolic.Pi)), "1"},
		{symbolic.SinOf(symbolic.Neg(x)), "-sin(x)"},
		{symbolic.CosOf(symbolic.Neg(x)), "cos(x)"},
		{symbolic.ExpOf(symbolic.N(0)), "1"},
		{symbolic.LogOf(symbolic.N(1)), "0"},
		{symbolic.LogOf(symbolic.E), "1"},
		{symbolic.LogOf(symbolic.ExpOf(x)), "x"},
		{symbolic.AbsOf(symbolic.N(-3)), "3"},
	}
	for _, tc := range cases {
		if got := tc.e.String(); got != tc.want {
			t.Errorf("want %s, got %s", tc.want, got)
		}
	}
}

func TestFunc_LaTeX_Sin(t *testing.T) {
	if got := symbolic.SinOf(x).LaTeX(); got != `\sin\left(x\right)` {
		t.Errorf("want \\sin\\left(x\\right), got %s", got)
	}
}

func TestApply_Unknown(t *testing.T) {
	if _, err := symbolic.Apply("gamma", x); !errors.Is(err, symbolic.ErrUnknownFunction) {
		t.Errorf("want ErrUnknownFunction, got %v", err)
	}
	if _, err := symbolic.Apply("sin", x, y); !errors.Is(err, symbolic.ErrArity) {
		t.Errorf("want ErrArity, got %v", err)
	}
}

func TestApply_LogBase(t *testing.T) {
	e, err := symbolic.Apply("log", x, symbolic.N(2))
	if err != nil {
		t.Fatal(err)
	}
	if e.String() != "log(2)**(-1)*log(x)" {
		t.Errorf("want log(2)**(-1)*log(x), got %s", e.String())
	}
}

// ============================================================
// Expand tests
// ============================================================

func TestExpand_Square(t *testing.T) {
	e := symbolic.Expand(symbolic.PowOf(symbolic.AddOf(x, symbolic.N(1)), symbolic.N(2)))
	if e.String() != "x**2 + 2*x + 1" {
		t.Errorf("want x**2 + 2*x + 1, got %s", e.String())
	}
}

func TestExpand_DifferenceOfSquares(t *testing.T) {
	e := symbolic.Expand(symbolic.MulOf(symbolic.AddOf(x, y), symbolic.Sub(x, y)))
	if e.String() != "x**2 - y**2" {
		t.Errorf("want x**2 - y**2, got %s", e.String())
	}
}

func TestExpand_TermCap(t *testing.T) {
	b := symbolic.NewBudget(context.Background(), 4, 12)
	e := b.Expand(symbolic.PowOf(symbolic.AddOf(x, symbolic.N(1)), symbolic.N(3)))
	if e.String() != "(x + 1)**3" {
		t.Errorf("want unexpanded (x + 1)**3, got %s", e.String())
	}
}

func TestExpand_DegreeCap(t *testing.T) {
	b := symbolic.NewBudget(context.Background(), 512, 2)
	e := b.Expand(symbolic.PowOf(symbolic.AddOf(x, symbolic.N(1)), symbolic.N(3)))
	if e.String() != "(x + 1)**3" {
		t.Errorf("want unexpanded (x + 1)**3, got %s", e.String())
	}
}

func TestExpand_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := symbolic.NewBudget(ctx, 512, 12)
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, symbolic.ErrBudgetExceeded) {
			t.Errorf("want ErrBudgetExceeded panic, got %v", r)
		}
	}()
	b.Expand(symbolic.PowOf(symbolic.AddOf(x, y, z), symbolic.N(6)))
	t.Error("expected expansion to abort")
}

// ============================================================
// Canonical form tests
// ============================================================

func TestCanonicalize_Pythagorean(t *testing.T) {
	e := symbolic.AddOf(
		symbolic.PowOf(symbolic.SinOf(x), symbolic.N(2)),
		symbolic.PowOf(symbolic.CosOf(x), symbolic.N(2)),
	)
	if got := symbolic.Canonicalize(e).String(); got != "1" {
		t.Errorf("want 1, got %s", got)
	}
}

func TestCanonicalize_DoubleAngle(t *testing.T) {
	lhs := symbolic.SinOf(symbolic.MulOf(symbolic.N(2), x))
	rhs := symbolic.MulOf(symbolic.N(2), symbolic.SinOf(x), symbolic.CosOf(x))
	if got := symbolic.Canonicalize(symbolic.Sub(lhs, rhs)).String(); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestCanonicalize_Tangent(t *testing.T) {
	if got := symbolic.Canonicalize(symbolic.TanOf(x)).String(); got != "cos(x)**(-1)*sin(x)" {
		t.Errorf("want cos(x)**(-1)*sin(x), got %s", got)
	}
}

func TestCanonicalize_LogCombine(t *testing.T) {
	e := symbolic.AddOf(symbolic.LogOf(x), symbolic.LogOf(y))
	if got := symbolic.Canonicalize(e).String(); got != "log(x*y)" {
		t.Errorf("want log(x*y), got %s", got)
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	e := symbolic.MulOf(symbolic.AddOf(x, symbolic.N(2)), symbolic.AddOf(x, symbolic.N(3)))
	once := symbolic.Canonicalize(e)
	twice := symbolic.Canonicalize(once)
	if once.String() != "x**2 + 5*x + 6" || twice.String() != once.String() {
		t.Errorf("want stable x**2 + 5*x + 6, got %s then %s", once, twice)
	}
}

func TestCanonicalize_AngleSumTermCap(t *testing.T) {
	b := symbolic.NewBudget(context.Background(), 4, 12)
	e := symbolic.SinOf(symbolic.AddOf(x, y, z))
	if got := b.Canonicalize(e).String(); got != "sin(x + y + z)" {
		t.Errorf("want unexpanded sin(x + y + z), got %s", got)
	}
}

func TestCanonicalize_ExpiredDeadlineAbortsTrig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	b := symbolic.NewBudget(ctx, 512, 12)
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, symbolic.ErrBudgetExceeded) {
			t.Errorf("want ErrBudgetExceeded panic, got %v", r)
		}
	}()
	b.Canonicalize(symbolic.SinOf(symbolic.MulOf(symbolic.N(12), symbolic.AddOf(x, y, z))))
	t.Error("expected canonicalization to abort")
}

func TestParseNum_Exponent(t *testing.T) {
	cases := map[string]string{
		"1e5":    "100000",
		"1.5e-3": "3/2000",
		"2.5E+2": "250",
		".5e1":   "5",
	}
	for in, want := range cases {
		n, err := symbolic.ParseNum(in)
		if err != nil {
			t.Errorf("ParseNum(%q): %v", in, err)
			continue
		}
		if n.String() != want {
			t.Errorf("ParseNum(%q) = %s, want %s", in, n, want)
		}
	}
	if _, err := symbolic.ParseNum("1e100000"); err == nil {
		t.Error("want error for oversized exponent")
	}
}

func TestIsZeroDifference_Rational(t *testing.T) {
	b := symbolic.DefaultBudget()
	num := symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.MulOf(symbolic.N(2), x), symbolic.N(1))
	lhs := symbolic.Div(num, symbolic.AddOf(x, symbolic.N(1)))
	if !b.IsZeroDifference(lhs, symbolic.AddOf(x, symbolic.N(1))) {
		t.Error("want (x**2 + 2*x + 1)/(x + 1) - (x + 1) to be zero")
	}
	if b.IsZeroDifference(x, y) {
		t.Error("x - y must not be zero")
	}
}

// ============================================================
// Evaluation, symbols, equations, JSON
// ============================================================

func TestEvalFloat(t *testing.T) {
	e := symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(1))
	v, ok := symbolic.EvalFloat(e, map[string]float64{"x": 2})
	if !ok || math.Abs(v-5) > 1e-12 {
		t.Errorf("want 5, got %v (ok=%v)", v, ok)
	}
	if _, ok := symbolic.EvalFloat(symbolic.LogOf(x), map[string]float64{"x": -1}); ok {
		t.Error("log(-1) must not evaluate")
	}
	if _, ok := symbolic.EvalFloat(x, nil); ok {
		t.Error("unbound symbol must not evaluate")
	}
}

func TestFreeSymbols(t *testing.T) {
	e := symbolic.AddOf(symbolic.MulOf(symbolic.Pi, x), y)
	syms := symbolic.FreeSymbols(e)
	if len(syms) != 2 {
		t.Fatalf("want 2 symbols, got %d", len(syms))
	}
	if _, ok := syms["pi"]; ok {
		t.Error("pi is a constant")
	}
	if got := symbolic.SortedSymbols(e, z); len(got) != 3 || got[0] != "x" || got[2] != "z" {
		t.Errorf("want [x y z], got %v", got)
	}
}

func TestEquation_Residual(t *testing.T) {
	eq := symbolic.Eq(x, symbolic.N(2))
	if eq.String() != "x = 2" {
		t.Errorf("want x = 2, got %s", eq.String())
	}
	if got := eq.Residual().String(); got != "x - 2" {
		t.Errorf("want x - 2, got %s", got)
	}
}

func TestToJSON_Num(t *testing.T) {
	got, err := symbolic.ToJSON(symbolic.N(3))
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"type":"num","value":"3"}` {
		t.Errorf("unexpected JSON %s", got)
	}
}

func TestDeterminism(t *testing.T) {
	build := func() string {
		return symbolic.Canonicalize(symbolic.PowOf(symbolic.AddOf(z, y, x), symbolic.N(3))).String()
	}
	first := build()
	for i := 0; i < 20; i++ {
		if got := build(); got != first {
			t.Fatalf("run %d: want %s, got %s", i, first, got)
		}
	}
}
