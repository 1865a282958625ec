package mathgrade

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/njchilds90/mathgrade/symbolic"
)

// ============================================================
// Grammar
// ============================================================

// statement = expr [ "=" expr ]
//
//nolint:govet // participle grammar tags
type statementNode struct {
	LHS *exprNode `parser:"@@"`
	RHS *exprNode `parser:"( \"=\" @@ )?"`
}

//nolint:govet
type exprNode struct {
	Head *termNode  `parser:"@@"`
	Tail []*addNode `parser:"@@*"`
}

//nolint:govet
type addNode struct {
	Op   string    `parser:"@( \"+\" | \"-\" )"`
	Term *termNode `parser:"@@"`
}

//nolint:govet
type termNode struct {
	Head *unaryNode `parser:"@@"`
	Tail []*mulNode `parser:"@@*"`
}

//nolint:govet
type mulNode struct {
	Op     string     `parser:"@( \"*\" | \"/\" )"`
	Factor *unaryNode `parser:"@@"`
}

//nolint:govet
type unaryNode struct {
	Sign    string     `parser:"  ( @( \"-\" | \"+\" )"`
	Operand *unaryNode `parser:"    @@ )"`
	Power   *powerNode `parser:"| @@"`
}

// power = primary [ "**" unary ], so exponentiation is right associative and
// binds tighter than a leading minus.
//
//nolint:govet
type powerNode struct {
	Base *primaryNode `parser:"@@"`
	Exp  *unaryNode   `parser:"( \"**\" @@ )?"`
}

//nolint:govet
type primaryNode struct {
	Number *string   `parser:"  @Number"`
	Call   *callNode `parser:"| @@"`
	Ident  *string   `parser:"| @( Ident | Protected )"`
	Group  *exprNode `parser:"| \"(\" @@ \")\""`
}

//nolint:govet
type callNode struct {
	Name string      `parser:"@Ident \"(\""`
	Args []*exprNode `parser:"@@ ( \",\" @@ )* \")\""`
}

var mathLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`},
	{Name: "Protected", Pattern: `\\mathrm\{[A-Za-z][A-Za-z0-9_]*\}`},
	{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9_]*`},
	{Name: "Pow", Pattern: `\*\*`},
	{Name: "Punct", Pattern: `[-+*/(),=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var mathParser = participle.MustBuild[statementNode](
	participle.Lexer(mathLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(4),
)

// ============================================================
// Symbol resolution
// ============================================================

var (
	// ErrUnknownSymbol is returned when a strict parse meets a name outside its table.
	ErrUnknownSymbol = errors.New("mathgrade: unknown symbol")
	// ErrBareFunction is returned when a function name is used as a value.
	ErrBareFunction = errors.New("mathgrade: function used without arguments")
)

// resolver maps identifiers of one parse to expression leaves.
type resolver struct {
	// known is nil when every identifier becomes a fresh symbol.
	known map[string]bool
}

// strictResolver accepts constants, single letters and greek names with
// optional subscripts, and any identifier of that shape found by a lexical
// scan of the cleaned text.
func strictResolver(cleaned string) resolver {
	known := map[string]bool{}
	toks, err := mathLexer.LexString("", cleaned)
	if err != nil {
		return resolver{known: known}
	}
	identType := mathLexer.Symbols()["Ident"]
	for {
		t, err := toks.Next()
		if err != nil || t.EOF() {
			break
		}
		if t.Type == identType && symbolic.IsPlainName(t.Value) {
			known[t.Value] = true
		}
	}
	return resolver{known: known}
}

func autoResolver() resolver { return resolver{} }

func (r resolver) symbol(name string) (symbolic.Expr, error) {
	switch name {
	case "e", symbolic.ConstE:
		return symbolic.E, nil
	case symbolic.ConstPi:
		return symbolic.Pi, nil
	}
	if canon, ok := functionWords[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrBareFunction, canon)
	}
	if strings.HasPrefix(name, protectedPrefix) {
		if r.known != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, name)
		}
		name = strings.TrimSuffix(strings.TrimPrefix(name, protectedPrefix), "}")
	}
	if r.known != nil && !r.known[name] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, name)
	}
	return symbolic.S(name), nil
}

func (r resolver) call(name string, args []symbolic.Expr) (symbolic.Expr, error) {
	if canon, ok := functionWords[name]; ok {
		name = canon
	}
	return symbolic.Apply(name, args...)
}

// ============================================================
// AST conversion
// ============================================================

// parseStatement parses cleaned text into either an expression or an equation.
func parseStatement(cleaned string, r resolver) (symbolic.Expr, *symbolic.Equation, error) {
	ast, err := mathParser.ParseString("", cleaned)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %q: %w", cleaned, err)
	}
	lhs, err := r.expr(ast.LHS)
	if err != nil {
		return nil, nil, err
	}
	if ast.RHS == nil {
		return lhs, nil, nil
	}
	rhs, err := r.expr(ast.RHS)
	if err != nil {
		return nil, nil, err
	}
	return nil, symbolic.Eq(lhs, rhs), nil
}

func (r resolver) expr(n *exprNode) (symbolic.Expr, error) {
	head, err := r.term(n.Head)
	if err != nil {
		return nil, err
	}
	terms := []symbolic.Expr{head}
	for _, op := range n.Tail {
		t, err := r.term(op.Term)
		if err != nil {
			return nil, err
		}
		if op.Op == "-" {
			t = symbolic.Neg(t)
		}
		terms = append(terms, t)
	}
	return symbolic.AddOf(terms...), nil
}

func (r resolver) term(n *termNode) (symbolic.Expr, error) {
	head, err := r.unary(n.Head)
	if err != nil {
		return nil, err
	}
	factors := []symbolic.Expr{head}
	for _, op := range n.Tail {
		f, err := r.unary(op.Factor)
		if err != nil {
			return nil, err
		}
		if op.Op == "/" {
			f = symbolic.PowOf(f, symbolic.N(-1))
		}
		factors = append(factors, f)
	}
	return symbolic.MulOf(factors...), nil
}

func (r resolver) unary(n *unaryNode) (symbolic.Expr, error) {
	if n.Operand != nil {
		e, err := r.unary(n.Operand)
		if err != nil {
			return nil, err
		}
		if n.Sign == "-" {
			return symbolic.Neg(e), nil
		}
		return e, nil
	}
	return r.power(n.Power)
}

func (r resolver) power(n *powerNode) (symbolic.Expr, error) {
	base, err := r.primary(n.Base)
	if err != nil {
		return nil, err
	}
	if n.Exp == nil {
		return base, nil
	}
	exp, err := r.unary(n.Exp)
	if err != nil {
		return nil, err
	}
	return symbolic.PowOf(base, exp), nil
}

func (r resolver) primary(n *primaryNode) (symbolic.Expr, error) {
	switch {
	case n.Number != nil:
		return symbolic.ParseNum(*n.Number)
	case n.Call != nil:
		args := make([]symbolic.Expr, len(n.Call.Args))
		for i, a := range n.Call.Args {
			e, err := r.expr(a)
			if err != nil {
				return nil, err
			}
			args[i] = e
		}
		return r.call(n.Call.Name, args)
	case n.Ident != nil:
		return r.symbol(*n.Ident)
	case n.Group != nil:
		return r.expr(n.Group)
	}
	return nil, errors.New("mathgrade: empty primary")
}
