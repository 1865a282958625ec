package mathgrade

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/njchilds90/mathgrade/symbolic"
)

// ============================================================
// Preprocessor
// ============================================================

// Preprocessor rewrites raw answer text, plain or LaTeX, into the notation
// the parser reads: explicit "*" and "**", parentheses only, canonical
// function names. It never fails; anything it cannot interpret is left for
// the parser to reject.
type Preprocessor struct {
	implicitMul bool
}

// NewPreprocessor returns a preprocessor that inserts implicit multiplication.
func NewPreprocessor() *Preprocessor { return &Preprocessor{implicitMul: true} }

// NewLiteralPreprocessor returns a preprocessor that keeps juxtaposed tokens
// as written.
func NewLiteralPreprocessor() *Preprocessor { return &Preprocessor{} }

var defaultPreprocessor = NewPreprocessor()

// Preprocess cleans raw with the default preprocessor.
func Preprocess(raw string) string { return defaultPreprocessor.Clean(raw) }

// Clean runs every preprocessing step in order.
func (p *Preprocessor) Clean(raw string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = strings.Join(strings.Fields(raw), " ")
		}
	}()
	s := normalizeSpace(raw)
	s = stripDelimiters(s)
	s = convertStructures(s)
	s = replaceCommands(s)
	s = absoluteBars(s)
	s = unifyBrackets(s)
	if !p.implicitMul {
		return strings.Join(strings.Fields(s), " ")
	}
	toks := rewriteFunctions(tokenize(s))
	return joinTokens(toks)
}

// ============================================================
// Step 1: whitespace, math delimiters, unicode operators
// ============================================================

var spaceReplacer = strings.NewReplacer(
	"$$", "", "$", "",
	`\(`, "", `\)`, "", `\[`, "", `\]`, "",
	"×", "*", "·", "*", "⋅", "*", "÷", "/", "−", "-", "–", "-",
	"²", "^2", "³", "^3", "π", `\pi `,
	"\t", " ", "\n", " ", "\r", " ",
)

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(spaceReplacer.Replace(s)), " ")
}

// ============================================================
// Step 2: sizing delimiters, spacing commands, text wrappers
// ============================================================

var delimiterReplacer = strings.NewReplacer(
	`\left.`, "", `\right.`, "",
	`\left`, "", `\right`, "",
	`\biggl`, "", `\biggr`, "", `\Biggl`, "", `\Biggr`, "",
	`\bigl`, "", `\bigr`, "", `\Bigl`, "", `\Bigr`, "",
	`\bigg`, "", `\Bigg`, "", `\big`, "", `\Big`, "",
	`\displaystyle`, "",
	`\{`, "(", `\}`, ")",
	`\lvert`, "|", `\rvert`, "|", `\vert`, "|",
	`\qquad`, " ", `\quad`, " ",
	`\,`, " ", `\;`, " ", `\:`, " ", `\!`, "", `\ `, " ",
)

var textCommands = []string{`\operatorname`, `\mathrm`, `\textrm`, `\mathit`, `\text`}

func stripDelimiters(s string) string {
	s = delimiterReplacer.Replace(s)
	var sb strings.Builder
	for i := 0; i < len(s); {
		if end, ok := protectedAt(s, i); ok {
			sb.WriteString(s[i:end])
			i = end
			continue
		}
		if cmd, ok := commandAt(s, i, textCommands...); ok {
			j := skipSpaces(s, i+len(cmd))
			if j < len(s) && s[j] == '{' {
				if end := matchBrace(s, j, '{', '}'); end > 0 {
					sb.WriteString(unwrapText(strings.TrimSpace(s[j+1 : end])))
					i = end + 1
					continue
				}
			}
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}

// unwrapText turns the content of \mathrm{...} and friends into either a
// plain token or a protected multi-letter identifier.
func unwrapText(inner string) string {
	if _, ok := functionWords[inner]; ok || !isIdentifier(inner) || symbolic.IsPlainName(inner) {
		return " " + inner + " "
	}
	return protectedPrefix + inner + "}"
}

const protectedPrefix = `\mathrm{`

// protectedAt reports whether a protected identifier \mathrm{name} starts at
// i and returns the index just past it.
func protectedAt(s string, i int) (int, bool) {
	if !strings.HasPrefix(s[i:], protectedPrefix) {
		return 0, false
	}
	start := i + len(protectedPrefix)
	end := strings.IndexByte(s[start:], '}')
	if end <= 0 || !isIdentifier(s[start:start+end]) {
		return 0, false
	}
	return start + end + 1, true
}

func isIdentifier(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isLetter(s[i]) && !isDigit(s[i]) && s[i] != '_' {
			return false
		}
	}
	return true
}

// ============================================================
// Step 3: \frac, \sqrt, superscripts, subscripts
// ============================================================

var fracCommands = []string{`\dfrac`, `\tfrac`, `\frac`}

func convertStructures(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); {
		if end, ok := protectedAt(s, i); ok {
			sb.WriteString(s[i:end])
			i = end
			continue
		}
		if cmd, ok := commandAt(s, i, fracCommands...); ok {
			if num, j, ok := readGroup(s, i+len(cmd)); ok {
				if den, k, ok := readGroup(s, j); ok {
					sb.WriteString("((" + convertStructures(num) + ")/(" + convertStructures(den) + "))")
					i = k
					continue
				}
			}
		}
		if cmd, ok := commandAt(s, i, `\sqrt`); ok {
			j := skipSpaces(s, i+len(cmd))
			index := ""
			if j < len(s) && s[j] == '[' {
				if end := matchBrace(s, j, '[', ']'); end > 0 {
					index = s[j+1 : end]
					j = end + 1
				}
			}
			if arg, k, ok := readGroup(s, j); ok {
				inner := convertStructures(arg)
				if index == "" {
					sb.WriteString("sqrt(" + inner + ")")
				} else {
					sb.WriteString("((" + inner + ")**(1/(" + convertStructures(index) + ")))")
				}
				i = k
				continue
			}
		}
		switch s[i] {
		case '^':
			j := skipSpaces(s, i+1)
			if j < len(s) && s[j] == '{' {
				if end := matchBrace(s, j, '{', '}'); end > 0 {
					sb.WriteString("**(" + convertStructures(s[j+1:end]) + ")")
					i = end + 1
					continue
				}
			}
			sb.WriteString("**")
			i++
			continue
		case '_':
			j := skipSpaces(s, i+1)
			if j < len(s) && s[j] == '{' {
				if end := matchBrace(s, j, '{', '}'); end > 0 {
					if sub := subscriptText(s[j+1 : end]); sub != "" {
						sb.WriteString("_" + sub)
					}
					i = end + 1
					continue
				}
			}
			k := j
			for k < len(s) && (isLetter(s[k]) || isDigit(s[k])) {
				k++
			}
			if k > j {
				sb.WriteString("_" + s[j:k])
				i = k
				continue
			}
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}

func subscriptText(g string) string {
	var sb strings.Builder
	for i := 0; i < len(g); i++ {
		if isLetter(g[i]) || isDigit(g[i]) {
			sb.WriteByte(g[i])
		}
	}
	return sb.String()
}

// readGroup reads one TeX argument at i: a braced group, a command or a
// single character.
func readGroup(s string, i int) (string, int, bool) {
	i = skipSpaces(s, i)
	if i >= len(s) {
		return "", i, false
	}
	switch {
	case s[i] == '{':
		end := matchBrace(s, i, '{', '}')
		if end < 0 {
			return "", i, false
		}
		return s[i+1 : end], end + 1, true
	case s[i] == '\\':
		j := i + 1
		for j < len(s) && isLetter(s[j]) {
			j++
		}
		if j == i+1 && j < len(s) {
			j++
		}
		return s[i:j], j, true
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return s[i : i+size], i + size, true
}

func matchBrace(s string, open int, lb, rb byte) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case lb:
			depth++
		case rb:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// commandAt reports which of cmds starts at i as a complete control word.
func commandAt(s string, i int, cmds ...string) (string, bool) {
	for _, cmd := range cmds {
		if strings.HasPrefix(s[i:], cmd) {
			end := i + len(cmd)
			if end == len(s) || !isLetter(s[end]) {
				return cmd, true
			}
		}
	}
	return "", false
}

func skipSpaces(s string, i int) int {
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return i
}

// ============================================================
// Steps 4 and 5: command names, operators, absolute values
// ============================================================

func replaceCommands(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); {
		if end, ok := protectedAt(s, i); ok {
			sb.WriteString(s[i:end])
			i = end
			continue
		}
		if s[i] != '\\' {
			sb.WriteByte(s[i])
			i++
			continue
		}
		j := i + 1
		for j < len(s) && isLetter(s[j]) {
			j++
		}
		if j == i+1 {
			// stray backslash
			i++
			continue
		}
		sb.WriteString(" " + commandReplacement(s[i+1:j]))
		i = j
	}
	return sb.String()
}

func commandReplacement(name string) string {
	switch name {
	case "cdot", "times", "ast":
		return "*"
	case "div":
		return "/"
	}
	if canon, ok := functionWords[name]; ok {
		return canon
	}
	return name
}

// absoluteBars pairs |...| left to right into abs(...). Odd counts are left
// alone.
func absoluteBars(s string) string {
	n := strings.Count(s, "|")
	if n == 0 || n%2 != 0 {
		return s
	}
	var sb strings.Builder
	open := true
	for i := 0; i < len(s); i++ {
		if s[i] != '|' {
			sb.WriteByte(s[i])
			continue
		}
		if open {
			sb.WriteString(" abs(")
		} else {
			sb.WriteString(") ")
		}
		open = !open
	}
	return sb.String()
}

// ============================================================
// Step 6: brackets
// ============================================================

func unifyBrackets(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); {
		if end, ok := protectedAt(s, i); ok {
			sb.WriteString(s[i:end])
			i = end
			continue
		}
		switch s[i] {
		case '[', '{':
			sb.WriteByte('(')
		case ']', '}':
			sb.WriteByte(')')
		default:
			sb.WriteByte(s[i])
		}
		i++
	}
	return sb.String()
}

// ============================================================
// Tokenizer and implicit multiplication
// ============================================================

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokSymbol
	tokFunc
	tokPow
	tokOp
	tokComma
	tokLParen
	tokRParen
	tokOther
)

type token struct {
	kind tokenKind
	text string
	sub  string
}

// functionWords maps every accepted spelling to the canonical function name.
var functionWords = map[string]string{
	"ln": "log", "arcsin": "asin", "arccos": "acos", "arctan": "atan",
}

var inverseFunctions = map[string]string{"sin": "asin", "cos": "acos", "tan": "atan"}

// letterWords are the multi-letter words a letter run may contain, longest first.
var letterWords []string

func init() {
	for _, name := range symbolic.FunctionNames() {
		functionWords[name] = name
	}
	seen := map[string]bool{}
	add := func(w string) {
		if len(w) > 1 && !seen[w] {
			seen[w] = true
			letterWords = append(letterWords, w)
		}
	}
	for w := range functionWords {
		add(w)
	}
	for _, w := range symbolic.GreekNames() {
		add(w)
	}
	add(symbolic.ConstPi)
	sort.Slice(letterWords, func(i, j int) bool {
		if len(letterWords[i]) != len(letterWords[j]) {
			return len(letterWords[i]) > len(letterWords[j])
		}
		return letterWords[i] < letterWords[j]
	})
}

func tokenize(s string) []token {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		if end, ok := protectedAt(s, i); ok {
			toks = append(toks, token{kind: tokSymbol, text: s[i:end]})
			i = end
			continue
		}
		switch {
		case c == ' ':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(s) && isDigit(s[i+1])):
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			if j < len(s) && s[j] == '.' {
				j++
				for j < len(s) && isDigit(s[j]) {
					j++
				}
			}
			j = exponentEnd(s, j)
			toks = append(toks, token{kind: tokNumber, text: s[i:j]})
			i = j
			if i < len(s) && s[i] == '.' {
				// 1.2.3 is not a number.
				toks = append(toks, token{kind: tokOther, text: "."})
				i++
			}
		case isLetter(c):
			j := i
			for j < len(s) && isLetter(s[j]) {
				j++
			}
			toks = append(toks, splitLetters(s[i:j])...)
			i = j
			if i < len(s) && s[i] == '_' {
				k := i + 1
				for k < len(s) && (isLetter(s[k]) || isDigit(s[k])) {
					k++
				}
				if k > i+1 {
					last := &toks[len(toks)-1]
					if last.kind == tokFunc {
						last.sub = s[i+1 : k]
					} else {
						last.text += s[i:k]
					}
					i = k
				}
			}
		case strings.HasPrefix(s[i:], "**"):
			toks = append(toks, token{kind: tokPow, text: "**"})
			i += 2
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '=':
			toks = append(toks, token{kind: tokOp, text: string(c)})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ","})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		default:
			_, size := utf8.DecodeRuneInString(s[i:])
			toks = append(toks, token{kind: tokOther, text: s[i : i+size]})
			i += size
		}
	}
	return toks
}

// exponentEnd returns the end of a decimal exponent such as e5 or E-3
// starting at j, or j when there is none.
func exponentEnd(s string, j int) int {
	if j >= len(s) || (s[j] != 'e' && s[j] != 'E') {
		return j
	}
	k := j + 1
	if k < len(s) && (s[k] == '+' || s[k] == '-') {
		k++
	}
	if k >= len(s) || !isDigit(s[k]) {
		return j
	}
	for k < len(s) && isDigit(s[k]) {
		k++
	}
	return k
}

// splitLetters splits a run of letters: the longest known word at each
// position, otherwise a single letter.
func splitLetters(run string) []token {
	var out []token
	for i := 0; i < len(run); {
		word := run[i : i+1]
		for _, w := range letterWords {
			if strings.HasPrefix(run[i:], w) {
				word = w
				break
			}
		}
		if canon, ok := functionWords[word]; ok {
			out = append(out, token{kind: tokFunc, text: canon})
		} else {
			out = append(out, token{kind: tokSymbol, text: word})
		}
		i += len(word)
	}
	return out
}

// rewriteFunctions gives every function token a parenthesized argument.
// "sin x" becomes "sin(x)", "sin**2 x" becomes "(sin(x))**2", "sin**(-1) x"
// becomes "asin(x)" and "log_2 x" becomes "log(x, 2)".
func rewriteFunctions(toks []token) []token {
	out := make([]token, 0, len(toks)+8)
	for i := 0; i < len(toks); {
		t := toks[i]
		if t.kind != tokFunc {
			out = append(out, t)
			i++
			continue
		}
		j := i + 1
		name := t.text
		var exp []token
		if j < len(toks) && toks[j].kind == tokPow {
			if e, next, ok := exponentAtom(toks, j+1); ok {
				exp, j = e, next
			}
		}
		if isMinusOne(exp) {
			if inv, ok := inverseFunctions[name]; ok {
				name, exp = inv, nil
			}
		}

		var args []token
		if j < len(toks) && toks[j].kind == tokLParen {
			if exp == nil && t.sub == "" {
				out = append(out, token{kind: tokFunc, text: name})
				i = j
				continue
			}
			end := matchParenToken(toks, j)
			if end < 0 {
				return append(out, toks[i:]...)
			}
			args = rewriteFunctions(toks[j+1 : end])
			j = end + 1
		} else {
			run, next := argumentRun(toks, j)
			if len(run) == 0 {
				out = append(out, toks[i:j]...)
				i = j
				continue
			}
			args, j = run, next
		}

		call := []token{{kind: tokFunc, text: name}, {kind: tokLParen, text: "("}}
		call = append(call, args...)
		if t.sub != "" && name == "log" {
			base := token{kind: tokSymbol, text: t.sub}
			if isDigit(t.sub[0]) {
				base.kind = tokNumber
			}
			call = append(call, token{kind: tokComma, text: ","}, base)
		}
		call = append(call, token{kind: tokRParen, text: ")"})
		if exp != nil {
			wrapped := append([]token{{kind: tokLParen, text: "("}}, call...)
			wrapped = append(wrapped, token{kind: tokRParen, text: ")"}, token{kind: tokPow, text: "**"})
			call = append(wrapped, exp...)
		}
		out = append(out, call...)
		i = j
	}
	return out
}

func exponentAtom(toks []token, k int) ([]token, int, bool) {
	if k >= len(toks) {
		return nil, k, false
	}
	switch toks[k].kind {
	case tokNumber, tokSymbol:
		return toks[k : k+1], k + 1, true
	case tokLParen:
		if end := matchParenToken(toks, k); end > 0 {
			return toks[k : end+1], end + 1, true
		}
	case tokOp:
		if toks[k].text == "-" && k+1 < len(toks) && toks[k+1].kind == tokNumber {
			return toks[k : k+2], k + 2, true
		}
	}
	return nil, k, false
}

func isMinusOne(exp []token) bool {
	var sb strings.Builder
	for _, t := range exp {
		sb.WriteString(t.text)
	}
	s := sb.String()
	return s == "-1" || s == "(-1)"
}

// argumentRun collects the juxtaposed atoms after a parenthesis-free
// function name, with their powers.
func argumentRun(toks []token, j int) ([]token, int) {
	k := j
scan:
	for k < len(toks) {
		switch toks[k].kind {
		case tokNumber, tokSymbol:
			k++
		case tokPow:
			if k == j {
				break scan
			}
			_, next, ok := exponentAtom(toks, k+1)
			if !ok {
				break scan
			}
			k = next
		default:
			break scan
		}
	}
	return toks[j:k], k
}

func matchParenToken(toks []token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// joinTokens prints tokens back to text with "*" between juxtaposed operands.
func joinTokens(toks []token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 && endsOperand(toks[i-1]) && startsOperand(t) {
			sb.WriteByte('*')
		}
		sb.WriteString(t.text)
	}
	return sb.String()
}

func endsOperand(t token) bool {
	return t.kind == tokNumber || t.kind == tokSymbol || t.kind == tokRParen
}

func startsOperand(t token) bool {
	return t.kind == tokNumber || t.kind == tokSymbol || t.kind == tokFunc || t.kind == tokLParen
}

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
