package mathgrade

import (
	"regexp"
	"sort"
	"strings"
)

var decimalLiteral = regexp.MustCompile(`\d+\.\d*`)

// basicNormalize is the last-resort canonical form for text no parser
// accepts: lower case, no whitespace, trailing decimal zeros removed, and
// top-level additive terms sorted with their signs.
func basicNormalize(cleaned string) string {
	s := strings.ToLower(strings.Join(strings.Fields(cleaned), ""))
	s = decimalLiteral.ReplaceAllStringFunc(s, func(m string) string {
		return strings.TrimSuffix(strings.TrimRight(m, "0"), ".")
	})
	terms := splitTerms(s)
	sort.Strings(terms)
	return strings.TrimPrefix(strings.Join(terms, ""), "+")
}

// splitTerms cuts s at "+" and "-" signs outside brackets that follow an
// operand. Each term keeps its sign.
func splitTerms(s string) []string {
	var terms []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '+', '-':
			if depth != 0 || i == 0 || strings.IndexByte("+-*/^(=,", s[i-1]) >= 0 {
				continue
			}
			terms = append(terms, signed(s[start:i]))
			start = i
		}
	}
	if start < len(s) {
		terms = append(terms, signed(s[start:]))
	}
	return terms
}

func signed(term string) string {
	if strings.HasPrefix(term, "+") || strings.HasPrefix(term, "-") {
		return term
	}
	return "+" + term
}
