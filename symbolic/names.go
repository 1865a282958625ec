package symbolic

import "strings"

var greekNames = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true,
	"varepsilon": true, "zeta": true, "eta": true, "theta": true, "vartheta": true,
	"iota": true, "kappa": true, "lambda": true, "mu": true, "nu": true, "xi": true,
	"rho": true, "sigma": true, "tau": true, "upsilon": true, "phi": true,
	"varphi": true, "chi": true, "psi": true, "omega": true,
	"Gamma": true, "Delta": true, "Theta": true, "Lambda": true, "Xi": true,
	"Pi": true, "Sigma": true, "Phi": true, "Psi": true, "Omega": true,
}

// GreekNames lists the spelled-out greek letters recognised as single symbols.
func GreekNames() []string {
	out := make([]string, 0, len(greekNames))
	for name := range greekNames {
		out = append(out, name)
	}
	return out
}

// IsGreek reports whether name is a spelled-out greek letter.
func IsGreek(name string) bool { return greekNames[name] }

// IsPlainName reports whether name prints and re-tokenizes as itself: a
// constant, a single ASCII letter or a greek letter name, optionally followed
// by an alphanumeric subscript ("x_1", "theta_max").
func IsPlainName(name string) bool {
	if name == ConstE || name == ConstPi {
		return true
	}
	base, sub, hasSub := strings.Cut(name, "_")
	if hasSub && !isAlnum(sub) {
		return false
	}
	return (len(base) == 1 && isLetter(base[0])) || greekNames[base]
}

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isLetter(s[i]) && !isDigit(s[i]) {
			return false
		}
	}
	return true
}
