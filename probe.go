package mathgrade

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/njchilds90/mathgrade/symbolic"
)

const (
	probeTolerance = 1e-9
	probeAttempts  = 6
	probeSeedHi    = 0x6d61746867726164
	probeSeedLo    = 0x65
)

// probe evaluates a - b at pseudo-random points drawn from a fixed seed and
// reports whether it vanishes, within an absolute tolerance, everywhere it is
// defined. At least ProbeSamples valid points are required. A difference
// without variables is left to the exact tiers.
func (n *Normalizer) probe(a, b symbolic.Expr) bool {
	diff := symbolic.Sub(a, b)
	if _, ok := diff.(*symbolic.Num); ok {
		return false
	}
	names := symbolic.SortedSymbols(diff)
	if len(names) == 0 {
		return false
	}
	want := n.cfg.ProbeSamples
	if want <= 0 {
		want = 1
	}
	rng := rand.New(rand.NewPCG(probeSeedHi, probeSeedLo))
	env := make(map[string]float64, len(names))
	valid := 0
	for attempt := 0; attempt < want*probeAttempts && valid < want; attempt++ {
		for _, name := range names {
			env[name] = samplePoint(rng, attempt)
		}
		d, ok := symbolic.EvalFloat(diff, env)
		if !ok {
			continue
		}
		if !scalar.EqualWithinAbs(d, 0, probeTolerance) {
			return false
		}
		valid++
	}
	return valid >= want
}

// samplePoint draws |v| from [0.25, 3), away from the poles and branch
// points common in coursework. The first attempt is all positive, the second
// all negative, later ones take random signs.
func samplePoint(rng *rand.Rand, attempt int) float64 {
	v := 0.25 + 2.75*rng.Float64()
	negative := rng.IntN(2) == 0
	switch attempt {
	case 0:
		negative = false
	case 1:
		negative = true
	}
	if negative {
		v = -v
	}
	return v
}
