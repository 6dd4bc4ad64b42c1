package layout

import (
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

// warmStops is the gradient sampled by Palette, from pale yellow to plum.
var warmStops = mustParseStops("#ffe08a", "#ff9f43", "#ee5253", "#b33771")

func mustParseStops(hexes ...string) []colorful.Color {
	stops := make([]colorful.Color, len(hexes))
	for i, hex := range hexes {
		c, err := colorful.Hex(hex)
		if err != nil {
			panic("layout: bad gradient stop " + hex)
		}
		stops[i] = c
	}
	return stops
}

// Palette returns n hex colors sampled evenly along the warm gradient and
// shuffled with a generator seeded by n. The same n always yields the same
// slice, and for n > 1 the result is never in gradient order.
func Palette(n int) []string {
	if n <= 0 {
		return []string{}
	}

	samples := make([]string, n)
	for i := range samples {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		samples[i] = gradientAt(t)
	}

	seed := uint64(n)
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	perm := rng.Perm(n)
	if n > 1 && isIdentity(perm) {
		perm = append(perm[1:], perm[0])
	}

	out := make([]string, n)
	for i, j := range perm {
		out[i] = samples[j]
	}
	return out
}

func gradientAt(t float64) string {
	stops := warmStops
	seg := t * float64(len(stops)-1)
	idx := int(seg)
	if idx >= len(stops)-1 {
		return stops[len(stops)-1].Hex()
	}
	frac := seg - float64(idx)
	if frac == 0 {
		return stops[idx].Hex()
	}
	return stops[idx].BlendHcl(stops[idx+1], frac).Clamped().Hex()
}

func isIdentity(perm []int) bool {
	for i, v := range perm {
		if i != v {
			return false
		}
	}
	return true
}
