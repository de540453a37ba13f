package layout

import (
	"hash/fnv"
	"math/rand/v2"
)

// rngState bundles the per-sector random streams. Mask evaluation and
// jitter draw from separate streams so that toggling jitter (or a shape's
// use of its draw) cannot shift the other's sequence.
type rngState struct {
	masks  *rand.Rand
	jitter *rand.Rand
}

// sectorRNG derives the deterministic random state for one sector from the
// global seed and the school name. Two builds with the same seed and inputs
// replay identical draws; adding a school never disturbs the others.
func sectorRNG(seed uint64, school string) *rngState {
	h := fnv.New64a()
	h.Write([]byte(school))
	schoolSeed := h.Sum64()

	return &rngState{
		masks:  rand.New(rand.NewPCG(seed, schoolSeed)),
		jitter: rand.New(rand.NewPCG(seed^0xdeadbeef, schoolSeed)),
	}
}
