package shape

import (
	"math"
	"math/rand/v2"
)

// Accept reports whether a candidate at (depth, angle) belongs to the
// silhouette. Both coordinates are normalized to [0,1]: depth runs from the
// root (0) to the outermost tier (1), angle across the sector's span.
//
// Accept is pure given identical rng state: the stochastic masks consume
// exactly one draw per call whether or not they use it, so a seeded rng
// replays the same accept/reject sequence every time.
func (k Kind) Accept(depth, angle float64, rng *rand.Rand) bool {
	// One draw per call keeps the rng stream aligned across shapes.
	roll := rng.Float64()

	switch k {
	case Grid:
		return true
	case Mountain:
		return maskMountain(depth, angle)
	case Tree:
		return maskTree(depth, angle)
	case Explosion:
		return maskExplosion(depth, angle)
	case Cloud:
		return maskCloud(depth, angle, roll)
	case Ring:
		return maskRing(depth)
	case Spiral:
		return maskSpiral(depth, angle)
	default:
		return maskOrganic(depth, roll)
	}
}

// maskOrganic accepts most positions, thinning gently toward the rim.
func maskOrganic(depth, roll float64) bool {
	return roll < 1.0-0.25*depth
}

// maskMountain is a linear width taper: full width at the base, a single
// point at the peak. Depth 0 is the root (the peak sits at the rim's
// opposite end, so width shrinks as depth grows).
func maskMountain(depth, angle float64) bool {
	halfWidth := 0.5 * (1.0 - 0.85*depth)
	return math.Abs(angle-0.5) <= halfWidth
}

// maskTree is a piecewise silhouette: a narrow trunk near the root, flaring
// branches in the middle band, and a broad canopy at the rim.
func maskTree(depth, angle float64) bool {
	off := math.Abs(angle - 0.5)
	switch {
	case depth < 0.35: // trunk
		return off <= 0.12
	case depth < 0.65: // branches
		return off <= 0.12+(depth-0.35)*1.2
	default: // canopy
		return off <= 0.48
	}
}

// maskExplosion combines a dense core, satellite blast clusters, and a
// hollow ring crossed by radial tendrils.
func maskExplosion(depth, angle float64) bool {
	if depth < 0.30 { // core
		return true
	}
	if depth < 0.62 { // satellite clusters at fixed bearings
		for _, center := range [...]float64{0.15, 0.5, 0.85} {
			if math.Abs(angle-center) < 0.08 {
				return true
			}
		}
		return false
	}
	// Hollow ring: only tendrils cross it.
	tendril := math.Mod(angle*5, 1.0)
	return tendril < 0.18 || tendril > 0.82
}

// maskCloud keeps a puffy mid band with ragged stochastic edges.
func maskCloud(depth, angle, roll float64) bool {
	band := depth > 0.15 && depth < 0.9
	if !band {
		return false
	}
	// Edges of the sector fray with distance from the bisector.
	fray := math.Abs(angle-0.5) * 0.8
	return roll > fray
}

// maskRing hollows out the middle radii and keeps the rim.
func maskRing(depth float64) bool {
	return depth < 0.18 || depth > 0.55
}

// maskSpiral accepts positions close to one winding arm.
func maskSpiral(depth, angle float64) bool {
	arm := math.Mod(depth*1.5, 1.0)
	return math.Abs(angle-arm) < 0.16 || math.Abs(angle-arm+1) < 0.16 || math.Abs(angle-arm-1) < 0.16
}
