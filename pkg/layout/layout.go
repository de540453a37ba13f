// Package layout computes deterministic radial positions for classified
// spells, one angular sector per school, with silhouettes driven by the
// shape library.
//
// For fixed inputs, settings, and seed the whole pipeline - candidate
// generation, mask evaluation, jitter, relaxation, clamping - produces
// bit-for-bit identical output. Randomness comes exclusively from a PCG
// stream seeded per sector, so schools never perturb each other.
package layout

import (
	"math"
	"sort"

	"github.com/caldwen/spellweave/pkg/shape"
	"github.com/caldwen/spellweave/pkg/spell"
	"github.com/caldwen/spellweave/pkg/tree"
)

// Geometry constants, in layout units (arbitrary but consistent; renderers
// scale them).
const (
	// SectorPadding is the angular gap between adjacent sectors, in radians.
	SectorPadding = 4 * math.Pi / 180

	// innerRadius is the distance of tier-0 roots from the origin; without
	// it every root would collapse onto the center point.
	innerRadius = 60.0

	// tierSpacing is the base radial distance between consecutive tiers,
	// before the profile multiplier.
	tierSpacing = 85.0

	// arcPerNode is the target arc length between neighboring candidates
	// on the same tier.
	arcPerNode = 55.0

	// MaxTiers caps how many concentric tiers a sector may use.
	MaxTiers = 9

	// overProvision is how much candidate surplus tier estimation aims for,
	// so that mask rejection still leaves enough positions.
	overProvision = 1.6

	// minSpacing is the minimum distance between two non-root nodes before
	// overlap relaxation pushes them apart.
	minSpacing = 34.0

	// relaxIterations bounds the pairwise relaxation loop.
	relaxIterations = 12

	// clampPadding keeps clamped nodes off the exact sector boundary, in
	// radians.
	clampPadding = 1.5 * math.Pi / 180
)

// Sector is one school's angular allocation.
type Sector struct {
	School   string  `json:"school" bson:"school"`
	Start    float64 `json:"start" bson:"start"`       // radians
	Span     float64 `json:"span" bson:"span"`         // radians
	Bisector float64 `json:"bisector" bson:"bisector"` // radians
}

// Position is the placement of one spell.
type Position struct {
	ID      string        `json:"id" bson:"id"`
	Tier    int           `json:"tier" bson:"tier"`
	Element spell.Element `json:"element,omitempty" bson:"element,omitempty"`
	X       float64       `json:"x" bson:"x"`
	Y       float64       `json:"y" bson:"y"`
	Radius  float64       `json:"radius" bson:"radius"`
	Angle   float64       `json:"angle" bson:"angle"`
	IsRoot  bool          `json:"is_root,omitempty" bson:"is_root,omitempty"`
}

// Result is the layout of every school.
type Result struct {
	Sectors   map[string]Sector     `json:"sectors" bson:"sectors"`
	Positions map[string][]Position `json:"positions" bson:"positions"`
}

// AllocateSectors divides the full circle, minus padding, equally among the
// schools in the given stable order.
func AllocateSectors(schools []string) map[string]Sector {
	sectors := make(map[string]Sector, len(schools))
	if len(schools) == 0 {
		return sectors
	}
	span := (2*math.Pi - float64(len(schools))*SectorPadding) / float64(len(schools))
	for i, school := range schools {
		start := float64(i) * (span + SectorPadding)
		sectors[school] = Sector{
			School:   school,
			Start:    start,
			Span:     span,
			Bisector: start + span/2,
		}
	}
	return sectors
}

// Generate computes positions for every school. Schools are processed
// sequentially in the order given; spells must already be classified.
func Generate(schools map[string][]spell.Spell, order []string, settings spell.Settings) Result {
	settings.ValidateAndSetDefaults()

	result := Result{
		Sectors:   AllocateSectors(order),
		Positions: make(map[string][]Position, len(order)),
	}
	for _, school := range order {
		sector := result.Sectors[school]
		result.Positions[school] = generateSector(schools[school], sector, settings)
	}
	return result
}

// generateSector runs the full per-sector pipeline: candidates, selection,
// relaxation, clamping.
func generateSector(spells []spell.Spell, sector Sector, settings spell.Settings) []Position {
	if len(spells) == 0 {
		return nil
	}

	profile := shape.ProfileFor(settings.ShapeFor(sector.School))
	rng := sectorRNG(settings.Seed, sector.School)

	candidates := generateCandidates(len(spells), sector, profile, rng)
	positions := assign(spells, candidates)
	relax(positions)
	clampToSector(positions, sector)
	return positions
}

// generateCandidates produces at least n accepted candidates, tier by tier.
// Tier 0 is always exactly one candidate on the bisector (the root slot).
// The mask can starve outer tiers on narrow silhouettes; if the tier budget
// runs out short of n, the outermost tier is refilled without the mask -
// a configuration-level condition, not a failure.
func generateCandidates(n int, sector Sector, profile shape.Profile, rng *rngState) []Position {
	candidates := []Position{polar(sector.Bisector, innerRadius, 0, true)}

	tiers := estimateTiers(n, sector.Span, profile)
	for t := 1; t <= tiers && len(candidates) < requiredSurplus(n); t++ {
		candidates = append(candidates, tierCandidates(t, tiers, sector, profile, rng, true)...)
	}

	if len(candidates) < n {
		// Capacity exhausted under the mask; refill the rim unmasked.
		t := tiers
		for len(candidates) < n {
			extra := tierCandidates(t, tiers, sector, profile, rng, false)
			candidates = append(candidates, extra...)
			t++
		}
	}
	return candidates
}

// tierCandidates generates the accepted candidates of a single tier.
func tierCandidates(t, maxTier int, sector Sector, profile shape.Profile, rng *rngState, masked bool) []Position {
	radius := tierRadius(t, profile)
	spread := sector.Span * profile.SectorSpread
	count := tierCandidateCount(t, maxTier, radius, spread, profile)

	depth := float64(t) / float64(max(maxTier, 1))
	var out []Position
	for j := 0; j < count; j++ {
		normAngle := (float64(j) + 0.5) / float64(count)
		if masked && !profile.Kind.Accept(depth, normAngle, rng.masks) {
			continue
		}
		angle := sector.Bisector + (normAngle-0.5)*spread
		r := radius
		if jitterAllowed(t, profile) {
			r += (rng.jitter.Float64()*2 - 1) * profile.RadialJitter * tierSpacing
			angle += (rng.jitter.Float64()*2 - 1) * profile.AngularJitter * (spread / float64(count))
		}
		out = append(out, polar(angle, r, t, false))
	}
	return out
}

// tierCandidateCount grows the candidate count with tier index and arc
// length: wider arcs fit more nodes at the target spacing. Density bias
// shifts capacity inward or outward along the depth axis.
func tierCandidateCount(t, maxTier int, radius, spread float64, profile shape.Profile) int {
	arc := radius * spread
	count := arc / arcPerNode * profile.Density

	depth := float64(t) / float64(max(maxTier, 1))
	bias := profile.InnerBias*(1-depth) + profile.OuterBias*depth
	count *= bias

	return max(1, int(math.Round(count)))
}

// estimateTiers picks how many tiers are needed for n spells in a sector of
// the given span, assuming the over-provision surplus, capped at MaxTiers.
func estimateTiers(n int, span float64, profile shape.Profile) int {
	capacity := 1 // the root slot
	for t := 1; t <= MaxTiers; t++ {
		radius := tierRadius(t, profile)
		capacity += tierCandidateCount(t, MaxTiers, radius, span*profile.SectorSpread, profile)
		if capacity >= requiredSurplus(n) {
			return t
		}
	}
	return MaxTiers
}

func requiredSurplus(n int) int {
	return int(math.Ceil(float64(n) * overProvision))
}

func tierRadius(t int, profile shape.Profile) float64 {
	return innerRadius + float64(t)*tierSpacing*profile.TierSpacing
}

// jitterAllowed suppresses jitter close to the root, where tidy placement
// matters more than texture, and for the grid shape, which is jitter-free
// by definition.
func jitterAllowed(t int, profile shape.Profile) bool {
	return t > 2 && profile.Kind != shape.Grid
}

// assign pairs spells with candidate slots, both ordered lowest tier first.
// The root slot goes to the spell the tree builder selects as root, so the
// placement and the tree never disagree on who sits at the center. Surplus
// candidates are dropped from the rim inward.
func assign(spells []spell.Spell, candidates []Position) []Position {
	ordered := make([]spell.Spell, 0, len(spells))
	rootIdx := tree.RootIndex(spells)
	if rootIdx >= 0 {
		ordered = append(ordered, spells[rootIdx])
	}
	for i, s := range spells {
		if i != rootIdx {
			ordered = append(ordered, s)
		}
	}
	rest := ordered[1:]
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].Tier < rest[j].Tier })

	// Candidates are generated tier-ascending already; keep angle order
	// within a tier stable.
	positions := make([]Position, len(ordered))
	for i, s := range ordered {
		p := candidates[i]
		p.ID = s.ID
		p.Tier = s.Tier
		p.Element = s.Element
		positions[i] = p
	}
	return positions
}

// relax iteratively pushes overlapping non-root nodes apart along the line
// connecting them, proportionally to the overlap. The loop runs a fixed
// number of iterations and stops early once an iteration moves nothing.
func relax(positions []Position) {
	for range relaxIterations {
		moved := false
		for i := range positions {
			if positions[i].IsRoot {
				continue
			}
			for j := i + 1; j < len(positions); j++ {
				if positions[j].IsRoot {
					continue
				}
				dx := positions[j].X - positions[i].X
				dy := positions[j].Y - positions[i].Y
				dist := math.Hypot(dx, dy)
				if dist >= minSpacing {
					continue
				}
				moved = true

				var ux, uy float64
				if dist > 1e-9 {
					ux, uy = dx/dist, dy/dist
				} else {
					// Coincident points: separate radially.
					ux, uy = math.Cos(positions[i].Angle), math.Sin(positions[i].Angle)
				}
				push := (minSpacing - dist) / 2
				positions[i].X -= ux * push
				positions[i].Y -= uy * push
				positions[j].X += ux * push
				positions[j].Y += uy * push
				refreshPolar(&positions[i])
				refreshPolar(&positions[j])
			}
		}
		if !moved {
			break
		}
	}
}

// clampToSector pulls any node that drifted past its sector boundary back
// to the nearest boundary, preserving its radius. The root is exempt: it
// sits exactly on the bisector.
func clampToSector(positions []Position, sector Sector) {
	limit := sector.Span/2 - clampPadding
	for i := range positions {
		if positions[i].IsRoot {
			continue
		}
		dev := angleDiff(positions[i].Angle, sector.Bisector)
		if math.Abs(dev) <= limit {
			continue
		}
		clamped := sector.Bisector + math.Copysign(limit, dev)
		positions[i].Angle = clamped
		positions[i].X = math.Cos(clamped) * positions[i].Radius
		positions[i].Y = math.Sin(clamped) * positions[i].Radius
	}
}

func polar(angle, radius float64, tier int, isRoot bool) Position {
	return Position{
		Tier:   tier,
		X:      math.Cos(angle) * radius,
		Y:      math.Sin(angle) * radius,
		Radius: radius,
		Angle:  angle,
		IsRoot: isRoot,
	}
}

func refreshPolar(p *Position) {
	p.Radius = math.Hypot(p.X, p.Y)
	p.Angle = math.Atan2(p.Y, p.X)
	if p.Angle < 0 {
		p.Angle += 2 * math.Pi
	}
}

// angleDiff returns the signed smallest difference a-b, in (-π, π].
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
