// Package shape defines the silhouette system used by the radial layout:
// named profiles carrying density and jitter parameters, and masks deciding
// which candidate positions inside a sector survive.
//
// Shapes form a closed set. Lookup by name never fails - unknown names fall
// back to [Organic], which keeps externally supplied configuration from
// breaking a build.
package shape

// Kind enumerates the supported silhouettes.
type Kind int

const (
	// Organic is the default: a lightly randomized full silhouette.
	Organic Kind = iota
	// Mountain tapers linearly from a wide base to a narrow peak.
	Mountain
	// Tree is a trunk/branch/canopy piecewise silhouette.
	Tree
	// Explosion is a dense core with satellite blast clusters and a hollow
	// ring crossed by radial tendrils.
	Explosion
	// Cloud is a puffy, stochastic mid-band silhouette.
	Cloud
	// Grid accepts everything with zero jitter - the deterministic fallback.
	Grid
	// Ring hollows out the center and concentrates nodes near the rim.
	Ring
	// Spiral accepts positions near a single winding arm.
	Spiral
)

// String returns the canonical shape name.
func (k Kind) String() string {
	switch k {
	case Mountain:
		return "mountain"
	case Tree:
		return "tree"
	case Explosion:
		return "explosion"
	case Cloud:
		return "cloud"
	case Grid:
		return "grid"
	case Ring:
		return "ring"
	case Spiral:
		return "spiral"
	default:
		return "organic"
	}
}

// KindFor resolves a shape name. Unknown names resolve to Organic.
func KindFor(name string) Kind {
	switch name {
	case "mountain":
		return Mountain
	case "tree":
		return Tree
	case "explosion":
		return Explosion
	case "cloud":
		return Cloud
	case "grid":
		return Grid
	case "ring":
		return Ring
	case "spiral":
		return Spiral
	default:
		return Organic
	}
}

// Names lists every recognized shape name.
func Names() []string {
	return []string{"organic", "mountain", "tree", "explosion", "cloud", "grid", "ring", "spiral"}
}

// Profile holds the numeric parameters and behavioral flags of one shape.
// Profiles are static and read-only; use ProfileFor to look one up.
type Profile struct {
	Kind Kind

	// RadialJitter and AngularJitter scale how far candidates wander from
	// their grid position, as fractions of the tier spacing and candidate
	// arc step respectively.
	RadialJitter  float64
	AngularJitter float64

	// TierSpacing multiplies the radial distance between tiers.
	TierSpacing float64

	// SectorSpread multiplies how much of the sector's span candidates use.
	SectorSpread float64

	// Density multiplies the candidate count per tier. InnerBias > 1 packs
	// nodes toward the root, OuterBias > 1 toward the rim.
	Density   float64
	InnerBias float64
	OuterBias float64

	// FillFullSector disables the spread taper near tier 0.
	FillFullSector bool
	// CurvedEdges hints renderers to draw arcs instead of chords.
	CurvedEdges bool
	// Clustering hints that jitter should let nodes bunch up.
	Clustering bool
}

var profiles = map[Kind]Profile{
	Organic: {
		Kind: Organic, RadialJitter: 0.30, AngularJitter: 0.35,
		TierSpacing: 1.0, SectorSpread: 1.0, Density: 1.0,
		InnerBias: 1.0, OuterBias: 1.0,
		CurvedEdges: true, Clustering: true,
	},
	Mountain: {
		Kind: Mountain, RadialJitter: 0.15, AngularJitter: 0.20,
		TierSpacing: 1.1, SectorSpread: 1.0, Density: 1.1,
		InnerBias: 0.8, OuterBias: 1.4,
		FillFullSector: true,
	},
	Tree: {
		Kind: Tree, RadialJitter: 0.20, AngularJitter: 0.15,
		TierSpacing: 1.2, SectorSpread: 0.9, Density: 1.0,
		InnerBias: 1.2, OuterBias: 1.1,
		CurvedEdges: true,
	},
	Explosion: {
		Kind: Explosion, RadialJitter: 0.40, AngularJitter: 0.45,
		TierSpacing: 1.0, SectorSpread: 1.1, Density: 1.3,
		InnerBias: 1.5, OuterBias: 1.2,
		FillFullSector: true, Clustering: true,
	},
	Cloud: {
		Kind: Cloud, RadialJitter: 0.35, AngularJitter: 0.40,
		TierSpacing: 0.9, SectorSpread: 1.0, Density: 1.2,
		InnerBias: 0.9, OuterBias: 0.9,
		CurvedEdges: true, Clustering: true,
	},
	Grid: {
		Kind: Grid, RadialJitter: 0, AngularJitter: 0,
		TierSpacing: 1.0, SectorSpread: 1.0, Density: 1.0,
		InnerBias: 1.0, OuterBias: 1.0,
		FillFullSector: true,
	},
	Ring: {
		Kind: Ring, RadialJitter: 0.10, AngularJitter: 0.25,
		TierSpacing: 1.0, SectorSpread: 1.0, Density: 1.1,
		InnerBias: 0.5, OuterBias: 1.6,
		FillFullSector: true, CurvedEdges: true,
	},
	Spiral: {
		Kind: Spiral, RadialJitter: 0.10, AngularJitter: 0.10,
		TierSpacing: 1.1, SectorSpread: 1.0, Density: 0.9,
		InnerBias: 1.0, OuterBias: 1.0,
		CurvedEdges: true,
	},
}

// ProfileFor returns the profile for a shape name. Unknown names return the
// Organic profile.
func ProfileFor(name string) Profile {
	return profiles[KindFor(name)]
}
