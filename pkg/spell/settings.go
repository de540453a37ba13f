package spell

// Default values for build settings.
const (
	// DefaultMaxChildren is the branching cap applied during tree
	// construction. The builder may exceed it once per deferred spell when
	// no eligible parent exists; such violations are recorded, not hidden.
	DefaultMaxChildren = 3

	// DefaultSeed keeps layouts reproducible when the caller does not care
	// about the specific arrangement.
	DefaultSeed = uint64(42)

	// DefaultShape is the silhouette used for schools without an explicit
	// shape assignment, and the fallback for unknown shape names.
	DefaultShape = "organic"
)

// Settings holds every knob recognized by the build pipeline. The zero value
// is not usable - call ValidateAndSetDefaults before use. Unknown manifest
// keys are ignored at the parsing boundary rather than rejected.
type Settings struct {
	// MaxChildrenPerNode caps how many prerequisites may hang off one spell.
	MaxChildrenPerNode int `json:"max_children_per_node" toml:"max_children_per_node"`

	// StrictTierOrdering forbids edges where the child's tier is below the
	// parent's. When false such edges are heavily penalized instead.
	StrictTierOrdering bool `json:"strict_tier_ordering" toml:"strict_tier_ordering"`

	// ElementIsolation penalizes edges between spells of different non-empty
	// elements. ElementIsolationStrict forbids them outright; it implies
	// ElementIsolation.
	ElementIsolation       bool `json:"element_isolation" toml:"element_isolation"`
	ElementIsolationStrict bool `json:"element_isolation_strict" toml:"element_isolation_strict"`

	// Shapes maps school name to shape name. Unknown shape names fall back
	// to DefaultShape at lookup time, never here.
	Shapes map[string]string `json:"shapes,omitempty" toml:"shapes"`

	// Seed drives every random draw in the layout. Identical inputs,
	// settings, and seed produce byte-identical output.
	Seed uint64 `json:"seed" toml:"seed"`
}

// DefaultSettings returns settings with all defaults applied.
func DefaultSettings() Settings {
	s := Settings{}
	s.ValidateAndSetDefaults()
	return s
}

// ValidateAndSetDefaults normalizes the settings in place. It never fails:
// out-of-range values are clamped to their defaults, matching the design rule
// that malformed configuration degrades rather than aborts a build.
func (s *Settings) ValidateAndSetDefaults() {
	if s.MaxChildrenPerNode < 1 {
		s.MaxChildrenPerNode = DefaultMaxChildren
	}
	if s.ElementIsolationStrict {
		s.ElementIsolation = true
	}
	if s.Seed == 0 {
		s.Seed = DefaultSeed
	}
	if s.Shapes == nil {
		s.Shapes = map[string]string{}
	}
}

// ShapeFor returns the configured shape name for a school, or DefaultShape.
func (s Settings) ShapeFor(school string) string {
	if name, ok := s.Shapes[school]; ok && name != "" {
		return name
	}
	return DefaultShape
}
