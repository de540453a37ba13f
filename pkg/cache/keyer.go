package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// TreeKeyOpts are the inputs that change a built tree beyond the spell set
// itself.
type TreeKeyOpts struct {
	MaxChildren  int  `json:"max_children"`
	StrictTiers  bool `json:"strict_tiers"`
	Isolation    bool `json:"isolation"`
	IsolationStr bool `json:"isolation_strict"`
}

// LayoutKeyOpts are the inputs that change a computed layout for a given
// tree set.
type LayoutKeyOpts struct {
	Seed   uint64            `json:"seed"`
	Shapes map[string]string `json:"shapes,omitempty"`
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// ClassifyKey keys a classification batch by the hash of its spell set.
	ClassifyKey(spellsHash string) string

	// TreeKey keys a built tree set by spell-set hash and build settings.
	TreeKey(spellsHash string, opts TreeKeyOpts) string

	// LayoutKey keys a layout by the hash of its (repaired) tree set and
	// the layout settings.
	LayoutKey(treesHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer hashes every option struct into the key, so any setting that
// affects the output yields a distinct key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ClassifyKey generates a key for classification results.
func (k *DefaultKeyer) ClassifyKey(spellsHash string) string {
	return "classify:" + spellsHash
}

// TreeKey generates a key for built trees.
func (k *DefaultKeyer) TreeKey(spellsHash string, opts TreeKeyOpts) string {
	return hashKey("tree", spellsHash, opts)
}

// LayoutKey generates a key for layouts.
func (k *DefaultKeyer) LayoutKey(treesHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treesHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation, used
// by server deployments where different projects share one redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer whose keys all carry the given prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ClassifyKey generates a prefixed classification key.
func (k *ScopedKeyer) ClassifyKey(spellsHash string) string {
	return k.prefix + k.inner.ClassifyKey(spellsHash)
}

// TreeKey generates a prefixed tree key.
func (k *ScopedKeyer) TreeKey(spellsHash string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(spellsHash, opts)
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(treesHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(treesHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes the SHA-256 hash of data as a 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
