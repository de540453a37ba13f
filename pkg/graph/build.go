package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caldwen/spellweave/pkg/layout"
	"github.com/caldwen/spellweave/pkg/tree"
)

// BuildDoc is the complete output of one pipeline run: per-school trees,
// the radial layout, and every deviation the pipeline had to make. This is
// the document the HTTP API returns and the store persists.
type BuildDoc struct {
	ID        string    `json:"id" bson:"_id"`
	Seed      uint64    `json:"seed" bson:"seed"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Trees  []TreeDoc     `json:"trees" bson:"trees"`
	Layout layout.Result `json:"layout" bson:"layout"`

	// Reports holds repair actions per school; empty reports are omitted.
	Reports map[string]tree.Report `json:"reports,omitempty" bson:"reports,omitempty"`

	// Violations holds branching-cap relaxations per school.
	Violations map[string][]tree.CapViolation `json:"violations,omitempty" bson:"violations,omitempty"`
}

// MarshalBuild serializes a build document to pretty-printed JSON.
func MarshalBuild(doc BuildDoc) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalBuild deserializes a build document.
func UnmarshalBuild(data []byte) (BuildDoc, error) {
	var doc BuildDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return BuildDoc{}, fmt.Errorf("unmarshal build: %w", err)
	}
	return doc, nil
}

// WriteBuildFile writes a build document to a JSON file.
func WriteBuildFile(doc BuildDoc, path string) error {
	data, err := MarshalBuild(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadBuildFile reads a build document from a JSON file.
func ReadBuildFile(path string) (BuildDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BuildDoc{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalBuild(data)
}
