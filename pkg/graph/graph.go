// Package graph provides the canonical serialization formats for spellweave
// builds: per-school prerequisite trees, raw edge-list intake, and finished
// build documents combining trees with radial layouts.
//
// The formats are human-readable JSON (with BSON tags for MongoDB storage)
// and designed for round-trip fidelity: build → export → re-import produces
// identical structures. Node lists are sorted by ID so output bytes are
// deterministic, which the caching layer relies on.
package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// MarshalTree converts a tree document to pretty-printed JSON bytes.
func MarshalTree(doc TreeDoc) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// WriteTreeFile writes a tree document to a JSON file.
func WriteTreeFile(doc TreeDoc, path string) error {
	data, err := MarshalTree(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadTreeFile reads a JSON file into a tree document.
func ReadTreeFile(path string) (TreeDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TreeDoc{}, fmt.Errorf("read %s: %w", path, err)
	}
	var doc TreeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return TreeDoc{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

// WriteJSONFile writes any value as pretty-printed JSON to path.
func WriteJSONFile(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadEdgeLists decodes raw edge lists, the intake format for externally
// generated trees, from r. Accepts either a single object or an array.
func ReadEdgeLists(r io.Reader) ([]EdgeList, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read edge lists: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var lists []EdgeList
		if err := json.Unmarshal(trimmed, &lists); err != nil {
			return nil, fmt.Errorf("decode edge lists: %w", err)
		}
		return lists, nil
	}
	var list EdgeList
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("decode edge list: %w", err)
	}
	return []EdgeList{list}, nil
}

// ReadEdgeListFile reads edge lists from a JSON file.
func ReadEdgeListFile(path string) ([]EdgeList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadEdgeLists(f)
}
