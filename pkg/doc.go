// Package pkg provides the core libraries for Spellweave tree construction
// and radial layout.
//
// # Overview
//
// Spellweave turns a flat list of spells into per-school prerequisite trees
// and places every spell in a deterministic radial layout, one sector per
// school. The pkg directory is organized into four main areas:
//
//  1. [classify], [tree], [shape], [layout] - Domain logic (tier/element
//     classification, tree construction and repair, silhouette masks,
//     radial placement)
//  2. [cache], [store], [observability] - Infrastructure (result caching,
//     build persistence, instrumentation hooks)
//  3. [manifest], [graph], [export] - I/O (TOML manifests, JSON
//     serialization, Graphviz previews)
//  4. [pipeline] - Orchestration (classify → build → repair → layout)
//
// # Architecture
//
// The typical data flow through Spellweave:
//
//	Spell Manifest
//	         ↓
//	    [classify] package (assign tier and element)
//	         ↓
//	    [tree] package (score edges, build, repair)
//	         ↓
//	    [layout] package (sectors, masks, relaxation)
//	         ↓
//	    JSON/SVG output
//
// # Determinism
//
// Identical spells, settings, and seed always produce byte-identical
// output. All randomness flows from per-sector generators seeded by the
// build seed and the school name, so adding a school never perturbs the
// layout of another.
package pkg
