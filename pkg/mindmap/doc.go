// Package mindmap turns a two-level topic hierarchy into a renderable graph:
// uniquely identified, spatially positioned nodes and the edges connecting
// them, suitable for an interactive diagram surface.
//
// The package is pure computation. Building a graph performs no I/O, holds no
// hidden state, and is deterministic: identical input yields byte-identical
// node ids and numerically identical positions, so results can be memoized by
// a content hash of the input (see pkg/cache).
//
// # Layout
//
// Placement is radial. The central topic sits at a configured origin; each of
// the N branches is placed on a circle of the primary radius at angle
// i*360/N; each of a branch's M sub-branches fans out symmetrically around
// the branch's own angle at the secondary radius, spaced by a fixed angular
// step. See [Geometry].
//
// # Identity
//
// Node and edge identifiers derive from structural position only - never
// from timestamps or randomness. The central node is "central", branch i is
// "branch-{i}", and sub-branch j under branch i is "sub-{i}-{j}". See
// [NodeIDCentral], [BranchID], [SubID], and [EdgeID].
package mindmap
