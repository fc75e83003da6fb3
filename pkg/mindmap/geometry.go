package mindmap

import (
	"math"

	"github.com/YIFUNLIN/mindflow/pkg/errors"
)

// Default layout geometry. The origin is the center of the default 800x600
// viewport used by the render sinks.
const (
	DefaultOriginX         = 400.0
	DefaultOriginY         = 300.0
	DefaultPrimaryRadius   = 200.0
	DefaultSecondaryRadius = 100.0
	DefaultSpreadDegrees   = 30.0
)

// Geometry configures radial placement: the anchor position of the central
// node, the two ring radii, and the angular spacing between sub-branch
// siblings. The zero value is not usable - use DefaultGeometry as a base.
type Geometry struct {
	OriginX         float64 `json:"origin_x" toml:"origin_x"`
	OriginY         float64 `json:"origin_y" toml:"origin_y"`
	PrimaryRadius   float64 `json:"primary_radius" toml:"primary_radius"`
	SecondaryRadius float64 `json:"secondary_radius" toml:"secondary_radius"`
	SpreadDegrees   float64 `json:"spread_degrees" toml:"spread_degrees"`
}

// DefaultGeometry returns the standard layout geometry.
func DefaultGeometry() Geometry {
	return Geometry{
		OriginX:         DefaultOriginX,
		OriginY:         DefaultOriginY,
		PrimaryRadius:   DefaultPrimaryRadius,
		SecondaryRadius: DefaultSecondaryRadius,
		SpreadDegrees:   DefaultSpreadDegrees,
	}
}

// Validate checks that the geometry produces finite, non-degenerate
// positions. Violations are contract errors, not runtime faults.
func (g Geometry) Validate() error {
	for _, v := range []float64{g.OriginX, g.OriginY, g.PrimaryRadius, g.SecondaryRadius, g.SpreadDegrees} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidGeometry, "geometry values must be finite")
		}
	}
	if g.PrimaryRadius <= 0 || g.SecondaryRadius <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "radii must be positive (primary=%g, secondary=%g)", g.PrimaryRadius, g.SecondaryRadius)
	}
	if g.SpreadDegrees <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "spread must be positive (got %g)", g.SpreadDegrees)
	}
	return nil
}

// Origin returns the anchor position of the central node.
func (g Geometry) Origin() Position {
	return Position{X: g.OriginX, Y: g.OriginY}
}

// BranchAngle returns the placement angle in degrees for branch i of n total
// branches: evenly spaced at i*360/n. n must be >= 1; the builder
// short-circuits before calling this for empty hierarchies.
func BranchAngle(i, n int) float64 {
	return float64(i) * 360.0 / float64(n)
}

// PlaceBranch computes the position of branch i of n around the origin on
// the primary radius. Pure function of its arguments.
func (g Geometry) PlaceBranch(i, n int) Position {
	return offset(g.Origin(), BranchAngle(i, n), g.PrimaryRadius)
}

// PlaceSub computes the position of sub-branch j of m siblings relative to
// its parent branch at parentAngle degrees. Siblings fan out symmetrically
// around the parent's radial line: the offset term (j - (m-1)/2) * spread is
// zero-centered, so a single sub-branch (m == 1) lies exactly on it.
func (g Geometry) PlaceSub(parent Position, parentAngle float64, j, m int) Position {
	angle := parentAngle + (float64(j)-float64(m-1)/2.0)*g.SpreadDegrees
	return offset(parent, angle, g.SecondaryRadius)
}

// offset returns the point at the given angle (degrees) and distance from p.
func offset(p Position, angleDeg, radius float64) Position {
	rad := angleDeg * math.Pi / 180.0
	return Position{
		X: p.X + radius*math.Cos(rad),
		Y: p.Y + radius*math.Sin(rad),
	}
}
