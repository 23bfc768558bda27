// Package geom computes unit footprints in room space. All functions are pure.
//
// Room space has its origin at the room center. X grows to the right, Z grows
// toward the front and Y grows up. A unit's origin is the corner its width and
// depth extend from; rotation turns the unit about Y.
package geom

import (
	"math"

	"github.com/piwi3910/CabinetFit/internal/model"
)

// Tolerances shared by the engine.
const (
	RotationEpsilon   = 0.1    // rad
	OverlapEpsilon    = 0.0005 // m, touching boxes are not overlapping
	VerticalEpsilon   = 0.01   // m
	BoundaryTolerance = 0.002  // m
)

// Box is an axis-aligned footprint on the floor plane.
type Box struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinZ float64 `json:"min_z"`
	MaxZ float64 `json:"max_z"`
}

// Width returns the X extent.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Depth returns the Z extent.
func (b Box) Depth() float64 { return b.MaxZ - b.MinZ }

// Area returns the footprint area.
func (b Box) Area() float64 { return b.Width() * b.Depth() }

// CenterX returns the X midpoint.
func (b Box) CenterX() float64 { return (b.MinX + b.MaxX) / 2 }

// CenterZ returns the Z midpoint.
func (b Box) CenterZ() float64 { return (b.MinZ + b.MaxZ) / 2 }

// Span returns the box extent on one axis.
func (b Box) Span(a Axis) (lo, hi float64) {
	if a == AxisZ {
		return b.MinZ, b.MaxZ
	}
	return b.MinX, b.MaxX
}

// Center returns the box midpoint on one axis.
func (b Box) Center(a Axis) float64 {
	lo, hi := b.Span(a)
	return (lo + hi) / 2
}

// Translate shifts the box by dx, dz.
func (b Box) Translate(dx, dz float64) Box {
	return Box{MinX: b.MinX + dx, MaxX: b.MaxX + dx, MinZ: b.MinZ + dz, MaxZ: b.MaxZ + dz}
}

// Intersects reports whether b and o share at least one point (closed test).
func (b Box) Intersects(o Box) bool {
	return b.MinX <= o.MaxX && b.MaxX >= o.MinX && b.MinZ <= o.MaxZ && b.MaxZ >= o.MinZ
}

// IntersectionArea returns the overlapping area of two boxes, or 0.
func IntersectionArea(a, b Box) float64 {
	w := math.Min(a.MaxX, b.MaxX) - math.Max(a.MinX, b.MinX)
	d := math.Min(a.MaxZ, b.MaxZ) - math.Max(a.MinZ, b.MinZ)
	if w <= 0 || d <= 0 {
		return 0
	}
	return w * d
}

// BoundingBox returns the footprint of a width x depth rectangle with its
// origin at (x, z) turned by rotation. The canonical rotations are computed
// exactly; any other angle encloses the four rotated corners.
func BoundingBox(x, z, width, depth, rotation float64) Box {
	switch WallOf(rotation) {
	case WallBack:
		return Box{MinX: x, MaxX: x + width, MinZ: z, MaxZ: z + depth}
	case WallLeft:
		return Box{MinX: x, MaxX: x + depth, MinZ: z - width, MaxZ: z}
	case WallRight:
		return Box{MinX: x - depth, MaxX: x, MinZ: z, MaxZ: z + width}
	case WallFront:
		return Box{MinX: x - width, MaxX: x, MinZ: z - depth, MaxZ: z}
	}

	cos, sin := math.Cos(rotation), math.Sin(rotation)
	xs := [4]float64{x, x + width*cos, x + depth*sin, x + width*cos + depth*sin}
	zs := [4]float64{z, z - width*sin, z + depth*cos, z - width*sin + depth*cos}

	b := Box{MinX: xs[0], MaxX: xs[0], MinZ: zs[0], MaxZ: zs[0]}
	for i := 1; i < 4; i++ {
		b.MinX = math.Min(b.MinX, xs[i])
		b.MaxX = math.Max(b.MaxX, xs[i])
		b.MinZ = math.Min(b.MinZ, zs[i])
		b.MaxZ = math.Max(b.MaxZ, zs[i])
	}
	return b
}

// Corners returns the four corners of a width x depth rectangle with its
// origin at (x, z) turned by rotation, as (x, z) pairs in the order origin,
// end of the width edge, far corner, end of the depth edge.
func Corners(x, z, width, depth, rotation float64) [4][2]float64 {
	cos, sin := math.Cos(rotation), math.Sin(rotation)
	if w := WallOf(rotation); w != WallUnknown {
		r := w.Rotation()
		cos, sin = math.Round(math.Cos(r)), math.Round(math.Sin(r))
	}
	return [4][2]float64{
		{x, z},
		{x + width*cos, z - width*sin},
		{x + width*cos + depth*sin, z - width*sin + depth*cos},
		{x + depth*sin, z + depth*cos},
	}
}

// UnitBox returns the footprint of u at pose p.
func UnitBox(u model.Unit, p model.Pose) Box {
	s := u.Size()
	return BoundingBox(p.X, p.Z, s.Width, s.Depth, p.Rotation)
}

// EffectiveDimensions returns the X and Z extents of a unit at rotation.
// Width and depth swap when the unit faces a side wall.
func EffectiveDimensions(width, depth, rotation float64) (effWidth, effDepth float64) {
	switch WallOf(rotation) {
	case WallLeft, WallRight:
		return depth, width
	}
	return width, depth
}

// NormalizeRotation wraps r into [-π, π].
func NormalizeRotation(r float64) float64 {
	return math.Remainder(r, 2*math.Pi)
}

// SameRotation reports whether two rotations differ by at most tol after
// wrapping.
func SameRotation(a, b, tol float64) bool {
	return math.Abs(NormalizeRotation(a-b)) <= tol
}

// ClampToRoom returns the origin shifted by the minimal amount that puts the
// unit's footprint inside the room. If the footprint is larger than the room
// on an axis, the right and front walls win.
func ClampToRoom(x, z, width, depth, rotation float64, room model.Room) (float64, float64) {
	b := BoundingBox(x, z, width, depth, rotation)
	hw, hd := room.HalfWidth(), room.HalfDepth()

	var dx, dz float64
	if b.MinX < -hw {
		dx = -hw - b.MinX
	}
	if b.MaxX > hw {
		dx = hw - b.MaxX
	}
	if b.MinZ < -hd {
		dz = -hd - b.MinZ
	}
	if b.MaxZ > hd {
		dz = hd - b.MaxZ
	}
	return x + dx, z + dz
}

// InsideRoom reports whether b lies within the room footprint, allowing tol
// of slack on every side.
func InsideRoom(b Box, room model.Room, tol float64) bool {
	hw, hd := room.HalfWidth(), room.HalfDepth()
	return b.MinX >= -hw-tol && b.MaxX <= hw+tol && b.MinZ >= -hd-tol && b.MaxZ <= hd+tol
}

// Overlap reports whether a and b overlap by more than epsilon on both axes.
// Boxes that only touch never overlap.
func Overlap(a, b Box, epsilon float64) bool {
	ox := math.Min(a.MaxX, b.MaxX) - math.Max(a.MinX, b.MinX)
	oz := math.Min(a.MaxZ, b.MaxZ) - math.Max(a.MinZ, b.MinZ)
	return ox > epsilon && oz > epsilon
}

// Overlaps is Overlap with OverlapEpsilon.
func (b Box) Overlaps(o Box) bool {
	return Overlap(b, o, OverlapEpsilon)
}

// VerticalOverlap reports whether [y1, y1+h1) and [y2, y2+h2) overlap by more
// than epsilon.
func VerticalOverlap(y1, h1, y2, h2, epsilon float64) bool {
	return !(y1+h1 <= y2+epsilon || y1 >= y2+h2-epsilon)
}

// UnitsShareHeight reports whether the vertical extents of two posed units
// overlap.
func UnitsShareHeight(a model.Unit, pa model.Pose, b model.Unit, pb model.Pose) bool {
	return VerticalOverlap(pa.Y, a.Size().Height, pb.Y, b.Size().Height, VerticalEpsilon)
}
