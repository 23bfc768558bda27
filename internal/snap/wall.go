package snap

import (
	"math"

	"github.com/piwi3910/CabinetFit/internal/geom"
	"github.com/piwi3910/CabinetFit/internal/model"
)

// Margins used to decide whether a unit is in the back corner zone.
const (
	backAwayMargin   = 0.1  // m
	backCornerMargin = 0.15 // m
)

// WallSnapper pulls a unit flush against the back, left or right wall and
// turns it to face into the room. It never ends the chain.
type WallSnapper struct {
	Threshold float64
}

// NewWallSnapper creates a wall snapper.
func NewWallSnapper(threshold float64) *WallSnapper {
	return &WallSnapper{Threshold: threshold}
}

// Kind implements Snapper.
func (w *WallSnapper) Kind() Kind { return KindWall }

// wallDistances measures the gap between a footprint and each wall.
type wallDistances struct {
	back, left, right, front float64
}

func measureWalls(b geom.Box, room model.Room) wallDistances {
	hw, hd := room.HalfWidth(), room.HalfDepth()
	return wallDistances{
		back:  math.Abs(b.MinZ + hd),
		left:  math.Abs(b.MinX + hw),
		right: math.Abs(b.MaxX - hw),
		front: math.Abs(b.MaxZ - hd),
	}
}

// Snap implements Snapper. The back wall wins in the back corners so a unit
// dragged along a corner does not flip between walls.
func (w *WallSnapper) Snap(pose model.Pose, u model.Unit, ctx Context) Result {
	s := u.Size()
	room := ctx.Room
	hw, hd := room.HalfWidth(), room.HalfDepth()
	b := geom.BoundingBox(pose.X, pose.Z, s.Width, s.Depth, pose.Rotation)
	dist := measureWalls(b, room)
	offset := u.WallStandoff()

	awayFromBack := b.MinZ > -hd+s.Depth+backAwayMargin
	nearBackCorner := b.MinZ < -hd+s.Depth+backCornerMargin

	next := pose
	var edge string
	switch {
	case dist.back < w.Threshold && nearBackCorner:
		next.Z, next.Rotation, edge = -hd+offset, geom.WallBack.Rotation(), "back"
	case dist.left < w.Threshold && awayFromBack:
		next.X, next.Rotation, edge = -hw+offset, geom.WallLeft.Rotation(), "left"
	case dist.right < w.Threshold && awayFromBack:
		next.X, next.Rotation, edge = hw-offset, geom.WallRight.Rotation(), "right"
	case dist.back < w.Threshold:
		next.Z, next.Rotation, edge = -hd+offset, geom.WallBack.Rotation(), "back"
	default:
		return Result{Pose: pose}
	}
	return Result{Pose: next, Applied: true, Distance: moved(pose, next), Edge: edge}
}

// NearestWall returns the wall closest to the unit's footprint at pose and
// the distance to it.
func (w *WallSnapper) NearestWall(pose model.Pose, u model.Unit, room model.Room) (geom.Wall, float64) {
	d := measureWalls(geom.UnitBox(u, pose), room)
	wall, best := geom.WallBack, d.back
	if d.left < best {
		wall, best = geom.WallLeft, d.left
	}
	if d.right < best {
		wall, best = geom.WallRight, d.right
	}
	if d.front < best {
		wall, best = geom.WallFront, d.front
	}
	return wall, best
}

// SnapPoints implements Snapper. It returns the origin the unit would take
// against each wall it is within twice the threshold of.
func (w *WallSnapper) SnapPoints(pose model.Pose, u model.Unit, ctx Context) []Point {
	room := ctx.Room
	hw, hd := room.HalfWidth(), room.HalfDepth()
	offset := u.WallStandoff()
	d := measureWalls(geom.UnitBox(u, pose), room)

	var pts []Point
	if d.back < w.Threshold*2 {
		pts = append(pts, Point{X: pose.X, Z: -hd + offset, Kind: KindWall, Label: "back"})
	}
	if d.left < w.Threshold*2 {
		pts = append(pts, Point{X: -hw + offset, Z: pose.Z, Kind: KindWall, Label: "left"})
	}
	if d.right < w.Threshold*2 {
		pts = append(pts, Point{X: hw - offset, Z: pose.Z, Kind: KindWall, Label: "right"})
	}
	return pts
}
