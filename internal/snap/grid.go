package snap

import (
	"math"

	"github.com/piwi3910/CabinetFit/internal/geom"
	"github.com/piwi3910/CabinetFit/internal/model"
)

// gridMoveEpsilon is the smallest correction the grid snapper reports.
const gridMoveEpsilon = 0.001

// GridSnapper rounds an unrotated unit's origin to a square grid. It does
// nothing once an earlier snapper in the chain has applied.
type GridSnapper struct {
	Size float64
}

// NewGridSnapper creates a grid snapper.
func NewGridSnapper(size float64) *GridSnapper {
	return &GridSnapper{Size: size}
}

// Kind implements Snapper.
func (g *GridSnapper) Kind() Kind { return KindGrid }

// Snap implements Snapper.
func (g *GridSnapper) Snap(pose model.Pose, u model.Unit, ctx Context) Result {
	if ctx.PriorSnap || g.Size <= 0 {
		return Result{Pose: pose}
	}
	if math.Abs(geom.NormalizeRotation(pose.Rotation)) >= geom.RotationEpsilon {
		return Result{Pose: pose}
	}
	x, z := g.NearestPoint(pose.X, pose.Z)
	if math.Abs(x-pose.X) <= gridMoveEpsilon && math.Abs(z-pose.Z) <= gridMoveEpsilon {
		return Result{Pose: pose}
	}
	next := pose
	next.X, next.Z = x, z
	return Result{Pose: next, Applied: true, Distance: moved(pose, next), Edge: "grid"}
}

// NearestPoint rounds (x, z) to the grid.
func (g *GridSnapper) NearestPoint(x, z float64) (float64, float64) {
	return math.Round(x/g.Size) * g.Size, math.Round(z/g.Size) * g.Size
}

// IsOnGrid reports whether (x, z) lies within tol of a grid point.
func (g *GridSnapper) IsOnGrid(x, z, tol float64) bool {
	dx, dz := g.Offset(x, z)
	return math.Abs(dx) <= tol && math.Abs(dz) <= tol
}

// Offset returns how far (x, z) sits from its nearest grid point.
func (g *GridSnapper) Offset(x, z float64) (float64, float64) {
	gx, gz := g.NearestPoint(x, z)
	return x - gx, z - gz
}

// SnapPoints implements Snapper. It returns the 3x3 block of grid points
// around the unit's origin.
func (g *GridSnapper) SnapPoints(pose model.Pose, u model.Unit, ctx Context) []Point {
	if g.Size <= 0 {
		return nil
	}
	cx, cz := g.NearestPoint(pose.X, pose.Z)
	pts := make([]Point, 0, 9)
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			pts = append(pts, Point{X: cx + float64(i)*g.Size, Z: cz + float64(j)*g.Size, Kind: KindGrid})
		}
	}
	return pts
}
