package geom

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/CabinetFit/internal/model"
)

// Wall identifies one of the four room walls a unit can back onto.
type Wall int

const (
	WallUnknown Wall = iota
	WallBack         // rotation 0, unit faces +Z
	WallLeft         // rotation +π/2
	WallRight        // rotation -π/2
	WallFront        // rotation π
)

func (w Wall) String() string {
	switch w {
	case WallBack:
		return "back"
	case WallLeft:
		return "left"
	case WallRight:
		return "right"
	case WallFront:
		return "front"
	default:
		return "unknown"
	}
}

// MarshalText encodes the wall by name.
func (w Wall) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText decodes a wall name.
func (w *Wall) UnmarshalText(b []byte) error {
	parsed, err := ParseWall(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Rotation returns the canonical rotation of a unit backed onto w.
func (w Wall) Rotation() float64 {
	switch w {
	case WallLeft:
		return math.Pi / 2
	case WallRight:
		return -math.Pi / 2
	case WallFront:
		return math.Pi
	default:
		return 0
	}
}

// ParseWall converts a wall name into a Wall.
func ParseWall(s string) (Wall, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "back":
		return WallBack, nil
	case "left":
		return WallLeft, nil
	case "right":
		return WallRight, nil
	case "front":
		return WallFront, nil
	}
	return WallUnknown, fmt.Errorf("unknown wall %q", s)
}

// WallOf classifies a rotation into the wall it faces away from.
func WallOf(rotation float64) Wall {
	r := NormalizeRotation(rotation)
	switch {
	case math.Abs(r) < RotationEpsilon:
		return WallBack
	case math.Abs(r-math.Pi/2) < RotationEpsilon:
		return WallLeft
	case math.Abs(r+math.Pi/2) < RotationEpsilon:
		return WallRight
	case math.Abs(math.Abs(r)-math.Pi) < RotationEpsilon:
		return WallFront
	}
	return WallUnknown
}

// Axis is a horizontal world axis.
type Axis int

const (
	AxisX Axis = iota
	AxisZ
)

func (a Axis) String() string {
	if a == AxisZ {
		return "z"
	}
	return "x"
}

// Other returns the perpendicular horizontal axis.
func (a Axis) Other() Axis {
	if a == AxisZ {
		return AxisX
	}
	return AxisZ
}

// WallAxis describes a wall in terms of the axis running along it and the
// axis pointing into the room. The signs give the direction a unit's width
// and depth extend along those axes.
type WallAxis struct {
	Wall      Wall
	Along     Axis
	Into      Axis
	AlongSign int
	IntoSign  int
}

// AxisFor returns the WallAxis of a rotation. Unknown rotations use the back
// wall's axes.
func AxisFor(rotation float64) WallAxis {
	return AxisOf(WallOf(rotation))
}

// AxisOf returns the WallAxis of a wall.
func AxisOf(w Wall) WallAxis {
	switch w {
	case WallLeft:
		return WallAxis{Wall: w, Along: AxisZ, Into: AxisX, AlongSign: -1, IntoSign: 1}
	case WallRight:
		return WallAxis{Wall: w, Along: AxisZ, Into: AxisX, AlongSign: 1, IntoSign: -1}
	case WallFront:
		return WallAxis{Wall: w, Along: AxisX, Into: AxisZ, AlongSign: -1, IntoSign: -1}
	default:
		return WallAxis{Wall: w, Along: AxisX, Into: AxisZ, AlongSign: 1, IntoSign: 1}
	}
}

// AlongWallSpan returns the footprint extent along the wall.
func (wa WallAxis) AlongWallSpan(b Box) (lo, hi float64) {
	return b.Span(wa.Along)
}

// IntoRoomSpan returns the footprint extent perpendicular to the wall.
func (wa WallAxis) IntoRoomSpan(b Box) (lo, hi float64) {
	return b.Span(wa.Into)
}

// WallRange returns the usable along-wall interval of the room.
func (wa WallAxis) WallRange(room model.Room) (lo, hi float64) {
	if wa.Along == AxisZ {
		return -room.HalfDepth(), room.HalfDepth()
	}
	return -room.HalfWidth(), room.HalfWidth()
}

// Coord reads the coordinate of p on axis a.
func Coord(p model.Pose, a Axis) float64 {
	if a == AxisZ {
		return p.Z
	}
	return p.X
}

// WithCoord returns p with its coordinate on axis a set to v.
func WithCoord(p model.Pose, a Axis, v float64) model.Pose {
	if a == AxisZ {
		p.Z = v
	} else {
		p.X = v
	}
	return p
}

// Shift moves p by delta along axis a.
func Shift(p model.Pose, a Axis, delta float64) model.Pose {
	return WithCoord(p, a, Coord(p, a)+delta)
}

// PoseOnWall returns the pose that puts a width x depth unit flush against
// wall w (less standoff), with its footprint starting at alongStart on the
// wall's along axis. The elevation is left at zero.
func PoseOnWall(w Wall, alongStart, standoff, width, depth float64, room model.Room) model.Pose {
	rot := w.Rotation()
	local := BoundingBox(0, 0, width, depth, rot)
	p := model.Pose{Rotation: rot}

	switch w {
	case WallLeft:
		p.X = -room.HalfWidth() + standoff - local.MinX
		p.Z = alongStart - local.MinZ
	case WallRight:
		p.X = room.HalfWidth() - standoff - local.MaxX
		p.Z = alongStart - local.MinZ
	case WallFront:
		p.X = alongStart - local.MinX
		p.Z = room.HalfDepth() - standoff - local.MaxZ
	default:
		p.X = alongStart - local.MinX
		p.Z = -room.HalfDepth() + standoff - local.MinZ
	}
	return p
}
