package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for caller misuse. Geometric infeasibility is never an
// error; it is reported through result values.
var (
	ErrInvalidRoom   = errors.New("invalid room dimensions")
	ErrMissingID     = errors.New("unit has no instance id")
	ErrUnknownUnit   = errors.New("unknown unit")
	ErrDuplicateUnit = errors.New("unit already indexed")
)

// Default unit dimensions applied when a dimension is left at zero.
const (
	DefaultUnitWidth  = 600.0 // mm
	DefaultUnitHeight = 720.0 // mm
	DefaultUnitDepth  = 560.0 // mm
)

// Vertical placement rules per category.
const (
	WallUnitElevation = 1.4  // m, default Y for wall units
	MinWallUnitHeight = 1.0  // m
	MaxWallUnitHeight = 1.8  // m
	BaseUnitTolerance = 0.01 // m, allowed |Y| for floor units
)

// Base units of this depth are placed BaseWallStandoff away from the wall.
const (
	BaseStandoffDepth = 500.0 // mm
	BaseWallStandoff  = 0.065 // m
)

const mmPerMeter = 1000.0

// Category is the placement class of a unit.
type Category string

const (
	CategoryBase Category = "base" // Floor-standing
	CategoryWall Category = "wall" // Wall-mounted
	CategoryTall Category = "tall" // Full-height, floor-standing
)

func (c Category) String() string {
	if c == "" {
		return string(CategoryBase)
	}
	return string(c)
}

// Normalized maps the empty category to CategoryBase.
func (c Category) Normalized() Category {
	if c == "" {
		return CategoryBase
	}
	return c
}

// Valid reports whether c is one of the known categories (or empty).
func (c Category) Valid() bool {
	switch c {
	case "", CategoryBase, CategoryWall, CategoryTall:
		return true
	}
	return false
}

// IsWallMounted reports whether units of this category hang on the wall.
func (c Category) IsWallMounted() bool {
	return c == CategoryWall
}

// SameLevel reports whether two categories share a vertical level. Wall units
// only share with wall units; base and tall units stand on the floor together.
func (c Category) SameLevel(other Category) bool {
	return c.IsWallMounted() == other.IsWallMounted()
}

// DefaultElevation returns the Y coordinate a freshly placed unit gets.
func (c Category) DefaultElevation() float64 {
	if c.IsWallMounted() {
		return WallUnitElevation
	}
	return 0
}

// ParseCategory converts user input into a Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "", "base", "floor", "b":
		return CategoryBase, nil
	case "wall", "upper", "w":
		return CategoryWall, nil
	case "tall", "pantry", "t":
		return CategoryTall, nil
	}
	return "", fmt.Errorf("unknown unit type %q", s)
}

// UnitID is the stable instance identifier of a unit.
type UnitID string

// Room is the rectangular space units are placed in. The origin is the room
// center on the floor.
type Room struct {
	Width  float64 `json:"width" yaml:"width"`   // m, along X
	Depth  float64 `json:"depth" yaml:"depth"`   // m, along Z
	Height float64 `json:"height" yaml:"height"` // m, along Y
}

// Validate returns ErrInvalidRoom if any dimension is not positive.
func (r Room) Validate() error {
	switch {
	case r.Width <= 0:
		return fmt.Errorf("%w: width %.3f", ErrInvalidRoom, r.Width)
	case r.Depth <= 0:
		return fmt.Errorf("%w: depth %.3f", ErrInvalidRoom, r.Depth)
	case r.Height <= 0:
		return fmt.Errorf("%w: height %.3f", ErrInvalidRoom, r.Height)
	}
	return nil
}

// HalfWidth returns the X coordinate of the right wall.
func (r Room) HalfWidth() float64 { return r.Width / 2 }

// HalfDepth returns the Z coordinate of the front wall.
func (r Room) HalfDepth() float64 { return r.Depth / 2 }

// Pose is a unit origin plus its rotation about the vertical axis.
type Pose struct {
	X        float64 `json:"x" yaml:"x"`               // m
	Y        float64 `json:"y" yaml:"y"`               // m
	Z        float64 `json:"z" yaml:"z"`               // m
	Rotation float64 `json:"rotation" yaml:"rotation"` // rad
}

// Size is a unit's extent in meters.
type Size struct {
	Width  float64
	Height float64
	Depth  float64
}

// Unit is a placeable rectangular cabinet. Dimensions are millimeters,
// position and rotation are meters and radians.
type Unit struct {
	InstanceID UnitID     `json:"instanceId" yaml:"instance_id"`
	Label      string     `json:"label,omitempty" yaml:"label,omitempty"`
	Type       Category   `json:"type" yaml:"type"`
	Width      float64    `json:"width" yaml:"width"`   // mm
	Height     float64    `json:"height" yaml:"height"` // mm
	Depth      float64    `json:"depth" yaml:"depth"`   // mm
	Position   [3]float64 `json:"position" yaml:"position"`
	Rotation   float64    `json:"rotation" yaml:"rotation"` // rad
}

// NewUnit creates a unit with a fresh instance id and no pose.
func NewUnit(label string, category Category, w, h, d float64) Unit {
	return Unit{
		InstanceID: UnitID(uuid.New().String()),
		Label:      label,
		Type:       category,
		Width:      w,
		Height:     h,
		Depth:      d,
	}
}

// Size converts the unit's millimeter dimensions to meters, applying the
// default dimensions for zero values. It is the only place the engine
// converts units.
func (u Unit) Size() Size {
	w, h, d := u.Width, u.Height, u.Depth
	if w <= 0 {
		w = DefaultUnitWidth
	}
	if h <= 0 {
		h = DefaultUnitHeight
	}
	if d <= 0 {
		d = DefaultUnitDepth
	}
	return Size{Width: w / mmPerMeter, Height: h / mmPerMeter, Depth: d / mmPerMeter}
}

// Pose returns the unit's current pose.
func (u Unit) Pose() Pose {
	return Pose{X: u.Position[0], Y: u.Position[1], Z: u.Position[2], Rotation: u.Rotation}
}

// WithPose returns a copy of u moved to p.
func (u Unit) WithPose(p Pose) Unit {
	u.Position = [3]float64{p.X, p.Y, p.Z}
	u.Rotation = p.Rotation
	return u
}

// Category returns the normalized category of the unit.
func (u Unit) Category() Category {
	return u.Type.Normalized()
}

// WallStandoff is the distance a unit keeps from the wall it is placed
// against. Base units of 500mm depth leave room for a worktop overhang.
func (u Unit) WallStandoff() float64 {
	if u.Category() == CategoryBase && u.Depth == BaseStandoffDepth {
		return BaseWallStandoff
	}
	return 0
}

// DisplayName returns the label, falling back to a short id.
func (u Unit) DisplayName() string {
	if u.Label != "" {
		return u.Label
	}
	id := string(u.InstanceID)
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s %s", u.Category(), id)
}
