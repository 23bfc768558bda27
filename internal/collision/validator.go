// Package collision decides whether a unit may occupy a pose: inside the
// room, clear of other units, and at a height its category allows.
package collision

import (
	"fmt"
	"math"

	"github.com/piwi3910/CabinetFit/internal/geom"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/piwi3910/CabinetFit/internal/snap"
	"github.com/piwi3910/CabinetFit/internal/spatial"
	"go.uber.org/zap"
)

// Reason explains why a pose was rejected.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonOutOfBoundsX      Reason = "out_of_bounds_x"
	ReasonOutOfBoundsY      Reason = "out_of_bounds_y"
	ReasonOutOfBoundsZ      Reason = "out_of_bounds_z"
	ReasonCollision         Reason = "collision"
	ReasonInvalidWallHeight Reason = "invalid_wall_height"
	ReasonInvalidBaseHeight Reason = "invalid_base_height"
)

// Result is the verdict for one pose.
type Result struct {
	Valid      bool         `json:"valid"`
	Reason     Reason       `json:"reason,omitempty"`
	Message    string       `json:"message,omitempty"`
	Collisions []model.Unit `json:"collisions,omitempty"`
}

func reject(reason Reason, format string, args ...interface{}) Result {
	return Result{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Validator checks poses against a room and the units in an index.
type Validator struct {
	index  *spatial.Index
	room   model.Room
	logger *zap.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// New creates a Validator over index for room.
func New(index *spatial.Index, room model.Room, opts ...Option) (*Validator, error) {
	if index == nil {
		return nil, fmt.Errorf("collision validator requires a spatial index")
	}
	if err := room.Validate(); err != nil {
		return nil, err
	}
	v := &Validator{index: index, room: room, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Room returns the room the validator checks against.
func (v *Validator) Room() model.Room { return v.room }

// UpdateRoom replaces the room, e.g. after the user resizes it.
func (v *Validator) UpdateRoom(room model.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}
	v.room = room
	return nil
}

// CanPlace checks boundaries, then overlaps with vertically overlapping
// units, then the category height rule, and stops at the first failure.
func (v *Validator) CanPlace(u model.Unit, pose model.Pose, exclude model.UnitID) Result {
	if r, ok := v.checkBounds(u, pose); !ok {
		return r
	}
	if hits := v.collisions(u, pose, exclude); len(hits) > 0 {
		r := reject(ReasonCollision, "overlaps %d unit(s)", len(hits))
		r.Collisions = hits
		return r
	}
	if r, ok := checkHeight(u, pose); !ok {
		return r
	}
	return Result{Valid: true}
}

func (v *Validator) checkBounds(u model.Unit, pose model.Pose) (Result, bool) {
	s := u.Size()
	b := geom.BoundingBox(pose.X, pose.Z, s.Width, s.Depth, pose.Rotation)
	hw, hd := v.room.HalfWidth(), v.room.HalfDepth()
	tol := geom.BoundaryTolerance

	if b.MinX < -hw-tol || b.MaxX > hw+tol {
		return reject(ReasonOutOfBoundsX, "x extent [%.3f, %.3f] outside room [%.3f, %.3f]", b.MinX, b.MaxX, -hw, hw), false
	}
	if b.MinZ < -hd-tol || b.MaxZ > hd+tol {
		return reject(ReasonOutOfBoundsZ, "z extent [%.3f, %.3f] outside room [%.3f, %.3f]", b.MinZ, b.MaxZ, -hd, hd), false
	}
	if pose.Y < -geom.VerticalEpsilon || pose.Y+s.Height > v.room.Height+geom.VerticalEpsilon {
		return reject(ReasonOutOfBoundsY, "y extent [%.3f, %.3f] outside room [0, %.3f]", pose.Y, pose.Y+s.Height, v.room.Height), false
	}
	return Result{}, true
}

func checkHeight(u model.Unit, pose model.Pose) (Result, bool) {
	if u.Category().IsWallMounted() {
		if pose.Y < model.MinWallUnitHeight || pose.Y > model.MaxWallUnitHeight {
			return reject(ReasonInvalidWallHeight, "wall unit at %.2fm, must hang between %.1fm and %.1fm",
				pose.Y, model.MinWallUnitHeight, model.MaxWallUnitHeight), false
		}
		return Result{}, true
	}
	if math.Abs(pose.Y) > model.BaseUnitTolerance {
		return reject(ReasonInvalidBaseHeight, "%s unit at %.2fm, must stand on the floor", u.Category(), pose.Y), false
	}
	return Result{}, true
}

// collisions returns the indexed units whose footprint and vertical extent
// both overlap u at pose.
func (v *Validator) collisions(u model.Unit, pose model.Pose, exclude model.UnitID) []model.Unit {
	s := u.Size()
	hits := v.index.CheckCollisions(pose.X, pose.Z, s.Width, s.Depth, pose.Rotation, exclude)
	var out []model.Unit
	for _, o := range hits {
		if geom.VerticalOverlap(pose.Y, s.Height, o.Position[1], o.Size().Height, geom.VerticalEpsilon) {
			out = append(out, o)
		}
	}
	if len(out) > 0 {
		v.logger.Debug("placement collides",
			zap.String("unit", string(u.InstanceID)),
			zap.Int("collisions", len(out)))
	}
	return out
}

// Snapper is the pose correction CheckPlacement can run first.
// *snap.System satisfies it.
type Snapper interface {
	Snap(pose model.Pose, u model.Unit, ctx snap.Context) snap.Outcome
}

// CheckOptions controls CheckPlacement.
type CheckOptions struct {
	Snap    bool
	Snapper Snapper

	// Context overrides the snap context. Index and Room default to the
	// validator's, ExcludeID to the exclude argument.
	Context snap.Context
}

// Placement is the corrected pose from CheckPlacement.
type Placement struct {
	Pose       model.Pose   `json:"pose"`
	Valid      bool         `json:"valid"`
	Snapped    bool         `json:"snapped"`
	SnapKind   snap.Kind    `json:"snap_kind,omitempty"`
	Collisions []model.Unit `json:"collisions,omitempty"`
}

// CheckPlacement is the entry point for interactive movement: optionally
// snap, always clamp into the room, then check overlaps. Snapping and
// clamping only correct the pose; only a collision makes it invalid.
func (v *Validator) CheckPlacement(u model.Unit, pose model.Pose, exclude model.UnitID, opts CheckOptions) Placement {
	out := Placement{Pose: pose}

	if opts.Snap && opts.Snapper != nil {
		ctx := opts.Context
		if ctx.Index == nil {
			ctx.Index = v.index
		}
		if ctx.Room == (model.Room{}) {
			ctx.Room = v.room
		}
		if ctx.ExcludeID == "" {
			ctx.ExcludeID = exclude
		}
		res := opts.Snapper.Snap(pose, u, ctx)
		out.Pose = res.Pose
		out.Snapped = res.Snapped
		out.SnapKind = res.Kind
	}

	s := u.Size()
	out.Pose.X, out.Pose.Z = geom.ClampToRoom(out.Pose.X, out.Pose.Z, s.Width, s.Depth, out.Pose.Rotation, v.room)

	out.Collisions = v.collisions(u, out.Pose, exclude)
	out.Valid = len(out.Collisions) == 0
	return out
}

// searchOffsets is the ring of (dx, dz) nudges FindNearestValidPosition
// tries, in order.
var searchOffsets = [][2]float64{
	{0, 0},
	{0.05, 0}, {-0.05, 0}, {0, 0.05}, {0, -0.05},
	{0.1, 0}, {-0.1, 0}, {0, 0.1}, {0, -0.1},
	{0.05, 0.05}, {-0.05, -0.05}, {0.05, -0.05}, {-0.05, 0.05},
}

// FindNearestValidPosition nudges pose through a fixed ring of small offsets
// and returns the first one that validates. It is a bounded local search:
// failure does not mean no valid pose exists further away.
func (v *Validator) FindNearestValidPosition(u model.Unit, pose model.Pose) (model.Pose, bool) {
	for _, off := range searchOffsets {
		p := pose
		p.X += off[0]
		p.Z += off[1]
		if v.CanPlace(u, p, u.InstanceID).Valid {
			return p, true
		}
	}
	return model.Pose{}, false
}

// CollisionScore returns the total footprint area u at pose shares with
// vertically overlapping units. Zero means no collision.
func (v *Validator) CollisionScore(u model.Unit, pose model.Pose, exclude model.UnitID) float64 {
	b := geom.UnitBox(u, pose)
	var area float64
	for _, o := range v.collisions(u, pose, exclude) {
		area += geom.IntersectionArea(b, geom.UnitBox(o, o.Pose()))
	}
	return area
}

// stackTolerance is the vertical slack allowed when stacking units.
const stackTolerance = 0.05 // m

// IsOnTop reports whether upper rests on lower: its bottom sits at lower's
// top within stackTolerance and their footprints overlap.
func IsOnTop(upper model.Unit, upperPose model.Pose, lower model.Unit, lowerPose model.Pose) bool {
	top := lowerPose.Y + lower.Size().Height
	if math.Abs(upperPose.Y-top) > stackTolerance {
		return false
	}
	return geom.UnitBox(upper, upperPose).Overlaps(geom.UnitBox(lower, lowerPose))
}
