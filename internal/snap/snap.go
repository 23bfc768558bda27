// Package snap corrects a unit's pose while it is being moved, pulling it
// against walls, flush to neighbors, into gaps, or onto a grid.
package snap

import (
	"math"

	"github.com/piwi3910/CabinetFit/internal/geom"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/piwi3910/CabinetFit/internal/spatial"
	"go.uber.org/zap"
)

// Kind names a snapper.
type Kind string

const (
	KindWall    Kind = "wall"
	KindCabinet Kind = "cabinet"
	KindGrid    Kind = "grid"
)

// Context is the scene a snap is computed against.
type Context struct {
	Index     *spatial.Index
	Room      model.Room
	ExcludeID model.UnitID

	// RotationJustChanged is set once an earlier step turned the unit, so
	// later snappers search the whole room instead of the cursor area.
	RotationJustChanged bool

	// PriorSnap is set once an earlier snapper in the chain moved the pose.
	PriorSnap bool
}

// Result is the outcome of a single snapper.
type Result struct {
	Pose     model.Pose
	Applied  bool
	Strong   bool
	Distance float64      // how far the snap moved the unit, m
	Target   model.UnitID // neighbor snapped to, if any
	Edge     string
}

// Point is a snap target exposed for previews.
type Point struct {
	X     float64 `json:"x"`
	Z     float64 `json:"z"`
	Kind  Kind    `json:"kind"`
	Label string  `json:"label,omitempty"`
}

// Snapper is one stage of the snap chain.
type Snapper interface {
	Kind() Kind
	Snap(pose model.Pose, u model.Unit, ctx Context) Result
	SnapPoints(pose model.Pose, u model.Unit, ctx Context) []Point
}

// Outcome is the result of running the whole chain.
type Outcome struct {
	Pose    model.Pose
	Snapped bool
	Strong  bool
	Kind    Kind   // last snapper that applied
	Applied []Kind // every snapper that applied, in order
}

// System runs the enabled snappers in order: wall, cabinet, grid.
type System struct {
	settings model.SnapSettings
	wall     *WallSnapper
	neighbor *NeighborSnapper
	grid     *GridSnapper
	logger   *zap.Logger
}

// Option configures a System.
type Option func(*System)

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(s *System) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSystem builds a snap chain. Zero thresholds take their defaults.
func NewSystem(settings model.SnapSettings, opts ...Option) *System {
	settings = settings.WithDefaults()
	s := &System{
		settings: settings,
		wall:     NewWallSnapper(settings.WallThreshold),
		neighbor: NewNeighborSnapper(settings.CabinetThreshold),
		grid:     NewGridSnapper(settings.GridSize),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the active settings.
func (s *System) Settings() model.SnapSettings { return s.settings }

func (s *System) chain() []Snapper {
	return []Snapper{s.wall, s.neighbor, s.grid}
}

// Snap runs the chain on pose. Each enabled snapper sees the previous
// snapper's output, and a strong result ends the chain.
func (s *System) Snap(pose model.Pose, u model.Unit, ctx Context) Outcome {
	out := Outcome{Pose: pose}
	ctx.PriorSnap = false

	for _, sn := range s.chain() {
		if !s.IsEnabled(sn.Kind()) {
			continue
		}
		r := sn.Snap(out.Pose, u, ctx)
		if !r.Applied {
			continue
		}
		if !geom.SameRotation(r.Pose.Rotation, out.Pose.Rotation, geom.RotationEpsilon) {
			ctx.RotationJustChanged = true
		}
		s.logger.Debug("snap applied",
			zap.String("unit", string(u.InstanceID)),
			zap.String("kind", string(sn.Kind())),
			zap.String("edge", r.Edge),
			zap.Float64("distance", r.Distance),
			zap.Bool("strong", r.Strong))

		out.Pose = r.Pose
		out.Snapped = true
		out.Kind = sn.Kind()
		out.Applied = append(out.Applied, sn.Kind())
		ctx.PriorSnap = true
		if r.Strong {
			out.Strong = true
			break
		}
	}
	return out
}

// FindNearestSnap runs every enabled snapper independently on pose and
// returns the one that moves the unit the least.
func (s *System) FindNearestSnap(pose model.Pose, u model.Unit, ctx Context) (Result, Kind, bool) {
	var (
		best     Result
		bestKind Kind
		found    bool
	)
	bestDist := math.Inf(1)
	for _, sn := range s.chain() {
		if !s.IsEnabled(sn.Kind()) {
			continue
		}
		r := sn.Snap(pose, u, ctx)
		if !r.Applied {
			continue
		}
		d := math.Hypot(r.Pose.X-pose.X, r.Pose.Z-pose.Z)
		if d < bestDist {
			bestDist = d
			best, bestKind, found = r, sn.Kind(), true
		}
	}
	return best, bestKind, found
}

// Visualization groups snap targets by snapper for previews.
type Visualization struct {
	Wall    []Point `json:"wall"`
	Cabinet []Point `json:"cabinet"`
	Grid    []Point `json:"grid"`
}

// Visualization returns the snap targets of every enabled snapper.
func (s *System) Visualization(pose model.Pose, u model.Unit, ctx Context) Visualization {
	var v Visualization
	if s.settings.EnableWall {
		v.Wall = s.wall.SnapPoints(pose, u, ctx)
	}
	if s.settings.EnableCabinet {
		v.Cabinet = s.neighbor.SnapPoints(pose, u, ctx)
	}
	if s.settings.EnableGrid {
		v.Grid = s.grid.SnapPoints(pose, u, ctx)
	}
	return v
}

// UpdateSettings replaces thresholds and enable flags. Zero thresholds keep
// their defaults.
func (s *System) UpdateSettings(settings model.SnapSettings) {
	settings = settings.WithDefaults()
	s.settings = settings
	s.wall.Threshold = settings.WallThreshold
	s.neighbor.Threshold = settings.CabinetThreshold
	s.grid.Size = settings.GridSize
}

// SetEnabled turns one snapper on or off. Unknown kinds are ignored.
func (s *System) SetEnabled(kind Kind, enabled bool) {
	switch kind {
	case KindWall:
		s.settings.EnableWall = enabled
	case KindCabinet:
		s.settings.EnableCabinet = enabled
	case KindGrid:
		s.settings.EnableGrid = enabled
	}
}

// IsEnabled reports whether a snapper runs.
func (s *System) IsEnabled(kind Kind) bool {
	switch kind {
	case KindWall:
		return s.settings.EnableWall
	case KindCabinet:
		return s.settings.EnableCabinet
	case KindGrid:
		return s.settings.EnableGrid
	}
	return false
}

// moved returns the planar distance between two poses.
func moved(a, b model.Pose) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}
