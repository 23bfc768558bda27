// Package engine searches for poses for new units: along a wall, into gaps,
// or on a room-wide grid.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/CabinetFit/internal/geom"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrUnknownStrategy is returned when a strategy name is not registered.
var ErrUnknownStrategy = errors.New("unknown placement strategy")

// DefaultStrategy is the strategy used when none is named.
const DefaultStrategy = "smart"

// DefaultMaxPositions caps FindAllPossiblePositions.
const DefaultMaxPositions = 10

// Candidate kinds.
const (
	KindNext     = "next"      // the strategy's own answer
	KindRowStart = "row_start" // just before the first unit on the wall
	KindRowEnd   = "row_end"   // just after the last unit on the wall
	KindGap      = "gap"       // inside a gap between two units
)

// Candidate is a pose proposed by a strategy.
type Candidate struct {
	Pose     model.Pose `json:"pose"`
	Strategy string     `json:"strategy"`
	Kind     string     `json:"kind"`
	Wall     geom.Wall  `json:"wall"`
	Score    float64    `json:"score,omitempty"`
}

// Unit returns u moved to the candidate pose.
func (c Candidate) Unit(u model.Unit) model.Unit {
	return u.WithPose(c.Pose)
}

// ScoreFunc rates a candidate; higher is better.
type ScoreFunc func(Candidate) float64

// Stats describes a System's configuration.
type Stats struct {
	Strategies      []string   `json:"strategies"`
	DefaultStrategy string     `json:"default_strategy"`
	Room            model.Room `json:"room"`
}

// System picks a strategy by name and runs it against a room.
type System struct {
	room            model.Room
	strategies      map[string]Strategy
	order           []string
	defaultStrategy string
	logger          *zap.Logger
}

// Option configures a System.
type Option func(*System)

// WithLogger sets the logger used for placement decisions.
func WithLogger(l *zap.Logger) Option {
	return func(s *System) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStrategy registers an additional strategy, replacing any with the
// same name.
func WithStrategy(st Strategy) Option {
	return func(s *System) {
		s.register(st)
	}
}

// NewSystem creates a placement system for room with the linear, smart and
// grid strategies registered and smart as the default.
func NewSystem(room model.Room, opts ...Option) (*System, error) {
	if err := room.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create placement system: %w", err)
	}
	s := &System{
		room:            room,
		strategies:      make(map[string]Strategy),
		defaultStrategy: DefaultStrategy,
		logger:          zap.NewNop(),
	}
	s.register(Linear{})
	s.register(Smart{})
	s.register(Grid{Spacing: DefaultGridSpacing})
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *System) register(st Strategy) {
	if _, ok := s.strategies[st.Name()]; !ok {
		s.order = append(s.order, st.Name())
	}
	s.strategies[st.Name()] = st
}

// Room returns the room placements are computed for.
func (s *System) Room() model.Room { return s.room }

// Strategies returns the registered strategy names in registration order.
func (s *System) Strategies() []string {
	return append([]string(nil), s.order...)
}

// DefaultStrategy returns the name used when none is given.
func (s *System) DefaultStrategy() string { return s.defaultStrategy }

// SetDefaultStrategy changes the default strategy.
func (s *System) SetDefaultStrategy(name string) error {
	if _, ok := s.strategies[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	s.defaultStrategy = name
	return nil
}

// UpdateRoom replaces the room, e.g. after the user resizes it.
func (s *System) UpdateRoom(room model.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}
	s.room = room
	return nil
}

// Stats returns the system configuration.
func (s *System) Stats() Stats {
	return Stats{
		Strategies:      s.Strategies(),
		DefaultStrategy: s.defaultStrategy,
		Room:            s.room,
	}
}

// strategy resolves a name, falling back to the default for empty or
// unknown names.
func (s *System) strategy(name string) Strategy {
	if name == "" {
		return s.strategies[s.defaultStrategy]
	}
	st, ok := s.strategies[name]
	if !ok {
		s.logger.Warn("unknown placement strategy, using default",
			zap.String("strategy", name),
			zap.String("default", s.defaultStrategy))
		return s.strategies[s.defaultStrategy]
	}
	return st
}

// FindNextPosition runs the named strategy for u on wall. An empty or
// unknown strategy name uses the default. It returns false when the
// strategy finds no pose, e.g. because the wall is full.
func (s *System) FindNextPosition(u model.Unit, existing []model.Unit, strategy string, wall geom.Wall) (Candidate, bool) {
	st := s.strategy(strategy)
	wall = normalizeWall(wall)

	pose, ok := st.Place(u, existing, s.room, wall)
	if !ok {
		s.logger.Warn("no placement found",
			zap.String("unit", u.DisplayName()),
			zap.String("strategy", st.Name()),
			zap.Stringer("wall", wall))
		return Candidate{}, false
	}
	s.logger.Debug("placement found",
		zap.String("unit", u.DisplayName()),
		zap.String("strategy", st.Name()),
		zap.Stringer("wall", wall),
		zap.Float64("x", pose.X),
		zap.Float64("z", pose.Z),
		zap.Float64("rotation", pose.Rotation))
	return Candidate{Pose: pose, Strategy: st.Name(), Kind: KindNext, Wall: geom.WallOf(pose.Rotation)}, true
}

// alternativer is implemented by strategies that can propose more than one
// pose.
type alternativer interface {
	Alternatives(u model.Unit, existing []model.Unit, room model.Room, wall geom.Wall) []Candidate
}

// FindAllPossiblePositions collects the answer of every strategy followed by
// the alternatives strategies offer, without duplicate poses, up to limit
// entries. A non-positive limit uses DefaultMaxPositions.
func (s *System) FindAllPossiblePositions(u model.Unit, existing []model.Unit, wall geom.Wall, limit int) []Candidate {
	if limit <= 0 {
		limit = DefaultMaxPositions
	}
	wall = normalizeWall(wall)

	var all []Candidate
	for _, name := range s.order {
		st := s.strategies[name]
		if pose, ok := st.Place(u, existing, s.room, wall); ok {
			all = append(all, Candidate{Pose: pose, Strategy: name, Kind: KindNext, Wall: geom.WallOf(pose.Rotation)})
		}
	}
	for _, name := range s.order {
		if alt, ok := s.strategies[name].(alternativer); ok {
			all = append(all, alt.Alternatives(u, existing, s.room, wall)...)
		}
	}

	all = lo.UniqBy(all, func(c Candidate) poseKey { return keyOf(c.Pose) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

// FindBestPosition scores every possible position and returns the highest.
// Ties keep the earlier candidate.
func (s *System) FindBestPosition(u model.Unit, existing []model.Unit, wall geom.Wall, score ScoreFunc) (Candidate, bool) {
	all := s.FindAllPossiblePositions(u, existing, wall, 0)
	if len(all) == 0 || score == nil {
		return Candidate{}, false
	}
	for i := range all {
		all[i].Score = score(all[i])
	}
	best := lo.MaxBy(all, func(a, b Candidate) bool { return a.Score > b.Score })
	return best, true
}

// poseKey identifies a pose to the millimeter and milliradian.
type poseKey struct {
	x, y, z, rot int64
}

func keyOf(p model.Pose) poseKey {
	r := func(v float64) int64 { return int64(math.Round(v * 1000)) }
	return poseKey{r(p.X), r(p.Y), r(p.Z), r(geom.NormalizeRotation(p.Rotation))}
}
