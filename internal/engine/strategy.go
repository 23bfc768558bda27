package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/CabinetFit/internal/geom"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/samber/lo"
)

const (
	// fitTolerance is the slack allowed when deciding whether a unit fits
	// into a free along-wall interval. It may not exceed the overlap
	// epsilon, or a unit accepted into a gap would collide with its end.
	fitTolerance = geom.OverlapEpsilon

	// cornerClearance is kept between a corner start and an adjacent-wall
	// unit it was pushed past.
	cornerClearance = 0.002 // m

	// DefaultGridSpacing is the gap the grid strategy leaves between cells.
	DefaultGridSpacing = 0.1 // m
)

// Strategy finds a pose for a new unit among existing ones. existing is in
// insertion order.
type Strategy interface {
	Name() string
	Place(u model.Unit, existing []model.Unit, room model.Room, wall geom.Wall) (model.Pose, bool)
}

// normalizeWall maps WallUnknown to the back wall.
func normalizeWall(w geom.Wall) geom.Wall {
	if w == geom.WallUnknown {
		return geom.WallBack
	}
	return w
}

// span is a unit's extent along a wall.
type span struct {
	lo, hi float64
	unit   model.Unit
}

// rowOn returns the units on wall that share u's level, in insertion order.
func rowOn(existing []model.Unit, u model.Unit, wall geom.Wall) []span {
	wa := geom.AxisOf(wall)
	row := lo.Filter(existing, func(o model.Unit, _ int) bool {
		return o.InstanceID != u.InstanceID &&
			u.Category().SameLevel(o.Category()) &&
			geom.WallOf(o.Rotation) == wall
	})
	return lo.Map(row, func(o model.Unit, _ int) span {
		start, end := wa.AlongWallSpan(geom.UnitBox(o, o.Pose()))
		return span{lo: start, hi: end, unit: o}
	})
}

// sortedByStart returns a copy of row ordered along the wall.
func sortedByStart(row []span) []span {
	out := append([]span(nil), row...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].lo < out[j].lo })
	return out
}

// poseAt puts u against wall with its footprint starting at alongStart and
// sets the elevation for its category.
func poseAt(u model.Unit, wall geom.Wall, alongStart float64, room model.Room) model.Pose {
	s := u.Size()
	p := geom.PoseOnWall(wall, alongStart, u.WallStandoff(), s.Width, s.Depth, room)
	p.Y = u.Category().DefaultElevation()
	return p
}

// fitsOnWall reports whether a unit of the given width starting at start
// ends before the wall does.
func fitsOnWall(start, width float64, wall geom.Wall, room model.Room) bool {
	_, end := geom.AxisOf(wall).WallRange(room)
	return start+width <= end+fitTolerance
}

// blockers returns the existing units whose footprint and vertical extent
// both overlap u at pose.
func blockers(u model.Unit, pose model.Pose, existing []model.Unit) []model.Unit {
	b := geom.UnitBox(u, pose)
	return lo.Filter(existing, func(o model.Unit, _ int) bool {
		if o.InstanceID == u.InstanceID {
			return false
		}
		return geom.UnitsShareHeight(u, pose, o, o.Pose()) && b.Overlaps(geom.UnitBox(o, o.Pose()))
	})
}

func isFree(u model.Unit, pose model.Pose, existing []model.Unit) bool {
	return len(blockers(u, pose, existing)) == 0
}

// ─── Linear ────────────────────────────────────────────────

// Linear appends after the outermost same-level unit on the wall, or starts
// at the wall's low corner.
type Linear struct{}

// Name implements Strategy.
func (Linear) Name() string { return "linear" }

// Place implements Strategy.
func (Linear) Place(u model.Unit, existing []model.Unit, room model.Room, wall geom.Wall) (model.Pose, bool) {
	wall = normalizeWall(wall)
	start, _ := geom.AxisOf(wall).WallRange(room)
	if row := rowOn(existing, u, wall); len(row) > 0 {
		start = lo.MaxBy(row, func(a, b span) bool { return a.hi > b.hi }).hi
	}
	if !fitsOnWall(start, u.Size().Width, wall, room) {
		return model.Pose{}, false
	}
	return poseAt(u, wall, start, room), true
}

// ─── Smart ─────────────────────────────────────────────────

// Smart starts in the corner, then fills gaps, then appends after the most
// recently added unit. It never returns a pose that overlaps an existing
// unit at the same height.
type Smart struct{}

// Name implements Strategy.
func (Smart) Name() string { return "smart" }

// Place implements Strategy.
func (s Smart) Place(u model.Unit, existing []model.Unit, room model.Room, wall geom.Wall) (model.Pose, bool) {
	wall = normalizeWall(wall)
	width := u.Size().Width
	row := rowOn(existing, u, wall)

	if len(row) == 0 {
		return s.cornerStart(u, existing, room, wall)
	}

	sorted := sortedByStart(row)
	for i := 0; i < len(sorted)-1; i++ {
		start, end := sorted[i].hi, sorted[i+1].lo
		if end-start < width-fitTolerance {
			continue
		}
		if p := poseAt(u, wall, start, room); isFree(u, p, existing) {
			return p, true
		}
	}

	last := row[len(row)-1]
	if !fitsOnWall(last.hi, width, wall, room) {
		return model.Pose{}, false
	}
	p := poseAt(u, wall, last.hi, room)
	if !isFree(u, p, existing) {
		return model.Pose{}, false
	}
	return p, true
}

// cornerStart places u at the low corner of wall, pushed along the wall past
// any unit that already occupies the corner at the same height.
func (Smart) cornerStart(u model.Unit, existing []model.Unit, room model.Room, wall geom.Wall) (model.Pose, bool) {
	wa := geom.AxisOf(wall)
	width := u.Size().Width
	start, _ := wa.WallRange(room)

	// Each push moves past one blocker, so len(existing)+1 rounds suffice.
	for i := 0; i <= len(existing); i++ {
		if !fitsOnWall(start, width, wall, room) {
			return model.Pose{}, false
		}
		p := poseAt(u, wall, start, room)
		hits := blockers(u, p, existing)
		if len(hits) == 0 {
			return p, true
		}
		for _, o := range hits {
			_, end := wa.AlongWallSpan(geom.UnitBox(o, o.Pose()))
			start = math.Max(start, end+cornerClearance)
		}
	}
	return model.Pose{}, false
}

// Alternatives lists the other poses Smart would consider on wall: before
// and after the row, and inside every gap wide enough for u with clearance
// on both sides. Overlapping poses are left out.
func (Smart) Alternatives(u model.Unit, existing []model.Unit, room model.Room, wall geom.Wall) []Candidate {
	wall = normalizeWall(wall)
	row := rowOn(existing, u, wall)
	if len(row) == 0 {
		return nil
	}
	width := u.Size().Width
	wallStart, _ := geom.AxisOf(wall).WallRange(room)
	sorted := sortedByStart(row)

	var out []Candidate
	add := func(start float64, kind string) {
		if start < wallStart-fitTolerance || !fitsOnWall(start, width, wall, room) {
			return
		}
		p := poseAt(u, wall, start, room)
		if !isFree(u, p, existing) {
			return
		}
		out = append(out, Candidate{Pose: p, Strategy: "smart", Kind: kind, Wall: wall})
	}

	add(sorted[0].lo-width-cornerClearance, KindRowStart)
	add(sorted[len(sorted)-1].hi+cornerClearance, KindRowEnd)
	for i := 0; i < len(sorted)-1; i++ {
		if sorted[i+1].lo-sorted[i].hi >= width+2*cornerClearance {
			add(sorted[i].hi+cornerClearance, KindGap)
		}
	}
	return out
}

// ─── Grid ──────────────────────────────────────────────────

// Grid ignores walls and puts the unit into the first free cell of a
// uniform grid laid over the room, row by row from the back-left corner.
type Grid struct {
	Spacing float64
}

// Name implements Strategy.
func (Grid) Name() string { return "grid" }

// Place implements Strategy. wall is ignored.
func (g Grid) Place(u model.Unit, existing []model.Unit, room model.Room, _ geom.Wall) (model.Pose, bool) {
	spacing := g.Spacing
	if spacing <= 0 {
		spacing = DefaultGridSpacing
	}
	s := u.Size()
	cw, cd := s.Width+spacing, s.Depth+spacing
	cols := int(math.Floor(room.Width / cw))
	rows := int(math.Floor(room.Depth / cd))

	level := lo.Filter(existing, func(o model.Unit, _ int) bool {
		return o.InstanceID != u.InstanceID && u.Category().SameLevel(o.Category())
	})
	boxes := lo.Map(level, func(o model.Unit, _ int) geom.Box { return geom.UnitBox(o, o.Pose()) })

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := -room.HalfWidth() + float64(col)*cw
			z := -room.HalfDepth() + float64(row)*cd
			cell := geom.Box{MinX: x, MaxX: x + cw, MinZ: z, MaxZ: z + cd}
			if lo.SomeBy(boxes, cell.Overlaps) {
				continue
			}
			return model.Pose{X: x, Y: u.Category().DefaultElevation(), Z: z}, true
		}
	}
	return model.Pose{}, false
}
