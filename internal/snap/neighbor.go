package snap

import (
	"math"
	"sort"

	"github.com/piwi3910/CabinetFit/internal/geom"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/samber/lo"
)

// Neighbor snapper tuning.
const (
	DefaultAlignThreshold   = 0.8  // m, max into-room misalignment
	DefaultPerfectThreshold = 0.05 // m, snaps closer than this end the chain
	DefaultGapBonus         = 0.25 // score bonus for filling a gap

	sameRowRotation = 0.2 // rad
	gapFitTolerance = geom.OverlapEpsilon
)

// Edge names reported by the neighbor snapper.
const (
	EdgeAfter    = "after"     // flush after a neighbor along the wall
	EdgeBefore   = "before"    // flush before a neighbor along the wall
	EdgeGapStart = "gap_start" // at the low end of a gap
	EdgeGapEnd   = "gap_end"   // at the high end of a gap
)

// NeighborSnapper aligns a unit edge-to-edge with units on the same wall and
// level, and drops it into gaps that fit it.
type NeighborSnapper struct {
	Threshold        float64
	AlignThreshold   float64
	PerfectThreshold float64
	GapBonus         float64
}

// NewNeighborSnapper creates a neighbor snapper with the default tuning and
// the given edge threshold. A non-positive threshold takes the cabinet
// threshold of the default snap settings.
func NewNeighborSnapper(threshold float64) *NeighborSnapper {
	if threshold <= 0 {
		threshold = model.DefaultSnapSettings().CabinetThreshold
	}
	return &NeighborSnapper{
		Threshold:        threshold,
		AlignThreshold:   DefaultAlignThreshold,
		PerfectThreshold: DefaultPerfectThreshold,
		GapBonus:         DefaultGapBonus,
	}
}

// Kind implements Snapper.
func (n *NeighborSnapper) Kind() Kind { return KindCabinet }

// search holds the per-call limits, widened after a rotation change.
type search struct {
	threshold float64
	align     float64
	radius    float64
}

func (n *NeighborSnapper) limits(u model.Unit, ctx Context) search {
	if ctx.RotationJustChanged {
		big := math.Max(ctx.Room.Width, ctx.Room.Depth)
		return search{threshold: big, align: 1.0, radius: big}
	}
	s := u.Size()
	return search{
		threshold: n.Threshold,
		align:     n.AlignThreshold,
		radius:    n.Threshold + math.Max(s.Width, s.Depth)*2,
	}
}

// neighbor is a candidate with its footprint.
type neighbor struct {
	unit model.Unit
	box  geom.Box
}

// candidates returns indexed units on the same level and facing the same way
// as the moving unit.
func (n *NeighborSnapper) candidates(pose model.Pose, u model.Unit, b geom.Box, radius float64, ctx Context) []neighbor {
	if ctx.Index == nil {
		return nil
	}
	near := ctx.Index.Nearby(b.CenterX(), b.CenterZ(), radius)
	near = lo.Filter(near, func(o model.Unit, _ int) bool {
		if o.InstanceID == ctx.ExcludeID || (u.InstanceID != "" && o.InstanceID == u.InstanceID) {
			return false
		}
		return u.Category().SameLevel(o.Category()) && geom.SameRotation(pose.Rotation, o.Rotation, sameRowRotation)
	})
	return lo.Map(near, func(o model.Unit, _ int) neighbor {
		return neighbor{unit: o, box: geom.UnitBox(o, o.Pose())}
	})
}

// Snap implements Snapper.
func (n *NeighborSnapper) Snap(pose model.Pose, u model.Unit, ctx Context) Result {
	b := geom.UnitBox(u, pose)
	lim := n.limits(u, ctx)
	cands := n.candidates(pose, u, b, lim.radius, ctx)
	if len(cands) == 0 {
		return Result{Pose: pose}
	}

	wa := geom.AxisFor(pose.Rotation)
	myLo, myHi := wa.AlongWallSpan(b)

	best := Result{Pose: pose}
	bestScore := math.Inf(1)
	consider := func(shift, dist, score float64, target model.UnitID, edge string) {
		if score < bestScore {
			bestScore = score
			best = Result{
				Pose:     geom.Shift(pose, wa.Along, shift),
				Applied:  true,
				Distance: dist,
				Target:   target,
				Edge:     edge,
			}
		}
	}

	for _, c := range cands {
		alignDist := math.Abs(b.Center(wa.Into) - c.box.Center(wa.Into))
		if alignDist > lim.align {
			continue
		}
		oLo, oHi := wa.AlongWallSpan(c.box)
		if d := math.Abs(myLo - oHi); d < lim.threshold {
			consider(oHi-myLo, d, d+alignDist*0.5, c.unit.InstanceID, EdgeAfter)
		}
		if d := math.Abs(myHi - oLo); d < lim.threshold {
			consider(oLo-myHi, d, d+alignDist*0.5, c.unit.InstanceID, EdgeBefore)
		}
	}

	for _, g := range findGaps(cands, wa, ctx.Room, myHi-myLo) {
		if myHi <= g.start-lim.threshold || myLo >= g.end+lim.threshold {
			continue
		}
		dStart := math.Abs(myLo - g.start)
		dEnd := math.Abs(myHi - g.end)
		if dStart <= dEnd {
			consider(g.start-myLo, dStart, dStart-n.GapBonus, "", EdgeGapStart)
		} else {
			consider(g.end-myHi, dEnd, dEnd-n.GapBonus, "", EdgeGapEnd)
		}
	}

	if best.Applied && best.Distance < n.PerfectThreshold {
		best.Strong = true
	}
	return best
}

// gap is a free along-wall interval.
type gap struct {
	start, end float64
}

// findGaps returns the free intervals between consecutive neighbors and
// between the outermost neighbors and the room walls that are at least
// extent long.
func findGaps(cands []neighbor, wa geom.WallAxis, room model.Room, extent float64) []gap {
	if len(cands) == 0 {
		return nil
	}
	type span struct {
		lo, hi float64
		id     model.UnitID
	}
	spans := make([]span, len(cands))
	for i, c := range cands {
		start, end := wa.AlongWallSpan(c.box)
		spans[i] = span{lo: start, hi: end, id: c.unit.InstanceID}
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].lo != spans[j].lo {
			return spans[i].lo < spans[j].lo
		}
		return spans[i].id < spans[j].id
	})

	wallLo, wallHi := wa.WallRange(room)
	bounds := make([]gap, 0, len(spans)+1)
	bounds = append(bounds, gap{start: wallLo, end: spans[0].lo})
	for i := 0; i < len(spans)-1; i++ {
		bounds = append(bounds, gap{start: spans[i].hi, end: spans[i+1].lo})
	}
	bounds = append(bounds, gap{start: spans[len(spans)-1].hi, end: wallHi})

	return lo.Filter(bounds, func(g gap, _ int) bool {
		return g.end-g.start >= extent-gapFitTolerance
	})
}

// SnapPoints implements Snapper. It returns the along-wall edges of every
// candidate neighbor, projected onto the moving unit's into-room line.
func (n *NeighborSnapper) SnapPoints(pose model.Pose, u model.Unit, ctx Context) []Point {
	b := geom.UnitBox(u, pose)
	lim := n.limits(u, ctx)
	wa := geom.AxisFor(pose.Rotation)
	into := b.Center(wa.Into)

	var pts []Point
	for _, c := range n.candidates(pose, u, b, lim.radius, ctx) {
		start, end := wa.AlongWallSpan(c.box)
		label := c.unit.DisplayName()
		for _, along := range []float64{start, end} {
			p := Point{Kind: KindCabinet, Label: label}
			if wa.Along == geom.AxisX {
				p.X, p.Z = along, into
			} else {
				p.X, p.Z = into, along
			}
			pts = append(pts, p)
		}
	}
	return pts
}

// IsAligned reports whether two posed units face the same way and sit on
// the same into-room line within tol.
func IsAligned(a model.Unit, pa model.Pose, b model.Unit, pb model.Pose, tol float64) bool {
	if !geom.SameRotation(pa.Rotation, pb.Rotation, sameRowRotation) {
		return false
	}
	wa := geom.AxisFor(pa.Rotation)
	return math.Abs(geom.UnitBox(a, pa).Center(wa.Into)-geom.UnitBox(b, pb).Center(wa.Into)) <= tol
}
