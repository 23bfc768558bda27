package importer

import (
	"fmt"
	"math"

	"github.com/piwi3910/CabinetFit/internal/geom"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// closeTolerance is the distance in millimeters below which two outline
// points are treated as the same point.
const closeTolerance = 0.01

// point is a plan position in room space (meters).
type point struct {
	x, z float64
}

func (p point) sub(o point) point { return point{p.x - o.x, p.z - o.z} }

func (p point) length() float64 { return math.Hypot(p.x, p.z) }

// planLabel is a TEXT entity from the labels layer.
type planLabel struct {
	at    point
	value string
}

// ImportPlanDXF imports units from a floor plan drawing. Each closed
// four-corner LWPOLYLINE on a BASE, WALL or TALL layer becomes a unit; the
// first vertex is the unit origin and the first edge runs along its width.
// A rectangle on the ROOM layer sets the room, and TEXT on the LABELS layer
// names the unit it lies in. Plans carry no heights, so units get their
// category's default height and elevation.
func ImportPlanDXF(path string) ImportResult {
	result := ImportResult{Positioned: true}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var labels []planLabel
	skipped := 0
	for _, ent := range entities {
		layer := ""
		if l := ent.Layer(); l != nil {
			layer = l.Name()
		}

		switch e := ent.(type) {
		case *entity.LwPolyline:
			pts := lwPolylinePoints(e)
			if layer == model.PlanLayerRoom {
				result.Room, result.Warnings = roomFromOutline(pts, result.Warnings)
				continue
			}
			category, ok := model.CategoryForLayer(layer)
			if !ok {
				skipped++
				continue
			}
			if len(pts) != 4 {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Skipped %s outline with %d corners", layer, len(pts)))
				continue
			}
			u, warning := unitFromOutline(pts, category, len(result.Units))
			if warning != "" {
				result.Warnings = append(result.Warnings, warning)
			}
			if u.InstanceID != "" {
				result.Units = append(result.Units, u)
			}

		case *entity.Text:
			if layer == model.PlanLayerLabels && len(e.Coord1) >= 2 {
				x, z := model.FromPlan(e.Coord1[0], e.Coord1[1])
				labels = append(labels, planLabel{at: point{x, z}, value: e.Value})
			}

		default:
			skipped++
		}
	}

	if len(result.Units) == 0 && !result.HasRoom() {
		result.Errors = append(result.Errors, "No room or unit outlines found in DXF file")
		return result
	}
	if skipped > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d entities outside the plan layers", skipped))
	}
	if len(result.Units) > 0 {
		result.Warnings = append(result.Warnings, "Plan drawings carry no heights, default unit heights applied")
	}

	applyLabels(result.Units, labels)
	return result
}

// lwPolylinePoints returns the polyline vertices in room space without a
// repeated closing point.
func lwPolylinePoints(lw *entity.LwPolyline) []point {
	pts := make([]point, 0, len(lw.Vertices))
	for _, v := range lw.Vertices {
		if len(v) < 2 {
			continue
		}
		x, z := model.FromPlan(v[0], v[1])
		pts = append(pts, point{x, z})
	}
	if n := len(pts); n > 1 && pts[0].sub(pts[n-1]).length()*1000 <= closeTolerance {
		pts = pts[:n-1]
	}
	return pts
}

// roomFromOutline sizes the room from the outline's extent. The plan does
// not say how high the room is, so the default height is used.
func roomFromOutline(pts []point, warnings []string) (model.Room, []string) {
	if len(pts) < 3 {
		return model.Room{}, append(warnings, "Skipped room outline with fewer than 3 vertices")
	}
	minX, maxX, minZ, maxZ := pts[0].x, pts[0].x, pts[0].z, pts[0].z
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		minZ, maxZ = math.Min(minZ, p.z), math.Max(maxZ, p.z)
	}
	room := model.Room{
		Width:  maxX - minX,
		Depth:  maxZ - minZ,
		Height: model.DefaultAppConfig().DefaultRoom.Height,
	}
	if math.Abs(minX+maxX) > geom.BoundaryTolerance || math.Abs(minZ+maxZ) > geom.BoundaryTolerance {
		warnings = append(warnings, "Room outline is not centered on the origin")
	}
	return room, warnings
}

// unitFromOutline rebuilds a unit from its four footprint corners. Outlines
// drawn in the opposite winding are read with the edges swapped.
func unitFromOutline(pts []point, category model.Category, unitCount int) (model.Unit, string) {
	var warning string

	origin := pts[0]
	wv, dv := pts[1].sub(origin), pts[3].sub(origin)
	// In room space the depth edge turns positively from the width edge.
	if wv.x*dv.z-wv.z*dv.x < 0 {
		wv, dv = dv, wv
		warning = fmt.Sprintf("Unit %d: outline drawn in reverse, edges swapped", unitCount+1)
	}

	width, depth := wv.length(), dv.length()
	if width*1000 < 1 || depth*1000 < 1 {
		return model.Unit{}, fmt.Sprintf("Skipped degenerate %s outline (%.2f x %.2f mm)", category, width*1000, depth*1000)
	}

	rotation := math.Atan2(-wv.z, wv.x)
	if w := geom.WallOf(rotation); w != geom.WallUnknown {
		rotation = w.Rotation()
	}

	u := model.NewUnit(fmt.Sprintf("Unit %d", unitCount+1), category, roundMM(width), 0, roundMM(depth))
	u = u.WithPose(model.Pose{X: origin.x, Y: category.DefaultElevation(), Z: origin.z, Rotation: rotation})
	return u, warning
}

// roundMM converts meters to millimeters rounded to a tenth.
func roundMM(m float64) float64 {
	return math.Round(m*10000) / 10
}

// applyLabels names each unit after the unused label inside its footprint
// nearest to the footprint center. Stacked units each take their own label.
func applyLabels(units []model.Unit, labels []planLabel) {
	used := make([]bool, len(labels))
	for i := range units {
		b := geom.UnitBox(units[i], units[i].Pose())
		center := point{b.CenterX(), b.CenterZ()}
		best, bestDist := -1, math.Inf(1)
		for j, l := range labels {
			if used[j] || l.at.x < b.MinX || l.at.x > b.MaxX || l.at.z < b.MinZ || l.at.z > b.MaxZ {
				continue
			}
			if d := l.at.sub(center).length(); d < bestDist {
				best, bestDist = j, d
			}
		}
		if best >= 0 {
			used[best] = true
			units[i].Label = labels[best].value
		}
	}
}
