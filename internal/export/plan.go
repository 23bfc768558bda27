// Package export writes scenes to files for people and other tools: plan
// drawings as PDF and DXF, layout reports as Excel workbooks, and QR-coded
// unit labels.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/CabinetFit/internal/collision"
	"github.com/piwi3910/CabinetFit/internal/geom"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/piwi3910/CabinetFit/internal/project"
	"github.com/samber/lo"
)

// unitColor represents an RGB color for a drawn unit.
type unitColor struct {
	R, G, B int
}

// categoryColors gives every category its own fill.
var categoryColors = map[model.Category]unitColor{
	model.CategoryBase: {R: 33, G: 150, B: 243}, // blue
	model.CategoryWall: {R: 76, G: 175, B: 80},  // green
	model.CategoryTall: {R: 255, G: 152, B: 0},  // orange
}

// issueColor outlines units that failed validation.
var issueColor = unitColor{R: 244, G: 67, B: 54}

func colorFor(c model.Category) unitColor {
	return categoryColors[c.Normalized()]
}

// UnitRow is the tabular view of one placed unit shared by the report
// writers.
type UnitRow struct {
	ID       model.UnitID
	Label    string
	Type     model.Category
	Width    float64 // mm
	Height   float64 // mm
	Depth    float64 // mm
	X, Y, Z  float64 // m
	Rotation float64 // degrees
	Wall     geom.Wall
	Status   string
}

// UnitRows lists the scene's units in scene order. Status is "ok" or the
// reasons reported for the unit, comma separated.
func UnitRows(scene project.Scene, report collision.LayoutReport) []UnitRow {
	rows := make([]UnitRow, 0, len(scene.Units))
	for _, u := range scene.Units {
		s := u.Size()
		p := u.Pose()
		row := UnitRow{
			ID:       u.InstanceID,
			Label:    u.DisplayName(),
			Type:     u.Category(),
			Width:    s.Width * 1000,
			Height:   s.Height * 1000,
			Depth:    s.Depth * 1000,
			X:        p.X,
			Y:        p.Y,
			Z:        p.Z,
			Rotation: geom.NormalizeRotation(p.Rotation) * 180 / math.Pi,
			Wall:     geom.WallOf(p.Rotation),
			Status:   "ok",
		}
		if issues := report.IssuesFor(u.InstanceID); len(issues) > 0 {
			reasons := lo.Map(issues, func(is collision.Issue, _ int) string { return string(is.Reason) })
			row.Status = strings.Join(reasons, ", ")
		}
		rows = append(rows, row)
	}
	return rows
}

// sizeLabel formats a unit's dimensions.
func sizeLabel(w, h, d float64) string {
	return fmt.Sprintf("%.0f x %.0f x %.0f mm", w, h, d)
}

// footprint returns the corners of u's footprint in room space.
func footprint(u model.Unit) [4][2]float64 {
	s := u.Size()
	p := u.Pose()
	return geom.Corners(p.X, p.Z, s.Width, s.Depth, p.Rotation)
}
