package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/CabinetFit/internal/collision"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/piwi3910/CabinetFit/internal/project"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	tableRowH    = 6.0
)

// ExportPlanPDF renders the scene as a top view with the back wall at the
// top of the page, followed by a unit table and the validation issues.
func ExportPlanPDF(path string, scene project.Scene, report collision.LayoutReport) error {
	if err := scene.Room.Validate(); err != nil {
		return fmt.Errorf("cannot export plan: %w", err)
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderPlanPage(pdf, scene, report)

	pdf.AddPage()
	renderSummaryPage(pdf, scene, report)

	return pdf.OutputFileAndClose(path)
}

// planTransform maps room coordinates to page coordinates.
type planTransform struct {
	scale            float64 // mm on paper per meter
	offsetX, offsetY float64
	room             model.Room
}

func (t planTransform) point(x, z float64) (float64, float64) {
	return t.offsetX + (x+t.room.HalfWidth())*t.scale, t.offsetY + (z+t.room.HalfDepth())*t.scale
}

// renderPlanPage draws the room and its units on the current PDF page.
func renderPlanPage(pdf *fpdf.Fpdf, scene project.Scene, report collision.LayoutReport) {
	room := scene.Room

	// Title
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	name := scene.Name
	if name == "" {
		name = "Room"
	}
	title := fmt.Sprintf("%s (%.2f x %.2f x %.2f m)", name, room.Width, room.Depth, room.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	// Stats line
	counts := map[model.Category]int{}
	for _, u := range scene.Units {
		counts[u.Category()]++
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Units: %d | Base: %d | Wall: %d | Tall: %d | Issues: %d",
		len(scene.Units), counts[model.CategoryBase], counts[model.CategoryWall], counts[model.CategoryTall], len(report.Issues))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	scale := math.Min(drawWidth/room.Width, drawHeight/room.Depth)

	canvasW := room.Width * scale
	canvasH := room.Depth * scale
	tr := planTransform{
		scale:   scale,
		offsetX: marginLeft + (drawWidth-canvasW)/2,
		offsetY: drawAreaTop,
		room:    room,
	}

	// Floor
	pdf.SetFillColor(245, 240, 230)
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.8)
	pdf.Rect(tr.offsetX, tr.offsetY, canvasW, canvasH, "FD")

	// Floor units first so wall units are drawn over them.
	for _, wallMounted := range []bool{false, true} {
		for _, u := range scene.Units {
			if u.Category().IsWallMounted() != wallMounted {
				continue
			}
			drawUnit(pdf, tr, u, len(report.IssuesFor(u.InstanceID)) > 0)
		}
	}

	drawDimensionAnnotations(pdf, room, tr, canvasW, canvasH)
	drawLegend(pdf, tr.offsetY+canvasH+6)
}

// drawUnit draws one footprint. Wall units are translucent and dashed.
func drawUnit(pdf *fpdf.Fpdf, tr planTransform, u model.Unit, hasIssue bool) {
	corners := footprint(u)
	pts := make([]fpdf.PointType, len(corners))
	for i, c := range corners {
		x, y := tr.point(c[0], c[1])
		pts[i] = fpdf.PointType{X: x, Y: y}
	}

	col := colorFor(u.Category())
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.3)
	if hasIssue {
		pdf.SetDrawColor(issueColor.R, issueColor.G, issueColor.B)
		pdf.SetLineWidth(0.8)
	}
	if u.Category().IsWallMounted() {
		pdf.SetAlpha(0.5, "Normal")
		pdf.SetDashPattern([]float64{1.5, 1}, 0)
	}
	pdf.Polygon(pts, "FD")
	pdf.SetAlpha(1, "Normal")
	pdf.SetDashPattern([]float64{}, 0)

	// Label centered in the footprint, only if it fits
	minX, maxX, minY, maxY := pts[0].X, pts[0].X, pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	w, h := maxX-minX, maxY-minY
	if w < 10 || h < 5 {
		return
	}
	pdf.SetFont("Helvetica", "", labelFontSize(w, h))
	pdf.SetTextColor(0, 0, 0)
	label := u.DisplayName()
	if lw := pdf.GetStringWidth(label); lw < w-2 {
		pdf.SetXY(minX+(w-lw)/2, minY+h/2-2)
		pdf.CellFormat(lw, 4, label, "", 0, "C", false, 0, "")
	}
}

// drawDimensionAnnotations adds width and depth labels outside the room.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, room model.Room, tr planTransform, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.0f mm", room.Width*1000)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(tr.offsetX+(canvasW-wLabelW)/2, tr.offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	depthLabel := fmt.Sprintf("%.0f mm", room.Depth*1000)
	pdf.TransformBegin()
	pdf.TransformRotate(90, tr.offsetX-3, tr.offsetY+canvasH/2)
	dLabelW := pdf.GetStringWidth(depthLabel)
	pdf.SetXY(tr.offsetX-3-dLabelW/2, tr.offsetY+canvasH/2-2)
	pdf.CellFormat(dLabelW, 4, depthLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	// Back wall marker
	pdf.SetFont("Helvetica", "I", 7)
	pdf.SetXY(tr.offsetX, tr.offsetY-4)
	pdf.CellFormat(canvasW, 4, "back wall", "", 0, "C", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
}

// drawLegend renders the category color key below the plan.
func drawLegend(pdf *fpdf.Fpdf, y float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	x := marginLeft
	for _, c := range []model.Category{model.CategoryBase, model.CategoryWall, model.CategoryTall} {
		col := colorFor(c)
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(x, y+0.5, 3, 3, "F")
		pdf.SetXY(x+4, y)
		pdf.CellFormat(20, 4, c.String(), "", 0, "L", false, 0, "")
		x += 26
	}
	pdf.SetDrawColor(issueColor.R, issueColor.G, issueColor.B)
	pdf.SetLineWidth(0.8)
	pdf.Rect(x, y+0.5, 3, 3, "D")
	pdf.SetXY(x+4, y)
	pdf.CellFormat(30, 4, "has issues", "", 0, "L", false, 0, "")
}

// renderSummaryPage draws the unit table and the validation issues.
func renderSummaryPage(pdf *fpdf.Fpdf, scene project.Scene, report collision.LayoutReport) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Layout Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	colWidths := []float64{45, 18, 50, 22, 22, 22, 20, 18, 50}
	headers := []string{"Unit", "Type", "Size", "X (m)", "Y (m)", "Z (m)", "Rot", "Wall", "Status"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], tableRowH, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += tableRowH

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range UnitRows(scene, report) {
		if y > pageHeight-marginBottom-tableRowH {
			pdf.AddPage()
			y = marginTop
		}
		cells := []string{
			row.Label,
			row.Type.String(),
			sizeLabel(row.Width, row.Height, row.Depth),
			fmt.Sprintf("%.3f", row.X),
			fmt.Sprintf("%.3f", row.Y),
			fmt.Sprintf("%.3f", row.Z),
			fmt.Sprintf("%.0f\xb0", row.Rotation),
			row.Wall.String(),
			row.Status,
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range cells {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], tableRowH, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += tableRowH
	}

	if !report.Valid {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "Issues", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, line := range collision.FormatIssues(report) {
			if y > pageHeight-marginBottom-5 {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(250, 5, "- "+line, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by CabinetFit", "", 0, "C", false, 0, "")
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
