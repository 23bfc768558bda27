package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/CabinetFit/internal/collision"
	"github.com/piwi3910/CabinetFit/internal/project"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each unit label's QR code.
type LabelInfo struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Type     string  `json:"type"`
	Width    float64 `json:"width_mm"`
	Height   float64 `json:"height_mm"`
	Depth    float64 `json:"depth_mm"`
	Wall     string  `json:"wall"`
	X        float64 `json:"x_m"`
	Y        float64 `json:"y_m"`
	Z        float64 `json:"z_m"`
	Rotation float64 `json:"rotation_deg"`
	Status   string  `json:"status"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// CollectLabelInfos lists one label per unit in scene order.
func CollectLabelInfos(scene project.Scene, report collision.LayoutReport) []LabelInfo {
	rows := UnitRows(scene, report)
	labels := make([]LabelInfo, len(rows))
	for i, r := range rows {
		labels[i] = LabelInfo{
			ID:       string(r.ID),
			Label:    r.Label,
			Type:     r.Type.String(),
			Width:    r.Width,
			Height:   r.Height,
			Depth:    r.Depth,
			Wall:     r.Wall.String(),
			X:        r.X,
			Y:        r.Y,
			Z:        r.Z,
			Rotation: r.Rotation,
			Status:   r.Status,
		}
	}
	return labels
}

// ExportLabels generates a PDF of QR-coded labels, one per unit in the
// scene. Each label shows the unit name, size and position next to a QR
// code encoding the same data as JSON. Labels are laid out on a standard
// label sheet (Avery 5160 / 3 columns x 10 rows on US Letter).
func ExportLabels(path string, scene project.Scene, report collision.LayoutReport) error {
	labels := CollectLabelInfos(scene, report)
	if len(labels) == 0 {
		return fmt.Errorf("no units to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, i, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Label, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, index int, info LabelInfo) error {
	// Cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	// Image names must be unique per document.
	imgName := fmt.Sprintf("qr_%d", index)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	// Unit name
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	name := info.Label
	if pdf.GetStringWidth(name) > textW {
		for len(name) > 0 && pdf.GetStringWidth(name+"...") > textW {
			name = name[:len(name)-1]
		}
		name += "..."
	}
	pdf.CellFormat(textW, 4.5, name, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, sizeLabel(info.Width, info.Height, info.Depth), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	where := fmt.Sprintf("%s, %s wall @ (%.2f, %.2f)", info.Type, info.Wall, info.X, info.Z)
	pdf.CellFormat(textW, 3, where, "", 1, "L", false, 0, "")

	if info.Status != "ok" {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(textW, 3, info.Status, "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)

	return nil
}
