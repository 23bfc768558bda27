package export

import (
	"fmt"
	"strings"

	"github.com/piwi3910/CabinetFit/internal/collision"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/piwi3910/CabinetFit/internal/project"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the layout report workbook.
const (
	UnitsSheet  = "Units"
	IssuesSheet = "Issues"
)

var unitHeaders = []interface{}{
	"ID", "Label", "Type", "Width (mm)", "Height (mm)", "Depth (mm)",
	"X (m)", "Y (m)", "Z (m)", "Rotation (deg)", "Wall", "Status",
}

var issueHeaders = []interface{}{"Unit ID", "Label", "Reason", "Message", "Collides With"}

// WriteLayoutReport writes the scene's units and the validation issues to an
// Excel workbook with a Units and an Issues sheet.
func WriteLayoutReport(path string, scene project.Scene, report collision.LayoutReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), UnitsSheet); err != nil {
		return fmt.Errorf("failed to name units sheet: %w", err)
	}
	if _, err := f.NewSheet(IssuesSheet); err != nil {
		return fmt.Errorf("failed to add issues sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	units := [][]interface{}{unitHeaders}
	for _, r := range UnitRows(scene, report) {
		units = append(units, []interface{}{
			string(r.ID), r.Label, r.Type.String(), r.Width, r.Height, r.Depth,
			r.X, r.Y, r.Z, r.Rotation, r.Wall.String(), r.Status,
		})
	}
	if err := writeRows(f, UnitsSheet, units, header); err != nil {
		return err
	}

	issues := [][]interface{}{issueHeaders}
	for _, is := range report.Issues {
		with := strings.Join(lo.Map(is.With, func(id model.UnitID, _ int) string { return string(id) }), ", ")
		issues = append(issues, []interface{}{string(is.UnitID), is.Label, string(is.Reason), is.Message, with})
	}
	if err := writeRows(f, IssuesSheet, issues, header); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// writeRows writes rows from A1 down and styles the first one as a header.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "A", last, 16)
}
