// Package importer reads unit lists from CSV and Excel files and floor plans
// from DXF drawings. It supports automatic delimiter detection, flexible
// column mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/xuri/excelize/v2"
)

// maxQuantity bounds how many copies a single row may expand into.
const maxQuantity = 100

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Units    []model.Unit
	Errors   []string
	Warnings []string

	// Room is set by plan imports that carry the room outline. It is the
	// zero Room otherwise.
	Room model.Room

	// Positioned is set when the units carry their own poses, from a plan
	// or from position columns.
	Positioned bool
}

// HasRoom reports whether the import defined a room.
func (r ImportResult) HasRoom() bool {
	return r.Room.Validate() == nil
}

// ColumnMapping maps semantic column roles to their indices in the data.
// -1 means the column is absent.
type ColumnMapping struct {
	Label    int
	Type     int
	Width    int
	Height   int
	Depth    int
	Quantity int
	X        int
	Y        int
	Z        int
	Rotation int
}

// field returns the index slot for a role.
func (m *ColumnMapping) field(role string) *int {
	switch role {
	case "label":
		return &m.Label
	case "type":
		return &m.Type
	case "width":
		return &m.Width
	case "height":
		return &m.Height
	case "depth":
		return &m.Depth
	case "quantity":
		return &m.Quantity
	case "x":
		return &m.X
	case "y":
		return &m.Y
	case "z":
		return &m.Z
	case "rotation":
		return &m.Rotation
	}
	return nil
}

// hasPosition reports whether any pose column is mapped.
func (m ColumnMapping) hasPosition() bool {
	return m.X >= 0 || m.Y >= 0 || m.Z >= 0 || m.Rotation >= 0
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":    {"label", "name", "unit", "unit name", "description", "desc", "cabinet", "item"},
	"type":     {"type", "category", "kind", "class"},
	"width":    {"width", "w", "length", "len"},
	"height":   {"height", "h"},
	"depth":    {"depth", "d"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs"},
	"x":        {"x", "pos x", "position x"},
	"y":        {"y", "elevation", "pos y", "position y"},
	"z":        {"z", "pos z", "position z"},
	"rotation": {"rotation", "rot", "angle"},
}

// positionalMapping is used when the first row is not a header:
// Label, Type, Width, Height, Depth, Quantity.
var positionalMapping = ColumnMapping{
	Label: 0, Type: 1, Width: 2, Height: 3, Depth: 4, Quantity: 5,
	X: -1, Y: -1, Z: -1, Rotation: -1,
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		records, err := newCSVReader(bytes.NewReader(data), delim).ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Only delimiters that split the first row count.
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Consistency first, then more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

func newCSVReader(r io.Reader, delimiter rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or the positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Label: -1, Type: -1, Width: -1, Height: -1, Depth: -1, Quantity: -1,
		X: -1, Y: -1, Z: -1, Rotation: -1,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if idx := mapping.field(role); *idx == -1 {
					*idx = i
				}
			}
		}
	}

	if !isHeader {
		return positionalMapping, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseDimension reads a required positive millimeter value.
func parseDimension(row []string, idx int, name, rowLabel string) (float64, string) {
	s := getCell(row, idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, s)
	}
	if v <= 0 {
		return 0, fmt.Sprintf("%s: %s must be positive", rowLabel, strings.ToUpper(name[:1])+name[1:])
	}
	return v, ""
}

// parseOptional reads an optional float; empty cells yield def.
func parseOptional(row []string, idx int, def float64) (float64, error) {
	s := getCell(row, idx)
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseRow extracts the units described by one row using the given column
// mapping. A quantity above one yields numbered copies with their own ids.
// Returns the units, any error message, and any warning messages.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, unitCount int) ([]model.Unit, string, []string) {
	var warnings []string

	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Unit %d", unitCount+1)
	}

	category := model.CategoryBase
	if typeStr := getCell(row, mapping.Type); typeStr != "" {
		c, err := model.ParseCategory(strings.ToLower(typeStr))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown unit type '%s', defaulting to base", rowLabel, typeStr))
		} else {
			category = c
		}
	}

	width, msg := parseDimension(row, mapping.Width, "width", rowLabel)
	if msg != "" {
		return nil, msg, nil
	}
	height, msg := parseDimension(row, mapping.Height, "height", rowLabel)
	if msg != "" {
		return nil, msg, nil
	}
	depth, msg := parseDimension(row, mapping.Depth, "depth", rowLabel)
	if msg != "" {
		return nil, msg, nil
	}

	qty := 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		q, err := strconv.Atoi(qtyStr)
		if err != nil {
			return nil, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), nil
		}
		if q <= 0 || q > maxQuantity {
			return nil, fmt.Sprintf("%s: Quantity must be between 1 and %d", rowLabel, maxQuantity), nil
		}
		qty = q
	}

	pose := model.Pose{Y: category.DefaultElevation()}
	if mapping.hasPosition() {
		var err error
		if pose.X, err = parseOptional(row, mapping.X, 0); err != nil {
			return nil, fmt.Sprintf("%s: Invalid x '%s'", rowLabel, getCell(row, mapping.X)), nil
		}
		if pose.Y, err = parseOptional(row, mapping.Y, pose.Y); err != nil {
			return nil, fmt.Sprintf("%s: Invalid y '%s'", rowLabel, getCell(row, mapping.Y)), nil
		}
		if pose.Z, err = parseOptional(row, mapping.Z, 0); err != nil {
			return nil, fmt.Sprintf("%s: Invalid z '%s'", rowLabel, getCell(row, mapping.Z)), nil
		}
		deg, err := parseOptional(row, mapping.Rotation, 0)
		if err != nil {
			return nil, fmt.Sprintf("%s: Invalid rotation '%s'", rowLabel, getCell(row, mapping.Rotation)), nil
		}
		pose.Rotation = deg * math.Pi / 180
		if qty > 1 {
			return nil, fmt.Sprintf("%s: A position cannot be combined with a quantity above 1", rowLabel), nil
		}
	}

	units := make([]model.Unit, 0, qty)
	for i := 1; i <= qty; i++ {
		name := label
		if qty > 1 {
			name = fmt.Sprintf("%s %d", label, i)
		}
		units = append(units, model.NewUnit(name, category, width, height, depth).WithPose(pose))
	}
	return units, "", warnings
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportFile imports units from path, choosing the reader by extension:
// .xlsx and .xlsm are read as Excel, .dxf as a floor plan, anything else as CSV.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	case ".dxf":
		return ImportPlanDXF(path)
	default:
		return ImportCSV(path)
	}
}

// ImportCSV imports units from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := newCSVReader(bytes.NewReader(data), delimiter).ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports units from a CSV reader with a specific delimiter.
// This is useful for testing or when the delimiter is already known.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	records, err := newCSVReader(reader, delimiter).ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports units from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into units.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	result.Positioned = mapping.hasPosition()
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if mapping.Depth == -1 {
			missing = append(missing, "Depth")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) > mapping.Width {
		// A non-numeric width in the first row is an unrecognized header.
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][mapping.Width]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		units, errMsg, warnings := parseRow(row, mapping, rowLabel, len(result.Units))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)
		result.Units = append(result.Units, units...)
	}

	return result
}
