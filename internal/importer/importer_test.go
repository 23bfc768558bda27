package importer

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Label,Type,Width,Height,Depth\nSink,base,600,720,560\n", ','},
		{"semicolon", "Label;Type;Width;Height;Depth\nSink;base;600;720;560\n", ';'},
		{"tab", "Label\tType\tWidth\tHeight\tDepth\nSink\tbase\t600\t720\t560\n", '\t'},
		{"pipe", "Label|Type|Width|Height|Depth\nSink|base|600|720|560\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
				t.Errorf("expected %q delimiter, got %q", tt.want, got)
			}
		})
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	row := []string{"Label", "Type", "Width", "Height", "Depth", "Quantity"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Label: 0, Type: 1, Width: 2, Height: 3, Depth: 4, Quantity: 5, X: -1, Y: -1, Z: -1, Rotation: -1}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AlternativeNamesAndOrder(t *testing.T) {
	row := []string{"QTY", "D", "H", "W", "Cabinet", "Category", "Elevation", "Rot"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Quantity != 0 || mapping.Depth != 1 || mapping.Height != 2 || mapping.Width != 3 {
		t.Errorf("unexpected dimension mapping: %+v", mapping)
	}
	if mapping.Label != 4 || mapping.Type != 5 {
		t.Errorf("expected Label at 4 and Type at 5, got %+v", mapping)
	}
	if mapping.Y != 6 || mapping.Rotation != 7 || mapping.X != -1 {
		t.Errorf("expected pose columns Y=6 Rotation=7, got %+v", mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	row := []string{"Sink", "base", "600", "720", "560", "1"}
	mapping, isHeader := DetectColumns(row)

	if isHeader {
		t.Error("expected no header detection for data row")
	}
	if mapping != positionalMapping {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "Label,Type,Width,Height,Depth,Quantity\nSink,base,800,720,560,1\nUpper,wall,600,720,320,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(result.Units))
	}

	sink := result.Units[0]
	if sink.Label != "Sink" || sink.Type != model.CategoryBase {
		t.Errorf("expected base unit 'Sink', got %q %s", sink.Label, sink.Type)
	}
	if sink.Width != 800 || sink.Height != 720 || sink.Depth != 560 {
		t.Errorf("unexpected dimensions %v x %v x %v", sink.Width, sink.Height, sink.Depth)
	}
	if sink.InstanceID == "" {
		t.Error("expected an instance id")
	}

	upper := result.Units[1]
	if upper.Type != model.CategoryWall {
		t.Errorf("expected wall unit, got %s", upper.Type)
	}
	if upper.Position[1] != model.WallUnitElevation {
		t.Errorf("expected wall unit at elevation %v, got %v", model.WallUnitElevation, upper.Position[1])
	}
	if result.Positioned {
		t.Error("expected a list without position columns to be unpositioned")
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	data := "Sink,base,600,720,560,1\nPantry,tall,600,2100,560,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Units) != 2 {
		t.Fatalf("expected 2 units, got %d (errors: %v)", len(result.Units), result.Errors)
	}
	if result.Units[1].Type != model.CategoryTall || result.Units[1].Height != 2100 {
		t.Errorf("expected tall unit of 2100mm, got %+v", result.Units[1])
	}
}

func TestImportCSVFromReader_UnrecognizedHeaderSkipped(t *testing.T) {
	data := "Naam,Soort,Breedte,Hoogte,Diepte\nSink,base,600,720,560\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d (errors: %v)", len(result.Units), result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning about the skipped header row")
	}
}

func TestImportCSVFromReader_QuantityExpands(t *testing.T) {
	data := "Label,Width,Height,Depth,Qty\nDrawer,400,720,560,3\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Units) != 3 {
		t.Fatalf("expected 3 units, got %d (errors: %v)", len(result.Units), result.Errors)
	}
	ids := map[model.UnitID]bool{}
	for i, u := range result.Units {
		want := "Drawer " + string(rune('1'+i))
		if u.Label != want {
			t.Errorf("expected label %q, got %q", want, u.Label)
		}
		ids[u.InstanceID] = true
	}
	if len(ids) != 3 {
		t.Errorf("expected distinct ids, got %v", ids)
	}
}

func TestImportCSVFromReader_Position(t *testing.T) {
	data := "Label,Type,Width,Height,Depth,X,Z,Rotation\nFridge,tall,600,2100,560,1.4,-1.5,90\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d (errors: %v)", len(result.Units), result.Errors)
	}
	p := result.Units[0].Pose()
	if p.X != 1.4 || p.Z != -1.5 || p.Y != 0 {
		t.Errorf("unexpected position %+v", p)
	}
	if math.Abs(p.Rotation-math.Pi/2) > 1e-9 {
		t.Errorf("expected rotation π/2, got %v", p.Rotation)
	}
	if !result.Positioned {
		t.Error("expected the result to be marked as positioned")
	}
}

func TestImportCSVFromReader_PositionWithQuantity(t *testing.T) {
	data := "Label,Width,Height,Depth,Qty,X\nDrawer,400,720,560,2,0.5\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Units) != 0 {
		t.Errorf("expected 0 units, got %d", len(result.Units))
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_UnknownType(t *testing.T) {
	data := "Label,Type,Width,Height,Depth\nShelf,floating,600,300,250\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(result.Units))
	}
	if result.Units[0].Type != model.CategoryBase {
		t.Errorf("expected fallback to base, got %s", result.Units[0].Type)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Unknown unit type") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unknown type warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_InvalidRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"invalid width", "Sink,abc,720,560,1"},
		{"missing depth", "Sink,600,720,,1"},
		{"negative height", "Sink,600,-720,560,1"},
		{"zero quantity", "Sink,600,720,560,0"},
		{"invalid quantity", "Sink,600,720,560,two"},
		{"quantity too large", "Sink,600,720,560,1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "Label,Width,Height,Depth,Quantity\n" + tt.row + "\n"
			result := ImportCSVFromReader(strings.NewReader(data), ',')
			if len(result.Errors) != 1 {
				t.Errorf("expected 1 error, got %v", result.Errors)
			}
			if len(result.Units) != 0 {
				t.Errorf("expected no units, got %d", len(result.Units))
			}
		})
	}
}

func TestImportCSVFromReader_MixedValidAndInvalid(t *testing.T) {
	data := "Label,Width,Height,Depth\nGood,600,720,560\nBad,x,720,560\n\nAlso good,400,720,560\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Units) != 2 {
		t.Errorf("expected 2 units, got %d", len(result.Units))
	}
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Line 3") {
		t.Errorf("expected one error on line 3, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyLabel(t *testing.T) {
	data := "Label,Width,Height,Depth\n,600,720,560\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(result.Units))
	}
	if result.Units[0].Label != "Unit 1" {
		t.Errorf("expected generated label 'Unit 1', got %q", result.Units[0].Label)
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	data := "Label,Width,Height\nSink,600,720\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Depth") {
		t.Errorf("expected missing Depth column error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyAndHeaderOnly(t *testing.T) {
	if result := ImportCSVFromReader(strings.NewReader(""), ','); len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
	result := ImportCSVFromReader(strings.NewReader("Label,Width,Height,Depth\n"), ',')
	if len(result.Units) != 0 || len(result.Errors) != 0 {
		t.Errorf("expected no units and no errors, got %d units, %v", len(result.Units), result.Errors)
	}
}

func TestImportCSVFromReader_WhitespaceAndDecimals(t *testing.T) {
	data := " Label , Width , Height , Depth \n Sink , 600.5 , 720 , 560.25 \n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d (errors: %v)", len(result.Units), result.Errors)
	}
	if result.Units[0].Width != 600.5 || result.Units[0].Depth != 560.25 {
		t.Errorf("unexpected dimensions %+v", result.Units[0])
	}
}

// ─── CSV File Import Tests ──────────────────────────────────

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.csv")
	content := "Label;Width;Height;Depth\nSink;600;720;560\nUpper;600;720;320\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportFile(path)

	if len(result.Units) != 2 {
		t.Errorf("expected 2 units, got %d (errors: %v)", len(result.Units), result.Errors)
	}
	hasSemicolonWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			hasSemicolonWarning = true
		}
	}
	if !hasSemicolonWarning {
		t.Error("expected warning about semicolon delimiter detection")
	}
}

func TestImportCSV_FileErrors(t *testing.T) {
	if result := ImportCSV("/nonexistent/path/file.csv"); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}

	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if result := ImportCSV(path); len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "units.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Name", "Category", "Width", "Height", "Depth", "Qty"},
		{"Sink", "base", 800, 720, 560, 1},
		{"Upper", "wall", 600, 720, 320, 2},
	})

	result := ImportFile(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(result.Units))
	}
	if result.Units[0].Label != "Sink" || result.Units[0].Width != 800 {
		t.Errorf("unexpected first unit %+v", result.Units[0])
	}
	if result.Units[2].Label != "Upper 2" || result.Units[2].Type != model.CategoryWall {
		t.Errorf("unexpected last unit %+v", result.Units[2])
	}
}

func TestImportExcel_WithoutHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Sink", "base", 600, 720, 560, 1},
		{"Pantry", "tall", 600, 2100, 560, 1},
	})

	result := ImportExcel(path)

	if len(result.Units) != 2 {
		t.Fatalf("expected 2 units, got %d (errors: %v)", len(result.Units), result.Errors)
	}
}

func TestImportExcel_Errors(t *testing.T) {
	if result := ImportExcel("/nonexistent/file.xlsx"); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}

	path := createTestExcel(t, [][]interface{}{
		{"Label", "Width", "Height", "Depth"},
		{"Sink", "abc", 720, 560},
	})
	if result := ImportExcel(path); len(result.Errors) == 0 {
		t.Error("expected error for invalid width")
	}
}
