package importer

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/table"
)

type testOutline struct {
	layer string
	pts   [][]float64 // plan millimeters
}

func writeTestDXF(t *testing.T, outlines []testOutline, texts map[string][2]float64) string {
	t.Helper()
	d := dxf.NewDrawing()
	for _, layer := range []string{model.PlanLayerRoom, "BASE", "WALL", "TALL", model.PlanLayerLabels, "NOTES"} {
		if _, err := d.AddLayer(layer, color.White, table.LT_CONTINUOUS, false); err != nil {
			t.Fatalf("failed to add layer %s: %v", layer, err)
		}
	}
	for _, o := range outlines {
		if err := d.ChangeLayer(o.layer); err != nil {
			t.Fatalf("failed to change layer: %v", err)
		}
		if _, err := d.LwPolyline(true, o.pts...); err != nil {
			t.Fatalf("failed to add polyline: %v", err)
		}
	}
	if err := d.ChangeLayer(model.PlanLayerLabels); err != nil {
		t.Fatalf("failed to change layer: %v", err)
	}
	for text, at := range texts {
		if _, err := d.Text(text, at[0], at[1], 0, 50); err != nil {
			t.Fatalf("failed to add text: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "plan.dxf")
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("failed to save DXF: %v", err)
	}
	return path
}

func TestImportPlanDXF(t *testing.T) {
	path := writeTestDXF(t, []testOutline{
		{model.PlanLayerRoom, [][]float64{{-2000, 1500}, {2000, 1500}, {2000, -1500}, {-2000, -1500}}},
		// Base unit against the back wall: origin (-2, -1.5), width along +X.
		{"BASE", [][]float64{{-2000, 1500}, {-1400, 1500}, {-1400, 940}, {-2000, 940}}},
		// Tall unit against the left wall: width runs toward the back.
		{"TALL", [][]float64{{-2000, 0}, {-2000, 600}, {-1440, 600}, {-1440, 0}}},
		{"NOTES", [][]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}}},
	}, map[string][2]float64{"Sink": {-1700, 1200}})

	result := ImportFile(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if !result.HasRoom() {
		t.Fatal("expected the room outline to be imported")
	}
	if math.Abs(result.Room.Width-4) > 1e-9 || math.Abs(result.Room.Depth-3) > 1e-9 {
		t.Errorf("expected 4 x 3 room, got %+v", result.Room)
	}
	if len(result.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(result.Units))
	}
	if !result.Positioned {
		t.Error("expected plan units to be positioned")
	}

	base := result.Units[0]
	if base.Label != "Sink" || base.Type != model.CategoryBase {
		t.Errorf("expected base unit 'Sink', got %q %s", base.Label, base.Type)
	}
	if base.Width != 600 || base.Depth != 560 || base.Height != 0 {
		t.Errorf("unexpected dimensions %+v", base)
	}
	p := base.Pose()
	if math.Abs(p.X+2) > 1e-9 || math.Abs(p.Z+1.5) > 1e-9 || p.Rotation != 0 {
		t.Errorf("unexpected base pose %+v", p)
	}

	tall := result.Units[1]
	if tall.Type != model.CategoryTall || tall.Label != "Unit 2" {
		t.Errorf("expected unlabeled tall unit, got %q %s", tall.Label, tall.Type)
	}
	if tall.Width != 600 || tall.Depth != 560 {
		t.Errorf("unexpected tall dimensions %v x %v", tall.Width, tall.Depth)
	}
	if math.Abs(tall.Rotation-math.Pi/2) > 1e-9 {
		t.Errorf("expected rotation π/2, got %v", tall.Rotation)
	}

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Skipped 1 entities") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning for the NOTES outline, got %v", result.Warnings)
	}
}

func TestImportPlanDXF_ReversedWinding(t *testing.T) {
	path := writeTestDXF(t, []testOutline{
		{"WALL", [][]float64{{-2000, 1500}, {-2000, 1180}, {-1400, 1180}, {-1400, 1500}}},
	}, nil)

	result := ImportPlanDXF(path)

	if len(result.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d (errors: %v)", len(result.Units), result.Errors)
	}
	u := result.Units[0]
	if u.Width != 600 || u.Depth != 320 || u.Rotation != 0 {
		t.Errorf("expected edges swapped back to 600 x 320 at rotation 0, got %+v", u)
	}
	if u.Position[1] != model.WallUnitElevation {
		t.Errorf("expected wall elevation, got %v", u.Position[1])
	}
	if result.HasRoom() {
		t.Error("expected no room")
	}
}

func TestImportPlanDXF_Errors(t *testing.T) {
	if result := ImportPlanDXF("/nonexistent/plan.dxf"); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}

	path := writeTestDXF(t, []testOutline{
		{"NOTES", [][]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}}},
	}, nil)
	if result := ImportPlanDXF(path); len(result.Errors) == 0 {
		t.Error("expected error for a drawing without plan outlines")
	}
}
