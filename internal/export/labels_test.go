package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/CabinetFit/internal/collision"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/piwi3910/CabinetFit/internal/project"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	s := buildTestScene()
	if err := ExportLabels(path, s, buildTestReport(t, s)); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportLabels_NoUnits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	s := project.NewScene("", model.Room{Width: 4, Depth: 3, Height: 2.5})
	if err := ExportLabels(path, s, collision.LayoutReport{Valid: true}); err == nil {
		t.Fatal("expected error for a scene without units, got nil")
	}
}

func TestCollectLabelInfos(t *testing.T) {
	s := buildTestScene()
	labels := CollectLabelInfos(s, buildTestReport(t, s))

	if len(labels) != 4 {
		t.Fatalf("expected 4 labels, got %d", len(labels))
	}
	if labels[0].ID != "a" || labels[0].Label != "Sink" {
		t.Errorf("expected first label to be 'Sink' (a), got %q (%s)", labels[0].Label, labels[0].ID)
	}
	if labels[0].Status != "collision" {
		t.Errorf("expected collision status, got %q", labels[0].Status)
	}
	if labels[1].Type != "wall" || labels[1].Y != 1.4 {
		t.Errorf("expected wall unit at 1.4m, got %s at %v", labels[1].Type, labels[1].Y)
	}
	if labels[2].Wall != "left" {
		t.Errorf("expected pantry on the left wall, got %s", labels[2].Wall)
	}
}

func TestLabelInfo_JSONFields(t *testing.T) {
	data, err := json.Marshal(LabelInfo{ID: "a", Label: "Sink", Width: 600, Rotation: 90})
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	for _, key := range []string{"id", "label", "width_mm", "rotation_deg", "x_m"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("expected key %q in %s", key, data)
		}
	}
}

func TestExportLabels_ManyUnits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many_labels.pdf")

	// 35 units spill onto a second label page.
	s := project.NewScene("", model.Room{Width: 12, Depth: 3, Height: 2.5})
	for i := 0; i < 35; i++ {
		s.Units = append(s.Units, model.NewUnit(fmt.Sprintf("Drawer bank with a rather long name %d", i+1), model.CategoryBase, 300, 720, 560))
	}
	if err := ExportLabels(path, s, collision.LayoutReport{Valid: true}); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
}
