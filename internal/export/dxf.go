package export

import (
	"fmt"

	"github.com/piwi3910/CabinetFit/internal/geom"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/piwi3910/CabinetFit/internal/project"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"
)

// planTextHeight is the label text height in drawing units (mm).
const planTextHeight = 50.0

// planLayers lists the drawing layers and their colors.
var planLayers = []struct {
	name  string
	color color.ColorNumber
}{
	{model.PlanLayerRoom, color.White},
	{model.CategoryBase.PlanLayer(), color.Blue},
	{model.CategoryWall.PlanLayer(), color.Green},
	{model.CategoryTall.PlanLayer(), color.Yellow},
	{model.PlanLayerLabels, color.Cyan},
}

// WritePlanDXF writes the scene as a top-view DXF drawing in millimeters.
// The room outline goes on the ROOM layer and each unit footprint on the
// layer of its category as a closed polyline starting at the unit origin
// with the width edge first. Unit names go on the LABELS layer at the
// footprint centers.
func WritePlanDXF(path string, scene project.Scene) error {
	if err := scene.Room.Validate(); err != nil {
		return fmt.Errorf("cannot export plan: %w", err)
	}

	d := dxf.NewDrawing()
	for _, l := range planLayers {
		if _, err := d.AddLayer(l.name, l.color, table.LT_CONTINUOUS, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	hw, hd := scene.Room.HalfWidth(), scene.Room.HalfDepth()
	if err := polyline(d, model.PlanLayerRoom, [4][2]float64{{-hw, -hd}, {hw, -hd}, {hw, hd}, {-hw, hd}}); err != nil {
		return err
	}

	for _, u := range scene.Units {
		if err := polyline(d, u.Category().PlanLayer(), footprint(u)); err != nil {
			return fmt.Errorf("failed to draw %s: %w", u.DisplayName(), err)
		}
	}

	if err := d.ChangeLayer(model.PlanLayerLabels); err != nil {
		return err
	}
	for _, u := range scene.Units {
		b := geom.UnitBox(u, u.Pose())
		x, y := model.ToPlan(b.CenterX(), b.CenterZ())
		if _, err := d.Text(u.DisplayName(), x, y, 0, planTextHeight); err != nil {
			return fmt.Errorf("failed to label %s: %w", u.DisplayName(), err)
		}
	}

	return d.SaveAs(path)
}

// polyline draws a closed outline through room-space corners on layer.
func polyline(d *drawing.Drawing, layer string, corners [4][2]float64) error {
	if err := d.ChangeLayer(layer); err != nil {
		return err
	}
	vertices := make([][]float64, len(corners))
	for i, c := range corners {
		x, y := model.ToPlan(c[0], c[1])
		vertices[i] = []float64{x, y}
	}
	_, err := d.LwPolyline(true, vertices...)
	return err
}
