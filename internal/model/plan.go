package model

import "strings"

// Layer names used by 2D plan drawings.
const (
	PlanLayerRoom   = "ROOM"
	PlanLayerLabels = "LABELS"
)

// PlanLayer returns the drawing layer units of category c are drawn on.
func (c Category) PlanLayer() string {
	return strings.ToUpper(string(c.Normalized()))
}

// CategoryForLayer maps a plan layer back to its category.
func CategoryForLayer(layer string) (Category, bool) {
	switch c := Category(strings.ToLower(layer)); c {
	case CategoryBase, CategoryWall, CategoryTall:
		return c, true
	}
	return "", false
}

// ToPlan converts room coordinates in meters to plan coordinates in
// millimeters. Plans are drawn from above with the back wall at the top, so
// the plan Y axis points toward the back.
func ToPlan(x, z float64) (px, py float64) {
	return x * mmPerMeter, -z * mmPerMeter
}

// FromPlan is the inverse of ToPlan.
func FromPlan(px, py float64) (x, z float64) {
	return px / mmPerMeter, -py / mmPerMeter
}
