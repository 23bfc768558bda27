package engine

import (
	"fmt"

	"github.com/piwi3910/CabinetFit/internal/geom"
	"github.com/piwi3910/CabinetFit/internal/model"
)

// ComparisonScenario names a strategy and wall to try.
type ComparisonScenario struct {
	Name     string    `json:"name"`
	Strategy string    `json:"strategy"`
	Wall     geom.Wall `json:"wall"`
}

// ComparisonResult holds the placement found for one scenario and the
// figures used to compare it with the others.
type ComparisonResult struct {
	Scenario  ComparisonScenario `json:"scenario"`
	Candidate Candidate          `json:"candidate"`
	Found     bool               `json:"found"`

	// CornerDistance is how far along its wall the unit starts, measured from
	// the wall's low corner.
	CornerDistance float64 `json:"corner_distance"`

	// Overlaps counts existing units the pose would collide with. Smart
	// never overlaps; linear and grid can.
	Overlaps int `json:"overlaps"`
}

// CompareScenarios runs each scenario for u and returns the results in
// scenario order. This lets a caller show what-if alternatives side by side.
func (s *System) CompareScenarios(u model.Unit, existing []model.Unit, scenarios []ComparisonScenario) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, sc := range scenarios {
		res := ComparisonResult{Scenario: sc}
		c, ok := s.FindNextPosition(u, existing, sc.Strategy, sc.Wall)
		if ok {
			res.Found = true
			res.Candidate = c

			wa := geom.AxisOf(c.Wall)
			start, _ := wa.AlongWallSpan(geom.UnitBox(u, c.Pose))
			wallStart, _ := wa.WallRange(s.room)
			res.CornerDistance = start - wallStart
			res.Overlaps = len(blockers(u, c.Pose, existing))
		}
		results = append(results, res)
	}

	return results
}

// BuildDefaultScenarios generates the scenarios worth comparing against the
// current choice: every other strategy on the same wall, then the current
// strategy on every other wall.
func (s *System) BuildDefaultScenarios(strategy string, wall geom.Wall) []ComparisonScenario {
	if _, ok := s.strategies[strategy]; !ok {
		strategy = s.defaultStrategy
	}
	wall = normalizeWall(wall)

	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Strategy: strategy, Wall: wall},
	}

	for _, name := range s.order {
		if name == strategy {
			continue
		}
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("%s on %s wall", name, wall),
			Strategy: name,
			Wall:     wall,
		})
	}

	// The grid strategy ignores walls, so trying it elsewhere adds nothing.
	if strategy == "grid" {
		return scenarios
	}
	for _, w := range []geom.Wall{geom.WallBack, geom.WallLeft, geom.WallRight} {
		if w == wall {
			continue
		}
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("%s on %s wall", strategy, w),
			Strategy: strategy,
			Wall:     w,
		})
	}

	return scenarios
}
