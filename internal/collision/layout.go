package collision

import (
	"fmt"
	"sort"

	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/piwi3910/CabinetFit/internal/spatial"
)

// Issue is one problem found in a layout.
type Issue struct {
	UnitID  model.UnitID   `json:"unit_id"`
	Label   string         `json:"label"`
	Reason  Reason         `json:"reason"`
	Message string         `json:"message"`
	With    []model.UnitID `json:"with,omitempty"` // colliding units
}

// Pair is an unordered pair of colliding units, lowest id first.
type Pair struct {
	A, B model.UnitID
}

// LayoutReport is the outcome of validating a whole layout.
type LayoutReport struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
	Pairs  []Pair  `json:"pairs,omitempty"`
}

// IssuesFor returns the issues of one unit.
func (r LayoutReport) IssuesFor(id model.UnitID) []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.UnitID == id {
			out = append(out, is)
		}
	}
	return out
}

// ValidateLayout checks every unit at its own pose against the room and the
// other units in the list. The validator's index is not consulted; the list
// is indexed on its own. Missing or duplicate ids are returned as errors.
func (v *Validator) ValidateLayout(units []model.Unit) (LayoutReport, error) {
	ix, err := spatial.NewForRoom(v.room, v.index.CellSize())
	if err != nil {
		return LayoutReport{}, err
	}
	for _, u := range units {
		if err := ix.Add(u); err != nil {
			return LayoutReport{}, fmt.Errorf("failed to index unit %q: %w", u.DisplayName(), err)
		}
	}
	local := &Validator{index: ix, room: v.room, logger: v.logger}

	report := LayoutReport{Valid: true}
	for _, u := range units {
		res := local.CanPlace(u, u.Pose(), u.InstanceID)
		if res.Valid {
			continue
		}
		report.Valid = false
		is := Issue{UnitID: u.InstanceID, Label: u.DisplayName(), Reason: res.Reason, Message: res.Message}
		for _, o := range res.Collisions {
			is.With = append(is.With, o.InstanceID)
			report.Pairs = append(report.Pairs, newPair(u.InstanceID, o.InstanceID))
		}
		report.Issues = append(report.Issues, is)
	}
	report.Pairs = deduplicatePairs(report.Pairs)
	return report, nil
}

func newPair(a, b model.UnitID) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// deduplicatePairs removes repeated pairs; each collision is seen from both
// units.
func deduplicatePairs(pairs []Pair) []Pair {
	if len(pairs) == 0 {
		return nil
	}
	seen := make(map[Pair]bool, len(pairs))
	var out []Pair
	for _, p := range pairs {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// FormatIssues converts a report into human-readable warning strings.
func FormatIssues(report LayoutReport) []string {
	if report.Valid {
		return nil
	}
	labels := make(map[model.UnitID]string, len(report.Issues))
	for _, is := range report.Issues {
		labels[is.UnitID] = is.Label
	}
	name := func(id model.UnitID) string {
		if l, ok := labels[id]; ok {
			return l
		}
		return string(id)
	}

	var warnings []string
	for _, is := range report.Issues {
		if is.Reason == ReasonCollision {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("%s: %s (%s)", is.Label, is.Message, is.Reason))
	}
	for _, p := range report.Pairs {
		warnings = append(warnings, fmt.Sprintf("%s overlaps %s", name(p.A), name(p.B)))
	}
	return warnings
}
