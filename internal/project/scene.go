package project

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/piwi3910/CabinetFit/internal/spatial"
)

// Scene is a room and the units placed in it. It is the working document
// of the command-line tool.
type Scene struct {
	Name  string       `json:"name,omitempty" yaml:"name,omitempty"`
	Room  model.Room   `json:"room" yaml:"room"`
	Units []model.Unit `json:"units" yaml:"units"`
}

// NewScene returns an empty scene for room.
func NewScene(name string, room model.Room) Scene {
	return Scene{Name: name, Room: room, Units: []model.Unit{}}
}

// Validate checks the room, the unit categories and that ids are unique.
func (s Scene) Validate() error {
	if err := s.Room.Validate(); err != nil {
		return err
	}
	seen := make(map[model.UnitID]bool, len(s.Units))
	for i, u := range s.Units {
		if u.InstanceID == "" {
			return fmt.Errorf("unit %d: %w", i+1, model.ErrMissingID)
		}
		if seen[u.InstanceID] {
			return fmt.Errorf("unit %d: %w: %s", i+1, model.ErrDuplicateUnit, u.InstanceID)
		}
		seen[u.InstanceID] = true
		if !u.Type.Valid() {
			return fmt.Errorf("unit %d: unknown type %q", i+1, u.Type)
		}
	}
	return nil
}

// EnsureIDs gives every unit without an id a fresh one and returns how many
// were assigned.
func (s *Scene) EnsureIDs() int {
	n := 0
	for i := range s.Units {
		if s.Units[i].InstanceID == "" {
			s.Units[i].InstanceID = model.UnitID(uuid.New().String())
			n++
		}
	}
	return n
}

// Find returns the unit with the given id.
func (s Scene) Find(id model.UnitID) (model.Unit, bool) {
	for _, u := range s.Units {
		if u.InstanceID == id {
			return u, true
		}
	}
	return model.Unit{}, false
}

// Add appends u. The id must be set and unused.
func (s *Scene) Add(u model.Unit) error {
	if u.InstanceID == "" {
		return model.ErrMissingID
	}
	if _, ok := s.Find(u.InstanceID); ok {
		return fmt.Errorf("%w: %s", model.ErrDuplicateUnit, u.InstanceID)
	}
	s.Units = append(s.Units, u)
	return nil
}

// Update replaces the unit with u's id, keeping its position in the list.
func (s *Scene) Update(u model.Unit) error {
	for i := range s.Units {
		if s.Units[i].InstanceID == u.InstanceID {
			s.Units[i] = u
			return nil
		}
	}
	return fmt.Errorf("%w: %s", model.ErrUnknownUnit, u.InstanceID)
}

// Remove deletes the unit with the given id.
func (s *Scene) Remove(id model.UnitID) error {
	for i := range s.Units {
		if s.Units[i].InstanceID == id {
			s.Units = append(s.Units[:i], s.Units[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", model.ErrUnknownUnit, id)
}

// BuildIndex returns a spatial index of the room holding every unit.
func (s Scene) BuildIndex(cellSize float64, opts ...spatial.Option) (*spatial.Index, error) {
	ix, err := spatial.NewForRoom(s.Room, cellSize, opts...)
	if err != nil {
		return nil, err
	}
	for _, u := range s.Units {
		if err := ix.Add(u); err != nil {
			return nil, fmt.Errorf("failed to index unit %s: %w", u.DisplayName(), err)
		}
	}
	return ix, nil
}

// SaveScene writes the scene to path, as YAML for .yaml and .yml files and
// JSON otherwise.
func SaveScene(path string, s Scene) error {
	return writeFile(path, s)
}

// LoadScene reads a scene from path, assigns ids to units that have none
// and validates it.
func LoadScene(path string) (Scene, error) {
	var s Scene
	if err := readFile(path, &s); err != nil {
		return Scene{}, fmt.Errorf("failed to load scene: %w", err)
	}
	if s.Units == nil {
		s.Units = []model.Unit{}
	}
	s.EnsureIDs()
	if err := s.Validate(); err != nil {
		return Scene{}, fmt.Errorf("invalid scene %s: %w", path, err)
	}
	return s, nil
}
