// Package spatial provides a uniform grid index over the room floor for fast
// neighbor and collision queries.
package spatial

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/piwi3910/CabinetFit/internal/geom"
	"github.com/piwi3910/CabinetFit/internal/model"
	"go.uber.org/zap"
)

// DefaultCellSize is the grid cell edge length in meters.
const DefaultCellSize = 0.5

// maxEntryCells caps the cells a single unit is bucketed into. Larger
// footprints are kept in a list every query scans.
const maxEntryCells = 4096

// cellKey addresses one grid cell in room-local coordinates.
type cellKey struct {
	col, row int
}

// entry is the index's record of one unit.
type entry struct {
	unit  model.Unit
	box   geom.Box
	cells []cellKey
}

// Index buckets units by every grid cell their footprint touches.
// It is safe for concurrent use.
type Index struct {
	mu       sync.RWMutex
	width    float64
	depth    float64
	cellSize float64
	cells    map[cellKey]map[model.UnitID]struct{}
	entries  map[model.UnitID]*entry
	oversize map[model.UnitID]struct{}
	logger   *zap.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(ix *Index) {
		if l != nil {
			ix.logger = l
		}
	}
}

// New creates an empty index for a room of the given floor size. A cell size
// of zero or less selects DefaultCellSize.
func New(roomWidth, roomDepth, cellSize float64, opts ...Option) (*Index, error) {
	if roomWidth <= 0 || roomDepth <= 0 {
		return nil, fmt.Errorf("%w: %.3f x %.3f", model.ErrInvalidRoom, roomWidth, roomDepth)
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	ix := &Index{
		width:    roomWidth,
		depth:    roomDepth,
		cellSize: cellSize,
		cells:    make(map[cellKey]map[model.UnitID]struct{}),
		entries:  make(map[model.UnitID]*entry),
		oversize: make(map[model.UnitID]struct{}),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// NewForRoom creates an index covering room.
func NewForRoom(room model.Room, cellSize float64, opts ...Option) (*Index, error) {
	if err := room.Validate(); err != nil {
		return nil, err
	}
	return New(room.Width, room.Depth, cellSize, opts...)
}

// CellSize returns the grid cell edge length.
func (ix *Index) CellSize() float64 { return ix.cellSize }

// cellOf maps a world point to its cell.
func (ix *Index) cellOf(x, z float64) cellKey {
	return cellKey{
		col: int(math.Floor((x + ix.width/2) / ix.cellSize)),
		row: int(math.Floor((z + ix.depth/2) / ix.cellSize)),
	}
}

// cellCount returns how many cells a box touches. It is computed in floating
// point so huge or non-finite boxes do not overflow; NaN means unbounded.
func (ix *Index) cellCount(b geom.Box) float64 {
	cols := math.Floor((b.MaxX+ix.width/2)/ix.cellSize) - math.Floor((b.MinX+ix.width/2)/ix.cellSize) + 1
	rows := math.Floor((b.MaxZ+ix.depth/2)/ix.cellSize) - math.Floor((b.MinZ+ix.depth/2)/ix.cellSize) + 1
	return cols * rows
}

// cellsFor lists every cell a box touches. Callers bound the box with
// cellCount first.
func (ix *Index) cellsFor(b geom.Box) []cellKey {
	lo := ix.cellOf(b.MinX, b.MinZ)
	hi := ix.cellOf(b.MaxX, b.MaxZ)
	keys := make([]cellKey, 0, (hi.col-lo.col+1)*(hi.row-lo.row+1))
	for c := lo.col; c <= hi.col; c++ {
		for r := lo.row; r <= hi.row; r++ {
			keys = append(keys, cellKey{col: c, row: r})
		}
	}
	return keys
}

// Add inserts u at its current pose.
func (ix *Index) Add(u model.Unit) error {
	if u.InstanceID == "" {
		return model.ErrMissingID
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, ok := ix.entries[u.InstanceID]; ok {
		return fmt.Errorf("%w: %s", model.ErrDuplicateUnit, u.InstanceID)
	}
	ix.insert(u)
	return nil
}

func (ix *Index) insert(u model.Unit) {
	b := geom.UnitBox(u, u.Pose())
	e := &entry{unit: u, box: b}
	ix.entries[u.InstanceID] = e
	if n := ix.cellCount(b); !(n <= maxEntryCells) {
		ix.oversize[u.InstanceID] = struct{}{}
		ix.logger.Debug("unit too large for grid buckets",
			zap.String("id", string(u.InstanceID)), zap.Float64("cells", n))
		return
	}
	e.cells = ix.cellsFor(b)
	for _, k := range e.cells {
		set, ok := ix.cells[k]
		if !ok {
			set = make(map[model.UnitID]struct{})
			ix.cells[k] = set
		}
		set[u.InstanceID] = struct{}{}
	}
}

// Remove deletes the unit with the given id.
func (ix *Index) Remove(id model.UnitID) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.delete(id) {
		ix.logger.Warn("remove of unindexed unit", zap.String("id", string(id)))
		return fmt.Errorf("%w: %s", model.ErrUnknownUnit, id)
	}
	return nil
}

func (ix *Index) delete(id model.UnitID) bool {
	e, ok := ix.entries[id]
	if !ok {
		return false
	}
	for _, k := range e.cells {
		set := ix.cells[k]
		delete(set, id)
		if len(set) == 0 {
			delete(ix.cells, k)
		}
	}
	delete(ix.oversize, id)
	delete(ix.entries, id)
	return true
}

// Update re-indexes u after a pose or size change.
func (ix *Index) Update(u model.Unit) error {
	if u.InstanceID == "" {
		return model.ErrMissingID
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.delete(u.InstanceID) {
		return fmt.Errorf("%w: %s", model.ErrUnknownUnit, u.InstanceID)
	}
	ix.insert(u)
	return nil
}

// Get returns the indexed copy of a unit.
func (ix *Index) Get(id model.UnitID) (model.Unit, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	e, ok := ix.entries[id]
	if !ok {
		return model.Unit{}, false
	}
	return e.unit, true
}

// Len returns the number of indexed units.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Units returns every indexed unit sorted by id.
func (ix *Index) Units() []model.Unit {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]model.Unit, 0, len(ix.entries))
	for _, e := range ix.entries {
		out = append(out, e.unit)
	}
	sortUnits(out)
	return out
}

// Clear removes every unit.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.cells = make(map[cellKey]map[model.UnitID]struct{})
	ix.entries = make(map[model.UnitID]*entry)
	ix.oversize = make(map[model.UnitID]struct{})
}

// query collects the entries whose box intersects region. Callers hold the
// read lock. A region spanning more cells than are occupied is answered by
// scanning the entries instead of walking the grid.
func (ix *Index) query(region geom.Box) []*entry {
	var out []*entry
	if n := ix.cellCount(region); !(n <= float64(len(ix.cells))) {
		for _, e := range ix.entries {
			if e.box.Intersects(region) {
				out = append(out, e)
			}
		}
	} else {
		seen := make(map[model.UnitID]struct{})
		visit := func(id model.UnitID) {
			if _, dup := seen[id]; dup {
				return
			}
			seen[id] = struct{}{}
			if e := ix.entries[id]; e.box.Intersects(region) {
				out = append(out, e)
			}
		}
		for _, k := range ix.cellsFor(region) {
			for id := range ix.cells[k] {
				visit(id)
			}
		}
		for id := range ix.oversize {
			visit(id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].unit.InstanceID < out[j].unit.InstanceID })
	return out
}

// Nearby returns the units whose footprint intersects the square of half-size
// radius centered on (x, z), sorted by id.
func (ix *Index) Nearby(x, z, radius float64) []model.Unit {
	region := geom.Box{MinX: x - radius, MaxX: x + radius, MinZ: z - radius, MaxZ: z + radius}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	entries := ix.query(region)
	out := make([]model.Unit, len(entries))
	for i, e := range entries {
		out[i] = e.unit
	}
	return out
}

// NearbyByCategory is Nearby restricted to one category.
func (ix *Index) NearbyByCategory(x, z, radius float64, category model.Category) []model.Unit {
	var out []model.Unit
	for _, u := range ix.Nearby(x, z, radius) {
		if u.Category() == category.Normalized() {
			out = append(out, u)
		}
	}
	return out
}

// CheckCollisions returns the indexed units whose footprint overlaps a
// width x depth unit at (x, z, rotation), ignoring exclude. Vertical extents
// are not considered.
func (ix *Index) CheckCollisions(x, z, width, depth, rotation float64, exclude model.UnitID) []model.Unit {
	b := geom.BoundingBox(x, z, width, depth, rotation)
	radius := math.Max(width, depth) * 2
	region := geom.Box{
		MinX: b.CenterX() - radius, MaxX: b.CenterX() + radius,
		MinZ: b.CenterZ() - radius, MaxZ: b.CenterZ() + radius,
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []model.Unit
	for _, e := range ix.query(region) {
		if e.unit.InstanceID == exclude {
			continue
		}
		if geom.Overlap(b, e.box, geom.OverlapEpsilon) {
			out = append(out, e.unit)
		}
	}
	if len(out) > 0 {
		ix.logger.Debug("footprint overlaps indexed units",
			zap.Float64("x", x), zap.Float64("z", z), zap.Int("count", len(out)))
	}
	return out
}

// Stats summarizes index occupancy.
type Stats struct {
	TotalUnits      int     `json:"total_units"`
	TotalCells      int     `json:"total_cells"`
	AvgUnitsPerCell float64 `json:"avg_units_per_cell"`
	CellSize        float64 `json:"cell_size"`
	GridCols        int     `json:"grid_cols"`
	GridRows        int     `json:"grid_rows"`
}

// Stats returns occupancy figures for diagnostics.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	s := Stats{
		TotalUnits: len(ix.entries),
		TotalCells: len(ix.cells),
		CellSize:   ix.cellSize,
		GridCols:   int(math.Ceil(ix.width / ix.cellSize)),
		GridRows:   int(math.Ceil(ix.depth / ix.cellSize)),
	}
	if s.TotalCells > 0 {
		total := 0
		for _, set := range ix.cells {
			total += len(set)
		}
		s.AvgUnitsPerCell = float64(total) / float64(s.TotalCells)
	}
	return s
}

func sortUnits(units []model.Unit) {
	sort.Slice(units, func(i, j int) bool { return units[i].InstanceID < units[j].InstanceID })
}
