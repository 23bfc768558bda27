package model

// SnapSettings configures the snap chain.
type SnapSettings struct {
	WallThreshold    float64 `json:"wall_threshold" yaml:"wall_threshold"`       // m
	CabinetThreshold float64 `json:"cabinet_threshold" yaml:"cabinet_threshold"` // m
	GridSize         float64 `json:"grid_size" yaml:"grid_size"`                 // m
	EnableWall       bool    `json:"enable_wall" yaml:"enable_wall"`
	EnableCabinet    bool    `json:"enable_cabinet" yaml:"enable_cabinet"`
	EnableGrid       bool    `json:"enable_grid" yaml:"enable_grid"`
}

// DefaultSnapSettings returns the snap thresholds used by the designer.
func DefaultSnapSettings() SnapSettings {
	return SnapSettings{
		WallThreshold:    0.2,
		CabinetThreshold: 0.12,
		GridSize:         0.05,
		EnableWall:       true,
		EnableCabinet:    true,
		EnableGrid:       true,
	}
}

// WithDefaults fills zero thresholds with their default values.
func (s SnapSettings) WithDefaults() SnapSettings {
	d := DefaultSnapSettings()
	if s.WallThreshold <= 0 {
		s.WallThreshold = d.WallThreshold
	}
	if s.CabinetThreshold <= 0 {
		s.CabinetThreshold = d.CabinetThreshold
	}
	if s.GridSize <= 0 {
		s.GridSize = d.GridSize
	}
	return s
}

// AppConfig holds application-wide preferences and engine defaults.
type AppConfig struct {
	// Room used when a scene does not define one
	DefaultRoom Room `json:"default_room" yaml:"default_room"`

	// Engine tuning
	CellSize        float64      `json:"cell_size" yaml:"cell_size"` // m
	Snap            SnapSettings `json:"snap" yaml:"snap"`
	DefaultStrategy string       `json:"default_strategy" yaml:"default_strategy"` // "smart", "linear", "grid"
	DefaultWall     string       `json:"default_wall" yaml:"default_wall"`         // "back", "left", "right"

	// Logging
	LogLevel    string `json:"log_level" yaml:"log_level"`       // "debug", "info", "warn", "error"
	LogEncoding string `json:"log_encoding" yaml:"log_encoding"` // "console" or "json"
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultRoom:     Room{Width: 4.0, Depth: 3.0, Height: 2.5},
		CellSize:        0.5,
		Snap:            DefaultSnapSettings(),
		DefaultStrategy: "smart",
		DefaultWall:     "back",
		LogLevel:        "info",
		LogEncoding:     "console",
	}
}

// Normalize fills any zero values with defaults.
func (c AppConfig) Normalize() AppConfig {
	d := DefaultAppConfig()
	if c.DefaultRoom.Validate() != nil {
		c.DefaultRoom = d.DefaultRoom
	}
	if c.CellSize <= 0 {
		c.CellSize = d.CellSize
	}
	c.Snap = c.Snap.WithDefaults()
	if c.DefaultStrategy == "" {
		c.DefaultStrategy = d.DefaultStrategy
	}
	if c.DefaultWall == "" {
		c.DefaultWall = d.DefaultWall
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogEncoding == "" {
		c.LogEncoding = d.LogEncoding
	}
	return c
}
