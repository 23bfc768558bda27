package main

import (
	"fmt"

	"github.com/piwi3910/CabinetFit/internal/collision"
	"github.com/piwi3910/CabinetFit/internal/engine"
	"github.com/piwi3910/CabinetFit/internal/geom"
	"github.com/piwi3910/CabinetFit/internal/project"
	"github.com/piwi3910/CabinetFit/internal/spatial"
	"go.uber.org/zap"
)

// loadScene reads a scene file and logs its size.
func loadScene(path string) (project.Scene, error) {
	scene, err := project.LoadScene(path)
	if err != nil {
		return project.Scene{}, err
	}
	logger.Debug("scene loaded",
		zap.String("path", path),
		zap.Int("units", len(scene.Units)),
		zap.Float64("room_width", scene.Room.Width),
		zap.Float64("room_depth", scene.Room.Depth))
	return scene, nil
}

// validate checks every unit of the scene at its pose. ValidateLayout
// indexes the units itself, so the validator gets an empty index.
func validate(scene project.Scene) (collision.LayoutReport, error) {
	ix, err := spatial.NewForRoom(scene.Room, appConfig.CellSize, spatial.WithLogger(logger))
	if err != nil {
		return collision.LayoutReport{}, err
	}
	v, err := collision.New(ix, scene.Room, collision.WithLogger(logger))
	if err != nil {
		return collision.LayoutReport{}, err
	}
	return v.ValidateLayout(scene.Units)
}

// newEngine builds a placement system for the scene's room using the
// configured default strategy.
func newEngine(scene project.Scene) (*engine.System, error) {
	sys, err := engine.NewSystem(scene.Room, engine.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := sys.SetDefaultStrategy(appConfig.DefaultStrategy); err != nil {
		return nil, fmt.Errorf("config default_strategy: %w", err)
	}
	return sys, nil
}

// wallOrDefault parses a --wall flag, falling back to the configured wall.
func wallOrDefault(s string) (geom.Wall, error) {
	if s == "" {
		s = appConfig.DefaultWall
	}
	return geom.ParseWall(s)
}
