package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/CabinetFit/internal/engine"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/piwi3910/CabinetFit/internal/project"
)

var (
	placeType     string
	placeLabel    string
	placePreset   string
	placeWidth    float64
	placeHeight   float64
	placeDepth    float64
	placeWall     string
	placeStrategy string
	placeAll      bool
	placeLimit    int
	placeCompare  bool
	placeWrite    bool
)

var placeCmd = &cobra.Command{
	Use:   "place <scene>",
	Short: "Find a position for a new unit",
	Long: `Find where a new unit goes using a placement strategy:
  linear - append after the last unit on the wall
  smart  - start in the corner, then fill gaps or extend the row
  grid   - scan the floor on a coarse grid

Dimensions are in millimeters. With --write the unit is added to the scene
at the position found.

Examples:
  cabinetfit place kitchen.yaml --type base --width 800
  cabinetfit place kitchen.yaml --preset "Wall 600" --wall left --write
  cabinetfit place kitchen.yaml --type tall --all
  cabinetfit place kitchen.yaml --compare`,
	Args: cobra.ExactArgs(1),
	RunE: runPlace,
}

func init() {
	f := placeCmd.Flags()
	f.StringVar(&placeType, "type", "base", "Unit type: base, wall, tall")
	f.StringVar(&placeLabel, "label", "", "Label of the new unit")
	f.StringVar(&placePreset, "preset", "", "Catalog preset name or id (overrides type and dimensions)")
	f.Float64Var(&placeWidth, "width", model.DefaultUnitWidth, "Width in mm")
	f.Float64Var(&placeHeight, "height", model.DefaultUnitHeight, "Height in mm")
	f.Float64Var(&placeDepth, "depth", model.DefaultUnitDepth, "Depth in mm")
	f.StringVar(&placeWall, "wall", "", "Wall: back, left, right (default from config)")
	f.StringVar(&placeStrategy, "strategy", "", "Strategy: linear, smart, grid (default from config)")
	f.BoolVar(&placeAll, "all", false, "List every possible position")
	f.IntVar(&placeLimit, "limit", engine.DefaultMaxPositions, "Maximum positions listed with --all")
	f.BoolVar(&placeCompare, "compare", false, "Compare strategies and walls")
	f.BoolVar(&placeWrite, "write", false, "Add the unit to the scene file")
}

func runPlace(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(args[0])
	if err != nil {
		return err
	}
	u, err := newPlacementUnit()
	if err != nil {
		return err
	}
	wall, err := wallOrDefault(placeWall)
	if err != nil {
		return err
	}
	sys, err := newEngine(scene)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case placeAll:
		all := sys.FindAllPossiblePositions(u, scene.Units, wall, placeLimit)
		if len(all) == 0 {
			return fmt.Errorf("no position found for %s", u.DisplayName())
		}
		fmt.Fprintf(out, "%d positions for %s:\n", len(all), u.DisplayName())
		for i, c := range all {
			fmt.Fprintf(out, "  %2d. %-7s %-9s %s\n", i+1, c.Strategy, c.Kind, formatPose(c.Pose))
		}
		return nil

	case placeCompare:
		results := sys.CompareScenarios(u, scene.Units, sys.BuildDefaultScenarios(placeStrategy, wall))
		fmt.Fprintf(out, "%-24s %-40s %10s %8s\n", "Scenario", "Position", "Corner (m)", "Overlaps")
		for _, r := range results {
			if !r.Found {
				fmt.Fprintf(out, "%-24s %-40s\n", r.Scenario.Name, "no position")
				continue
			}
			fmt.Fprintf(out, "%-24s %-40s %10.3f %8d\n", r.Scenario.Name, formatPose(r.Candidate.Pose), r.CornerDistance, r.Overlaps)
		}
		return nil
	}

	c, ok := sys.FindNextPosition(u, scene.Units, placeStrategy, wall)
	if !ok {
		return fmt.Errorf("no position found for %s on the %s wall", u.DisplayName(), wall)
	}
	fmt.Fprintf(out, "%s (%s): %s\n", u.DisplayName(), c.Strategy, formatPose(c.Pose))

	if !placeWrite {
		return nil
	}
	if err := scene.Add(c.Unit(u)); err != nil {
		return err
	}
	if err := project.SaveScene(args[0], scene); err != nil {
		return fmt.Errorf("failed to save scene: %w", err)
	}
	logger.Info("unit added", zap.String("unit", u.DisplayName()), zap.String("scene", args[0]))
	return nil
}

// newPlacementUnit builds the unit described by the place flags.
func newPlacementUnit() (model.Unit, error) {
	if placePreset != "" {
		catalog, _, err := project.LoadOrCreateCatalog()
		if err != nil {
			return model.Unit{}, fmt.Errorf("failed to load catalog: %w", err)
		}
		p := catalog.FindByName(placePreset)
		if p == nil {
			p = catalog.FindByID(placePreset)
		}
		if p == nil {
			return model.Unit{}, fmt.Errorf("no catalog preset %q", placePreset)
		}
		u := p.NewUnit()
		if placeLabel != "" {
			u.Label = placeLabel
		}
		return u, nil
	}

	category, err := model.ParseCategory(placeType)
	if err != nil {
		return model.Unit{}, err
	}
	return model.NewUnit(placeLabel, category, placeWidth, placeHeight, placeDepth), nil
}

func formatPose(p model.Pose) string {
	return fmt.Sprintf("x=%.3f y=%.3f z=%.3f rot=%.0f°", p.X, p.Y, p.Z, p.Rotation*180/math.Pi)
}
