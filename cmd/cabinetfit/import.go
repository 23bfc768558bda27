package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/CabinetFit/internal/importer"
	"github.com/piwi3910/CabinetFit/internal/project"
)

var (
	importWall     string
	importStrategy string
	importRoom     bool
	importDryRun   bool
)

var importCmd = &cobra.Command{
	Use:   "import <scene> <file>",
	Short: "Add units from a CSV, XLSX or DXF plan",
	Long: `Import units into a scene. The scene file is created when it does not
exist yet.

CSV and XLSX lists need width, height and depth columns (mm); label, type
and quantity are optional. Lists without x/z columns are placed one after
another with the chosen strategy. DXF plans keep the drawn positions and
can also set the room from the ROOM outline.

Examples:
  cabinetfit import kitchen.yaml units.csv
  cabinetfit import kitchen.yaml units.xlsx --wall left --strategy linear
  cabinetfit import kitchen.yaml plan.dxf --room`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&importWall, "wall", "", "Wall to place unpositioned units on (default from config)")
	f.StringVar(&importStrategy, "strategy", "", "Placement strategy for unpositioned units (default from config)")
	f.BoolVar(&importRoom, "room", false, "Replace the scene room with the room from a DXF plan")
	f.BoolVar(&importDryRun, "dry-run", false, "Report what would be imported without saving")
}

func runImport(cmd *cobra.Command, args []string) error {
	scenePath, listPath := args[0], args[1]

	scene, err := project.LoadScene(scenePath)
	if errors.Is(err, fs.ErrNotExist) {
		name := strings.TrimSuffix(filepath.Base(scenePath), filepath.Ext(scenePath))
		scene = project.NewScene(name, appConfig.DefaultRoom)
		logger.Info("creating new scene", zap.String("path", scenePath))
	} else if err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}

	result := importer.ImportFile(listPath)
	out := cmd.OutOrStdout()
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(out, "error: %s\n", e)
	}
	if len(result.Units) == 0 && !result.HasRoom() {
		return fmt.Errorf("nothing imported from %s", listPath)
	}

	if result.HasRoom() && (importRoom || len(scene.Units) == 0) {
		scene.Room = result.Room
		fmt.Fprintf(out, "room set to %.2f x %.2f m\n", scene.Room.Width, scene.Room.Depth)
	}

	added, skipped := 0, 0
	if result.Positioned {
		for _, u := range result.Units {
			if err := scene.Add(u); err != nil {
				return err
			}
			added++
		}
	} else {
		wall, err := wallOrDefault(importWall)
		if err != nil {
			return err
		}
		sys, err := newEngine(scene)
		if err != nil {
			return err
		}
		for _, u := range result.Units {
			c, ok := sys.FindNextPosition(u, scene.Units, importStrategy, wall)
			if !ok {
				fmt.Fprintf(out, "skipped %s: no room left on the %s wall\n", u.DisplayName(), wall)
				skipped++
				continue
			}
			if err := scene.Add(c.Unit(u)); err != nil {
				return err
			}
			added++
		}
	}

	fmt.Fprintf(out, "imported %d units", added)
	if skipped > 0 {
		fmt.Fprintf(out, ", %d skipped", skipped)
	}
	fmt.Fprintln(out)

	if importDryRun {
		return nil
	}
	if err := project.SaveScene(scenePath, scene); err != nil {
		return fmt.Errorf("failed to save scene: %w", err)
	}
	logger.Debug("scene saved", zap.String("path", scenePath), zap.Int("units", len(scene.Units)))
	return nil
}
