// cabinetfit places and checks cabinets in a room plan from the terminal.
//
// Usage:
//
//	cabinetfit validate <scene>           - Check a scene for collisions and bounds
//	cabinetfit place <scene>              - Find a position for a new unit
//	cabinetfit snap <scene>               - Snap a unit dragged to a pose
//	cabinetfit import <scene> <file>      - Add units from a CSV, XLSX or DXF file
//	cabinetfit export <scene>             - Write a report, plan or labels
//	cabinetfit catalog                    - List or import unit presets
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.cabinetfit/config.yaml)
//	--log-level <level> - Override the configured log level
//
// Build:
//
//	go build -o cabinetfit ./cmd/cabinetfit
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/CabinetFit/internal/logging"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/piwi3910/CabinetFit/internal/project"
)

var (
	// Global flags
	flagConfig   string
	flagLogLevel string

	// Set up by the root command before any subcommand runs.
	appConfig model.AppConfig
	logger    = zap.NewNop()
)

func main() {
	defer func() { _ = logger.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cabinetfit",
	Short: "CabinetFit - place cabinets in a room plan",
	Long: `CabinetFit works on scene files (JSON or YAML) holding a room and the
cabinets placed in it. It finds positions for new units, snaps moved units
against walls and neighbors, checks layouts for collisions and exports
reports, DXF plans and installer labels.

Available commands:
  validate - Check a scene for collisions and out-of-room units
  place    - Find a position for a new unit
  snap     - Snap a unit to walls, neighbors and the grid
  import   - Add units from a CSV, XLSX or DXF plan
  export   - Write an XLSX report, DXF plan, PDF plan or labels
  catalog  - List or import unit presets

Examples:
  cabinetfit validate kitchen.yaml
  cabinetfit place kitchen.yaml --type base --width 600 --wall left --write
  cabinetfit snap kitchen.yaml --id sink --x -1.9 --z -1.4
  cabinetfit import kitchen.yaml units.csv --strategy smart
  cabinetfit export kitchen.yaml --xlsx report.xlsx --dxf plan.dxf`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (default: ~/.cabinetfit/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(placeCmd)
	rootCmd.AddCommand(snapCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(catalogCmd)
}

// setup loads the config and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	config, path, err := project.LoadConfig(flagConfig)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	appConfig = config.Normalize()

	logCfg := logging.Config{Level: appConfig.LogLevel, Encoding: appConfig.LogEncoding}
	if flagLogLevel != "" {
		logCfg.Level = flagLogLevel
	}
	l, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logger = l
	logger.Debug("config loaded", zap.String("path", path), zap.String("command", cmd.Name()))
	return nil
}
