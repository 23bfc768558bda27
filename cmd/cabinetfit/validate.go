package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CabinetFit/internal/collision"
)

var errInvalidLayout = errors.New("layout is invalid")

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate <scene>",
	Short: "Check a scene for collisions and out-of-room units",
	Long: `Check every unit of a scene at its saved pose: inside the room, not taller
than the ceiling and not overlapping another unit at the same level.
Exits with status 1 when the layout has any issue.

Examples:
  cabinetfit validate kitchen.yaml
  cabinetfit validate kitchen.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the report as JSON")
}

func runValidate(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(args[0])
	if err != nil {
		return err
	}
	report, err := validate(scene)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if validateJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else {
		printReport(cmd, len(scene.Units), report)
	}

	if !report.Valid {
		return errInvalidLayout
	}
	return nil
}

func printReport(cmd *cobra.Command, units int, report collision.LayoutReport) {
	out := cmd.OutOrStdout()
	if report.Valid {
		fmt.Fprintf(out, "OK: %d units, no issues\n", units)
		return
	}
	fmt.Fprintf(out, "%d issues in %d units:\n", len(report.Issues), units)
	for _, line := range collision.FormatIssues(report) {
		fmt.Fprintf(out, "  - %s\n", line)
	}
}
