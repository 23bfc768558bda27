package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/CabinetFit/internal/geom"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/piwi3910/CabinetFit/internal/project"
)

// execute runs the root command with args against a clean flag state and
// an empty home directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeScene(t *testing.T, units ...model.Unit) string {
	t.Helper()
	s := project.NewScene("Kitchen", model.Room{Width: 4, Depth: 3, Height: 2.5})
	s.Units = append(s.Units, units...)
	path := filepath.Join(t.TempDir(), "kitchen.yaml")
	require.NoError(t, project.SaveScene(path, s))
	return path
}

func sinkUnit() model.Unit {
	return model.Unit{InstanceID: "sink-0001", Label: "Sink", Type: model.CategoryBase,
		Width: 600, Height: 720, Depth: 560, Position: [3]float64{-2, 0, -1.5}}
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", writeScene(t, sinkUnit()))
	require.NoError(t, err)
	assert.Contains(t, out, "OK: 1 units")

	clash := sinkUnit()
	clash.InstanceID = "clash-0002"
	clash.Label = "Clash"
	clash.Position[0] = -1.7

	out, err = execute(t, "validate", writeScene(t, sinkUnit(), clash))
	assert.ErrorIs(t, err, errInvalidLayout)
	assert.Contains(t, out, "Clash overlaps Sink")
}

func TestPlaceCommand_Write(t *testing.T) {
	path := writeScene(t, sinkUnit())

	out, err := execute(t, "place", path, "--type", "base", "--label", "Drawers", "--strategy", "smart", "--write")
	require.NoError(t, err)
	assert.Contains(t, out, "Drawers (smart)")

	scene, err := project.LoadScene(path)
	require.NoError(t, err)
	require.Len(t, scene.Units, 2)

	_, err = execute(t, "validate", path)
	assert.NoError(t, err, "smart placement must not overlap")
}

func TestPlaceCommand_AllAndCompare(t *testing.T) {
	path := writeScene(t, sinkUnit())

	out, err := execute(t, "place", path, "--all", "--limit", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "positions for")

	out, err = execute(t, "place", path, "--compare")
	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")

	_, err = execute(t, "place", path, "--type", "shelf")
	assert.Error(t, err)
}

func TestSnapCommand(t *testing.T) {
	path := writeScene(t, sinkUnit())

	out, err := execute(t, "snap", path, "--id", "sink", "--x", "0", "--z", "-1.42", "--write")
	require.NoError(t, err)
	assert.Contains(t, out, "snapped by")

	scene, err := project.LoadScene(path)
	require.NoError(t, err)
	p := scene.Units[0].Pose()
	assert.InDelta(t, 0.0, p.X, 1e-9)
	assert.InDelta(t, -1.5, p.Z, 1e-9)

	_, err = execute(t, "snap", path, "--id", "nope", "--x", "0", "--z", "0")
	assert.ErrorIs(t, err, model.ErrUnknownUnit)
}

func TestSnapCommand_ClampsIntoRoom(t *testing.T) {
	path := writeScene(t, sinkUnit())

	_, err := execute(t, "snap", path, "--id", "sink", "--x", "7.33", "--z", "0.4", "--write")
	require.NoError(t, err)

	scene, err := project.LoadScene(path)
	require.NoError(t, err)
	b := geom.UnitBox(scene.Units[0], scene.Units[0].Pose())
	assert.LessOrEqual(t, b.MaxX, 2.0+1e-9)
	assert.LessOrEqual(t, b.MaxZ, 1.5+1e-9)

	_, err = execute(t, "validate", path)
	assert.NoError(t, err)
}

func TestSnapCommand_RefusesCollidingWrite(t *testing.T) {
	other := sinkUnit()
	other.InstanceID = "drawers-0002"
	other.Label = "Drawers"
	other.Position[0] = 0
	path := writeScene(t, sinkUnit(), other)

	out, err := execute(t, "snap", path, "--id", "drawers", "--x", "-1.8", "--z", "-1.5",
		"--no-wall", "--no-cabinet", "--no-grid", "--write")
	assert.ErrorIs(t, err, errInvalidPlacement)
	assert.Contains(t, out, "invalid: overlaps Sink")

	scene, err := project.LoadScene(path)
	require.NoError(t, err)
	u, ok := scene.Find("drawers-0002")
	require.True(t, ok)
	assert.InDelta(t, 0.0, u.Position[0], 1e-9, "colliding pose must not be saved")

	// Without --write the report is printed and the command succeeds.
	_, err = execute(t, "snap", path, "--id", "drawers", "--x", "-1.8", "--z", "-1.5",
		"--no-wall", "--no-cabinet", "--no-grid")
	assert.NoError(t, err)
}

func TestImportCommand_NewScene(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "units.csv")
	require.NoError(t, os.WriteFile(list, []byte("Label,Type,Width,Height,Depth,Qty\nBase,base,600,720,560,2\n"), 0644))
	scenePath := filepath.Join(dir, "new.yaml")

	out, err := execute(t, "import", scenePath, list, "--wall", "back")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 units")

	scene, err := project.LoadScene(scenePath)
	require.NoError(t, err)
	assert.Equal(t, "new", scene.Name)
	assert.Equal(t, model.DefaultAppConfig().DefaultRoom, scene.Room)
	require.Len(t, scene.Units, 2)

	_, err = execute(t, "validate", scenePath)
	assert.NoError(t, err)
}

func TestExportCommand(t *testing.T) {
	path := writeScene(t, sinkUnit())
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "report.xlsx")
	dxfPath := filepath.Join(dir, "plan.dxf")

	out, err := execute(t, "export", path, "--xlsx", xlsx, "--dxf", dxfPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote report")
	assert.FileExists(t, xlsx)
	assert.FileExists(t, dxfPath)

	_, err = execute(t, "export", path)
	assert.Error(t, err)
}

func TestCatalogCommands(t *testing.T) {
	out, err := execute(t, "catalog", "list", "--type", "tall")
	require.NoError(t, err)
	assert.Contains(t, out, "Tall 600")
	assert.NotContains(t, out, "Base 600")

	backup := filepath.Join(t.TempDir(), "backup.json")
	_, err = execute(t, "catalog", "backup", backup)
	require.NoError(t, err)

	data, err := project.ImportAllData(backup)
	require.NoError(t, err)
	assert.NotEmpty(t, data.Catalog.Presets)
}
