package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/piwi3910/CabinetFit/internal/collision"
	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/piwi3910/CabinetFit/internal/project"
	"github.com/piwi3910/CabinetFit/internal/snap"
	"github.com/piwi3910/CabinetFit/internal/spatial"
)

var (
	snapID      string
	snapX       float64
	snapZ       float64
	snapRot     float64
	snapNearest bool
	snapPoints  bool
	snapNoWall  bool
	snapNoCab   bool
	snapNoGrid  bool
	snapWrite   bool
)

var snapCmd = &cobra.Command{
	Use:   "snap <scene>",
	Short: "Snap a unit to walls, neighbors and the grid",
	Long: `Move a unit of the scene to x/z (meters) and rotation (degrees) as if it had
been dragged there, and print the pose the snap chain corrects it to.
Snappers run in order wall, cabinet, grid.

Examples:
  cabinetfit snap kitchen.yaml --id 3f2a --x -1.9 --z -1.4
  cabinetfit snap kitchen.yaml --id 3f2a --x 0.3 --z -1.2 --nearest
  cabinetfit snap kitchen.yaml --id 3f2a --x 0.3 --z -1.2 --no-grid --write`,
	Args: cobra.ExactArgs(1),
	RunE: runSnap,
}

func init() {
	f := snapCmd.Flags()
	f.StringVar(&snapID, "id", "", "Instance id (or unique id prefix) of the unit to move")
	f.Float64Var(&snapX, "x", 0, "Target X in meters")
	f.Float64Var(&snapZ, "z", 0, "Target Z in meters")
	f.Float64Var(&snapRot, "rot", math.NaN(), "Target rotation in degrees (default: keep)")
	f.BoolVar(&snapNearest, "nearest", false, "Use only the snapper that moves the unit least")
	f.BoolVar(&snapPoints, "points", false, "Print snap targets as JSON")
	f.BoolVar(&snapNoWall, "no-wall", false, "Disable wall snapping")
	f.BoolVar(&snapNoCab, "no-cabinet", false, "Disable cabinet snapping")
	f.BoolVar(&snapNoGrid, "no-grid", false, "Disable grid snapping")
	f.BoolVar(&snapWrite, "write", false, "Save the snapped pose to the scene file")
	_ = snapCmd.MarkFlagRequired("id")
}

var errInvalidPlacement = errors.New("placement collides with other units")

func runSnap(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(args[0])
	if err != nil {
		return err
	}
	u, err := findUnit(scene, snapID)
	if err != nil {
		return err
	}
	ix, err := scene.BuildIndex(appConfig.CellSize, spatial.WithLogger(logger))
	if err != nil {
		return err
	}
	v, err := collision.New(ix, scene.Room, collision.WithLogger(logger))
	if err != nil {
		return err
	}

	sys := snap.NewSystem(appConfig.Snap, snap.WithLogger(logger))
	if snapNoWall {
		sys.SetEnabled(snap.KindWall, false)
	}
	if snapNoCab {
		sys.SetEnabled(snap.KindCabinet, false)
	}
	if snapNoGrid {
		sys.SetEnabled(snap.KindGrid, false)
	}

	pose := u.Pose()
	pose.X, pose.Z = snapX, snapZ
	if !math.IsNaN(snapRot) {
		pose.Rotation = snapRot * math.Pi / 180
	}
	ctx := snap.Context{
		Index:               ix,
		Room:                scene.Room,
		ExcludeID:           u.InstanceID,
		RotationJustChanged: !math.IsNaN(snapRot),
	}

	out := cmd.OutOrStdout()
	if snapPoints {
		data, err := json.MarshalIndent(sys.Visualization(pose, u, ctx), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	sn := &cliSnapper{sys: sys, nearest: snapNearest}
	placed := v.CheckPlacement(u, pose, u.InstanceID, collision.CheckOptions{
		Snap:    true,
		Snapper: sn,
		Context: ctx,
	})

	switch {
	case !placed.Snapped:
		fmt.Fprintf(out, "%s: no snap, %s\n", u.DisplayName(), formatPose(placed.Pose))
	case snapNearest:
		fmt.Fprintf(out, "%s: %s snap, %s\n", u.DisplayName(), placed.SnapKind, formatPose(placed.Pose))
	default:
		fmt.Fprintf(out, "%s: snapped by %v, %s\n", u.DisplayName(), sn.last.Applied, formatPose(placed.Pose))
	}
	if placed.Pose != sn.last.Pose {
		fmt.Fprintln(out, "  clamped into the room")
	}
	if !placed.Valid {
		names := lo.Map(placed.Collisions, func(o model.Unit, _ int) string { return o.DisplayName() })
		fmt.Fprintf(out, "  invalid: overlaps %s\n", strings.Join(names, ", "))
	}

	if !snapWrite {
		return nil
	}
	if !placed.Valid {
		return fmt.Errorf("%w: not saving %s", errInvalidPlacement, u.DisplayName())
	}
	if err := scene.Update(u.WithPose(placed.Pose)); err != nil {
		return err
	}
	return project.SaveScene(args[0], scene)
}

// cliSnapper runs either the full snap chain or only the nearest snapper,
// and keeps the last outcome for reporting.
type cliSnapper struct {
	sys     *snap.System
	nearest bool
	last    snap.Outcome
}

func (c *cliSnapper) Snap(pose model.Pose, u model.Unit, ctx snap.Context) snap.Outcome {
	if !c.nearest {
		c.last = c.sys.Snap(pose, u, ctx)
		return c.last
	}
	c.last = snap.Outcome{Pose: pose}
	if r, kind, ok := c.sys.FindNearestSnap(pose, u, ctx); ok {
		c.last = snap.Outcome{Pose: r.Pose, Snapped: true, Strong: r.Strong, Kind: kind, Applied: []snap.Kind{kind}}
	}
	return c.last
}

// findUnit looks a unit up by id, accepting a unique id prefix.
func findUnit(scene project.Scene, id string) (model.Unit, error) {
	if u, ok := scene.Find(model.UnitID(id)); ok {
		return u, nil
	}
	match := lo.Filter(scene.Units, func(u model.Unit, _ int) bool {
		return id != "" && strings.HasPrefix(string(u.InstanceID), id)
	})
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return model.Unit{}, fmt.Errorf("%w: %s", model.ErrUnknownUnit, id)
	}
	return model.Unit{}, fmt.Errorf("unit id prefix %q is ambiguous (%d matches)", id, len(match))
}
