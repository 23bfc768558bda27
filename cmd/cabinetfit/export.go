package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/CabinetFit/internal/export"
)

var (
	exportXLSX   string
	exportDXF    string
	exportPDF    string
	exportLabels string
)

var exportCmd = &cobra.Command{
	Use:   "export <scene>",
	Short: "Write an XLSX report, DXF plan, PDF plan or labels",
	Long: `Export a scene. Each flag names an output file; any combination may be
given in one run.

  --xlsx    layout report with a Units and an Issues sheet
  --dxf     top-view plan in millimeters (layers ROOM, BASE, WALL, TALL, LABELS)
  --pdf     printable plan with a unit table
  --labels  QR-coded installer labels on Avery 5160 sheets

Examples:
  cabinetfit export kitchen.yaml --xlsx report.xlsx
  cabinetfit export kitchen.yaml --dxf plan.dxf --pdf plan.pdf --labels labels.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportXLSX, "xlsx", "", "Write the layout report to this XLSX file")
	f.StringVar(&exportDXF, "dxf", "", "Write the plan to this DXF file")
	f.StringVar(&exportPDF, "pdf", "", "Write the plan to this PDF file")
	f.StringVar(&exportLabels, "labels", "", "Write installer labels to this PDF file")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportXLSX == "" && exportDXF == "" && exportPDF == "" && exportLabels == "" {
		return fmt.Errorf("nothing to export: give at least one of --xlsx, --dxf, --pdf, --labels")
	}

	scene, err := loadScene(args[0])
	if err != nil {
		return err
	}
	report, err := validate(scene)
	if err != nil {
		return err
	}
	if !report.Valid {
		logger.Warn("exporting a layout with issues", zap.Int("issues", len(report.Issues)))
	}

	out := cmd.OutOrStdout()
	outputs := []struct {
		path  string
		kind  string
		write func(string) error
	}{
		{exportXLSX, "report", func(p string) error { return export.WriteLayoutReport(p, scene, report) }},
		{exportDXF, "plan", func(p string) error { return export.WritePlanDXF(p, scene) }},
		{exportPDF, "plan", func(p string) error { return export.ExportPlanPDF(p, scene, report) }},
		{exportLabels, "labels", func(p string) error { return export.ExportLabels(p, scene, report) }},
	}
	for _, o := range outputs {
		if o.path == "" {
			continue
		}
		if err := o.write(o.path); err != nil {
			return fmt.Errorf("failed to export %s: %w", o.kind, err)
		}
		fmt.Fprintf(out, "wrote %s to %s\n", o.kind, o.path)
	}
	return nil
}
