package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/piwi3910/CabinetFit/internal/project"
)

var catalogType string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List or import unit presets",
	Long: `Manage the unit catalog stored in ~/.cabinetfit/catalog.yaml. The catalog
is created with standard base, wall and tall units on first use.

Examples:
  cabinetfit catalog list --type wall
  cabinetfit catalog import presets.yaml
  cabinetfit catalog backup backup.json
  cabinetfit catalog restore backup.json`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog presets",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge presets from a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogImport,
}

var catalogBackupCmd = &cobra.Command{
	Use:   "backup <file>",
	Short: "Save the config and catalog to one file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogBackup,
}

var catalogRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore the config and catalog from a backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogRestore,
}

func init() {
	catalogListCmd.Flags().StringVar(&catalogType, "type", "", "Only list presets of this type: base, wall, tall")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogBackupCmd)
	catalogCmd.AddCommand(catalogRestoreCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	catalog, _, err := project.LoadOrCreateCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	presets := catalog.Presets
	if catalogType != "" {
		category, err := model.ParseCategory(catalogType)
		if err != nil {
			return err
		}
		presets = catalog.ByCategory(category)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %-20s %-5s %8s %8s %8s\n", "ID", "Name", "Type", "W (mm)", "H (mm)", "D (mm)")
	for _, p := range presets {
		fmt.Fprintf(out, "%-10s %-20s %-5s %8.0f %8.0f %8.0f\n", p.ID, p.Name, p.Type, p.Width, p.Height, p.Depth)
	}
	return nil
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	catalog, path, err := project.LoadOrCreateCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	before := len(catalog.Presets)
	catalog, err = project.ImportCatalog(args[0], catalog)
	if err != nil {
		return fmt.Errorf("failed to import presets: %w", err)
	}
	if err := project.SaveCatalog(path, catalog); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %d presets\n", len(catalog.Presets)-before)
	return nil
}

func runCatalogBackup(cmd *cobra.Command, args []string) error {
	catalog, _, err := project.LoadOrCreateCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := project.ExportAllData(args[0], appConfig, catalog); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote backup to %s\n", args[0])
	return nil
}

func runCatalogRestore(cmd *cobra.Command, args []string) error {
	backup, err := project.ImportAllData(args[0])
	if err != nil {
		return err
	}

	configPath := project.ResolveConfigPath(flagConfig)
	if configPath == "" {
		configPath = project.DefaultConfigPath()
	}
	if err := project.SaveAppConfig(configPath, backup.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	catalogPath, err := project.DefaultCatalogPath()
	if err != nil {
		return err
	}
	if err := project.SaveCatalog(catalogPath, backup.Catalog); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "restored %d presets from backup of %s\n", len(backup.Catalog.Presets), backup.CreatedAt)
	return nil
}
