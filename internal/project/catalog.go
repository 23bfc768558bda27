package project

import (
	"os"
	"path/filepath"

	"github.com/piwi3910/CabinetFit/internal/model"
)

// DefaultCatalogPath returns the default file path for the unit catalog.
// This is located at ~/.cabinetfit/catalog.yaml.
func DefaultCatalogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cabinetfit", "catalog.yaml"), nil
}

// SaveCatalog writes the catalog to the specified file.
// It creates parent directories if they do not exist.
func SaveCatalog(path string, c model.Catalog) error {
	return writeFile(path, c)
}

// LoadCatalog reads the catalog from the specified file.
// If the file does not exist, it returns the default catalog and saves it.
func LoadCatalog(path string) (model.Catalog, error) {
	var c model.Catalog
	if err := readFile(path, &c); err != nil {
		if os.IsNotExist(err) {
			c = model.DefaultCatalog()
			if saveErr := SaveCatalog(path, c); saveErr != nil {
				return c, saveErr
			}
			return c, nil
		}
		return model.Catalog{}, err
	}
	return c, nil
}

// LoadOrCreateCatalog loads the catalog from the default path.
// If the file does not exist, it creates one with default entries.
func LoadOrCreateCatalog() (model.Catalog, string, error) {
	path, err := DefaultCatalogPath()
	if err != nil {
		return model.DefaultCatalog(), "", err
	}
	c, err := LoadCatalog(path)
	return c, path, err
}

// ImportCatalog imports presets from a user-specified file, merging them
// into the existing catalog. Duplicate IDs are skipped.
func ImportCatalog(path string, existing model.Catalog) (model.Catalog, error) {
	var imported model.Catalog
	if err := readFile(path, &imported); err != nil {
		return existing, err
	}

	ids := make(map[string]bool, len(existing.Presets))
	for _, p := range existing.Presets {
		ids[p.ID] = true
	}
	for _, p := range imported.Presets {
		if !ids[p.ID] {
			existing.Presets = append(existing.Presets, p)
			ids[p.ID] = true
		}
	}
	return existing, nil
}
