package devicecore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ddfFile is the on-disk shape of one device description file: which
// manufacturer/model it matches, and the per-item read behavior it
// contributes.
type ddfFile struct {
	Manufacturer string        `yaml:"manufacturer"`
	Model        string        `yaml:"model"`
	Items        []ddfItemFile `yaml:"items"`
}

type ddfItemFile struct {
	Suffix         string `yaml:"suffix"`
	ReadParameters string `yaml:"read_parameters"`
}

// LoadDDFDir reads every *.yaml file under dir into a *DDFCatalog.
// Returns an empty, usable catalog (not an error) if dir doesn't exist or
// has no matching files — mirrors coordinator.LoadDeviceDir's tolerance
// for a not-yet-populated definitions directory.
func LoadDDFDir(dir string, logger *slog.Logger) (*DDFCatalog, error) {
	cat := NewDDFCatalog()
	if dir == "" {
		return cat, nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return cat, fmt.Errorf("glob ddf dir: %w", err)
	}
	if len(matches) == 0 {
		logger.Info("no DDF files found", "dir", dir)
		return cat, nil
	}

	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return cat, fmt.Errorf("read %s: %w", path, err)
		}
		var f ddfFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return cat, fmt.Errorf("parse %s: %w", path, err)
		}
		items := make([]DDFItem, 0, len(f.Items))
		for _, it := range f.Items {
			items = append(items, DDFItem{
				Suffix:         it.Suffix,
				ReadParameters: ReadParameters(it.ReadParameters),
			})
		}
		cat.add(f.Manufacturer, f.Model, items)
		logger.Info("loaded DDF file", "path", filepath.Base(path),
			"manufacturer", f.Manufacturer, "model", f.Model, "items", len(items))
	}

	logger.Info("DDF catalog loaded", "files", len(matches), "definitions", cat.len())
	return cat, nil
}
