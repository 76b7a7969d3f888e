package deck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/critgridgo/internal/ctxlog"
)

// Deck file names expected by the solver in its working directory.
const (
	MaterialsFile = "materials.xml"
	GeometryFile  = "geometry.xml"
	SettingsFile  = "settings.xml"
)

// Write validates the case, renders the three input decks, checks each
// against its embedded schema, and writes them into dir.
func (c *Case) Write(ctx context.Context, dir string, rs RunSettings) error {
	logger := ctxlog.FromContext(ctx)

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid case: %w", err)
	}

	materials, err := c.MaterialsXML()
	if err != nil {
		return err
	}
	geometry, err := c.GeometryXML()
	if err != nil {
		return err
	}
	settings, err := c.SettingsXML(rs)
	if err != nil {
		return err
	}

	decks := []struct {
		file string
		body []byte
	}{
		{MaterialsFile, materials},
		{GeometryFile, geometry},
		{SettingsFile, settings},
	}

	for _, d := range decks {
		if err := validateDocument(d.file, d.body); err != nil {
			return fmt.Errorf("generated %s failed schema validation: %w", d.file, err)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create deck directory '%s': %w", dir, err)
	}
	for _, d := range decks {
		path := filepath.Join(dir, d.file)
		if err := os.WriteFile(path, d.body, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", d.file, err)
		}
		logger.Debug("Deck written.", "path", path, "bytes", len(d.body))
	}
	return nil
}
