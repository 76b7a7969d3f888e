package deck

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/jacoelho/xsd"
)

//go:embed schemas/*.xsd
var schemasFS embed.FS

var (
	schemasOnce sync.Once
	schemasErr  error
	schemas     map[string]*xsd.Schema
)

// loadSchemas compiles the embedded deck schemas once per process.
func loadSchemas() error {
	schemasOnce.Do(func() {
		schemas = make(map[string]*xsd.Schema, 3)
		for _, file := range []string{MaterialsFile, GeometryFile, SettingsFile} {
			location := "schemas/" + file[:len(file)-len(".xml")] + ".xsd"
			schema, err := xsd.Load(schemasFS, location)
			if err != nil {
				schemasErr = fmt.Errorf("failed to load embedded schema %s: %w", location, err)
				return
			}
			schemas[file] = schema
		}
	})
	return schemasErr
}

// validateDocument checks a rendered deck against the schema matching its
// file name.
func validateDocument(file string, body []byte) error {
	if err := loadSchemas(); err != nil {
		return err
	}
	schema, ok := schemas[file]
	if !ok {
		return fmt.Errorf("no schema registered for %s", file)
	}
	return schema.Validate(bytes.NewReader(body))
}
