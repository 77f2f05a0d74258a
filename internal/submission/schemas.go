package submission

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/garnizeh/empanel/pkg/models"
	"github.com/qri-io/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// loadSchemas compiles the embedded per-department form schemas. Each
// department's payload is validated against its own schema at the boundary;
// the repository stores the validated payload as self-describing JSON.
func loadSchemas() (map[models.Department]*jsonschema.Schema, error) {
	files := map[models.Department]string{
		models.DepartmentCivil:      "schemas/civil.json",
		models.DepartmentElectrical: "schemas/electrical.json",
		models.DepartmentMechanical: "schemas/mechanical.json",
	}

	out := make(map[models.Department]*jsonschema.Schema, len(files))
	for dept, path := range files {
		b, err := schemaFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", path, err)
		}

		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", path, err)
		}

		out[dept] = rs
	}

	return out, nil
}
