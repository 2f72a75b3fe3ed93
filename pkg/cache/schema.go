package cache

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var documentSchema []byte

// compileSchema parses the embedded GitMetrics schema.
func compileSchema() (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(documentSchema))
	if err != nil {
		return nil, fmt.Errorf("compile metrics schema: %w", err)
	}

	return schema, nil
}

// validateDocument checks raw JSON against schema. Violations are reported as
// ErrInvalidDocument.
func validateDocument(schema *gojsonschema.Schema, raw []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		problems = append(problems, resultErr.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(problems, "; "))
}
