package api

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Contract schemas shipped under schemas/.
const (
	SchemaProductsList = "products_list"
	SchemaBrandsList   = "brands_list"
	SchemaEnvelope     = "envelope"
	SchemaUserDetail   = "user_detail"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemaMu    sync.Mutex
	schemaCache = map[string]*gojsonschema.Schema{}
)

func loadSchema(name string) (*gojsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if s, ok := schemaCache[name]; ok {
		return s, nil
	}
	raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %q: %w", name, err)
	}
	schemaCache[name] = s
	return s, nil
}

// ValidateSchema checks resp's body against the named contract schema.
func ValidateSchema(resp *Response, name string) error {
	if resp == nil {
		return fmt.Errorf("schema %s: no response", name)
	}
	return ValidateJSON(resp.Body, name)
}

// ValidateJSON checks a raw document against the named contract schema.
func ValidateJSON(doc []byte, name string) error {
	schema, err := loadSchema(name)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			errs = append(errs, e.String())
		}
		return fmt.Errorf("response does not match %s schema: %s", name, strings.Join(errs, "; "))
	}
	return nil
}
