// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaID is the $id of the import file schema.
const SchemaID = "https://shoplist.dev/schemas/import-record.schema.json"

// JSONSchemaExtend loosens price and is_purchased to the forms the importer
// accepts.
func (FileRecord) JSONSchemaExtend(s *jsonschema.Schema) {
	s.Properties.Set("price", &jsonschema.Schema{
		Description: "Price between 0 and 9999.99 with at most three fraction digits. Strings may use a decimal comma.",
		AnyOf: []*jsonschema.Schema{
			{Type: "number", Minimum: json.Number("0"), Maximum: json.Number("9999.99")},
			{Type: "string", Pattern: `^\s*[0-9]+([.,][0-9]{1,3})?\s*$`},
		},
	})
	s.Properties.Set("is_purchased", &jsonschema.Schema{
		Description: "true, or one of 1, yes, y in any case. Anything else is false.",
		AnyOf: []*jsonschema.Schema{
			{Type: "boolean"},
			{Type: "string"},
			{Type: "number"},
		},
	})
}

// GenerateRecordSchema returns the JSON Schema of an import file: an array of
// FileRecord objects.
func GenerateRecordSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	record := r.Reflect(&FileRecord{})
	record.Version = ""

	schema := &jsonschema.Schema{
		Version:     jsonschema.Version,
		ID:          jsonschema.ID(SchemaID),
		Title:       "Shoplist import file",
		Description: "Array of shopping items accepted by shoplist import",
		Type:        "array",
		Items:       record,
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_GENERATE_FAILED").Wrap(err)
	}
	return data, nil
}

var compiledSchema = sync.OnceValues(func() (*jschema.Schema, error) {
	data, err := GenerateRecordSchema()
	if err != nil {
		return nil, err
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("operation", "parse schema").Wrap(err)
	}
	c := jschema.NewCompiler()
	if err := c.AddResource(SchemaID, doc); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("operation", "add schema resource").Wrap(err)
	}
	sch, err := c.Compile(SchemaID)
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("operation", "compile schema").Wrap(err)
	}
	return sch, nil
})

// CheckPayload validates a JSON import file strictly against the schema.
// Import itself is more forgiving and skips bad records instead.
func CheckPayload(r io.Reader) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	doc, err := jschema.UnmarshalJSON(r)
	if err != nil {
		return oops.Code("IMPORT_MALFORMED_PAYLOAD").
			With("format", string(FormatJSON)).
			Wrapf(err, "payload is not valid JSON")
	}
	if err := sch.Validate(doc); err != nil {
		return oops.Code("SCHEMA_VALIDATION_FAILED").Wrap(err)
	}
	return nil
}
