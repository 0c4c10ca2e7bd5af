package survey

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://survey.json"

// layoutSchema describes the stored survey document.
var layoutSchema = `{
  "type": "object",
  "required": ["pages"],
  "properties": {
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "elements"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "elements": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "type", "title", "name"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "type": {"enum": [` + quotedTypes() + `]},
                "title": {"type": "string"},
                "name": {"type": "string", "minLength": 1},
                "isRequired": {"type": "boolean"},
                "choices": {"type": "array", "items": {"type": "string"}},
                "properties": {"type": "object"}
              }
            }
          }
        }
      }
    }
  }
}`

var compileLayout = sync.OnceValues(func() (*jsonschema.Schema, error) {
	def, err := jsonschema.UnmarshalJSON(strings.NewReader(layoutSchema))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, def); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

func quotedTypes() string {
	parts := make([]string, len(ElementTypes))
	for i, t := range ElementTypes {
		parts[i] = `"` + string(t) + `"`
	}
	return strings.Join(parts, ", ")
}

// ParseSchema validates raw against the survey layout and decodes it.
func ParseSchema(raw []byte) (Schema, error) {
	compiled, err := compileLayout()
	if err != nil {
		return Schema{}, fmt.Errorf("compile survey schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return Schema{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if err := compiled.Validate(doc); err != nil {
		return Schema{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	var s Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return Schema{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return s, nil
}
