package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// payload is the JSON object the model is instructed to return.
type payload struct {
	MethodOfEntry *string        `json:"method_of_entry" jsonschema_description:"How the suspect got in. One of the listed vocabulary labels or null."`
	Suspects      []*string      `json:"suspects" jsonschema_description:"Brief physical descriptions of explicitly mentioned suspects (S1 and S2 etc). At most two entries."`
	Vehicle       payloadVehicle `json:"vehicle" jsonschema_description:"The suspect vehicle. Every attribute is independently optional."`
}

type payloadVehicle struct {
	Make  *string `json:"make" jsonschema_description:"Manufacturer such as Toyota."`
	Model *string `json:"model" jsonschema_description:"Model name such as Camry."`
	Color *string `json:"color" jsonschema_description:"Body color."`
	Plate *string `json:"plate" jsonschema_description:"License plate text."`
}

const (
	propertiesKey = "properties"
	typeKey       = "type"
	itemsKey      = "items"
	schemaURL     = "payload.schema.json"
)

// payloadSchema holds the reflected schema and its compiled validator.
type payloadSchema struct {
	raw       []byte
	validator *sjsonschema.Schema
}

// newPayloadSchema reflects payload into a JSON schema where every value
// below the root object may be null, then compiles it for validation.
func newPayloadSchema() (*payloadSchema, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		Anonymous:                  true,
	}
	b, err := json.Marshal(reflector.Reflect(&payload{}))
	if err != nil {
		return nil, fmt.Errorf("marshaling payload schema: %w", err)
	}

	var root map[string]any
	if err := json.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("decoding payload schema: %w", err)
	}
	makeChildrenNullable(root)

	raw, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding payload schema: %w", err)
	}

	compiler := sjsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("loading payload schema: %w", err)
	}
	validator, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling payload schema: %w", err)
	}
	return &payloadSchema{raw: raw, validator: validator}, nil
}

// String returns the indented schema document embedded in the prompt.
func (s *payloadSchema) String() string {
	return string(s.raw)
}

// Validate checks a decoded JSON document against the schema.
func (s *payloadSchema) Validate(doc any) error {
	return s.validator.Validate(doc)
}

func makeChildrenNullable(node map[string]any) {
	if props, ok := node[propertiesKey].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				allowNull(pm)
				makeChildrenNullable(pm)
			}
		}
	}
	if items, ok := node[itemsKey].(map[string]any); ok {
		allowNull(items)
		makeChildrenNullable(items)
	}
}

func allowNull(node map[string]any) {
	switch t := node[typeKey].(type) {
	case string:
		if t != "null" {
			node[typeKey] = []any{t, "null"}
		}
	case []any:
		for _, v := range t {
			if v == "null" {
				return
			}
		}
		node[typeKey] = append(t, "null")
	}
}
