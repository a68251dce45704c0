package llm

import (
	"encoding/json"
	"strings"

	"github.com/pdiddy/crime-extract/pkg/types"
)

// parseFields turns model output into raw Fields. Code fences and prose
// around the JSON object are tolerated; anything else is a schema error.
func parseFields(content string, schema *payloadSchema) (types.Fields, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return types.Fields{}, schemaErr("empty model output")
	}

	var doc any
	var raw string
	for _, candidate := range jsonCandidates(content) {
		if err := json.Unmarshal([]byte(candidate), &doc); err == nil {
			raw = candidate
			break
		}
	}
	if raw == "" {
		return types.Fields{}, schemaErr("model output is not JSON: %.80q", content)
	}
	if _, ok := doc.(map[string]any); !ok {
		return types.Fields{}, schemaErr("model output is %T, want a JSON object", doc)
	}
	if err := schema.Validate(doc); err != nil {
		return types.Fields{}, schemaErr("model output does not match schema: %v", err)
	}

	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return types.Fields{}, schemaErr("decoding payload: %v", err)
	}
	return p.fields(), nil
}

func (p payload) fields() types.Fields {
	f := types.Fields{
		MethodOfEntry: deref(p.MethodOfEntry),
		Vehicle: types.Vehicle{
			Make:  deref(p.Vehicle.Make),
			Model: deref(p.Vehicle.Model),
			Color: deref(p.Vehicle.Color),
			Plate: deref(p.Vehicle.Plate),
		},
	}
	for _, s := range p.Suspects {
		if v := deref(s); v != "" {
			f.Suspects = append(f.Suspects, v)
		}
	}
	return f
}

func deref(s *string) string {
	if s == nil {
		return types.NoMatch
	}
	return strings.TrimSpace(*s)
}

// jsonCandidates lists the strings worth trying to decode, most literal first.
func jsonCandidates(content string) []string {
	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if extracted := extractObject(content); extracted != "" && extracted != content {
		candidates = append(candidates, extracted)
	}
	return candidates
}

// stripCodeFences removes a leading ``` or ```json line and a trailing ``` line.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}

	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// extractObject returns the span from the first '{' to the last '}'.
func extractObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}
