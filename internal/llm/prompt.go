// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/crime-extract/internal/heuristic"
)

// systemPrompt frames every request. DeepSeek's JSON mode requires the word
// "JSON" to appear in the prompt.
const systemPrompt = `You extract structured information from police crime report narratives. You answer with a single JSON object and nothing else.`

// extractionPromptTmpl is the user prompt sent for each narrative. It
// embeds the method vocabulary and the payload schema.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`Extract the following information from the police crime report narrative below.

Crime code: {{.CrimeCode}}{{if .CrimeType}} ({{.CrimeType}}){{end}}

Rules:
- method_of_entry must be one of: {{.Vocabulary}}. Use "other" when the entry method is described but fits none of them. Use null when it is not mentioned.
- suspects is an array of at most 2 short physical descriptions (under 20 words each). Only include suspects explicitly mentioned, for example S1, S2, Suspect 1, Subject 2. Use an empty array when none are mentioned.
- vehicle holds make, model, color and plate. Each is independently optional: use null for anything not mentioned, and keep partial details such as just color and make.
- Do not invent details that are not in the narrative.

Respond with a JSON object matching this JSON schema. Do not wrap it in markdown.

{{.Schema}}

Narrative:
{{.Narrative}}
`))

type promptData struct {
	CrimeCode  string
	CrimeType  string
	Narrative  string
	Vocabulary string
	Schema     string
}

// renderPrompt executes the extraction prompt template for one record.
func renderPrompt(crimeCode, crimeType, narrative string, schema *payloadSchema) (string, error) {
	data := promptData{
		CrimeCode:  crimeCode,
		CrimeType:  crimeType,
		Narrative:  narrative,
		Vocabulary: strings.Join(heuristic.Vocabulary, ", "),
		Schema:     schema.String(),
	}
	var buf bytes.Buffer
	if err := extractionPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
