package bedrock

import (
	"encoding/json"
	"errors"
	"strings"
)

// extractJSONObject pulls the JSON object out of free-form model text. Models
// are instructed to return bare JSON but still wrap it in prose or markdown
// code fences often enough that the extraction has to defend against both:
// fences are stripped, then the span from the first '{' to the last '}' is
// parsed. Validation of the object's shape happens separately.
func extractJSONObject(text string) (json.RawMessage, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return nil, errors.New("no JSON object found in model output")
	}

	candidate := cleaned[start : end+1]
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil, err
	}
	return json.RawMessage(candidate), nil
}
