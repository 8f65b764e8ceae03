package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractJSON locates a JSON object in free-form model output and decodes it
// into v. Models frequently wrap their answer in markdown fences or surround
// it with prose, so the raw text is cleaned before decoding.
func ExtractJSON(text string, v any) error {
	cleaned := cleanJSON(text)
	if cleaned == "" {
		return eris.Wrap(ErrExtraction, "no JSON object in completion")
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return eris.Wrapf(ErrExtraction, "decode completion: %v", err)
	}
	return nil
}

// cleanJSON strips markdown code fences and trims to the outermost brace
// pair. Returns "" when no object boundary can be found.
func cleanJSON(text string) string {
	cleaned := strings.TrimSpace(text)

	if idx := strings.Index(cleaned, "```json"); idx != -1 {
		cleaned = cleaned[idx+len("```json"):]
		if end := strings.Index(cleaned, "```"); end != -1 {
			cleaned = cleaned[:end]
		}
	} else if idx := strings.Index(cleaned, "```"); idx != -1 {
		cleaned = cleaned[idx+len("```"):]
		if end := strings.Index(cleaned, "```"); end != -1 {
			cleaned = cleaned[:end]
		}
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return strings.TrimSpace(cleaned[start : end+1])
}
