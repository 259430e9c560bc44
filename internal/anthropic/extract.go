package anthropic

import (
	"encoding/json"
	"strings"
)

// ExtractJSON parses the model's raw text reply into a generic object.
// The model is instructed to emit bare JSON but sometimes wraps it in code
// fences or surrounding prose, so after a direct parse fails the substring
// between the first '{' and the last '}' is tried. Returns nil when no
// syntactically valid JSON object can be found; validity beyond syntax is
// the caller's concern.
func ExtractJSON(text string) map[string]any {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if obj := tryParse(text); obj != nil {
		return obj
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil
	}
	return tryParse(text[start : end+1])
}

func tryParse(s string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil
	}
	return obj
}
