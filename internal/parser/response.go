package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractJSONObject pulls the JSON object out of a model reply, tolerating
// code fences and surrounding prose.
func ExtractJSONObject(text string) (json.RawMessage, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in model output: %s", Truncate(text, 200))
	}
	s = s[start : end+1]
	if !gjson.Valid(s) || !gjson.Parse(s).IsObject() {
		return nil, fmt.Errorf("invalid JSON object in model output: %s", Truncate(text, 200))
	}
	return json.RawMessage(s), nil
}

// Truncate shortens s to maxLen bytes for log and error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
