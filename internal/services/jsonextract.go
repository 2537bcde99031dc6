package services

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls the first JSON value out of free-form LLM output. The
// text may wrap the value in a markdown code fence, optionally tagged
// "json", and may surround the fence with prose. Returns ok=false when no
// parseable value remains; callers substitute their own documented
// fallback. Shape validation (object vs array) is also the caller's job.
//
// Nested fences are not supported: the content between the first fence
// pair is taken as-is.
func ExtractJSON(raw string) (json.RawMessage, bool) {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		parts := strings.Split(cleaned, "```")
		if len(parts) < 2 {
			return nil, false
		}
		cleaned = parts[1]
		// Strip a leading language tag like "json"
		cleaned = strings.TrimPrefix(cleaned, "json")
	}
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return nil, false
	}

	var value json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return nil, false
	}
	return value, true
}
