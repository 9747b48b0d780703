package router

import (
	"encoding/json"
	"strings"
)

// StripMarkdownFence removes a leading/trailing ``` or ```json code fence
// from model output, a common quirk of chat-style completions (spec.md
// §4.7 "content post-processing").
func StripMarkdownFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(s[:nl])
		if firstLine == "" || !strings.Contains(firstLine, " ") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseJSONContent strips any markdown fence and attempts to decode the
// remaining content as JSON into out, returning false when it is not valid
// JSON (the caller should then treat content as plain narrative text).
func ParseJSONContent(content string, out any) bool {
	stripped := StripMarkdownFence(content)
	if stripped == "" {
		return false
	}
	return json.Unmarshal([]byte(stripped), out) == nil
}
