// Package llmjson implements the fenced-JSON extraction and loose
// string-or-list decoding rule shared by the LLM Re-ranker (internal/rerank)
// and the Conversational Filter (internal/convfilter): both ask a chat
// model for a JSON object and must tolerate it wrapping the object in a
// ```json fenced code block, or returning prose the model refused to
// format at all.
package llmjson

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencedBlock matches a triple-backtick fenced code block, optionally
// tagged "json", and captures its inner content.
var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")

// Extract returns the JSON payload within raw: if raw contains a fenced
// code block, the first one's contents; otherwise raw itself, trimmed.
// It does not validate that the result parses as JSON. Callers still
// need to handle a decode failure (e.g. the model refused entirely).
func Extract(raw string) string {
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// StringOrList decodes a JSON value that may be either a JSON array of
// strings or a single comma-separated string, normalizing both into a
// []string. This models the LLM's tendency to return `"Go, Python"`
// where the schema calls for a list: normalize at the parser boundary,
// never leak the union past it.
type StringOrList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringOrList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if strings.TrimSpace(str) == "" {
		*s = nil
		return nil
	}
	parts := strings.Split(str, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*s = out
	return nil
}
