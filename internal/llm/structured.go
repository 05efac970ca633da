package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeObject strictly decodes s as a single JSON object. Leading and
// trailing whitespace is allowed; any other surrounding text is not.
func DecodeObject(s string) (map[string]json.RawMessage, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidOutput)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: null object", ErrInvalidOutput)
	}
	return obj, nil
}

// StripCodeFences removes markdown code fences (```json ... ``` or ``` ... ```),
// keeping the fenced content.
func StripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}

// GreedyObjectSpan returns the text from the first '{' to the last '}',
// or "" when there is no such span.
func GreedyObjectSpan(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// FirstBalancedObject finds the first balanced { ... } block in the text,
// ignoring braces inside JSON strings.
func FirstBalancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && inString {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}
