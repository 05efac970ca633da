package intelligence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alexanderramin/prdchat/internal/domain"
	"github.com/alexanderramin/prdchat/internal/llm"
)

// ParseTier names the strategy that produced a parsed intake reply.
type ParseTier string

const (
	TierDocument  ParseTier = "document"
	TierEmbedded  ParseTier = "embedded"
	TierHeuristic ParseTier = "heuristic"
	TierFallback  ParseTier = "fallback"
)

// FallbackReplyText is shown when a reply cannot be read at all.
const FallbackReplyText = "I'm sorry, I encountered an error. Could you please repeat your last input?"

const (
	collectedDataMarker = "Collected Data:"
	completedMarker     = "Information gathering completed: Yes"
)

// ParseResult is the outcome of ParseIntakeReply. Err holds the reason the
// structured tiers were skipped and is informational only.
type ParseResult struct {
	Response domain.StructuredResponse
	Tier     ParseTier
	Err      error
}

// parseStrategy turns a raw reply into a response or reports no match.
type parseStrategy struct {
	tier  ParseTier
	parse func(raw string) (domain.StructuredResponse, error)
}

// intakeStrategies is tried in order; the first match wins.
var intakeStrategies = []parseStrategy{
	{tier: TierDocument, parse: parseDocument},
	{tier: TierEmbedded, parse: parseEmbedded},
	{tier: TierHeuristic, parse: parseHeuristic},
}

// ParseIntakeReply coerces raw model output into a StructuredResponse.
// It never fails: when no tier yields text, the fallback apology is returned.
func ParseIntakeReply(raw string) ParseResult {
	var lastErr error
	for _, s := range intakeStrategies {
		resp, err := s.parse(raw)
		if err != nil {
			lastErr = err
			continue
		}
		return ParseResult{Response: resp, Tier: s.tier, Err: lastErr}
	}

	if lastErr == nil {
		lastErr = llm.ErrInvalidOutput
	}
	return ParseResult{
		Response: FallbackResponse(),
		Tier:     TierFallback,
		Err:      lastErr,
	}
}

// FallbackResponse is the locally built reply used when parsing fails.
func FallbackResponse() domain.StructuredResponse {
	return domain.NewStructuredResponse(FallbackReplyText, nil, false)
}

func parseDocument(raw string) (domain.StructuredResponse, error) {
	obj, err := llm.DecodeObject(raw)
	if err != nil {
		return domain.StructuredResponse{}, err
	}
	return decodeCandidate(obj)
}

func parseEmbedded(raw string) (domain.StructuredResponse, error) {
	text := llm.StripCodeFences(raw)

	greedy := llm.GreedyObjectSpan(text)
	if greedy == "" {
		return domain.StructuredResponse{}, fmt.Errorf("%w: no JSON object found", llm.ErrInvalidOutput)
	}
	resp, err := parseDocument(greedy)
	if err == nil {
		return resp, nil
	}

	// The greedy span swallows trailing prose that happens to contain a brace.
	balanced := llm.FirstBalancedObject(text)
	if balanced == "" || balanced == greedy {
		return domain.StructuredResponse{}, err
	}
	return parseDocument(balanced)
}

var bulletLine = regexp.MustCompile(`^-\s*([^:]*):(.*)$`)

func parseHeuristic(raw string) (domain.StructuredResponse, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return domain.StructuredResponse{}, fmt.Errorf("%w: empty reply", llm.ErrInvalidOutput)
	}

	var fields map[string]string
	if idx := strings.Index(text, collectedDataMarker); idx >= 0 {
		fields = bulletFields(text[idx+len(collectedDataMarker):])
	}

	completed := strings.Contains(text, completedMarker)
	return domain.NewStructuredResponse(text, fields, completed), nil
}

// bulletFields collects every "- key: value" line in section, including one
// that shares the marker's line. Other lines are skipped and the last write
// for a key wins.
func bulletFields(section string) map[string]string {
	fields := map[string]string{}
	for _, line := range strings.Split(section, "\n") {
		m := bulletLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		key := strings.TrimSpace(strings.ReplaceAll(m[1], "**", ""))
		value := strings.TrimSpace(m[2])
		if key == "" || value == "" {
			continue
		}
		fields[key] = value
	}
	return fields
}

// decodeCandidate validates a decoded object against the reply schema and
// coerces loosely typed values into strings. String values are kept exactly
// as sent, empty ones included.
func decodeCandidate(obj map[string]json.RawMessage) (domain.StructuredResponse, error) {
	rawText, ok := obj["response"]
	if !ok {
		return domain.StructuredResponse{}, fmt.Errorf("%w: missing \"response\"", llm.ErrSchemaViolation)
	}
	text, ok := coerceValue(rawText)
	if !ok {
		return domain.StructuredResponse{}, fmt.Errorf("%w: \"response\" is null", llm.ErrSchemaViolation)
	}

	fields := map[string]string{}
	if rawFields, ok := obj["collected_data"]; ok {
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(rawFields, &entries); err == nil {
			for k, v := range entries {
				if s, ok := coerceValue(v); ok {
					fields[k] = s
				}
			}
		}
	}

	completed := false
	if rawDone, ok := obj["isCompleted"]; ok {
		completed = coerceBool(rawDone)
	}

	return domain.StructuredResponse{Text: text, Fields: fields, Completed: completed}, nil
}

// coerceValue renders a JSON value as a string. Null yields ok=false.
func coerceValue(raw json.RawMessage) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}

	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			s, isStr := item.(string)
			if !isStr {
				return compactJSON(raw), true
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", "), true
	default:
		return compactJSON(raw), true
	}
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func coerceBool(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes":
			return true
		}
	}
	return false
}

// IsMalformed reports whether err describes unreadable model output.
func IsMalformed(err error) bool {
	return errors.Is(err, llm.ErrInvalidOutput) || errors.Is(err, llm.ErrSchemaViolation)
}
