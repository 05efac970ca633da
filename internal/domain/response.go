package domain

// StructuredResponse is one model reply coerced into the intake record.
// Fields never holds a partial entry: every item carries both a key and a value.
type StructuredResponse struct {
	Text      string            `json:"response"`
	Fields    map[string]string `json:"collected_data"`
	Completed bool              `json:"isCompleted"`
}

// NewStructuredResponse builds a response from mined fields, dropping entries
// with an empty key or value. Decoded JSON replies are built directly.
func NewStructuredResponse(text string, fields map[string]string, completed bool) StructuredResponse {
	clean := make(map[string]string, len(fields))
	for k, v := range fields {
		if k == "" || v == "" {
			continue
		}
		clean[k] = v
	}
	return StructuredResponse{Text: text, Fields: clean, Completed: completed}
}
