package domain

// Message is one entry of a drafting chat.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// DraftSession is the PRD drafting chat. Context is a frozen copy of the
// intake's collected profile and is never written after construction.
type DraftSession struct {
	Messages []Message         `json:"messages"`
	Context  map[string]string `json:"company_info"`
}

// NewDraftSession freezes a copy of collected as the drafting context.
func NewDraftSession(collected map[string]string) *DraftSession {
	return &DraftSession{Context: CopyFields(collected)}
}

// Append records a user message and the assistant reply together.
func (d *DraftSession) Append(userText, assistantText string) {
	d.Messages = append(d.Messages,
		Message{Role: MessageUser, Content: userText},
		Message{Role: MessageAssistant, Content: assistantText},
	)
}

// LatestReply returns the most recent assistant message, if any.
func (d *DraftSession) LatestReply() (string, bool) {
	for i := len(d.Messages) - 1; i >= 0; i-- {
		if d.Messages[i].Role == MessageAssistant {
			return d.Messages[i].Content, true
		}
	}
	return "", false
}

// Clone returns a copy that shares the frozen Context.
func (d *DraftSession) Clone() *DraftSession {
	msgs := make([]Message, len(d.Messages))
	copy(msgs, d.Messages)
	return &DraftSession{Messages: msgs, Context: d.Context}
}
