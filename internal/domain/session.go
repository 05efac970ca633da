package domain

// Turn is a single entry in the intake conversation log.
// Fields and Completed are only meaningful on AI turns.
type Turn struct {
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Fields    map[string]string `json:"collected_data,omitempty"`
	Completed bool              `json:"isCompleted,omitempty"`
}

// SessionState holds the intake conversation for one session.
//
// History is append-only and chronological. Collected mirrors the fields of
// the most recent AI turn, or accumulates them when MergeCollected is set.
// Active starts true and is latched to false by the first completed AI turn.
type SessionState struct {
	History        []Turn            `json:"history"`
	Collected      map[string]string `json:"collected_data"`
	Active         bool              `json:"active"`
	MergeCollected bool              `json:"-"`
}

// NewSessionState returns an empty, active session.
func NewSessionState(merge bool) *SessionState {
	return &SessionState{
		Collected:      map[string]string{},
		Active:         true,
		MergeCollected: merge,
	}
}

// AppendHuman records a user turn.
func (s *SessionState) AppendHuman(text string) {
	s.History = append(s.History, Turn{Role: RoleHuman, Content: text})
}

// AppendAI records a model turn and updates Collected and Active.
func (s *SessionState) AppendAI(resp StructuredResponse) {
	s.History = append(s.History, Turn{
		Role:      RoleAI,
		Content:   resp.Text,
		Fields:    CopyFields(resp.Fields),
		Completed: resp.Completed,
	})

	if s.MergeCollected {
		if s.Collected == nil {
			s.Collected = map[string]string{}
		}
		for k, v := range resp.Fields {
			s.Collected[k] = v
		}
	} else {
		s.Collected = CopyFields(resp.Fields)
	}

	if resp.Completed {
		s.Active = false
	}
}

// LastAITurn returns the most recent AI turn, if any.
func (s *SessionState) LastAITurn() (Turn, bool) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleAI {
			return s.History[i], true
		}
	}
	return Turn{}, false
}

// IntakeCompleted reports whether the latest AI turn declared the checklist done.
func (s *SessionState) IntakeCompleted() bool {
	turn, ok := s.LastAITurn()
	return ok && turn.Completed
}

// Phase reports the intake phase implied by the completion latch.
func (s *SessionState) Phase() Phase {
	if s.Active {
		return PhaseGathering
	}
	return PhaseDone
}

// Clone returns a deep copy so a submission can run against a working copy.
func (s *SessionState) Clone() *SessionState {
	out := &SessionState{
		History:        make([]Turn, len(s.History)),
		Collected:      CopyFields(s.Collected),
		Active:         s.Active,
		MergeCollected: s.MergeCollected,
	}
	for i, t := range s.History {
		t.Fields = cloneOptional(t.Fields)
		out.History[i] = t
	}
	return out
}

func cloneOptional(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	return CopyFields(m)
}
