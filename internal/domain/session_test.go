package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionState_EmptyAndActive(t *testing.T) {
	s := NewSessionState(false)
	assert.Empty(t, s.History)
	assert.Empty(t, s.Collected)
	assert.True(t, s.Active)
	assert.Equal(t, PhaseGathering, s.Phase())
	assert.False(t, s.IntakeCompleted())
}

func TestAppendAI_ReplacesCollected(t *testing.T) {
	s := NewSessionState(false)
	s.AppendAI(NewStructuredResponse("a", map[string]string{"company_name": "Acme", "tone": "formal"}, false))
	s.AppendAI(NewStructuredResponse("b", map[string]string{"company_name": "Acme Corp"}, false))

	assert.Equal(t, map[string]string{"company_name": "Acme Corp"}, s.Collected)
}

func TestAppendAI_MergeMode(t *testing.T) {
	s := NewSessionState(true)
	s.AppendAI(NewStructuredResponse("a", map[string]string{"company_name": "Acme", "tone": "formal"}, false))
	s.AppendAI(NewStructuredResponse("b", map[string]string{"company_name": "Acme Corp"}, false))

	assert.Equal(t, map[string]string{"company_name": "Acme Corp", "tone": "formal"}, s.Collected)
}

func TestAppendAI_CollectedEqualsLastTurnFields(t *testing.T) {
	s := NewSessionState(false)
	rounds := []map[string]string{
		{"a": "1"},
		{"a": "1", "b": "2"},
		{},
		{"c": "3"},
	}
	for _, fields := range rounds {
		s.AppendHuman("x")
		s.AppendAI(NewStructuredResponse("ok", fields, false))
		last, ok := s.LastAITurn()
		require.True(t, ok)
		assert.Equal(t, last.Fields, s.Collected)
	}
	assert.Len(t, s.History, 8)
}

func TestCompletionLatch_NeverResets(t *testing.T) {
	s := NewSessionState(false)
	s.AppendAI(NewStructuredResponse("done", nil, true))
	assert.False(t, s.Active)
	assert.Equal(t, PhaseDone, s.Phase())

	s.AppendAI(NewStructuredResponse("more", nil, false))
	assert.False(t, s.Active)
	assert.False(t, s.IntakeCompleted(), "latest AI turn is not completed")
}

func TestAppendAI_DoesNotAliasResponseFields(t *testing.T) {
	fields := map[string]string{"k": "v"}
	s := NewSessionState(false)
	s.AppendAI(StructuredResponse{Text: "t", Fields: fields})

	fields["k"] = "changed"
	assert.Equal(t, "v", s.Collected["k"])
	assert.Equal(t, "v", s.History[0].Fields["k"])
}

func TestNewStructuredResponse_DropsPartialEntries(t *testing.T) {
	r := NewStructuredResponse("t", map[string]string{"": "v", "k": "", "ok": "yes"}, false)
	assert.Equal(t, map[string]string{"ok": "yes"}, r.Fields)
}

func TestClone_IsIndependent(t *testing.T) {
	s := NewSessionState(false)
	s.AppendHuman("hello")
	s.AppendAI(NewStructuredResponse("hi", map[string]string{"k": "v"}, false))

	c := s.Clone()
	c.AppendHuman("more")
	c.Collected["k"] = "x"
	c.History[1].Fields["k"] = "y"

	assert.Len(t, s.History, 2)
	assert.Equal(t, "v", s.Collected["k"])
	assert.Equal(t, "v", s.History[1].Fields["k"])
}

func TestDraftSession_ContextIsCopied(t *testing.T) {
	collected := map[string]string{"company_name": "Acme"}
	d := NewDraftSession(collected)
	collected["company_name"] = "Other"

	assert.Equal(t, "Acme", d.Context["company_name"])

	_, ok := d.LatestReply()
	assert.False(t, ok)

	d.Append("write a PRD", "# PRD")
	reply, ok := d.LatestReply()
	require.True(t, ok)
	assert.Equal(t, "# PRD", reply)
	assert.Equal(t, MessageUser, d.Messages[0].Role)
	assert.Equal(t, MessageAssistant, d.Messages[1].Role)
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(map[string]string{"c": "", "a": "", "b": ""}))
	assert.Equal(t, "x", CoalesceStr("", "x", "y"))
}
