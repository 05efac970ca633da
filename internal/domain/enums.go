package domain

// Role identifies the author of an intake conversation turn.
type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// MessageRole identifies the author of a drafting message.
type MessageRole string

const (
	MessageUser      MessageRole = "user"
	MessageAssistant MessageRole = "assistant"
)

// Phase is the dialogue phase a session is in.
type Phase string

const (
	PhaseGathering Phase = "gathering"
	PhaseDone      Phase = "done"
	PhaseDrafting  Phase = "drafting"
)
