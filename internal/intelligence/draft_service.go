package intelligence

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/alexanderramin/prdchat/internal/domain"
	"github.com/alexanderramin/prdchat/internal/llm"
)

// DraftReply is the result of one drafting message.
type DraftReply struct {
	Text    string
	Skipped bool
}

// DraftService manages the free-form PRD drafting chat that follows intake.
type DraftService interface {
	// Start opens a drafting session over a completed intake. It returns
	// ErrIntakeIncomplete unless the last AI turn of state is completed.
	Start(state *domain.SessionState) (*domain.DraftSession, error)

	// Send posts a user message. When onDelta is non-nil the reply is
	// streamed to it as it arrives; the session only records the full
	// reply after the call succeeds.
	Send(ctx context.Context, session *domain.DraftSession, input string, onDelta llm.DeltaFunc) (*DraftReply, error)
}

type draftService struct {
	client llm.LLMClient
}

// NewDraftService creates a DraftService backed by an LLM client.
func NewDraftService(client llm.LLMClient) DraftService {
	return &draftService{client: client}
}

func (s *draftService) Start(state *domain.SessionState) (*domain.DraftSession, error) {
	if state == nil || !state.IntakeCompleted() {
		return nil, ErrIntakeIncomplete
	}
	return domain.NewDraftSession(state.Collected), nil
}

func (s *draftService) Send(ctx context.Context, session *domain.DraftSession, input string, onDelta llm.DeltaFunc) (*DraftReply, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return &DraftReply{Skipped: true}, nil
	}

	req := llm.GenerateRequest{
		Task:         llm.TaskDraft,
		SystemPrompt: draftSystemPrompt,
		UserPrompt:   buildDraftUserPrompt(session, input),
	}

	var (
		resp *llm.GenerateResponse
		err  error
	)
	if onDelta != nil {
		resp, err = s.client.Stream(ctx, req, onDelta)
	} else {
		resp, err = s.client.Generate(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("draft turn: %w", err)
	}

	session.Append(input, resp.Text)
	ctxzap.Extract(ctx).Debug("draft reply received",
		zap.Int("chars", len(resp.Text)),
		zap.Int("messages", len(session.Messages)),
	)

	return &DraftReply{Text: resp.Text}, nil
}
