package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/alexanderramin/prdchat/internal/domain"
	"github.com/alexanderramin/prdchat/internal/llm"
)

var (
	// ErrIntakeComplete is returned for submissions after the checklist is done.
	ErrIntakeComplete = errors.New("intake already completed")

	// ErrIntakeIncomplete is returned when drafting starts before intake is done.
	ErrIntakeIncomplete = errors.New("intake not completed")
)

// IntakeTurn is the result of one intake submission.
type IntakeTurn struct {
	Response domain.StructuredResponse
	Tier     ParseTier
	// Skipped is true when the input was blank and nothing happened.
	Skipped bool
}

// IntakeService runs the question-by-question company profile dialogue.
type IntakeService interface {
	// Submit sends one user message. On success the human and AI turns are
	// appended to state together; on error state is left untouched.
	Submit(ctx context.Context, state *domain.SessionState, input string) (*IntakeTurn, error)

	// Checklist returns the items this service asks about.
	Checklist() Checklist
}

type intakeService struct {
	client    llm.LLMClient
	checklist Checklist
	system    string
}

// NewIntakeService creates an IntakeService backed by an LLM client.
func NewIntakeService(client llm.LLMClient, checklist Checklist) IntakeService {
	if len(checklist.Items) == 0 {
		checklist = DefaultChecklist()
	}
	return &intakeService{
		client:    client,
		checklist: checklist,
		system:    buildIntakeSystemPrompt(checklist),
	}
}

func (s *intakeService) Checklist() Checklist { return s.checklist }

func (s *intakeService) Submit(ctx context.Context, state *domain.SessionState, input string) (*IntakeTurn, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return &IntakeTurn{Skipped: true}, nil
	}
	if !state.Active {
		return nil, ErrIntakeComplete
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskIntake,
		SystemPrompt: s.system,
		UserPrompt:   buildIntakeUserPrompt(state, input),
	})
	if err != nil {
		return nil, fmt.Errorf("intake turn: %w", err)
	}

	result := ParseIntakeReply(resp.Text)
	log := ctxzap.Extract(ctx)
	if result.Tier != TierDocument {
		log.Warn("intake reply needed fallback parsing",
			zap.String("tier", string(result.Tier)),
			zap.Error(result.Err),
		)
	} else {
		log.Debug("intake reply parsed", zap.String("tier", string(result.Tier)))
	}

	state.AppendHuman(input)
	state.AppendAI(result.Response)

	if result.Response.Completed {
		log.Info("intake completed", zap.Int("fields", len(state.Collected)))
	}

	return &IntakeTurn{Response: result.Response, Tier: result.Tier}, nil
}
