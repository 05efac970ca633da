package server

import (
	"time"

	"github.com/alexanderramin/prdchat/internal/domain"
	"github.com/alexanderramin/prdchat/internal/intelligence"
)

type MessageRequest struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type SessionDTO struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Phase     domain.Phase      `json:"phase"`
	Active    bool              `json:"active"`
	History   []domain.Turn     `json:"history"`
	Collected map[string]string `json:"collected_data"`
	Drafting  bool              `json:"drafting"`
}

type IntakeTurnDTO struct {
	domain.StructuredResponse
	Tier    intelligence.ParseTier `json:"tier,omitempty"`
	Skipped bool                   `json:"skipped"`
	Active  bool                   `json:"active"`
}

type DraftReplyDTO struct {
	Reply   string `json:"reply"`
	Skipped bool   `json:"skipped"`
}

type DraftDTO struct {
	Messages    []domain.Message  `json:"messages"`
	CompanyInfo map[string]string `json:"company_info"`
}

func toSessionDTO(s *Session) SessionDTO {
	intake := s.Intake()
	draft := s.Draft()

	phase := intake.Phase()
	if draft != nil {
		phase = domain.PhaseDrafting
	}
	history := intake.History
	if history == nil {
		history = []domain.Turn{}
	}
	return SessionDTO{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Phase:     phase,
		Active:    intake.Active,
		History:   history,
		Collected: intake.Collected,
		Drafting:  draft != nil,
	}
}

func toDraftDTO(d *domain.DraftSession) DraftDTO {
	msgs := d.Messages
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return DraftDTO{Messages: msgs, CompanyInfo: d.Context}
}
