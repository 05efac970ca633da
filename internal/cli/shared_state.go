package cli

import (
	"context"

	"github.com/alexanderramin/prdchat/internal/domain"
)

// SharedState holds the conversation state shared across all views via pointer.
// Views replace Intake and Draft with the working copies returned by a
// successful model call; a failed call leaves them as they were.
type SharedState struct {
	App *App
	Ctx context.Context

	Intake *domain.SessionState
	Draft  *domain.DraftSession

	// Terminal dimensions
	Width  int
	Height int
}

// ContentHeight returns the available height for view content,
// accounting for header (2 lines: title + separator) and
// status bar (2 lines: separator + hints).
func (s *SharedState) ContentHeight() int {
	h := s.Height - 4
	if h < 1 {
		return 1
	}
	return h
}
