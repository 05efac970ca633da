package cli

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexanderramin/prdchat/internal/domain"
	"github.com/alexanderramin/prdchat/internal/logger"
)

func newChatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interview and drafting in a full-screen terminal UI",
		Long: `Open the chat UI. The assistant asks about your company one checklist
item at a time; once everything is collected press enter to draft a PRD.

Commands during chat:
  /summary         Show the collected company profile
  /export <file>   Save the latest draft as .md or .pdf (drafting only)
  /quit            Exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, app)
		},
	}
}

func runChat(cmd *cobra.Command, app *App) error {
	if !app.interactive() {
		return errors.New("chat needs a terminal; use 'prdchat intake' for piped input")
	}

	ctx := logger.WithAction(cmd.Context(), "chat")
	ctx = logger.AddFields(ctx, zap.String("session_id", uuid.NewString()))

	m := newAppModel(ctx, app, domain.NewSessionState(app.Config.MergeCollected))
	if app.RunTUI != nil {
		return app.RunTUI(m)
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
