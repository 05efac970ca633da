package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexanderramin/prdchat/internal/llm"
	"github.com/alexanderramin/prdchat/internal/server"
)

const serveCmdName = "serve"

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   serveCmdName,
		Short: "Serve intake and drafting sessions over HTTP",
		Long: `Run the HTTP API. Each session is created with POST /sessions and
expires after the session TTL without use. Logs go to stderr as JSON.`,
		Example: `  prdchat serve --addr :9090 --session-ttl 30m`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.Config
			registry := server.NewRegistry(cfg.SessionTTL, cfg.MergeCollected)
			handler := server.NewHandler(registry, app.Intake, app.Draft, app.Exports)
			router := server.SetupRouter(handler, app.Logger)

			app.Logger.Info("starting server",
				zap.String("addr", cfg.ServerAddr),
				zap.Duration("session_ttl", cfg.SessionTTL),
				zap.String("intake_model", cfg.LLM.TaskModel(llm.TaskIntake)),
				zap.String("draft_model", cfg.LLM.TaskModel(llm.TaskDraft)),
			)
			defer app.Logger.Sync() //nolint:errcheck

			return server.Run(cmd.Context(), cfg.ServerAddr, router, app.Logger)
		},
	}

	cmd.Flags().StringVar(&app.Config.ServerAddr, "addr", app.Config.ServerAddr, "listen address")
	cmd.Flags().DurationVar(&app.Config.SessionTTL, "session-ttl", app.Config.SessionTTL, "idle time before a session expires")
	return cmd
}
