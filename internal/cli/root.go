package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexanderramin/prdchat/internal/config"
	"github.com/alexanderramin/prdchat/internal/export"
	"github.com/alexanderramin/prdchat/internal/intelligence"
	"github.com/alexanderramin/prdchat/internal/llm"
	"github.com/alexanderramin/prdchat/internal/logger"
)

// App holds the configuration and services used by CLI commands.
// Services left nil are built from Config before a command runs.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Client  llm.LLMClient
	Intake  intelligence.IntakeService
	Draft   intelligence.DraftService
	Exports *export.Factory

	In  io.Reader
	Out io.Writer

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
	// PromptAPIKey asks for a key when none is configured.
	PromptAPIKey func() (string, error)
	// RunTUI runs a bubbletea model to completion.
	RunTUI func(m *appModel) error

	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "prdchat" command and registers all
// subcommands against the provided App. Without a subcommand it opens the
// chat UI on a terminal and the line-mode intake otherwise.
func NewRootCmd(app *App) *cobra.Command {
	if app.Config == nil {
		app.Config = config.Default()
	}
	if app.In == nil {
		app.In = os.Stdin
	}
	if app.Out == nil {
		app.Out = os.Stdout
	}

	root := &cobra.Command{
		Use:           "prdchat",
		Short:         "Company intake interview and PRD drafting assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.prepare(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.interactive() {
				return runChat(cmd, app)
			}
			return runIntake(cmd, app, intakeOptions{})
		},
	}
	root.SetIn(app.In)
	root.SetOut(app.Out)

	config.BindFlags(root.PersistentFlags(), app.Config)

	root.AddCommand(
		newChatCmd(app),
		newIntakeCmd(app),
		newDraftCmd(app),
		newServeCmd(app),
	)

	return root
}

// prepare validates flag overrides and builds whatever services the App
// does not carry yet.
func (a *App) prepare(cmd *cobra.Command) error {
	if cmd.Name() == "help" {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	serving := cmd.Name() == serveCmdName
	if a.Logger == nil {
		log, err := logger.New(a.Config.LogLevel, a.Config.LogFile, !serving)
		if err != nil {
			return err
		}
		a.Logger = log
	}
	cmd.SetContext(logger.WithLogger(cmd.Context(), a.Logger.With(zap.String("command", cmd.Name()))))

	if a.Client == nil {
		if !a.Config.LLM.HasCredential() {
			if serving || !a.interactive() || a.PromptAPIKey == nil {
				return llm.ErrMissingCredential
			}
			apiKey, err := a.PromptAPIKey()
			if err != nil {
				return fmt.Errorf("api key prompt: %w", err)
			}
			a.Config.LLM.APIKey = apiKey
			if !a.Config.LLM.HasCredential() {
				return llm.ErrMissingCredential
			}
		}

		var observer llm.Observer = llm.NoopObserver{}
		if a.Config.LLM.LogCalls {
			observer = llm.NewZapObserver(a.Logger)
		}
		a.Client = llm.NewOpenAIClient(a.Config.LLM, observer)
	}

	if a.Intake == nil {
		checklist, err := intelligence.LoadChecklist(a.Config.ChecklistFile)
		if err != nil {
			return err
		}
		a.Intake = intelligence.NewIntakeService(a.Client, checklist)
	}
	if a.Draft == nil {
		a.Draft = intelligence.NewDraftService(a.Client)
	}
	if a.Exports == nil {
		a.Exports = export.NewFactory()
	}
	return nil
}
