package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexanderramin/prdchat/internal/cli/formatter"
	"github.com/alexanderramin/prdchat/internal/domain"
	"github.com/alexanderramin/prdchat/internal/intelligence"
	"github.com/alexanderramin/prdchat/internal/logger"
)

type intakeOptions struct {
	continueDrafting bool
	profileOut       string
}

func newIntakeCmd(app *App) *cobra.Command {
	var opts intakeOptions

	cmd := &cobra.Command{
		Use:   "intake",
		Short: "Run the company interview line by line on stdin/stdout",
		Long: `Run the company information interview without the full-screen UI, one
line per message. Works with pipes. When the checklist is complete the
collected profile is printed and you are asked whether to go on to drafting.

Commands during the interview:
  /summary   Show what has been collected so far
  /quit      Exit`,
		Example: `  prdchat intake
  prdchat intake --save-profile acme.yaml
  prdchat intake --continue < answers.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIntake(cmd, app, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.continueDrafting, "continue", false, "go on to PRD drafting without asking once the interview completes")
	cmd.Flags().StringVar(&opts.profileOut, "save-profile", "", "write the collected company profile to this YAML file")
	return cmd
}

func runIntake(cmd *cobra.Command, app *App, opts intakeOptions) error {
	ctx := logger.WithAction(cmd.Context(), "intake")
	ctx = logger.AddFields(ctx, zap.String("session_id", uuid.NewString()))

	in := bufio.NewReader(app.In)
	state := domain.NewSessionState(app.Config.MergeCollected)

	fmt.Fprintln(app.Out, formatter.FormatIntakeWelcome(app.Intake.Checklist()))

	completed, err := intakeLoop(ctx, app, in, state)
	if err != nil || !completed {
		return err
	}

	if opts.profileOut != "" {
		if err := intelligence.SaveProfile(opts.profileOut, state.Collected); err != nil {
			return err
		}
		fmt.Fprintln(app.Out, formatter.FormatExported(opts.profileOut))
	}

	if !opts.continueDrafting && !app.confirmDrafting(in) {
		return nil
	}

	session, err := app.Draft.Start(state)
	if err != nil {
		return err
	}
	return draftLoop(ctx, app, in, session)
}

// intakeLoop reads messages until the interview completes, the user quits,
// or input ends. It reports whether the interview completed.
func intakeLoop(ctx context.Context, app *App, in *bufio.Reader, state *domain.SessionState) (bool, error) {
	out := app.Out
	log := ctxzap.Extract(ctx)

	for state.Active {
		fmt.Fprint(out, formatter.StyleBlue.Render("You: "))
		line, err := readLine(in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return false, nil
			}
			return false, err
		}

		if c, ok := parseSlash(line); ok {
			switch c.name {
			case slashQuit:
				return false, nil
			case slashSummary:
				fmt.Fprintln(out, formatter.FormatSummary(state.Collected))
			case slashExport:
				fmt.Fprintln(out, formatter.FormatNotice("Export is available once a PRD has been drafted."))
			default:
				fmt.Fprintln(out, formatter.FormatNotice(fmt.Sprintf("Unknown command /%s", c.name)))
			}
			continue
		}

		stopSpinner := app.startSpinner("Thinking...")
		turn, err := app.Intake.Submit(ctx, state, line)
		stopSpinner()

		if err != nil {
			log.Warn("intake turn failed", zap.Error(err))
			fmt.Fprintln(out, formatter.FormatError(err))
			continue
		}
		if turn.Skipped {
			continue
		}

		if last, ok := state.LastAITurn(); ok {
			fmt.Fprintln(out, formatter.StylePurple.Render("AI: ")+intelligence.RenderAITurn(last))
			fmt.Fprintln(out)
		}
	}

	fmt.Fprintln(out, formatter.FormatCompletion(state.Collected))
	return true, nil
}

// startSpinner animates on a terminal and is a no-op otherwise.
func (a *App) startSpinner(message string) func() {
	if !a.interactive() {
		return func() {}
	}
	return formatter.StartSpinner(a.Out, message)
}
