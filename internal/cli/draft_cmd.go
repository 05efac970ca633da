package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexanderramin/prdchat/internal/cli/formatter"
	"github.com/alexanderramin/prdchat/internal/domain"
	"github.com/alexanderramin/prdchat/internal/intelligence"
	"github.com/alexanderramin/prdchat/internal/logger"
)

func newDraftCmd(app *App) *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Draft a PRD line by line from a saved company profile",
		Long: `Start PRD drafting from a company profile saved by
'prdchat intake --save-profile'. Replies stream as they are generated.

Commands during drafting:
  /summary         Show the company profile
  /export <file>   Save the latest draft as .md or .pdf
  /quit            Exit`,
		Example: `  prdchat draft --profile acme.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if profilePath == "" {
				return fmt.Errorf("%w: %s (pass --profile, or run intake first)",
					intelligence.ErrIntakeIncomplete, intelligence.IncompleteWarning)
			}
			fields, err := intelligence.LoadProfile(profilePath)
			if err != nil {
				return err
			}
			session, err := app.Draft.Start(intelligence.StateFromProfile(fields))
			if err != nil {
				return err
			}

			ctx := logger.WithAction(cmd.Context(), "draft")
			ctx = logger.AddFields(ctx, zap.String("session_id", uuid.NewString()))
			return draftLoop(ctx, app, bufio.NewReader(app.In), session)
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", "", "YAML company profile written by intake --save-profile")
	return cmd
}

// draftLoop runs the drafting conversation until the user quits or input ends.
func draftLoop(ctx context.Context, app *App, in *bufio.Reader, session *domain.DraftSession) error {
	out := app.Out
	log := ctxzap.Extract(ctx)

	fmt.Fprintln(out, formatter.FormatDraftWelcome(session.Context))

	for {
		fmt.Fprint(out, formatter.StyleBlue.Render("You: "))
		line, err := readLine(in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		if c, ok := parseSlash(line); ok {
			switch c.name {
			case slashQuit:
				return nil
			case slashSummary:
				fmt.Fprintln(out, formatter.FormatSummary(session.Context))
			case slashExport:
				path, err := app.exportDraft(session, c.arg)
				if err != nil {
					fmt.Fprintln(out, formatter.FormatError(err))
					continue
				}
				log.Info("draft exported", zap.String("path", path))
				fmt.Fprintln(out, formatter.FormatExported(path))
			default:
				fmt.Fprintln(out, formatter.FormatNotice(fmt.Sprintf("Unknown command /%s", c.name)))
			}
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fmt.Fprint(out, formatter.StylePurple.Render("AI: "))
		_, err = app.Draft.Send(ctx, session, line, func(delta string) {
			fmt.Fprint(out, delta)
		})
		fmt.Fprintln(out)
		if err != nil {
			log.Warn("draft turn failed", zap.Error(err))
			fmt.Fprintln(out, formatter.FormatError(err))
			continue
		}
		fmt.Fprintln(out)
	}
}
