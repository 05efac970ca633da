package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/alexanderramin/prdchat/internal/cli/formatter"
	"github.com/alexanderramin/prdchat/internal/domain"
	"github.com/alexanderramin/prdchat/internal/export"
	"github.com/alexanderramin/prdchat/internal/intelligence"
)

// draftDeltaMsg carries one streamed fragment of a drafting reply.
type draftDeltaMsg struct {
	delta string
}

// draftDoneMsg ends a drafting call. session is the working copy the call
// appended to.
type draftDoneMsg struct {
	session *domain.DraftSession
	reply   *intelligence.DraftReply
	err     error
}

// draftView is the PRD drafting conversation.
type draftView struct {
	state *SharedState
	input textinput.Model
	spin  spinner.Model
	log   transcript

	busy    bool
	partial strings.Builder
	events  <-chan tea.Msg
}

func newDraftView(state *SharedState) *draftView {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.CharLimit = 4000
	ti.Placeholder = "Describe the feature, or ask for changes"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StylePurple

	v := &draftView{
		state: state,
		input: ti,
		spin:  sp,
		log:   newTranscript(),
	}
	v.log.add(formatter.FormatDraftWelcome(state.Draft.Context))
	for _, m := range state.Draft.Messages {
		if m.Role == domain.MessageUser {
			v.log.add(formatter.FormatHumanTurn(m.Content))
		} else {
			v.log.add(formatter.FormatAssistantReply(m.Content))
		}
	}
	return v
}

// ── tea.Model interface ──────────────────────────────────────────────────────

func (v *draftView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *draftView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.input.Width = max(msg.Width-8, 10)
		v.log.resize(v.state)
		return v, nil

	case draftDeltaMsg:
		v.partial.WriteString(msg.delta)
		v.log.refresh(formatter.FormatAssistantReply(v.partial.String()))
		return v, waitForDraftEvent(v.events)

	case draftDoneMsg:
		return v.handleDone(msg)

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return v, cmd

	case tea.MouseMsg:
		return v, v.log.update(msg)

	case tea.KeyMsg:
		if isScrollKey(msg) {
			return v, v.log.update(msg)
		}
		if v.busy {
			return v, nil
		}
		switch msg.Type {
		case tea.KeyEsc:
			return v, popView()
		case tea.KeyEnter:
			line := strings.TrimSpace(v.input.Value())
			v.input.Reset()
			return v.handleInput(line)
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *draftView) View() string {
	var b strings.Builder
	b.WriteString(v.log.view())
	b.WriteString("\n\n")

	if v.busy {
		b.WriteString(v.spin.View())
		b.WriteString(formatter.Dim(" Drafting..."))
		return b.String()
	}
	b.WriteString(formatter.StyleBlue.Render("draft") + formatter.Dim("> "))
	b.WriteString(v.input.View())
	return b.String()
}

// ── View interface ───────────────────────────────────────────────────────────

func (v *draftView) ID() ViewID   { return ViewDraft }
func (v *draftView) Title() string { return "Drafting" }
func (v *draftView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to intake")),
		key.NewBinding(key.WithKeys("/export"), key.WithHelp("/export <file>", "save draft")),
	}
}

// ── input handling ───────────────────────────────────────────────────────────

func (v *draftView) handleInput(line string) (tea.Model, tea.Cmd) {
	if c, ok := parseSlash(line); ok {
		return v.handleSlash(c)
	}
	if line == "" {
		return v, nil
	}

	v.log.add(formatter.FormatHumanTurn(line))
	v.busy = true
	v.input.Blur()
	v.partial.Reset()

	events := make(chan tea.Msg, 16)
	v.events = events
	return v, tea.Batch(v.spin.Tick, startDraftCmd(v.state, line, events))
}

func (v *draftView) handleSlash(c slashCommand) (tea.Model, tea.Cmd) {
	switch c.name {
	case slashQuit:
		return v, quit()
	case slashSummary:
		v.log.add(formatter.FormatSummary(v.state.Draft.Context))
	case slashExport:
		path, err := v.state.App.exportDraft(v.state.Draft, c.arg)
		if err != nil {
			v.log.add(formatter.FormatError(err))
			break
		}
		ctxzap.Extract(v.state.Ctx).Info("draft exported", zap.String("path", path))
		v.log.add(formatter.FormatExported(path))
	default:
		v.log.add(formatter.FormatNotice(fmt.Sprintf("Unknown command /%s", c.name)))
	}
	return v, nil
}

// startDraftCmd streams the reply into events from a goroutine and returns
// the first event. The channel is closed after the final draftDoneMsg.
func startDraftCmd(s *SharedState, line string, events chan tea.Msg) tea.Cmd {
	working := s.Draft.Clone()
	ctx := s.Ctx
	draft := s.App.Draft
	return func() tea.Msg {
		go func() {
			defer close(events)
			reply, err := draft.Send(ctx, working, line, func(delta string) {
				events <- draftDeltaMsg{delta: delta}
			})
			events <- draftDoneMsg{session: working, reply: reply, err: err}
		}()
		return waitForDraftEvent(events)()
	}
}

func waitForDraftEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (v *draftView) handleDone(msg draftDoneMsg) (tea.Model, tea.Cmd) {
	v.busy = false
	v.events = nil
	v.partial.Reset()
	v.input.Focus()

	if msg.err != nil {
		ctxzap.Extract(v.state.Ctx).Warn("draft turn failed", zap.Error(msg.err))
		v.log.refresh("")
		v.log.add(formatter.FormatError(msg.err))
		return v, textinput.Blink
	}
	if msg.reply.Skipped {
		v.log.refresh("")
		return v, textinput.Blink
	}

	v.state.Draft = msg.session
	v.log.add(formatter.FormatAssistantReply(msg.reply.Text))
	return v, textinput.Blink
}

// exportDraft writes the latest reply and the company profile to path; the
// file extension picks the format.
func (a *App) exportDraft(session *domain.DraftSession, path string) (string, error) {
	if path == "" {
		return "", errors.New("usage: /export <file.md|file.pdf>")
	}
	doc, err := export.FromDraft(session, a.now())
	if err != nil {
		return "", err
	}
	if err := a.Exports.WriteFile(path, doc); err != nil {
		return "", err
	}
	return path, nil
}
