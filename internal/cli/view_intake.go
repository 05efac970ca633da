package cli

import (
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
	"github.com/alexanderramin/prdchat/internal/intelligence"
)

// intakeResultMsg carries the outcome of one intake submission. state is the
// working copy the call ran against.
type intakeResultMsg struct {
	state *domain.SessionState
	turn  *intelligence.IntakeTurn
	err   error
}

// intakeView runs the company information interview.
type intakeView struct {
	state *SharedState
	input textinput.Model
	spin  spinner.Model
	log   transcript

	// busy is set while a model call is in flight; input is ignored meanwhile.
	busy bool
}

func newIntakeView(state *SharedState) *intakeView {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.CharLimit = 2000
	ti.Placeholder = "Type your answer"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StylePurple

	v := &intakeView{
		state: state,
		input: ti,
		spin:  sp,
		log:   newTranscript(),
	}
	v.log.add(formatter.FormatIntakeWelcome(state.App.Intake.Checklist()))
	for _, turn := range state.Intake.History {
		v.log.add(formatTurn(turn))
	}
	if !state.Intake.Active {
		v.showCompletion()
	}
	return v
}

func formatTurn(turn domain.Turn) string {
	if turn.Role == domain.RoleHuman {
		return formatter.FormatHumanTurn(turn.Content)
	}
	return formatter.FormatAITurn(turn)
}

func (v *intakeView) done() bool { return !v.state.Intake.Active }

// ── tea.Model interface ──────────────────────────────────────────────────────

func (v *intakeView) Init() tea.Cmd {
	if v.done() {
		return nil
	}
	return textinput.Blink
}

func (v *intakeView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.input.Width = max(msg.Width-8, 10)
		v.log.resize(v.state)
		return v, nil

	case intakeResultMsg:
		return v.handleResult(msg)

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
		if msg.Type == tea.KeyEnter {
			line := strings.TrimSpace(v.input.Value())
			v.input.Reset()
			return v.handleInput(line)
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *intakeView) View() string {
	var b strings.Builder
	b.WriteString(v.log.view())
	b.WriteString("\n\n")

	switch {
	case v.busy:
		b.WriteString(v.spin.View())
		b.WriteString(formatter.Dim(" Thinking..."))
	case v.done():
		b.WriteString(formatter.Dim("Press enter to continue to PRD drafting"))
	default:
		b.WriteString(formatter.StyleBlue.Render("you") + formatter.Dim("> "))
		b.WriteString(v.input.View())
	}
	return b.String()
}

// ── View interface ───────────────────────────────────────────────────────────

func (v *intakeView) ID() ViewID   { return ViewIntake }
func (v *intakeView) Title() string { return "Intake" }
func (v *intakeView) ShortHelp() []key.Binding {
	if v.done() {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "draft PRD")),
			key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll")),
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll")),
		key.NewBinding(key.WithKeys("/summary"), key.WithHelp("/summary", "collected data")),
	}
}

// ── input handling ───────────────────────────────────────────────────────────

func (v *intakeView) handleInput(line string) (tea.Model, tea.Cmd) {
	if c, ok := parseSlash(line); ok {
		return v.handleSlash(c)
	}
	if v.done() {
		return v, v.openDraft()
	}
	if line == "" {
		return v, nil
	}

	v.log.add(formatter.FormatHumanTurn(line))
	v.busy = true
	v.input.Blur()
	return v, tea.Batch(v.spin.Tick, submitIntakeCmd(v.state, line))
}

func (v *intakeView) handleSlash(c slashCommand) (tea.Model, tea.Cmd) {
	switch c.name {
	case slashQuit:
		return v, quit()
	case slashSummary:
		v.log.add(formatter.FormatSummary(v.state.Intake.Collected))
	case slashExport:
		v.log.add(formatter.FormatNotice("Export is available once a PRD has been drafted."))
	default:
		v.log.add(formatter.FormatNotice(fmt.Sprintf("Unknown command /%s", c.name)))
	}
	return v, nil
}

// submitIntakeCmd runs the submission against a working copy so the shared
// state only changes when the result is accepted.
func submitIntakeCmd(s *SharedState, line string) tea.Cmd {
	working := s.Intake.Clone()
	ctx := s.Ctx
	intake := s.App.Intake
	return func() tea.Msg {
		turn, err := intake.Submit(ctx, working, line)
		return intakeResultMsg{state: working, turn: turn, err: err}
	}
}

func (v *intakeView) handleResult(msg intakeResultMsg) (tea.Model, tea.Cmd) {
	v.busy = false

	if msg.err != nil {
		ctxzap.Extract(v.state.Ctx).Warn("intake turn failed", zap.Error(msg.err))
		v.log.add(formatter.FormatError(msg.err))
		v.input.Focus()
		return v, textinput.Blink
	}
	if msg.turn.Skipped {
		v.input.Focus()
		return v, nil
	}

	v.state.Intake = msg.state
	if turn, ok := msg.state.LastAITurn(); ok {
		v.log.add(formatter.FormatAITurn(turn))
	}

	if v.done() {
		v.showCompletion()
		return v, nil
	}
	v.input.Focus()
	return v, textinput.Blink
}

func (v *intakeView) showCompletion() {
	v.input.Blur()
	v.log.add(formatter.FormatCompletion(v.state.Intake.Collected))
}

// openDraft pushes the drafting view, reusing an earlier draft session.
func (v *intakeView) openDraft() tea.Cmd {
	if v.state.Draft == nil {
		session, err := v.state.App.Draft.Start(v.state.Intake)
		if err != nil {
			v.log.add(formatter.FormatIncompleteWarning())
			return nil
		}
		v.state.Draft = session
	}
	return pushView(newDraftView(v.state))
}
