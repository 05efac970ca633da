package cli

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// inputReserve is the number of lines below the transcript: a blank line
// and the prompt.
const inputReserve = 2

// transcript is the scrollable message log shared by the chat views.
type transcript struct {
	entries []string
	pending string
	vp      viewport.Model
}

func newTranscript() transcript {
	vp := viewport.New(0, 0)
	vp.KeyMap = transcriptKeyMap()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3
	return transcript{vp: vp}
}

// add appends an entry and scrolls to the bottom.
func (t *transcript) add(entry string) {
	t.entries = append(t.entries, entry)
	t.refresh("")
}

// refresh re-renders the log with an optional trailing entry that is not
// kept, such as a reply still streaming in.
func (t *transcript) refresh(pending string) {
	t.pending = pending
	t.vp.SetContent(t.content())
	t.vp.GotoBottom()
}

func (t *transcript) content() string {
	content := strings.Join(t.entries, "\n\n")
	if t.pending != "" {
		content += "\n\n" + t.pending
	}
	return content
}

func (t *transcript) resize(state *SharedState) {
	t.vp.Width = state.Width
	t.vp.Height = max(state.ContentHeight()-inputReserve, 1)
	t.vp.GotoBottom()
}

func (t *transcript) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	t.vp, cmd = t.vp.Update(msg)
	return cmd
}

func (t *transcript) view() string {
	if t.vp.Height == 0 {
		return t.content()
	}
	return t.vp.View()
}

// last returns the most recent entry.
func (t *transcript) last() string {
	if len(t.entries) == 0 {
		return ""
	}
	return t.entries[len(t.entries)-1]
}

// transcriptKeyMap scrolls with page keys only so typed letters reach the input.
func transcriptKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
	}
}

func isScrollKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyCtrlU, tea.KeyCtrlD:
		return true
	}
	return false
}
