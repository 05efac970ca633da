package cli

import (
	"bufio"
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/prdchat/internal/cli/formatter"
)

// prdchatHuhTheme returns a custom huh theme using the existing Gruvbox palette.
func prdchatHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// apiKeyForm asks for an OpenAI API key with masked input.
func apiKeyForm(result *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("OpenAI API key").
				Description("Not found in PRDCHAT_LLM_API_KEY or OPENAI_API_KEY. Used for this run only.").
				EchoMode(huh.EchoModePassword).
				Value(result).
				Validate(validateAPIKey),
		),
	).WithTheme(prdchatHuhTheme()).WithShowHelp(false)
}

func validateAPIKey(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("an API key is required")
	}
	return nil
}

// wizardConfirm creates a huh form for a yes/no confirmation.
func wizardConfirm(title string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	).WithTheme(prdchatHuhTheme()).WithShowHelp(false)
}

// PromptAPIKey runs the API key form on the terminal.
func PromptAPIKey() (string, error) {
	var key string
	if err := apiKeyForm(&key).Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(key), nil
}

// confirmDrafting asks whether to continue from intake into drafting. On a
// terminal it uses a huh confirm; otherwise it reads a y/N answer from in.
func (a *App) confirmDrafting(in *bufio.Reader) bool {
	const title = "Continue to PRD drafting?"
	if !a.interactive() {
		return askYesNo(in, a.Out, title, false)
	}
	proceed := true
	if err := wizardConfirm(title, &proceed).Run(); err != nil {
		return false
	}
	return proceed
}
