package formatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/prdchat/internal/domain"
	"github.com/alexanderramin/prdchat/internal/intelligence"
	"github.com/alexanderramin/prdchat/internal/llm"
)

// FormatIntakeWelcome introduces the interview and lists the checklist.
func FormatIntakeWelcome(cl intelligence.Checklist) string {
	var b strings.Builder
	b.WriteString(wrapText("I'll ask you a few questions about your company, one item at a time. "+
		"Once everything is collected you can go on to draft a PRD.", textWrapWidth-8))
	b.WriteString("\n\n")
	b.WriteString(StyleBold.Render("Checklist"))
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(cl.Numbered(), "\n"))
	b.WriteString("\n\n")
	b.WriteString(Dim("/summary shows what is collected so far, /quit exits"))
	return RenderBox("Company information", b.String())
}

// FormatDraftWelcome introduces the drafting phase.
func FormatDraftWelcome(collected map[string]string) string {
	var b strings.Builder
	b.WriteString(wrapText("Describe the feature or product you want a PRD for. "+
		"Each reply builds on the company profile and the conversation so far.", textWrapWidth-8))
	b.WriteString("\n\n")
	b.WriteString(Dim(fmt.Sprintf("%d profile entries loaded", len(collected))))
	b.WriteString("\n")
	b.WriteString(Dim("/summary shows the profile, /export <file.md|file.pdf> saves the latest draft, /quit exits"))
	return RenderBox("PRD drafting", b.String())
}

// FormatHumanTurn renders a line typed by the user.
func FormatHumanTurn(text string) string {
	return StyleBlue.Render("You: ") + text
}

// FormatAITurn renders an intake reply with its collected data and the
// completion flag.
func FormatAITurn(turn domain.Turn) string {
	var b strings.Builder
	b.WriteString(StylePurple.Render("AI: "))
	b.WriteString(indentWrapped(turn.Content, 0, textWrapWidth))
	b.WriteString("\n")

	if len(turn.Fields) > 0 {
		b.WriteString(Dim("  Collected Data:"))
		b.WriteString("\n")
		for _, k := range domain.SortedKeys(turn.Fields) {
			fmt.Fprintf(&b, "  %s %s %s\n", Dim("-"), Bold(k+":"), turn.Fields[k])
		}
	}

	b.WriteString(Dim("  Information gathering completed: "))
	if turn.Completed {
		b.WriteString(StyleGreen.Render("Yes"))
	} else {
		b.WriteString(StyleYellow.Render("No"))
	}
	return b.String()
}

// FormatAssistantReply renders a drafting reply.
func FormatAssistantReply(text string) string {
	return StylePurple.Render("AI: ") + wrapText(text, textWrapWidth)
}

// FormatSummary renders the collected company profile in a box.
func FormatSummary(collected map[string]string) string {
	return RenderBox("Company profile", intelligence.RenderSummary(collected))
}

// FormatCompletion renders the completion banner followed by the summary.
func FormatCompletion(collected map[string]string) string {
	return StyleGreen.Render(intelligence.CompletionBanner) + "\n" + FormatSummary(collected)
}

// FormatIncompleteWarning tells the user to finish the intake first.
func FormatIncompleteWarning() string {
	return StyleYellow.Render(intelligence.IncompleteWarning)
}

// FormatExported confirms a written export.
func FormatExported(path string) string {
	return StyleGreen.Render("Saved ") + path
}

// FormatNotice renders an informational line.
func FormatNotice(text string) string {
	return Dim(text)
}

// FormatError renders a failed turn. Remote failures note that the message
// was not recorded and can be sent again.
func FormatError(err error) string {
	line := StyleRed.Render("Error: ") + err.Error()
	switch {
	case errors.Is(err, llm.ErrMissingCredential):
		return line + "\n" + Dim("Set PRDCHAT_LLM_API_KEY or OPENAI_API_KEY, or pass --api-key.")
	case llm.IsRemoteFailure(err):
		return line + "\n" + Dim("Your message was not recorded. Send it again to retry.")
	}
	return line
}
