package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/prdchat/internal/domain"
)

// CompletionBanner is shown once the intake checklist is complete.
const CompletionBanner = "All required information has been collected!"

// IncompleteWarning is shown when drafting is attempted before intake is done.
const IncompleteWarning = "Information collection not completed, please go back."

// RenderAITurn renders an AI turn with its collected data and completion flag.
// ParseIntakeReply's heuristic tier reads this layout back.
func RenderAITurn(turn domain.Turn) string {
	var b strings.Builder
	b.WriteString(turn.Content)
	b.WriteString("\n\n")
	b.WriteString(collectedDataMarker)
	b.WriteString("\n")
	for _, k := range domain.SortedKeys(turn.Fields) {
		fmt.Fprintf(&b, "- %s: %s\n", k, turn.Fields[k])
	}
	b.WriteString("\nInformation gathering completed: ")
	if turn.Completed {
		b.WriteString("Yes")
	} else {
		b.WriteString("No")
	}
	return b.String()
}

// RenderSummary renders the collected profile as "key: value" lines.
func RenderSummary(collected map[string]string) string {
	if len(collected) == 0 {
		return "(nothing collected yet)"
	}
	var b strings.Builder
	for _, k := range domain.SortedKeys(collected) {
		fmt.Fprintf(&b, "%s: %s\n", k, collected[k])
	}
	return strings.TrimRight(b.String(), "\n")
}
