package intelligence

import (
	"encoding/json"
	"strings"

	"github.com/alexanderramin/prdchat/internal/domain"
)

const intakeRolePrompt = `You are an AI assistant designed to gather essential company-level information for Product Requirements Document (PRD) generation. Your task is to collect the following information from the user, one item at a time:

`

const intakeInstructions = `
Instructions:
1. If this is the start of the conversation, introduce yourself and explain your purpose.
2. Ask about only one item at a time, in the order listed above.
3. After receiving an answer, confirm the information before moving to the next item.
4. If an answer is unclear or incomplete, ask for clarification before moving on.
5. If the user doesn't have an answer for an item, make a note and move to the next one.
6. Keep track of which items have been answered and which are pending.
7. Once all items have been addressed, review any missing or incomplete information.
8. When all information is gathered, or the user indicates they can't provide more, summarize the collected data and inform the user that the information gathering is complete.

Remember to be polite, patient, and helpful throughout the conversation. If the user asks questions or needs explanations about any of the items, provide clear and concise information to assist them.

Your response MUST be a single JSON object and nothing else, with exactly these fields:
{
  "response": "your reply to the human, including the next question or the confirmation of information received",
  "collected_data": {"<item key>": "<collected value>"},
  "isCompleted": false
}

Field rules:
- "response" is a string.
- "collected_data" maps each item collected so far to a string value. Include every item collected so far, not only the latest.
- "isCompleted" is true only when all information has been collected or the user cannot provide more.
`

// buildIntakeSystemPrompt renders the fixed instruction block for a checklist.
func buildIntakeSystemPrompt(cl Checklist) string {
	var b strings.Builder
	b.WriteString(intakeRolePrompt)
	b.WriteString(cl.Numbered())
	b.WriteString(intakeInstructions)
	return b.String()
}

// buildIntakeUserPrompt renders history, collected data and the new input.
func buildIntakeUserPrompt(state *domain.SessionState, input string) string {
	var b strings.Builder

	b.WriteString("Current conversation history:\n")
	if len(state.History) == 0 {
		b.WriteString("(none, this is the start of the conversation)\n")
	}
	for _, turn := range state.History {
		b.WriteString(turnLabel(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n\n")
	}

	b.WriteString("\nCurrent collected data:\n")
	collected, _ := json.Marshal(domain.CopyFields(state.Collected))
	b.Write(collected)
	b.WriteString("\n\n")

	b.WriteString("Human: ")
	b.WriteString(input)
	b.WriteString("\n\nAI: Respond politely and ask the next relevant question, as a JSON object.")

	return b.String()
}

func turnLabel(r domain.Role) string {
	if r == domain.RoleAI {
		return "AI"
	}
	return "Human"
}
