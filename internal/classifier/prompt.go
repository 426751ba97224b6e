package classifier

import (
	"fmt"
	"strings"
	"time"

	"expensebot/internal/model"
)

// systemPrompt pins the reply shape. Models drift into prose without the
// explicit brace instruction.
const systemPrompt = "You are an expense extraction assistant for a personal finance bot. " +
	"You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, " +
	"markdown formatting, or commentary before or after the JSON. " +
	"Start your response directly with { and end with }."

// buildPrompt renders the extraction request for one inbound message,
// including the recent conversation window so follow-up answers like a bare
// "1400" or "sunglasses" can be read in context.
func buildPrompt(text string, history []model.ConversationTurn, today time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Today's date is %s.\n\n", today.Format("2006-01-02"))
	sb.WriteString("Classify the user's latest message and extract expense fields.\n")

	if len(history) > 0 {
		sb.WriteString("\nConversation so far:\n")
		for _, turn := range history {
			switch turn.Role {
			case model.RoleAssistant:
				fmt.Fprintf(&sb, "Assistant: %s\n", turn.Text)
			default:
				fmt.Fprintf(&sb, "User: %s\n", turn.Text)
			}
		}
	}

	fmt.Fprintf(&sb, "\nLatest message: %q\n", text)

	sb.WriteString(`
Respond with a JSON object in exactly this shape:
{
  "intent": "log_expense" | "query" | "summary" | "acknowledgment" | "greeting" | "unknown",
  "amount": "<amount token copied verbatim from the message>" or null,
  "item": "<what the money was spent on>" or null,
  "category": "<spending category guess>" or null
}

Rules:
- "log_expense" covers new spending, including a bare amount or bare item name that answers an earlier question.
- "query" covers questions about past spending. "summary" covers requests for a spending summary or breakdown.
- Copy the amount token exactly as written in the message ("500", "2k", "1,400"). Never convert shorthand to a number.
- Use null for any field the message does not contain. Never invent values.
`)

	return sb.String()
}
