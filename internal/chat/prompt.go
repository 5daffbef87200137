package chat

import (
	"strings"

	"github.com/hassan123789/go-companion/internal/companion"
	"github.com/hassan123789/go-companion/internal/memory"
)

// BuildPrompt renders the generation prompt for one turn. The model is told
// to answer in character without a speaker prefix, given the persona
// instructions and recalled backstory, and then handed the recent
// conversation ending with the companion's name as the next speaker.
func BuildPrompt(c *companion.Companion, turn *memory.TurnContext) string {
	var b strings.Builder

	b.WriteString("ONLY generate plain sentences without prefix of who is speaking. DO NOT use ")
	b.WriteString(c.Name)
	b.WriteString(": prefix.\n")

	b.WriteString(c.Instructions)
	b.WriteString("\n")

	b.WriteString("Below are the relevant details about ")
	b.WriteString(c.Name)
	b.WriteString("'s past and the conversation you are in.\n")

	b.WriteString(turn.RelevantHistory)
	b.WriteString("\n")

	b.WriteString(turn.RecentHistory)
	b.WriteString("\n")
	b.WriteString(c.Name)
	b.WriteString(":")

	return b.String()
}
