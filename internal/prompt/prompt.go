package prompt

import (
	"strings"

	"github.com/mirrorlake/repligate/internal/models"
)

// Role prefixes understood by the backend models
const (
	systemPrefix    = "System: "
	userPrefix      = "Human: "
	assistantPrefix = "Assistant: "
)

// Compile flattens an ordered chat conversation into a single prompt
// string. Messages with unknown roles are dropped. The result always ends
// with the assistant prefix as the generation cue.
func Compile(messages []models.ChatMessage) string {
	var b strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			b.WriteString(systemPrefix)
		case "user":
			b.WriteString(userPrefix)
		case "assistant":
			b.WriteString(assistantPrefix)
		default:
			continue
		}
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}
	b.WriteString(assistantPrefix)
	return b.String()
}
