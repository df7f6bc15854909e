package relay

import (
	"github.com/PM183/Bloom/internal/model/chat"
)

// Role tags one prompt entry for the chat-completions API.
type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// PromptMessage is a single role-tagged entry in the model payload.
type PromptMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// BuildPrompt produces the ordered payload forwarded to the model: the system
// directive, then every prior bot turn replayed as an assistant entry, then
// the new user message. Prior user turns are intentionally not replayed and
// history is never truncated.
func BuildPrompt(systemPrompt string, history []chat.Message, userMessage string) []PromptMessage {
	payload := make([]PromptMessage, 0, len(history)+2)
	payload = append(payload, PromptMessage{Role: RoleSystem, Content: systemPrompt})

	for _, msg := range history {
		if msg.Sender == chat.SenderUser {
			continue
		}
		payload = append(payload, PromptMessage{Role: RoleAssistant, Content: msg.Text})
	}

	return append(payload, PromptMessage{Role: RoleUser, Content: userMessage})
}
