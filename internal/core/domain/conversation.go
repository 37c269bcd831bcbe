package domain

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type ChatMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// TrailingDialogue keeps the last limit user/assistant turns, in order.
// Tool calls, system prompts and any future roles never reach the
// completion context through conversation history.
func TrailingDialogue(messages []ChatMessage, limit int) []ChatMessage {
	if limit <= 0 {
		return nil
	}

	dialogue := make([]ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role != RoleUser && msg.Role != RoleAssistant {
			continue
		}
		dialogue = append(dialogue, msg)
	}

	if len(dialogue) > limit {
		dialogue = dialogue[len(dialogue)-limit:]
	}
	return dialogue
}
