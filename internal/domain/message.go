package domain

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem marks injected persona/context messages.
	RoleSystem Role = "system"
	// RoleUser marks user questions.
	RoleUser Role = "user"
	// RoleAssistant marks model answers.
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. The sequence is append-only except for
// budget eviction from the front.
type Message struct {
	Role    Role
	Content string
}
