package models

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message of the conversation record.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TurnPair is a user message and the assistant reply shown next to it.
type TurnPair struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}
