package domain

// Conversation roles recorded to the ledger.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one side of a chat exchange, written to the external
// ledger. Write-only from this service's perspective; history reads go
// through the separate ledger pass-through endpoint.
type ConversationTurn struct {
	UserID    string     `json:"userId"`
	Role      string     `json:"role"`
	Text      string     `json:"text"`
	Citations []Citation `json:"sources,omitempty"`
}
