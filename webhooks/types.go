package webhooks

// WebhookEvent represents the main webhook payload from the messaging platform
type WebhookEvent struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry represents a page entry in the webhook
type Entry struct {
	ID        string      `json:"id"`
	Time      int64       `json:"time"`
	Messaging []Messaging `json:"messaging,omitempty"`
}

// Messaging represents a messaging event
type Messaging struct {
	Sender    User     `json:"sender"`
	Recipient User     `json:"recipient"`
	Timestamp int64    `json:"timestamp"` // Unix milliseconds
	Message   *Message `json:"message,omitempty"`
}

// User represents a page-scoped participant
type User struct {
	ID string `json:"id"`
}

// Message represents a message
type Message struct {
	MID    string `json:"mid"`
	Text   string `json:"text"`
	IsEcho bool   `json:"is_echo,omitempty"` // Sent by the page itself
}
