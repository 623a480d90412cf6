package domain

// Conversation groups the messages exchanged between its participants.
type Conversation struct {
	Base
	UserIDs       []string `json:"userIds"`
	LastMessageID string   `json:"lastMessageId,omitempty"`
}

// Message is sent by one user to another inside a conversation.
type Message struct {
	Base
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	RecipientID    string `json:"recipientId"`
	Content        string `json:"content"`
	IsRead         bool   `json:"isRead"`
}
