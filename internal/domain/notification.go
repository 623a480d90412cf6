package domain

// NotificationType is the event that produced a notification.
type NotificationType string

const (
	NotificationApplication NotificationType = "application"
	NotificationMessage     NotificationType = "message"
	NotificationReport      NotificationType = "report"
	NotificationSystem      NotificationType = "system"
)

// Notification is addressed to a single user.
type Notification struct {
	Base
	UserID  string           `json:"userId"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Content string           `json:"content,omitempty"`
	IsRead  bool             `json:"isRead"`
}
