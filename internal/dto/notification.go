package dto

// ── Notifications ──

// NotificationListRequest GET /notifications
type NotificationListRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread_only"`
}

// ReminderResult outcome of one reminder sweep.
type ReminderResult struct {
	Reports       int `json:"reports"`
	Notifications int `json:"notifications"`
	Skipped       int `json:"skipped"`
	EmailsSent    int `json:"emails_sent"`
	EmailsFailed  int `json:"emails_failed"`
}
