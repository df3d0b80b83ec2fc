package notification

// PushRequest is the input of the push notification function. Data is a
// JSON-encoded object.
type PushRequest struct {
	Type   NotificationType `json:"type"`
	UserID string           `json:"user_id"`
	Title  string           `json:"title"`
	Body   string           `json:"body"`
	Data   string           `json:"data"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func (r RegisterDeviceRequest) ValidPlatform() bool {
	switch r.Platform {
	case "ios", "android", "web":
		return true
	}
	return false
}

type NotificationListResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
	TotalCount    int             `json:"total_count"`
}
