package response

import "time"

type Device struct {
	ID          int64     `json:"id"`
	DeviceToken string    `json:"device_token"`
	Platform    string    `json:"platform"`
	Name        string    `json:"device_name,omitempty"`
	LastUsedAt  time.Time `json:"last_used_at"`
}

type NotificationSettings struct {
	Enabled       bool   `json:"enabled"`
	VapidKey      string `json:"vapid_key,omitempty"`
	OrderUpdates  bool   `json:"order_updates"`
	Promotions    bool   `json:"promotions"`
	FirebaseAppID string `json:"firebase_app_id,omitempty"`
}
