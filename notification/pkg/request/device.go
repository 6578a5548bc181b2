package request

type RegisterDevice struct {
	DeviceToken string `validate:"required"                      json:"device_token"`
	Platform    string `validate:"required,oneof=android ios web" json:"platform"`
	Name        string `validate:"omitempty"                     json:"device_name,omitempty"`
}

type FcmToken struct {
	Token string `validate:"required" json:"fcm_token"`
}
