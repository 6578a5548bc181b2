package http

const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderSessionID     = "X-Session-ID"
	HeaderRequestID     = "X-Request-ID"
	HeaderValueJson     = "application/json"
	BearerPrefix        = "Bearer "
)
