package request

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

const masked = "***"

// Login is the credential pair typed by the shopper. Its JSON and log forms
// never carry the password.
type Login struct {
	Email    string `validate:"required,email" json:"email"`
	Password string `validate:"required"       json:"password"`
}

func (l Login) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", l.Email).Bool("hasPassword", l.Password != "")
}

func (l Login) String() string { return "login " + l.Email }

func (l Login) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"email": l.Email, "password": masked})
}
