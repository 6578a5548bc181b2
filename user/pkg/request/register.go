package request

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

type Register struct {
	Name                 string `validate:"required"                 json:"name"`
	Email                string `validate:"required,email"           json:"email"`
	Password             string `validate:"required,min=8"           json:"password"`
	PasswordConfirmation string `validate:"required,eqfield=Password" json:"password_confirmation"`
}

func (r Register) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", r.Email).Str("name", r.Name)
}

func (r Register) MarshalJSON() ([]byte, error) {
	r.Password = masked
	r.PasswordConfirmation = masked
	type R Register
	return json.Marshal(R(r))
}

type UpdateProfile struct {
	Name  string `validate:"required"        json:"name"`
	Email string `validate:"omitempty,email" json:"email,omitempty"`
	Phone string `validate:"omitempty,e164"  json:"phone,omitempty"`
}

type ShippingAddress struct {
	FullName   string `validate:"required"             json:"full_name"`
	Phone      string `validate:"required"             json:"phone"`
	Line1      string `validate:"required"             json:"address_line_1"`
	Line2      string `                                json:"address_line_2,omitempty"`
	City       string `validate:"required"             json:"city"`
	State      string `                                json:"state,omitempty"`
	PostalCode string `validate:"required"             json:"postal_code"`
	Country    string `validate:"required,iso3166_1_alpha2" json:"country"`
	IsDefault  bool   `                                json:"is_default"`
}
