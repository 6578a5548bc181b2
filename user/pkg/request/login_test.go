package request

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestLogin(t *testing.T) {
	expectedMap := map[string]string{"email": "email", "password": "***"}
	expected, _ := json.Marshal(expectedMap)
	loginReq := Login{Email: "email", Password: "password"}

	actual, _ := json.Marshal(loginReq)

	assert.EqualValues(t, expected, actual)
	assert.EqualValues(t, "password", loginReq.Password)
}

func TestRegister(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	tests := []struct {
		name    string
		req     Register
		isValid bool
	}{
		{
			name:    "given matching passwords should be valid",
			req:     Register{Name: "Ada", Email: "ada@example.com", Password: "password1", PasswordConfirmation: "password1"},
			isValid: true,
		},
		{
			name:    "given mismatching confirmation should be invalid",
			req:     Register{Name: "Ada", Email: "ada@example.com", Password: "password1", PasswordConfirmation: "password2"},
			isValid: false,
		},
		{
			name:    "given short password should be invalid",
			req:     Register{Name: "Ada", Email: "ada@example.com", Password: "short", PasswordConfirmation: "short"},
			isValid: false,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := validate.Struct(test.req)
			assert.Equal(t, test.isValid, err == nil)
		})
	}

	b, _ := json.Marshal(tests[0].req)
	assert.NotContains(t, string(b), "password1")
}
