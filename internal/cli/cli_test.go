package cli

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/api"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/product/pkg/attribute"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name        string
		flags       []string
		expected    attribute.Selection
		expectedErr bool
	}{
		{
			name:     "given no flags should return empty selection",
			expected: attribute.Selection{},
		},
		{
			name:     "given ids should parse value ids",
			flags:    []string{"3=12", "5=20,21"},
			expected: attribute.Selection{}.Set(3, attribute.ID(12)).Set(5, attribute.ID(20), attribute.ID(21)),
		},
		{
			name:     "given text should keep text value",
			flags:    []string{"7=Happy birthday"},
			expected: attribute.Selection{}.Set(7, attribute.Text("Happy birthday")),
		},
		{
			name:     "given repeated attribute should merge values",
			flags:    []string{"5=20", "5=21"},
			expected: attribute.Selection{}.Set(5, attribute.ID(20), attribute.ID(21)),
		},
		{
			name:        "given missing value should fail",
			flags:       []string{"3"},
			expectedErr: true,
		},
		{
			name:        "given non numeric id should fail",
			flags:       []string{"size=XL"},
			expectedErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual, err := ParseSelection(test.flags)
			if test.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, attribute.Key(test.expected), attribute.Key(actual))
		})
	}
}

func TestPrint(t *testing.T) {
	out := bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, Print(cmd, map[string]int{"count": 2}))

	assert.JSONEq(t, `{"count":2}`, out.String())
}

func TestFail(t *testing.T) {
	err := Fail(&api.Error{StatusCode: http.StatusUnprocessableEntity, Message: "Coupon expired."})
	assert.EqualError(t, err, "Coupon expired.")

	err = Fail(errors.New("dial tcp: connection refused"))
	assert.EqualError(t, err, "something went wrong, please try again")

	err = Fail(fmt.Errorf("failed placing order with error=%w", commonErrors.ErrEmptyCart))
	assert.ErrorIs(t, err, commonErrors.ErrEmptyCart)
}
