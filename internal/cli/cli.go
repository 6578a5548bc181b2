// Package cli holds the helpers shared by the domain commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/internal/api"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/product/pkg/attribute"
)

// Print writes v as indented JSON to the command output.
func Print(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed printing output with error=%w", err)
	}
	return nil
}

var known = []error{
	commonErrors.ErrUnauthorized,
	commonErrors.ErrEmptyCart,
	commonErrors.ErrGuestCheckout,
	commonErrors.ErrEmptySlug,
	commonErrors.ErrLineNotFound,
	commonErrors.ErrInvalidQuantity,
	commonErrors.ErrMissingAttribute,
	commonErrors.ErrOutOfStock,
	commonErrors.ErrInsufficientStock,
}

// Fail turns a service error into the message a shopper reads.
func Fail(err error) error {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		for _, sentinel := range known {
			if errors.Is(err, sentinel) {
				return sentinel
			}
		}
	}
	return errors.New(api.UserMessage(err))
}

// ParseSelection reads repeated --attr flags of the form id=value[,value].
// Numeric values are taken as value ids, anything else as text.
func ParseSelection(flags []string) (attribute.Selection, error) {
	selection := attribute.Selection{}
	for _, flag := range flags {
		key, raw, ok := strings.Cut(flag, "=")
		if !ok || raw == "" {
			return nil, fmt.Errorf("attribute %q must look like id=value", flag)
		}
		attributeID, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil || attributeID <= 0 {
			return nil, fmt.Errorf("attribute id %q must be a positive number", key)
		}
		values := []attribute.Value{}
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if id, err := strconv.ParseInt(part, 10, 64); err == nil {
				values = append(values, attribute.ID(id))
				continue
			}
			values = append(values, attribute.Text(part))
		}
		selection = selection.Set(attributeID, append(selection.Get(attributeID), values...)...)
	}
	return selection, nil
}
