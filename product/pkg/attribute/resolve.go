package attribute

import (
	"strconv"
	"strings"

	"github.com/Alturino/storefront/product/pkg/response"
)

// Resolve finds the option of attr that v refers to. Precedence: numeric id,
// numeric-looking string as id, then raw value and display value compared
// case-insensitively.
func Resolve(attr response.Attribute, v Value) (response.AttributeValue, bool) {
	if id, ok := v.ValueID(); ok {
		for _, opt := range attr.Values {
			if opt.ID == id {
				return opt, true
			}
		}
	}

	text := strings.TrimSpace(v.String())
	if text == "" {
		return response.AttributeValue{}, false
	}
	for _, opt := range attr.Values {
		if opt.RawValue != "" && strings.EqualFold(strings.TrimSpace(opt.RawValue), text) {
			return opt, true
		}
	}
	for _, opt := range attr.Values {
		if strings.EqualFold(strings.TrimSpace(opt.Value), text) {
			return opt, true
		}
	}
	return response.AttributeValue{}, false
}

// Missing returns the required attributes that s leaves unselected.
func Missing(attrs []response.Attribute, s Selection) []response.Attribute {
	missing := []response.Attribute{}
	for _, attr := range attrs {
		if !attr.Required {
			continue
		}
		if !hasValue(s[strconv.FormatInt(attr.ID, 10)]) {
			missing = append(missing, attr)
		}
	}
	return missing
}

func hasValue(values []Value) bool {
	for _, v := range values {
		if v.IsID() || strings.TrimSpace(v.String()) != "" {
			return true
		}
	}
	return false
}
