package attribute

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// Selection maps an attribute id to its selected values.
type Selection map[string][]Value

func (s Selection) Set(attributeID int64, values ...Value) Selection {
	if s == nil {
		s = Selection{}
	}
	s[strconv.FormatInt(attributeID, 10)] = values
	return s
}

func (s Selection) Get(attributeID int64) []Value {
	return s[strconv.FormatInt(attributeID, 10)]
}

// Clone returns a deep copy so cached lines never share slices with callers.
func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = append([]Value(nil), v...)
	}
	return out
}

// UnmarshalJSON accepts a list or a bare value per attribute and wraps bare
// values into one-element lists.
func (s *Selection) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte("[]")) {
		*s = Selection{}
		return nil
	}
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Selection, len(raw))
	for k, r := range raw {
		r = bytes.TrimSpace(r)
		if len(r) > 0 && r[0] == '[' {
			values := []Value{}
			if err := json.Unmarshal(r, &values); err != nil {
				return err
			}
			out[k] = values
			continue
		}
		var v Value
		if err := json.Unmarshal(r, &v); err != nil {
			return err
		}
		out[k] = []Value{v}
	}
	*s = out
	return nil
}

// Key is the canonical serialization: keys sorted, value lists kept in order.
func Key(s Selection) string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(k)
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteByte('[')
		for j, v := range s[k] {
			if j > 0 {
				buf.WriteByte(',')
			}
			b, _ := v.MarshalJSON()
			buf.Write(b)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.String()
}

// Equal reports whether a and b select the same variant. nil and empty are equal.
func Equal(a, b Selection) bool {
	return Key(a) == Key(b)
}
