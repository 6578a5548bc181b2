package attribute

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is one selected entry of an attribute: a numeric value id, or a
// legacy string for boolean/text inputs and older persisted selections.
type Value struct {
	id   int64
	text string
	isID bool
}

func ID(id int64) Value { return Value{id: id, isID: true} }

func Text(s string) Value { return Value{text: s} }

func (v Value) IsID() bool { return v.isID }

// ValueID returns the numeric id, or for a numeric-looking string its parsed form.
func (v Value) ValueID() (int64, bool) {
	if v.isID {
		return v.id, true
	}
	id, err := strconv.ParseInt(v.text, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (v Value) String() string {
	if v.isID {
		return strconv.FormatInt(v.id, 10)
	}
	return v.text
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isID {
		return []byte(strconv.FormatInt(v.id, 10)), nil
	}
	return json.Marshal(v.text)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*v = Value{}
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	case 't', 'f':
		var flag bool
		if err := json.Unmarshal(b, &flag); err != nil {
			return err
		}
		if flag {
			*v = Text("Yes")
		} else {
			*v = Text("No")
		}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("failed decoding attribute value=%s with error=%w", string(b), err)
	}
	id, err := n.Int64()
	if err != nil {
		*v = Text(n.String())
		return nil
	}
	*v = ID(id)
	return nil
}
