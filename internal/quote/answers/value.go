package answers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindString
	KindNumber
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindList:
		return "list"
	default:
		return "none"
	}
}

// Value is an answer payload: a scalar string, a number, or a list of strings.
// The zero Value is "no answer".
type Value struct {
	kind ValueKind
	str  string
	num  float64
	list []string
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

func List(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

func (v Value) Kind() ValueKind { return v.kind }

// IsEmpty reports an absent value, a blank string or an empty list.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.str) == ""
	case KindNumber:
		return false
	case KindList:
		return len(v.list) == 0
	default:
		return true
	}
}

// Str renders scalar values as text. Lists are joined with ", ".
func (v Value) Str() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindList:
		return strings.Join(v.list, ", ")
	default:
		return ""
	}
}

// Float returns the numeric reading of the value. Numeric strings (as sent by form inputs)
// are parsed; anything else reports false.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(v.str, ",", "")), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Items returns a copy of the list items. A non-blank scalar string is a one-item list.
func (v Value) Items() []string {
	switch v.kind {
	case KindList:
		cp := make([]string, len(v.list))
		copy(cp, v.list)
		return cp
	case KindString:
		if v.IsEmpty() {
			return nil
		}
		return []string{v.str}
	default:
		return nil
	}
}

func (v Value) Contains(item string) bool {
	for _, it := range v.Items() {
		if it == item {
			return true
		}
	}
	return false
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("answer list must contain strings: %w", err)
		}
		*v = List(items...)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported answer value %s", string(data))
		}
		*v = Number(n)
	}
	return nil
}
