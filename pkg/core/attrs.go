package core

import (
	"encoding/json"
	"fmt"
)

// AttrKind discriminates the variants of AttrValue.
type AttrKind uint8

const (
	AttrString AttrKind = iota
	AttrNumber
	AttrBool
	AttrList
	AttrMap
)

// AttrValue is a closed tagged union of the scalar and composite kinds
// allowed in an event's custom attribute map. Consumers switch on Kind
// and use the typed accessors; there is no untyped escape hatch.
type AttrValue struct {
	kind AttrKind
	str  string
	num  float64
	b    bool
	list []AttrValue
	m    map[string]AttrValue
}

// Attrs is a string-keyed attribute map.
type Attrs map[string]AttrValue

func StringAttr(s string) AttrValue  { return AttrValue{kind: AttrString, str: s} }
func NumberAttr(n float64) AttrValue { return AttrValue{kind: AttrNumber, num: n} }
func BoolAttr(b bool) AttrValue      { return AttrValue{kind: AttrBool, b: b} }

func ListAttr(items ...AttrValue) AttrValue {
	return AttrValue{kind: AttrList, list: items}
}

func MapAttr(m map[string]AttrValue) AttrValue {
	return AttrValue{kind: AttrMap, m: m}
}

// Kind returns the variant tag.
func (v AttrValue) Kind() AttrKind { return v.kind }

// String returns the string value; ok is false for other kinds.
func (v AttrValue) String() (string, bool) { return v.str, v.kind == AttrString }

// Number returns the numeric value; ok is false for other kinds.
func (v AttrValue) Number() (float64, bool) { return v.num, v.kind == AttrNumber }

// Bool returns the boolean value; ok is false for other kinds.
func (v AttrValue) Bool() (bool, bool) { return v.b, v.kind == AttrBool }

// List returns the list items; ok is false for other kinds.
func (v AttrValue) List() ([]AttrValue, bool) { return v.list, v.kind == AttrList }

// Map returns the nested map; ok is false for other kinds.
func (v AttrValue) Map() (map[string]AttrValue, bool) { return v.m, v.kind == AttrMap }

// MarshalJSON encodes the value as its natural JSON type.
func (v AttrValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case AttrString:
		return json.Marshal(v.str)
	case AttrNumber:
		return json.Marshal(v.num)
	case AttrBool:
		return json.Marshal(v.b)
	case AttrList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case AttrMap:
		if v.m == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.m)
	default:
		return nil, fmt.Errorf("unknown attr kind %d", v.kind)
	}
}

// UnmarshalJSON decodes from the natural JSON type: string, number,
// bool, array, or object. null and other tokens are rejected.
func (v *AttrValue) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty attr value")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringAttr(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolAttr(b)
	case '[':
		var list []AttrValue
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*v = AttrValue{kind: AttrList, list: list}
	case '{':
		var m map[string]AttrValue
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*v = AttrValue{kind: AttrMap, m: m}
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported attr value %s", string(data))
		}
		*v = NumberAttr(n)
	}
	return nil
}
