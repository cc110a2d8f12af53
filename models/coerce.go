// path: models/coerce.go
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ParseCount coerces a loosely typed quantity to a non-negative integer.
// Numbers are truncated, strings are read up to the first non-digit, and
// anything else (nil, bools, garbage, negatives, NaN) is 0.
func ParseCount(v any) int64 {
	var n int64
	switch x := v.(type) {
	case nil:
		return 0
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		n = int64(x)
	case uint32:
		n = int64(x)
	case float32:
		n = floatCount(float64(x))
	case float64:
		n = floatCount(x)
	case Count:
		n = int64(x)
	case json.Number:
		n = leadingInt(x.String())
	case string:
		n = leadingInt(x)
	case []byte:
		n = leadingInt(string(x))
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

func floatCount(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(f)
}

// leadingInt reads an optionally signed run of leading digits, the way a
// form field like "12 people" is read as 12.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var n int64
	digits := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if n > (math.MaxInt64-9)/10 {
			break
		}
		n = n*10 + int64(r-'0')
		digits++
	}
	if digits == 0 {
		return 0
	}
	if neg {
		return -n
	}
	return n
}

// Count is a quantity that decodes permissively through ParseCount.
type Count int64

func (c *Count) UnmarshalJSON(b []byte) error {
	var v any
	d := json.NewDecoder(strings.NewReader(string(b)))
	d.UseNumber()
	if err := d.Decode(&v); err != nil {
		*c = 0
		return nil
	}
	*c = Count(ParseCount(v))
	return nil
}

func (c *Count) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Int32:
		*c = Count(ParseCount(rv.Int32()))
	case bsontype.Int64:
		*c = Count(ParseCount(rv.Int64()))
	case bsontype.Double:
		*c = Count(ParseCount(rv.Double()))
	case bsontype.String:
		*c = Count(ParseCount(rv.StringValue()))
	default:
		*c = 0
	}
	return nil
}

// SupplyTypes is the normalized tag list. Stored records may carry either an
// array or a legacy comma-joined string; both decode into this form with
// blank tags dropped.
type SupplyTypes []SupplyType

// ParseSupplyTypes splits a legacy comma-joined tag string.
func ParseSupplyTypes(s string) SupplyTypes {
	return normalizeTags(strings.Split(s, ","))
}

func normalizeTags(raw []string) SupplyTypes {
	out := SupplyTypes{}
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, SupplyType(t))
	}
	return out
}

// Contains reports whether t is present.
func (s SupplyTypes) Contains(t SupplyType) bool {
	for _, x := range s {
		if x == t {
			return true
		}
	}
	return false
}

func (s SupplyTypes) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.strings())
}

func (s *SupplyTypes) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("supply types: %w", err)
	}
	switch x := v.(type) {
	case nil:
		*s = SupplyTypes{}
	case string:
		*s = ParseSupplyTypes(x)
	case []any:
		raw := make([]string, 0, len(x))
		for _, e := range x {
			if str, ok := e.(string); ok {
				raw = append(raw, str)
			}
		}
		*s = normalizeTags(raw)
	default:
		return fmt.Errorf("supply types: unexpected %T", v)
	}
	return nil
}

func (s SupplyTypes) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(s.strings())
}

func (s *SupplyTypes) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*s = ParseSupplyTypes(rv.StringValue())
	case bsontype.Array:
		var raw []string
		if err := rv.Unmarshal(&raw); err != nil {
			return fmt.Errorf("supply types: %w", err)
		}
		*s = normalizeTags(raw)
	default:
		*s = SupplyTypes{}
	}
	return nil
}

func (s SupplyTypes) strings() []string {
	out := make([]string, 0, len(s))
	for _, t := range s {
		out = append(out, string(t))
	}
	return out
}
