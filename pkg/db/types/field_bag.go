package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// FieldValue is one CRM custom-field value: a string, a number, or null.
type FieldValue struct {
	Text   *string
	Number *float64
}

// FieldBag maps custom-field names to their values. It round-trips through a
// jsonb column so the original payload structure stays auditable.
type FieldBag map[string]FieldValue

func StringValue(s string) FieldValue {
	return FieldValue{Text: &s}
}

func NumberValue(n float64) FieldValue {
	return FieldValue{Number: &n}
}

// String returns the textual form of the value, rendering numbers when the
// field carries no text.
func (v FieldValue) String() string {
	if v.Text != nil {
		return *v.Text
	}
	if v.Number != nil {
		data, _ := json.Marshal(*v.Number)
		return string(data)
	}
	return ""
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.Text != nil {
		return json.Marshal(*v.Text)
	}
	if v.Number != nil {
		return json.Marshal(*v.Number)
	}
	return []byte("null"), nil
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch typed := raw.(type) {
	case nil:
		*v = FieldValue{}
	case string:
		*v = StringValue(typed)
	case float64:
		*v = NumberValue(typed)
	default:
		// Nested structures are flattened to their JSON text so nothing from
		// the original payload is dropped.
		*v = StringValue(string(data))
	}
	return nil
}

func (b FieldBag) Value() (driver.Value, error) {
	if b == nil {
		return "{}", nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("FieldBag: marshal: %w", err)
	}
	return string(data), nil
}

func (b *FieldBag) Scan(src any) error {
	if src == nil {
		*b = FieldBag{}
		return nil
	}
	var data []byte
	switch typed := src.(type) {
	case []byte:
		data = typed
	case string:
		data = []byte(typed)
	default:
		return fmt.Errorf("FieldBag: unsupported Scan type %T", src)
	}
	if len(data) == 0 {
		*b = FieldBag{}
		return nil
	}
	return json.Unmarshal(data, b)
}

// Get returns the value stored under name together with a presence flag.
func (b FieldBag) Get(name string) (FieldValue, bool) {
	v, ok := b[name]
	return v, ok
}
