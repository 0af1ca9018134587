package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ValueKind is the dynamic type of a spreadsheet cell.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindString
	KindNumber
	KindBool
)

// Value is a loosely typed spreadsheet cell.
type Value struct {
	Kind ValueKind
	Str  string
	Num  decimal.Decimal
	Bool bool
}

// Field is one column of a record.
type Field struct {
	Key   string
	Value Value
}

// Fields is an ordered column-key to value mapping. Order is significant: row
// normalization picks the first cell that matches each heuristic.
type Fields []Field

func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

func NumberValue(d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Num: d}
}

func IntValue(n int64) Value {
	return NumberValue(decimal.NewFromInt(n))
}

func FloatValue(f float64) Value {
	return NumberValue(decimal.NewFromFloat(f))
}

func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

func (v Value) IsString() bool { return v.Kind == KindString }
func (v Value) IsNumber() bool { return v.Kind == KindNumber }

// String renders the cell the way it is shown in tables and exports.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num.String()
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// Truthy reports whether the cell holds something worth showing: empty strings,
// zero, false and missing cells are not.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindString:
		return v.Str != ""
	case KindNumber:
		return !v.Num.IsZero()
	case KindBool:
		return v.Bool
	default:
		return false
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return []byte(v.Num.String()), nil
	case KindBool:
		return json.Marshal(v.Bool)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	val, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// Get returns the value stored under key.
func (f Fields) Get(key string) (Value, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return Value{}, false
}

// Keys returns the column keys in order.
func (f Fields) Keys() []string {
	keys := make([]string, len(f))
	for i, field := range f {
		keys[i] = field.Key
	}
	return keys
}

func (f Fields) Len() int { return len(f) }

// Filled counts the cells that hold a truthy value.
func (f Fields) Filled() int {
	n := 0
	for _, field := range f {
		if field.Value.Truthy() {
			n++
		}
	}
	return n
}

// MarshalJSON writes the fields as an object with keys in column order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := field.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping the document's key order. Nested
// objects and arrays are not spreadsheet cells and decode as empty values.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("fields: expected object, got %v", tok)
	}

	out := Fields{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("fields: expected key, got %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return fmt.Errorf("fields: key %q: %w", key, err)
		}
		out = append(out, Field{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Value{}, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t, err)
		}
		return NumberValue(d), nil
	case float64:
		return FloatValue(t), nil
	case json.Delim:
		return Value{}, skipComposite(dec)
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

// skipComposite consumes the rest of an object or array whose opening delimiter was already read.
func skipComposite(dec *json.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

// MarshalJSON renders the record as its cells, the shape shown in the detail view.
func (r Record) MarshalJSON() ([]byte, error) {
	return r.Fields.MarshalJSON()
}
