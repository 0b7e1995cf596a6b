package cyphertx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the parameter types the transactional endpoint
// accepts: null, booleans, integers, floats, strings, and nested lists and
// string-keyed maps of those. Values are built bottom-up through the typed
// constructors, so a tree can never contain a cycle. A Value serializes to
// the endpoint's native JSON representation without loss.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	obj  map[string]Value
}

// Null returns the null Value. The zero Value is also null.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int wraps a 64-bit integer.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float wraps a 64-bit float.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String wraps a string.
func String(v string) Value { return Value{kind: KindString, s: v} }

// List wraps an ordered sequence of Values. The items are copied.
func List(items ...Value) Value {
	v := Value{kind: KindList}
	v.list = append(v.list, items...)
	return v
}

// Map wraps a string-keyed mapping of Values. The entries are copied.
func Map(entries map[string]Value) Value {
	v := Value{kind: KindMap, obj: make(map[string]Value, len(entries))}
	for key, entry := range entries {
		v.obj[key] = entry
	}
	return v
}

// Kind reports which variant the Value holds.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean payload and whether the Value holds one.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer payload and whether the Value holds one.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float payload and whether the Value holds one.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsString returns the string payload and whether the Value holds one.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsList returns a copy of the list payload and whether the Value holds one.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return append([]Value(nil), v.list...), true
}

// AsMap returns a copy of the map payload and whether the Value holds one.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	out := make(map[string]Value, len(v.obj))
	for key, entry := range v.obj {
		out[key] = entry
	}
	return out, true
}

// Interface lowers the Value tree to plain Go values (nil, bool, int64,
// float64, string, []any, map[string]any), the shape drivers that take
// map[string]any parameters expect.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.obj))
		for key, entry := range v.obj {
			out[key] = entry.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes the Value as its wire JSON representation. Integral
// floats keep a decimal point so they survive a decode round trip as floats.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("float value %v is not representable in JSON", v.f)
		}
		if math.Trunc(v.f) == v.f && math.Abs(v.f) < 1e15 {
			return []byte(strconv.FormatFloat(v.f, 'f', 1, 64)), nil
		}
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindMap:
		return json.Marshal(v.obj)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.kind)
	}
}

// UnmarshalJSON decodes any well-formed JSON value into the matching variant.
// Numbers without a fraction or exponent become integers, everything else a
// float.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return err
	}
	parsed, err := valueFromDecoded(decoded)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func valueFromDecoded(decoded any) (Value, error) {
	switch val := decoded.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(val), nil
	case json.Number:
		literal := val.String()
		if !strings.ContainsAny(literal, ".eE") {
			if i, err := val.Int64(); err == nil {
				return Int(i), nil
			}
		}
		f, err := val.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("unparseable number %q: %w", literal, err)
		}
		return Float(f), nil
	case string:
		return String(val), nil
	case []any:
		out := Value{kind: KindList}
		for _, item := range val {
			parsed, err := valueFromDecoded(item)
			if err != nil {
				return Value{}, err
			}
			out.list = append(out.list, parsed)
		}
		return out, nil
	case map[string]any:
		out := Value{kind: KindMap, obj: make(map[string]Value, len(val))}
		for key, item := range val {
			parsed, err := valueFromDecoded(item)
			if err != nil {
				return Value{}, err
			}
			out.obj[key] = parsed
		}
		return out, nil
	default:
		return Value{}, fmt.Errorf("unsupported JSON value of type %T", decoded)
	}
}
