package bounds

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// NumericKind tells how a bbox leaf was written in the metadata document
type NumericKind int

const (
	Number NumericKind = iota + 1
	String
)

func (k NumericKind) String() string {
	switch k {
	case Number:
		return "number"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// NumericValue is a bbox leaf as found in the document. Upstream tooling
// emits either JSON numbers or numeric strings; both resolve through Float64.
type NumericValue struct {
	Kind NumericKind
	Text string
}

// NumberValue builds a NumericValue from a raw JSON number literal
func NumberValue(text string) NumericValue {
	return NumericValue{Kind: Number, Text: text}
}

// StringValue builds a NumericValue from a JSON string's contents
func StringValue(text string) NumericValue {
	return NumericValue{Kind: String, Text: text}
}

// Float64 converts the value to a float64
func (v NumericValue) Float64() (float64, error) {
	switch v.Kind {
	case Number, String:
	default:
		return 0, fmt.Errorf("unsupported numeric kind %d", v.Kind)
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not numeric: %w", v.Kind, v.Text, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s %q is not a finite coordinate", v.Kind, v.Text)
	}
	return f, nil
}

// numericFromAny classifies a located JSON leaf
func numericFromAny(a jsoniter.Any) (NumericValue, error) {
	switch a.ValueType() {
	case jsoniter.NumberValue:
		return NumberValue(a.ToString()), nil
	case jsoniter.StringValue:
		return StringValue(a.ToString()), nil
	case jsoniter.InvalidValue:
		return NumericValue{}, a.LastError()
	default:
		return NumericValue{}, fmt.Errorf("expected number or numeric string, got %s", valueTypeName(a.ValueType()))
	}
}

func valueTypeName(t jsoniter.ValueType) string {
	switch t {
	case jsoniter.NilValue:
		return "null"
	case jsoniter.BoolValue:
		return "bool"
	case jsoniter.ObjectValue:
		return "object"
	case jsoniter.ArrayValue:
		return "array"
	default:
		return "invalid value"
	}
}
