package mapping

import (
	"fmt"
	"strconv"
)

// ValueType enumerates the scalar kinds an attribute value may carry.
type ValueType string

const (
	ValueTypeText     ValueType = "text"
	ValueTypeNumber   ValueType = "number"
	ValueTypeCheckbox ValueType = "checkbox"
	ValueTypeURL      ValueType = "url"
	ValueTypeTime     ValueType = "time"
	ValueTypePoint    ValueType = "point"
)

// Options carries the optional presentation metadata a Value may have: a
// display format, a unit, or a language tag.
type Options struct {
	Format   string `json:"format,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Language string `json:"language,omitempty"`
}

// Value is the typed scalar stored on an AttributeNode. It is always carried
// in its string wire form alongside a declared ValueType; the Go-typed
// accessors AsString/AsNumber/AsBool coerce from this form, and Pop/Get apply
// them to an Attributes bag.
type Value struct {
	Value     string    `json:"value"`
	ValueType ValueType `json:"valueType"`
	Options   Options   `json:"options,omitempty"`
}

// NewTextValue builds a text Value.
func NewTextValue(s string) Value { return Value{Value: s, ValueType: ValueTypeText} }

// NewNumberValue builds a number Value from a float64, formatted so that
// decode(encode(v)) round-trips.
func NewNumberValue(n float64) Value {
	return Value{Value: strconv.FormatFloat(n, 'g', -1, 64), ValueType: ValueTypeNumber}
}

// NewCheckboxValue builds a checkbox (boolean) Value.
func NewCheckboxValue(b bool) Value {
	return Value{Value: strconv.FormatBool(b), ValueType: ValueTypeCheckbox}
}

// NewURLValue builds a url Value.
func NewURLValue(u string) Value { return Value{Value: u, ValueType: ValueTypeURL} }

// NewTimeValue builds a time Value from an RFC3339 string.
func NewTimeValue(t string) Value { return Value{Value: t, ValueType: ValueTypeTime} }

// NewPointValue builds a point Value from "x,y" (or "x,y,z") coordinate text.
func NewPointValue(p string) Value { return Value{Value: p, ValueType: ValueTypePoint} }

// AsString coerces the Value to a Go string, valid for any ValueType since the
// wire form is always text; most callers of a typed decoder will instead use
// AsNumber/AsBool for non-text types.
func (v Value) AsString() (string, error) {
	return v.Value, nil
}

// AsNumber coerces a ValueTypeNumber Value to float64, failing with
// InvalidValue if the declared type is not number or the text does not parse.
func (v Value) AsNumber() (float64, error) {
	if v.ValueType != ValueTypeNumber {
		return 0, InvalidValue(fmt.Sprintf("expected value_type=number, got %s", v.ValueType))
	}
	n, err := strconv.ParseFloat(v.Value, 64)
	if err != nil {
		return 0, InvalidValue(fmt.Sprintf("value %q is not a number: %v", v.Value, err))
	}
	return n, nil
}

// AsBool coerces a ValueTypeCheckbox Value to bool.
func (v Value) AsBool() (bool, error) {
	if v.ValueType != ValueTypeCheckbox {
		return false, InvalidValue(fmt.Sprintf("expected value_type=checkbox, got %s", v.ValueType))
	}
	b, err := strconv.ParseBool(v.Value)
	if err != nil {
		return false, InvalidValue(fmt.Sprintf("value %q is not a checkbox: %v", v.Value, err))
	}
	return b, nil
}
