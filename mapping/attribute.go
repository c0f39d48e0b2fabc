package mapping

import (
	"fmt"
	"reflect"
)

// AttributeNode is the payload of one ATTRIBUTE edge: the schema id of the
// attribute, its typed value, and an optional embedding for semantic search.
type AttributeNode struct {
	ID        string
	Value     Value
	Embedding []float64 // nil when the attribute carries no embedding
}

// Indexed reports whether this attribute node should be labeled :Indexed and
// therefore be a candidate for vector search.
func (a AttributeNode) Indexed() bool {
	return len(a.Embedding) > 0
}

// Attributes is the bulk container for an entity's attribute set within one
// space/version, read and written together.
type Attributes map[string]AttributeNode

// NewAttributes builds an empty Attributes container.
func NewAttributes() Attributes {
	return Attributes{}
}

// Attribute inserts or replaces an AttributeNode, keyed by its own ID.
func (a Attributes) Attribute(attr AttributeNode) Attributes {
	a[attr.ID] = attr
	return a
}

// Text is a convenience constructor chaining a text attribute onto a.
func (a Attributes) Text(attributeID, value string) Attributes {
	return a.Attribute(AttributeNode{ID: attributeID, Value: NewTextValue(value)})
}

// Number is a convenience constructor chaining a number attribute onto a.
func (a Attributes) Number(attributeID string, value float64) Attributes {
	return a.Attribute(AttributeNode{ID: attributeID, Value: NewNumberValue(value)})
}

// Pop removes attributeID from a and coerces its Value via decode, failing
// with MissingAttribute if absent or InvalidValue if decode fails.
func Pop[T any](a Attributes, attributeID string, decode func(Value) (T, error)) (T, error) {
	var zero T
	attr, ok := a[attributeID]
	if !ok {
		return zero, MissingAttribute(attributeID)
	}
	delete(a, attributeID)
	v, err := decode(attr.Value)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// Get reads attributeID from a without removing it.
func Get[T any](a Attributes, attributeID string, decode func(Value) (T, error)) (T, error) {
	var zero T
	attr, ok := a[attributeID]
	if !ok {
		return zero, MissingAttribute(attributeID)
	}
	return decode(attr.Value)
}

// PopString pops a text attribute as a plain Go string.
func PopString(a Attributes, attributeID string) (string, error) {
	return Pop(a, attributeID, Value.AsString)
}

// PopNumber pops a number attribute as a float64.
func PopNumber(a Attributes, attributeID string) (float64, error) {
	return Pop(a, attributeID, Value.AsNumber)
}

// PopBool pops a checkbox attribute as a bool.
func PopBool(a Attributes, attributeID string) (bool, error) {
	return Pop(a, attributeID, Value.AsBool)
}

// IntoAttributes is implemented by any typed payload that can be serialized
// into an Attributes bag for writing.
type IntoAttributes interface {
	IntoAttributes() (Attributes, error)
}

// FromAttributes is implemented by any typed payload that can be decoded out
// of an Attributes bag after a read.
type FromAttributes interface {
	FromAttributes(Attributes) error
}

// kgTag is the struct tag StructToAttributes/AttributesToStruct use to map a Go
// field to an attribute id, e.g. `kg:"name-property"`.
const kgTag = "kg"

// StructToAttributes reflects over a plain struct (string/float64/bool/int
// fields tagged `kg:"attribute-id"`) and builds an Attributes bag, sparing
// callers from hand-writing IntoAttributes for simple payloads. This is
// additive sugar; it does not replace the explicit IntoAttributes/FromAttributes
// interfaces, which remain the contract callers with non-trivial payloads
// implement directly.
func StructToAttributes(v any) (Attributes, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, ErrSerialization
	}

	out := NewAttributes()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		attrID := field.Tag.Get(kgTag)
		if attrID == "" {
			continue
		}
		fv := rv.Field(i)
		switch fv.Kind() {
		case reflect.String:
			out = out.Text(attrID, fv.String())
		case reflect.Float32, reflect.Float64:
			out = out.Number(attrID, fv.Float())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out = out.Number(attrID, float64(fv.Int()))
		case reflect.Bool:
			out = out.Attribute(AttributeNode{ID: attrID, Value: NewCheckboxValue(fv.Bool())})
		default:
			return nil, fmt.Errorf("%w: unsupported field kind %s for attribute %s", ErrSerialization, fv.Kind(), attrID)
		}
	}
	return out, nil
}

// AttributesToStruct is the inverse of StructToAttributes: it decodes attrs
// into the tagged fields of the struct pointed to by dst.
func AttributesToStruct(attrs Attributes, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: AttributesToStruct requires a struct pointer", ErrDeserialization)
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		attrID := field.Tag.Get(kgTag)
		if attrID == "" {
			continue
		}
		attr, ok := attrs[attrID]
		if !ok {
			return MissingAttribute(attrID)
		}
		fv := rv.Field(i)
		switch fv.Kind() {
		case reflect.String:
			s, err := attr.Value.AsString()
			if err != nil {
				return err
			}
			fv.SetString(s)
		case reflect.Float32, reflect.Float64:
			n, err := attr.Value.AsNumber()
			if err != nil {
				return err
			}
			fv.SetFloat(n)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, err := attr.Value.AsNumber()
			if err != nil {
				return err
			}
			fv.SetInt(int64(n))
		case reflect.Bool:
			b, err := attr.Value.AsBool()
			if err != nil {
				return err
			}
			fv.SetBool(b)
		default:
			return fmt.Errorf("%w: unsupported field kind %s for attribute %s", ErrDeserialization, fv.Kind(), attrID)
		}
	}
	return nil
}
