package mapping

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Callers use errors.Is to classify a
// returned error; MissingAttribute and InvalidValue additionally carry context
// retrievable with errors.As.
var (
	// ErrStorage wraps any failure returned by the graph database or its driver.
	ErrStorage = errors.New("storage error")

	// ErrDeserialization means a row fetched successfully could not be parsed
	// into the target shape.
	ErrDeserialization = errors.New("deserialization error")

	// ErrSerialization means a user payload could not be converted to the wire
	// form.
	ErrSerialization = errors.New("serialization error")
)

// MissingAttributeError reports that a typed decoder required an attribute that
// was not present in the entity's attribute set.
type MissingAttributeError struct {
	AttributeID string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("missing attribute: %s", e.AttributeID)
}

// InvalidValueError reports that a value was present but incompatible with the
// decoder: the wrong value_type, or a value that failed to parse as the
// requested Go type.
type InvalidValueError struct {
	Description string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value: %s", e.Description)
}

// MissingAttribute builds a MissingAttributeError.
func MissingAttribute(attributeID string) error {
	return &MissingAttributeError{AttributeID: attributeID}
}

// InvalidValue builds an InvalidValueError.
func InvalidValue(description string) error {
	return &InvalidValueError{Description: description}
}

// IsMissingAttribute reports whether err (or a wrapped cause) is a
// MissingAttributeError, and returns the attribute id when true.
func IsMissingAttribute(err error) (string, bool) {
	var missing *MissingAttributeError
	if errors.As(err, &missing) {
		return missing.AttributeID, true
	}
	return "", false
}

// IsInvalidValue reports whether err (or a wrapped cause) is an
// InvalidValueError.
func IsInvalidValue(err error) bool {
	var invalid *InvalidValueError
	return errors.As(err, &invalid)
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
