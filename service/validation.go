package service

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"
)

var shapeTypes = map[string]bool{
	"PEN":         true,
	"RECTANGLE":   true,
	"CIRCLE":      true,
	"TEXT":        true,
	"STICKY_NOTE": true,
	"ARROW":       true,
	"LINE":        true,
	"TRIANGLE":    true,
}

const (
	maxShapeDataBytes = 64 * 1024
	maxBoardNameLen   = 100
	maxDescriptionLen = 500
)

func ValidateShapeType(shapeType string) error {
	if !shapeTypes[shapeType] {
		return fmt.Errorf("%w: unknown shape type %q", ErrValidation, shapeType)
	}
	return nil
}

// ValidateShapeData checks that the payload is a well-formed JSON object
// within the size cap. The contents stay opaque; only the renderer
// interprets them.
func ValidateShapeData(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: shape data missing", ErrValidation)
	}
	if len(data) > maxShapeDataBytes {
		return fmt.Errorf("%w: shape data too large", ErrValidation)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: shape data is not a JSON object", ErrValidation)
	}

	return nil
}

func ValidateId(id string) error {
	if _, err := uuid.FromString(id); err != nil {
		return fmt.Errorf("%w: malformed id", ErrValidation)
	}
	return nil
}

func ValidateBoardName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: board name missing", ErrValidation)
	}
	if utf8.RuneCountInString(name) > maxBoardNameLen {
		return fmt.Errorf("%w: board name too long", ErrValidation)
	}
	return nil
}

func ValidateBoardDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return fmt.Errorf("%w: board description too long", ErrValidation)
	}
	return nil
}
