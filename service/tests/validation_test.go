package service_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/smartexpenses/whiteboard/service"
	"github.com/stretchr/testify/assert"
)

func TestValidateShapeType(t *testing.T) {
	for _, shapeType := range []string{"PEN", "RECTANGLE", "CIRCLE", "TEXT", "STICKY_NOTE", "ARROW", "LINE", "TRIANGLE"} {
		assert.NoError(t, service.ValidateShapeType(shapeType))
	}

	assert.ErrorIs(t, service.ValidateShapeType("HEXAGON"), service.ErrValidation)
	assert.ErrorIs(t, service.ValidateShapeType("pen"), service.ErrValidation)
	assert.ErrorIs(t, service.ValidateShapeType(""), service.ErrValidation)
}

func TestValidateShapeData(t *testing.T) {
	assert.NoError(t, service.ValidateShapeData([]byte(`{"x":1,"y":2}`)))
	assert.NoError(t, service.ValidateShapeData([]byte(`{}`)))

	assert.ErrorIs(t, service.ValidateShapeData(nil), service.ErrValidation)
	assert.ErrorIs(t, service.ValidateShapeData([]byte(`[1,2,3]`)), service.ErrValidation)
	assert.ErrorIs(t, service.ValidateShapeData([]byte(`"just a string"`)), service.ErrValidation)
	assert.ErrorIs(t, service.ValidateShapeData([]byte(`{"broken":`)), service.ErrValidation)
}

func TestValidateShapeData_SizeCap(t *testing.T) {
	// A valid object just over 64KB
	padding := bytes.Repeat([]byte("a"), 64*1024)
	oversized := append([]byte(`{"pad":"`), padding...)
	oversized = append(oversized, []byte(`"}`)...)

	assert.ErrorIs(t, service.ValidateShapeData(oversized), service.ErrValidation)
}

func TestValidateId(t *testing.T) {
	assert.NoError(t, service.ValidateId("0f8fad5b-d9cb-469f-a165-70867728950e"))

	assert.ErrorIs(t, service.ValidateId(""), service.ErrValidation)
	assert.ErrorIs(t, service.ValidateId("board-1"), service.ErrValidation)
	assert.ErrorIs(t, service.ValidateId("0f8fad5b-d9cb-469f-a165"), service.ErrValidation)
}

func TestValidateBoardName(t *testing.T) {
	assert.NoError(t, service.ValidateBoardName("Retro board"))
	assert.NoError(t, service.ValidateBoardName(strings.Repeat("x", 100)))

	assert.ErrorIs(t, service.ValidateBoardName(""), service.ErrValidation)
	assert.ErrorIs(t, service.ValidateBoardName(strings.Repeat("x", 101)), service.ErrValidation)
}

func TestValidateBoardDescription(t *testing.T) {
	assert.NoError(t, service.ValidateBoardDescription(""))
	assert.NoError(t, service.ValidateBoardDescription(strings.Repeat("d", 500)))

	assert.ErrorIs(t, service.ValidateBoardDescription(strings.Repeat("d", 501)), service.ErrValidation)
}
