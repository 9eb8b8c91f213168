package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"croppredict/internal/types"
)

func TestValidateStruct_AcceptsInBoundReading(t *testing.T) {
	v := NewValidator(discardLogger())

	reading := types.SoilReading{Nitrogen: 90, Phosphorus: 42, Potassium: 43, Temperature: 20.9, Humidity: 82, PH: 6.5}
	assert.NoError(t, v.ValidateStruct(reading))
}

func TestValidateStruct_BoundaryValuesPass(t *testing.T) {
	v := NewValidator(discardLogger())

	low := types.SoilReading{Temperature: types.MinTemperature, Humidity: types.MinHumidity, PH: types.MinPH}
	high := types.SoilReading{
		Nitrogen: types.MaxNutrient, Phosphorus: types.MaxNutrient, Potassium: types.MaxNutrient,
		Temperature: types.MaxTemperature, Humidity: types.MaxHumidity, PH: types.MaxPH,
	}
	assert.NoError(t, v.ValidateStruct(low))
	assert.NoError(t, v.ValidateStruct(high))
}

func TestValidateStruct_ReportsFieldsByJSONName(t *testing.T) {
	v := NewValidator(discardLogger())

	reading := types.SoilReading{Nitrogen: 250, Temperature: -20, Humidity: 50, PH: 15}
	err := v.ValidateStruct(reading)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationOutOfBounds, appErr.Code)

	fields := FieldErrors(err)
	assert.Equal(t, map[string]string{
		"nitrogen":    "must be at most 200",
		"temperature": "must be at least -10",
		"ph":          "must be at most 14",
	}, fields)
}

func TestValidateStruct_Required(t *testing.T) {
	type body struct {
		Temperature *float64 `json:"temperature" validate:"required"`
		Internal    string   `json:"-" validate:"omitempty"`
	}
	v := NewValidator(discardLogger())

	err := v.ValidateStruct(body{})
	assert.Equal(t, map[string]string{"temperature": "is required"}, FieldErrors(err))
}

func TestFieldErrors_IgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(nil))
	assert.Nil(t, FieldErrors(errors.New("boom")))
	assert.Nil(t, FieldErrors(types.NewAppError(types.ErrCodeValidationInvalidJSON, "bad", nil)))
}

func TestValidateStruct_NonStructIsInternalError(t *testing.T) {
	v := NewValidator(nil)

	err := v.ValidateStruct(42)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalUnexpected, appErr.Code)
}
