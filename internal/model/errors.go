package model

import "errors"

var (
	ErrInvalidVehicleData  = errors.New("invalid vehicle data")
	ErrInvalidIncome       = errors.New("invalid income")
	ErrMissingRequiredCost = errors.New("missing required cost")
	ErrInvalidRequest      = errors.New("invalid request")
)

const (
	CodeInvalidVehicleData  = "INVALID_VEHICLE_DATA"
	CodeInvalidIncome       = "INVALID_INCOME"
	CodeMissingRequiredCost = "MISSING_REQUIRED_COST"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInternal            = "INTERNAL_ERROR"
)

// CodeOf maps an error from the calculation pipeline to its message code.
func CodeOf(err error) string {
	switch {
	case errors.Is(err, ErrInvalidVehicleData):
		return CodeInvalidVehicleData
	case errors.Is(err, ErrInvalidIncome):
		return CodeInvalidIncome
	case errors.Is(err, ErrMissingRequiredCost):
		return CodeMissingRequiredCost
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	default:
		return CodeInternal
	}
}
