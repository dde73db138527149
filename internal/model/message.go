package model

type CalculationMessage struct {
	ID      int    `json:"id"`
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
)

// Warning codes. Critical codes come from CodeOf.
const (
	CodeUnknownFuel          = "UNKNOWN_FUEL_CATEGORY"
	CodeRegistrationDate     = "REGISTRATION_DATE_UNKNOWN"
	CodeMissingListPrice     = "MISSING_LIST_PRICE"
	CodeEstimatedListPrice   = "ESTIMATED_LIST_PRICE"
	CodeEstimatedMarketValue = "ESTIMATED_MARKET_VALUE"
	CodeEstimatedRoadTax     = "ESTIMATED_ROAD_TAX"
	CodeEstimatedInsurance   = "ESTIMATED_INSURANCE"
	CodeEstimatedMaintenance = "ESTIMATED_MAINTENANCE"
	CodeEstimatedResidual    = "ESTIMATED_RESIDUAL_VALUE"
	CodeDefaultedPurchase    = "DEFAULTED_PURCHASE_PRICE"
	CodeDefaultedDeprYears   = "DEFAULTED_DEPRECIATION_YEARS"
)

func Warning(code, message string) CalculationMessage {
	return CalculationMessage{Level: LevelWarning, Code: code, Message: message}
}
