package model

type CalculationResponse struct {
	CalculationMetadata CalculationMetadata `json:"calculation_metadata"`
	CalculationResult   CalculationResult   `json:"calculation_result"`
}

type CalculationMetadata struct {
	CalculationID          string `json:"calculation_id"`
	TenantID               string `json:"tenant_id,omitempty"`
	CalculationStartedAt   string `json:"calculation_started_at"`
	CalculationCompletedAt string `json:"calculation_completed_at"`
	CalculationDurationMs  int64  `json:"calculation_duration_ms"`
	CalculationOutcome     string `json:"calculation_outcome"`
	AsOfYear               int    `json:"as_of_year"`
	AsOfInstant            string `json:"as_of_instant"`
}

type CalculationResult struct {
	Messages      []CalculationMessage `json:"messages"`
	Vehicle       *VehicleDescription  `json:"vehicle,omitempty"`
	BenefitInKind *BenefitInKindResult `json:"benefit_in_kind,omitempty"`
	TaxPercentage float64              `json:"tax_percentage,omitempty"`
	Comparison    *ComparisonResult    `json:"comparison,omitempty"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)
