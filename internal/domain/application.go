package domain

import (
	"time"
)

// MSME size categories. Limit bounds are configured per category.
const (
	MSMECategoryMicro  = "micro"
	MSMECategorySmall  = "small"
	MSMECategoryMedium = "medium"
)

// Application represents an incoming MSME loan application to be scored.
type Application struct {
	// Core identifiers
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`

	// ApplicantID identifies the business across repeat applications.
	ApplicantID string `json:"applicantId"`

	// Segment and size category drive segment-specific scoring tables
	// and per-category limit bounds.
	BusinessSegment string `json:"businessSegment"`
	MSMECategory    string `json:"msmeCategory"`

	// Raw applicant features assembled by the upstream ingestion layer.
	Features FeatureSet `json:"features"`

	// Financials used by the loan limit methods.
	Financials BusinessFinancials `json:"financials"`

	// ExternalProbability is the default-probability estimate produced by
	// the externally trained classifier. It is a plain input value; the
	// engine never fetches it.
	ExternalProbability float64 `json:"externalProbability"`

	// Alpha optionally overrides the blending weight for this request.
	Alpha *float64 `json:"alpha,omitempty"`

	// Temporal
	CreatedAt time.Time `json:"createdAt"`

	// Optional metadata
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// BusinessFinancials holds the balance-sheet and cash-flow figures used
// by the three limit methods. All values are non-negative currency amounts.
type BusinessFinancials struct {
	AnnualTurnover     float64 `json:"annualTurnover"`
	MonthlySurplus     float64 `json:"monthlySurplus"`
	CurrentAssets      float64 `json:"currentAssets"`
	CurrentLiabilities float64 `json:"currentLiabilities"`
	ExistingDebt       float64 `json:"existingDebt"`
}

// ScoreRequest is the API request payload for scoring an application.
type ScoreRequest struct {
	ApplicantID         string                 `json:"applicantId"`
	BusinessSegment     string                 `json:"businessSegment"`
	MSMECategory        string                 `json:"msmeCategory"`
	Features            FeatureSet             `json:"features"`
	Financials          BusinessFinancials     `json:"financials"`
	ExternalProbability float64                `json:"externalProbability"`
	Alpha               *float64               `json:"alpha,omitempty"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
}

// ToApplication converts a request to an Application domain object.
func (r *ScoreRequest) ToApplication() *Application {
	now := time.Now().UTC()
	return &Application{
		ApplicantID:         r.ApplicantID,
		BusinessSegment:     r.BusinessSegment,
		MSMECategory:        r.MSMECategory,
		Features:            r.Features,
		Financials:          r.Financials,
		ExternalProbability: r.ExternalProbability,
		Alpha:               r.Alpha,
		CreatedAt:           now,
		Metadata:            r.Metadata,
	}
}
