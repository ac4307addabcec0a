package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SharingClause is one itemized data-sharing statement found in a policy.
type SharingClause struct {
	Recipient string   `json:"recipient" validate:"required"`
	DataTypes []string `json:"data_types"`
	Purpose   string   `json:"purpose"`
}

// Analysis is the structured result of analyzing one policy document.
// Written all-or-nothing: an Analysis row exists only after the model
// output passed validation.
type Analysis struct {
	DocID          uuid.UUID       `json:"doc_id"`
	CompanyName    string          `json:"company_name"`
	CompanyDomain  string          `json:"company_domain"`
	PIICollected   []string        `json:"pii_collected" validate:"required,min=1,dive,required"`
	DataSharing    string          `json:"data_sharing_practices" validate:"required"`
	Retention      string          `json:"retention_summary" validate:"required"`
	RiskScore      int             `json:"risk_score" validate:"required,min=1,max=10"`
	FinalSummary   string          `json:"final_summary" validate:"required"`
	SharingClauses []SharingClause `json:"sharing_clauses" validate:"omitempty,dive"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ComplianceReport is the structured output of the compliance agent.
type ComplianceReport struct {
	Regulation        string   `json:"regulation"`
	IsCompliant       bool     `json:"is_compliant"`
	MissingElements   []string `json:"missing_elements"`
	CompliantElements []string `json:"compliant_elements"`
	Recommendations   []string `json:"recommendations"`
	ComplianceScore   int      `json:"compliance_score" validate:"required,min=1,max=10"`
}

func (a *Analysis) Validate() map[string]string {
	return validateStruct(a)
}

func (r *ComplianceReport) Validate() map[string]string {
	return validateStruct(r)
}

func validateStruct(v any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(v); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}
