package types

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

// AnalyzeParams is the body of POST /api/v1/analyze.
// SourceType selects how Data is interpreted: raw policy text or a URL
// to fetch the policy from.
type AnalyzeParams struct {
	SourceType string `json:"source_type" validate:"required,oneof=text url"`
	Data       string `json:"data" validate:"required"`
	Title      string `json:"title"`
}

// ChatParams is the body of POST /api/v1/chat.
type ChatParams struct {
	DocumentID string `json:"document_id" validate:"required,uuid4"`
	Question   string `json:"question" validate:"required"`
}

// RenameParams is the body of PUT /api/v1/chats/:id.
type RenameParams struct {
	Title string `json:"title" validate:"required"`
}

// CompareParams is the body of POST /api/v1/compare.
type CompareParams struct {
	DocumentIDs []string `json:"document_ids" validate:"required,min=2,dive,uuid4"`
}

// ComplianceParams is the body of POST /api/v1/agents/compliance.
type ComplianceParams struct {
	DocumentID string `json:"document_id" validate:"required,uuid4"`
	Regulation string `json:"regulation" validate:"required,oneof=GDPR CCPA COPPA"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *AnalyzeParams) Validate() map[string]string    { return validateParams(params) }
func (params *ChatParams) Validate() map[string]string       { return validateParams(params) }
func (params *RenameParams) Validate() map[string]string     { return validateParams(params) }
func (params *CompareParams) Validate() map[string]string    { return validateParams(params) }
func (params *ComplianceParams) Validate() map[string]string { return validateParams(params) }

func validateParams(v any) map[string]string {
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

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: http.StatusUnprocessableEntity,
		Errors: errors,
	}
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

// ChatResponse is the reply of POST /api/v1/chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// CompareResponse is the reply of POST /api/v1/compare.
type CompareResponse struct {
	Comparison string `json:"comparison"`
}

// AnalyzeResponse is the reply of POST /api/v1/analyze.
type AnalyzeResponse struct {
	DocumentID string    `json:"document_id"`
	Analysis   *Analysis `json:"analysis"`
}
