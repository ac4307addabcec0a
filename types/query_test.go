package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzeParamsValidate(t *testing.T) {
	ok := &AnalyzeParams{SourceType: "text", Data: "some policy"}
	assert.Empty(t, Validate(ok))

	okURL := &AnalyzeParams{SourceType: "url", Data: "https://example.org/privacy"}
	assert.Empty(t, Validate(okURL))

	badType := &AnalyzeParams{SourceType: "pdf", Data: "x"}
	assert.Contains(t, Validate(badType), "SourceType")

	noData := &AnalyzeParams{SourceType: "text"}
	assert.Contains(t, Validate(noData), "Data")
}

func TestChatParamsValidate(t *testing.T) {
	ok := &ChatParams{DocumentID: uuid.New().String(), Question: "what do you collect?"}
	assert.Empty(t, Validate(ok))

	badID := &ChatParams{DocumentID: "not-a-uuid", Question: "q"}
	assert.Contains(t, Validate(badID), "DocumentID")

	noQuestion := &ChatParams{DocumentID: uuid.New().String()}
	assert.Contains(t, Validate(noQuestion), "Question")
}

func TestComplianceParamsValidate(t *testing.T) {
	ok := &ComplianceParams{DocumentID: uuid.New().String(), Regulation: "GDPR"}
	assert.Empty(t, Validate(ok))

	badReg := &ComplianceParams{DocumentID: uuid.New().String(), Regulation: "HIPAA"}
	assert.Contains(t, Validate(badReg), "Regulation")
}
