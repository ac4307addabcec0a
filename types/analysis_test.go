package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validAnalysis() *Analysis {
	return &Analysis{
		CompanyName:  "Acme",
		PIICollected: []string{"email"},
		DataSharing:  "shared with partners",
		Retention:    "24 months",
		RiskScore:    6,
		FinalSummary: "broad collection",
	}
}

func TestAnalysisValidateOK(t *testing.T) {
	assert.Empty(t, validAnalysis().Validate())
}

func TestAnalysisValidateRiskScoreBounds(t *testing.T) {
	low := validAnalysis()
	low.RiskScore = 0
	assert.Contains(t, low.Validate(), "RiskScore")

	high := validAnalysis()
	high.RiskScore = 11
	assert.Contains(t, high.Validate(), "RiskScore")

	edge := validAnalysis()
	edge.RiskScore = 10
	assert.Empty(t, edge.Validate())
}

func TestAnalysisValidateRequiredFields(t *testing.T) {
	noPII := validAnalysis()
	noPII.PIICollected = nil
	assert.Contains(t, noPII.Validate(), "PIICollected")

	emptyPIIEntry := validAnalysis()
	emptyPIIEntry.PIICollected = []string{""}
	assert.NotEmpty(t, emptyPIIEntry.Validate())

	noSummary := validAnalysis()
	noSummary.FinalSummary = ""
	assert.Contains(t, noSummary.Validate(), "FinalSummary")

	noRetention := validAnalysis()
	noRetention.Retention = ""
	assert.Contains(t, noRetention.Validate(), "Retention")
}

func TestAnalysisValidateSharingClauses(t *testing.T) {
	a := validAnalysis()
	a.SharingClauses = []SharingClause{{DataTypes: []string{"email"}}}
	assert.NotEmpty(t, a.Validate(), "a clause without a recipient is invalid")

	a.SharingClauses = []SharingClause{{Recipient: "AdNet"}}
	assert.Empty(t, a.Validate())
}

func TestComplianceReportValidate(t *testing.T) {
	ok := &ComplianceReport{Regulation: "GDPR", ComplianceScore: 7}
	assert.Empty(t, ok.Validate())

	bad := &ComplianceReport{Regulation: "GDPR", ComplianceScore: 12}
	assert.Contains(t, bad.Validate(), "ComplianceScore")
}
