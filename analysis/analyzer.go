// Package analysis implements the structured transforms: one model call
// mapping policy text to a validated typed record. Validation happens at
// the model-call boundary; nothing unvalidated crosses into persistence.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"policylens/model"
	"policylens/types"
)

type Analyzer struct {
	llm    model.Completer
	logger *slog.Logger
}

func NewAnalyzer(llm model.Completer) *Analyzer {
	return &Analyzer{
		llm:    llm,
		logger: slog.Default(),
	}
}

// Analyze maps raw policy text to a validated Analysis. Exactly one model
// call; no retry, no repair. A provider failure yields ModelUnavailable,
// output failing the schema yields MalformedOutput.
func (a *Analyzer) Analyze(ctx context.Context, policyText string) (*types.Analysis, error) {
	if strings.TrimSpace(policyText) == "" {
		return nil, fmt.Errorf("%w: empty policy text", types.ErrMalformedOutput)
	}

	prompt := fmt.Sprintf(analyzerPromptTemplate, policyText)
	raw, err := a.llm.Complete(ctx, analyzerSystem, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrModelUnavailable, err)
	}

	analysis := &types.Analysis{}
	if err := decodeStrict(raw, analysis); err != nil {
		return nil, err
	}
	if errs := analysis.Validate(); len(errs) > 0 {
		a.logger.Warn("analysis failed schema validation", "fields", errs)
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedOutput, errs)
	}

	return analysis, nil
}

// AnalyzeCompliance assesses the given policy context against one
// regulation, grounded on legal knowledge base excerpts. Same error
// contract as Analyze.
func (a *Analyzer) AnalyzeCompliance(ctx context.Context, regulation, legalContext, policyContext string) (*types.ComplianceReport, error) {
	if strings.TrimSpace(policyContext) == "" {
		return nil, fmt.Errorf("%w: empty policy context", types.ErrMalformedOutput)
	}
	if legalContext == "" {
		legalContext = "(no reference excerpts available)"
	}

	prompt := fmt.Sprintf(compliancePromptTemplate, regulation, regulation, legalContext, policyContext)
	raw, err := a.llm.Complete(ctx, complianceSystem, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrModelUnavailable, err)
	}

	report := &types.ComplianceReport{}
	if err := decodeStrict(raw, report); err != nil {
		return nil, err
	}
	report.Regulation = regulation
	if errs := report.Validate(); len(errs) > 0 {
		a.logger.Warn("compliance report failed schema validation", "fields", errs)
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedOutput, errs)
	}

	return report, nil
}

// Compare runs one model call over two or more policy texts and returns a
// free-text comparison. Unlike the structured transforms there is no
// schema; the output is prose for the reader.
func (a *Analyzer) Compare(ctx context.Context, policies []string) (string, error) {
	if len(policies) < 2 {
		return "", fmt.Errorf("%w: at least 2 policies required for comparison", types.ErrMalformedOutput)
	}

	var sb strings.Builder
	for i, text := range policies {
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("%w: policy %d is empty", types.ErrMalformedOutput, i+1)
		}
		fmt.Fprintf(&sb, "Policy %d:\n%s\n\n", i+1, text)
	}

	raw, err := a.llm.Complete(ctx, compareSystem, fmt.Sprintf(comparePromptTemplate, sb.String()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrModelUnavailable, err)
	}

	comparison := strings.TrimSpace(raw)
	if comparison == "" {
		return "", fmt.Errorf("%w: empty comparison", types.ErrMalformedOutput)
	}
	return comparison, nil
}

func decodeStrict(raw string, v any) error {
	jsonStr, err := model.ExtractJSON(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrMalformedOutput, err)
	}

	dec := json.NewDecoder(strings.NewReader(jsonStr))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", types.ErrMalformedOutput, err)
	}
	return nil
}
