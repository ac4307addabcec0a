// Package agent implements the per-document question-answering pipeline:
// intent classification, document-scoped retrieval, response routing and
// the pipeline cache.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"policylens/model"
	"policylens/types"
)

// Intent is the classifier's output category governing response routing.
// The set is closed; routing switches over it exhaustively.
type Intent string

const (
	IntentDocument Intent = "document"
	IntentGreeting Intent = "greeting"
	IntentFarewell Intent = "farewell"
	IntentGeneral  Intent = "general"
)

// ParseIntent maps raw classifier output onto the closed label set.
// Anything unknown or garbled maps to the general fallback, so routing
// stays total no matter what the model emits.
func ParseIntent(raw string) (Intent, bool) {
	label := strings.ToLower(strings.TrimSpace(raw))
	label = strings.Trim(label, `"'.`)
	switch Intent(label) {
	case IntentDocument, IntentGreeting, IntentFarewell, IntentGeneral:
		return Intent(label), true
	}
	return IntentGeneral, false
}

const classifierSystem = `You are an intent classifier. Respond with exactly one word and nothing else.`

const classifierPromptTemplate = `Classify the user's message into exactly one of these labels:

- document: a question about "this policy", "the document", "the company", or anything else about the specific privacy policy under discussion
- greeting: a greeting or opening remark ("hi", "hello", "good morning")
- farewell: a goodbye or closing remark ("bye", "thanks, that's all")
- general: any other question, e.g. about privacy in general, laws like GDPR, or cybersecurity

Respond with only the label.

User's message:
%s`

// Classifier maps a free-text question to one intent label via a single
// low-latency model call.
type Classifier struct {
	llm    model.Completer
	logger *slog.Logger
}

func NewClassifier(llm model.Completer) *Classifier {
	return &Classifier{
		llm:    llm,
		logger: slog.Default(),
	}
}

// Classify returns exactly one label. If the model call fails the result
// is the general fallback plus ClassificationUnavailable; the caller
// routes on the label and logs the error rather than failing the request.
func (c *Classifier) Classify(ctx context.Context, question string) (Intent, error) {
	raw, err := c.llm.Complete(ctx, classifierSystem, fmt.Sprintf(classifierPromptTemplate, question))
	if err != nil {
		return IntentGeneral, fmt.Errorf("%w: %v", types.ErrClassificationUnavailable, err)
	}

	intent, known := ParseIntent(raw)
	if !known {
		c.logger.Warn("unknown classifier label, using fallback", "label", raw)
	}
	return intent, nil
}
