package types

import "errors"

// Error kinds produced by the analysis and question-answering cores.
// Callers match with errors.Is; lower layers wrap with %w so the kind
// survives through the call chain.
var (
	// ErrModelUnavailable: the completion or embedding endpoint failed
	// (network, timeout, provider error). Retryable by the user, never
	// auto-retried here.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrMalformedOutput: the model answered but its output failed schema
	// validation. Surfaced as "not a valid policy", never coerced.
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrClassificationUnavailable: intent classification failed. The
	// router falls back to the general route; not a hard failure.
	ErrClassificationUnavailable = errors.New("classification unavailable")

	// ErrRetrievalFilterViolation: a similarity search returned a chunk
	// from another document. Cross-document leak, treated as fatal.
	ErrRetrievalFilterViolation = errors.New("retrieval filter violation")

	// ErrAnswerGenerationFailed: the answer-composition model call failed.
	// Surfaced verbatim as a chat-level error; chat log stays intact.
	ErrAnswerGenerationFailed = errors.New("answer generation failed")
)
