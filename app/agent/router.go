package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"policylens/model"
	"policylens/types"
)

// Canned replies. Terminal, zero model calls.
const (
	GreetingReply = "Hello! I can answer questions about the analyzed privacy policy, or about privacy topics in general. What would you like to know?"
	FarewellReply = "Goodbye! Feel free to come back if you have more questions about this policy."
)

const documentAnswerSystem = `You are an assistant for question-answering over a privacy policy. Use ONLY the provided context sections to answer. If the context does not contain the answer, say that the information is not found in the document. Do not use outside knowledge.`

const documentAnswerTemplate = `Context sections from the privacy policy:
%s

Question: %s
Answer:`

const webAnswerSystem = `You are a helpful assistant answering questions about privacy, data-protection law and cybersecurity. Synthesize an answer from the provided search results. Mention the sources you relied on.`

const webAnswerTemplate = `Search results:
%s

Question: %s
Answer:`

// Router dispatches a question to one of four response strategies based
// on its classified intent. One router instance is bound to one document
// through its retriever.
type Router struct {
	classifier *Classifier
	retriever  *Retriever
	llm        model.Completer
	web        model.WebSearcher
	builder    *ContextBuilder
	maxWeb     int
	logger     *slog.Logger
}

func NewRouter(classifier *Classifier, retriever *Retriever, llm model.Completer, web model.WebSearcher, builder *ContextBuilder, maxWebResults int) *Router {
	if maxWebResults <= 0 {
		maxWebResults = 3
	}
	return &Router{
		classifier: classifier,
		retriever:  retriever,
		llm:        llm,
		web:        web,
		builder:    builder,
		maxWeb:     maxWebResults,
		logger:     slog.Default(),
	}
}

// Answer runs the full sequence: classify, route, generate. Classifier
// failure falls back to the general route instead of failing the call.
// The switch over intents is exhaustive; ParseIntent guarantees every
// label lands in one of these cases.
func (r *Router) Answer(ctx context.Context, question string) (string, error) {
	intent, err := r.classifier.Classify(ctx, question)
	if err != nil {
		if !errors.Is(err, types.ErrClassificationUnavailable) {
			return "", err
		}
		r.logger.Warn("classification unavailable, routing to general", "error", err)
		intent = IntentGeneral
	}

	switch intent {
	case IntentGreeting:
		return GreetingReply, nil
	case IntentFarewell:
		return FarewellReply, nil
	case IntentDocument:
		return r.documentAnswer(ctx, question)
	case IntentGeneral:
		return r.webAnswer(ctx, question)
	default:
		return r.webAnswer(ctx, question)
	}
}

// documentAnswer retrieves document fragments and composes an answer
// strictly from them.
func (r *Router) documentAnswer(ctx context.Context, question string) (string, error) {
	chunks, err := r.retriever.Retrieve(ctx, question)
	if err != nil {
		if errors.Is(err, types.ErrRetrievalFilterViolation) {
			// Cross-document leak. Never degrade this into a chat error.
			return "", err
		}
		return "", fmt.Errorf("%w: %v", types.ErrAnswerGenerationFailed, err)
	}

	context := r.builder.Build(chunks)
	if context == "" {
		context = "(no relevant sections found)"
	}

	answer, err := r.llm.Complete(ctx, documentAnswerSystem, fmt.Sprintf(documentAnswerTemplate, context, question))
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrAnswerGenerationFailed, err)
	}
	return strings.TrimSpace(answer), nil
}

// webAnswer searches the web and synthesizes the results.
func (r *Router) webAnswer(ctx context.Context, question string) (string, error) {
	results, err := r.web.Search(ctx, question, r.maxWeb)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrAnswerGenerationFailed, err)
	}

	var sb strings.Builder
	for i, res := range results {
		fmt.Fprintf(&sb, "%d. %s\n%s\n(%s)\n\n", i+1, res.Title, res.Snippet, res.URL)
	}
	if sb.Len() == 0 {
		sb.WriteString("(no search results)")
	}

	answer, err := r.llm.Complete(ctx, webAnswerSystem, fmt.Sprintf(webAnswerTemplate, sb.String(), question))
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrAnswerGenerationFailed, err)
	}
	return strings.TrimSpace(answer), nil
}
