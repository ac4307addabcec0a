package agent

import (
	"context"
	"errors"
	"testing"

	"policylens/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routerFixture struct {
	router   *Router
	searcher *fakeSearcher
	embedder *letterEmbedder
	answerer *stubCompleter
	web      *fakeWeb
}

func newRouterFixture(docID uuid.UUID, classifierReply string, classifierErr error) *routerFixture {
	searcher := &fakeSearcher{chunks: []types.Chunk{
		ownedChunk(docID, "We collect email addresses.", []float32{1, 0}),
	}}
	embedder := &letterEmbedder{}
	answerer := &stubCompleter{reply: "generated answer"}
	web := &fakeWeb{results: []types.WebResult{
		{Title: "GDPR guide", Snippet: "An overview.", URL: "https://example.org/gdpr"},
	}}

	classifier := NewClassifier(&stubCompleter{reply: classifierReply, err: classifierErr})
	retriever := NewRetriever(searcher, embedder, docID, RetrievalConfig{TopK: 2, UseMMR: false})
	builder := &ContextBuilder{maxTokens: 3000}

	return &routerFixture{
		router:   NewRouter(classifier, retriever, answerer, web, builder, 3),
		searcher: searcher,
		embedder: embedder,
		answerer: answerer,
		web:      web,
	}
}

func TestAnswerGreetingIsCanned(t *testing.T) {
	fx := newRouterFixture(uuid.New(), "greeting", nil)

	answer, err := fx.router.Answer(context.Background(), "hi there!")

	require.NoError(t, err)
	assert.Equal(t, GreetingReply, answer)
	assert.Zero(t, fx.searcher.calls, "canned replies must not retrieve")
	assert.Zero(t, fx.embedder.calls)
	assert.Zero(t, fx.answerer.calls, "canned replies must not generate")
	assert.Zero(t, fx.web.calls)
}

func TestAnswerFarewellIsCanned(t *testing.T) {
	fx := newRouterFixture(uuid.New(), "farewell", nil)

	answer, err := fx.router.Answer(context.Background(), "bye!")

	require.NoError(t, err)
	assert.Equal(t, FarewellReply, answer)
	assert.Zero(t, fx.searcher.calls)
	assert.Zero(t, fx.answerer.calls)
	assert.Zero(t, fx.web.calls)
}

func TestAnswerDocumentRoute(t *testing.T) {
	docID := uuid.New()
	fx := newRouterFixture(docID, "document", nil)

	answer, err := fx.router.Answer(context.Background(), "what do you collect?")

	require.NoError(t, err)
	assert.Equal(t, "generated answer", answer)
	assert.Equal(t, 1, fx.searcher.calls)
	assert.Equal(t, docID, fx.searcher.lastDoc)
	assert.Zero(t, fx.web.calls, "document route never searches the web")
	assert.Contains(t, fx.answerer.lastPrompt, "We collect email addresses.")
	assert.Equal(t, documentAnswerSystem, fx.answerer.lastSystem)
}

func TestAnswerGeneralRoute(t *testing.T) {
	fx := newRouterFixture(uuid.New(), "general", nil)

	answer, err := fx.router.Answer(context.Background(), "what is gdpr?")

	require.NoError(t, err)
	assert.Equal(t, "generated answer", answer)
	assert.Equal(t, 1, fx.web.calls)
	assert.Zero(t, fx.searcher.calls, "general route never retrieves from the document")
	assert.Contains(t, fx.answerer.lastPrompt, "GDPR guide")
	assert.Equal(t, webAnswerSystem, fx.answerer.lastSystem)
}

func TestAnswerClassifierDownFallsBackToGeneral(t *testing.T) {
	fx := newRouterFixture(uuid.New(), "", errors.New("classifier model offline"))

	answer, err := fx.router.Answer(context.Background(), "what do you collect?")

	require.NoError(t, err, "a dead classifier degrades the route, not the request")
	assert.Equal(t, "generated answer", answer)
	assert.Equal(t, 1, fx.web.calls)
	assert.Zero(t, fx.searcher.calls)
}

func TestAnswerRetrievalFailure(t *testing.T) {
	fx := newRouterFixture(uuid.New(), "document", nil)
	fx.searcher.err = errors.New("database gone")

	_, err := fx.router.Answer(context.Background(), "what do you collect?")

	require.ErrorIs(t, err, types.ErrAnswerGenerationFailed)
	assert.Zero(t, fx.answerer.calls)
}

func TestAnswerFilterViolationIsNotDowngraded(t *testing.T) {
	docID := uuid.New()
	fx := newRouterFixture(docID, "document", nil)
	fx.searcher.chunks = append(fx.searcher.chunks,
		ownedChunk(uuid.New(), "someone else's policy", []float32{0, 1}))

	_, err := fx.router.Answer(context.Background(), "what do you collect?")

	require.ErrorIs(t, err, types.ErrRetrievalFilterViolation)
	assert.NotErrorIs(t, err, types.ErrAnswerGenerationFailed)
	assert.Zero(t, fx.answerer.calls, "leaked chunks never reach generation")
}

func TestAnswerGenerationFailure(t *testing.T) {
	fx := newRouterFixture(uuid.New(), "document", nil)
	fx.answerer.err = errors.New("model overloaded")

	_, err := fx.router.Answer(context.Background(), "what do you collect?")

	assert.ErrorIs(t, err, types.ErrAnswerGenerationFailed)
}

func TestAnswerWebSearchFailure(t *testing.T) {
	fx := newRouterFixture(uuid.New(), "general", nil)
	fx.web.err = errors.New("search api down")

	_, err := fx.router.Answer(context.Background(), "what is ccpa?")

	assert.ErrorIs(t, err, types.ErrAnswerGenerationFailed)
}

func TestAnswerEmptyRetrievalStillAnswers(t *testing.T) {
	fx := newRouterFixture(uuid.New(), "document", nil)
	fx.searcher.chunks = nil

	answer, err := fx.router.Answer(context.Background(), "what do you collect?")

	require.NoError(t, err)
	assert.Equal(t, "generated answer", answer)
	assert.Contains(t, fx.answerer.lastPrompt, "(no relevant sections found)")
}
