package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilyClientSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what is gdpr", req.Query)
		assert.Equal(t, 2, req.MaxResults)

		w.Write([]byte(`{"results":[
			{"title":"GDPR overview","content":"The GDPR is an EU regulation.","url":"https://example.org/gdpr"},
			{"title":"GDPR rights","content":"Data subjects have rights.","url":"https://example.org/rights"}
		]}`))
	}))
	defer srv.Close()

	client := &TavilyClient{apiURL: srv.URL, apiKey: "test-key", client: &http.Client{Timeout: 5 * time.Second}}
	results, err := client.Search(context.Background(), "what is gdpr", 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "GDPR overview", results[0].Title)
	assert.Equal(t, "The GDPR is an EU regulation.", results[0].Snippet)
	assert.Equal(t, "https://example.org/rights", results[1].URL)
}

func TestTavilyClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := &TavilyClient{apiURL: srv.URL, apiKey: "bad-key", client: &http.Client{Timeout: 5 * time.Second}}
	_, err := client.Search(context.Background(), "anything", 3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
