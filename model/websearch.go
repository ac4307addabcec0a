package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"policylens/types"
)

// WebSearcher is the web-search black box consumed by the general route.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]types.WebResult, error)
}

// TavilyClient queries the Tavily search API.
type TavilyClient struct {
	apiURL string
	apiKey string
	client *http.Client
}

const defaultTavilyURL = "https://api.tavily.com/search"

type tavilyRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		URL     string `json:"url"`
	} `json:"results"`
}

func NewTavilyClient(apiKey string) *TavilyClient {
	return &TavilyClient{
		apiURL: defaultTavilyURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]types.WebResult, error) {
	if maxResults <= 0 {
		maxResults = 3
	}
	body, err := json.Marshal(tavilyRequest{Query: query, MaxResults: maxResults})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var searchResp tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]types.WebResult, 0, len(searchResp.Results))
	for _, r := range searchResp.Results {
		results = append(results, types.WebResult{
			Title:   r.Title,
			Snippet: r.Content,
			URL:     r.URL,
		})
	}
	return results, nil
}
