// Package fetch retrieves privacy-policy pages by URL and reduces them to
// plain markdown text suitable for analysis and chunking.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodySize    = 8 << 20 // 8MB
	maxRedirects   = 5

	// minPolicyLength rejects pages that clearly are not a policy
	// (empty shells, JS-rendered placeholders).
	minPolicyLength = 100

	userAgent = "Mozilla/5.0 (compatible; policylens/1.0)"
)

var (
	scriptRe         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	excessiveLinesRe = regexp.MustCompile(`\n{4,}`)
)

// Result is the extracted content of a policy page.
type Result struct {
	Title string
	Text  string
}

// Fetcher downloads pages and converts them to markdown text.
type Fetcher struct {
	client    *http.Client
	converter *md.Converter
}

func NewFetcher() *Fetcher {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &Fetcher{
		client: &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (max %d)", maxRedirects)
				}
				return nil
			},
		},
		converter: converter,
	}
}

// FetchPolicyText downloads the page at rawURL and returns its title and
// text content. Fails when the page yields less text than a plausible
// policy would have.
func (f *Fetcher) FetchPolicyText(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	title := extractTitle(body)

	cleaned := scriptRe.ReplaceAllString(string(body), "")
	cleaned = styleRe.ReplaceAllString(cleaned, "")

	markdown, err := f.converter.ConvertString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("convert html: %w", err)
	}
	markdown = strings.TrimSpace(excessiveLinesRe.ReplaceAllString(markdown, "\n\n\n"))

	if len(markdown) < minPolicyLength {
		return nil, fmt.Errorf("extracted text is too short to be a policy (%d chars)", len(markdown))
	}

	return &Result{Title: title, Text: markdown}, nil
}

func extractTitle(content []byte) string {
	doc, err := html.Parse(strings.NewReader(string(content)))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if title != "" {
				return
			}
			walk(c)
		}
	}
	walk(doc)
	return title
}
