package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// maxFetchBytes caps how much of a remote document is read
const maxFetchBytes = 512 * 1024

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// stripHTML reduces an HTML document to readable text
func stripHTML(s string) string {
	s = scriptRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// DefaultTools returns the built-in research tool set
func DefaultTools() []Tool {
	client := &http.Client{Timeout: 30 * time.Second}
	return []Tool{
		NewFetchURLTool(client),
		NewWikipediaSearchTool(client),
	}
}

// FetchURLTool retrieves a web page and returns its text content
type FetchURLTool struct {
	client *http.Client
}

// NewFetchURLTool creates a FetchURLTool backed by the given HTTP client
func NewFetchURLTool(client *http.Client) *FetchURLTool {
	return &FetchURLTool{client: client}
}

func (t *FetchURLTool) Name() string { return "fetch_url" }

func (t *FetchURLTool) Description() string {
	return "Fetch a web page by URL and return its readable text content."
}

func (t *FetchURLTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Absolute http(s) URL to fetch",
			},
		},
		"required": []string{"url"},
	}
}

func (t *FetchURLTool) Call(ctx context.Context, input string) (string, error) {
	var args struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	parsed, err := url.Parse(args.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("invalid url %q", args.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, args.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "research-gateway/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", args.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", args.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args.URL, err)
	}

	text := stripHTML(string(body))
	if text == "" {
		return "(page contained no readable text)", nil
	}
	return text, nil
}

// WikipediaSearchTool searches Wikipedia via the MediaWiki API
type WikipediaSearchTool struct {
	client  *http.Client
	baseURL string
}

// NewWikipediaSearchTool creates a WikipediaSearchTool backed by the given HTTP client
func NewWikipediaSearchTool(client *http.Client) *WikipediaSearchTool {
	return &WikipediaSearchTool{
		client:  client,
		baseURL: "https://en.wikipedia.org/w/api.php",
	}
}

func (t *WikipediaSearchTool) Name() string { return "wikipedia_search" }

func (t *WikipediaSearchTool) Description() string {
	return "Search Wikipedia and return the top matching article titles with snippets."
}

func (t *WikipediaSearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Search terms",
			},
		},
		"required": []string{"query"},
	}
}

func (t *WikipediaSearchTool) Call(ctx context.Context, input string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return "", fmt.Errorf("query cannot be empty")
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("format", "json")
	params.Set("srlimit", "5")
	params.Set("srsearch", args.Query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "research-gateway/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("wikipedia search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia search: status %d", resp.StatusCode)
	}

	var result struct {
		Query struct {
			Search []struct {
				Title   string `json:"title"`
				Snippet string `json:"snippet"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode wikipedia response: %w", err)
	}

	if len(result.Query.Search) == 0 {
		return "No results found.", nil
	}

	var sb strings.Builder
	for i, hit := range result.Query.Search {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, hit.Title, stripHTML(hit.Snippet))
	}
	return sb.String(), nil
}
