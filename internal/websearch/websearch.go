// Package websearch queries the DuckDuckGo HTML endpoint and returns a
// bounded number of snippet/link results, the fallback evidence tier when
// the document store has nothing relevant.
package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// #region types

// Result holds a single search result.
type Result struct {
	Title   string
	Snippet string
	Link    string
}

// Config holds web search parameters.
type Config struct {
	MaxResults int
	Timeout    time.Duration
	Endpoint   string
	UserAgent  string
}

// #endregion types

// #region config

// DefaultConfig returns default web search configuration.
// Reads from env vars: WEB_SEARCH_MAX_RESULTS, WEB_SEARCH_TIMEOUT,
// WEB_SEARCH_ENDPOINT.
func DefaultConfig() Config {
	cfg := Config{
		MaxResults: 2,
		Timeout:    10 * time.Second,
		Endpoint:   "https://html.duckduckgo.com/html/",
		UserAgent:  "Mozilla/5.0 (compatible; docqa/1.0)",
	}
	if v := os.Getenv("WEB_SEARCH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxResults = n
		}
	}
	if v := os.Getenv("WEB_SEARCH_TIMEOUT"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			cfg.Timeout = time.Duration(sec) * time.Second
		}
	}
	if v := os.Getenv("WEB_SEARCH_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	return cfg
}

// #endregion config

// #region client

// Client performs HTML-endpoint searches.
type Client struct {
	http   *http.Client
	config Config
}

// NewClient creates a Client with the given configuration.
func NewClient(config Config) *Client {
	return &Client{
		http:   &http.Client{Timeout: config.Timeout},
		config: config,
	}
}

// Search runs a query and returns up to MaxResults results.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search: status %d", resp.StatusCode)
	}

	return parseResults(resp.Body, c.config.MaxResults)
}

// #endregion client

// #region parse

// parseResults extracts title/snippet/link triples from the result page.
func parseResults(r io.Reader, max int) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	var results []Result
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := s.Find("a.result__a")
		href, _ := title.Attr("href")
		res := Result{
			Title:   strings.TrimSpace(title.Text()),
			Snippet: strings.TrimSpace(s.Find("a.result__snippet").Text()),
			Link:    cleanLink(href),
		}
		if res.Snippet == "" || res.Link == "" {
			return true
		}
		results = append(results, res)
		return len(results) < max
	})
	return results, nil
}

// cleanLink unwraps DuckDuckGo's redirect links (the uddg query parameter)
// back to the target URL.
func cleanLink(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" {
		return "https:" + href
	}
	return href
}

// #endregion parse

// #region format

// FormatAsEvidence renders results snippet-first, the way documents
// are cited elsewhere: the snippet is what gets graded and the link is
// the provenance.
func FormatAsEvidence(results []Result) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Snippet)
		if r.Title != "" {
			fmt.Fprintf(&b, "   title: %s\n", r.Title)
		}
		if r.Link != "" {
			fmt.Fprintf(&b, "   source: %s\n", r.Link)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// #endregion format
