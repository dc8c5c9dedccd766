package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `
<html><body>
<div class="result">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fai-basketball&amp;rut=abc">AI in Basketball</a></h2>
  <a class="result__snippet" href="#">How AI improves basketball training and drills.</a>
</div>
<div class="result">
  <h2><a class="result__a" href="https://example.org/coaching">Coaching Tech</a></h2>
  <a class="result__snippet" href="#">Modern coaching technology overview.</a>
</div>
<div class="result">
  <h2><a class="result__a" href="https://example.net/third">Third Result</a></h2>
  <a class="result__snippet" href="#">A third snippet that should be cut off.</a>
</div>
</body></html>`

func TestParseResultsBoundedCount(t *testing.T) {
	results, err := parseResults(strings.NewReader(samplePage), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "AI in Basketball" {
		t.Errorf("title: got %q", results[0].Title)
	}
	if results[0].Snippet != "How AI improves basketball training and drills." {
		t.Errorf("snippet: got %q", results[0].Snippet)
	}
	if results[0].Link != "https://example.com/ai-basketball" {
		t.Errorf("link not unwrapped: got %q", results[0].Link)
	}
	if results[1].Link != "https://example.org/coaching" {
		t.Errorf("direct link mangled: got %q", results[1].Link)
	}
}

func TestParseResultsSkipsIncomplete(t *testing.T) {
	page := `<html><body>
	<div class="result"><h2><a class="result__a" href="https://a.com">No Snippet</a></h2></div>
	<div class="result">
	  <h2><a class="result__a" href="https://b.com">Good</a></h2>
	  <a class="result__snippet" href="#">snippet text</a>
	</div>
	</body></html>`
	results, err := parseResults(strings.NewReader(page), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Title != "Good" {
		t.Errorf("got %q", results[0].Title)
	}
}

func TestSearchAgainstLocalEndpoint(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err == nil {
			gotQuery = r.Form.Get("q")
		}
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Endpoint = srv.URL
	cfg.MaxResults = 1
	c := NewClient(cfg)

	results, err := c.Search(context.Background(), "ai basketball")
	if err != nil {
		t.Fatal(err)
	}
	if gotQuery != "ai basketball" {
		t.Errorf("query: got %q", gotQuery)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestSearchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Endpoint = srv.URL
	c := NewClient(cfg)
	if _, err := c.Search(context.Background(), "q"); err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestCleanLink(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fx.com%2Fp", "https://x.com/p"},
		{"https://plain.com/page", "https://plain.com/page"},
		{"//nohost.com/path", "https://nohost.com/path"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cleanLink(tt.in); got != tt.want {
			t.Errorf("cleanLink(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAsEvidence(t *testing.T) {
	results := []Result{
		{Title: "Title A", Snippet: "Snippet A", Link: "https://a.com"},
		{Title: "Title B", Snippet: "Snippet B", Link: "https://b.com"},
	}
	out := FormatAsEvidence(results)
	if !strings.Contains(out, "1. Snippet A") || !strings.Contains(out, "2. Snippet B") {
		t.Error("missing numbered snippets")
	}
	if !strings.Contains(out, "title: Title A") {
		t.Error("missing title line")
	}
	if !strings.Contains(out, "source: https://a.com") {
		t.Error("missing source line")
	}
	if FormatAsEvidence(nil) != "" {
		t.Error("nil results should render empty")
	}
}
