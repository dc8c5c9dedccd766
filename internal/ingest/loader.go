package ingest

// #region imports
import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// #endregion

// #region loader

// Loader extracts raw text from one source. Implementations are keyed
// by extension (or URL scheme) in loaderFor.
type Loader interface {
	Load(ctx context.Context, source string) (string, error)
}

// loaderFor picks a loader for a source path or URL.
func loaderFor(source string) (Loader, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return &URLLoader{Timeout: 15 * time.Second}, nil
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".txt", ".md":
		return TextLoader{}, nil
	case ".pdf":
		return PDFLoader{}, nil
	}
	return nil, fmt.Errorf("no loader for %q", source)
}

// #endregion

// #region text-loader

// TextLoader reads plain-text files.
type TextLoader struct{}

func (TextLoader) Load(_ context.Context, source string) (string, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", source, err)
	}
	return string(data), nil
}

// #endregion

// #region pdf-loader

// PDFLoader extracts the plain-text layer of a PDF. Scanned PDFs
// without a text layer yield empty content, which ingestion rejects.
type PDFLoader struct{}

func (PDFLoader) Load(_ context.Context, source string) (string, error) {
	f, r, err := pdf.Open(source)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", source, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", source, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("read pdf text %s: %w", source, err)
	}
	return buf.String(), nil
}

// #endregion

// #region url-loader

// URLLoader fetches a page and extracts its visible body text.
type URLLoader struct {
	Timeout time.Duration
}

func (l *URLLoader) Load(ctx context.Context, source string) (string, error) {
	client := &http.Client{Timeout: l.Timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", fmt.Errorf("build request %s: %w", source, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", source, err)
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Find("body").Text(), nil
}

// #endregion
