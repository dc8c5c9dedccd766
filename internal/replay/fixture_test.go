package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// #region fixture-tests

// runFixtureFile loads a fixture and fails the test on any turn
// mismatch. These files are the regression baselines for the graph's
// routing; if node names or branch conditions drift, they catch it.
func runFixtureFile(t *testing.T, name string) {
	t.Helper()
	f, err := LoadFixture(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	results := Replay(context.Background(), f)
	if len(results) != len(f.Turns) {
		t.Fatalf("expected %d results, got %d", len(f.Turns), len(results))
	}
	for i, r := range results {
		if !r.Passed {
			t.Errorf("turn %d (%s): %v", i, r.Question, r.Mismatches)
		}
	}
}

func TestFixture_SportSession(t *testing.T) {
	runFixtureFile(t, "sport_session.json")
}

func TestFixture_DomainRejection(t *testing.T) {
	runFixtureFile(t, "domain_rejection.json")
}

func TestFixture_MathWebFallback(t *testing.T) {
	runFixtureFile(t, "math_web_fallback.json")
}

// TestLoadFixture_NotFound verifies error on missing file.
func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestLoadFixture_Malformed verifies error on invalid JSON.
func TestLoadFixture_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	_, err := LoadFixture(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

// #endregion fixture-tests
