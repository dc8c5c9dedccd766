package provenance

import (
	"testing"
	"time"

	"github.com/kdwyer/docqa/internal/docstore"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	db, err := docstore.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	l, err := NewLog(db)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestRecordAndRecent(t *testing.T) {
	l := newTestLog(t)

	entries := []TurnEntry{
		{
			TurnID:        "t1",
			Domain:        "Sport",
			Question:      "How can AI improve basketball training?",
			Answer:        "By analyzing shooting form.",
			Sources:       []string{"coach.pdf"},
			ExecutionPath: []string{"check_query_domain", "retrieve", "grade_docs", "question_classification", "generate", "hallucination_check", "answer_check"},
			Flags:         []string{"domain_relevance=yes"},
		},
		{
			TurnID:          "t2",
			Domain:          "Sport",
			Question:        "What is 20 minus 6?",
			Answer:          "Final answer: 20 - 6 = 14",
			CalculationNote: "computed",
			ExecutionPath:   []string{"check_query_domain", "retrieve", "grade_docs", "question_classification", "math_generate", "answer_check"},
		},
	}
	for _, e := range entries {
		if err := l.Record(e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := l.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	// Newest first.
	if got[0].TurnID != "t2" {
		t.Errorf("order: got %s first, want t2", got[0].TurnID)
	}
	if got[0].CalculationNote != "computed" {
		t.Errorf("calculation note: got %q", got[0].CalculationNote)
	}
	if len(got[1].ExecutionPath) != 7 {
		t.Errorf("path round-trip: got %v", got[1].ExecutionPath)
	}
	if got[1].Sources[0] != "coach.pdf" {
		t.Errorf("sources round-trip: got %v", got[1].Sources)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("created_at should be stamped")
	}
}

func TestRecentLimit(t *testing.T) {
	l := newTestLog(t)
	for i := 0; i < 5; i++ {
		if err := l.Record(TurnEntry{
			TurnID:        "t",
			Domain:        "d",
			Question:      "q",
			Answer:        "a",
			ExecutionPath: []string{"check_query_domain"},
			CreatedAt:     time.Now().UTC(),
		}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := l.Recent(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3, got %d", len(got))
	}
}
