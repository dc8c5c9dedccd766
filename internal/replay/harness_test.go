package replay

import (
	"context"
	"testing"

	"github.com/kdwyer/docqa/internal/workflow"
)

// #region harness-tests

func refusalFixture() *Fixture {
	return &Fixture{
		Description: "empty at every tier",
		Domain:      "Sport",
		Script: FixtureScript{
			DomainVerdicts: []string{"yes"},
			Grades:         map[string]string{},
		},
		Turns: []FixtureTurn{
			{
				Question:       "question nobody can answer",
				ExpectedAnswer: workflow.RefusalText,
			},
		},
	}
}

func TestReplay_RefusalWhenNothingGrades(t *testing.T) {
	results := Replay(context.Background(), refusalFixture())
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	if !results[0].Passed {
		t.Errorf("mismatches: %v", results[0].Mismatches)
	}
	for _, n := range results[0].Actual.ExecutionPath {
		if n == workflow.NodeGenerate || n == workflow.NodeMathGenerate {
			t.Errorf("generation ran with no graded documents: %v", results[0].Actual.ExecutionPath)
		}
	}
}

func TestReplay_MismatchReported(t *testing.T) {
	f := refusalFixture()
	f.Turns[0].ExpectedAnswer = "a different answer"

	results := Replay(context.Background(), f)
	if results[0].Passed {
		t.Error("expected a mismatch")
	}
	if len(results[0].Mismatches) == 0 {
		t.Error("mismatch should be reported")
	}
}

func TestReplay_MemoryCarriesAcrossTurns(t *testing.T) {
	f := &Fixture{
		Domain: "Sport",
		Script: FixtureScript{
			DomainVerdicts: []string{"no", "no", "no", "no"},
		},
		Turns: []FixtureTurn{
			{Question: "first off-topic question", ExpectedAnswer: workflow.RefusalText},
			{Question: "second off-topic question", ExpectedAnswer: workflow.RefusalText},
		},
	}

	results := Replay(context.Background(), f)
	for i, r := range results {
		if !r.Passed {
			t.Errorf("turn %d: %v", i, r.Mismatches)
		}
	}
}

func TestSummarize(t *testing.T) {
	results := []TurnResult{
		{Passed: true},
		{Passed: false},
		{Passed: true},
	}
	s := Summarize("mixed run", results)
	if s.TotalTurns != 3 || s.Passed != 2 || s.Failed != 1 {
		t.Errorf("summary = %+v", s)
	}
}

// #endregion harness-tests
