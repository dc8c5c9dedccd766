package replay

// #region imports
import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/kdwyer/docqa/internal/workflow"
)

// #endregion

// #region types

// TurnResult captures the outcome of replaying one fixture turn.
type TurnResult struct {
	Question   string
	Passed     bool
	Mismatches []string
	Actual     workflow.Result
}

// Summary aggregates a replay run.
type Summary struct {
	Description string
	TotalTurns  int
	Passed      int
	Failed      int
}

// #endregion types

// #region replay

// Replay runs every turn of a fixture through a fresh orchestrator
// wired with scripted collaborators, checking each turn's expectations
// as it goes. The orchestrator is shared across turns so conversation
// memory behaves as it would live.
func Replay(ctx context.Context, f *Fixture) []TurnResult {
	sOracle := &scriptedOracle{script: f.Script}

	var web workflow.WebSearcher
	if len(f.WebResults) > 0 {
		web = &scriptedWeb{hits: toHits(f.WebResults)}
	} else {
		web = &scriptedWeb{}
	}

	orch := workflow.NewOrchestrator(sOracle, web, workflow.DefaultConfig())
	orch.SetDomain(f.Domain)
	if len(f.Documents) > 0 {
		orch.SetRetriever(&scriptedRetriever{docs: toDocuments(f.Documents)})
	}

	results := make([]TurnResult, 0, len(f.Turns))
	for _, turn := range f.Turns {
		actual := orch.Invoke(ctx, turn.Question)
		results = append(results, check(turn, actual))
	}
	return results
}

// check compares one turn's actual result against its expectations.
func check(turn FixtureTurn, actual workflow.Result) TurnResult {
	res := TurnResult{Question: turn.Question, Actual: actual, Passed: true}

	fail := func(format string, args ...any) {
		res.Passed = false
		res.Mismatches = append(res.Mismatches, fmt.Sprintf(format, args...))
	}

	if len(turn.ExpectedPath) > 0 && !reflect.DeepEqual(actual.ExecutionPath, turn.ExpectedPath) {
		fail("path = %v, want %v", actual.ExecutionPath, turn.ExpectedPath)
	}
	if turn.ExpectedAnswer != "" && actual.Answer.Text != turn.ExpectedAnswer {
		fail("answer = %q, want %q", actual.Answer.Text, turn.ExpectedAnswer)
	}
	if turn.AnswerContains != "" && !strings.Contains(actual.Answer.Text, turn.AnswerContains) {
		fail("answer %q does not contain %q", actual.Answer.Text, turn.AnswerContains)
	}
	if turn.ExpectedNote != "" && actual.Answer.CalculationNote != turn.ExpectedNote {
		fail("calculation note = %q, want %q", actual.Answer.CalculationNote, turn.ExpectedNote)
	}
	return res
}

// Summarize computes aggregate stats from replay results.
func Summarize(description string, results []TurnResult) Summary {
	s := Summary{Description: description, TotalTurns: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// #endregion replay
