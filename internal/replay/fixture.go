package replay

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kdwyer/docqa/internal/oracle"
	"github.com/kdwyer/docqa/internal/workflow"
)

// #endregion

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a
// scripted conversation with every oracle judgement pinned down, so a
// graph run is fully reproducible without a live backend.
type Fixture struct {
	Description string            `json:"description"`
	Domain      string            `json:"domain"`
	Documents   []FixtureDocument `json:"documents"`
	WebResults  []FixtureHit      `json:"web_results"`
	Script      FixtureScript     `json:"oracle_script"`
	Turns       []FixtureTurn     `json:"turns"`
}

// FixtureDocument is a pre-indexed document served by the scripted
// retriever.
type FixtureDocument struct {
	Content  string `json:"content"`
	SourceID string `json:"source_id"`
}

// FixtureHit is a scripted web search result.
type FixtureHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// FixtureScript pins every oracle judgement. An empty field means the
// corresponding call fails, which lets fixtures exercise the
// fail-closed branches. Rephrased is the exception: empty leaves the
// question unchanged, since rephrasing degrades to a no-op rather than
// failing a turn.
type FixtureScript struct {
	DomainVerdicts []string          `json:"domain_verdicts"` // consumed in call order
	Rephrased      string            `json:"rephrased"`
	Grades         map[string]string `json:"grades"` // document content -> yes|no
	Classify       string            `json:"classify"`
	Answer         string            `json:"answer"`
	AnswerSources  []string          `json:"answer_sources"`
	MathSteps      []string          `json:"math_steps"`
	MathExpr       string            `json:"math_expr"`
	MathSolution   string            `json:"math_solution"`
	Grounding      string            `json:"grounding"`
	Useful         string            `json:"useful"`
}

// FixtureTurn is one question plus its expected outcome.
type FixtureTurn struct {
	Question       string   `json:"question"`
	ExpectedPath   []string `json:"expected_path"`
	ExpectedAnswer string   `json:"expected_answer,omitempty"`
	AnswerContains string   `json:"answer_contains,omitempty"`
	ExpectedNote   string   `json:"expected_note,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// #endregion fixture-loader

// #region scripted-oracle

// scriptedOracle serves judgements from a fixture script. Empty
// script fields surface as call failures.
type scriptedOracle struct {
	script      FixtureScript
	domainCalls int
}

func (s *scriptedOracle) CheckDomain(_ context.Context, _, _ string) (oracle.Verdict, error) {
	i := s.domainCalls
	s.domainCalls++
	if i >= len(s.script.DomainVerdicts) {
		return "", fmt.Errorf("no domain verdict scripted for call %d", i)
	}
	return oracle.Verdict(s.script.DomainVerdicts[i]), nil
}

func (s *scriptedOracle) RephraseQuestion(_ context.Context, question, _ string) (string, error) {
	if s.script.Rephrased == "" {
		return question, nil
	}
	return s.script.Rephrased, nil
}

func (s *scriptedOracle) GradeDocument(_ context.Context, _, document string) (oracle.Verdict, error) {
	v, ok := s.script.Grades[document]
	if !ok {
		return "", fmt.Errorf("no grade scripted for %q", document)
	}
	return oracle.Verdict(v), nil
}

func (s *scriptedOracle) ClassifyQuestion(_ context.Context, _ string) (oracle.Verdict, error) {
	if s.script.Classify == "" {
		return "", fmt.Errorf("no classification scripted")
	}
	return oracle.Verdict(s.script.Classify), nil
}

func (s *scriptedOracle) GenerateAnswer(_ context.Context, _, _, _ string) (oracle.GeneratedAnswer, error) {
	if s.script.Answer == "" {
		return oracle.GeneratedAnswer{}, fmt.Errorf("no answer scripted")
	}
	return oracle.GeneratedAnswer{Answer: s.script.Answer, Sources: s.script.AnswerSources}, nil
}

func (s *scriptedOracle) SolveMathExpr(_ context.Context, _, _ string) (oracle.MathExprSolution, error) {
	if s.script.MathExpr == "" {
		return oracle.MathExprSolution{}, fmt.Errorf("no expression scripted")
	}
	return oracle.MathExprSolution{Steps: s.script.MathSteps, Expr: s.script.MathExpr}, nil
}

func (s *scriptedOracle) SolveMathDirect(_ context.Context, _, _ string) (oracle.MathDirectSolution, error) {
	if s.script.MathSolution == "" {
		return oracle.MathDirectSolution{}, fmt.Errorf("no solution scripted")
	}
	return oracle.MathDirectSolution{Steps: s.script.MathSteps, Solution: s.script.MathSolution}, nil
}

func (s *scriptedOracle) CheckGrounding(_ context.Context, _, _ string) (oracle.Verdict, error) {
	if s.script.Grounding == "" {
		return "", fmt.Errorf("no grounding verdict scripted")
	}
	return oracle.Verdict(s.script.Grounding), nil
}

func (s *scriptedOracle) CheckUsefulness(_ context.Context, _, _ string) (oracle.Verdict, error) {
	if s.script.Useful == "" {
		return "", fmt.Errorf("no usefulness verdict scripted")
	}
	return oracle.Verdict(s.script.Useful), nil
}

// #endregion scripted-oracle

// #region scripted-collaborators

// scriptedRetriever serves the fixture's document list for every query.
type scriptedRetriever struct {
	docs []workflow.Document
}

func (r *scriptedRetriever) Retrieve(_ context.Context, _ string) ([]workflow.Document, error) {
	return r.docs, nil
}

// scriptedWeb serves the fixture's web results for every query.
type scriptedWeb struct {
	hits []workflow.SearchHit
}

func (w *scriptedWeb) Search(_ context.Context, _ string) ([]workflow.SearchHit, error) {
	return w.hits, nil
}

func toDocuments(docs []FixtureDocument) []workflow.Document {
	out := make([]workflow.Document, len(docs))
	for i, d := range docs {
		out[i] = workflow.Document{Content: d.Content, SourceID: d.SourceID}
	}
	return out
}

func toHits(hits []FixtureHit) []workflow.SearchHit {
	out := make([]workflow.SearchHit, len(hits))
	for i, h := range hits {
		out[i] = workflow.SearchHit{Title: h.Title, Snippet: h.Snippet, Link: h.Link}
	}
	return out
}

// #endregion scripted-collaborators
