package workflow

// #region imports
import (
	"context"
	"os"
	"strconv"

	"github.com/kdwyer/docqa/internal/oracle"
)

// #endregion

// #region answers

// RefusalText is the fixed answer returned whenever no verifiable
// answer can be produced, regardless of the internal cause.
const RefusalText = "I don't know the answer to that question."

// DomainUnsetText is returned by Invoke when no domain has been set.
const DomainUnsetText = "Please set the domain before asking questions."

// mathErrorText is the only non-refusal error answer; produced when
// both math tiers fail.
const mathErrorText = "Something went wrong while solving the math question. Please try again."

// #endregion

// #region enums

// QuestionType is the generation path selected for a question.
type QuestionType string

const (
	QuestionMath  QuestionType = "math"
	QuestionText  QuestionType = "text"
	QuestionError QuestionType = "error"
)

// Usefulness is the outcome of the final answer check.
type Usefulness string

const (
	AnswerUseful    Usefulness = "useful"
	AnswerNotUseful Usefulness = "not_useful"
)

// #endregion

// #region documents

// Document is a unit of evidence from the document store or web search.
// SourceID is opaque provenance used only for citation.
type Document struct {
	Content  string
	SourceID string
}

// #endregion

// #region answer

// Answer is the caller-visible result of a turn.
// CalculationNote is set only on the math path.
type Answer struct {
	Text            string
	Sources         []string
	CalculationNote string
}

// #endregion

// #region turn-context

// TurnContext is the graph state, created fresh per turn and threaded
// through every node.
type TurnContext struct {
	Question         string // current query, may be rephrased
	OriginalQuestion string
	Domain           string

	DomainRelevance oracle.Verdict
	Documents       []Document
	GradedDocuments []Document
	QuestionType    QuestionType
	Answer          Answer
	Hallucination   oracle.Verdict
	AnswerUseful    Usefulness

	ExecutionPath []string
	Flags         []string

	generationFailed bool
}

func (tc *TurnContext) addFlag(key, value string) {
	tc.Flags = append(tc.Flags, key+"="+value)
}

// #endregion

// #region result

// Result is what Invoke returns to the caller.
type Result struct {
	Answer        Answer
	ExecutionPath []string
	Flags         []string
}

// #endregion

// #region interfaces

// Oracle is the structured-judgement backend driving every
// classification, rewrite, and generation step.
type Oracle interface {
	CheckDomain(ctx context.Context, question, domain string) (oracle.Verdict, error)
	RephraseQuestion(ctx context.Context, question, history string) (string, error)
	GradeDocument(ctx context.Context, question, document string) (oracle.Verdict, error)
	ClassifyQuestion(ctx context.Context, question string) (oracle.Verdict, error)
	GenerateAnswer(ctx context.Context, question, contextText, history string) (oracle.GeneratedAnswer, error)
	SolveMathExpr(ctx context.Context, question, contextText string) (oracle.MathExprSolution, error)
	SolveMathDirect(ctx context.Context, question, contextText string) (oracle.MathDirectSolution, error)
	CheckGrounding(ctx context.Context, documents, answer string) (oracle.Verdict, error)
	CheckUsefulness(ctx context.Context, question, answer string) (oracle.Verdict, error)
}

// Retriever returns ranked documents for a query.
// A nil Retriever on the orchestrator means nothing has been ingested.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Document, error)
}

// SearchHit is one web search result.
type SearchHit struct {
	Title   string
	Snippet string
	Link    string
}

// WebSearcher is the fallback evidence source when the document store
// yields nothing relevant.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]SearchHit, error)
}

// #endregion

// #region config

// Config carries the orchestrator's tunables.
type Config struct {
	// MemoryCharBudget bounds the rendered chat history passed into
	// oracle prompts. Oldest turns are dropped first.
	MemoryCharBudget int

	// MaxNodeVisits is a hard stop on graph execution. The topology
	// already bounds every path; this guards against wiring mistakes.
	MaxNodeVisits int
}

// DefaultConfig returns the standard tunables.
// Override the memory budget with MEMORY_CHAR_BUDGET.
func DefaultConfig() Config {
	cfg := Config{
		MemoryCharBudget: 3500,
		MaxNodeVisits:    12,
	}
	if v := os.Getenv("MEMORY_CHAR_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MemoryCharBudget = n
		}
	}
	return cfg
}

// #endregion
