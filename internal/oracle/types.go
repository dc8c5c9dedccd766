package oracle

// #region verdict

// Verdict is the binary outcome of a grading call.
type Verdict string

const (
	VerdictYes Verdict = "yes"
	VerdictNo  Verdict = "no"
)

// #endregion verdict

// #region results

// GeneratedAnswer is the structured output of the answer-generation contract.
type GeneratedAnswer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// MathExprSolution is tier 1 of the math contract: reasoning plus a pure
// arithmetic expression for deterministic evaluation.
type MathExprSolution struct {
	Steps   []string `json:"step_wise_reasoning"`
	Expr    string   `json:"expr"`
	Sources []string `json:"sources"`
}

// MathDirectSolution is tier 2 of the math contract: reasoning plus a
// model-stated solution, used when the expression tier fails.
type MathDirectSolution struct {
	Steps    []string `json:"step_wise_reasoning"`
	Solution string   `json:"solution"`
	Sources  []string `json:"sources"`
}

// DomainSummary is the output of ingest-time domain detection.
type DomainSummary struct {
	Summary string `json:"summary"`
	Domain  string `json:"domain"`
}

// #endregion results
