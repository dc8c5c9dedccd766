package workflow

// #region imports
import (
	"context"
	"fmt"
	"log"
)

// #endregion

// #region node-names

// Node names. These appear verbatim in execution traces, so changing
// one is a breaking change for anything replaying stored turns.
const (
	NodeCheckDomain    = "check_query_domain"
	NodeRephrase       = "rephrase_based_history"
	NodeCheckDomainEnd = "check_query_domain_end"
	NodeRetrieve       = "retrieve"
	NodeGradeDocs      = "grade_docs"
	NodeWebSearch      = "ddg_search"
	NodeGradeWebDocs   = "grade_ddg_docs"
	NodeClassify       = "question_classification"
	NodeGenerate       = "generate"
	NodeMathGenerate   = "math_generate"
	NodeHallucination  = "hallucination_check"
	NodeAnswerCheck    = "answer_check"

	// End is the terminal sentinel; it never appears in a trace.
	End = "__end__"
)

// #endregion

// #region node

// nodeFunc mutates the turn context and returns the name of the next
// node, or End. Routing lives with the node that decides it so every
// conditional edge is visible next to the state it reads.
type nodeFunc func(ctx context.Context, tc *TurnContext) string

// #endregion

// #region run

// run executes the graph from the entry node until End. Each visit
// appends exactly one node name to the execution path. The visit cap
// is a wiring-mistake guard; the topology itself bounds every path.
func (o *Orchestrator) run(ctx context.Context, tc *TurnContext) error {
	nodes := map[string]nodeFunc{
		NodeCheckDomain:    o.checkQueryDomain,
		NodeRephrase:       o.rephraseBasedHistory,
		NodeCheckDomainEnd: o.checkQueryDomainEnd,
		NodeRetrieve:       o.retrieve,
		NodeGradeDocs:      o.gradeDocs,
		NodeWebSearch:      o.webSearch,
		NodeGradeWebDocs:   o.gradeWebDocs,
		NodeClassify:       o.classifyQuestion,
		NodeGenerate:       o.generate,
		NodeMathGenerate:   o.mathGenerate,
		NodeHallucination:  o.hallucinationCheck,
		NodeAnswerCheck:    o.answerCheck,
	}

	current := NodeCheckDomain
	for visits := 0; current != End; visits++ {
		if visits >= o.cfg.MaxNodeVisits {
			return fmt.Errorf("graph exceeded %d node visits at %s", o.cfg.MaxNodeVisits, current)
		}
		node, ok := nodes[current]
		if !ok {
			return fmt.Errorf("unknown node %q", current)
		}
		tc.ExecutionPath = append(tc.ExecutionPath, current)
		next := node(ctx, tc)
		log.Printf("[FLOW] %s -> %s", current, next)
		current = next
	}
	return nil
}

// #endregion
