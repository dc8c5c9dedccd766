package workflow

// #region imports
import (
	"context"
	"log"
	"strings"

	"github.com/kdwyer/docqa/internal/numeval"
	"github.com/kdwyer/docqa/internal/oracle"
)

// #endregion

// #region domain-gate

// checkQueryDomain is the entry gate. It pre-populates the refusal
// answer so every downstream terminal edge carries a valid answer even
// if nothing else runs. An oracle failure counts as a rejection.
func (o *Orchestrator) checkQueryDomain(ctx context.Context, tc *TurnContext) string {
	tc.Answer = Answer{Text: RefusalText}

	verdict, err := o.oracle.CheckDomain(ctx, tc.Question, tc.Domain)
	if err != nil {
		log.Printf("[FLOW] domain check failed: %v", err)
		tc.addFlag("domain_check_error", "1")
		verdict = oracle.VerdictNo
	}
	tc.DomainRelevance = verdict
	tc.addFlag("domain_relevance", string(verdict))

	if verdict == oracle.VerdictYes {
		return NodeRetrieve
	}
	return NodeRephrase
}

// rephraseBasedHistory rewrites the question as a standalone query
// using recent history, then hands it back to the gate for its single
// retry. Rephrasing failure must never abort the turn.
func (o *Orchestrator) rephraseBasedHistory(ctx context.Context, tc *TurnContext) string {
	rephrased, err := o.oracle.RephraseQuestion(ctx, tc.Question, o.memory.Render())
	if err != nil || strings.TrimSpace(rephrased) == "" {
		if err != nil {
			log.Printf("[FLOW] rephrase failed, keeping question: %v", err)
			tc.addFlag("rephrase_error", "1")
		}
		return NodeCheckDomainEnd
	}
	tc.Question = rephrased
	return NodeCheckDomainEnd
}

// checkQueryDomainEnd is the post-rephrase gate. A second rejection
// terminates the turn; there is no further retry.
func (o *Orchestrator) checkQueryDomainEnd(ctx context.Context, tc *TurnContext) string {
	verdict, err := o.oracle.CheckDomain(ctx, tc.Question, tc.Domain)
	if err != nil {
		log.Printf("[FLOW] domain re-check failed: %v", err)
		tc.addFlag("domain_check_error", "1")
		verdict = oracle.VerdictNo
	}
	tc.DomainRelevance = verdict
	tc.addFlag("domain_relevance", string(verdict))

	if verdict == oracle.VerdictYes {
		return NodeRetrieve
	}
	return End
}

// #endregion

// #region retrieval

// retrieve queries the document store. The query is conditioned on
// recent history so pronoun references resolve; with no history the
// question goes through as-is. A missing retriever is the normal
// nothing-ingested-yet state, not an error.
func (o *Orchestrator) retrieve(ctx context.Context, tc *TurnContext) string {
	tc.Documents = nil

	if o.retriever == nil {
		return NodeGradeDocs
	}

	query := tc.Question
	if history := o.memory.Render(); history != "" {
		standalone, err := o.oracle.RephraseQuestion(ctx, tc.Question, history)
		if err == nil && strings.TrimSpace(standalone) != "" {
			query = standalone
		}
	}

	docs, err := o.retriever.Retrieve(ctx, query)
	if err != nil {
		log.Printf("[FLOW] retrieval failed: %v", err)
		tc.addFlag("retrieve_error", "1")
		return NodeGradeDocs
	}
	tc.Documents = docs
	return NodeGradeDocs
}

// #endregion

// #region grading

// gradeDocuments applies an independent per-document relevance
// judgement, preserving input order. A document whose grading call
// fails is dropped; precision over recall.
func (o *Orchestrator) gradeDocuments(ctx context.Context, tc *TurnContext) {
	tc.GradedDocuments = nil
	for _, doc := range tc.Documents {
		verdict, err := o.oracle.GradeDocument(ctx, tc.Question, doc.Content)
		if err != nil {
			log.Printf("[FLOW] grading failed for %s: %v", doc.SourceID, err)
			tc.addFlag("grade_error", doc.SourceID)
			continue
		}
		if verdict == oracle.VerdictYes {
			tc.GradedDocuments = append(tc.GradedDocuments, doc)
		}
	}
}

// gradeDocs grades the primary retrieval. An empty result falls
// through to web search rather than terminating.
func (o *Orchestrator) gradeDocs(ctx context.Context, tc *TurnContext) string {
	o.gradeDocuments(ctx, tc)
	if len(tc.GradedDocuments) > 0 {
		return NodeClassify
	}
	return NodeWebSearch
}

// gradeWebDocs grades the web-search results with the same logic.
// An empty result here is terminal; no further fallback tier exists.
func (o *Orchestrator) gradeWebDocs(ctx context.Context, tc *TurnContext) string {
	o.gradeDocuments(ctx, tc)
	if len(tc.GradedDocuments) > 0 {
		return NodeClassify
	}
	return End
}

// #endregion

// #region web-search

// webSearch replaces the document set wholesale with web results,
// snippet as content and link as provenance.
func (o *Orchestrator) webSearch(ctx context.Context, tc *TurnContext) string {
	tc.Documents = nil
	tc.addFlag("web_fallback", "1")

	if o.web == nil {
		return NodeGradeWebDocs
	}

	hits, err := o.web.Search(ctx, tc.Question)
	if err != nil {
		log.Printf("[FLOW] web search failed: %v", err)
		tc.addFlag("web_search_error", "1")
		return NodeGradeWebDocs
	}
	for _, h := range hits {
		tc.Documents = append(tc.Documents, Document{
			Content:  h.Snippet,
			SourceID: h.Link,
		})
	}
	return NodeGradeWebDocs
}

// #endregion

// #region classification

// classifyQuestion picks the generation path. A classifier failure
// short-circuits to the refusal rather than guessing a path;
// misrouting is worse than refusing.
func (o *Orchestrator) classifyQuestion(ctx context.Context, tc *TurnContext) string {
	verdict, err := o.oracle.ClassifyQuestion(ctx, tc.Question)
	if err != nil {
		log.Printf("[FLOW] classification failed: %v", err)
		tc.QuestionType = QuestionError
		tc.addFlag("question_type", string(QuestionError))
		return End
	}

	if verdict == oracle.VerdictYes {
		tc.QuestionType = QuestionMath
	} else {
		tc.QuestionType = QuestionText
	}
	tc.addFlag("question_type", string(tc.QuestionType))

	if tc.QuestionType == QuestionMath {
		return NodeMathGenerate
	}
	return NodeGenerate
}

// #endregion

// #region generation

// contextText joins graded documents into the evidence block passed
// to generation and grounding prompts.
func contextText(docs []Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Content
	}
	return strings.Join(parts, "\n\n")
}

// generate produces a grounded free-text answer. On failure the
// pre-populated refusal stands and the grounding check treats the
// turn as ungrounded.
func (o *Orchestrator) generate(ctx context.Context, tc *TurnContext) string {
	gen, err := o.oracle.GenerateAnswer(ctx, tc.Question, contextText(tc.GradedDocuments), o.memory.Render())
	if err != nil {
		log.Printf("[FLOW] generation failed: %v", err)
		tc.addFlag("generate_error", "1")
		tc.generationFailed = true
		return NodeHallucination
	}
	tc.Answer = Answer{
		Text:    gen.Answer,
		Sources: gen.Sources,
	}
	return NodeHallucination
}

// #endregion

// #region math

// renderSteps joins step-wise reasoning for display above the final
// answer line.
func renderSteps(steps []string) string {
	return strings.Join(steps, "\n")
}

// mathGenerate runs the two-tier math path. Tier 1 asks for a pure
// arithmetic expression and evaluates it deterministically. Tier 2
// falls back to a model-stated solution that carries a lower
// confidence note. Only when both tiers fail does the turn produce
// the generic math error instead of a refusal.
func (o *Orchestrator) mathGenerate(ctx context.Context, tc *TurnContext) string {
	evidence := contextText(tc.GradedDocuments)

	sol, err := o.oracle.SolveMathExpr(ctx, tc.Question, evidence)
	if err == nil {
		value, evalErr := numeval.Evaluate(sol.Expr)
		if evalErr == nil {
			text := renderSteps(sol.Steps)
			if text != "" {
				text += "\n"
			}
			text += "Final answer: " + sol.Expr + " = " + numeval.FormatValue(value)
			tc.Answer = Answer{
				Text:            text,
				Sources:         sol.Sources,
				CalculationNote: "computed",
			}
			tc.addFlag("calculation", "computed")
			return NodeAnswerCheck
		}
		log.Printf("[FLOW] expression %q not evaluable: %v", sol.Expr, evalErr)
		tc.addFlag("expr_eval_error", "1")
	} else {
		log.Printf("[FLOW] math tier 1 failed: %v", err)
		tc.addFlag("math_expr_error", "1")
	}

	direct, err := o.oracle.SolveMathDirect(ctx, tc.Question, evidence)
	if err != nil {
		log.Printf("[FLOW] math tier 2 failed: %v", err)
		tc.addFlag("math_direct_error", "1")
		tc.Answer = Answer{Text: mathErrorText}
		return End
	}
	text := renderSteps(direct.Steps)
	if text != "" {
		text += "\n"
	}
	text += "Final answer: " + direct.Solution
	tc.Answer = Answer{
		Text:            text,
		Sources:         direct.Sources,
		CalculationNote: "not independently verified",
	}
	tc.addFlag("calculation", "unverified")
	return NodeAnswerCheck
}

// #endregion

// #region verification

// hallucinationCheck compares the generated answer against the same
// document set that produced it. The oracle grades grounding, so a
// "yes" there means no hallucination. Ungrounded answers are replaced
// with the refusal and the turn ends; there is no regeneration loop.
func (o *Orchestrator) hallucinationCheck(ctx context.Context, tc *TurnContext) string {
	grounded := oracle.VerdictNo
	if !tc.generationFailed {
		verdict, err := o.oracle.CheckGrounding(ctx, contextText(tc.GradedDocuments), tc.Answer.Text)
		if err != nil {
			log.Printf("[FLOW] grounding check failed: %v", err)
			tc.addFlag("grounding_check_error", "1")
		} else {
			grounded = verdict
		}
	}

	if grounded == oracle.VerdictYes {
		tc.Hallucination = oracle.VerdictNo
		tc.addFlag("hallucination", string(tc.Hallucination))
		return NodeAnswerCheck
	}
	tc.Hallucination = oracle.VerdictYes
	tc.addFlag("hallucination", string(tc.Hallucination))
	tc.Answer = Answer{Text: RefusalText}
	return End
}

// answerCheck records whether the answer addresses the question.
// The outcome is diagnostic only; the turn terminates either way.
func (o *Orchestrator) answerCheck(ctx context.Context, tc *TurnContext) string {
	verdict, err := o.oracle.CheckUsefulness(ctx, tc.Question, tc.Answer.Text)
	if err != nil {
		log.Printf("[FLOW] usefulness check failed: %v", err)
		tc.addFlag("usefulness_check_error", "1")
		verdict = oracle.VerdictNo
	}
	if verdict == oracle.VerdictYes {
		tc.AnswerUseful = AnswerUseful
	} else {
		tc.AnswerUseful = AnswerNotUseful
	}
	tc.addFlag("answer_useful", string(tc.AnswerUseful))
	return End
}

// #endregion
