package workflow

// #region imports
import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/kdwyer/docqa/internal/provenance"
)

// #endregion

// #region orchestrator-struct

// TurnRecorder persists completed turns for later inspection.
type TurnRecorder interface {
	Record(entry provenance.TurnEntry) error
}

// Orchestrator runs the question-answering workflow. One instance
// serves one conversation; it is not safe for concurrent Invoke calls.
type Orchestrator struct {
	oracle    Oracle
	retriever Retriever
	web       WebSearcher
	memory    *ConversationMemory
	recorder  TurnRecorder
	cfg       Config

	domain string
}

// #endregion

// #region constructor

// NewOrchestrator wires the workflow around its collaborators.
// The retriever starts unset; attach one with SetRetriever once
// material has been ingested.
func NewOrchestrator(o Oracle, web WebSearcher, cfg Config) *Orchestrator {
	return &Orchestrator{
		oracle: o,
		web:    web,
		memory: NewConversationMemory(cfg.MemoryCharBudget),
		cfg:    cfg,
	}
}

// SetDomain declares the topical restriction for this conversation.
func (o *Orchestrator) SetDomain(domain string) {
	o.domain = strings.TrimSpace(domain)
}

// Domain returns the declared restriction, empty if unset.
func (o *Orchestrator) Domain() string {
	return o.domain
}

// SetRetriever attaches the document store.
func (o *Orchestrator) SetRetriever(r Retriever) {
	o.retriever = r
}

// SetRecorder attaches a turn log for provenance.
func (o *Orchestrator) SetRecorder(r TurnRecorder) {
	o.recorder = r
}

// Memory exposes the conversation memory, mainly for tests.
func (o *Orchestrator) Memory() *ConversationMemory {
	return o.memory
}

// #endregion

// #region invoke

// Invoke runs one turn to completion. Calling it before a domain is
// set returns a fixed advisory answer rather than an error. Any
// uncaught failure inside the graph converts to the refusal answer;
// the execution path stops at the last node that completed.
func (o *Orchestrator) Invoke(ctx context.Context, question string) (result Result) {
	question = strings.TrimSpace(question)
	if o.domain == "" {
		return Result{Answer: Answer{Text: DomainUnsetText}}
	}

	tc := &TurnContext{
		Question:         question,
		OriginalQuestion: question,
		Domain:           o.domain,
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[FLOW] turn panicked: %v", r)
			tc.Answer = Answer{Text: RefusalText}
			tc.addFlag("panic", "1")
			result = o.finish(tc)
		}
	}()

	if err := o.run(ctx, tc); err != nil {
		log.Printf("[FLOW] turn aborted: %v", err)
		tc.Answer = Answer{Text: RefusalText}
		tc.addFlag("graph_error", "1")
	}
	return o.finish(tc)
}

// finish records the turn and appends it to memory. Memory mutation
// happens only here, after the terminal node has run.
func (o *Orchestrator) finish(tc *TurnContext) Result {
	if o.recorder != nil {
		entry := provenance.TurnEntry{
			TurnID:          uuid.NewString(),
			Domain:          tc.Domain,
			Question:        tc.OriginalQuestion,
			Answer:          tc.Answer.Text,
			Sources:         tc.Answer.Sources,
			CalculationNote: tc.Answer.CalculationNote,
			ExecutionPath:   tc.ExecutionPath,
			Flags:           tc.Flags,
		}
		if err := o.recorder.Record(entry); err != nil {
			log.Printf("[FLOW] turn log write failed: %v", err)
		}
	}

	o.memory.Append(tc.OriginalQuestion, tc.Answer.Text)

	return Result{
		Answer:        tc.Answer,
		ExecutionPath: tc.ExecutionPath,
		Flags:         tc.Flags,
	}
}

// #endregion
