package oracle

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// fakeBackend replies with scripted content, one reply per call.
type fakeBackend struct {
	replies []string
	err     error
	calls   int
	prompts []string
}

func (f *fakeBackend) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	if len(req.Messages) > 0 {
		f.prompts = append(f.prompts, req.Messages[0].Content)
	}
	reply := f.replies[f.calls%len(f.replies)]
	f.calls++
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: reply}},
		},
	}, nil
}

func (f *fakeBackend) CreateEmbeddings(_ context.Context, _ openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	if f.err != nil {
		return openai.EmbeddingResponse{}, f.err
	}
	return openai.EmbeddingResponse{
		Data: []openai.Embedding{{Embedding: []float32{0.1, 0.2}}},
	}, nil
}

func newTestClient(replies ...string) (*Client, *fakeBackend) {
	fb := &fakeBackend{replies: replies}
	return NewClientWithBackend(fb, "test-model"), fb
}

func TestCheckDomainVerdicts(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    Verdict
		wantErr bool
	}{
		{"yes", `{"score": "yes"}`, VerdictYes, false},
		{"no", `{"score": "no"}`, VerdictNo, false},
		{"uppercase", `{"score": "Yes"}`, VerdictYes, false},
		{"padded", `{"score": " no "}`, VerdictNo, false},
		{"missing-key", `{"grade": "yes"}`, "", true},
		{"non-binary", `{"score": "maybe"}`, "", true},
		{"not-json", `the answer is yes`, "", true},
		{"score-not-string", `{"score": 1}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(tt.reply)
			got, err := c.CheckDomain(context.Background(), "q", "Sport")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got verdict %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckDomainPromptContainsInputs(t *testing.T) {
	c, fb := newTestClient(`{"score": "yes"}`)
	if _, err := c.CheckDomain(context.Background(), "How fast is a fastball?", "Sport"); err != nil {
		t.Fatal(err)
	}
	prompt := fb.prompts[0]
	if !containsAll(prompt, "Sport", "How fast is a fastball?") {
		t.Errorf("prompt missing inputs: %q", prompt)
	}
}

func TestRephraseQuestion(t *testing.T) {
	c, _ := newTestClient(`{"question": "What is the capital of France?"}`)
	got, err := c.RephraseQuestion(context.Background(), "and its capital?", "User: tell me about France")
	if err != nil {
		t.Fatal(err)
	}
	if got != "What is the capital of France?" {
		t.Errorf("got %q", got)
	}
}

func TestRephraseQuestionMissingKey(t *testing.T) {
	c, _ := newTestClient(`{"rephrased": "x"}`)
	if _, err := c.RephraseQuestion(context.Background(), "q", ""); err == nil {
		t.Fatal("expected error for missing 'question' key")
	}
}

func TestGenerateAnswer(t *testing.T) {
	c, _ := newTestClient(`{"answer": "AI improves drills.", "sources": ["coach.pdf"]}`)
	got, err := c.GenerateAnswer(context.Background(), "q", "ctx", "")
	if err != nil {
		t.Fatal(err)
	}
	if got.Answer != "AI improves drills." {
		t.Errorf("answer: got %q", got.Answer)
	}
	if len(got.Sources) != 1 || got.Sources[0] != "coach.pdf" {
		t.Errorf("sources: got %v", got.Sources)
	}
}

func TestGenerateAnswerSourcesAsBareString(t *testing.T) {
	c, _ := newTestClient(`{"answer": "a", "sources": "coach.pdf"}`)
	got, err := c.GenerateAnswer(context.Background(), "q", "ctx", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Sources) != 1 || got.Sources[0] != "coach.pdf" {
		t.Errorf("sources: got %v", got.Sources)
	}
}

func TestSolveMathExpr(t *testing.T) {
	c, _ := newTestClient(`{"step_wise_reasoning": ["compute inner", "subtract"], "expr": "20 - (3*2+2*3)", "sources": []}`)
	got, err := c.SolveMathExpr(context.Background(), "q", "")
	if err != nil {
		t.Fatal(err)
	}
	if got.Expr != "20 - (3*2+2*3)" {
		t.Errorf("expr: got %q", got.Expr)
	}
	if len(got.Steps) != 2 {
		t.Errorf("steps: got %v", got.Steps)
	}
}

func TestSolveMathDirectMissingSolution(t *testing.T) {
	c, _ := newTestClient(`{"step_wise_reasoning": ["a"]}`)
	if _, err := c.SolveMathDirect(context.Background(), "q", ""); err == nil {
		t.Fatal("expected error for missing 'solution' key")
	}
}

func TestDetectDomain(t *testing.T) {
	c, _ := newTestClient(`{"summary": "Basketball coaching with AI.", "domain": "sports"}`)
	got, err := c.DetectDomain(context.Background(), "docs")
	if err != nil {
		t.Fatal(err)
	}
	if got.Domain != "sports" {
		t.Errorf("domain: got %q", got.Domain)
	}
	if got.Summary == "" {
		t.Error("summary empty")
	}
}

func TestBackendErrorPropagates(t *testing.T) {
	fb := &fakeBackend{err: errors.New("connection refused")}
	c := NewClientWithBackend(fb, "test-model")
	if _, err := c.CheckDomain(context.Background(), "q", "d"); err == nil {
		t.Fatal("expected error from backend")
	}
	if _, err := c.Embed(context.Background(), []string{"t"}); err == nil {
		t.Fatal("expected error from backend")
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		found := false
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
