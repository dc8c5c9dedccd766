// Package oracle wraps the model backend behind one typed method per
// structured judgement: domain gating, query rephrasing, document grading,
// answer generation, math solving, grounding and usefulness checks, and
// ingest-time domain detection. Every contract is a JSON object with fixed
// keys; a missing key or malformed payload is a call failure that the
// caller maps to its most conservative branch.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// #region config

// Config holds oracle connection parameters.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	EmbedModel string
}

// DefaultConfig returns defaults for a local Ollama endpoint.
// Reads from env vars: ORACLE_BASE_URL, ORACLE_API_KEY, ORACLE_MODEL,
// ORACLE_EMBED_MODEL.
func DefaultConfig() Config {
	cfg := Config{
		BaseURL:    "http://localhost:11434/v1",
		APIKey:     "ollama",
		Model:      "llama3.1",
		EmbedModel: "nomic-embed-text",
	}
	if v := os.Getenv("ORACLE_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("ORACLE_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("ORACLE_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("ORACLE_EMBED_MODEL"); v != "" {
		cfg.EmbedModel = v
	}
	return cfg
}

// #endregion config

// #region client-struct

// backend is the slice of the OpenAI-compatible API the client uses.
type backend interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Client invokes the model backend with JSON-object response formatting.
type Client struct {
	api        backend
	model      string
	embedModel string
}

// NewClient connects to an OpenAI-compatible endpoint (e.g. Ollama's /v1).
func NewClient(cfg Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL
	return &Client{
		api:        openai.NewClientWithConfig(apiCfg),
		model:      cfg.Model,
		embedModel: cfg.EmbedModel,
	}
}

// NewClientWithBackend creates a Client with an injected API implementation.
// Used for testing without a real endpoint.
func NewClientWithBackend(api backend, model string) *Client {
	return &Client{api: api, model: model, embedModel: model}
}

// #endregion client-struct

// #region invoke

// invoke sends a prompt, requires a JSON-object response, and verifies the
// presence of every required key before returning the raw key map.
func (c *Client) invoke(ctx context.Context, prompt string, required ...string) (map[string]json.RawMessage, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("oracle call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("oracle call: empty response")
	}

	var fields map[string]json.RawMessage
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, fmt.Errorf("oracle response not a JSON object: %w", err)
	}
	for _, key := range required {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("oracle response missing key %q", key)
		}
	}
	return fields, nil
}

// verdictFrom decodes and normalizes a binary score field.
func verdictFrom(raw json.RawMessage) (Verdict, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("score not a string: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return VerdictYes, nil
	case "no":
		return VerdictNo, nil
	default:
		return "", fmt.Errorf("score %q is not yes/no", s)
	}
}

// stringList decodes a JSON array of strings, tolerating a bare string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one == "" {
		*l = nil
		return nil
	}
	*l = []string{one}
	return nil
}

func decodeString(raw json.RawMessage, key string) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%s not a string: %w", key, err)
	}
	return s, nil
}

func decodeList(raw json.RawMessage, key string) ([]string, error) {
	var l stringList
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("%s not a string list: %w", key, err)
	}
	return []string(l), nil
}

// #endregion invoke

// #region gates

// CheckDomain grades whether a question falls within the declared domain.
func (c *Client) CheckDomain(ctx context.Context, question, domain string) (Verdict, error) {
	fields, err := c.invoke(ctx, fmt.Sprintf(domainCheckPrompt, domain, question), "score")
	if err != nil {
		return "", err
	}
	return verdictFrom(fields["score"])
}

// RephraseQuestion rewrites a follow-up question into a standalone question
// using the rendered chat history.
func (c *Client) RephraseQuestion(ctx context.Context, question, history string) (string, error) {
	fields, err := c.invoke(ctx, fmt.Sprintf(rephrasePrompt, history, question), "question")
	if err != nil {
		return "", err
	}
	return decodeString(fields["question"], "question")
}

// GradeDocument grades a single document's relevance to the question.
func (c *Client) GradeDocument(ctx context.Context, question, document string) (Verdict, error) {
	fields, err := c.invoke(ctx, fmt.Sprintf(gradeDocumentPrompt, document, question), "score")
	if err != nil {
		return "", err
	}
	return verdictFrom(fields["score"])
}

// ClassifyQuestion returns yes when the question is an arithmetic task.
func (c *Client) ClassifyQuestion(ctx context.Context, question string) (Verdict, error) {
	fields, err := c.invoke(ctx, fmt.Sprintf(classifyQuestionPrompt, question), "score")
	if err != nil {
		return "", err
	}
	return verdictFrom(fields["score"])
}

// #endregion gates

// #region generation

// GenerateAnswer produces a grounded answer with its cited sources.
func (c *Client) GenerateAnswer(ctx context.Context, question, contextText, history string) (GeneratedAnswer, error) {
	fields, err := c.invoke(ctx, fmt.Sprintf(generateAnswerPrompt, contextText, history, question), "answer", "sources")
	if err != nil {
		return GeneratedAnswer{}, err
	}
	answer, err := decodeString(fields["answer"], "answer")
	if err != nil {
		return GeneratedAnswer{}, err
	}
	sources, err := decodeList(fields["sources"], "sources")
	if err != nil {
		return GeneratedAnswer{}, err
	}
	return GeneratedAnswer{Answer: answer, Sources: sources}, nil
}

// SolveMathExpr asks for step-wise reasoning plus a pure arithmetic
// expression suitable for deterministic evaluation.
func (c *Client) SolveMathExpr(ctx context.Context, question, contextText string) (MathExprSolution, error) {
	fields, err := c.invoke(ctx, fmt.Sprintf(mathExprPrompt, contextText, question), "step_wise_reasoning", "expr")
	if err != nil {
		return MathExprSolution{}, err
	}
	steps, err := decodeList(fields["step_wise_reasoning"], "step_wise_reasoning")
	if err != nil {
		return MathExprSolution{}, err
	}
	expr, err := decodeString(fields["expr"], "expr")
	if err != nil {
		return MathExprSolution{}, err
	}
	sol := MathExprSolution{Steps: steps, Expr: expr}
	if raw, ok := fields["sources"]; ok {
		sol.Sources, _ = decodeList(raw, "sources")
	}
	return sol, nil
}

// SolveMathDirect asks for step-wise reasoning plus a directly stated
// solution. Tier 2: used when the expression tier could not be evaluated.
func (c *Client) SolveMathDirect(ctx context.Context, question, contextText string) (MathDirectSolution, error) {
	fields, err := c.invoke(ctx, fmt.Sprintf(mathDirectPrompt, contextText, question), "step_wise_reasoning", "solution")
	if err != nil {
		return MathDirectSolution{}, err
	}
	steps, err := decodeList(fields["step_wise_reasoning"], "step_wise_reasoning")
	if err != nil {
		return MathDirectSolution{}, err
	}
	solution, err := decodeString(fields["solution"], "solution")
	if err != nil {
		return MathDirectSolution{}, err
	}
	sol := MathDirectSolution{Steps: steps, Solution: solution}
	if raw, ok := fields["sources"]; ok {
		sol.Sources, _ = decodeList(raw, "sources")
	}
	return sol, nil
}

// #endregion generation

// #region verification

// CheckGrounding grades whether the answer is supported by the documents.
func (c *Client) CheckGrounding(ctx context.Context, documents, answer string) (Verdict, error) {
	fields, err := c.invoke(ctx, fmt.Sprintf(groundingCheckPrompt, documents, answer), "score")
	if err != nil {
		return "", err
	}
	return verdictFrom(fields["score"])
}

// CheckUsefulness grades whether the answer resolves the question.
func (c *Client) CheckUsefulness(ctx context.Context, question, answer string) (Verdict, error) {
	fields, err := c.invoke(ctx, fmt.Sprintf(usefulnessCheckPrompt, answer, question), "score")
	if err != nil {
		return "", err
	}
	return verdictFrom(fields["score"])
}

// #endregion verification

// #region ingest

// DetectDomain summarizes a document batch and infers its topical domain.
func (c *Client) DetectDomain(ctx context.Context, documents string) (DomainSummary, error) {
	fields, err := c.invoke(ctx, fmt.Sprintf(domainDetectionPrompt, documents), "summary", "domain")
	if err != nil {
		return DomainSummary{}, err
	}
	summary, err := decodeString(fields["summary"], "summary")
	if err != nil {
		return DomainSummary{}, err
	}
	domain, err := decodeString(fields["domain"], "domain")
	if err != nil {
		return DomainSummary{}, err
	}
	return DomainSummary{Summary: summary, Domain: domain}, nil
}

// CompareDomains grades whether detected document content matches the
// user-declared domain.
func (c *Client) CompareDomains(ctx context.Context, declared, summary, docDomain string) (Verdict, error) {
	fields, err := c.invoke(ctx, fmt.Sprintf(domainComparePrompt, declared, summary, docDomain), "score")
	if err != nil {
		return "", err
	}
	return verdictFrom(fields["score"])
}

// #endregion ingest

// #region embed

// Embed returns embedding vectors for the given texts.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.embedModel),
	})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embed: got %d vectors for %d texts", len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// #endregion embed
