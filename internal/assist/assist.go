// Package assist sends markdown to an OpenAI-compatible model and
// returns a revised document plus a bullet summary of the changes.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/zjrosen/markpad/internal/log"
)

// systemPrompt instructs the model to rewrite the document and report
// what changed. The complete-document requirement matters: models
// truncate long inputs unless told not to.
const systemPrompt = "You are a helpful assistant that analyzes markdown " +
	"and returns the updated markdown along with a bullet-point list summary " +
	"of the changes separated by line breaks. " +
	"IMPORTANT: Always return the complete markdown content from start to finish. " +
	"Do not skip any sections of the document, regardless of length. " +
	"You can make improvements, edits, and changes as requested, but ensure " +
	"you return the entire document. " +
	`Reply with a single JSON object of the form {"markdown": "...", "summary": "..."} and nothing else.`

// DefaultModel is used when the config does not name one.
const DefaultModel = "gpt-5-mini"

// DefaultTimeout bounds a single revision call.
const DefaultTimeout = 120 * time.Second

// Request carries one revision request.
type Request struct {
	// Markdown is the document to revise. Must be non-empty.
	Markdown string
	// Instructions tell the model what to improve. Must be non-empty.
	Instructions string
}

// Result is a completed revision.
type Result struct {
	// Markdown is the full revised document.
	Markdown string `json:"markdown"`
	// Summary is a bullet-point list of changes, newline separated.
	Summary string `json:"summary"`
}

// Config configures the assist service.
type Config struct {
	// APIKey authenticates against the API. Required.
	APIKey string
	// BaseURL overrides the API endpoint (for compatible providers).
	BaseURL string
	// Model names the model to use. Defaults to DefaultModel.
	Model string
	// Timeout bounds each call. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Service performs revision calls against the configured model.
type Service struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewService creates a service from config.
func NewService(cfg Config) *Service {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Service{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: timeout,
	}
}

// Revise asks the model for an improved document and change summary.
// Failures come back as *Error with a classified Kind; every failure is
// recoverable and none are retried here.
func (s *Service) Revise(ctx context.Context, req Request) (*Result, error) {
	if req.Markdown == "" {
		return nil, newError(ErrOther, fmt.Errorf("markdown must not be empty"))
	}
	if req.Instructions == "" {
		return nil, newError(ErrOther, fmt.Errorf("instructions must not be empty"))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf("Instructions:\n%s\n\nMarkdown:\n%s", req.Instructions, req.Markdown)
	log.Debug(log.CatAssist, "Sending revision request",
		"model", s.model, "markdownBytes", len(req.Markdown))

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		classified := classify(err)
		log.ErrorErr(log.CatAssist, "Revision request failed", err, "kind", classified.Kind)
		return nil, classified
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, newError(ErrInvalidResponse, fmt.Errorf("response has no choices"))
	}

	result, err := parseResult(resp.Choices[0].Message.Content)
	if err != nil {
		log.ErrorErr(log.CatAssist, "Could not parse model reply", err)
		return nil, newError(ErrInvalidResponse, err)
	}

	log.Info(log.CatAssist, "Revision complete",
		"markdownBytes", len(result.Markdown), "summaryBytes", len(result.Summary))
	return result, nil
}

// parseResult decodes the model's JSON reply, tolerating a fenced code
// block around the object.
func parseResult(content string) (*Result, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("decoding model reply: %w", err)
	}
	if result.Markdown == "" {
		return nil, fmt.Errorf("model reply has empty markdown")
	}
	return &result, nil
}
