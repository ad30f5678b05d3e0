// Package anthropic classifies spreadsheet columns with an Anthropic model.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/mapping/semantic"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/schema"
)

// DefaultMaxTokens is used when Config.MaxTokens is zero.
const DefaultMaxTokens = 1024

var errNoJSON = errors.New("anthropic: no JSON object in reply")

// Config selects the model and credentials.
type Config struct {
	Model     string
	MaxTokens int64
	APIKey    string
	// BaseURL overrides the API endpoint.
	BaseURL string
}

type messages interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Classifier implements semantic.Classifier.
type Classifier struct {
	msgs      messages
	model     string
	maxTokens int64
}

var _ semantic.Classifier = (*Classifier)(nil)

// New builds a Classifier backed by the Messages API.
func New(cfg Config) (*Classifier, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("anthropic: model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: api key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := sdk.NewClient(opts...)
	return newWith(&client.Messages, cfg), nil
}

func newWith(m messages, cfg Config) *Classifier {
	n := cfg.MaxTokens
	if n <= 0 {
		n = DefaultMaxTokens
	}
	return &Classifier{msgs: m, model: cfg.Model, maxTokens: n}
}

// Classify asks the model for a mapping and parses the first JSON object of
// its reply.
func (c *Classifier) Classify(ctx context.Context, req semantic.Request) (*semantic.Response, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}
	msg, err := c.msgs.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: messages: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	js, err := extractJSON(text.String())
	if err != nil {
		return nil, err
	}
	return semantic.DecodeResponse([]byte(js))
}

func buildPrompt(req semantic.Request) (string, error) {
	payload, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("anthropic: encode request: %w", err)
	}

	var fields strings.Builder
	for _, f := range schema.Fields() {
		fmt.Fprintf(&fields, "- %s (%s)\n", f, f.Label())
	}

	return fmt.Sprintf(`You map the columns of a livestock spreadsheet onto a fixed animal schema.

Allowed target fields:
%s
Columns and sample rows:
%s

Output ONLY a JSON object of this shape:
{"mappings": [{"sourceColumn": "<header exactly as given>", "targetField": "<field id or empty string to skip>", "confidence": <0..1>}]}

Rules:
- One entry per column, in the order given
- Use each target field at most once
- Use an empty targetField when no field fits
- No markdown, no explanations`, fields.String(), payload), nil
}

// extractJSON returns the span from the first '{' to the last '}'.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", errNoJSON
	}
	return s[start : end+1], nil
}
