// Package openai implements the oracle ports using the go-openai library.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	gopenai "github.com/sashabaranov/go-openai"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.ClassifierOracle = (*Client)(nil)
	_ driven.PolicyOracle     = (*Client)(nil)
)

// DefaultModel is used when the configuration does not name one.
const DefaultModel = "gpt-4o-mini"

// Client implements the ClassifierOracle and PolicyOracle ports against the
// OpenAI chat completion API. It returns the model's raw text output; parsing
// and validation belong to the application layer.
type Client struct {
	client       *gopenai.Client
	chatModel    string
	policyPrompt string
	logger       *slog.Logger
}

// Config carries the settings needed to construct a Client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // Overridden in tests to point at an httptest server.
}

// NewClient creates an oracle client. An empty checklist falls back to the
// default checklist; the checklist shapes the policy evaluation prompt.
func NewClient(cfg Config, checklist []model.ChecklistItem, logger *slog.Logger) *Client {
	clientCfg := gopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	chatModel := cfg.Model
	if chatModel == "" {
		chatModel = DefaultModel
	}

	if len(checklist) == 0 {
		checklist = model.DefaultChecklist()
	}

	return &Client{
		client:       gopenai.NewClientWithConfig(clientCfg),
		chatModel:    chatModel,
		policyPrompt: buildPolicyPrompt(checklist),
		logger:       logger,
	}
}

// ClassifyEmails sends a batch of email summaries to the classifier and
// returns the raw completion text.
func (c *Client) ClassifyEmails(ctx context.Context, emails []driven.EmailSummary) (string, error) {
	payload, err := json.Marshal(map[string][]driven.EmailSummary{"emails": emails})
	if err != nil {
		return "", fmt.Errorf("marshal classifier input: %w", err)
	}

	return c.complete(ctx, classifierPrompt, string(payload))
}

// EvaluatePolicy sends a privacy policy document to the evaluator and returns
// the raw completion text.
func (c *Client) EvaluatePolicy(ctx context.Context, policyText string) (string, error) {
	return c.complete(ctx, c.policyPrompt, policyText)
}

func (c *Client) complete(ctx context.Context, systemPrompt, userContent string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []gopenai.ChatCompletionMessage{
			{Role: gopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: gopenai.ChatMessageRoleUser, Content: userContent},
		},
	})
	if err != nil {
		c.logger.Error("chat completion failed", "model", c.chatModel, "error", err)
		return "", fmt.Errorf("%w: %v", driven.ErrOracleUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", driven.ErrOracleUnavailable)
	}

	return resp.Choices[0].Message.Content, nil
}
