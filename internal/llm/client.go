// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm sends one narrative at a time to a hosted chat model and
// decodes the structured fields it returns. A Client makes exactly one
// attempt per call; retry policy belongs to the caller.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"golang.org/x/time/rate"

	"github.com/pdiddy/crime-extract/internal/secrets"
	"github.com/pdiddy/crime-extract/pkg/types"
)

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	client      openai.Client
	model       string
	temperature float64
	timeout     time.Duration
	limiter     *rate.Limiter
	schema      *payloadSchema
	lookup      types.CrimeCodes
}

// Option customizes a Client.
type Option func(*Client)

// WithCrimeCodes lets the prompt name the crime type next to its code.
func WithCrimeCodes(codes types.CrimeCodes) Option {
	return func(c *Client) { c.lookup = codes }
}

// New builds a Client from cfg. It returns ErrNoCredential when cfg has no
// usable API key. A nil httpClient uses http.DefaultClient.
func New(cfg types.AIConfig, httpClient *http.Client, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" || secrets.IsPlaceholder(key) {
		return nil, ErrNoCredential
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	schema, err := newPayloadSchema()
	if err != nil {
		return nil, err
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}

	c := &Client{
		client:      openai.NewClient(reqOpts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		schema:      schema,
	}
	if c.model == "" {
		c.model = types.DefaultModel
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60), 1)
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Extract makes one request for narrative and returns the decoded fields
// without normalization. Every failure is an *Error.
func (c *Client) Extract(ctx context.Context, crimeCode, narrative string) (types.Fields, error) {
	crimeType := ""
	if c.lookup != nil {
		if label := c.lookup.Lookup(crimeCode); label != types.UnknownCrimeType {
			crimeType = label
		}
	}
	prompt, err := renderPrompt(crimeCode, crimeType, narrative, c.schema)
	if err != nil {
		return types.Fields{}, transportErr("rendering prompt: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return types.Fields{}, transportErr("waiting for rate limiter: %w", err)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return types.Fields{}, classify(err)
	}
	if len(resp.Choices) == 0 {
		return types.Fields{}, schemaErr("response has no choices")
	}
	return parseFields(resp.Choices[0].Message.Content, c.schema)
}

// classify maps an SDK error onto a Kind. Only 401 and 403 are auth
// failures; every other status or network problem is transport.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return authErr("API returned %d: %w", apiErr.StatusCode, err)
		default:
			return transportErr("API returned %d: %w", apiErr.StatusCode, err)
		}
	}
	return transportErr("calling chat completions: %w", err)
}

// String describes the client for log lines. The key is never included.
func (c *Client) String() string {
	return fmt.Sprintf("llm.Client{model=%s}", c.model)
}
