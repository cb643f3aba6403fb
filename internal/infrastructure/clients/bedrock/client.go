package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/soterohealth/medscribe/pkg/config"
	apperrors "github.com/soterohealth/medscribe/pkg/errors"
)

const anthropicVersion = "bedrock-2023-05-31"

// ModelInvoker is the slice of the Bedrock Runtime API the client uses.
// *bedrockruntime.Client satisfies it; tests substitute a deterministic fake.
type ModelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client generates clinical documents from encounter payloads via Bedrock.
// It never persists anything and never modifies the encounter payload it is
// handed; persistence belongs to the pipeline service.
type Client struct {
	invoker ModelInvoker
	cfg     config.BedrockConfig
	limiter *tokenBucket
}

// NewClient creates a generation client over the given invoker.
func NewClient(invoker ModelInvoker, cfg config.BedrockConfig) (*Client, error) {
	if invoker == nil {
		return nil, errors.New("bedrock model invoker is required")
	}
	return &Client{
		invoker: invoker,
		cfg:     cfg,
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
	}, nil
}

type messageRequest struct {
	AnthropicVersion string    `json:"anthropic_version,omitempty"`
	System           string    `json:"system,omitempty"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float64   `json:"temperature"`
	Messages         []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

// responseEnvelope covers both wrapper shapes the configured model families
// return: a top-level content list, or output.message.content.
type responseEnvelope struct {
	Content []contentBlock `json:"content"`
	Output  *struct {
		Message struct {
			Content []contentBlock `json:"content"`
		} `json:"message"`
	} `json:"output,omitempty"`
}

func (e *responseEnvelope) firstText() string {
	for _, block := range e.Content {
		if block.Text != "" {
			return block.Text
		}
	}
	if e.Output != nil {
		for _, block := range e.Output.Message.Content {
			if block.Text != "" {
				return block.Text
			}
		}
	}
	return ""
}

// invoke sends one generation request and returns the first text block of
// the response. Every transport-level failure comes back as a single
// GENERATION_SERVICE error carrying the cause.
func (c *Client) invoke(ctx context.Context, modelID, system, user string, temperature float64, maxTokens int) (string, error) {
	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordBedrockMetric(ctx, modelID, 0, err)
			return "", apperrors.NewGenerationServiceError("rate limiter wait aborted", err)
		}
		recordBedrockRateLimitWait(ctx, modelID, time.Since(waitStart))
	}

	req := messageRequest{
		MaxTokens:   maxTokens,
		Temperature: temperature,
		System:      system,
		Messages:    []message{{Role: "user", Content: user}},
	}
	if strings.Contains(modelID, "anthropic.") {
		req.AnthropicVersion = anthropicVersion
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", apperrors.NewGenerationServiceError("marshal generation request", err)
	}

	start := time.Now()
	out, err := c.invoker.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		recordBedrockMetric(ctx, modelID, time.Since(start), err)
		return "", apperrors.NewGenerationServiceError("bedrock invoke failed for model "+modelID, err)
	}
	recordBedrockMetric(ctx, modelID, time.Since(start), nil)

	var envelope responseEnvelope
	if err := json.Unmarshal(out.Body, &envelope); err != nil {
		return "", apperrors.NewResponseParseError("bedrock response is not a message envelope", err)
	}

	text := envelope.firstText()
	if text == "" {
		return "", apperrors.NewResponseParseError("bedrock response has no text content", nil)
	}
	return text, nil
}

var _ ModelInvoker = (*bedrockruntime.Client)(nil)
