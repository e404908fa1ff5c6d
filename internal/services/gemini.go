package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"studymate-backend/internal/logger"
)

// TextGenerator turns a prompt into text. Provider-side refusals come back as
// text; only transport-level faults are errors.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	blockedPrefix = "Content generation blocked: "
	emptyResponse = "Error: Received empty response from AI."
)

type GeminiClient struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	timeout  time.Duration
	rateChan chan struct{} // Token bucket
	log      *logger.Logger
}

func NewGeminiClient(apiKey, modelName string, concurrentReqs int, timeout time.Duration, log *logger.Logger) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiClient{
		client:   client,
		model:    model,
		timeout:  timeout,
		rateChan: rateChan,
		log:      log,
	}, nil
}

func (g *GeminiClient) Close() {
	g.client.Close()
}

// acquireRate blocks until a rate slot is available
func (g *GeminiClient) acquireRate(ctx context.Context) error {
	select {
	case <-g.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *GeminiClient) releaseRate() {
	g.rateChan <- struct{}{}
}

// Generate sends a single prompt with no retries. The call, including the
// wait for a rate slot, is bounded by the configured timeout.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.acquireRate(ctx); err != nil {
		return "", fmt.Errorf("timeout waiting for Gemini rate slot: %w", err)
	}
	defer g.releaseRate()

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			reason := blockReason(blocked)
			g.log.Warn("Gemini blocked prompt", "reason", reason)
			return blockedPrefix + reason, nil
		}
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			g.log.Warn("Gemini candidate did not finish cleanly", "candidate", i, "finish_reason", cand.FinishReason.String())
		}
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return blockedPrefix + resp.PromptFeedback.BlockReason.String(), nil
		}
		return emptyResponse, nil
	}
	return text, nil
}

func blockReason(b *genai.BlockedError) string {
	if b.PromptFeedback != nil {
		return b.PromptFeedback.BlockReason.String()
	}
	if b.Candidate != nil {
		return b.Candidate.FinishReason.String()
	}
	return "unknown"
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
