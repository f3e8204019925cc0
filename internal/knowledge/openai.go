package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/VidaNova/AcolheBot/internal/models"
)

// unknownSentinel is the reply the model is instructed to give when it does
// not know the answer; it maps to zero confidence.
const unknownSentinel = "NAO SEI"

const systemPrompt = "Você é o assistente virtual da Igreja Vida Nova. " +
	"Responda perguntas de visitantes sobre a igreja de forma curta, calorosa e em português. " +
	"Responda apenas com base em informações gerais sobre igrejas evangélicas e nos horários informados. " +
	"Se você não souber a resposta, responda exatamente: " + unknownSentinel

// Opts holds configuration options for the OpenAI-backed service.
type Opts struct {
	APIKey string
	Model  string
}

// Option defines a configuration option for the OpenAI-backed service.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// OpenAIClient answers questions through the OpenAI chat API.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI-backed Service, falling back to the
// OPENAI_API_KEY environment variable when no key option is given.
func NewOpenAIClient(opts ...Option) (*OpenAIClient, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}

	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
	}, nil
}

// Answer asks the model the visitor's question. A sentinel "don't know"
// reply or an empty completion yields a zero-value answer; a real reply is
// returned with full confidence since the model gives no usable score.
func (c *OpenAIClient) Answer(ctx context.Context, query string) (models.KnowledgeAnswer, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(query),
		},
	})
	if err != nil {
		slog.Error("OpenAIClient completion failed", "error", err)
		return models.KnowledgeAnswer{}, fmt.Errorf("knowledge completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.KnowledgeAnswer{}, nil
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" || strings.EqualFold(text, unknownSentinel) {
		slog.Debug("OpenAIClient has no answer", "query_length", len(query))
		return models.KnowledgeAnswer{}, nil
	}

	return models.KnowledgeAnswer{Text: text, Confidence: 1}, nil
}
