package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"invoiceguard/internal/config"
	"invoiceguard/internal/parser"
	"invoiceguard/internal/port"
)

const defaultModel = goopenai.GPT4o

// Parser implements port.DocumentParser using the OpenAI Chat Completions API.
// Only image uploads are supported.
type Parser struct {
	client *goopenai.Client
	model  string
}

// NewParser creates an OpenAI-based invoice parser from a provider config.
func NewParser(cfg *config.ParserProviderConfig) *Parser {
	return newParser(cfg, "")
}

// NewParserWithEndpoint creates a parser pointing at a custom API base URL (for testing).
func NewParserWithEndpoint(cfg *config.ParserProviderConfig, baseURL string) *Parser {
	return newParser(cfg, baseURL)
}

func newParser(cfg *config.ParserProviderConfig, baseURL string) *Parser {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Parser{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (p *Parser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	switch input.ContentType {
	case "image/jpeg", "image/png":
	default:
		return nil, fmt.Errorf("unsupported content type for parsing: %s", input.ContentType)
	}

	prompt := parser.BuildInvoicePrompt()
	dataURL := fmt.Sprintf("data:%s;base64,%s", input.ContentType, base64.StdEncoding.EncodeToString(input.FileBytes))

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: p.model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{Type: goopenai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: goopenai.ChatMessagePartTypeImageURL,
						ImageURL: &goopenai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: goopenai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}
	choice := resp.Choices[0]
	if choice.FinishReason == goopenai.FinishReasonLength {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	data, err := parser.ExtractJSONObject(choice.Message.Content)
	if err != nil {
		return nil, err
	}

	return &port.ParseOutput{
		StructuredData: data,
		ModelUsed:      p.model,
		PromptUsed:     prompt,
	}, nil
}

func classifyError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return parser.NewRateLimitError("openai", err, 0)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return parser.NewRateLimitError("openai", err, 0)
	}
	return fmt.Errorf("calling openai API: %w", err)
}
