package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/genai"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/interfaces"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
	// ProviderOpenAI uses an OpenAI-compatible chat completions API
	ProviderOpenAI ProviderType = "openai"
)

// ContentRequest represents a provider-agnostic content generation request
type ContentRequest struct {
	Messages          []interfaces.Message
	Model             string
	Temperature       float32
	MaxTokens         int
	SystemInstruction string
}

// ContentResponse represents a provider-agnostic content generation response
type ContentResponse struct {
	Text     string
	Provider ProviderType
	Model    string
}

// ProviderFactory routes content requests to the provider named by the model
// string, creating each provider client on first use.
type ProviderFactory struct {
	geminiConfig common.GeminiConfig
	claudeConfig common.ClaudeConfig
	openAIConfig common.OpenAIConfig
	llmConfig    common.LLMConfig
	retry        *RetryConfig
	logger       arbor.ILogger

	geminiClient *genai.Client
	claudeClient *anthropic.Client
	openAIModels map[string]llms.Model
}

// NewProviderFactory creates a provider factory from the LLM sections of the config
func NewProviderFactory(config *common.Config, logger arbor.ILogger) *ProviderFactory {
	return &ProviderFactory{
		geminiConfig: config.Gemini,
		claudeConfig: config.Claude,
		openAIConfig: config.OpenAI,
		llmConfig:    config.LLM,
		retry:        NewDefaultRetryConfig(),
		logger:       logger,
		openAIModels: make(map[string]llms.Model),
	}
}

// SetRetryConfig replaces the retry budget
func (f *ProviderFactory) SetRetryConfig(cfg *RetryConfig) {
	f.retry = cfg
}

// DetectProvider determines the provider type from a model string.
// Model strings can be:
// - "claude-sonnet-4-20250514" or "claude/claude-sonnet-4-20250514" -> Claude
// - "gemini-2.5-flash" or "gemini/gemini-2.5-flash" -> Gemini
// - "gpt-4o" or "openai/gpt-4o" -> OpenAI
// - Empty string -> the configured default provider
func (f *ProviderFactory) DetectProvider(model string) ProviderType {
	if model == "" {
		return ProviderType(f.llmConfig.DefaultProvider)
	}

	model = strings.ToLower(model)

	switch {
	case strings.HasPrefix(model, "claude/"), strings.HasPrefix(model, "anthropic/"), strings.HasPrefix(model, "claude-"):
		return ProviderClaude
	case strings.HasPrefix(model, "gemini/"), strings.HasPrefix(model, "google/"), strings.HasPrefix(model, "gemini-"):
		return ProviderGemini
	case strings.HasPrefix(model, "openai/"), strings.HasPrefix(model, "gpt-"),
		strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"), strings.HasPrefix(model, "o4"):
		return ProviderOpenAI
	}

	return ProviderType(f.llmConfig.DefaultProvider)
}

// NormalizeModel removes provider prefix from model name if present
func (f *ProviderFactory) NormalizeModel(model string) string {
	prefixes := []string{"claude/", "anthropic/", "gemini/", "google/", "openai/"}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// GetDefaultModel returns the default model for a provider
func (f *ProviderFactory) GetDefaultModel(provider ProviderType) string {
	switch provider {
	case ProviderClaude:
		return f.claudeConfig.Model
	case ProviderOpenAI:
		return f.openAIConfig.Model
	default:
		return f.geminiConfig.Model
	}
}

// GenerateContent generates content using the provider selected by request.Model
func (f *ProviderFactory) GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error) {
	provider := f.DetectProvider(request.Model)
	model := f.NormalizeModel(request.Model)
	if model == "" {
		model = f.GetDefaultModel(provider)
	}

	f.logger.Debug().
		Str("provider", string(provider)).
		Str("model", model).
		Int("message_count", len(request.Messages)).
		Msg("Generating content with provider")

	if timeout, err := time.ParseDuration(f.llmConfig.Timeout); err == nil && timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	switch provider {
	case ProviderClaude:
		return f.generateWithClaude(ctx, request, model)
	case ProviderOpenAI:
		return f.generateWithOpenAI(ctx, request, model)
	default:
		return f.generateWithGemini(ctx, request, model)
	}
}

func (f *ProviderFactory) getClaudeClient() (*anthropic.Client, error) {
	if f.claudeClient != nil {
		return f.claudeClient, nil
	}
	if f.claudeConfig.APIKey == "" {
		return nil, common.Errorf(common.KindConfiguration, "llm.claude", "Anthropic API key is not set (ANTHROPIC_API_KEY or [claude] api_key)")
	}

	client := anthropic.NewClient(option.WithAPIKey(f.claudeConfig.APIKey))
	f.claudeClient = &client
	return f.claudeClient, nil
}

func (f *ProviderFactory) getGeminiClient(ctx context.Context) (*genai.Client, error) {
	if f.geminiClient != nil {
		return f.geminiClient, nil
	}
	if f.geminiConfig.APIKey == "" {
		return nil, common.Errorf(common.KindConfiguration, "llm.gemini", "Gemini API key is not set (GEMINI_API_KEY or [gemini] api_key)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  f.geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, common.Errorf(common.KindConfiguration, "llm.gemini", "failed to create Gemini client: %w", err)
	}

	f.geminiClient = client
	return client, nil
}

func (f *ProviderFactory) getOpenAIModel(model string) (llms.Model, error) {
	if m, ok := f.openAIModels[model]; ok {
		return m, nil
	}
	if f.openAIConfig.APIKey == "" {
		return nil, common.Errorf(common.KindConfiguration, "llm.openai", "OpenAI API key is not set (OPENAI_API_KEY or [openai] api_key)")
	}

	opts := []openai.Option{
		openai.WithToken(f.openAIConfig.APIKey),
		openai.WithModel(model),
	}
	if f.openAIConfig.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(f.openAIConfig.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, common.Errorf(common.KindConfiguration, "llm.openai", "failed to create OpenAI client: %w", err)
	}

	f.openAIModels[model] = client
	return client, nil
}

func (f *ProviderFactory) generateWithClaude(ctx context.Context, request *ContentRequest, model string) (*ContentResponse, error) {
	client, err := f.getClaudeClient()
	if err != nil {
		return nil, err
	}

	claudeMessages, systemText, err := convertMessagesToClaude(request.Messages)
	if err != nil {
		return nil, common.Errorf(common.KindValidation, "llm.claude", "failed to convert messages: %w", err)
	}
	if request.SystemInstruction != "" {
		systemText = request.SystemInstruction
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = f.claudeConfig.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Messages:    claudeMessages,
		Temperature: anthropic.Float(float64(request.Temperature)),
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemText}}
	}

	resp, err := withRetry(ctx, f.retry, f.logger, ProviderClaude, func() (*anthropic.Message, error) {
		return client.Messages.New(ctx, params)
	})
	if err != nil {
		return nil, common.Errorf(common.KindTransport, "llm.claude", "Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, common.Errorf(common.KindTransport, "llm.claude", "empty response from Claude API")
	}

	return &ContentResponse{Text: text.String(), Provider: ProviderClaude, Model: model}, nil
}

func (f *ProviderFactory) generateWithGemini(ctx context.Context, request *ContentRequest, model string) (*ContentResponse, error) {
	client, err := f.getGeminiClient(ctx)
	if err != nil {
		return nil, err
	}

	contents, systemText, err := convertMessagesToGemini(request.Messages)
	if err != nil {
		return nil, common.Errorf(common.KindValidation, "llm.gemini", "failed to convert messages: %w", err)
	}
	if request.SystemInstruction != "" {
		systemText = request.SystemInstruction
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(request.Temperature),
	}
	if request.MaxTokens > 0 {
		config.MaxOutputTokens = int32(request.MaxTokens)
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	resp, err := withRetry(ctx, f.retry, f.logger, ProviderGemini, func() (*genai.GenerateContentResponse, error) {
		return client.Models.GenerateContent(ctx, model, contents, config)
	})
	if err != nil {
		return nil, common.Errorf(common.KindTransport, "llm.gemini", "Gemini API call failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Text() == "" {
		return nil, common.Errorf(common.KindTransport, "llm.gemini", "empty response from Gemini API")
	}

	return &ContentResponse{Text: resp.Text(), Provider: ProviderGemini, Model: model}, nil
}

func (f *ProviderFactory) generateWithOpenAI(ctx context.Context, request *ContentRequest, model string) (*ContentResponse, error) {
	client, err := f.getOpenAIModel(model)
	if err != nil {
		return nil, err
	}

	content, err := convertMessagesToLangchain(request.Messages, request.SystemInstruction)
	if err != nil {
		return nil, common.Errorf(common.KindValidation, "llm.openai", "failed to convert messages: %w", err)
	}

	opts := []llms.CallOption{llms.WithTemperature(float64(request.Temperature))}
	if request.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(request.MaxTokens))
	}

	resp, err := withRetry(ctx, f.retry, f.logger, ProviderOpenAI, func() (*llms.ContentResponse, error) {
		return client.GenerateContent(ctx, content, opts...)
	})
	if err != nil {
		return nil, common.Errorf(common.KindTransport, "llm.openai", "OpenAI API call failed: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return nil, common.Errorf(common.KindTransport, "llm.openai", "empty response from OpenAI API")
	}

	return &ContentResponse{Text: resp.Choices[0].Content, Provider: ProviderOpenAI, Model: model}, nil
}

// Close releases provider clients
func (f *ProviderFactory) Close() error {
	f.geminiClient = nil
	f.claudeClient = nil
	f.openAIModels = make(map[string]llms.Model)
	return nil
}

// String describes the default provider and model, for logs
func (f *ProviderFactory) String() string {
	provider := ProviderType(f.llmConfig.DefaultProvider)
	return fmt.Sprintf("%s/%s", provider, f.GetDefaultModel(provider))
}
