package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
)

// ClaudeProvider implements the ContentProvider interface using the
// Anthropic Claude API.
type ClaudeProvider struct {
	config    *common.ClaudeConfig
	logger    arbor.ILogger
	client    *anthropic.Client
	timeout   time.Duration
	maxTokens int
}

// NewClaudeProvider creates a new Claude content provider instance.
func NewClaudeProvider(config *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required for Claude provider (set via ANTHROPIC_API_KEY, COURSECRAFT_CLAUDE_API_KEY, or claude.api_key in config)")
	}

	if config.Model == "" {
		config.Model = "claude-sonnet-4-20250514"
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
	)

	provider := &ClaudeProvider{
		config:    config,
		logger:    logger,
		client:    &client,
		timeout:   timeout,
		maxTokens: maxTokens,
	}

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Int("max_tokens", maxTokens).
		Msg("Claude content provider initialized")

	return provider, nil
}

// GenerateSkeleton requests exactly five modules for the course.
func (p *ClaudeProvider) GenerateSkeleton(ctx context.Context, topic string, level models.CourseLevel, timePerDay int) ([]models.ModuleDraft, error) {
	text, err := p.complete(ctx, skeletonPrompt(topic, level, timePerDay))
	if err != nil {
		return nil, err
	}
	return parseSkeleton(text)
}

// GenerateLessons requests 3-10 lesson steps for one module.
func (p *ClaudeProvider) GenerateLessons(ctx context.Context, topic string, module models.Module, timePerDay int) ([]models.LessonDraft, error) {
	text, err := p.complete(ctx, lessonsPrompt(topic, module, timePerDay))
	if err != nil {
		return nil, err
	}
	return parseLessons(text)
}

// GenerateQuiz requests one quiz with 5-15 questions for one module.
func (p *ClaudeProvider) GenerateQuiz(ctx context.Context, topic string, module models.Module) (models.QuizDraft, error) {
	text, err := p.complete(ctx, quizPrompt(topic, module))
	if err != nil {
		return models.QuizDraft{}, err
	}
	return parseQuiz(text)
}

func (p *ClaudeProvider) Mode() interfaces.ProviderMode {
	return interfaces.ProviderModeCloud
}

// Close releases resources. The Claude client needs no explicit cleanup.
func (p *ClaudeProvider) Close() error {
	p.logger.Debug().Msg("Closing Claude content provider")
	p.client = nil
	return nil
}

// complete sends one prompt and returns the response text.
func (p *ClaudeProvider) complete(ctx context.Context, prompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	startTime := time.Now()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.config.Model),
		MaxTokens: int64(p.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
	}
	if p.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(p.config.Temperature))
	}

	resp, err := p.client.Messages.New(timeoutCtx, params)
	if err != nil {
		p.logger.Error().Err(err).Msg("Claude API call failed")
		return "", models.WrapKindError(models.ErrorKindContentProvider, "Claude API call failed", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", models.NewKindError(models.ErrorKindContentProvider, "no response generated from Claude API")
	}

	p.logger.Debug().
		Int("prompt_length", len(prompt)).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("Claude completion finished")

	return response.String(), nil
}
