package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
)

// GeminiProvider implements the ContentProvider interface using the Google
// Gemini API.
type GeminiProvider struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
}

// NewGeminiProvider creates a new Gemini content provider instance.
func NewGeminiProvider(config *common.GeminiConfig, logger arbor.ILogger) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for Gemini provider (set via GEMINI_API_KEY, COURSECRAFT_GEMINI_API_KEY, or gemini.api_key in config)")
	}

	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	provider := &GeminiProvider{
		config:  config,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Msg("Gemini content provider initialized")

	return provider, nil
}

// GenerateSkeleton requests exactly five modules for the course.
func (p *GeminiProvider) GenerateSkeleton(ctx context.Context, topic string, level models.CourseLevel, timePerDay int) ([]models.ModuleDraft, error) {
	text, err := p.complete(ctx, skeletonPrompt(topic, level, timePerDay))
	if err != nil {
		return nil, err
	}
	return parseSkeleton(text)
}

// GenerateLessons requests 3-10 lesson steps for one module.
func (p *GeminiProvider) GenerateLessons(ctx context.Context, topic string, module models.Module, timePerDay int) ([]models.LessonDraft, error) {
	text, err := p.complete(ctx, lessonsPrompt(topic, module, timePerDay))
	if err != nil {
		return nil, err
	}
	return parseLessons(text)
}

// GenerateQuiz requests one quiz with 5-15 questions for one module.
func (p *GeminiProvider) GenerateQuiz(ctx context.Context, topic string, module models.Module) (models.QuizDraft, error) {
	text, err := p.complete(ctx, quizPrompt(topic, module))
	if err != nil {
		return models.QuizDraft{}, err
	}
	return parseQuiz(text)
}

func (p *GeminiProvider) Mode() interfaces.ProviderMode {
	return interfaces.ProviderModeCloud
}

// Close releases resources. The genai client needs no explicit cleanup.
func (p *GeminiProvider) Close() error {
	p.logger.Debug().Msg("Closing Gemini content provider")
	p.client = nil
	return nil
}

// complete sends one prompt and returns the response text.
func (p *GeminiProvider) complete(ctx context.Context, prompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	startTime := time.Now()

	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(p.config.Temperature),
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := p.client.Models.GenerateContent(timeoutCtx, p.config.Model, contents, config)
	if err != nil {
		p.logger.Error().Err(err).Msg("Gemini API call failed")
		return "", models.WrapKindError(models.ErrorKindContentProvider, "Gemini API call failed", err)
	}

	// Iterate candidates until non-empty text is found
	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", models.NewKindError(models.ErrorKindContentProvider, "no response generated from Gemini API")
	}

	p.logger.Debug().
		Int("prompt_length", len(prompt)).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini completion finished")

	return response.String(), nil
}
