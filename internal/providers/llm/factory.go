package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/interfaces"
)

// NewContentProvider selects the primary content provider based on
// configuration. The configured default provider wins when its key is
// present; otherwise any provider with a key is used; with no keys at all
// the mock provider runs the whole pipeline locally.
func NewContentProvider(config *common.Config, logger arbor.ILogger) (interfaces.ContentProvider, error) {
	hasClaude := config.Claude.APIKey != ""
	hasGemini := config.Gemini.APIKey != ""

	selected := config.LLM.DefaultProvider
	switch {
	case selected == common.LLMProviderClaude && !hasClaude && hasGemini:
		logger.Warn().Msg("Claude is the default provider but no Anthropic key is configured, using Gemini")
		selected = common.LLMProviderGemini
	case selected == common.LLMProviderGemini && !hasGemini && hasClaude:
		logger.Warn().Msg("Gemini is the default provider but no Google key is configured, using Claude")
		selected = common.LLMProviderClaude
	}

	if !hasClaude && !hasGemini {
		logger.Warn().Msg("No provider API key configured, course content will be generated by the mock provider")
		return NewMockProvider(logger), nil
	}

	switch selected {
	case common.LLMProviderClaude:
		provider, err := NewClaudeProvider(&config.Claude, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Claude provider: %w", err)
		}
		logger.Info().Str("provider", "claude").Str("model", config.Claude.Model).Msg("Content provider initialized")
		return provider, nil
	case common.LLMProviderGemini:
		provider, err := NewGeminiProvider(&config.Gemini, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		logger.Info().Str("provider", "gemini").Str("model", config.Gemini.Model).Msg("Content provider initialized")
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", selected)
	}
}
