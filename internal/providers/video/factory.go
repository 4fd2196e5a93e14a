package video

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/interfaces"
)

// NewVideoSearchProvider returns the YouTube provider when an API key is
// configured, otherwise the mock provider.
func NewVideoSearchProvider(config *common.Config, logger arbor.ILogger) (interfaces.VideoSearchProvider, error) {
	if config.YouTube.APIKey == "" {
		logger.Warn().Msg("No YouTube API key configured, video resources will be generated by the mock provider")
		return NewMockProvider(logger), nil
	}

	provider, err := NewYouTubeProvider(&config.YouTube, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube provider: %w", err)
	}
	logger.Info().Msg("YouTube video search provider initialized")
	return provider, nil
}
