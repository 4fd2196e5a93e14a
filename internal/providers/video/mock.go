package video

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
)

// MockProvider returns deterministic placeholder videos derived from the
// query. Used when no YouTube API key is configured.
type MockProvider struct {
	logger arbor.ILogger
}

// NewMockProvider creates a mock video search provider.
func NewMockProvider(logger arbor.ILogger) *MockProvider {
	return &MockProvider{logger: logger}
}

// Search synthesizes up to maxResults deterministic video resources.
func (p *MockProvider) Search(ctx context.Context, query string, maxResults int) ([]models.VideoResource, error) {
	if maxResults <= 0 || maxResults > models.MaxResourcesPerMod {
		maxResults = models.MaxResourcesPerMod
	}

	slug := strings.ToLower(strings.ReplaceAll(query, " ", "-"))
	resources := make([]models.VideoResource, 0, maxResults)
	for i := 0; i < maxResults; i++ {
		resources = append(resources, models.VideoResource{
			Title:   fmt.Sprintf("%s - Tutorial %d", query, i+1),
			URL:     fmt.Sprintf("https://www.youtube.com/results?search_query=%s", url.QueryEscape(fmt.Sprintf("%s tutorial %d", slug, i+1))),
			Channel: "CourseCraft Samples",
		})
	}

	p.logger.Debug().Str("query", query).Int("results", len(resources)).Msg("Mock video provider returned results")
	return resources, nil
}

func (p *MockProvider) Mode() interfaces.ProviderMode {
	return interfaces.ProviderModeMock
}
