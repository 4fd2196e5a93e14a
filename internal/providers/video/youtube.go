package video

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
)

const youtubeSearchURL = "https://www.googleapis.com/youtube/v3/search"

// youtubeSearchResponse mirrors the YouTube Data API v3 search.list response.
type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// YouTubeProvider searches the YouTube Data API v3 for supplementary videos.
type YouTubeProvider struct {
	config     *common.YouTubeConfig
	logger     arbor.ILogger
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewYouTubeProvider creates a new YouTube video search provider.
func NewYouTubeProvider(config *common.YouTubeConfig, logger arbor.ILogger) (*YouTubeProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	timeout, err := time.ParseDuration(config.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid request_timeout '%s': %w", config.RequestTimeout, err)
	}

	interval, err := time.ParseDuration(config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid rate_limit '%s': %w", config.RateLimit, err)
	}

	return &YouTubeProvider{
		config: config,
		logger: logger,
		apiKey: config.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}, nil
}

// Search performs a YouTube search and returns up to maxResults videos.
func (p *YouTubeProvider) Search(ctx context.Context, query string, maxResults int) ([]models.VideoResource, error) {
	if maxResults <= 0 || maxResults > models.MaxResourcesPerMod {
		maxResults = models.MaxResourcesPerMod
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, models.WrapKindError(models.ErrorKindVideoProvider, "rate limit wait interrupted", err)
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	params.Set("videoEmbeddable", "true")
	params.Set("key", p.apiKey)

	fullURL := fmt.Sprintf("%s?%s", youtubeSearchURL, params.Encode())

	// Redact API key in logs
	logURL := fmt.Sprintf("%s?q=%s&maxResults=%d&key=***REDACTED***", youtubeSearchURL, url.QueryEscape(query), maxResults)
	p.logger.Debug().Str("url", logURL).Msg("Calling YouTube Data API search")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, models.WrapKindError(models.ErrorKindVideoProvider, "failed to build YouTube request", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, models.WrapKindError(models.ErrorKindVideoProvider, "failed to call YouTube Data API", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, models.NewKindError(models.ErrorKindVideoProvider,
			fmt.Sprintf("YouTube Data API returned status %d: %s", resp.StatusCode, string(body)))
	}

	var apiResp youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, models.WrapKindError(models.ErrorKindVideoProvider, "failed to decode YouTube response", err)
	}

	if apiResp.Error != nil {
		return nil, models.NewKindError(models.ErrorKindVideoProvider,
			fmt.Sprintf("YouTube API error %d: %s", apiResp.Error.Code, apiResp.Error.Message))
	}

	resources := make([]models.VideoResource, 0, len(apiResp.Items))
	for _, item := range apiResp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		resources = append(resources, models.VideoResource{
			Title:        item.Snippet.Title,
			URL:          "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			Channel:      item.Snippet.ChannelTitle,
			ThumbnailURL: item.Snippet.Thumbnails.Medium.URL,
		})
		if len(resources) >= maxResults {
			break
		}
	}

	p.logger.Info().
		Str("query", query).
		Int("results_count", len(resources)).
		Msg("YouTube search completed")

	return resources, nil
}

func (p *YouTubeProvider) Mode() interfaces.ProviderMode {
	return interfaces.ProviderModeCloud
}
