package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/epx/internal/models"
	"github.com/desertthunder/epx/internal/shared"
	"github.com/go-resty/resty/v2"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"
	episodesPath   = "/me/episodes"

	// PageSize is the fixed limit used while paginating saved episodes.
	PageSize = 50
	// MaxIDsPerRequest is the most ids the delete endpoint accepts at once.
	MaxIDsPerRequest = 50
)

// EpisodeOptions configures an [EpisodeService]. BaseURL defaults to the Spotify Web API.
type EpisodeOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// EpisodeService reads and removes the user's saved episodes over [resty].
type EpisodeService struct {
	client *resty.Client
	logger *log.Logger
}

// NewEpisodeService creates an [EpisodeService].
func NewEpisodeService(opts EpisodeOptions) *EpisodeService {
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	var client *resty.Client
	if opts.HTTPClient != nil {
		client = resty.NewWithClient(opts.HTTPClient)
	} else {
		client = resty.New()
	}
	client.SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/")).
		SetHeader("Accept", "application/json")

	return &EpisodeService{client: client, logger: opts.Logger}
}

// fetchPage performs one GET against the saved-episodes collection. Empty params
// leave paging to the server defaults.
func (s *EpisodeService) fetchPage(ctx context.Context, accessToken string, params map[string]string) (*models.EpisodePage, error) {
	var page models.EpisodePage

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(params).
		SetResult(&page).
		Get(episodesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: list saved episodes: %v", shared.ErrAPIRequest, err)
	}
	if !resp.IsSuccess() {
		return nil, shared.NewAPIError(resp.StatusCode(), resp.String(), shared.ErrAPIRequest)
	}
	return &page, nil
}

// SavedEpisodes returns the first page of saved episodes.
func (s *EpisodeService) SavedEpisodes(ctx context.Context, accessToken string) (*models.EpisodePage, error) {
	return s.fetchPage(ctx, accessToken, nil)
}

// AllSavedEpisodes pages through the collection with limit [PageSize] until the
// server reports no next page. Any failed page aborts with no partial result.
func (s *EpisodeService) AllSavedEpisodes(ctx context.Context, accessToken string) ([]models.Episode, error) {
	var episodes []models.Episode
	offset := 0

	for {
		page, err := s.fetchPage(ctx, accessToken, map[string]string{
			"limit":  strconv.Itoa(PageSize),
			"offset": strconv.Itoa(offset),
		})
		if err != nil {
			return nil, err
		}

		episodes = append(episodes, page.Episodes()...)
		s.logger.Debug("fetched saved episodes page", "offset", offset, "items", len(page.Items), "total", page.Total)

		if page.Next == nil {
			break
		}
		offset += PageSize
	}

	return episodes, nil
}

// AllSavedEpisodeIDs returns the ids of every saved episode, in server order.
func (s *EpisodeService) AllSavedEpisodeIDs(ctx context.Context, accessToken string) ([]string, error) {
	episodes, err := s.AllSavedEpisodes(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return models.IDs(episodes), nil
}

// RemoveEpisodes deletes ids from the library in a single request. It reports
// true on 200 or 204; any other outcome is logged and reported as false.
func (s *EpisodeService) RemoveEpisodes(ctx context.Context, accessToken string, ids []string) bool {
	if len(ids) == 0 {
		return true
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("ids", strings.Join(ids, ",")).
		Delete(episodesPath)
	if err != nil {
		s.logger.Error("remove episodes request failed", "count", len(ids), "error", err)
		return false
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusNoContent:
		return true
	default:
		s.logger.Error("failed to remove episodes", "status", resp.StatusCode(), "body", strings.TrimSpace(resp.String()))
		return false
	}
}
