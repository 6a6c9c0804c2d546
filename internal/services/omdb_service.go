package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avoronin/kinogrid/internal/models"
)

// Catalog is the outbound movie catalog contract. Search returns zero
// summaries (not an error) when the catalog knows nothing for the keyword;
// Detail returns nil when the id is unknown. Transport failures surface as
// errors and are absorbed by the caller.
type Catalog interface {
	Search(ctx context.Context, keyword string) ([]models.Summary, error)
	Detail(ctx context.Context, imdbID string) (*models.Movie, error)
}

// OMDBService handles interactions with the OMDb API
type OMDBService struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// OMDBConfig holds OMDb service configuration
type OMDBConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewOMDBService creates a new OMDb service
func NewOMDBService(cfg OMDBConfig) *OMDBService {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &OMDBService{
		client: &http.Client{
			Timeout: timeout,
		},
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
	}
}

// omdbSearchResponse is the payload of a search-by-keyword call. OMDb signals
// "no results" in-band: Response is "False" and Error holds the reason.
type omdbSearchResponse struct {
	Search       []models.Summary `json:"Search"`
	TotalResults string           `json:"totalResults"`
	Response     string           `json:"Response"`
	Error        string           `json:"Error"`
}

// omdbDetailResponse is the payload of a fetch-by-id call.
type omdbDetailResponse struct {
	models.Movie
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// doRequest performs an HTTP request to the OMDb API
func (s *OMDBService) doRequest(ctx context.Context, params map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Add query parameters
	q := req.URL.Query()
	q.Add("apikey", s.apiKey)
	for key, value := range params {
		q.Add(key, value)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OMDb API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// Search looks up movies by keyword. An upstream "Movie not found!" response
// is zero results, not an error.
func (s *OMDBService) Search(ctx context.Context, keyword string) ([]models.Summary, error) {
	body, err := s.doRequest(ctx, map[string]string{"s": keyword})
	if err != nil {
		return nil, err
	}

	var response omdbSearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search results: %w", err)
	}

	if response.Response == "False" {
		return nil, nil
	}

	return response.Search, nil
}

// Detail retrieves the full record for an imdbID. An unknown id returns
// (nil, nil).
func (s *OMDBService) Detail(ctx context.Context, imdbID string) (*models.Movie, error) {
	body, err := s.doRequest(ctx, map[string]string{"i": imdbID})
	if err != nil {
		return nil, err
	}

	var response omdbDetailResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal movie detail: %w", err)
	}

	if response.Response == "False" || response.ImdbID == "" {
		return nil, nil
	}

	movie := response.Movie
	return &movie, nil
}
