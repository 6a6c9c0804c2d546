package services

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avoronin/kinogrid/internal/models"
)

// DefaultKeywords seeds the collection when no keyword list is configured.
// Broad genre and title words cast a wide net over the catalog.
var DefaultKeywords = []string{
	"avengers", "star", "war", "love", "dark", "action", "drama", "thriller",
	"comedy", "horror", "breaking", "game", "walking", "friends", "office",
	"adventure", "fantasy", "scifi", "crime", "mystery", "romance",
	"western", "documentary", "animation", "family", "biography", "history",
	"music", "sport", "musical", "news",
}

// ErrCatalogUnavailable is returned when every keyword search failed, i.e.
// the catalog could not be reached at all. Partial failure is absorbed and
// simply yields fewer items.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// AggregateConfig tunes the aggregation pipeline. Batches bound the number of
// concurrent outbound calls; BatchPause separates consecutive batches to stay
// under the catalog's rate limit.
type AggregateConfig struct {
	SearchBatchSize int
	DetailBatchSize int
	BatchPause      time.Duration
	// MaxDetails caps how many deduplicated results get a detail fetch.
	// Zero means no cap.
	MaxDetails int
	// KeepPartial keeps a summary-only record when its detail fetch fails.
	// When false the item is dropped instead.
	KeepPartial bool
}

// AggregateService turns a list of keywords into a deduplicated,
// detail-enriched movie collection
type AggregateService struct {
	catalog Catalog
	cfg     AggregateConfig
	logger  *log.Logger
}

// NewAggregateService creates a new AggregateService
func NewAggregateService(catalog Catalog, cfg AggregateConfig, logger *log.Logger) *AggregateService {
	if cfg.SearchBatchSize < 1 {
		cfg.SearchBatchSize = 10
	}
	if cfg.DetailBatchSize < 1 {
		cfg.DetailBatchSize = 20
	}
	return &AggregateService{
		catalog: catalog,
		cfg:     cfg,
		logger:  logger,
	}
}

// Aggregate searches every keyword, deduplicates the hits by imdbID
// (first occurrence in keyword order wins) and enriches each survivor with
// its detail record. The returned collection keeps discovery order.
func (s *AggregateService) Aggregate(ctx context.Context, keywords []string) ([]models.Movie, error) {
	summaries, failed, err := s.searchAll(ctx, keywords)
	if err != nil {
		return nil, err
	}
	if len(keywords) > 0 && failed == len(keywords) {
		return nil, ErrCatalogUnavailable
	}

	deduped := dedupeSummaries(summaries)
	if s.cfg.MaxDetails > 0 && len(deduped) > s.cfg.MaxDetails {
		deduped = deduped[:s.cfg.MaxDetails]
	}

	return s.enrich(ctx, deduped)
}

// searchAll runs the keyword searches in paced concurrent batches and
// concatenates the results. The second return value counts failed keywords.
func (s *AggregateService) searchAll(ctx context.Context, keywords []string) ([]models.Summary, int, error) {
	var (
		all    []models.Summary
		failed int
	)

	batches := (len(keywords) + s.cfg.SearchBatchSize - 1) / s.cfg.SearchBatchSize
	for i := 0; i < len(keywords); i += s.cfg.SearchBatchSize {
		batch := keywords[i:min(i+s.cfg.SearchBatchSize, len(keywords))]
		s.logger.Printf("Searching batch %d/%d (%d keywords)", i/s.cfg.SearchBatchSize+1, batches, len(batch))

		// Results land in per-keyword slots; the merge happens only after
		// the whole batch has settled, so completion order is irrelevant.
		results := make([][]models.Summary, len(batch))
		errored := make([]bool, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		for j, keyword := range batch {
			g.Go(func() error {
				found, err := s.catalog.Search(gctx, keyword)
				if err != nil {
					s.logger.Printf("Search %q failed: %v", keyword, err)
					errored[j] = true
					return nil
				}
				results[j] = found
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, 0, err
		}

		for j, found := range results {
			if errored[j] {
				failed++
				continue
			}
			all = append(all, found...)
		}

		if err := s.pause(ctx, i+s.cfg.SearchBatchSize < len(keywords)); err != nil {
			return nil, 0, err
		}
	}

	return all, failed, nil
}

// enrich fetches details for the deduplicated summaries in paced concurrent
// batches and merges each detail over its summary. A failed or absent detail
// degrades a single item and never blocks its siblings.
func (s *AggregateService) enrich(ctx context.Context, summaries []models.Summary) ([]models.Movie, error) {
	movies := make([]models.Movie, 0, len(summaries))

	for i := 0; i < len(summaries); i += s.cfg.DetailBatchSize {
		batch := summaries[i:min(i+s.cfg.DetailBatchSize, len(summaries))]
		s.logger.Printf("Fetching details %d-%d/%d", i+1, i+len(batch), len(summaries))

		details := make([]*models.Movie, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		for j, summary := range batch {
			g.Go(func() error {
				detail, err := s.catalog.Detail(gctx, summary.ImdbID)
				if err != nil {
					s.logger.Printf("Detail fetch for %s failed: %v", summary.ImdbID, err)
					return nil
				}
				details[j] = detail
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for j, summary := range batch {
			if details[j] == nil {
				if s.cfg.KeepPartial {
					movies = append(movies, models.FromSummary(summary))
				}
				continue
			}
			movies = append(movies, models.FromSummary(summary).Merge(*details[j]))
		}

		if err := s.pause(ctx, i+s.cfg.DetailBatchSize < len(summaries)); err != nil {
			return nil, err
		}
	}

	return movies, nil
}

// pause sleeps between batches unless this was the last one.
func (s *AggregateService) pause(ctx context.Context, more bool) error {
	if !more || s.cfg.BatchPause <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.cfg.BatchPause):
		return nil
	}
}

// dedupeSummaries keeps the first occurrence of every imdbID, preserving
// discovery order.
func dedupeSummaries(summaries []models.Summary) []models.Summary {
	seen := make(map[string]bool, len(summaries))
	out := make([]models.Summary, 0, len(summaries))
	for _, s := range summaries {
		if s.ImdbID == "" || seen[s.ImdbID] {
			continue
		}
		seen[s.ImdbID] = true
		out = append(out, s)
	}
	return out
}
