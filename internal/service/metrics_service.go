package service

import (
	"context"
	"fmt"

	"place-lookup/internal/models"
)

// PlaceCounter interface for dependency injection
type PlaceCounter interface {
	CountByClass(ctx context.Context) (map[string]int, error)
}

// CompletionStatsSource reports the counters of the completion service.
type CompletionStatsSource interface {
	Stats() CompletionStats
	Options() CompletionOptions
}

// MetricsService assembles the backend metrics.
type MetricsService struct {
	counter    PlaceCounter
	completion CompletionStatsSource
}

// NewMetricsService creates a new metrics service
func NewMetricsService(counter PlaceCounter, completion CompletionStatsSource) *MetricsService {
	return &MetricsService{counter: counter, completion: completion}
}

// Metrics returns place counts, completion settings and counters.
func (s *MetricsService) Metrics(ctx context.Context) (*models.Metrics, error) {
	counts, err := s.counter.CountByClass(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to count places: %w", err)
	}

	opts := s.completion.Options()
	stats := s.completion.Stats()
	return &models.Metrics{
		PageSize:         opts.PageSize,
		CandidateMax:     opts.CandidateMax,
		LevMinimum:       opts.LevMinimum,
		DistanceCut:      opts.DistanceCut,
		CacheTTL:         opts.CacheTTL.String(),
		StreetCount:      counts[models.ClassStreet],
		LocationCount:    counts[models.ClassLocation],
		HouseNumberCount: counts[models.ClassHouseNumber],
		QueryCount:       stats.QueryCount,
		AvgLookupTime:    stats.AvgLookupTime.String(),
		Cache:            stats.Cache,
	}, nil
}
