package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"place-lookup/internal/models"

	"github.com/agnivade/levenshtein"
	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"
)

// candidatePrefixLength is the number of leading letters candidates must share
// with the input.
const candidatePrefixLength = 3

// CompletionRepository interface for dependency injection
type CompletionRepository interface {
	SearchCandidates(ctx context.Context, prefix string, limit int) ([]models.Place, error)
	IncrementRelevance(ctx context.Context, ids []int64) error
}

// CompletionOptions tune ranking and caching.
type CompletionOptions struct {
	// PageSize is the number of completions returned, not counting
	// additional exact matches.
	PageSize int
	// CandidateMax bounds the number of places ranked per query.
	CandidateMax int
	// LevMinimum is the input length from which a typo in the leading
	// letters is tolerated.
	LevMinimum int
	// DistanceCut is the delta in distances ignored in favor of relevance.
	DistanceCut int
	CacheTTL    time.Duration
}

// CompletionService ranks place completions for a typed text.
type CompletionService struct {
	repo  CompletionRepository
	cache *ristretto.Cache
	opts  CompletionOptions

	queries     atomic.Uint64
	lookupNanos atomic.Int64
}

// CompletionStats are the counters of a CompletionService.
type CompletionStats struct {
	QueryCount    uint64
	AvgLookupTime time.Duration
	Cache         models.CacheMetrics
}

// NewCompletionService creates a new completion service
func NewCompletionService(repo CompletionRepository, opts CompletionOptions) (*CompletionService, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,     // number of keys to track frequency of
		MaxCost:     1 << 26, // maximum cost of cache (64MB)
		BufferItems: 64,      // number of keys per Get buffer
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to initialize cache: %w", err)
	}
	return &CompletionService{repo: repo, cache: cache, opts: opts}, nil
}

// Close releases the cache.
func (s *CompletionService) Close() {
	s.cache.Close()
}

// Complete returns ranked suggestions for text. Exact matches beyond the page
// size are always included.
func (s *CompletionService) Complete(ctx context.Context, text string) ([]models.Suggestion, error) {
	defer s.observe(time.Now())

	simpleInput := SimplifyName(text)
	if simpleInput == "" {
		return []models.Suggestion{}, nil
	}

	if cached, hit := s.cache.Get(simpleInput); hit {
		if results, ok := cached.([]models.Suggestion); ok {
			s.bumpRelevance(results, simpleInput)
			return results, nil
		}
	}

	candidates, err := s.repo.SearchCandidates(ctx, prefixOf(simpleInput, candidatePrefixLength), s.opts.CandidateMax)
	if err != nil {
		return nil, fmt.Errorf("service: failed to search candidates: %w", err)
	}

	// tolerate a typo within the leading letters once the input is long enough
	if len(candidates) == 0 && utf8.RuneCountInString(simpleInput) >= s.opts.LevMinimum {
		candidates, err = s.repo.SearchCandidates(ctx, prefixOf(simpleInput, 1), s.opts.CandidateMax)
		if err != nil {
			return nil, fmt.Errorf("service: failed to search candidates: %w", err)
		}
	}

	results := s.rank(candidates, simpleInput)

	s.cache.SetWithTTL(simpleInput, results, int64(len(results))+1, s.opts.CacheTTL)
	s.bumpRelevance(results, simpleInput)

	return results, nil
}

func (s *CompletionService) observe(start time.Time) {
	s.queries.Add(1)
	s.lookupNanos.Add(int64(time.Since(start)))
}

// Stats returns the query counters and cache metrics.
func (s *CompletionService) Stats() CompletionStats {
	stats := CompletionStats{QueryCount: s.queries.Load()}
	if stats.QueryCount > 0 {
		stats.AvgLookupTime = time.Duration(s.lookupNanos.Load() / int64(stats.QueryCount))
	}

	m := s.cache.Metrics
	stats.Cache = models.CacheMetrics{
		Hits:        m.Hits(),
		Misses:      m.Misses(),
		Ratio:       m.Ratio(),
		KeysAdded:   m.KeysAdded(),
		KeysEvicted: m.KeysEvicted(),
	}
	return stats
}

// Options returns the ranking and caching options.
func (s *CompletionService) Options() CompletionOptions {
	return s.opts
}

// rank orders candidates by Levenshtein distance to input and cuts the list
// to the page size plus any further exact matches.
func (s *CompletionService) rank(candidates []models.Place, simpleInput string) []models.Suggestion {
	results := make([]models.Suggestion, len(candidates))
	for i := range candidates {
		p := candidates[i]
		results[i] = models.Suggestion{
			Distance: distance(simpleInput, SimplifyName(p.Name)),
			Place:    withOSM(&p),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return s.ranksHigher(results[i], results[j])
	})

	count := min(s.opts.PageSize, len(results))
	for count < len(results) && results[count].Distance == 0 && SimplifyName(results[count].Place.Name) == simpleInput {
		count++
	}
	return results[:count]
}

// ranksHigher compares two results wrt. distance, relevance, class, and (in
// case of streets) length.
func (s *CompletionService) ranksHigher(i, j models.Suggestion) bool {
	di, dj := i.Distance, j.Distance

	// an exact match beats everything else
	if di != dj && (di == 0 || dj == 0) {
		return di == 0
	}

	// clearly closer wins
	if abs(di-dj) > s.opts.DistanceCut {
		return di < dj
	}

	pi, pj := i.Place, j.Place
	if pi.Relevance != pj.Relevance {
		return pi.Relevance > pj.Relevance
	}
	if di != dj {
		return di < dj
	}

	// rank streets over locations
	if pi.Class != pj.Class {
		return pi.Class == models.ClassStreet
	}

	// longer streets first
	if pi.Class == models.ClassStreet {
		return pi.Length > pj.Length
	}
	return false
}

// bumpRelevance increases the relevance of exact matches in the background.
func (s *CompletionService) bumpRelevance(results []models.Suggestion, simpleInput string) {
	var ids []int64
	for _, r := range results {
		if SimplifyName(r.Place.Name) != simpleInput {
			continue
		}
		id, err := strconv.ParseInt(r.Place.ID, 10, 64)
		if err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.IncrementRelevance(ctx, ids); err != nil {
			log.Warn().Err(err).Ints64("ids", ids).Msg("failed to update relevance")
		}
	}()
}

// distance is the Levenshtein distance between the input and the equally long
// head of the name, plus the number of letters remaining to complete it.
func distance(simpleInput, simpleName string) int {
	inputLength := utf8.RuneCountInString(simpleInput)
	head := prefixOf(simpleName, inputLength)
	remainder := utf8.RuneCountInString(simpleName) - utf8.RuneCountInString(head)
	return levenshtein.ComputeDistance(simpleInput, head) + remainder
}

func withOSM(p *models.Place) *models.Place {
	if p == nil {
		return nil
	}
	if p.Lat != 0 || p.Lon != 0 {
		p.OSM = fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.7f&mlon=%.7f#map=19/%.7f/%.7f", p.Lat, p.Lon, p.Lat, p.Lon)
	}
	return p
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
