// Package search filters the cached all-tracks snapshot with fuzzy
// matching. It never reads the store directly; the metadata cache is
// its only data source.
package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/tonehaus/aria/internal/domain"
)

// Library is the slice of the metadata cache the search service needs
type Library interface {
	GetAllTracks(ctx context.Context, force bool) ([]domain.Track, error)
}

// Result is one matched track with ranking metadata for highlighting
type Result struct {
	Track          domain.Track
	Score          int
	MatchedIndexes []int
}

// trackIndex implements fuzzy.Source for zero-allocation matching over
// pre-computed lowercase search strings
type trackIndex struct {
	tracks []domain.Track
	lower  []string
}

func (i *trackIndex) String(n int) string { return i.lower[n] }
func (i *trackIndex) Len() int            { return len(i.tracks) }

// Service ranks tracks against a query
type Service struct {
	library Library
	logger  *slog.Logger

	mu    sync.RWMutex
	index *trackIndex
}

// NewService creates a search service over the metadata cache
func NewService(library Library, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		library: library,
		logger:  logger,
		index:   &trackIndex{},
	}
}

// Rebuild refreshes the search index from the cached track snapshot
func (s *Service) Rebuild(ctx context.Context) error {
	tracks, err := s.library.GetAllTracks(ctx, false)
	if err != nil {
		s.logger.Error("failed to build search index", "error", err)
		return err
	}

	idx := &trackIndex{
		tracks: tracks,
		lower:  make([]string, len(tracks)),
	}
	for i, t := range tracks {
		idx.lower[i] = strings.ToLower(t.Title + " " + t.Artist + " " + t.Album)
	}

	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()

	s.logger.Debug("rebuilt search index", "tracks", len(tracks))
	return nil
}

// Filter returns tracks matching the query, best matches first
func (s *Service) Filter(query string) []Result {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return nil
	}

	s.mu.RLock()
	idx := s.index
	s.mu.RUnlock()

	if idx.Len() == 0 {
		return nil
	}

	matches := fuzzy.FindFrom(query, idx)
	if len(matches) > 0 {
		results := make([]Result, 0, len(matches))
		for _, m := range matches {
			results = append(results, Result{
				Track:          idx.tracks[m.Index],
				Score:          m.Score,
				MatchedIndexes: m.MatchedIndexes,
			})
		}
		return results
	}

	// Loose fallback for queries the subsequence matcher rejects
	// outright (typos): rank by normalized edit distance instead.
	var results []Result
	for i, candidate := range idx.lower {
		rank := lfuzzy.RankMatchNormalizedFold(query, candidate)
		if rank < 0 {
			continue
		}
		results = append(results, Result{
			Track: idx.tracks[i],
			Score: -rank,
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}
