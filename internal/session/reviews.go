package session

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	apperrors "github.com/sunmind/sunmind/internal/errors"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// ReviewBackend is the review part of the REST API.
type ReviewBackend interface {
	Reviews(ctx context.Context) ([]sunmind.Review, error)
	AddReview(ctx context.Context, r sunmind.NewReview) (sunmind.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

// Reviews caches the product reviews keyed by id. The map is replaced on
// every change and never modified in place.
type Reviews struct {
	backend ReviewBackend
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	reviews map[string]sunmind.Review
}

// NewReviews creates an empty review cache.
func NewReviews(logger *slog.Logger, b ReviewBackend) *Reviews {
	return &Reviews{
		backend: b,
		logger:  logger.With("component", "reviews"),
		now:     time.Now,
		reviews: map[string]sunmind.Review{},
	}
}

// List returns the cached reviews, newest first.
func (r *Reviews) List() []sunmind.Review {
	r.mu.Lock()
	cur := r.reviews
	r.mu.Unlock()
	out := slices.Collect(maps.Values(cur))
	slices.SortFunc(out, func(a, b sunmind.Review) int {
		return cmp.Or(cmp.Compare(b.Date, a.Date), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// Set replaces the cache.
func (r *Reviews) Set(list []sunmind.Review) {
	m := make(map[string]sunmind.Review, len(list))
	for _, rv := range list {
		m[rv.ID] = rv
	}
	r.mu.Lock()
	r.reviews = m
	r.mu.Unlock()
}

// Fetch reloads the cache from the backend.
func (r *Reviews) Fetch(ctx context.Context) ([]sunmind.Review, error) {
	list, err := r.backend.Reviews(ctx)
	if err != nil {
		r.logger.Warn("reviews: fetch failed", "error", err)
		return nil, fmt.Errorf("fetch reviews: %w", err)
	}
	r.Set(list)
	return r.List(), nil
}

// Add submits a review and caches the stored copy. An empty date is set to
// today.
func (r *Reviews) Add(ctx context.Context, in sunmind.NewReview) (sunmind.Review, error) {
	in.Author = strings.TrimSpace(in.Author)
	in.Text = strings.TrimSpace(in.Text)
	if in.Author == "" || in.Text == "" {
		return sunmind.Review{}, apperrors.InvalidInputf("author and text are required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return sunmind.Review{}, apperrors.InvalidInputf("rating must be between 1 and 5, got %d", in.Rating)
	}
	if in.Date == "" {
		in.Date = r.now().Format(time.DateOnly)
	}
	saved, err := r.backend.AddReview(ctx, in)
	if err != nil {
		r.logger.Warn("reviews: add failed", "error", err)
		return sunmind.Review{}, fmt.Errorf("add review: %w", err)
	}
	r.mu.Lock()
	next := maps.Clone(r.reviews)
	next[saved.ID] = saved
	r.reviews = next
	r.mu.Unlock()
	return saved, nil
}

// Delete removes a review from the backend and the cache.
func (r *Reviews) Delete(ctx context.Context, id string) error {
	if err := r.backend.DeleteReview(ctx, id); err != nil {
		return fmt.Errorf("delete review %s: %w", id, err)
	}
	r.mu.Lock()
	if _, ok := r.reviews[id]; ok {
		next := maps.Clone(r.reviews)
		delete(next, id)
		r.reviews = next
	}
	r.mu.Unlock()
	return nil
}
