package handlers

import (
	"context"

	"github.com/sunmind/sunmind/pkg/sunmind"
)

// --- List Reviews ---

// ListReviewsInput is the input for listing reviews.
type ListReviewsInput struct {
	Cached bool `query:"cached" doc:"Return the cached list without asking the backend"`
}

// ListReviewsOutput is the output for listing reviews.
type ListReviewsOutput struct {
	Body []sunmind.Review
}

// --- Add Review ---

// AddReviewInput is the input for submitting a review.
type AddReviewInput struct {
	Body sunmind.NewReview
}

// AddReviewOutput is the output after submitting a review.
type AddReviewOutput struct {
	Body sunmind.Review
}

// --- Delete Review ---

// DeleteReviewInput is the input for deleting a review.
type DeleteReviewInput struct {
	ID string `path:"id" doc:"Review identifier"`
}

// DeleteReviewOutput is the output for deleting a review.
type DeleteReviewOutput struct{}

// ReviewCache is the review cache as the HTTP layer drives it.
type ReviewCache interface {
	List() []sunmind.Review
	Fetch(ctx context.Context) ([]sunmind.Review, error)
	Add(ctx context.Context, in sunmind.NewReview) (sunmind.Review, error)
	Delete(ctx context.Context, id string) error
}

// ReviewHandler implements product review HTTP handlers.
type ReviewHandler struct {
	Reviews ReviewCache
}

// ListReviews returns the reviews, newest first.
func (h *ReviewHandler) ListReviews(ctx context.Context, input *ListReviewsInput) (*ListReviewsOutput, error) {
	if input.Cached {
		return &ListReviewsOutput{Body: h.Reviews.List()}, nil
	}
	list, err := h.Reviews.Fetch(ctx)
	if err != nil {
		return nil, ToHTTPError(err)
	}
	return &ListReviewsOutput{Body: list}, nil
}

// AddReview submits a review.
func (h *ReviewHandler) AddReview(ctx context.Context, input *AddReviewInput) (*AddReviewOutput, error) {
	saved, err := h.Reviews.Add(ctx, input.Body)
	if err != nil {
		return nil, ToHTTPError(err)
	}
	return &AddReviewOutput{Body: saved}, nil
}

// DeleteReview deletes a review.
func (h *ReviewHandler) DeleteReview(ctx context.Context, input *DeleteReviewInput) (*DeleteReviewOutput, error) {
	if err := h.Reviews.Delete(ctx, input.ID); err != nil {
		return nil, ToHTTPError(err)
	}
	return &DeleteReviewOutput{}, nil
}

// Ensure ReviewHandler implements the interface at compile time.
var _ ReviewHandlers = (*ReviewHandler)(nil)

// ReviewHandlers defines the interface for review operations.
type ReviewHandlers interface {
	ListReviews(ctx context.Context, input *ListReviewsInput) (*ListReviewsOutput, error)
	AddReview(ctx context.Context, input *AddReviewInput) (*AddReviewOutput, error)
	DeleteReview(ctx context.Context, input *DeleteReviewInput) (*DeleteReviewOutput, error)
}
