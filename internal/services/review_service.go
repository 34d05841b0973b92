package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
	"github.com/scrimteamx/Card-Ghar/internal/repositories"
)

// ErrReviewInvalidInput signals a malformed review submission.
var ErrReviewInvalidInput = errors.New("review: invalid input")

const maxReviewCommentLength = 500

// ReviewService merges seeded catalog reviews with user submissions.
// Submitted text is sanitized to plain text before it is stored.
type ReviewService struct {
	reviews repositories.ReviewRepository
	catalog ProductCatalog
	policy  *bluemonday.Policy
	idGen   func() string
	now     func() time.Time
}

// ReviewServiceDeps carries the collaborators for NewReviewService.
type ReviewServiceDeps struct {
	Reviews repositories.ReviewRepository
	Catalog ProductCatalog
	IDGen   func() string
	Now     func() time.Time
}

// NewReviewService constructs the service.
func NewReviewService(deps ReviewServiceDeps) (*ReviewService, error) {
	if deps.Reviews == nil {
		return nil, errors.New("review service: review repository is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("review service: catalog is required")
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &ReviewService{
		reviews: deps.Reviews,
		catalog: deps.Catalog,
		policy:  bluemonday.StrictPolicy(),
		idGen:   idGen,
		now:     func() time.Time { return now().UTC() },
	}, nil
}

// List returns user-submitted reviews followed by the seeded catalog ones.
func (s *ReviewService) List(ctx context.Context, productID string) ([]domain.Review, error) {
	product, err := s.catalog.Product(productID)
	if err != nil {
		return nil, fmt.Errorf("review: unknown product %q: %w", productID, err)
	}
	submitted, err := s.reviews.List(ctx, productID)
	if err != nil {
		return nil, err
	}
	merged := make([]domain.Review, 0, len(submitted)+len(product.Reviews))
	merged = append(merged, submitted...)
	merged = append(merged, product.Reviews...)
	return merged, nil
}

// SubmitReviewCommand is one user review submission.
type SubmitReviewCommand struct {
	ProductID string
	User      string
	Rating    int
	Comment   string
}

// Submit validates, sanitizes and stores a review.
func (s *ReviewService) Submit(ctx context.Context, cmd SubmitReviewCommand) (domain.Review, error) {
	if _, err := s.catalog.Product(cmd.ProductID); err != nil {
		return domain.Review{}, fmt.Errorf("%w: unknown product %q", ErrReviewInvalidInput, cmd.ProductID)
	}
	if cmd.Rating < 1 || cmd.Rating > 5 {
		return domain.Review{}, fmt.Errorf("%w: rating %d out of range", ErrReviewInvalidInput, cmd.Rating)
	}
	user := strings.TrimSpace(s.policy.Sanitize(cmd.User))
	if user == "" {
		user = "Anonymous"
	}
	comment := strings.TrimSpace(s.policy.Sanitize(cmd.Comment))
	if comment == "" {
		return domain.Review{}, fmt.Errorf("%w: empty comment", ErrReviewInvalidInput)
	}
	if len(comment) > maxReviewCommentLength {
		return domain.Review{}, fmt.Errorf("%w: comment exceeds %d characters", ErrReviewInvalidInput, maxReviewCommentLength)
	}

	review := domain.Review{
		ID:      s.idGen(),
		User:    user,
		Rating:  cmd.Rating,
		Comment: comment,
		Date:    s.now().Format("January 2, 2006"),
	}
	if err := s.reviews.Append(ctx, cmd.ProductID, review); err != nil {
		return domain.Review{}, err
	}
	return review, nil
}
