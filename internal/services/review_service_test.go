package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scrimteamx/Card-Ghar/internal/catalog"
	"github.com/scrimteamx/Card-Ghar/internal/ledger"
	"github.com/scrimteamx/Card-Ghar/internal/repositories/ledgerstore"
)

func newReviewService(t *testing.T) *ReviewService {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	repo, err := ledgerstore.NewReviewRepository(ledger.OpenMemory())
	if err != nil {
		t.Fatalf("NewReviewRepository: %v", err)
	}
	svc, err := NewReviewService(ReviewServiceDeps{
		Reviews: repo,
		Catalog: cat,
		Now:     func() time.Time { return time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewReviewService: %v", err)
	}
	return svc
}

func TestReviewSubmitAndList(t *testing.T) {
	ctx := context.Background()
	svc := newReviewService(t)

	review, err := svc.Submit(ctx, SubmitReviewCommand{
		ProductID: "1",
		User:      "Kim",
		Rating:    4,
		Comment:   "Code arrived in seconds.",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if review.Date != "March 15, 2026" {
		t.Errorf("date = %q", review.Date)
	}

	reviews, err := svc.List(ctx, "1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// Submitted review first, then the two seeded catalog reviews.
	if len(reviews) != 3 {
		t.Fatalf("len = %d, want 3", len(reviews))
	}
	if reviews[0].ID != review.ID {
		t.Errorf("submitted review should be first, got %s", reviews[0].ID)
	}
	if reviews[1].User != "Alex G." {
		t.Errorf("seeded review order changed: %s", reviews[1].User)
	}
}

func TestReviewSubmitSanitizesHTML(t *testing.T) {
	ctx := context.Background()
	svc := newReviewService(t)

	review, err := svc.Submit(ctx, SubmitReviewCommand{
		ProductID: "1",
		User:      "<b>Kim</b>",
		Rating:    5,
		Comment:   `Great <script>alert("x")</script> value`,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if review.User != "Kim" {
		t.Errorf("user = %q, want tags stripped", review.User)
	}
	if review.Comment != "Great  value" {
		t.Errorf("comment = %q, want script stripped", review.Comment)
	}
}

func TestReviewSubmitValidation(t *testing.T) {
	ctx := context.Background()
	svc := newReviewService(t)

	cases := []SubmitReviewCommand{
		{ProductID: "999", User: "a", Rating: 3, Comment: "ok"},
		{ProductID: "1", User: "a", Rating: 0, Comment: "ok"},
		{ProductID: "1", User: "a", Rating: 6, Comment: "ok"},
		{ProductID: "1", User: "a", Rating: 3, Comment: "   "},
		{ProductID: "1", User: "a", Rating: 3, Comment: "<script></script>"},
	}
	for _, cmd := range cases {
		if _, err := svc.Submit(ctx, cmd); !errors.Is(err, ErrReviewInvalidInput) {
			t.Errorf("Submit(%+v) = %v, want ErrReviewInvalidInput", cmd, err)
		}
	}
}

func TestReviewAnonymousFallback(t *testing.T) {
	svc := newReviewService(t)
	review, err := svc.Submit(context.Background(), SubmitReviewCommand{
		ProductID: "1",
		User:      "   ",
		Rating:    5,
		Comment:   "solid",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if review.User != "Anonymous" {
		t.Errorf("user = %q, want Anonymous", review.User)
	}
}
