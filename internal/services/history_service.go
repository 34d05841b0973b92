package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
	"github.com/scrimteamx/Card-Ghar/internal/repositories"
)

// ErrBillNotFound is returned when no bill matches the requested id.
var ErrBillNotFound = errors.New("history: bill not found")

// HistoryService reads the purchase history.
type HistoryService struct {
	history repositories.HistoryRepository
}

// HistoryServiceDeps carries the collaborators for NewHistoryService.
type HistoryServiceDeps struct {
	History repositories.HistoryRepository
}

// NewHistoryService constructs the service.
func NewHistoryService(deps HistoryServiceDeps) (*HistoryService, error) {
	if deps.History == nil {
		return nil, errors.New("history service: history repository is required")
	}
	return &HistoryService{history: deps.History}, nil
}

// List returns all bills, newest first.
func (s *HistoryService) List(ctx context.Context) ([]domain.Bill, error) {
	return s.history.List(ctx)
}

// Find returns the bill with the given id.
func (s *HistoryService) Find(ctx context.Context, billID string) (domain.Bill, error) {
	bills, err := s.history.List(ctx)
	if err != nil {
		return domain.Bill{}, err
	}
	for _, bill := range bills {
		if bill.ID == billID {
			return bill, nil
		}
	}
	return domain.Bill{}, fmt.Errorf("%w: %s", ErrBillNotFound, billID)
}
