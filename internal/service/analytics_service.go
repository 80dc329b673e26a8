package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
)

// AnalyticsService serves the all-time spending breakdown by category
type AnalyticsService struct {
	expenseRepo domain.ExpenseRepository
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(expenseRepo domain.ExpenseRepository) *AnalyticsService {
	return &AnalyticsService{expenseRepo: expenseRepo}
}

// Summarize groups the owner's whole history by category, largest total first.
// Order among equal totals is unspecified.
func (s *AnalyticsService) Summarize(ctx context.Context, ownerID uuid.UUID) ([]*domain.CategorySummary, error) {
	summary, err := s.expenseRepo.SummarizeByCategory(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		summary = []*domain.CategorySummary{}
	}
	return summary, nil
}
