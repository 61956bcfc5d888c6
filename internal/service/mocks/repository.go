package mocks

import (
	"context"
	"errors"

	"github.com/godilite/cs-dashboard/internal/filter"
	"github.com/godilite/cs-dashboard/internal/repository/models"
)

// MockTableSource is a mock implementation of the TableSource interface
// for testing the service layer.
type MockTableSource struct {
	LoadFunc func(ctx context.Context, path string) (*models.Table, error)
}

// Load implements the TableSource interface
func (m *MockTableSource) Load(ctx context.Context, path string) (*models.Table, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, path)
	}
	return nil, errors.New("LoadFunc not implemented")
}

// MockTicketIndex is a mock implementation of the TicketIndex interface.
type MockTicketIndex struct {
	RebuildFunc      func(ctx context.Context, table *models.Table) error
	CountTicketsFunc func(ctx context.Context, preds []filter.Predicate) (int, error)
	QueryTicketsFunc func(ctx context.Context, preds []filter.Predicate, limit, offset int) ([]models.TicketRow, error)
}

// Rebuild implements the TicketIndex interface
func (m *MockTicketIndex) Rebuild(ctx context.Context, table *models.Table) error {
	if m.RebuildFunc != nil {
		return m.RebuildFunc(ctx, table)
	}
	return nil
}

// CountTickets implements the TicketIndex interface
func (m *MockTicketIndex) CountTickets(ctx context.Context, preds []filter.Predicate) (int, error) {
	if m.CountTicketsFunc != nil {
		return m.CountTicketsFunc(ctx, preds)
	}
	return 0, errors.New("CountTicketsFunc not implemented")
}

// QueryTickets implements the TicketIndex interface
func (m *MockTicketIndex) QueryTickets(ctx context.Context, preds []filter.Predicate, limit, offset int) ([]models.TicketRow, error) {
	if m.QueryTicketsFunc != nil {
		return m.QueryTicketsFunc(ctx, preds, limit, offset)
	}
	return nil, errors.New("QueryTicketsFunc not implemented")
}
