package service

import (
	"context"

	"github.com/godilite/cs-dashboard/internal/filter"
	"github.com/godilite/cs-dashboard/internal/repository/models"
)

// TableSource loads the base ticket table.
type TableSource interface {
	Load(ctx context.Context, path string) (*models.Table, error)
}

// TicketIndex serves the paged raw-table view.
type TicketIndex interface {
	Rebuild(ctx context.Context, table *models.Table) error
	CountTickets(ctx context.Context, preds []filter.Predicate) (int, error)
	QueryTickets(ctx context.Context, preds []filter.Predicate, limit, offset int) ([]models.TicketRow, error)
}
