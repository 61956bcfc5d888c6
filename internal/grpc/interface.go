package grpc

import (
	"context"
	"time"

	"github.com/godilite/cs-dashboard/internal/filter"
	"github.com/godilite/cs-dashboard/internal/render"
	"github.com/godilite/cs-dashboard/internal/service"
)

// Cacher defines the interface for cache operations. Get must report an
// absent key with cache.ErrMiss.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type DashboardService interface {
	GetFilterOptions(ctx context.Context, sel filter.Selection) (service.FilterOptions, error)
	GetDashboard(ctx context.Context, req service.DashboardRequest) (service.Dashboard, error)
	ListTickets(ctx context.Context, sel filter.Selection, limit, offset int) (service.TicketPage, error)
}

type ChartRenderer interface {
	PNG(kind render.Kind, d service.Dashboard) ([]byte, error)
}
