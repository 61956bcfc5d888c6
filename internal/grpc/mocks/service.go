package mocks

import (
	"context"
	"errors"

	"github.com/godilite/cs-dashboard/internal/filter"
	"github.com/godilite/cs-dashboard/internal/render"
	"github.com/godilite/cs-dashboard/internal/service"
)

// MockDashboardService is a mock implementation of the DashboardService
// interface for testing the handler layer. It uses function-based mocking for flexibility.
type MockDashboardService struct {
	GetFilterOptionsFunc func(ctx context.Context, sel filter.Selection) (service.FilterOptions, error)
	GetDashboardFunc     func(ctx context.Context, req service.DashboardRequest) (service.Dashboard, error)
	ListTicketsFunc      func(ctx context.Context, sel filter.Selection, limit, offset int) (service.TicketPage, error)
}

// GetFilterOptions implements the DashboardService interface
func (m *MockDashboardService) GetFilterOptions(ctx context.Context, sel filter.Selection) (service.FilterOptions, error) {
	if m.GetFilterOptionsFunc != nil {
		return m.GetFilterOptionsFunc(ctx, sel)
	}
	return service.FilterOptions{}, errors.New("GetFilterOptionsFunc not implemented")
}

// GetDashboard implements the DashboardService interface
func (m *MockDashboardService) GetDashboard(ctx context.Context, req service.DashboardRequest) (service.Dashboard, error) {
	if m.GetDashboardFunc != nil {
		return m.GetDashboardFunc(ctx, req)
	}
	return service.Dashboard{}, errors.New("GetDashboardFunc not implemented")
}

// ListTickets implements the DashboardService interface
func (m *MockDashboardService) ListTickets(ctx context.Context, sel filter.Selection, limit, offset int) (service.TicketPage, error) {
	if m.ListTicketsFunc != nil {
		return m.ListTicketsFunc(ctx, sel, limit, offset)
	}
	return service.TicketPage{}, errors.New("ListTicketsFunc not implemented")
}

// MockChartRenderer is a mock implementation of the ChartRenderer interface.
type MockChartRenderer struct {
	PNGFunc func(kind render.Kind, d service.Dashboard) ([]byte, error)
}

// PNG implements the ChartRenderer interface
func (m *MockChartRenderer) PNG(kind render.Kind, d service.Dashboard) ([]byte, error) {
	if m.PNGFunc != nil {
		return m.PNGFunc(kind, d)
	}
	return nil, errors.New("PNGFunc not implemented")
}
