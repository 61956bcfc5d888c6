package grpc

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	pb "github.com/godilite/cs-dashboard/api/v1"
	"github.com/godilite/cs-dashboard/internal/render"
	"github.com/godilite/cs-dashboard/internal/service"
	"github.com/godilite/cs-dashboard/pkg/cache"
	grpcsrv "github.com/godilite/cs-dashboard/pkg/grpc/server"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

type CacheKeyType string

const (
	cacheKeyFilterOptions CacheKeyType = "grpc:filter_options"
	cacheKeyDashboard     CacheKeyType = "grpc:dashboard"
	cacheKeyTickets       CacheKeyType = "grpc:tickets"
	cacheKeyChart         CacheKeyType = "grpc:chart"
)

type GRPCHandlers struct {
	pb.UnimplementedDashboardServer
	dashboard DashboardService
	charts    ChartRenderer
	cache     Cacher
	logger    *zap.Logger
	sfGroup   singleflight.Group
	cacheTTL  time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers. A nil cache disables response
// caching.
func NewGRPCHandlers(dashboard DashboardService, charts ChartRenderer, c Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if dashboard == nil {
		panic("nil DashboardService provided to NewGRPCHandlers")
	}
	if charts == nil {
		panic("nil ChartRenderer provided to NewGRPCHandlers")
	}
	if c == nil {
		c = cache.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &GRPCHandlers{
		dashboard: dashboard,
		charts:    charts,
		cache:     c,
		logger:    logger.Named("grpc-handler"),
		cacheTTL:  ttl,
	}
}

func normalizeKey(prefix CacheKeyType, q query) (string, error) {
	return cache.Key(string(prefix), q)
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	logger := s.logger.With(zap.String("request_id", grpcsrv.RequestID(ctx)))

	switch ctx.Err() {
	case context.Canceled:
		logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		logger.Info("invalid request", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNoTickets):
		logger.Info("no tickets loaded", zap.String("op", op))
		return status.Error(codes.NotFound, "no tickets in the data source")
	case errors.Is(err, render.ErrNothingToRender):
		logger.Info("nothing to render", zap.String("op", op))
		return status.Error(codes.NotFound, "no data to chart for the given selection")
	case errors.Is(err, service.ErrDataSource):
		logger.Error("data source failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "data source error")
	default:
		logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) GetFilterOptions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	q, err := decodeQuery(req)
	if err != nil {
		return nil, s.handleError(ctx, "GetFilterOptions", err)
	}
	sel, err := q.selection()
	if err != nil {
		return nil, s.handleError(ctx, "GetFilterOptions", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey, err := normalizeKey(cacheKeyFilterOptions, q.selectionOnly())
	if err != nil {
		return nil, s.handleError(ctx, "GetFilterOptions", err)
	}

	opts, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.FilterOptions, error) {
		return s.dashboard.GetFilterOptions(fetchCtx, sel)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetFilterOptions", err)
	}

	return s.encode(ctx, "GetFilterOptions", opts)
}

func (s *GRPCHandlers) GetDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	q, err := decodeQuery(req)
	if err != nil {
		return nil, s.handleError(ctx, "GetDashboard", err)
	}
	dreq, err := q.dashboardRequest()
	if err != nil {
		return nil, s.handleError(ctx, "GetDashboard", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	q.Chart, q.Limit, q.Offset = "", 0, 0
	cacheKey, err := normalizeKey(cacheKeyDashboard, q)
	if err != nil {
		return nil, s.handleError(ctx, "GetDashboard", err)
	}

	d, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.Dashboard, error) {
		return s.dashboard.GetDashboard(fetchCtx, dreq)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetDashboard", err)
	}

	return s.encode(ctx, "GetDashboard", d)
}

func (s *GRPCHandlers) ListTickets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	q, err := decodeQuery(req)
	if err != nil {
		return nil, s.handleError(ctx, "ListTickets", err)
	}
	sel, err := q.selection()
	if err != nil {
		return nil, s.handleError(ctx, "ListTickets", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	key := q.selectionOnly()
	key.Limit, key.Offset = q.Limit, q.Offset
	cacheKey, err := normalizeKey(cacheKeyTickets, key)
	if err != nil {
		return nil, s.handleError(ctx, "ListTickets", err)
	}

	page, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.TicketPage, error) {
		return s.dashboard.ListTickets(fetchCtx, sel, q.Limit, q.Offset)
	})
	if err != nil {
		return nil, s.handleError(ctx, "ListTickets", err)
	}

	return s.encode(ctx, "ListTickets", page)
}

func (s *GRPCHandlers) RenderChart(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	q, err := decodeQuery(req)
	if err != nil {
		return nil, s.handleError(ctx, "RenderChart", err)
	}
	kind, ok := render.ParseKind(q.Chart)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown chart %q", q.Chart)
	}
	dreq, err := q.dashboardRequest()
	if err != nil {
		return nil, s.handleError(ctx, "RenderChart", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	q.Limit, q.Offset = 0, 0
	cacheKey, err := normalizeKey(cacheKeyChart, q)
	if err != nil {
		return nil, s.handleError(ctx, "RenderChart", err)
	}

	png, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) ([]byte, error) {
		d, err := s.dashboard.GetDashboard(fetchCtx, dreq)
		if err != nil {
			return nil, err
		}
		return s.charts.PNG(kind, d)
	})
	if err != nil {
		return nil, s.handleError(ctx, "RenderChart", err)
	}

	return wrapperspb.Bytes(png), nil
}

func (s *GRPCHandlers) encode(ctx context.Context, op string, v any) (*structpb.Struct, error) {
	out, err := pb.EncodeStruct(v)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return out, nil
}
