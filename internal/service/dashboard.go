package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/cs-dashboard/internal/analytics"
	"github.com/godilite/cs-dashboard/internal/config"
	"github.com/godilite/cs-dashboard/internal/filter"
	"github.com/godilite/cs-dashboard/internal/repository/models"
)

const (
	loadTimeout     = 30 * time.Second
	dbTimeout       = 2 * time.Second
	defaultPageSize = 50
	maxPageSize     = 500
)

var (
	ErrNoTickets      = errors.New("no tickets loaded")
	ErrInvalidRequest = errors.New("invalid request")
	ErrDataSource     = errors.New("data source failure")
)

// Options configures a DashboardService.
type Options struct {
	DataPath string
	Schema   config.Schema
	TopTerms int
	// Now overrides the clock used for the fallback date window.
	Now func() time.Time
}

// DashboardService recomputes the dashboard from the cached base table on
// every call. It holds no per-request state.
type DashboardService struct {
	tables TableSource
	index  TicketIndex
	opts   Options
	logger *zap.Logger

	indexMu sync.Mutex
	indexed bool
}

// NewDashboardService creates a new DashboardService instance.
func NewDashboardService(tables TableSource, index TicketIndex, opts Options, logger *zap.Logger) *DashboardService {
	if tables == nil {
		panic("table source must not be nil")
	}
	if index == nil {
		panic("ticket index must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TopTerms <= 0 {
		opts.TopTerms = analytics.DefaultTopTerms
	}
	if len(opts.Schema.ScoreQuestions) == 0 && len(opts.Schema.TextQuestions) == 0 {
		opts.Schema = config.DefaultSchema()
	}
	return &DashboardService{
		tables: tables,
		index:  index,
		opts:   opts,
		logger: logger.Named("dashboard"),
	}
}

// Warm loads the ticket file and builds the ticket index, so that a broken
// file fails at startup instead of on the first request.
func (s *DashboardService) Warm(ctx context.Context) error {
	if _, err := s.load(ctx); err != nil {
		return err
	}
	return s.ensureIndexed(ctx)
}

func (s *DashboardService) load(ctx context.Context) (*models.Table, error) {
	loadCtx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	table, err := s.tables.Load(loadCtx, s.opts.DataPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataSource, err)
	}
	if table.Empty() {
		return nil, ErrNoTickets
	}
	return table, nil
}

func (s *DashboardService) ensureIndexed(ctx context.Context) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	if s.indexed {
		return nil
	}

	table, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := s.index.Rebuild(ctx, table); err != nil {
		return fmt.Errorf("%w: rebuild ticket index: %v", ErrDataSource, err)
	}
	s.indexed = true
	s.logger.Info("ticket index built", zap.Int("tickets", table.Len()))
	return nil
}

// scope restricts the base table to the selected date window, defaulting to
// the full span of the data.
func (s *DashboardService) scope(table *models.Table, sel filter.Selection) (*models.Table, filter.DateRange, error) {
	rng := filter.DefaultDateRange(table, s.opts.Now())
	if sel.Range != nil {
		rng = *sel.Range
	}
	if rng.End.Before(rng.Start) {
		return nil, filter.DateRange{}, fmt.Errorf("%w: start date %s is after end date %s",
			ErrInvalidRequest, rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02"))
	}
	return filter.Apply(table, rng), rng, nil
}

// GetFilterOptions returns the dropdown contents for the current selection.
// Primary lists hold every value in the date window; secondary lists are
// count-annotated against the primary-only filtered set.
func (s *DashboardService) GetFilterOptions(ctx context.Context, sel filter.Selection) (FilterOptions, error) {
	sel = sel.Normalized()

	table, err := s.load(ctx)
	if err != nil {
		return FilterOptions{}, err
	}
	scoped, rng, err := s.scope(table, sel)
	if err != nil {
		return FilterOptions{}, err
	}

	inquiry2 := filter.SecondaryOptions(scoped, sel, models.FieldInquirySecondary)
	service2 := filter.SecondaryOptions(scoped, sel, models.FieldServiceSecondary)

	return FilterOptions{
		Bounds:        bounds(filter.DefaultDateRange(table, s.opts.Now())),
		Range:         bounds(rng),
		Selection:     selectionView(sel),
		CustomerTypes: filter.PrimaryOptions(scoped, models.FieldCustomerType),
		InquiryTypes:  filter.PrimaryOptions(scoped, models.FieldInquiryType),
		ServiceTypes:  filter.PrimaryOptions(scoped, models.FieldServiceType),
		InquirySecondary: SecondaryOptions{
			Options: inquiry2,
			Labels:  filter.OptionLabels(inquiry2),
		},
		ServiceSecondary: SecondaryOptions{
			Options: service2,
			Labels:  filter.OptionLabels(service2),
		},
	}, nil
}

// GetDashboard filters the table and computes every chart table. An empty
// filtered set is reported through NoData, not as an error.
func (s *DashboardService) GetDashboard(ctx context.Context, req DashboardRequest) (Dashboard, error) {
	req, err := s.normalizeRequest(req)
	if err != nil {
		return Dashboard{}, err
	}

	table, err := s.load(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	scoped, rng, err := s.scope(table, req.Selection)
	if err != nil {
		return Dashboard{}, err
	}
	filtered := filter.Apply(scoped, req.Selection.CategoryPredicates()...)

	d := Dashboard{
		Range:     bounds(rng),
		Selection: selectionView(req.Selection),
		Total:     filtered.Len(),
		Period:    req.Period,
	}
	if filtered.Empty() {
		d.NoData = true
		s.logger.Debug("no tickets for selection", zap.Any("selection", d.Selection), zap.Any("range", d.Range))
		return d, nil
	}

	schema := s.opts.Schema
	g, gctx := errgroup.WithContext(ctx)
	run := func(fn func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	run(func() { d.PeriodCounts = analytics.PeriodCounts(filtered, req.Period) })
	run(func() {
		d.Durations = analytics.Long(analytics.DurationAverages(filtered), schema.DurationLabels)
	})
	// The customer-type share ignores category selections and covers the
	// whole date window.
	run(func() { d.CustomerTypes = analytics.TopBreakdown(scoped, models.FieldCustomerType, schema.TopN) })
	run(func() { d.ScoreMeans = analytics.ScoreMeans(filtered, schema.ScoreQuestions) })
	run(func() {
		d.GroupedScores = &GroupedScores{
			Field:    req.GroupBy,
			Question: req.CrossScore,
			Groups:   analytics.GroupedScoreMeans(filtered, req.GroupBy, req.CrossScore),
		}
	})
	run(func() {
		d.ScoreHistogram = &ScoreHistogram{
			Question: req.HistScore,
			Buckets:  analytics.ScoreDistribution(filtered, req.HistScore),
		}
	})
	run(func() {
		d.ScoreTrend = &ScoreTrend{
			Question: req.TrendScore,
			Points:   analytics.MonthlyScoreTrend(filtered, req.TrendScore),
		}
	})
	run(func() {
		c := analytics.CommentCorpus(filtered, req.TextQuestion)
		if !c.Empty {
			c.Terms = analytics.TopTerms(c.Text, s.opts.TopTerms)
		}
		d.Comments = &c
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	s.logger.Debug("dashboard computed",
		zap.Int("total", d.Total),
		zap.String("period", string(req.Period)),
		zap.Int("buckets", len(d.PeriodCounts)))

	return d, nil
}

// ListTickets pages through the filtered tickets in file order.
func (s *DashboardService) ListTickets(ctx context.Context, sel filter.Selection, limit, offset int) (TicketPage, error) {
	sel = sel.Normalized()
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		return TicketPage{}, fmt.Errorf("%w: negative offset %d", ErrInvalidRequest, offset)
	}

	if err := s.ensureIndexed(ctx); err != nil {
		return TicketPage{}, err
	}
	table, err := s.load(ctx)
	if err != nil {
		return TicketPage{}, err
	}
	_, rng, err := s.scope(table, sel)
	if err != nil {
		return TicketPage{}, err
	}
	preds := append([]filter.Predicate{rng}, sel.CategoryPredicates()...)

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	total, err := s.index.CountTickets(dbCtx, preds)
	if err != nil {
		return TicketPage{}, fmt.Errorf("%w: %v", ErrDataSource, err)
	}
	rows, err := s.index.QueryTickets(dbCtx, preds, limit, offset)
	if err != nil {
		return TicketPage{}, fmt.Errorf("%w: %v", ErrDataSource, err)
	}

	return TicketPage{
		Range:  bounds(rng),
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Rows:   rows,
	}, nil
}

func (s *DashboardService) normalizeRequest(req DashboardRequest) (DashboardRequest, error) {
	schema := s.opts.Schema
	req.Selection = req.Selection.Normalized()

	if req.Period == "" {
		req.Period = analytics.UnitMonth
	}
	if req.Period != analytics.UnitMonth && req.Period != analytics.UnitWeek {
		return req, fmt.Errorf("%w: unknown period unit %q", ErrInvalidRequest, req.Period)
	}

	if req.GroupBy == "" {
		req.GroupBy = models.FieldCustomerType
	}
	if _, ok := models.ParseField(string(req.GroupBy)); !ok {
		return req, fmt.Errorf("%w: unknown category field %q", ErrInvalidRequest, req.GroupBy)
	}

	for _, q := range []*string{&req.CrossScore, &req.HistScore, &req.TrendScore} {
		if *q == "" && len(schema.ScoreQuestions) > 0 {
			*q = schema.ScoreQuestions[0]
		}
		if !schema.HasScore(*q) {
			return req, fmt.Errorf("%w: unknown score question %q", ErrInvalidRequest, *q)
		}
	}

	if req.TextQuestion == "" && len(schema.TextQuestions) > 0 {
		req.TextQuestion = schema.TextQuestions[0]
	}
	if !schema.HasText(req.TextQuestion) {
		return req, fmt.Errorf("%w: unknown text question %q", ErrInvalidRequest, req.TextQuestion)
	}

	return req, nil
}

func bounds(r filter.DateRange) DateBounds {
	return DateBounds{
		Start: r.Start.Format("2006-01-02"),
		End:   r.End.Format("2006-01-02"),
	}
}

func selectionView(sel filter.Selection) SelectionView {
	return SelectionView{
		CustomerType:     sel.CustomerType,
		InquiryType:      sel.InquiryType,
		InquirySecondary: sel.InquirySecondary,
		ServiceType:      sel.ServiceType,
		ServiceSecondary: sel.ServiceSecondary,
	}
}
