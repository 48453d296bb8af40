package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/report"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

const (
	dashboardRecent  = 10
	defaultTopLimit  = 10
	defaultRangeDays = 7
	maxRangeDays     = 366
)

// Report kinds accepted by Export.
const (
	ReportSalesDay    = "sales-day"
	ReportSalesRange  = "sales-range"
	ReportTopProducts = "top-products"
	ReportCategories  = "categories"
)

type ReportQuery struct {
	Date  string
	Start string
	End   string
	Limit int
}

type ReportService struct {
	Repo     ReportStore
	Branding report.Branding
	Now      func() time.Time
}

func (s *ReportService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ReportService) loc() *time.Location {
	if s.Branding.Location != nil {
		return s.Branding.Location
	}
	return time.UTC
}

func (s *ReportService) today() time.Time {
	n := s.now().In(s.loc())
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc())
}

func (s *ReportService) parseDay(field, v string) (time.Time, error) {
	d, err := time.ParseInLocation(report.DateLayout, strings.TrimSpace(v), s.loc())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrValidation, field)
	}
	return d, nil
}

func (s *ReportService) optionalDay(field, v string) (*time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	d, err := s.parseDay(field, v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nextDay(d time.Time) time.Time { return d.AddDate(0, 0, 1) }

func (s *ReportService) Dashboard(ctx context.Context) (*report.Dashboard, error) {
	start := s.today()
	orders, err := s.Repo.OrdersBetween(ctx, start, nextDay(start), false)
	if err != nil {
		return nil, err
	}
	preparing, err := s.Repo.CountOrdersByStatus(ctx, models.StatusPreparing)
	if err != nil {
		return nil, err
	}
	recent, err := s.Repo.RecentOrders(ctx, dashboardRecent)
	if err != nil {
		return nil, err
	}

	sum := report.Summarize(orders)
	return &report.Dashboard{
		Date:               start.Format(report.DateLayout),
		OrdersToday:        sum.Orders,
		SalesToday:         sum.Sales,
		AveragePrepMinutes: (sum.AveragePrepSeconds + 30) / 60,
		Preparing:          preparing,
		Recent:             recent,
	}, nil
}

// SalesDay reports one calendar day. An empty date means today.
func (s *ReportService) SalesDay(ctx context.Context, date string) (*report.SalesDay, error) {
	day := s.today()
	if strings.TrimSpace(date) != "" {
		var err error
		if day, err = s.parseDay("date", date); err != nil {
			return nil, err
		}
	}
	orders, err := s.Repo.OrdersBetween(ctx, day, nextDay(day), false)
	if err != nil {
		return nil, err
	}
	return &report.SalesDay{
		Date:     day.Format(report.DateLayout),
		Summary:  report.Summarize(orders),
		ByStatus: report.StatusBreakdown(orders),
		Orders:   orders,
	}, nil
}

// SalesRange reports the inclusive range [start, end]. Missing bounds default
// to the last seven days ending today.
func (s *ReportService) SalesRange(ctx context.Context, start, end string) (*report.SalesRange, error) {
	to := s.today()
	if strings.TrimSpace(end) != "" {
		var err error
		if to, err = s.parseDay("end_date", end); err != nil {
			return nil, err
		}
	}
	from := to.AddDate(0, 0, -(defaultRangeDays - 1))
	if strings.TrimSpace(start) != "" {
		var err error
		if from, err = s.parseDay("start_date", start); err != nil {
			return nil, err
		}
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end_date is before start_date", ErrValidation)
	}
	if nextDay(to).Sub(from) > maxRangeDays*24*time.Hour+time.Hour {
		return nil, fmt.Errorf("%w: range is longer than %d days", ErrValidation, maxRangeDays)
	}

	orders, err := s.Repo.OrdersBetween(ctx, from, nextDay(to), false)
	if err != nil {
		return nil, err
	}
	return &report.SalesRange{
		Start:   from.Format(report.DateLayout),
		End:     to.Format(report.DateLayout),
		Summary: report.Summarize(orders),
		Days:    report.DailyBreakdown(orders, s.loc()),
	}, nil
}

func (s *ReportService) bounds(start, end string) (from, to *time.Time, err error) {
	if from, err = s.optionalDay("start_date", start); err != nil {
		return nil, nil, err
	}
	if to, err = s.optionalDay("end_date", end); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("%w: end_date is before start_date", ErrValidation)
	}
	if to != nil {
		next := nextDay(*to)
		to = &next
	}
	return from, to, nil
}

func (s *ReportService) TopProducts(ctx context.Context, start, end string, limit int) (*report.TopProducts, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrValidation)
	}
	if limit == 0 {
		limit = defaultTopLimit
	}
	from, to, err := s.bounds(start, end)
	if err != nil {
		return nil, err
	}
	items, err := s.Repo.OrderItemsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &report.TopProducts{
		Start:    strings.TrimSpace(start),
		End:      strings.TrimSpace(end),
		Products: report.RankProducts(items, limit),
	}, nil
}

func (s *ReportService) Categories(ctx context.Context, start, end string) (*report.Categories, error) {
	from, to, err := s.bounds(start, end)
	if err != nil {
		return nil, err
	}
	items, err := s.Repo.OrderItemsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{})
	ids := make([]uint, 0)
	for _, it := range items {
		if _, ok := seen[it.ProductID]; !ok {
			seen[it.ProductID] = struct{}{}
			ids = append(ids, it.ProductID)
		}
	}
	products, err := s.Repo.ProductsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &report.Categories{
		Start:      strings.TrimSpace(start),
		End:        strings.TrimSpace(end),
		Categories: report.RankCategories(items, products),
	}, nil
}

// Export builds the printable document for a report kind.
func (s *ReportService) Export(ctx context.Context, kind string, q ReportQuery) (report.Document, error) {
	logging.FromContext(ctx).With("svc", "report.export").Info("report_export", "kind", kind)

	switch kind {
	case ReportSalesDay:
		r, err := s.SalesDay(ctx, q.Date)
		if err != nil {
			return report.Document{}, err
		}
		return r.Document(s.Branding), nil
	case ReportSalesRange:
		r, err := s.SalesRange(ctx, q.Start, q.End)
		if err != nil {
			return report.Document{}, err
		}
		return r.Document(s.Branding), nil
	case ReportTopProducts:
		r, err := s.TopProducts(ctx, q.Start, q.End, q.Limit)
		if err != nil {
			return report.Document{}, err
		}
		return r.Document(s.Branding), nil
	case ReportCategories:
		r, err := s.Categories(ctx, q.Start, q.End)
		if err != nil {
			return report.Document{}, err
		}
		return r.Document(s.Branding), nil
	}
	return report.Document{}, fmt.Errorf("%w: unknown report %q", ErrNotFound, kind)
}
