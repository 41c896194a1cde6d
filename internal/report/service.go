package report

import (
	"context"
	"time"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/metrics"

	"go.uber.org/zap"
)

// DefaultPeriod is echoed when the request carries no periodo.
const DefaultPeriod = string(PeriodAll)

// Service builds reports on demand. It keeps no state between calls.
type Service interface {
	Build(ctx context.Context, rawPeriod string) (*Report, error)
}

type service struct {
	fetcher *Fetcher
	loc     *time.Location
	now     func() time.Time
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// Option customizes a Service.
type Option func(*service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithMetrics records build duration and failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *service) { s.metrics = m }
}

// NewService returns a Service doing its calendar math in loc.
func NewService(fetcher *Fetcher, loc *time.Location, logger *zap.Logger, opts ...Option) Service {
	s := &service{
		fetcher: fetcher,
		loc:     loc,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Build(ctx context.Context, rawPeriod string) (*Report, error) {
	if rawPeriod == "" {
		rawPeriod = DefaultPeriod
	}
	period := ParsePeriod(rawPeriod)
	now := s.now().In(s.loc)
	window := ResolveWindow(period, now)

	started := time.Now()
	ds, err := s.fetcher.Fetch(ctx, window)
	if err != nil {
		s.metrics.ObserveReport(string(period), time.Since(started), err)
		return nil, err
	}

	rep := Compose(ds, rawPeriod, window, now)
	s.metrics.ObserveReport(string(period), time.Since(started), nil)

	s.logger.Debug("Report built",
		zap.String("periodo", rawPeriod),
		zap.Int("total_contatos", rep.Metrics.TotalContacts),
		zap.Duration("elapsed", time.Since(started)),
	)
	return rep, nil
}
