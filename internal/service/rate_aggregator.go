package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rates_go/internal/domain"
	"rates_go/internal/infra"

	"golang.org/x/sync/errgroup"
)

const defaultFetchTimeout = 10 * time.Second

// RateAggregator fetches one snapshot per date concurrently and assembles them in date order.
type RateAggregator struct {
	provider     domain.RateProvider
	fetchTimeout time.Duration
	maxParallel  int
	metrics      *infra.Metrics
	logger       *slog.Logger
}

// NewRateAggregator creates an aggregator over provider.
// fetchTimeout bounds each date independently; maxParallel bounds in-flight fetches.
func NewRateAggregator(provider domain.RateProvider, fetchTimeout time.Duration, maxParallel int, metrics *infra.Metrics) *RateAggregator {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	if maxParallel <= 0 {
		maxParallel = domain.MaxDays
	}
	return &RateAggregator{
		provider:     provider,
		fetchTimeout: fetchTimeout,
		maxParallel:  maxParallel,
		metrics:      metrics,
		logger:       slog.Default().With("module", "rate_aggregator"),
	}
}

// Aggregate returns one DatedSnapshot per date from ref back over days (clamped to 1..10).
// A failed date yields an empty snapshot; Aggregate returns only after every fetch settles.
func (a *RateAggregator) Aggregate(ctx context.Context, ref time.Time, days int, currencies domain.CurrencySet) domain.AggregationResult {
	if len(currencies) == 0 {
		currencies = domain.NewCurrencySet()
	}
	dates := domain.BuildDateList(ref, days)
	snapshots := make([]domain.DatedSnapshot, len(dates))

	var g errgroup.Group
	g.SetLimit(a.maxParallel)

	for i, date := range dates {
		snapshots[i] = domain.DatedSnapshot{Date: date, Rates: domain.RateSnapshot{}}
		g.Go(func() error {
			snapshots[i].Rates = a.fetchSnapshot(ctx, date, currencies)
			return nil // failures stay local to their date
		})
	}
	g.Wait()

	return domain.AggregationResult{Currencies: currencies, Snapshots: snapshots}
}

// AggregateArgs parses `[days] [currency...]` and aggregates. An invalid days token is
// reported and replaced by the default.
func (a *RateAggregator) AggregateArgs(ctx context.Context, ref time.Time, args []string) domain.AggregationResult {
	params, err := domain.ParseExchangeParams(args)
	if err != nil {
		a.metrics.RecordInvalidParam("days")
		a.logger.Warn("Invalid exchange parameter", slog.Any("error", err))
	}
	return a.Aggregate(ctx, ref, params.Days, params.Currencies)
}

func (a *RateAggregator) fetchSnapshot(ctx context.Context, date domain.DateKey, currencies domain.CurrencySet) (snap domain.RateSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Rate fetch panic recovered", slog.String("date", date.String()), slog.Any("panic", r))
			snap = domain.RateSnapshot{}
		}
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	start := time.Now()
	quotes, err := a.provider.FetchDay(fetchCtx, date)
	latency := time.Since(start)

	if err != nil {
		outcome := infra.FetchFailure
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			outcome = infra.FetchTimeout
		}
		a.metrics.RecordFetch(outcome, latency)
		a.logger.Error("Rate fetch failed",
			slog.String("date", date.String()),
			slog.String("outcome", outcome),
			slog.Duration("elapsed", latency),
			slog.Any("error", err),
		)
		return domain.RateSnapshot{}
	}

	a.metrics.RecordFetch(infra.FetchSuccess, latency)
	return domain.NewRateSnapshot(quotes, currencies)
}
