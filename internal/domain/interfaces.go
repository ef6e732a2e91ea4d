package domain

import (
	"context"
	"time"
)

// RateProvider fetches the raw quotes published for one date.
// Implementations must be safe for concurrent use.
type RateProvider interface {
	FetchDay(ctx context.Context, date DateKey) ([]QuotedRate, error)
}

// RateAggregator builds a multi-day report from raw `[days] [currency...]` arguments,
// normalizing them with ParseExchangeParams.
type RateAggregator interface {
	AggregateArgs(ctx context.Context, ref time.Time, args []string) AggregationResult
}

// ChatLogSink durably appends one audit line per inbound message.
type ChatLogSink interface {
	Append(ctx context.Context, entry ChatLogEntry) error
}

// NameGenerator produces human-readable display labels for peers
type NameGenerator interface {
	NewName() string
	// Suffix returns a short random tag used to disambiguate colliding names
	Suffix() string
}
