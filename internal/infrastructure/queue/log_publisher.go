package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/marketly/storefront/internal/core/domain"
)

// LogPublisher writes events to the log. It stands in for a broker when none
// is configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log.With().Str("component", "events").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, e domain.OrderEvent) error {
	p.log.Info().
		Str("type", string(e.Type)).
		Str("order_id", e.OrderID).
		Str("customer_id", e.CustomerID).
		Str("status", string(e.Status)).
		Str("total", e.TotalAmount.String()).
		Strs("seller_ids", e.SellerIDs).
		Time("occurred_at", e.OccurredAt).
		Msg("order event")
	return nil
}
