package ephemeral

import (
	"context"
	"math/rand/v2"
	"time"
)

// Simulated round-trip times per operation, before scaling.
var delays = map[string]time.Duration{
	"login":               500 * time.Millisecond,
	"register":            500 * time.Millisecond,
	"update_role":         500 * time.Millisecond,
	"logout":              200 * time.Millisecond,
	"current_user":        200 * time.Millisecond,
	"list_products":       500 * time.Millisecond,
	"get_product":         300 * time.Millisecond,
	"create_product":      800 * time.Millisecond,
	"update_product":      600 * time.Millisecond,
	"delete_product":      500 * time.Millisecond,
	"list_my_products":    400 * time.Millisecond,
	"create_order":        1000 * time.Millisecond,
	"list_my_orders":      500 * time.Millisecond,
	"list_seller_orders":  600 * time.Millisecond,
	"update_order_status": 500 * time.Millisecond,
	"upload_file":         1000 * time.Millisecond,
	"delete_file":         500 * time.Millisecond,
}

// Latency shapes the simulated delays. A zero Scale disables them.
type Latency struct {
	Scale  float64
	Jitter time.Duration
}

func (l Latency) duration(op string) time.Duration {
	d := time.Duration(float64(delays[op]) * l.Scale)
	if d <= 0 {
		return 0
	}
	if l.Jitter > 0 {
		d += time.Duration(rand.Int64N(int64(2*l.Jitter)+1)) - l.Jitter
	}
	if d < 0 {
		return 0
	}
	return d
}

// wait blocks for the operation's delay or until ctx is done.
func (l Latency) wait(ctx context.Context, op string) error {
	d := l.duration(op)
	if d == 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
