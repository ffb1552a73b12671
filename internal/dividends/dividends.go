// Package dividends computes trailing-twelve-month dividend yields.
package dividends

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qwlai/reit-tracker/internal/calc"
	"github.com/qwlai/reit-tracker/internal/provider"
)

// ErrNoPrice is returned when the provider reports no price to measure the yield against.
var ErrNoPrice = errors.New("no current price")

// Source is the slice of provider.MarketData the yielder needs.
type Source interface {
	Dividends(ctx context.Context, symbol string) (provider.DividendHistory, error)
}

// Yielder computes sum(dividends paid in the last 12 months) / price * 100.
type Yielder struct {
	src Source
	now func() time.Time
}

func NewYielder(src Source) *Yielder {
	return &Yielder{src: src, now: time.Now}
}

// YieldTTM returns the trailing-twelve-month yield in percent, rounded to 2
// decimals. A symbol that paid nothing in the window yields 0.
func (y *Yielder) YieldTTM(ctx context.Context, symbol string) (float64, error) {
	h, err := y.src.Dividends(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("%s dividends: %w", symbol, err)
	}
	if h.Price <= 0 {
		return 0, fmt.Errorf("%s: %w", symbol, ErrNoPrice)
	}

	cutoff := y.now().AddDate(-1, 0, 0)
	var total float64
	for _, d := range h.Dividends {
		if d.Date.Before(cutoff) {
			continue
		}
		total += d.Amount
	}
	return calc.Round2(total / h.Price * 100), nil
}
