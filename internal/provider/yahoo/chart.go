package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/qwlai/reit-tracker/internal/provider"
)

const chartPath = "/v8/finance/chart/"

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open  []*float64 `json:"open"`
			High  []*float64 `json:"high"`
			Low   []*float64 `json:"low"`
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
	Events struct {
		Dividends map[string]struct {
			Amount float64 `json:"amount"`
			Date   int64   `json:"date"`
		} `json:"dividends"`
	} `json:"events"`
}

func (c *Client) chart(ctx context.Context, symbol string, q url.Values) (*chartResult, error) {
	var resp chartResponse
	if err := c.getJSON(ctx, chartPath+url.PathEscape(symbol), q, &resp); err != nil {
		return nil, fmt.Errorf("%s chart: %w", symbol, err)
	}
	if err := resp.Chart.Error.err(); err != nil {
		return nil, fmt.Errorf("%s chart: %w", symbol, err)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s chart: empty result: %w", symbol, ErrNotFound)
	}
	return &resp.Chart.Result[0], nil
}

// History returns the daily bars for window w, oldest first. Bars whose open
// is null (halted or not yet traded) are skipped.
func (c *Client) History(ctx context.Context, symbol string, w provider.Window) ([]provider.Bar, error) {
	q := url.Values{}
	q.Set("range", string(w))
	q.Set("interval", "1d")

	res, err := c.chart(ctx, symbol, q)
	if err != nil {
		return nil, err
	}
	if len(res.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := res.Indicators.Quote[0]

	at := func(xs []*float64, i int) float64 {
		if i < len(xs) && xs[i] != nil {
			return *xs[i]
		}
		return 0
	}

	bars := make([]provider.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(quote.Open) || quote.Open[i] == nil {
			continue
		}
		bars = append(bars, provider.Bar{
			Time:  time.Unix(ts, 0).UTC(),
			Open:  *quote.Open[i],
			High:  at(quote.High, i),
			Low:   at(quote.Low, i),
			Close: at(quote.Close, i),
		})
	}
	return bars, nil
}

// Dividends returns the distributions paid over the last year, oldest first,
// together with the current regular-market price.
func (c *Client) Dividends(ctx context.Context, symbol string) (provider.DividendHistory, error) {
	q := url.Values{}
	q.Set("range", "1y")
	q.Set("interval", "1d")
	q.Set("events", "div")

	res, err := c.chart(ctx, symbol, q)
	if err != nil {
		return provider.DividendHistory{}, err
	}
	out := provider.DividendHistory{Price: res.Meta.RegularMarketPrice}
	for _, d := range res.Events.Dividends {
		out.Dividends = append(out.Dividends, provider.Dividend{
			Date:   time.Unix(d.Date, 0).UTC(),
			Amount: d.Amount,
		})
	}
	sort.Slice(out.Dividends, func(i, j int) bool {
		return out.Dividends[i].Date.Before(out.Dividends[j].Date)
	})
	return out, nil
}
