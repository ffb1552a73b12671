package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/qwlai/reit-tracker/internal/provider"
)

const (
	timeseriesPath = "/ws/fundamentals-timeseries/v1/finance/timeseries/"
	// earliest period requested; matches the provider's own default lower bound.
	timeseriesStart = 493590046
)

var incomeTypes = []string{
	"annualOperatingIncome",
	"annualGrossProfit",
	"trailingOperatingIncome",
	"trailingGrossProfit",
}

type timeseriesResponse struct {
	Timeseries struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *apiError                    `json:"error"`
	} `json:"timeseries"`
}

type timeseriesMeta struct {
	Type []string `json:"type"`
}

type timeseriesPoint struct {
	AsOfDate      string   `json:"asOfDate"`
	PeriodType    string   `json:"periodType"`
	ReportedValue rawValue `json:"reportedValue"`
}

// IncomeStatement returns the annual periods oldest to newest followed by the
// trailing-twelve-month period. A symbol with no reported data at all comes
// back with Unavailable set.
func (c *Client) IncomeStatement(ctx context.Context, symbol string) (provider.IncomeStatement, error) {
	q := url.Values{}
	q.Set("type", strings.Join(incomeTypes, ","))
	q.Set("period1", strconv.Itoa(timeseriesStart))
	q.Set("period2", strconv.FormatInt(c.now().Unix(), 10))

	var resp timeseriesResponse
	if err := c.getJSON(ctx, timeseriesPath+url.PathEscape(symbol), q, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return provider.IncomeStatement{Unavailable: true}, nil
		}
		return provider.IncomeStatement{}, fmt.Errorf("%s timeseries: %w", symbol, err)
	}
	if err := resp.Timeseries.Error.err(); err != nil {
		return provider.IncomeStatement{}, fmt.Errorf("%s timeseries: %w", symbol, err)
	}

	type key struct {
		trailing bool
		date     string
	}
	rows := map[key]*provider.IncomeRow{}

	for _, r := range resp.Timeseries.Result {
		var meta timeseriesMeta
		if raw, ok := r["meta"]; !ok || json.Unmarshal(raw, &meta) != nil || len(meta.Type) == 0 {
			continue
		}
		typ := meta.Type[0]
		raw, ok := r[typ]
		if !ok {
			continue
		}
		var points []*timeseriesPoint
		if err := json.Unmarshal(raw, &points); err != nil {
			return provider.IncomeStatement{}, fmt.Errorf("%s timeseries %s: %w", symbol, typ, err)
		}

		trailing := strings.HasPrefix(typ, "trailing")
		field := strings.TrimPrefix(strings.TrimPrefix(typ, "trailing"), "annual")

		for _, p := range points {
			if p == nil || p.ReportedValue.Raw == nil {
				continue
			}
			d, err := time.Parse("2006-01-02", p.AsOfDate)
			if err != nil {
				return provider.IncomeStatement{}, fmt.Errorf("%s timeseries %s: asOfDate %q: %w", symbol, typ, p.AsOfDate, err)
			}
			k := key{trailing: trailing, date: p.AsOfDate}
			row, ok := rows[k]
			if !ok {
				pt := provider.PeriodAnnual
				if trailing {
					pt = provider.PeriodTrailing
				}
				row = &provider.IncomeRow{AsOfDate: d, PeriodType: pt}
				rows[k] = row
			}
			switch field {
			case "OperatingIncome":
				row.OperatingIncome = p.ReportedValue.ptr()
			case "GrossProfit":
				row.GrossProfit = p.ReportedValue.ptr()
			}
		}
	}

	if len(rows) == 0 {
		return provider.IncomeStatement{Unavailable: true}, nil
	}

	var annual, ttm []provider.IncomeRow
	for k, r := range rows {
		if k.trailing {
			ttm = append(ttm, *r)
		} else {
			annual = append(annual, *r)
		}
	}
	byDate := func(xs []provider.IncomeRow) {
		sort.Slice(xs, func(i, j int) bool { return xs[i].AsOfDate.Before(xs[j].AsOfDate) })
	}
	byDate(annual)
	byDate(ttm)

	out := provider.IncomeStatement{Rows: annual}
	if len(ttm) > 0 {
		out.Rows = append(out.Rows, ttm[len(ttm)-1])
	}
	return out, nil
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
