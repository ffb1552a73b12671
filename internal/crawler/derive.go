package crawler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/qwlai/reit-tracker/internal/calc"
	"github.com/qwlai/reit-tracker/internal/domain/models"
	"github.com/qwlai/reit-tracker/internal/provider"
)

// maxHolders is how many fund-ownership rows are kept, in provider order.
const maxHolders = 5

// priceWindows lists the lookbacks behind the four price-change fields.
var priceWindows = []struct {
	window provider.Window
	field  string
	set    func(m *models.Metrics, v *float64)
}{
	{provider.OneDay, "day_change", func(m *models.Metrics, v *float64) { m.DayChange = v }},
	{provider.FiveDays, "week_change", func(m *models.Metrics, v *float64) { m.WeekChange = v }},
	{provider.OneMonth, "month_change", func(m *models.Metrics, v *float64) { m.MonthChange = v }},
	{provider.YearToDate, "ytd_change", func(m *models.Metrics, v *float64) { m.YTDChange = v }},
}

// deriveMetrics computes every derived field for one symbol.
func (c *Crawler) deriveMetrics(ctx context.Context, symbol string, snap models.Snapshot, log zerolog.Logger) (models.Metrics, error) {
	var m models.Metrics

	if err := c.setPriceChanges(ctx, symbol, snap.Price, &m, log); err != nil {
		return m, err
	}

	y, err := c.yields.YieldTTM(ctx, symbol)
	if err != nil {
		return m, fmt.Errorf("%s dividend yield: %w", symbol, err)
	}
	m.DividendYield = y

	if err := c.setStockDistribution(ctx, symbol, &m, log); err != nil {
		return m, err
	}
	if err := c.setFFO(ctx, symbol, &m, log); err != nil {
		return m, err
	}
	return m, nil
}

// setPriceChanges fills the four price-change fields. Each window uses the
// opening price of the first row the provider returns for it. A zero opening
// price leaves that field unset.
func (c *Crawler) setPriceChanges(ctx context.Context, symbol string, price float64, m *models.Metrics, log zerolog.Logger) error {
	for _, pw := range priceWindows {
		bars, err := c.md.History(ctx, symbol, pw.window)
		if err != nil {
			return fmt.Errorf("%s history %s: %w", symbol, pw.window, err)
		}
		if len(bars) == 0 {
			return fmt.Errorf("%s history %s: %w", symbol, pw.window, ErrEmptyHistory)
		}
		v, ok := calc.PercentChange(price, bars[0].Open)
		if !ok {
			log.Warn().Str("field", pw.field).Float64("open", bars[0].Open).Msg("price change omitted")
			continue
		}
		pw.set(m, calc.Ptr(v))
	}
	return nil
}

// HoldersFromOwnership keeps the first maxHolders rows in provider order,
// drops the bookkeeping columns and turns the held fraction into a percentage.
// An empty table yields nil so the field is omitted.
func HoldersFromOwnership(rows []provider.Ownership) []models.Holder {
	if len(rows) == 0 {
		return nil
	}
	if len(rows) > maxHolders {
		rows = rows[:maxHolders]
	}
	out := make([]models.Holder, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Holder{
			Organization: r.Organization,
			PctHeld:      calc.Percent(r.PctHeld),
			PctChange:    r.PctChange,
		})
	}
	return out
}

func (c *Crawler) setStockDistribution(ctx context.Context, symbol string, m *models.Metrics, log zerolog.Logger) error {
	rows, err := c.md.FundOwnership(ctx, symbol)
	if err != nil {
		return fmt.Errorf("%s fund ownership: %w", symbol, err)
	}
	m.InstitutionalHolders = HoldersFromOwnership(rows)
	if m.InstitutionalHolders == nil {
		log.Debug().Msg("no fund ownership, institutional_holders omitted")
	}

	mh, err := c.md.MajorHolders(ctx, symbol)
	if err != nil {
		return fmt.Errorf("%s major holders: %w", symbol, err)
	}
	if mh == nil {
		return fmt.Errorf("%s: %w", symbol, ErrMissingMajorHolders)
	}
	m.InsidersHeldPercentage = calc.Percent(mh.InsidersPercentHeld)
	m.InstitutionalHeldPercentage = calc.Percent(mh.InstitutionsPercentHeld)
	return nil
}

// FFO returns round(OperatingIncome / GrossProfit * 100, 2) for one income
// row; ok is false when either input is missing or the ratio is not finite.
func FFO(row provider.IncomeRow) (float64, bool) {
	if row.OperatingIncome == nil || row.GrossProfit == nil {
		return 0, false
	}
	return calc.RatioPercent(*row.OperatingIncome, *row.GrossProfit)
}

// setFFO computes last_fy_ffo from the newest fiscal-year row and ttm_ffo
// from the trailing row, each independently optional. Rows are placed by
// period type, so a lone trailing row only fills ttm_ffo.
func (c *Crawler) setFFO(ctx context.Context, symbol string, m *models.Metrics, log zerolog.Logger) error {
	is, err := c.md.IncomeStatement(ctx, symbol)
	if err != nil {
		return fmt.Errorf("%s income statement: %w", symbol, err)
	}
	if is.Unavailable {
		log.Debug().Msg("income statement unavailable, ffo omitted")
		return nil
	}

	lastFY, ttm := ffoRows(is.Rows)
	if lastFY != nil {
		if v, ok := FFO(*lastFY); ok {
			m.LastFYFFO = calc.Ptr(v)
		} else {
			log.Debug().Str("field", "last_fy_ffo").Msg("ffo not computable, omitted")
		}
	}
	if ttm != nil {
		if v, ok := FFO(*ttm); ok {
			m.TTMFFO = calc.Ptr(v)
		} else {
			log.Debug().Str("field", "ttm_ffo").Msg("ffo not computable, omitted")
		}
	}
	return nil
}

// ffoRows picks the last fiscal-year row and the last trailing row.
func ffoRows(rows []provider.IncomeRow) (lastFY, ttm *provider.IncomeRow) {
	for i := range rows {
		if rows[i].PeriodType == provider.PeriodTrailing {
			ttm = &rows[i]
		} else {
			lastFY = &rows[i]
		}
	}
	return lastFY, ttm
}
