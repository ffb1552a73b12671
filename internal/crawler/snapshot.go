package crawler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/qwlai/reit-tracker/internal/calc"
	"github.com/qwlai/reit-tracker/internal/domain/models"
	"github.com/qwlai/reit-tracker/internal/logger"
	"github.com/qwlai/reit-tracker/internal/provider"
)

const reitIndustryPrefix = "REIT—"

// StripREITPrefix removes a leading "REIT—" from the provider industry.
// Only an exact, case-sensitive prefix is removed.
func StripREITPrefix(industry string) string {
	return strings.TrimPrefix(industry, reitIndustryPrefix)
}

// FormatMarketCap renders a raw market cap in whole millions, e.g. 2_500_000_000 -> "2500 M".
func FormatMarketCap(marketCap int64) string {
	return strconv.FormatInt(marketCap/1_000_000, 10) + " M"
}

// FetchSnapshots issues one batched profile request and one batched quote
// request for all symbols and maps each symbol to its Snapshot.
//
// Errors:
//   - ErrFetch when either batched call fails.
//   - ErrSymbolMissing when any symbol is absent from either response.
func FetchSnapshots(ctx context.Context, md provider.MarketData, symbols []string) (map[string]models.Snapshot, error) {
	profiles, err := md.Profiles(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("%w: profiles: %w", ErrFetch, err)
	}
	quotes, err := md.Quotes(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("%w: quotes: %w", ErrFetch, err)
	}

	var missing []string
	out := make(map[string]models.Snapshot, len(symbols))
	for _, s := range symbols {
		p, okP := profiles[s]
		q, okQ := quotes[s]
		if !okP || !okQ {
			missing = append(missing, s)
			continue
		}
		out[s] = models.Snapshot{
			Industry:    StripREITPrefix(p.Industry),
			Name:        q.LongName,
			MarketCap:   FormatMarketCap(q.MarketCap),
			Price:       q.RegularMarketPrice,
			PriceToBook: calc.Round2(q.PriceToBook),
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolMissing, strings.Join(missing, ", "))
	}

	logger.L().Info().Int("symbols", len(out)).Msg("snapshots fetched")
	return out, nil
}
