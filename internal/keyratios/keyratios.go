// Package keyratios enriches a REIT document with the provider's headline ratios.
package keyratios

import (
	"context"
	"fmt"

	"github.com/qwlai/reit-tracker/internal/calc"
	"github.com/qwlai/reit-tracker/internal/domain/models"
	"github.com/qwlai/reit-tracker/internal/logger"
	"github.com/qwlai/reit-tracker/internal/provider"
)

// Source is the slice of provider.MarketData the enricher needs.
type Source interface {
	KeyStatistics(ctx context.Context, symbol string) (provider.KeyStatistics, error)
}

// Enricher adds debt_to_equity, return_on_equity, profit_margin and
// book_value_per_share to every record. Ratios the provider does not report
// stay unset.
type Enricher struct {
	src Source
}

func NewEnricher(src Source) *Enricher {
	return &Enricher{src: src}
}

// Enrich returns an enriched copy of doc; doc itself is left untouched.
func (e *Enricher) Enrich(ctx context.Context, doc models.ReitDocument) (models.ReitDocument, error) {
	out := doc.Clone()
	for _, sym := range out.Symbols() {
		ks, err := e.src.KeyStatistics(ctx, sym)
		if err != nil {
			return models.ReitDocument{}, fmt.Errorf("%s key statistics: %w", sym, err)
		}
		r := out.Records[sym]
		r.KeyRatios = FromStatistics(ks)
		out.Records[sym] = r
	}
	logger.L().Debug().Int("symbols", len(out.Records)).Msg("key ratios merged")
	return out, nil
}

// FromStatistics converts provider statistics into stored ratios: fractions
// become percentages, everything is rounded to 2 decimals.
func FromStatistics(ks provider.KeyStatistics) models.KeyRatios {
	var kr models.KeyRatios
	if ks.DebtToEquity != nil {
		kr.DebtToEquity = calc.Ptr(calc.Round2(*ks.DebtToEquity))
	}
	if ks.ReturnOnEquity != nil {
		kr.ReturnOnEquity = calc.Ptr(calc.Percent(*ks.ReturnOnEquity))
	}
	if ks.ProfitMargin != nil {
		kr.ProfitMargin = calc.Ptr(calc.Percent(*ks.ProfitMargin))
	}
	if ks.BookValue != nil {
		kr.BookValuePerShare = calc.Ptr(calc.Round2(*ks.BookValue))
	}
	return kr
}
