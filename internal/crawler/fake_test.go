package crawler

import (
	"context"
	"errors"
	"sync"

	"github.com/qwlai/reit-tracker/internal/calc"
	"github.com/qwlai/reit-tracker/internal/domain/models"
	"github.com/qwlai/reit-tracker/internal/provider"
)

// fakeMarket serves fixed provider responses keyed by symbol. Read-only after
// construction apart from the call counters, so it is safe for parallel derivation.
type fakeMarket struct {
	quotes    map[string]provider.Quote
	profiles  map[string]provider.AssetProfile
	history   map[string]map[provider.Window][]provider.Bar
	ownership map[string][]provider.Ownership
	holders   map[string]*provider.MajorHolders
	income    map[string]provider.IncomeStatement

	quotesErr  error
	historyErr map[string]error

	mu           sync.Mutex
	quoteCalls   int
	historyCalls map[string]int
}

var _ provider.MarketData = (*fakeMarket)(nil)

func (f *fakeMarket) Quotes(_ context.Context, symbols []string) (map[string]provider.Quote, error) {
	f.mu.Lock()
	f.quoteCalls++
	f.mu.Unlock()
	if f.quotesErr != nil {
		return nil, f.quotesErr
	}
	out := map[string]provider.Quote{}
	for _, s := range symbols {
		if q, ok := f.quotes[s]; ok {
			out[s] = q
		}
	}
	return out, nil
}

func (f *fakeMarket) Profiles(_ context.Context, symbols []string) (map[string]provider.AssetProfile, error) {
	out := map[string]provider.AssetProfile{}
	for _, s := range symbols {
		if p, ok := f.profiles[s]; ok {
			out[s] = p
		}
	}
	return out, nil
}

func (f *fakeMarket) History(_ context.Context, symbol string, w provider.Window) ([]provider.Bar, error) {
	f.mu.Lock()
	if f.historyCalls == nil {
		f.historyCalls = map[string]int{}
	}
	f.historyCalls[symbol]++
	f.mu.Unlock()
	if err := f.historyErr[symbol]; err != nil {
		return nil, err
	}
	return f.history[symbol][w], nil
}

func (f *fakeMarket) FundOwnership(_ context.Context, symbol string) ([]provider.Ownership, error) {
	return f.ownership[symbol], nil
}

func (f *fakeMarket) MajorHolders(_ context.Context, symbol string) (*provider.MajorHolders, error) {
	return f.holders[symbol], nil
}

func (f *fakeMarket) IncomeStatement(_ context.Context, symbol string) (provider.IncomeStatement, error) {
	is, ok := f.income[symbol]
	if !ok {
		return provider.IncomeStatement{Unavailable: true}, nil
	}
	return is, nil
}

func (f *fakeMarket) Dividends(context.Context, string) (provider.DividendHistory, error) {
	return provider.DividendHistory{}, errors.New("not used by the crawler")
}

func (f *fakeMarket) KeyStatistics(context.Context, string) (provider.KeyStatistics, error) {
	return provider.KeyStatistics{}, errors.New("not used by the crawler")
}

type fakeYields map[string]float64

func (f fakeYields) YieldTTM(_ context.Context, symbol string) (float64, error) {
	y, ok := f[symbol]
	if !ok {
		return 0, errors.New("no yield for " + symbol)
	}
	return y, nil
}

// stampEnricher adds a debt_to_equity of 1 to every record without touching its input.
type stampEnricher struct{ err error }

func (e stampEnricher) Enrich(_ context.Context, doc models.ReitDocument) (models.ReitDocument, error) {
	if e.err != nil {
		return models.ReitDocument{}, e.err
	}
	out := doc.Clone()
	for s, r := range out.Records {
		r.DebtToEquity = calc.Ptr(1)
		out.Records[s] = r
	}
	return out, nil
}

type recordingSink struct {
	docs []models.ReitDocument
	err  error
}

func (s *recordingSink) Insert(_ context.Context, doc models.ReitDocument) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.docs = append(s.docs, doc)
	return "doc-1", nil
}

func bars(opens ...float64) []provider.Bar {
	out := make([]provider.Bar, len(opens))
	for i, o := range opens {
		out[i] = provider.Bar{Open: o, Close: o}
	}
	return out
}

func f64(v float64) *float64 { return &v }

// twoSymbolMarket is the A/B scenario: both symbols quote fine, only A has a
// fund-ownership table and an income statement.
func twoSymbolMarket() *fakeMarket {
	return &fakeMarket{
		quotes: map[string]provider.Quote{
			"A.SI": {Symbol: "A.SI", LongName: "Alpha REIT", MarketCap: 2_500_000_000, RegularMarketPrice: 2.88, PriceToBook: 1.1849},
			"B.SI": {Symbol: "B.SI", LongName: "Beta REIT", MarketCap: 999_999, RegularMarketPrice: 1.00, PriceToBook: 0.876},
		},
		profiles: map[string]provider.AssetProfile{
			"A.SI": {Industry: "REIT—Industrial"},
			"B.SI": {Industry: "Office"},
		},
		history: map[string]map[provider.Window][]provider.Bar{
			"A.SI": {
				provider.OneDay:     bars(2.80, 2.90),
				provider.FiveDays:   bars(3.00, 2.90, 2.85),
				provider.OneMonth:   bars(2.40),
				provider.YearToDate: bars(2.88, 2.70),
			},
			"B.SI": {
				provider.OneDay:     bars(1.00),
				provider.FiveDays:   bars(0.80),
				provider.OneMonth:   bars(0),
				provider.YearToDate: bars(1.25),
			},
		},
		ownership: map[string][]provider.Ownership{
			"A.SI": {
				{Organization: "F1", PctHeld: 0.1234, Position: 1, Value: 2, PctChange: f64(0.5)},
				{Organization: "F2", PctHeld: 0.05},
				{Organization: "F3", PctHeld: 0.04},
				{Organization: "F4", PctHeld: 0.03},
				{Organization: "F5", PctHeld: 0.02},
				{Organization: "F6", PctHeld: 0.01},
			},
		},
		holders: map[string]*provider.MajorHolders{
			"A.SI": {InsidersPercentHeld: 0.18557, InstitutionsPercentHeld: 0.2501},
			"B.SI": {InsidersPercentHeld: 0.5, InstitutionsPercentHeld: 0.1},
		},
		income: map[string]provider.IncomeStatement{
			"A.SI": {Rows: []provider.IncomeRow{
				{PeriodType: "12M", OperatingIncome: f64(50), GrossProfit: f64(100)},
				{PeriodType: "12M", OperatingIncome: f64(90), GrossProfit: f64(120)},
				{PeriodType: "TTM", OperatingIncome: f64(100), GrossProfit: f64(125)},
			}},
		},
	}
}
