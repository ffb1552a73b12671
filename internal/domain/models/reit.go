package models

import (
	"encoding/json"
	"sort"
	"time"
)

// TimestampKey is the top-level document field holding the capture instant.
const TimestampKey = "timestamp"

// Snapshot holds the fields read directly from the batched quote/profile fetch.
//
// Fields:
//   - Industry: provider industry with the "REIT—" prefix stripped (e.g., "Retail").
//   - Name: display (long) name of the trust.
//   - MarketCap: market capitalisation in millions, e.g. "2500 M".
//   - Price: current regular-market price.
//   - PriceToBook: price-to-book ratio rounded to 2 decimals.
type Snapshot struct {
	Industry    string  `json:"industry" bson:"industry"`
	Name        string  `json:"name" bson:"name"`
	MarketCap   string  `json:"market_cap" bson:"market_cap"`
	Price       float64 `json:"price" bson:"price"`
	PriceToBook float64 `json:"price_to_book" bson:"price_to_book"`
}

// Holder is one row of the fund-ownership table after the provider's bookkeeping
// columns (maxAge, reportDate, position, value) have been dropped.
type Holder struct {
	Organization string   `json:"organization" bson:"organization"`
	PctHeld      float64  `json:"pctHeld" bson:"pctHeld"` // percentage, 0-100
	PctChange    *float64 `json:"pctChange,omitempty" bson:"pctChange,omitempty"`
}

// Metrics are the fields derived per symbol from provider history, ownership
// and income statements. Nil pointers and empty holders mean "not computable"
// and are omitted from the stored document.
type Metrics struct {
	DayChange   *float64 `json:"day_change,omitempty" bson:"day_change,omitempty"`
	WeekChange  *float64 `json:"week_change,omitempty" bson:"week_change,omitempty"`
	MonthChange *float64 `json:"month_change,omitempty" bson:"month_change,omitempty"`
	YTDChange   *float64 `json:"ytd_change,omitempty" bson:"ytd_change,omitempty"`

	DividendYield float64 `json:"dividend_yield" bson:"dividend_yield"`

	InstitutionalHolders        []Holder `json:"institutional_holders,omitempty" bson:"institutional_holders,omitempty"`
	InsidersHeldPercentage      float64  `json:"insiders_held_percentage" bson:"insiders_held_percentage"`
	InstitutionalHeldPercentage float64  `json:"institutional_held_percentage" bson:"institutional_held_percentage"`

	LastFYFFO *float64 `json:"last_fy_ffo,omitempty" bson:"last_fy_ffo,omitempty"`
	TTMFFO    *float64 `json:"ttm_ffo,omitempty" bson:"ttm_ffo,omitempty"`
}

// KeyRatios are contributed by the key-ratio enrichment step.
type KeyRatios struct {
	DebtToEquity      *float64 `json:"debt_to_equity,omitempty" bson:"debt_to_equity,omitempty"`
	ReturnOnEquity    *float64 `json:"return_on_equity,omitempty" bson:"return_on_equity,omitempty"`
	ProfitMargin      *float64 `json:"profit_margin,omitempty" bson:"profit_margin,omitempty"`
	BookValuePerShare *float64 `json:"book_value_per_share,omitempty" bson:"book_value_per_share,omitempty"`
}

// Record is everything stored under one provider symbol. The embedded structs
// are flattened into a single object in both JSON and BSON.
type Record struct {
	Snapshot  `bson:",inline"`
	Metrics   `bson:",inline"`
	KeyRatios `bson:",inline"`
}

// ReitDocument is the aggregate written once per crawl: one Record per provider
// symbol plus the UTC capture instant shared by all of them.
type ReitDocument struct {
	Timestamp time.Time
	Records   map[string]Record
}

// Symbols returns the record keys in lexical order.
func (d ReitDocument) Symbols() []string {
	out := make([]string, 0, len(d.Records))
	for s := range d.Records {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Clone returns a copy whose Records map can be modified without touching d.
// Pointer fields are shared; callers replace them rather than write through them.
func (d ReitDocument) Clone() ReitDocument {
	out := ReitDocument{Timestamp: d.Timestamp, Records: make(map[string]Record, len(d.Records))}
	for s, r := range d.Records {
		if r.InstitutionalHolders != nil {
			r.InstitutionalHolders = append([]Holder(nil), r.InstitutionalHolders...)
		}
		out.Records[s] = r
	}
	return out
}

// MarshalJSON renders the document in its stored shape:
//
//	{"A17U.SI": {...}, "C38U.SI": {...}, "timestamp": "2024-01-02T03:04:05Z"}
func (d ReitDocument) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(d.Records)+1)
	for s, r := range d.Records {
		m[s] = r
	}
	m[TimestampKey] = d.Timestamp
	return json.Marshal(m)
}
