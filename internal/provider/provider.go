// Package provider defines the market-data capability consumed by the crawler.
//
// Every call returns a fixed, typed schema so the crawler never reaches into
// loosely shaped provider payloads. Optional provider values are pointers.
package provider

import (
	"context"
	"time"
)

// Window is a historical-price lookback understood by the provider.
type Window string

const (
	OneDay     Window = "1d"
	FiveDays   Window = "5d"
	OneMonth   Window = "1mo"
	YearToDate Window = "ytd" // the provider's default history range
)

// Quote is the subset of the batched quote response the crawler reads.
type Quote struct {
	Symbol             string
	LongName           string
	MarketCap          int64
	RegularMarketPrice float64
	PriceToBook        float64
}

// AssetProfile is the subset of the asset-profile module the crawler reads.
type AssetProfile struct {
	Industry string
}

// Bar is one row of a historical price series.
type Bar struct {
	Time  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Ownership is one row of the fund-ownership table, in provider order.
type Ownership struct {
	MaxAge       int
	ReportDate   time.Time
	Organization string
	PctHeld      float64 // fraction, 0-1
	Position     int64
	Value        int64
	PctChange    *float64
}

// MajorHolders is the major-holders breakdown summary.
type MajorHolders struct {
	InsidersPercentHeld     float64 // fraction, 0-1
	InstitutionsPercentHeld float64 // fraction, 0-1
}

// Income statement period types.
const (
	PeriodAnnual   = "12M"
	PeriodTrailing = "TTM"
)

// IncomeRow is one period of the income statement.
type IncomeRow struct {
	AsOfDate        time.Time
	PeriodType      string // PeriodAnnual or PeriodTrailing
	OperatingIncome *float64
	GrossProfit     *float64
}

// IncomeStatement holds the periods ordered oldest to newest; when a trailing
// row exists it is last. Unavailable is the provider's "no statement" status.
type IncomeStatement struct {
	Unavailable bool
	Rows        []IncomeRow
}

// Dividend is one cash distribution.
type Dividend struct {
	Date   time.Time
	Amount float64
}

// DividendHistory is the trailing-year distribution record plus the price it is measured against.
type DividendHistory struct {
	Price     float64
	Dividends []Dividend
}

// KeyStatistics are the provider's headline ratios for a symbol.
type KeyStatistics struct {
	DebtToEquity   *float64
	ReturnOnEquity *float64 // fraction
	ProfitMargin   *float64 // fraction
	BookValue      *float64
}

// MarketData is the full capability the crawler and its collaborators consume.
type MarketData interface {
	// Quotes returns one quote per requested symbol in a single batched call.
	Quotes(ctx context.Context, symbols []string) (map[string]Quote, error)
	// Profiles returns the asset profile of every requested symbol.
	Profiles(ctx context.Context, symbols []string) (map[string]AssetProfile, error)
	// History returns the daily bars of the given window, oldest first.
	History(ctx context.Context, symbol string, w Window) ([]Bar, error)
	// FundOwnership returns the fund-ownership table; empty means no data.
	FundOwnership(ctx context.Context, symbol string) ([]Ownership, error)
	// MajorHolders returns nil when the provider has no summary for the symbol.
	MajorHolders(ctx context.Context, symbol string) (*MajorHolders, error)
	IncomeStatement(ctx context.Context, symbol string) (IncomeStatement, error)
	Dividends(ctx context.Context, symbol string) (DividendHistory, error)
	KeyStatistics(ctx context.Context, symbol string) (KeyStatistics, error)
}
