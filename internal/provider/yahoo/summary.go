package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/qwlai/reit-tracker/internal/provider"
)

const summaryPath = "/v10/finance/quoteSummary/"

type summaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
		Error  *apiError       `json:"error"`
	} `json:"quoteSummary"`
}

type summaryResult struct {
	AssetProfile *struct {
		Industry string `json:"industry"`
	} `json:"assetProfile"`
	FundOwnership *struct {
		OwnershipList []ownershipEntry `json:"ownershipList"`
	} `json:"fundOwnership"`
	MajorHoldersBreakdown *struct {
		InsidersPercentHeld     rawValue `json:"insidersPercentHeld"`
		InstitutionsPercentHeld rawValue `json:"institutionsPercentHeld"`
	} `json:"majorHoldersBreakdown"`
	FinancialData *struct {
		DebtToEquity   rawValue `json:"debtToEquity"`
		ReturnOnEquity rawValue `json:"returnOnEquity"`
		ProfitMargins  rawValue `json:"profitMargins"`
	} `json:"financialData"`
	DefaultKeyStatistics *struct {
		BookValue rawValue `json:"bookValue"`
	} `json:"defaultKeyStatistics"`
}

type ownershipEntry struct {
	MaxAge       int      `json:"maxAge"`
	ReportDate   rawValue `json:"reportDate"`
	Organization string   `json:"organization"`
	PctHeld      rawValue `json:"pctHeld"`
	Position     rawValue `json:"position"`
	Value        rawValue `json:"value"`
	PctChange    rawValue `json:"pctChange"`
}

// summary fetches the requested quoteSummary modules for one symbol.
func (c *Client) summary(ctx context.Context, symbol string, modules ...string) (*summaryResult, error) {
	q := url.Values{}
	q.Set("modules", strings.Join(modules, ","))

	var resp summaryResponse
	if err := c.getJSON(ctx, summaryPath+url.PathEscape(symbol), q, &resp); err != nil {
		return nil, fmt.Errorf("%s quoteSummary(%s): %w", symbol, strings.Join(modules, ","), err)
	}
	if err := resp.QuoteSummary.Error.err(); err != nil {
		return nil, fmt.Errorf("%s quoteSummary: %w", symbol, err)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%s quoteSummary: empty result: %w", symbol, ErrNotFound)
	}
	return &resp.QuoteSummary.Result[0], nil
}

// Profiles fetches the asset profile of each symbol. A symbol the provider
// does not know is left out of the map rather than failing the batch.
func (c *Client) Profiles(ctx context.Context, symbols []string) (map[string]provider.AssetProfile, error) {
	out := make(map[string]provider.AssetProfile, len(symbols))
	for _, s := range symbols {
		res, err := c.summary(ctx, s, "assetProfile")
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		if res.AssetProfile == nil {
			continue
		}
		out[s] = provider.AssetProfile{Industry: res.AssetProfile.Industry}
	}
	return out, nil
}

// FundOwnership returns the fund-ownership rows in the provider's order.
// "No fundamentals data" (a not-found answer) yields an empty table.
func (c *Client) FundOwnership(ctx context.Context, symbol string) ([]provider.Ownership, error) {
	res, err := c.summary(ctx, symbol, "fundOwnership")
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if res.FundOwnership == nil {
		return nil, nil
	}
	rows := make([]provider.Ownership, 0, len(res.FundOwnership.OwnershipList))
	for _, e := range res.FundOwnership.OwnershipList {
		rows = append(rows, provider.Ownership{
			MaxAge:       e.MaxAge,
			ReportDate:   time.Unix(int64(e.ReportDate.float()), 0).UTC(),
			Organization: e.Organization,
			PctHeld:      e.PctHeld.float(),
			Position:     int64(e.Position.float()),
			Value:        int64(e.Value.float()),
			PctChange:    e.PctChange.ptr(),
		})
	}
	return rows, nil
}

// MajorHolders returns nil, nil when the provider has no summary for the
// symbol or the breakdown module lacks either percentage.
func (c *Client) MajorHolders(ctx context.Context, symbol string) (*provider.MajorHolders, error) {
	res, err := c.summary(ctx, symbol, "majorHoldersBreakdown")
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	mh := res.MajorHoldersBreakdown
	if mh == nil || mh.InsidersPercentHeld.Raw == nil || mh.InstitutionsPercentHeld.Raw == nil {
		return nil, nil
	}
	return &provider.MajorHolders{
		InsidersPercentHeld:     *mh.InsidersPercentHeld.Raw,
		InstitutionsPercentHeld: *mh.InstitutionsPercentHeld.Raw,
	}, nil
}

// KeyStatistics reads the headline ratios from financialData and defaultKeyStatistics.
func (c *Client) KeyStatistics(ctx context.Context, symbol string) (provider.KeyStatistics, error) {
	res, err := c.summary(ctx, symbol, "financialData", "defaultKeyStatistics")
	if err != nil {
		return provider.KeyStatistics{}, err
	}
	var ks provider.KeyStatistics
	if fd := res.FinancialData; fd != nil {
		ks.DebtToEquity = fd.DebtToEquity.ptr()
		ks.ReturnOnEquity = fd.ReturnOnEquity.ptr()
		ks.ProfitMargin = fd.ProfitMargins.ptr()
	}
	if dk := res.DefaultKeyStatistics; dk != nil {
		ks.BookValue = dk.BookValue.ptr()
	}
	return ks, nil
}
