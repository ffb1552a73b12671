package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	finance "github.com/piquette/finance-go"

	"github.com/qwlai/reit-tracker/internal/provider"
)

const quotePath = "/v7/finance/quote"

// quoteResponse is the v7 batched quote envelope; rows decode into
// finance-go's Equity so the field mapping matches that library.
type quoteResponse struct {
	QuoteResponse struct {
		Result []*finance.Equity `json:"result"`
		Error  *apiError         `json:"error"`
	} `json:"quoteResponse"`
}

// Quotes issues one batched equity-quote request covering every symbol,
// sharing the session cookie and crumb with the other endpoints.
// Symbols the provider did not return are simply absent from the map.
func (c *Client) Quotes(ctx context.Context, symbols []string) (map[string]provider.Quote, error) {
	q := url.Values{}
	q.Set("symbols", strings.Join(symbols, ","))

	var resp quoteResponse
	if err := c.getJSON(ctx, quotePath, q, &resp); err != nil {
		return nil, fmt.Errorf("list equities: %w", err)
	}
	if err := resp.QuoteResponse.Error.err(); err != nil {
		return nil, fmt.Errorf("list equities: %w", err)
	}

	out := make(map[string]provider.Quote, len(resp.QuoteResponse.Result))
	for _, e := range resp.QuoteResponse.Result {
		if e == nil || e.Symbol == "" {
			continue
		}
		out[e.Symbol] = provider.Quote{
			Symbol:             e.Symbol,
			LongName:           e.LongName,
			MarketCap:          int64(e.MarketCap),
			RegularMarketPrice: e.RegularMarketPrice,
			PriceToBook:        e.PriceToBook,
		}
	}
	return out, nil
}
