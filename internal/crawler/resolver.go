package crawler

// Resolve maps short tickers to provider symbols by appending the market
// suffix, preserving order. Tickers are not validated; a malformed one
// surfaces later as a fetch failure.
func Resolve(tickers []string, suffix string) []string {
	out := make([]string, len(tickers))
	for i, t := range tickers {
		out[i] = t + suffix
	}
	return out
}
