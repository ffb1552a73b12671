// Package crawler runs the REIT aggregation pipeline:
// resolve tickers, fetch snapshots, derive metrics, assemble, write.
package crawler

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qwlai/reit-tracker/internal/domain/models"
	"github.com/qwlai/reit-tracker/internal/logger"
	"github.com/qwlai/reit-tracker/internal/provider"
)

// LogTimeLayout is the "DD-Mon-YYYY HH:MM:SS.microseconds" layout used when
// logging the capture instant.
const LogTimeLayout = "02-Jan-2006 15:04:05.000000"

// DividendYielder computes a trailing-twelve-month dividend yield for a provider symbol.
type DividendYielder interface {
	YieldTTM(ctx context.Context, symbol string) (float64, error)
}

// Enricher returns a copy of doc carrying additional per-symbol fields.
// It must not modify doc.
type Enricher interface {
	Enrich(ctx context.Context, doc models.ReitDocument) (models.ReitDocument, error)
}

// Sink persists one document per call and returns its id.
type Sink interface {
	Insert(ctx context.Context, doc models.ReitDocument) (string, error)
}

// Options tune a Crawler.
//
// Fields:
//   - MarketSuffix: appended to every ticker (".SI").
//   - Parallel: symbols derived concurrently; values below 1 mean sequential.
type Options struct {
	MarketSuffix string
	Parallel     int
}

// Crawler wires the market-data provider and the collaborators into one run.
type Crawler struct {
	md     provider.MarketData
	yields DividendYielder
	ratios Enricher
	sink   Sink
	opts   Options

	// now is the clock used for the document timestamp; swapped in tests.
	now func() time.Time
}

// New constructs a Crawler.
func New(md provider.MarketData, yields DividendYielder, ratios Enricher, sink Sink, opts Options) *Crawler {
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	return &Crawler{md: md, yields: yields, ratios: ratios, sink: sink, opts: opts, now: time.Now}
}

// Run builds the document for tickers and inserts it into the sink.
// Any failure aborts the run before the insert.
func (c *Crawler) Run(ctx context.Context, tickers []string) (models.ReitDocument, error) {
	doc, err := c.Build(ctx, tickers)
	if err != nil {
		return models.ReitDocument{}, err
	}

	id, err := c.sink.Insert(ctx, doc)
	if err != nil {
		return models.ReitDocument{}, fmt.Errorf("insert document: %w", err)
	}
	logger.L().Info().
		Str("id", id).
		Int("symbols", len(doc.Records)).
		Str("timestamp", doc.Timestamp.Format(LogTimeLayout)).
		Msg("record inserted")
	return doc, nil
}

// Build runs every pipeline stage except the write.
//
// Behavior:
//   - Resolves tickers to provider symbols.
//   - Fetches all snapshots in one batch (fatal on failure or a missing symbol).
//   - Derives metrics per symbol, up to opts.Parallel at a time; the first
//     error cancels the remaining symbols.
//   - Passes the assembled document through the key-ratio enricher.
//   - Stamps the single UTC capture instant.
func (c *Crawler) Build(ctx context.Context, tickers []string) (models.ReitDocument, error) {
	symbols := Resolve(tickers, c.opts.MarketSuffix)
	logger.L().Info().Int("symbols", len(symbols)).Int("parallel", c.opts.Parallel).Msg("crawl start")

	snaps, err := FetchSnapshots(ctx, c.md, symbols)
	if err != nil {
		return models.ReitDocument{}, err
	}

	metrics, err := c.deriveAll(ctx, symbols, snaps)
	if err != nil {
		return models.ReitDocument{}, err
	}

	doc := Assemble(symbols, snaps, metrics)

	doc, err = c.ratios.Enrich(ctx, doc)
	if err != nil {
		return models.ReitDocument{}, fmt.Errorf("key ratios: %w", err)
	}

	doc.Timestamp = c.now().UTC()
	return doc, nil
}

// deriveAll derives metrics for every symbol. Results are stored by index,
// so the outcome does not depend on completion order. The first failure or a
// cancelled ctx stops further symbols from being launched.
func (c *Crawler) deriveAll(ctx context.Context, symbols []string, snaps map[string]models.Snapshot) ([]models.Metrics, error) {
	out := make([]models.Metrics, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	// stop runs before a failing worker frees its slot, so the launch loop
	// always sees the cancellation once it gets that slot.
	gctx, stop := context.WithCancel(gctx)
	defer stop()
	sem := make(chan struct{}, c.opts.Parallel)

launch:
	for i, sym := range symbols {
		idx := i
		s := sym
		select {
		case sem <- struct{}{}:
		case <-gctx.Done():
			break launch
		}
		if gctx.Err() != nil {
			<-sem
			break launch
		}

		g.Go(func() error {
			defer func() { <-sem }()
			start := time.Now()
			log := logger.ForSymbol(s)

			m, err := c.deriveMetrics(gctx, s, snaps[s], log)
			if err != nil {
				log.Error().Err(err).Msg("derive failed")
				stop()
				return err
			}
			out[idx] = m
			log.Info().Int("idx", idx+1).Int("total", len(symbols)).Dur("elapsed", time.Since(start)).Msg("symbol derived")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Assemble merges snapshots and derived metrics into one document keyed by
// provider symbol. metrics is parallel to symbols.
func Assemble(symbols []string, snaps map[string]models.Snapshot, metrics []models.Metrics) models.ReitDocument {
	doc := models.ReitDocument{Records: make(map[string]models.Record, len(symbols))}
	for i, s := range symbols {
		doc.Records[s] = models.Record{Snapshot: snaps[s], Metrics: metrics[i]}
	}
	return doc
}
