package search

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/ports"
)

// Config bounds the cost of a dispatch.
type Config struct {
	ShallowMaxResults int           `yaml:"shallowMaxResults"`
	DeepMaxResults    int           `yaml:"deepMaxResults"`
	DeepFloor         int           `yaml:"deepFloor"`
	DeepPrefix        int           `yaml:"deepPrefix"`
	HostCap           int           `yaml:"hostCap"`
	Workers           int           `yaml:"workers"`
	CallTimeout       time.Duration `yaml:"callTimeout"`
	IncludeDomains    []string      `yaml:"includeDomains"`
}

// DefaultConfig mirrors the production cost settings.
func DefaultConfig() Config {
	return Config{
		ShallowMaxResults: 5,
		DeepMaxResults:    8,
		DeepFloor:         100,
		DeepPrefix:        5,
		HostCap:           15,
		Workers:           4,
		CallTimeout:       30 * time.Second,
	}
}

// Dispatcher runs the shallow pass, the conditional deep pass and the
// per-host cap against a single provider.
type Dispatcher struct {
	provider ports.SearchProvider
	cfg      Config
	logger   *slog.Logger
}

// NewDispatcher wires a provider; zero config fields fall back to defaults.
func NewDispatcher(provider ports.SearchProvider, cfg Config, logger *slog.Logger) *Dispatcher {
	def := DefaultConfig()
	if cfg.ShallowMaxResults <= 0 {
		cfg.ShallowMaxResults = def.ShallowMaxResults
	}
	if cfg.DeepMaxResults <= 0 {
		cfg.DeepMaxResults = def.DeepMaxResults
	}
	if cfg.DeepFloor <= 0 {
		cfg.DeepFloor = def.DeepFloor
	}
	if cfg.DeepPrefix <= 0 {
		cfg.DeepPrefix = def.DeepPrefix
	}
	if cfg.HostCap <= 0 {
		cfg.HostCap = def.HostCap
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}
	return &Dispatcher{provider: provider, cfg: cfg, logger: logger}
}

// Dispatch executes queries and returns the merged, host-capped hits.
// Individual query failures never fail the dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, queries []string) []domain.Hit {
	d.info("search dispatch", "provider", d.provider.Name(), "queries", len(queries))

	hits := d.runPass(ctx, queries, ports.DepthShallow, d.cfg.ShallowMaxResults, false)
	d.info("shallow pass done", "hits", len(hits))

	if len(hits) < d.cfg.DeepFloor {
		prefix := queries[:min(d.cfg.DeepPrefix, len(queries))]
		deep := d.runPass(ctx, prefix, ports.DepthDeep, d.cfg.DeepMaxResults, true)
		hits = append(hits, deep...)
		d.info("deep pass done", "queries", len(prefix), "hits", len(deep), "total", len(hits))
	}

	capped := CapPerHost(hits, d.cfg.HostCap)
	d.info("host cap applied", "cap", d.cfg.HostCap, "before", len(hits), "after", len(capped))
	return capped
}

// runPass fans queries out over a bounded pool. Each query writes into its
// own slot so the merged order is the query order, not arrival order.
func (d *Dispatcher) runPass(ctx context.Context, queries []string, depth ports.SearchDepth, maxResults int, raw bool) []domain.Hit {
	slots := make([][]domain.Hit, len(queries))

	var g errgroup.Group
	g.SetLimit(d.cfg.Workers)
	for i, q := range queries {
		g.Go(func() error {
			slots[i] = d.searchOne(ctx, ports.SearchRequest{
				Query:           q,
				Depth:           depth,
				MaxResults:      maxResults,
				FetchRawContent: raw,
				IncludeDomains:  d.cfg.IncludeDomains,
			})
			return nil
		})
	}
	_ = g.Wait()

	var merged []domain.Hit
	for _, s := range slots {
		merged = append(merged, s...)
	}
	return merged
}

// searchOne runs a single query. A provider error or panic yields no hits.
func (d *Dispatcher) searchOne(ctx context.Context, req ports.SearchRequest) (out []domain.Hit) {
	defer func() {
		if r := recover(); r != nil {
			if d.logger != nil {
				d.logger.Error("search provider panicked", "query", req.Query, "depth", req.Depth, "panic", r)
			}
			out = nil
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	defer cancel()

	hits, err := d.provider.Search(callCtx, req)
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("search query failed", "query", req.Query, "depth", req.Depth, "error", err)
		}
		return nil
	}

	for i := range hits {
		hits[i].Query = req.Query
		if hits[i].Provider == "" {
			hits[i].Provider = d.provider.Name()
		}
	}
	if d.logger != nil {
		d.logger.Debug("search query done", "query", req.Query, "depth", req.Depth, "hits", len(hits))
	}
	return hits
}

// CapPerHost keeps at most limit hits per lower-cased host, preserving order.
func CapPerHost(hits []domain.Hit, limit int) []domain.Hit {
	perHost := map[string]int{}
	capped := make([]domain.Hit, 0, len(hits))
	for _, hit := range hits {
		host := Host(hit.URL)
		if perHost[host] >= limit {
			continue
		}
		perHost[host]++
		capped = append(capped, hit)
	}
	return capped
}

func (d *Dispatcher) info(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Info(msg, args...)
	}
}
