package health

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/feral-file/ff-agent-registry/internal/adapter"
	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/logger"
	"github.com/feral-file/ff-agent-registry/internal/store"
	"github.com/feral-file/ff-agent-registry/internal/store/schema"
)

const (
	// maxProbeBodyBytes bounds how much of a probe response is read
	maxProbeBodyBytes  = 4096
	defaultConcurrency = 10
)

// ProbeRequest identifies the endpoint to probe and the asset it was advertised by
type ProbeRequest struct {
	Endpoint           string
	AssetIdentifier    string
	RegistryIdentifier string
	RegistryType       domain.RegistryType
}

// Config holds the prober configuration
type Config struct {
	// Path is appended to the endpoint, e.g. /availability
	Path string
	// CacheTTL is how long a verdict is reused for the same endpoint and asset; 0 disables caching
	CacheTTL time.Duration
	// Concurrency bounds the number of parallel probes in RevalidateBatch
	Concurrency int
}

// Prober defines the interface for endpoint liveness checks
//
//go:generate mockgen -source=prober.go -destination=../mocks/prober.go -package=mocks -mock_names=Prober=MockProber
type Prober interface {
	// Probe returns ONLINE when the endpoint answers its availability path with a 2xx status, OFFLINE otherwise
	Probe(ctx context.Context, req ProbeRequest) domain.EntryStatus

	// RevalidateBatch re-probes entries whose last check predates minFreshness, folds the verdicts into
	// their counters and returns the entries that are still valid, in input order.
	// When minFreshness is nil every non-deregistered entry is returned as is.
	RevalidateBatch(ctx context.Context, entries []*schema.RegistryEntry, minFreshness *time.Time) []*schema.RegistryEntry
}

type prober struct {
	httpClient adapter.HTTPClient
	store      store.Store
	clock      adapter.Clock
	config     Config
	cache      *gocache.Cache
}

// NewProber creates a new liveness prober
func NewProber(httpClient adapter.HTTPClient, st store.Store, clock adapter.Clock, config Config) Prober {
	if config.Path == "" {
		config.Path = domain.DEFAULT_AVAILABILITY_PATH
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaultConcurrency
	}

	p := &prober{
		httpClient: httpClient,
		store:      st,
		clock:      clock,
		config:     config,
	}
	if config.CacheTTL > 0 {
		p.cache = gocache.New(config.CacheTTL, 2*config.CacheTTL)
	}

	return p
}

func cacheKey(req ProbeRequest) string {
	return req.Endpoint + "|" + req.AssetIdentifier
}

// Probe checks the endpoint, reusing a cached verdict when one is available
func (p *prober) Probe(ctx context.Context, req ProbeRequest) domain.EntryStatus {
	if p.cache != nil {
		if v, found := p.cache.Get(cacheKey(req)); found {
			if status, ok := v.(domain.EntryStatus); ok {
				return status
			}
		}
	}

	status := p.probe(ctx, req)

	if p.cache != nil && ctx.Err() == nil {
		p.cache.SetDefault(cacheKey(req), status)
	}

	return status
}

// probe performs a single availability request without consulting the cache
func (p *prober) probe(ctx context.Context, req ProbeRequest) domain.EntryStatus {
	probeURL, err := p.availabilityURL(req.Endpoint)
	if err != nil {
		logger.DebugCtx(ctx, "Endpoint is not probeable",
			zap.String("endpoint", req.Endpoint),
			zap.String("asset", req.AssetIdentifier),
			zap.Error(err),
		)
		return domain.EntryStatusOffline
	}

	resp, err := p.httpClient.GetNoRetry(ctx, probeURL, maxProbeBodyBytes)
	if err != nil {
		logger.DebugCtx(ctx, "Endpoint probe failed",
			zap.String("url", probeURL),
			zap.String("asset", req.AssetIdentifier),
			zap.Error(err),
		)
		return domain.EntryStatusOffline
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.DebugCtx(ctx, "Endpoint answered with non-success status",
			zap.String("url", probeURL),
			zap.String("asset", req.AssetIdentifier),
			zap.Int("status", resp.StatusCode),
		)
		return domain.EntryStatusOffline
	}

	return domain.EntryStatusOnline
}

// availabilityURL validates the endpoint and joins the availability path to it
func (p *prober) availabilityURL(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint has no host")
	}

	probe := u.JoinPath(p.config.Path)
	probe.Fragment = ""
	probe.RawFragment = ""
	return probe.String(), nil
}

// RevalidateBatch re-probes stale entries concurrently and records the verdicts
func (p *prober) RevalidateBatch(ctx context.Context, entries []*schema.RegistryEntry, minFreshness *time.Time) []*schema.RegistryEntry {
	if len(entries) == 0 {
		return []*schema.RegistryEntry{}
	}

	results := make([]*schema.RegistryEntry, len(entries))

	pool := pond.NewPool(p.config.Concurrency, pond.WithContext(ctx))
	defer pool.StopAndWait()

	var mu sync.Mutex
	submitted := 0
	group := pool.NewGroup()
	for i, entry := range entries {
		if entry == nil || entry.Deregistered() {
			continue
		}
		if minFreshness == nil || !entry.LastUptimeCheck.Before(*minFreshness) {
			results[i] = entry
			continue
		}

		submitted++
		group.Submit(func() {
			updated := p.revalidate(ctx, entry)
			mu.Lock()
			results[i] = updated
			mu.Unlock()
		})
	}

	if submitted > 0 {
		if err := group.Wait(); err != nil {
			logger.WarnCtx(ctx, "Revalidation interrupted", zap.Error(err))
		}
	}

	valid := make([]*schema.RegistryEntry, 0, len(entries))
	mu.Lock()
	for _, entry := range results {
		if entry != nil {
			valid = append(valid, entry)
		}
	}
	mu.Unlock()

	return valid
}

// revalidate probes one entry and returns the stored row, or nil when it must be dropped
func (p *prober) revalidate(ctx context.Context, entry *schema.RegistryEntry) *schema.RegistryEntry {
	req := ProbeRequest{
		Endpoint:        entry.APIURL,
		AssetIdentifier: entry.Identifier,
	}
	if entry.Source != nil {
		req.RegistryIdentifier = entry.Source.PolicyID()
		req.RegistryType = entry.Source.Type
	}

	status := p.probe(ctx, req)
	if ctx.Err() != nil {
		return nil
	}

	updated, err := p.store.RecordHealthCheck(ctx, entry.ID, status, p.clock.Now())
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to record health check: %w", err), zap.Uint64("entry_id", entry.ID))
		return nil
	}
	if updated == nil || updated.Deregistered() {
		logger.InfoCtx(ctx, "Entry left the live set during revalidation",
			zap.Uint64("entry_id", entry.ID),
			zap.String("asset", entry.Identifier),
		)
		return nil
	}

	return updated
}
