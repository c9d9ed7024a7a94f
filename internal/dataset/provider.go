package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"marquee/internal/logging"
)

// Snapshotter persists a processed catalog so restarts can skip CSV parsing.
type Snapshotter interface {
	LoadCatalog(ctx context.Context, fingerprint string, maxAge time.Duration) ([]Movie, bool, error)
	SaveCatalog(ctx context.Context, fingerprint string, movies []Movie) error
}

// Provider memoizes the catalog for the whole process. The first call to
// Catalog loads it; Refresh rebuilds from the CSV sources and swaps it in.
type Provider struct {
	opts        LoadOptions
	snapshot    Snapshotter
	snapshotTTL time.Duration
	logger      *slog.Logger

	loadMu   sync.Mutex
	mu       sync.RWMutex
	catalog  *Catalog
	loadedAt time.Time
}

// NewProvider constructs a lazy catalog provider. snapshot may be nil.
func NewProvider(opts LoadOptions, snapshot Snapshotter, snapshotTTL time.Duration) *Provider {
	return &Provider{
		opts:        opts,
		snapshot:    snapshot,
		snapshotTTL: snapshotTTL,
		logger:      logging.NewComponentLogger(opts.Logger, "catalog"),
	}
}

// NewStaticProvider wraps an already built catalog.
func NewStaticProvider(catalog *Catalog) *Provider {
	return &Provider{catalog: catalog, loadedAt: time.Now(), logger: logging.NewNop()}
}

// Catalog returns the memoized catalog, loading it on first use.
func (p *Provider) Catalog(ctx context.Context) (*Catalog, error) {
	p.mu.RLock()
	catalog := p.catalog
	p.mu.RUnlock()
	if catalog != nil {
		return catalog, nil
	}

	p.loadMu.Lock()
	defer p.loadMu.Unlock()
	p.mu.RLock()
	catalog = p.catalog
	p.mu.RUnlock()
	if catalog != nil {
		return catalog, nil
	}
	return p.load(ctx, true)
}

// Refresh rebuilds the catalog from the CSV sources, ignoring any snapshot.
func (p *Provider) Refresh(ctx context.Context) (*Catalog, error) {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()
	return p.load(ctx, false)
}

// LoadedAt reports when the current catalog was installed.
func (p *Provider) LoadedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loadedAt
}

func (p *Provider) load(ctx context.Context, useSnapshot bool) (*Catalog, error) {
	if len(p.opts.Sources) == 0 && p.catalog != nil {
		return p.catalog, nil
	}
	fingerprint := p.fingerprint()
	if useSnapshot && p.snapshot != nil && p.snapshotTTL > 0 {
		movies, ok, err := p.snapshot.LoadCatalog(ctx, fingerprint, p.snapshotTTL)
		switch {
		case err != nil:
			logging.WarnWithContext(p.logger, "catalog snapshot unreadable", "catalog_snapshot_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "catalog rebuilt from CSV sources"),
			)
		case ok:
			catalog := NewCatalog(movies)
			p.install(catalog)
			p.logger.Info("catalog restored from snapshot", logging.Int("movies", catalog.Len()))
			return catalog, nil
		}
	}

	started := time.Now()
	catalog, err := Load(ctx, p.opts)
	if err != nil {
		return nil, err
	}
	p.install(catalog)
	p.logger.Info("catalog built",
		logging.Int("movies", catalog.Len()),
		logging.Duration("elapsed", time.Since(started)),
	)

	if p.snapshot != nil && p.snapshotTTL > 0 {
		if err := p.snapshot.SaveCatalog(ctx, fingerprint, catalog.Movies()); err != nil {
			logging.WarnWithContext(p.logger, "catalog snapshot not saved", "catalog_snapshot_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "next start parses CSV sources again"),
			)
		}
	}
	return catalog, nil
}

func (p *Provider) install(catalog *Catalog) {
	p.mu.Lock()
	p.catalog = catalog
	p.loadedAt = time.Now()
	p.mu.Unlock()
}

// fingerprint identifies the inputs of a catalog build: source files (path,
// size, modification time) plus the filters. A snapshot is reused only when
// the fingerprint matches.
func (p *Provider) fingerprint() string {
	h := sha256.New()
	for _, src := range p.opts.Sources {
		fmt.Fprintf(h, "%s|%s|", src.Format, src.Path)
		if info, err := os.Stat(src.Path); err == nil {
			fmt.Fprintf(h, "%d|%d", info.Size(), info.ModTime().UnixNano())
		} else {
			h.Write([]byte("missing"))
		}
		h.Write([]byte{'\n'})
	}
	f := p.opts.Filters
	fmt.Fprintf(h, "%s|%d|%d|%v", strconv.FormatFloat(f.MinVoteAverage, 'f', -1, 64), f.MinVoteCount, f.MinYear, f.Languages)
	return hex.EncodeToString(h.Sum(nil))
}
