package scheduler

import (
	"context"

	"marquee/internal/dataset"
	"marquee/internal/metrics"
)

// CatalogRefreshJob is the name the catalog rebuild is registered under.
const CatalogRefreshJob = "catalog_refresh"

// CatalogRefresher rebuilds the catalog from its sources.
type CatalogRefresher interface {
	Refresh(ctx context.Context) (*dataset.Catalog, error)
}

// RefreshCatalog returns a job that rebuilds the catalog and records the
// outcome.
func RefreshCatalog(provider CatalogRefresher) Job {
	return func(ctx context.Context) error {
		catalog, err := provider.Refresh(ctx)
		if err != nil {
			metrics.RecordCatalogRefresh(0, err)
			return err
		}
		metrics.RecordCatalogRefresh(catalog.Len(), nil)
		return nil
	}
}
