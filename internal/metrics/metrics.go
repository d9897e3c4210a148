// Package metrics registers the client's prometheus collectors and serves
// them on an optional listener.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Results recorded by BundleImports.
const (
	ImportOK        = "ok"
	ImportMalformed = "malformed"
	ImportFailed    = "failed"
)

var (
	BundleExports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prolens_bundle_exports_total",
		Help: "Bundles exported, by kind (sync, backup).",
	}, []string{"kind"})

	BundleImports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prolens_bundle_imports_total",
		Help: "Bundle imports, by result (ok, malformed, failed).",
	}, []string{"result"})

	MaterialUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prolens_material_uploads_total",
		Help: "Learning materials uploaded, by backend (local, cloud).",
	}, []string{"backend"})

	BlobDeleteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prolens_blob_delete_failures_total",
		Help: "Cloud blob deletions that failed after the record was removed.",
	})

	SubscriptionRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prolens_subscription_refreshes_total",
		Help: "Full result sets delivered by the cloud materials subscription.",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prolens_material_cache_hits_total",
		Help: "Material cache hits.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prolens_material_cache_misses_total",
		Help: "Material cache misses.",
	})
)

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr
// disables the listener.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
