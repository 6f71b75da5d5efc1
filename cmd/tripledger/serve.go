package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/tripledger/internal/cache"
	"github.com/mmynk/tripledger/internal/config"
	"github.com/mmynk/tripledger/internal/metrics"
	"github.com/mmynk/tripledger/internal/middleware"
	"github.com/mmynk/tripledger/internal/service"
	"github.com/mmynk/tripledger/internal/storage/sqlite"
	"github.com/mmynk/tripledger/pkg/api"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Connect RPC server",
		Long: `Serve the TripService over Connect with JSON messages, on HTTP/1.1 and
cleartext HTTP/2. Prometheus metrics are exposed on /metrics when enabled.`,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 0, "port to listen on (overrides server.port)")
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	g, ctx := errgroup.WithContext(cmd.Context())

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	summaryCache, err := newSummaryCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer summaryCache.Close()

	if mem, ok := summaryCache.(*cache.Memory); ok && cfg.Cache.TTL > 0 {
		g.Go(func() error {
			cache.RunJanitor(ctx, mem, cfg.Cache.TTL, func(removed int) {
				if removed > 0 {
					slog.Debug("Expired summaries evicted", "count", removed)
				}
			})
			return nil
		})
	}

	svc := service.NewTripService(store,
		service.WithCache(summaryCache),
		service.WithMetrics(m),
		service.WithSplitPolicy(cfg.SplitPolicy()),
	)

	mux := http.NewServeMux()

	// Register Connect services
	path, handler := api.NewTripServiceHandler(svc,
		connect.WithInterceptors(middleware.RequestIDInterceptor{}, middleware.NewLoggingInterceptor(m)),
	)
	mux.Handle(path, handler)

	if m != nil {
		mux.Handle("/metrics", m.Handler())
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           h2c.NewHandler(middleware.Logging(middleware.CORS(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		// Open watch streams end when the server shuts down
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error {
		slog.Info("Connect server starting",
			"address", srv.Addr,
			"url", fmt.Sprintf("http://localhost%s", srv.Addr),
			"split_policy", cfg.SplitPolicy().String(),
			"cache", cfg.Cache.Backend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down server", "timeout", cfg.Server.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newSummaryCache builds the configured summary cache backend.
func newSummaryCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		c, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Cache.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		slog.Info("Summary cache initialized", "backend", "redis", "addr", cfg.Redis.Addr)
		return c, nil
	case config.CacheMemory:
		slog.Info("Summary cache initialized", "backend", "memory", "size", cfg.Cache.Size, "ttl", cfg.Cache.TTL)
		return cache.NewMemory(cfg.Cache.Size, cfg.Cache.TTL), nil
	default:
		slog.Info("Summary cache disabled")
		return cache.Nop{}, nil
	}
}
