package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bucketfs/bucketfs/internal/adapter"
	"github.com/bucketfs/bucketfs/internal/config"
	"github.com/bucketfs/bucketfs/internal/logging"
	"github.com/bucketfs/bucketfs/internal/metrics"
	"github.com/bucketfs/bucketfs/internal/objectstore"
)

// session holds everything one command invocation needs.
type session struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry *prometheus.Registry
	backend  objectstore.Backend
	fs       *adapter.Adapter
	options  optionFlags
}

// openSession wires configuration, logging, metrics and the adapter. The returned
// context carries the invocation's logger and correlation ID.
func (c *cli) openSession(ctx context.Context, g *globalFlags, urlBucket string) (context.Context, *session, error) {
	cfg, err := g.loadConfig(urlBucket)
	if err != nil {
		return ctx, nil, err
	}

	logger, err := logging.Configure(cfg.Observability.LogLevel, cfg.Observability.LogFormat, c.stderr)
	if err != nil {
		return ctx, nil, err
	}
	correlationID := uuid.New().String()
	logger = logger.WithCorrelationID(correlationID)
	ctx = logging.WithCorrelationIDCtx(ctx, correlationID)
	ctx = logging.WithLoggerCtx(ctx, logger)

	registry := prometheus.NewRegistry()
	storeMetrics := metrics.NewObjectStoreMetrics(registry)
	adapterMetrics := metrics.NewAdapterMetrics(registry)

	backend, err := c.openBackend(ctx, cfg)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to create object store: %w", err)
	}
	backend = objectstore.NewInstrumentedBackend(backend, storeMetrics)

	// Validate has already rejected anything else.
	visibility, _ := adapter.ParseVisibility(cfg.Adapter.DefaultVisibility)

	fs := adapter.New(backend, cfg.ObjectStore.Bucket,
		adapter.WithPrefix(cfg.ObjectStore.Prefix),
		adapter.WithLogger(logger),
		adapter.WithMetrics(adapterMetrics),
		adapter.WithDefaultVisibility(visibility),
	)

	logger.Debugf("session opened", logging.Fields{
		"bucket": cfg.ObjectStore.Bucket,
		"prefix": fs.PathPrefix(),
	})

	return ctx, &session{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		backend:  backend,
		fs:       fs,
		options:  g.options,
	}, nil
}

// close releases the backend and exports metrics when a textfile is configured.
func (s *session) close() {
	if err := s.backend.Close(); err != nil {
		s.logger.Warnf("failed to close object store", logging.Err(err, nil))
	}
	if err := metrics.WriteTextfile(s.cfg.Observability.MetricsTextfile, s.registry); err != nil {
		s.logger.Warnf("failed to write metrics textfile", logging.Err(err, logging.Fields{
			"path": s.cfg.Observability.MetricsTextfile,
		}))
	}
}

// writeConfig returns the write options given with -o.
func (s *session) writeConfig() (adapter.Config, error) {
	return s.options.Config()
}
