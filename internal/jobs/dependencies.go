// Package jobs wires configuration into ready-to-run refreshers.
package jobs

import (
	"context"
	"fmt"

	"github.com/vn6295337/intelligent-model-selector/internal/archive"
	"github.com/vn6295337/intelligent-model-selector/internal/artificialanalysis"
	"github.com/vn6295337/intelligent-model-selector/internal/config"
	"github.com/vn6295337/intelligent-model-selector/internal/refresh"
	"github.com/vn6295337/intelligent-model-selector/internal/reports"
	"github.com/vn6295337/intelligent-model-selector/internal/storage"
	"github.com/vn6295337/intelligent-model-selector/internal/utils"
)

// Dependencies holds everything a job needs for one invocation
type Dependencies struct {
	Config *config.Config
	Logger *utils.Logger
	DB     *storage.DB
	Tables storage.SchemaTables
	Sink   reports.Sink

	redis *reports.RedisSink
}

// NewDependencies opens the database and builds the report sinks.
// The optional Redis sink is skipped with a warning when it cannot connect.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*Dependencies, error) {
	tables, err := parseTables(cfg.Tables)
	if err != nil {
		logger.Error("Invalid table configuration", "error", err)
		return nil, err
	}

	db, err := storage.NewDB(storage.DefaultDBConfig(cfg.Database.URL))
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Health(ctx); err != nil {
		_ = db.Close()
		logger.Error("Database health check failed", "error", err)
		return nil, err
	}
	logger.Info("Connected to database", "dialect", db.Dialect().Name())

	// SQLite is only used for local runs; create the tables there
	if db.Dialect().Name() == "sqlite" {
		if err := storage.EnsureSchema(ctx, db, tables); err != nil {
			_ = db.Close()
			logger.Error("Failed to create local schema", "error", err)
			return nil, err
		}
	}

	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Tables: tables,
	}

	sinks := reports.MultiSink{reports.NewLogSink(logger.With("report"))}
	if cfg.Reports.Enabled() {
		redisSink, err := reports.NewRedisSink(reports.RedisConfig{
			Addr:        cfg.Reports.RedisAddress,
			Password:    cfg.Reports.RedisPassword,
			DB:          cfg.Reports.RedisDB,
			KeyPrefix:   cfg.Reports.KeyPrefix,
			HistorySize: cfg.Reports.HistorySize,
		})
		if err != nil {
			logger.Warn("Run reports will not be stored in Redis", "error", err)
		} else {
			deps.redis = redisSink
			sinks = append(sinks, redisSink)
		}
	}
	deps.Sink = sinks

	return deps, nil
}

func parseTables(cfg config.TablesConfig) (storage.SchemaTables, error) {
	var tables storage.SchemaTables
	var err error

	if tables.Metrics, err = storage.ParseTableName(cfg.Metrics); err != nil {
		return tables, fmt.Errorf("metrics table: %w", err)
	}
	if tables.Mapping, err = storage.ParseTableName(cfg.Mapping); err != nil {
		return tables, fmt.Errorf("mapping table: %w", err)
	}
	if tables.WorkingVersion, err = storage.ParseTableName(cfg.WorkingVersion); err != nil {
		return tables, fmt.Errorf("working version table: %w", err)
	}
	return tables, nil
}

// Close releases the database and Redis connections
func (d *Dependencies) Close() error {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			d.Logger.Warn("Failed to close Redis client", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		return err
	}
	d.Logger.Info("Database connection closed")
	return nil
}

func (d *Dependencies) options(component string) refresh.Options {
	return refresh.Options{
		Logger: d.Logger.With(component),
		Sink:   d.Sink,
	}
}

// metricsReplacer picks the table replace strategy from config
func (d *Dependencies) metricsReplacer() storage.TableReplacer {
	logger := d.Logger.With("replacer")
	if d.Config.Database.ReplaceStrategy == config.ReplaceStrategyTransactional {
		return storage.NewTransactionalReplacer(d.DB, d.Tables.Metrics, logger)
	}
	return storage.NewBackupReplacer(d.DB, d.Tables.Metrics, logger)
}

// NewMetricsRefresher builds the metrics job. The API key must be set.
func (d *Dependencies) NewMetricsRefresher(ctx context.Context) (*refresh.MetricsRefresher, error) {
	cfg := d.Config
	if err := cfg.RequireAPIKey(); err != nil {
		d.Logger.Error("Missing API key", "error", err)
		return nil, err
	}

	client, err := artificialanalysis.NewClient(artificialanalysis.ClientConfig{
		APIKey:  cfg.API.Key,
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, d.Logger.With("api"))
	if err != nil {
		return nil, err
	}

	store := storage.NewPerformanceRepository(d.DB, d.Tables.Metrics, d.metricsReplacer(), cfg.Database.InsertBatchSize)

	// a nil *S3Writer must not end up inside the Archiver interface
	var archiver refresh.Archiver
	if cfg.Snapshot.Enabled() {
		writer, err := archive.NewS3Writer(ctx, cfg.Snapshot.S3Bucket, cfg.Snapshot.S3Region, cfg.Snapshot.S3Prefix, d.Logger.With("snapshot"))
		if err != nil {
			d.Logger.Warn("Raw snapshots will not be archived", "error", err)
		} else {
			archiver = writer
		}
	}

	return refresh.NewMetricsRefresher(client, store, archiver, d.options("metrics")), nil
}

// NewMappingRefresher builds the mapping job
func (d *Dependencies) NewMappingRefresher() *refresh.MappingRefresher {
	store := storage.NewMappingRepository(d.DB, storage.MappingTables{
		Mapping:        d.Tables.Mapping,
		Metrics:        d.Tables.Metrics,
		WorkingVersion: d.Tables.WorkingVersion,
	}, d.Config.Database.InsertBatchSize)

	return refresh.NewMappingRefresher(store, d.options("mapping"))
}
