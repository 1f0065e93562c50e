// Command decky-sync runs a full catalog-to-index resync or a consistency
// validation pass. It exits non-zero when any card failed to sync so cron
// and CI can alert on it.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Toolenaar/decky/internal/config"
	dbRedis "github.com/Toolenaar/decky/internal/db/redis"
	"github.com/Toolenaar/decky/internal/domain/card"
	logpkg "github.com/Toolenaar/decky/internal/logger"
	"github.com/Toolenaar/decky/internal/repository/catalog"
	indexrepo "github.com/Toolenaar/decky/internal/repository/index"
	syncsvc "github.com/Toolenaar/decky/internal/sync"
	"github.com/Toolenaar/decky/internal/version"
)

func main() {
	var (
		clean    = flag.Bool("clean", false, "drop and recreate the index before syncing")
		pageSize = flag.Int("page-size", 0, "catalog scan page size (default from config)")
		cursor   = flag.String("cursor", "", "resume after this uuid:name position")
		validate = flag.Bool("validate", false, "run a validation pass instead of a resync")
		sample   = flag.Int("sample", 100, "validation sample size")
	)
	flag.Parse()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting decky-sync",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Bool("clean", *clean),
		zap.Bool("validate", *validate),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create index store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Index service not ready", zap.Error(err))
	}

	cat, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to open catalog", zap.Error(err))
	}
	defer func() { _ = cat.Close() }()

	cards := indexrepo.New(store, cfg.Index.Name, cfg.Index.VectorDim)
	service := syncsvc.New(cards, cat, logger)

	if *validate {
		runValidate(ctx, service, *sample, logger)
		return
	}

	size := *pageSize
	if size <= 0 {
		size = cfg.Sync.PageSize
	}

	report, err := service.Resync(ctx, syncsvc.ResyncOptions{
		CleanStart: *clean,
		PageSize:   size,
		Cursor:     card.ParseCursor(*cursor),
	})
	if err != nil {
		logger.Fatal("Resync aborted", zap.Error(err))
	}

	logger.Info("Resync finished",
		zap.Int("total", report.Total),
		zap.Int("successful", report.Successful),
		zap.Int("failed", report.Failed),
		zap.Int("pages", report.Pages),
		zap.Int("failed_pages", report.FailedPages),
		zap.Stringer("cursor", report.Cursor),
		zap.Duration("duration", report.Duration),
		zap.Float64("cards_per_sec", report.Throughput()),
	)

	if !report.Ok() {
		logger.Warn("Resync completed with failures; resume with -cursor",
			zap.Stringer("cursor", report.Cursor))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func runValidate(ctx context.Context, service *syncsvc.Service, sample int, logger *zap.Logger) {
	report, err := service.Validate(ctx, sample)
	if err != nil {
		logger.Fatal("Validation failed to run", zap.Error(err))
	}

	logger.Info("Validation finished",
		zap.Int("catalog_count", report.CatalogCount),
		zap.Int("index_count", report.IndexCount),
		zap.Int("sampled", report.Sampled),
		zap.Int("missing", len(report.Missing)),
	)

	if !report.Valid() {
		logger.Warn("Index out of sync with catalog",
			zap.Strings("missing", report.Missing))
		_ = logger.Sync()
		os.Exit(1)
	}
}
