// Command decky-import loads an MTGJSON AllPrintings dump into the local
// card catalog. The dump is streamed set by set; a whole-file decode would
// need several gigabytes of memory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Toolenaar/decky/internal/config"
	"github.com/Toolenaar/decky/internal/domain/card"
	logpkg "github.com/Toolenaar/decky/internal/logger"
	"github.com/Toolenaar/decky/internal/repository/catalog"
	syncsvc "github.com/Toolenaar/decky/internal/sync"
	"github.com/Toolenaar/decky/internal/version"
)

func main() {
	var (
		file    = flag.String("file", "AllPrintings.json", "path to the MTGJSON AllPrintings dump")
		publish = flag.Bool("publish", false, "publish a card.created event per imported card")
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

	logger.Info("Starting decky-import",
		zap.String("build", version.String()),
		zap.String("file", *file),
		zap.String("catalog", cfg.Catalog.Path),
	)

	cat, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to open catalog", zap.Error(err))
	}
	defer func() { _ = cat.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notify := func(*card.SourceRecord) {}
	if *publish {
		if cfg.Events.URL == "" {
			logger.Fatal("-publish requires events.url in the config")
		}
		nc, err := nats.Connect(cfg.Events.URL)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer func() { _ = nc.Drain() }()

		notify = func(rec *card.SourceRecord) {
			data, err := json.Marshal(syncsvc.ChangeEvent{ID: rec.Identity(), Record: rec})
			if err != nil {
				return
			}
			if err := nc.Publish(syncsvc.SubjectCardCreated, data); err != nil {
				logger.Warn("event publish failed",
					zap.String("card", rec.Identity()),
					zap.Error(err))
			}
		}
	}

	imported, skipped, err := importDump(ctx, cat, *file, notify, logger)
	if err != nil {
		logger.Fatal("Import failed", zap.Error(err))
	}

	logger.Info("Import finished",
		zap.Int("imported", imported),
		zap.Int("skipped", skipped),
	)
}

// setEntry is the slice of an MTGJSON set object this importer needs.
type setEntry struct {
	Cards []card.SourceRecord `json:"cards"`
}

// importDump walks the dump's top-level "data" object and imports every
// set's card list. Records without an identity are skipped and counted.
func importDump(
	ctx context.Context,
	cat *catalog.Store,
	path string,
	notify func(*card.SourceRecord),
	logger *zap.Logger,
) (imported, skipped int, err error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, 0, fmt.Errorf("open dump: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := json.NewDecoder(f)

	if err := seekDataObject(dec); err != nil {
		return 0, 0, err
	}

	// Inside "data": alternating set-code keys and set objects.
	for dec.More() {
		if err := ctx.Err(); err != nil {
			return imported, skipped, err
		}

		tok, err := dec.Token()
		if err != nil {
			return imported, skipped, fmt.Errorf("read set code: %w", err)
		}
		setCode, _ := tok.(string)

		var set setEntry
		if err := dec.Decode(&set); err != nil {
			return imported, skipped, fmt.Errorf("decode set %s: %w", setCode, err)
		}

		for i := range set.Cards {
			rec := &set.Cards[i]
			if err := cat.Put(ctx, rec); err != nil {
				logger.Warn("card skipped",
					zap.String("set", setCode),
					zap.String("name", rec.Name),
					zap.Error(err))
				skipped++
				continue
			}
			imported++
			notify(rec)
		}

		logger.Debug("set imported",
			zap.String("set", setCode),
			zap.Int("cards", len(set.Cards)))
	}

	return imported, skipped, nil
}

// seekDataObject advances the decoder past the opening of the top-level
// "data" object, skipping the "meta" section and any other siblings.
func seekDataObject(dec *json.Decoder) error {
	if _, err := dec.Token(); err != nil { // opening {
		return fmt.Errorf("read dump header: %w", err)
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return fmt.Errorf("dump has no data object")
		}
		if err != nil {
			return fmt.Errorf("scan dump: %w", err)
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in dump header", tok)
		}

		if key == "data" {
			if _, err := dec.Token(); err != nil { // opening { of data
				return fmt.Errorf("read data object: %w", err)
			}
			return nil
		}

		// Skip this sibling's value wholesale.
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return fmt.Errorf("skip %s section: %w", key, err)
		}
	}
}
