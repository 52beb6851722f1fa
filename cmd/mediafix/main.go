package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ChrisB2025/wp-migrate/app/cfg"
	"github.com/ChrisB2025/wp-migrate/app/config"
	"github.com/ChrisB2025/wp-migrate/app/database"
	"github.com/ChrisB2025/wp-migrate/app/media"
)

// mediafix re-resolves media references in already imported posts. It is
// meant for imports that ran with --skip-media, or for a second pass after
// the source site came back online. The optional positional argument
// restricts resolution to references on that domain, overriding the
// options file.
func main() {
	appCfg, args, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.Debug)

	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "Usage: mediafix [options] [domain]")
		os.Exit(1)
	}

	options, err := config.Load(appCfg.OptionsFile)
	if err != nil {
		slog.Error("Failed to load import options", "file", appCfg.OptionsFile, "error", err)
		os.Exit(1)
	}

	domain := options.Media.Domain
	if len(args) == 1 {
		domain = args[0]
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Debug("Database schema ready", "version", version, "dirty", dirty)

	postRepo := database.NewPostRepository(db)
	mediaRepo := database.NewMediaRepository(db, appCfg.MediaDir)
	fetcher := media.NewFetcher(appCfg.BaseURL, options.Media.LocalDir, appCfg.UserAgent, appCfg.GetFetchTimeout())
	resolver := media.NewResolver(mediaRepo, fetcher, domain)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	processor := media.NewProcessor(postRepo, resolver, appCfg.WorkerCount)

	slog.Info("Rewriting media references", "domain", domain, "workers", appCfg.WorkerCount)
	report, err := processor.Run(ctx)
	if err != nil {
		slog.Error("Media pass failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Media pass complete",
		"posts_processed", report.PostsProcessed,
		"posts_updated", report.PostsUpdated,
		"media_resolved", report.MediaResolved)

	slog.Info("Backfilling featured images")
	featured, err := processor.BackfillFeatured(ctx)
	if err != nil {
		slog.Error("Featured image backfill failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Featured image backfill complete",
		"posts_processed", featured.PostsProcessed,
		"posts_updated", featured.PostsUpdated)
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
