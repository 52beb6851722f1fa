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
	"github.com/ChrisB2025/wp-migrate/app/export"
	"github.com/ChrisB2025/wp-migrate/app/importer"
	"github.com/ChrisB2025/wp-migrate/app/media"
)

func main() {
	appCfg, args, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: wp-migrate [options] <export-file.xml>")
		os.Exit(1)
	}
	exportPath := args[0]

	slog.Info("Starting WordPress import", "version", appCfg.Version, "file", exportPath)

	data, err := os.ReadFile(exportPath)
	if err != nil {
		slog.Error("Failed to read export file", "file", exportPath, "error", err)
		os.Exit(1)
	}

	options, err := config.Load(appCfg.OptionsFile)
	if err != nil {
		slog.Error("Failed to load import options", "file", appCfg.OptionsFile, "error", err)
		os.Exit(1)
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

	userRepo := database.NewUserRepository(db)
	tagRepo := database.NewTagRepository(db)
	postRepo := database.NewPostRepository(db)
	commentRepo := database.NewCommentRepository(db)

	var resolver *media.Resolver
	if !appCfg.SkipMedia {
		mediaRepo := database.NewMediaRepository(db, appCfg.MediaDir)
		fetcher := media.NewFetcher(appCfg.BaseURL, options.Media.LocalDir, appCfg.UserAgent, appCfg.GetFetchTimeout())
		resolver = media.NewResolver(mediaRepo, fetcher, options.Media.Domain)
	}

	doc, err := export.NewParser().Run(data)
	if err != nil {
		slog.Error("Failed to parse export", "error", err)
		os.Exit(1)
	}
	slog.Info("Export parsed", "authors", len(doc.Authors), "tags", len(doc.Tags), "posts", len(doc.Posts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	imp := importer.New(userRepo, tagRepo, postRepo, commentRepo, resolver, options)
	summary, err := imp.Run(ctx, doc)
	if err != nil {
		slog.Error("Import failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Import complete",
		"tags_created", summary.TagsCreated,
		"posts_created", summary.PostsCreated,
		"posts_updated", summary.PostsUpdated,
		"posts_failed", summary.PostsFailed,
		"comments_created", summary.CommentsCreated)
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
