package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/tonehaus/aria/internal/artwork"
	"github.com/tonehaus/aria/internal/config"
	"github.com/tonehaus/aria/internal/event"
	"github.com/tonehaus/aria/internal/log"
	"github.com/tonehaus/aria/internal/metadata"
	"github.com/tonehaus/aria/internal/search"
	"github.com/tonehaus/aria/internal/store"
	"github.com/tonehaus/aria/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	var showStats bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&showStats, "stats", false, "print library statistics and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("aria %s\n", Version)
		return
	}

	if err := run(showStats); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(showStats bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting aria", "version", Version)

	libStore, err := store.Open(cfg.Library.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open library store: %w", err)
	}
	defer libStore.Close()

	// Composition root owns the caches; the bus is the only coupling
	// between the write path and cache invalidation.
	bus := event.NewBus()

	ttl := time.Duration(cfg.Cache.MetadataTTLMin) * time.Minute
	library := metadata.NewCache(libStore, ttl, logger)

	budget := int64(cfg.Cache.SizeMB) << 20
	art := artwork.NewCache(libStore, library, budget, config.SaveCacheSize, logger)

	bus.Subscribe(library.HandleEvent)
	bus.Subscribe(art.HandleEvent)

	if showStats {
		return printStats(library)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("aria requires an interactive terminal (try -stats)")
	}

	searcher := search.NewService(library, logger)

	model := tui.NewModel(library, art, searcher, cfg.UI.ArtworkSize, logger)
	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

func printStats(library *metadata.Cache) error {
	stats, err := library.GetLibraryStats(context.Background(), true)
	if err != nil {
		return err
	}
	fmt.Printf("tracks:    %d\n", stats.TrackCount)
	fmt.Printf("folders:   %d\n", stats.FolderCount)
	fmt.Printf("playlists: %d\n", stats.PlaylistCount)
	fmt.Printf("size:      %s\n", stats.FormattedTotalSize())
	fmt.Printf("duration:  %s\n", stats.TotalDuration.Round(time.Second))
	return nil
}
