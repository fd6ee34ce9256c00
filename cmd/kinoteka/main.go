package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmcdole/kinoteka/internal/adapter"
	"github.com/mmcdole/kinoteka/internal/app"
)

// Version is set at build time via -ldflags
var Version = "dev"

type flags struct {
	version    bool
	link       string
	print      bool
	genre      string
	query      string
	page       int
	server     string
	saveConfig bool
	clearCache bool
}

func main() {
	var f flags
	flag.BoolVar(&f.version, "v", false, "print version")
	flag.BoolVar(&f.version, "version", false, "print version")
	flag.StringVar(&f.link, "link", "", "open a shared search link, e.g. '?q=matrix&from=1990'")
	flag.BoolVar(&f.print, "print", false, "print one page of results and exit")
	flag.StringVar(&f.genre, "genre", "", "search a genre by name or ID")
	flag.StringVar(&f.query, "query", "", "search by keyword")
	flag.IntVar(&f.page, "page", 1, "page to show")
	flag.StringVar(&f.server, "server", "", "catalog server URL (overrides config)")
	flag.BoolVar(&f.saveConfig, "save-config", false, "write the effective configuration and exit")
	flag.BoolVar(&f.clearCache, "clear-cache", false, "remove the stored session and genre cache and exit")
	flag.Parse()

	if f.version {
		fmt.Printf("kinoteka %s\n", Version)
		return
	}

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	// Load configuration
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if f.server != "" {
		cfg.Server.URL = f.server
	}

	if f.saveConfig {
		if err := adapter.SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Println("✓ Configuration saved!")
		return nil
	}

	if f.clearCache {
		if err := adapter.ClearCache(cfg); err != nil {
			return err
		}
		fmt.Println("✓ Cache cleared!")
		return nil
	}

	// Setup logger
	logger, logFile, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer logFile.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting kinoteka", "version", Version, "server", cfg.Server.URL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer a.Close()

	return a.Run(ctx, app.RunOptions{
		Link:  f.link,
		Query: f.query,
		Genre: f.genre,
		Page:  f.page,
		Print: f.print,
	})
}
