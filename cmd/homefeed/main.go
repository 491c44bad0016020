package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/homefeed/pkg/cache"
	"github.com/umputun/homefeed/pkg/config"
	"github.com/umputun/homefeed/pkg/feed"
	"github.com/umputun/homefeed/pkg/hass"
	"github.com/umputun/homefeed/pkg/scheduler"
	"github.com/umputun/homefeed/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"homefeed.yml" description:"configuration file"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	color.NoColor = color.NoColor || opts.NoColor
	setupLog(opts.Debug)

	log.Printf("[INFO] starting homefeed version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run wires all components and blocks until the context is canceled
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.HomeAssistant.Token != "" {
		setupLog(opts.Debug, cfg.HomeAssistant.Token)
	}

	store, closeStore, err := openStore(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer closeStore()

	ha := hass.New(hass.Config{
		URL:       cfg.HomeAssistant.URL,
		Token:     cfg.HomeAssistant.Token,
		Timeout:   cfg.HomeAssistant.Timeout,
		RateLimit: cfg.HomeAssistant.RateLimit,
	})

	newEngine := func(f config.Feed) (*feed.Engine, error) {
		return feed.New(feed.Params{
			Feed:          f,
			Store:         store,
			Renderer:      ha,
			History:       ha,
			Calendar:      ha,
			Notifications: ha,
			CalendarTTL:   cfg.Schedule.CalendarTTL,
		})
	}

	sched, err := scheduler.New(scheduler.Params{
		States:          ha,
		NewEngine:       newEngine,
		StatePoll:       cfg.Schedule.StatePoll,
		HistoryDebounce: cfg.Schedule.HistoryDebounce,
	}, cfg.Feed)
	if err != nil {
		return fmt.Errorf("failed to make scheduler: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// feed section is applied on the fly, other sections need a restart
	watcher := config.NewWatcher(opts.Config, func(c *config.Config) {
		if err := sched.Reconfigure(ctx, c.Feed); err != nil {
			log.Printf("[WARN] feed not reconfigured: %v", err)
		}
	})
	go func() {
		if err := watcher.Watch(ctx); err != nil {
			log.Printf("[WARN] config watcher stopped: %v", err)
		}
	}()

	srv := server.New(cfg, sched, revision, opts.Debug)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// openStore makes cache store of the configured type
func openStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, func(), error) {
	switch cfg.Type {
	case "memory":
		return cache.NewMemory(), func() {}, nil
	case "sqlite":
		db, err := cache.NewSQLite(ctx, cache.SQLiteConfig{DSN: cfg.DSN})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				log.Printf("[WARN] failed to close cache: %v", err)
			}
		}
		return db, closeFn, nil
	default:
		return nil, nil, errors.New("unknown cache type " + cfg.Type)
	}
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
