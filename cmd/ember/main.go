package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/embergo/ember/internal/config"
	"github.com/embergo/ember/internal/data"
	"github.com/embergo/ember/internal/persist"
	"github.com/embergo/ember/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(title string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Printf("\033[36;1m  │\033[0m %-41s \033[36;1m│\033[0m\n", "ember  v0.1.0")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	if title != "" {
		fmt.Printf("  \033[1mgame:\033[0m %s\n\n", title)
	}
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func run() error {
	// 1. Load config
	cfgPath := "ember.toml"
	if p := os.Getenv("EMBER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Game.Title)

	res := data.Resources{Dir: cfg.Game.ResourcesDir}
	if err := res.Check(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := world.Options{
		Resources:        res,
		FrameLogInterval: cfg.Loop.FrameLogInterval,
	}

	// 3. Optional snapshot store
	if cfg.Database.Enabled {
		printSection("database")
		dbCtx, dbCancel := context.WithTimeout(ctx, 30*time.Second)
		defer dbCancel()

		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(dbCtx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		fmt.Println()
		opts.Snapshots = persist.NewSnapshotRepo(db)
	}

	// 4. World and initial scene
	printSection("world")
	w, err := world.New(ctx, opts, log)
	if err != nil {
		return fmt.Errorf("create world: %w", err)
	}
	defer w.Close()

	if err := w.LoadScene(cfg.Game.InitialScene); err != nil {
		return err
	}
	printOK(fmt.Sprintf("scene %s (%d actors)", cfg.Game.InitialScene, w.Actors().Len()))
	fmt.Println()

	log.Info("display",
		zap.Int("width", cfg.Render.XResolution),
		zap.Int("height", cfg.Render.YResolution),
		zap.Float64("zoom", cfg.Render.Zoom),
		zap.String("font", cfg.Game.Font),
		zap.Uint8s("clear_color", []uint8{cfg.Render.ClearColorR, cfg.Render.ClearColorG, cfg.Render.ClearColorB}),
	)

	// 5. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	interval := cfg.Loop.FrameInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Info("game loop started", zap.Duration("frame", interval))

	for {
		select {
		case <-ticker.C:
			quit, err := w.RunTurn()
			if err != nil {
				return err
			}
			if quit {
				log.Info("quit requested", zap.Uint64("frame", w.Frame()))
				return nil
			}
			if n := cfg.Loop.MaxFrames; n != 0 && w.Frame() >= n {
				log.Info("frame limit reached", zap.Uint64("frame", w.Frame()))
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
