// Command shadowbench replays two trade-intent streams through the fill
// simulator and reports comparative cost metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/quantfold/shadowbench/config"
	"github.com/quantfold/shadowbench/internal/observability"
	"github.com/quantfold/shadowbench/internal/replay"
	"github.com/quantfold/shadowbench/lib/telemetry"
)

const (
	defaultConfigPath        = "config/shadowbench.yaml"
	loggerPrefix             = "shadowbench "
	telemetryShutdownTimeout = 5 * time.Second
	logLevelEnv              = "SHADOWBENCH_LOG_LEVEL"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		cfgPath = flag.String("config", "", fmt.Sprintf("Path to configuration file (default: %s)", defaultConfigPath))
		pathA   = flag.String("a", "", "Path to the A event stream (JSON array)")
		pathB   = flag.String("b", "", "Path to the B event stream (JSON array)")
		dir     = flag.String("artifacts", "", "Directory for run artifacts (overrides config)")
	)
	flag.Parse()

	if strings.TrimSpace(*pathA) == "" && strings.TrimSpace(*pathB) == "" {
		return errors.New("at least one of -a or -b is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(os.Stdout, loggerPrefix, log.LstdFlags|log.Lmicroseconds)
	observability.SetLogger(observability.NewStdLogger(logger,
		observability.ParseLevel(os.Getenv(logLevelEnv))))

	cfg, loadedFromFile, err := config.LoadOrDefault(resolveConfigPath(*cfgPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !loadedFromFile {
		logger.Printf("configuration file not found, using defaults")
	}
	if strings.TrimSpace(*dir) != "" {
		cfg.Replay.ArtifactsDir = *dir
	}
	logger.Printf("run initialised: run_id=%s strat_id=%s backend=%s",
		cfg.Run.RunID, cfg.Run.StratID, cfg.Batch.Backend)

	_, telemetryShutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer shutdownCancel()
		if err := telemetryShutdown(shutdownCtx); err != nil {
			logger.Printf("telemetry shutdown: %v", err)
		}
	}()

	eventsA, err := loadStream(*pathA)
	if err != nil {
		return err
	}
	eventsB, err := loadStream(*pathB)
	if err != nil {
		return err
	}
	logger.Printf("event streams loaded: a=%d b=%d", len(eventsA), len(eventsB))

	runner, err := replay.NewRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialise runner: %w", err)
	}

	report, err := runner.Run(ctx, eventsA, eventsB)
	if err != nil {
		return fmt.Errorf("replay run: %w", err)
	}

	rendered, err := report.Render()
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	fmt.Println(string(rendered))
	return nil
}

func loadStream(path string) ([]replay.Event, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	return replay.LoadEvents(path)
}

func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return filepath.Clean(defaultConfigPath)
}
