package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vanshika/cyphertx"
	"github.com/vanshika/cyphertx/internal/config"
	"github.com/vanshika/cyphertx/internal/logging"
)

var errEmptyScript = errors.New("script contains no statements")

func main() {
	var (
		scriptPath = flag.String("file", "", "path to a Cypher script (statements separated by ';')")
		batchSize  = flag.Int("batch", 25, "statements sent per request")
		dryRun     = flag.Bool("dry-run", false, "execute the script, then roll back instead of committing")
		timeout    = flag.Duration("timeout", 5*time.Minute, "overall execution timeout")
	)
	flag.Parse()

	if *scriptPath == "" {
		fmt.Fprintln(os.Stderr, "usage: cypherload -file <script.cypher> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "cypherload")

	stmts, err := loadScript(*scriptPath)
	if err != nil {
		logger.Error("failed to load script", "error", err, "path", *scriptPath)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	client, err := cyphertx.New(cyphertx.Options{
		URI:      cfg.Graph.URI,
		Username: cfg.Graph.Username,
		Password: cfg.Graph.Password,
		Timeout:  cfg.Graph.RequestTimeout,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}

	start := time.Now()
	logger.Info("loading script", "path", *scriptPath, "statements", len(stmts), "batch", *batchSize)

	if err := run(ctx, logger, client, stmts, *batchSize, *dryRun); err != nil {
		logger.Error("load failed", "error", err)
		os.Exit(1)
	}

	logger.Info("load complete", "duration", time.Since(start).String(), "statements", len(stmts), "dry_run", *dryRun)
}

// run executes all batches inside a single transaction so a failed script
// leaves nothing behind.
func run(ctx context.Context, logger *slog.Logger, client *cyphertx.Client, stmts []*cyphertx.Statement, batchSize int, dryRun bool) error {
	if batchSize < 1 {
		batchSize = 1
	}

	tx, _, err := client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if tx.State() == cyphertx.TxOpen {
			if err := tx.Rollback(context.Background()); err != nil {
				logger.Warn("rollback failed", "error", err)
			}
		}
	}()

	for offset := 0; offset < len(stmts); offset += batchSize {
		end := offset + batchSize
		if end > len(stmts) {
			end = len(stmts)
		}
		if _, err := tx.Exec(ctx, stmts[offset:end]...); err != nil {
			return fmt.Errorf("batch at statement %d: %w", offset+1, err)
		}
		logger.Info("batch applied", "from", offset+1, "to", end)
	}

	if dryRun {
		return tx.Rollback(ctx)
	}
	if _, err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func loadScript(path string) ([]*cyphertx.Statement, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	stmts := splitScript(string(raw))
	if len(stmts) == 0 {
		return nil, fmt.Errorf("%w: %s", errEmptyScript, path)
	}
	return stmts, nil
}

// splitScript breaks a script on ';' terminators, dropping blank fragments
// and '//' comment lines.
func splitScript(script string) []*cyphertx.Statement {
	var stmts []*cyphertx.Statement
	for _, fragment := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(fragment, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "//") {
				continue
			}
			lines = append(lines, trimmed)
		}
		if len(lines) == 0 {
			continue
		}
		stmts = append(stmts, cyphertx.NewStatement(strings.Join(lines, "\n")))
	}
	return stmts
}
