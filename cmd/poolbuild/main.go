// Command poolbuild runs a single pool build and exits. It is meant for
// external schedulers such as cron or a Kubernetes CronJob.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdugdh24/mpit2026-pools/internal/config"
	"github.com/gdugdh24/mpit2026-pools/internal/domain"
	"github.com/gdugdh24/mpit2026-pools/internal/infrastructure/container"
	"github.com/gdugdh24/mpit2026-pools/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log, err := logger.New(&cfg.Server, &cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		return 1
	}
	defer log.Sync() //nolint:errcheck

	app, err := container.NewContainer(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", zap.Error(err))
		return 1
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec, err := app.Runner.Run(ctx, domain.TriggerCLI)
	if err != nil {
		return 1
	}

	fmt.Printf("run %s: %d pools, %d members, %d profiles scanned\n",
		rec.RunID, rec.PoolCount, rec.MemberCount, rec.Scanned)
	return 0
}
