package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/lp-farming/farming-core/internal/api"
	"github.com/lp-farming/farming-core/internal/config"
	"github.com/lp-farming/farming-core/internal/db"
	dbmodel "github.com/lp-farming/farming-core/internal/db/model"
	"github.com/lp-farming/farming-core/internal/observability/metrics"
	"github.com/lp-farming/farming-core/internal/observability/tracing"
	"github.com/lp-farming/farming-core/internal/queue"
	"github.com/lp-farming/farming-core/internal/services"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the farming ledger api and its background jobs",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		return fmt.Errorf("error while loading config file %s: %w", cfgPath, err)
	}

	if err := dbmodel.Setup(ctx, &cfg.Db); err != nil {
		return fmt.Errorf("error while setting up ledger db model: %w", err)
	}

	// create new db client
	database, err := db.New(ctx, cfg.Db)
	if err != nil {
		return fmt.Errorf("error while creating db client: %w", err)
	}
	defer func() {
		if err := database.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("error while closing db client")
		}
	}()
	var dbClient db.DbInterface = db.NewDbWithMetrics(database)

	// events are only stored when no queue is configured
	var publisher services.EventPublisher
	if cfg.Queue != nil {
		qm, err := queue.NewQueueManager(cfg.Queue)
		if err != nil {
			return fmt.Errorf("error while creating queue manager: %w", err)
		}
		defer qm.Shutdown()
		publisher = qm
	}

	// initialize metrics with the metrics port from config
	metrics.Init(cfg.Metrics.GetMetricsPort())

	service := services.NewService(cfg, dbClient, publisher, nil)
	if err := service.Bootstrap(ctx); err != nil {
		return fmt.Errorf("error while loading the ledger: %w", err)
	}

	server := api.New(&cfg.Server, service)

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		return server.Start(ctx)
	})
	p.Go(func(ctx context.Context) error {
		service.StartPollers(ctx)
		return nil
	})

	log.Info().Uint64("sequence", service.Sequence()).Msg("farming ledger started")
	return p.Wait()
}
