// cmd/onboarding-server/main.go
package main

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"murmax-onboarding/internal/api"
	"murmax-onboarding/internal/archive"
	commonaws "murmax-onboarding/internal/common/aws"
	"murmax-onboarding/internal/common/camunda"
	"murmax-onboarding/internal/common/config"
	"murmax-onboarding/internal/common/database"
	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/common/observability"
	"murmax-onboarding/internal/draftstore"
	"murmax-onboarding/internal/handoff"
	"murmax-onboarding/internal/handoff/sinks"
	"murmax-onboarding/internal/join"
	vjs "murmax-onboarding/internal/workers/join/verify-join-submission"
	fa "murmax-onboarding/internal/workers/onboarding/finalize-application"
	"murmax-onboarding/pkg/registry"
)

// retryWithBackoff attempts operation with exponential backoff.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.Build(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	if err := run(cfg, zapLog); err != nil {
		zapLog.Fatal("onboarding server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLog *zap.Logger) error {
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})
	zapLog.Info("Starting onboarding server...", zap.String("environment", cfg.App.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.App.Name, nil)
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
	}

	// --- Draft Store ---
	var (
		store      draftstore.Store
		closeStore func() error
	)
	err = retryWithBackoff(func() error {
		var err error
		store, closeStore, err = draftstore.Open(ctx, cfg, log)
		return err
	}, 10, 2*time.Second, zapLog, "Draft store connection")
	if err != nil {
		return err
	}
	defer closeStore()
	zapLog.Info("Draft store ready", zap.String("backend", cfg.Storage.Backend))

	// --- Handoff Bridge ---
	bus := handoff.NewBus(
		handoff.BusWithLogger(log),
		handoff.BusWithCapacity(cfg.Handoff.BufferSize),
		handoff.BusWithObservability(obs),
	)
	defer bus.Close()

	navigator := handoff.NewNavigator()
	if err := navigator.Restore(ctx, store); err != nil && !stderrors.Is(err, draftstore.ErrNoLastCreated) {
		zapLog.Warn("navigation signal not restored", zap.Error(err))
	}
	consumers := []<-chan struct{}{bus.Go(ctx, navigator)}

	bridge := handoff.NewBridge(store, bus,
		handoff.WithFragment(cfg.Handoff.Fragment),
		handoff.WithLogger(log),
	)

	// --- PostgreSQL (archive and join submissions) ---
	var pg *sql.DB
	if cfg.Database.Postgres.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(ctx, cfg.Database.Postgres)
			return err
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return err
		}
		defer pg.Close()
		if cfg.Database.Postgres.Migrate {
			if err := archive.Migrate(pg); err != nil {
				return fmt.Errorf("migrate archive schema: %w", err)
			}
		}
		zapLog.Info("PostgreSQL connected successfully")
	}

	if cfg.Handoff.Archive && pg != nil {
		consumers = append(consumers, bus.Go(ctx, archive.NewConsumer(archive.NewRepository(pg, log))))
	}

	// --- Elasticsearch ---
	if cfg.Handoff.SearchIndex {
		var esClient *elasticsearch.Client
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(ctx, cfg.Database.Elasticsearch)
			return err
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			return err
		}
		consumers = append(consumers, bus.Go(ctx,
			sinks.NewSearchIndexer(esClient, cfg.Database.Elasticsearch.Index, log)))
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- SNS topic ---
	if cfg.Handoff.TopicARN != "" {
		snsClient, err := commonaws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			return fmt.Errorf("sns client: %w", err)
		}
		consumers = append(consumers, bus.Go(ctx, sinks.NewTopicPublisher(snsClient, cfg.Handoff.TopicARN, log)))
	}

	// --- Zeebe ---
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: cfg.Camunda.Plaintext,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			return err
		}
		defer zeebe.Close()
		zapLog.Info("Zeebe client connected successfully")

		if cfg.Handoff.WorkflowSink {
			consumers = append(consumers, bus.Go(ctx, sinks.NewWorkflowNotifier(zeebe, log)))
		}
	}

	// --- Join page ---
	joinService, err := newJoinService(ctx, cfg, pg, log)
	if err != nil {
		return err
	}

	// --- Workers ---
	var workers []*camunda.Worker
	if zeebe != nil {
		workers, err = openWorkers(cfg, zeebe, store, bridge, joinService, log, zapLog)
		if err != nil {
			return err
		}
	}

	// --- HTTP ---
	server := api.NewServer(api.Dependencies{
		Store:         store,
		Publisher:     bridge,
		Navigator:     navigator,
		Join:          join.NewHandler(joinService, log),
		Logger:        log,
		UploadLimitMB: cfg.Uploads.MaxSizeMB,
	})
	httpServer := &http.Server{
		Addr:              cfg.App.Addr(),
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go sweepSessions(ctx, server.Sessions(), zapLog)

	serveErr := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received, stopping...")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.App.ShutdownTimeout))
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop(shutdownCtx)
	}
	bus.Close()
	for _, done := range consumers {
		select {
		case <-done:
		case <-shutdownCtx.Done():
		}
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("observability shutdown failed", zap.Error(err))
	}

	zapLog.Info("Onboarding server stopped gracefully")
	return nil
}

func newJoinService(ctx context.Context, cfg *config.Config, pg *sql.DB, log logger.Logger) (*join.Service, error) {
	rc := cfg.Security.Recaptcha
	deps := join.ServiceDependencies{
		Verifier: join.NewRecaptchaVerifier(rc.SecretKey, rc.VerifyURL, config.GetDuration(rc.Timeout)),
		Logger:   log,
	}
	if rc.SecretKey == "" {
		log.Warn("recaptcha secret is not configured; join submissions will be refused", nil)
	}
	if pg != nil {
		deps.Store = join.NewPostgresRepository(pg, log)
	}
	if cfg.Notifications.Email.Enabled {
		sesClient, err := commonaws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("ses client: %w", err)
		}
		deps.Notifier = join.NewSESNotifier(sesClient, cfg.Notifications.Email.FromEmail, cfg.Notifications.Email.To)
	}
	return join.NewService(deps, rc.MinScore), nil
}

// openWorkers subscribes every enabled worker the activity registry lists.
func openWorkers(
	cfg *config.Config,
	zeebe *camunda.Client,
	store draftstore.Store,
	bridge *handoff.Bridge,
	joinService *join.Service,
	log logger.Logger,
	zapLog *zap.Logger,
) ([]*camunda.Worker, error) {
	reg, err := registry.LoadRegistry(cfg.Camunda.Registry)
	if err != nil {
		return nil, fmt.Errorf("load activity registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("activity registry: %w", err)
	}

	var workers []*camunda.Worker
	open := func(handler camunda.JobHandler, key string, opts camunda.WorkerOptions) {
		if !reg.Runnable(handler.GetTaskType()) || !config.IsWorkerEnabled(cfg, key) {
			zapLog.Info("worker disabled", zap.String("taskType", handler.GetTaskType()))
			return
		}
		workers = append(workers, camunda.OpenWorker(zeebe.GetClient(), handler, opts, log))
	}

	faCfg := fa.FromWorkerConfig(config.GetWorkerConfig(cfg, fa.ConfigKey), cfg.Uploads.MaxSizeMB)
	finalize, err := fa.NewHandler(fa.HandlerOptions{
		Config:    faCfg,
		Store:     store,
		Publisher: bridge,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fa.TaskType, err)
	}
	open(finalize, fa.ConfigKey, camunda.WorkerOptions{MaxJobsActive: faCfg.MaxJobsActive, Timeout: faCfg.Timeout})

	vjsCfg := vjs.FromWorkerConfig(config.GetWorkerConfig(cfg, vjs.ConfigKey))
	verify, err := vjs.NewHandler(vjs.HandlerOptions{
		Config:    vjsCfg,
		Submitter: joinService,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", vjs.TaskType, err)
	}
	open(verify, vjs.ConfigKey, camunda.WorkerOptions{MaxJobsActive: vjsCfg.MaxJobsActive, Timeout: vjsCfg.Timeout})

	zapLog.Info("workers started", zap.Int("count", len(workers)))
	return workers, nil
}

func sweepSessions(ctx context.Context, sessions *api.Sessions, zapLog *zap.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				zapLog.Debug("idle wizard sessions removed", zap.Int("count", n))
			}
		}
	}
}
