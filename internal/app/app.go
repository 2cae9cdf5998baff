package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/dotmatchlens/internal/config"
	"github.com/riskibarqy/dotmatchlens/internal/domain/message"
	"github.com/riskibarqy/dotmatchlens/internal/interfaces/httpapi"
	"github.com/riskibarqy/dotmatchlens/internal/interfaces/mcpserver"
	"github.com/riskibarqy/dotmatchlens/internal/platform/id"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
)

// App owns every long-lived dependency of the API process.
type App struct {
	cfg    config.Config
	logger *logging.Logger

	db    *sqlx.DB
	redis *goredis.Client
	bus   messageBus

	scheduler *usecase.CompetitionSyncScheduler
	server    *http.Server

	closeOnce sync.Once
}

// New opens storage, builds the services and subscribes the bus consumers.
// Nothing is served until Run.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{cfg: cfg, logger: logger}

	c, err := openCore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.db, a.redis = c.db, c.redis

	idGen := id.NewUUIDGenerator()
	bus, err := buildMessageBus(cfg, c.redisClient(), idGen, logger)
	if err != nil {
		c.close(logger)
		return nil, err
	}
	a.bus = bus

	source := buildCompetitionSource(cfg, c.redisClient(), logger)
	metrics := usecase.NewWorkflowMetrics()
	repos := c.repos

	workflows := usecase.NewWorkflowService(repos.workflows, repos.sagas, idGen, logger)
	football := usecase.NewFootballService(repos.teams, repos.players, repos.matches, c.embedder, bus, idGen, logger)
	competitions := usecase.NewCompetitionService(repos.competitions, repos.seasons, source.source, source.source, c.embedder, bus, idGen, logger)
	embeddings := usecase.NewEmbeddingService(repos.teams, repos.competitions, repos.seasons, c.embedder, bus, metrics, idGen, logger)
	footballAgent := usecase.NewFootballAgentService(c.llm, c.tools, cfg.AgentMaxRounds, metrics, logger)
	predictionAgent := usecase.NewLLMPredictionAgent(c.llm, c.embedder, repos.predictions, metrics, logger)
	predictions := usecase.NewPredictionService(repos.matches, repos.teams, repos.predictions, predictionAgent, footballAgent, workflows, idGen, logger)
	sagas := usecase.NewPredictionSagaService(repos.sagas, repos.matches, bus, workflows, metrics, idGen, logger)

	a.scheduler = usecase.NewCompetitionSyncScheduler(competitions, bus.jobs, usecase.CompetitionSyncSchedulerConfig{
		Codes:    cfg.CompetitionSyncCodes,
		Interval: cfg.CompetitionSyncInterval,
	}, logger)

	subscriptions := []struct {
		topic   string
		handler func(context.Context, message.Message) error
	}{
		{message.TopicMatchPredictionRequested, sagas.HandleRequested},
		{message.TopicMatchPredictionRequested, usecase.NewPredictionConsumer(predictions, repos.sagas, bus, workflows, metrics, logger).Handle},
		{message.TopicMatchPredictionCompleted, sagas.HandleCompleted},
		{message.TopicCompetitionSyncRequested, usecase.NewCompetitionSyncConsumer(competitions, bus, workflows, metrics, logger).Handle},
		{message.TopicCompetitionSyncCompleted, logCompleted(logger)},
		{message.TopicTeamDataIngested, embeddings.HandleTeamIngested},
		{message.TopicEmbeddingGenerationRequested, embeddings.HandleRequested},
		{message.TopicEmbeddingGenerationCompleted, logCompleted(logger)},
	}
	for _, sub := range subscriptions {
		if err := bus.Subscribe(sub.topic, sub.handler); err != nil {
			a.Close()
			return nil, fmt.Errorf("subscribe %s: %w", sub.topic, err)
		}
	}

	health := usecase.NewHealthService(cfg.HealthCheckTimeout, a.healthChecks(c, source)...)

	var mcpHandler http.Handler
	if cfg.MCPHTTPEnabled {
		srv, err := mcpserver.New(c.tools, cfg.ServiceVersion, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("build mcp server: %w", err)
		}
		mcpHandler = srv.HTTPHandler()
	}

	handler := httpapi.NewHandler(httpapi.Dependencies{
		Football:      football,
		Competitions:  competitions,
		Predictions:   predictions,
		Sagas:         sagas,
		Tools:         c.tools,
		Embeddings:    embeddings,
		Workflows:     workflows,
		Health:        health,
		Messages:      bus.deliverer,
		SyncJobs:      a.scheduler,
		StreamEnabled: cfg.WorkflowSSEEnabled,
		Heartbeat:     cfg.WorkflowHeartbeat,
	}, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken, mcpHandler)

	if cfg.HTTPAddr == "" {
		a.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}
	a.server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return a, nil
}

// Handler exposes the routed HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run starts the bus consumers, the competition scheduler and the HTTP
// server, and shuts them down once ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.bus.Start(ctx); err != nil {
		return fmt.Errorf("start message bus: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	a.startScheduler(runCtx, &wg)

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "addr", a.cfg.HTTPAddr, "bus_driver", a.cfg.BusDriver)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer stop()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("graceful shutdown failed", "error", err)
		runErr = errors.Join(runErr, err)
	}
	wg.Wait()

	a.logger.Info("http server stopped")
	return runErr
}

func (a *App) startScheduler(ctx context.Context, wg *sync.WaitGroup) {
	if len(a.cfg.CompetitionSyncCodes) == 0 {
		return
	}
	// QStash mode chains delayed jobs; other drivers poll in process.
	if a.bus.jobs != nil {
		result, err := a.scheduler.Bootstrap(ctx)
		if err != nil {
			a.logger.Warn("bootstrap competition sync jobs failed", "error", err)
			return
		}
		a.logger.Info("competition sync jobs bootstrapped", "queued", result.QueuedCount)
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.scheduler.Run(ctx)
	}()
}

// Close releases the bus and storage connections. Safe to call twice.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if a.bus.Bus != nil {
			if err := a.bus.Close(); err != nil {
				a.logger.Warn("close message bus", "error", err)
			}
		}
		(&core{db: a.db, redis: a.redis}).close(a.logger)
	})
}

func (a *App) healthChecks(c *core, source competitionSource) []usecase.HealthCheck {
	checks := make([]usecase.HealthCheck, 0, 5)
	if c.db != nil {
		checks = append(checks, usecase.HealthCheck{Name: "database", Critical: true, Probe: c.db.PingContext})
	}
	if c.redis != nil {
		rdb := c.redis
		checks = append(checks, usecase.HealthCheck{Name: "redis", Critical: true, Probe: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	checks = append(checks,
		usecase.HealthCheck{Name: "football_data", Probe: breakerProbe(source.breaker)},
		usecase.HealthCheck{Name: "llm", Probe: c.llm.ping},
	)
	if a.bus.breaker != nil {
		checks = append(checks, usecase.HealthCheck{Name: "qstash", Probe: breakerProbe(a.bus.breaker)})
	}
	return checks
}

func logCompleted(logger *logging.Logger) func(context.Context, message.Message) error {
	return func(ctx context.Context, msg message.Message) error {
		logger.InfoContext(ctx, "workflow message completed", "topic", msg.Topic(), "correlation_id", msg.Correlation())
		return nil
	}
}

// core is the storage and model layer shared by the API and the MCP binary.
type core struct {
	db       *sqlx.DB
	redis    *goredis.Client
	repos    repositories
	llm      languageModel
	embedder usecase.EmbeddingGenerator
	tools    *usecase.AgentTools
}

func openCore(ctx context.Context, cfg config.Config, logger *logging.Logger) (*core, error) {
	c := &core{}
	if cfg.DBURL != "" {
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.db = db
	}
	if cfg.UsesRedis() {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			c.close(logger)
			return nil, err
		}
		c.redis = rdb
	}

	repos, err := buildRepositories(cfg, c.db, c.redisClient(), logger)
	if err != nil {
		c.close(logger)
		return nil, err
	}
	c.repos = repos

	llm, err := buildLanguageModel(ctx, cfg, logger)
	if err != nil {
		c.close(logger)
		return nil, err
	}
	c.llm = llm
	c.embedder = buildEmbedder(cfg, llm, logger)
	c.tools = usecase.NewAgentTools(repos.competitions, repos.seasons, repos.teams, repos.matches, repos.predictions, c.embedder, logger)
	return c, nil
}

// redisClient avoids handing a typed nil to interface parameters.
func (c *core) redisClient() goredis.UniversalClient {
	if c.redis == nil {
		return nil
	}
	return c.redis
}

func (c *core) close(logger *logging.Logger) {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			logger.Warn("close redis", "error", err)
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			logger.Warn("close database", "error", err)
		}
	}
}

// Toolset is the agent tool surface without the HTTP server or the bus.
type Toolset struct {
	Tools *usecase.AgentTools
	core  *core
	log   *logging.Logger
}

// OpenToolset connects the same storage the API uses and returns its tools.
func OpenToolset(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Toolset, error) {
	if logger == nil {
		logger = logging.Default()
	}
	c, err := openCore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Toolset{Tools: c.tools, core: c, log: logger}, nil
}

func (t *Toolset) Close() {
	t.core.close(t.log)
}
