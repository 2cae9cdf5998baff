package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/dotmatchlens/internal/config"
	"github.com/riskibarqy/dotmatchlens/internal/domain/competition"
	"github.com/riskibarqy/dotmatchlens/internal/domain/match"
	"github.com/riskibarqy/dotmatchlens/internal/domain/player"
	"github.com/riskibarqy/dotmatchlens/internal/domain/prediction"
	"github.com/riskibarqy/dotmatchlens/internal/domain/predictionsaga"
	"github.com/riskibarqy/dotmatchlens/internal/domain/season"
	"github.com/riskibarqy/dotmatchlens/internal/domain/team"
	"github.com/riskibarqy/dotmatchlens/internal/domain/workflow"
	cacherepo "github.com/riskibarqy/dotmatchlens/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/dotmatchlens/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/dotmatchlens/internal/infrastructure/repository/postgres"
	redisrepo "github.com/riskibarqy/dotmatchlens/internal/infrastructure/repository/redis"
	"github.com/riskibarqy/dotmatchlens/internal/platform/cache"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/platform/pgdsn"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

const (
	dbConnMaxLifetime = 30 * time.Minute
	dbPingTimeout     = 5 * time.Second
	sagaFinalizedTTL  = 7 * 24 * time.Hour
)

// repositories is the storage set every service is built from.
type repositories struct {
	competitions competition.Repository
	seasons      season.Repository
	teams        team.Repository
	players      player.Repository
	matches      match.Repository
	predictions  prediction.Repository
	sagas        predictionsaga.Repository
	workflows    workflow.Repository
}

func openDatabase(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := cfg.DBURL
	if cfg.DBBinaryParameters {
		dsn = pgdsn.WithBinaryParameters(dsn)
	}
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBName(pgdsn.DatabaseName(dsn)),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxOpenConns / 2)
	}
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func openRedis(ctx context.Context, rawURL string) (*goredis.Client, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("REDIS_URL is required for the configured redis drivers")
	}
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// buildRepositories picks postgres when a database is open and the in-memory
// store otherwise, then layers the read-through cache on top.
func buildRepositories(cfg config.Config, db *sqlx.DB, rdb goredis.UniversalClient, logger *logging.Logger) (repositories, error) {
	var repos repositories
	if db != nil {
		repos = repositories{
			competitions: postgres.NewCompetitionRepository(db),
			seasons:      postgres.NewSeasonRepository(db),
			teams:        postgres.NewTeamRepository(db),
			players:      postgres.NewPlayerRepository(db),
			matches:      postgres.NewMatchRepository(db),
			predictions:  postgres.NewPredictionRepository(db),
			workflows:    postgres.NewWorkflowEventRepository(db),
		}
	} else {
		repos = memoryRepositories(cfg)
	}

	sagas, err := buildSagaStore(cfg, db, rdb)
	if err != nil {
		return repositories{}, err
	}
	repos.sagas = sagas

	if cfg.CacheEnabled {
		store := cache.NewStore(cfg.CacheTTL)
		repos.teams = cacherepo.NewTeamRepository(repos.teams, store)
		repos.competitions = cacherepo.NewCompetitionRepository(repos.competitions, store)
		repos.players = cacherepo.NewPlayerRepository(repos.players, store)
		repos.matches = cacherepo.NewMatchRepository(repos.matches, store)
	}

	logger.Info("repositories ready",
		"postgres", db != nil,
		"saga_store", cfg.SagaStore,
		"cache_enabled", cfg.CacheEnabled,
	)
	return repos, nil
}

func memoryRepositories(cfg config.Config) repositories {
	var (
		teams   []team.Team
		players []player.Player
		matches []match.Match
		events  []match.Event
	)
	if cfg.SeedDemoData {
		teams = memory.SeedTeams()
		players = memory.SeedPlayers()
		matches = memory.SeedMatches()
		events = memory.SeedMatchEvents()
	}

	teamRepo := memory.NewTeamRepository(teams)
	playerRepo := memory.NewPlayerRepository(players, teamRepo)
	matchRepo := memory.NewMatchRepository(matches, events, teamRepo, playerRepo)

	return repositories{
		competitions: memory.NewCompetitionRepository(),
		seasons:      memory.NewSeasonRepository(),
		teams:        teamRepo,
		players:      playerRepo,
		matches:      matchRepo,
		predictions:  memory.NewPredictionRepository(matchRepo),
		workflows:    memory.NewWorkflowEventRepository(cfg.WorkflowMaxEvents),
	}
}

func buildSagaStore(cfg config.Config, db *sqlx.DB, rdb goredis.UniversalClient) (predictionsaga.Repository, error) {
	switch cfg.SagaStore {
	case config.SagaStoreRedis:
		if rdb == nil {
			return nil, fmt.Errorf("saga store %q requires redis", cfg.SagaStore)
		}
		return redisrepo.NewPredictionSagaRepository(rdb,
			redisrepo.WithSagaKeyPrefix(cfg.RedisKeyPrefix+":saga:"),
			redisrepo.WithFinalizedTTL(sagaFinalizedTTL),
		), nil
	case config.SagaStorePostgres:
		if db == nil {
			return nil, fmt.Errorf("saga store %q requires DB_URL", cfg.SagaStore)
		}
		return postgres.NewPredictionSagaRepository(db), nil
	default:
		return memory.NewPredictionSagaRepository(), nil
	}
}

// competitionCacheBackend backs the football-data response cache.
func competitionCacheBackend(cfg config.Config, rdb goredis.UniversalClient) cache.Backend {
	if cfg.CacheDriver == config.CacheDriverRedis && rdb != nil {
		return cache.NewRedisBackend(rdb, cache.WithKeyPrefix(cfg.RedisKeyPrefix+":cache:"))
	}
	return cache.NewMemoryBackend(cache.NewStore(cfg.FootballDataCacheTTL))
}
