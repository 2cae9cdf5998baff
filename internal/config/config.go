package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/platform/resilience"
)

const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"

	BusDriverMemory = "memory"
	BusDriverRedis  = "redis"
	BusDriverQStash = "qstash"

	SagaStoreMemory   = "memory"
	SagaStoreRedis    = "redis"
	SagaStorePostgres = "postgres"

	LLMProviderOllama = "ollama"
	LLMProviderGemini = "gemini"

	EmbeddingProviderHash   = "hash"
	EmbeddingProviderOllama = "ollama"
	EmbeddingProviderGemini = "gemini"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
	SwaggerEnabled     bool
	MCPHTTPEnabled     bool
	InternalJobToken   string
	LogLevel           logging.Level

	// Empty DBURL runs on in-memory repositories.
	DBURL                   string
	DBBinaryParameters bool
	DBMaxOpenConns          int
	SeedDemoData            bool

	CacheEnabled         bool
	CacheDriver          string
	CacheTTL             time.Duration
	FootballDataCacheTTL time.Duration
	RedisURL             string
	RedisKeyPrefix       string

	FootballDataBaseURL      string
	FootballDataToken        string
	FootballDataTimeout      time.Duration
	FootballDataMaxRetries   int
	FootballDataRetryBackoff time.Duration
	FootballDataRateLimit    int
	FootballDataCircuit      resilience.CircuitBreakerConfig
	CompetitionSyncCodes     []string
	CompetitionSyncInterval  time.Duration

	LLMProvider          string
	LLMTimeout           time.Duration
	LLMCircuit           resilience.CircuitBreakerConfig
	AgentMaxRounds       int
	OllamaEndpoint       string
	OllamaChatModel      string
	OllamaEmbeddingModel string
	GeminiAPIKey         string
	GeminiChatModel      string
	GeminiEmbeddingModel string

	EmbeddingProvider   string
	EmbeddingDimensions int

	BusDriver       string
	BusWorkers      int
	BusStreamPrefix string
	BusGroup        string
	BusConsumer     string
	BusBlock        time.Duration
	BusMaxLen       int64

	SagaStore string

	WorkflowSSEEnabled bool
	WorkflowMaxEvents  int
	WorkflowHeartbeat  time.Duration

	HealthCheckTimeout time.Duration

	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	UptraceCaptureRequestBody  bool
	UptraceRequestBodyMaxBytes int
	BetterStackEnabled         bool
	BetterStackEndpoint        string
	BetterStackToken           string
	BetterStackTimeout         time.Duration
	BetterStackMinLevel        logging.Level
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	QStashBaseURL       string
	QStashToken         string
	QStashTargetBaseURL string
	QStashRetries       int
	QStashTimeout       time.Duration
	QStashCircuit       resilience.CircuitBreakerConfig
}

// UsesRedis reports whether any component needs the redis client.
func (c Config) UsesRedis() bool {
	return (c.CacheEnabled && c.CacheDriver == CacheDriverRedis) ||
		c.BusDriver == BusDriverRedis ||
		c.SagaStore == SagaStoreRedis
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "dotmatchlens-api"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:       getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		DBURL:              strings.TrimSpace(getEnv("DB_URL", "")),
		RedisURL:           strings.TrimSpace(getEnv("REDIS_URL", "")),
		RedisKeyPrefix:     strings.TrimSpace(getEnv("REDIS_KEY_PREFIX", "dotmatchlens")),

		FootballDataBaseURL:  strings.TrimSpace(getEnv("FOOTBALL_DATA_BASE_URL", "https://api.football-data.org/v4")),
		FootballDataToken:    strings.TrimSpace(getEnv("FOOTBALL_DATA_TOKEN", "")),
		CompetitionSyncCodes: splitCSV(strings.ToUpper(getEnv("COMPETITION_SYNC_CODES", ""))),

		LLMProvider:          strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", LLMProviderOllama))),
		OllamaEndpoint:       strings.TrimSpace(getEnv("OLLAMA_ENDPOINT", "http://localhost:11434")),
		OllamaChatModel:      strings.TrimSpace(getEnv("OLLAMA_CHAT_MODEL", "llama3.2")),
		OllamaEmbeddingModel: strings.TrimSpace(getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text")),
		GeminiAPIKey:         strings.TrimSpace(getEnv("GEMINI_API_KEY", "")),
		GeminiChatModel:      strings.TrimSpace(getEnv("GEMINI_CHAT_MODEL", "gemini-2.0-flash")),
		GeminiEmbeddingModel: strings.TrimSpace(getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004")),

		EmbeddingProvider: strings.ToLower(strings.TrimSpace(getEnv("EMBEDDING_PROVIDER", EmbeddingProviderHash))),
		CacheDriver:       strings.ToLower(strings.TrimSpace(getEnv("CACHE_DRIVER", CacheDriverMemory))),
		BusDriver:         strings.ToLower(strings.TrimSpace(getEnv("BUS_DRIVER", BusDriverMemory))),
		BusStreamPrefix:   strings.TrimSpace(getEnv("BUS_STREAM_PREFIX", "dotmatchlens:bus")),
		BusGroup:          strings.TrimSpace(getEnv("BUS_GROUP", "dotmatchlens-api")),
		BusConsumer:       strings.TrimSpace(getEnv("BUS_CONSUMER", hostnameOr("api-1"))),
		SagaStore:         strings.ToLower(strings.TrimSpace(getEnv("SAGA_STORE", SagaStoreMemory))),

		PprofAddr:                  strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		BetterStackEndpoint:        strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", "")),
		BetterStackToken:           strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackMinLevel:        parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error")),
		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),

		QStashBaseURL:       strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io")),
		QStashToken:         strings.TrimSpace(getEnv("QSTASH_TOKEN", "")),
		QStashTargetBaseURL: strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", "")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if err := loadHTTP(&cfg, swaggerDefault); err != nil {
		return Config{}, err
	}
	if err := loadStorage(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadFootballData(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadLLM(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadMessaging(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadHTTP(cfg *Config, swaggerDefault string) error {
	var err error
	if cfg.SwaggerEnabled, err = getEnvAsBool("SWAGGER_ENABLED", swaggerDefault); err != nil {
		return err
	}
	if cfg.MCPHTTPEnabled, err = getEnvAsBool("MCP_HTTP_ENABLED", "true"); err != nil {
		return err
	}
	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return err
	}
	// Agent calls can take a while on local models.
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", "120s"); err != nil {
		return err
	}
	if cfg.ShutdownTimeout, err = getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", "15s"); err != nil {
		return err
	}
	if cfg.HealthCheckTimeout, err = getEnvAsDuration("HEALTH_CHECK_TIMEOUT", "3s"); err != nil {
		return err
	}

	if cfg.WorkflowSSEEnabled, err = getEnvAsBool("WORKFLOW_SSE_ENABLED", "true"); err != nil {
		return err
	}
	if cfg.WorkflowMaxEvents, err = getEnvAsInt("WORKFLOW_MAX_EVENTS", 10000); err != nil {
		return fmt.Errorf("parse WORKFLOW_MAX_EVENTS: %w", err)
	}
	if cfg.WorkflowMaxEvents <= 0 {
		return fmt.Errorf("WORKFLOW_MAX_EVENTS must be > 0")
	}
	if cfg.WorkflowHeartbeat, err = getEnvAsDuration("WORKFLOW_HEARTBEAT_INTERVAL", "15s"); err != nil {
		return err
	}
	return nil
}

func loadStorage(cfg *Config) error {
	var err error
	if cfg.DBBinaryParameters, err = getEnvAsBool("DB_BINARY_PARAMETERS", "true"); err != nil {
		return err
	}
	if cfg.DBMaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.DBMaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be > 0")
	}
	if cfg.SeedDemoData, err = getEnvAsBool("SEED_DEMO_DATA", strconv.FormatBool(cfg.DBURL == "")); err != nil {
		return err
	}

	if cfg.CacheEnabled, err = getEnvAsBool("CACHE_ENABLED", "true"); err != nil {
		return err
	}
	switch cfg.CacheDriver {
	case CacheDriverMemory, CacheDriverRedis:
	default:
		return fmt.Errorf("invalid CACHE_DRIVER %q: valid values are %s, %s", cfg.CacheDriver, CacheDriverMemory, CacheDriverRedis)
	}
	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", "60s"); err != nil {
		return err
	}
	if cfg.FootballDataCacheTTL, err = getEnvAsDuration("FOOTBALL_DATA_CACHE_TTL", "720h"); err != nil {
		return err
	}

	switch cfg.SagaStore {
	case SagaStoreMemory, SagaStoreRedis:
	case SagaStorePostgres:
		if cfg.DBURL == "" {
			return fmt.Errorf("DB_URL is required when SAGA_STORE=%s", SagaStorePostgres)
		}
	default:
		return fmt.Errorf("invalid SAGA_STORE %q: valid values are %s, %s, %s", cfg.SagaStore, SagaStoreMemory, SagaStoreRedis, SagaStorePostgres)
	}
	return nil
}

func loadFootballData(cfg *Config) error {
	var err error
	if cfg.FootballDataTimeout, err = getEnvAsDuration("FOOTBALL_DATA_TIMEOUT", "20s"); err != nil {
		return err
	}
	if cfg.FootballDataMaxRetries, err = getEnvAsInt("FOOTBALL_DATA_MAX_RETRIES", 2); err != nil {
		return fmt.Errorf("parse FOOTBALL_DATA_MAX_RETRIES: %w", err)
	}
	if cfg.FootballDataMaxRetries < 0 {
		return fmt.Errorf("FOOTBALL_DATA_MAX_RETRIES must be >= 0")
	}
	if cfg.FootballDataRetryBackoff, err = getEnvAsDuration("FOOTBALL_DATA_RETRY_BACKOFF", "500ms"); err != nil {
		return err
	}
	if cfg.FootballDataRateLimit, err = getEnvAsInt("FOOTBALL_DATA_RATE_LIMIT_PER_MINUTE", 10); err != nil {
		return fmt.Errorf("parse FOOTBALL_DATA_RATE_LIMIT_PER_MINUTE: %w", err)
	}
	if cfg.FootballDataRateLimit < 1 {
		return fmt.Errorf("FOOTBALL_DATA_RATE_LIMIT_PER_MINUTE must be >= 1")
	}
	if cfg.FootballDataCircuit, err = loadCircuit("FOOTBALL_DATA", resilience.DependencyFootballData); err != nil {
		return err
	}
	if cfg.CompetitionSyncInterval, err = getEnvAsDuration("COMPETITION_SYNC_INTERVAL", "6h"); err != nil {
		return err
	}
	if len(cfg.CompetitionSyncCodes) > 0 && cfg.FootballDataToken == "" {
		return fmt.Errorf("FOOTBALL_DATA_TOKEN is required when COMPETITION_SYNC_CODES is set")
	}
	return nil
}

func loadLLM(cfg *Config) error {
	var err error
	switch cfg.LLMProvider {
	case LLMProviderOllama:
	case LLMProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=%s", LLMProviderGemini)
		}
	default:
		return fmt.Errorf("invalid LLM_PROVIDER %q: valid values are %s, %s", cfg.LLMProvider, LLMProviderOllama, LLMProviderGemini)
	}
	if cfg.LLMTimeout, err = getEnvAsDuration("LLM_TIMEOUT", "60s"); err != nil {
		return err
	}
	if cfg.LLMCircuit, err = loadCircuit("LLM", resilience.DependencyLLM); err != nil {
		return err
	}
	if cfg.AgentMaxRounds, err = getEnvAsInt("AGENT_MAX_TOOL_ROUNDS", 5); err != nil {
		return fmt.Errorf("parse AGENT_MAX_TOOL_ROUNDS: %w", err)
	}
	if cfg.AgentMaxRounds < 1 {
		return fmt.Errorf("AGENT_MAX_TOOL_ROUNDS must be >= 1")
	}

	switch cfg.EmbeddingProvider {
	case EmbeddingProviderHash, EmbeddingProviderOllama:
	case EmbeddingProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when EMBEDDING_PROVIDER=%s", EmbeddingProviderGemini)
		}
	default:
		return fmt.Errorf("invalid EMBEDDING_PROVIDER %q: valid values are %s, %s, %s", cfg.EmbeddingProvider, EmbeddingProviderHash, EmbeddingProviderOllama, EmbeddingProviderGemini)
	}
	if cfg.EmbeddingDimensions, err = getEnvAsInt("EMBEDDING_DIMENSIONS", 768); err != nil {
		return fmt.Errorf("parse EMBEDDING_DIMENSIONS: %w", err)
	}
	if cfg.EmbeddingDimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be > 0")
	}
	return nil
}

func loadMessaging(cfg *Config) error {
	var err error
	if cfg.BusWorkers, err = getEnvAsInt("BUS_WORKERS", 16); err != nil {
		return fmt.Errorf("parse BUS_WORKERS: %w", err)
	}
	if cfg.BusWorkers < 1 {
		return fmt.Errorf("BUS_WORKERS must be >= 1")
	}
	if cfg.BusBlock, err = getEnvAsDuration("BUS_BLOCK", "2s"); err != nil {
		return err
	}
	maxLen, err := getEnvAsInt("BUS_STREAM_MAX_LEN", 10000)
	if err != nil {
		return fmt.Errorf("parse BUS_STREAM_MAX_LEN: %w", err)
	}
	cfg.BusMaxLen = int64(maxLen)

	if cfg.QStashRetries, err = getEnvAsInt("QSTASH_RETRIES", 3); err != nil {
		return fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	if cfg.QStashRetries < 0 {
		return fmt.Errorf("QSTASH_RETRIES must be >= 0")
	}
	if cfg.QStashTimeout, err = getEnvAsDuration("QSTASH_TIMEOUT", "10s"); err != nil {
		return err
	}
	if cfg.QStashCircuit, err = loadCircuit("QSTASH", resilience.DependencyQStash); err != nil {
		return err
	}

	switch cfg.BusDriver {
	case BusDriverMemory:
	case BusDriverRedis:
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when BUS_DRIVER=%s", BusDriverRedis)
		}
	case BusDriverQStash:
		if cfg.QStashToken == "" {
			return fmt.Errorf("QSTASH_TOKEN is required when BUS_DRIVER=%s", BusDriverQStash)
		}
		if cfg.QStashTargetBaseURL == "" {
			return fmt.Errorf("QSTASH_TARGET_BASE_URL is required when BUS_DRIVER=%s", BusDriverQStash)
		}
		if cfg.InternalJobToken == "" {
			return fmt.Errorf("INTERNAL_JOB_TOKEN is required when BUS_DRIVER=%s", BusDriverQStash)
		}
	default:
		return fmt.Errorf("invalid BUS_DRIVER %q: valid values are %s, %s, %s", cfg.BusDriver, BusDriverMemory, BusDriverRedis, BusDriverQStash)
	}

	if cfg.UsesRedis() && cfg.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when a redis cache, bus or saga store is selected")
	}
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", "false"); err != nil {
		return err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.UptraceLogsEnabled, err = getEnvAsBool("UPTRACE_LOGS_ENABLED", "true"); err != nil {
		return err
	}
	if cfg.UptraceCaptureRequestBody, err = getEnvAsBool("UPTRACE_CAPTURE_REQUEST_BODY", "true"); err != nil {
		return err
	}
	if cfg.UptraceRequestBodyMaxBytes, err = getEnvAsInt("UPTRACE_REQUEST_BODY_MAX_BYTES", 8192); err != nil {
		return fmt.Errorf("parse UPTRACE_REQUEST_BODY_MAX_BYTES: %w", err)
	}
	if cfg.UptraceRequestBodyMaxBytes <= 0 {
		return fmt.Errorf("UPTRACE_REQUEST_BODY_MAX_BYTES must be > 0")
	}

	if cfg.BetterStackEnabled, err = getEnvAsBool("BETTERSTACK_ENABLED", "false"); err != nil {
		return err
	}
	if cfg.BetterStackEnabled && cfg.BetterStackEndpoint == "" {
		return fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	if cfg.BetterStackTimeout, err = getEnvAsDuration("BETTERSTACK_TIMEOUT", "3s"); err != nil {
		return err
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", "false"); err != nil {
		return err
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", "false"); err != nil {
		return err
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}
	return nil
}

func loadCircuit(prefix string, dep resilience.Dependency) (resilience.CircuitBreakerConfig, error) {
	var (
		out      = resilience.DefaultsFor(dep)
		defaults = out
		err      error
	)
	if out.Enabled, err = getEnvAsBool(prefix+"_CIRCUIT_ENABLED", "true"); err != nil {
		return out, err
	}
	if out.FailureThreshold, err = getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", defaults.FailureThreshold); err != nil {
		return out, fmt.Errorf("parse %s_CIRCUIT_FAILURE_COUNT: %w", prefix, err)
	}
	if out.OpenTimeout, err = getEnvAsDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", defaults.OpenTimeout.String()); err != nil {
		return out, err
	}
	if out.HalfOpenMaxReq, err = getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", defaults.HalfOpenMaxReq); err != nil {
		return out, fmt.Errorf("parse %s_CIRCUIT_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if err := out.Validate(); err != nil {
		return out, fmt.Errorf("%s: %w", prefix, err)
	}
	return out, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key, fallback string) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, fallback))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

// getEnvAsDuration rejects non-positive values.
func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func hostnameOr(fallback string) string {
	name, err := os.Hostname()
	if err != nil || strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
