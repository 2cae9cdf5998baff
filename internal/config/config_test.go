package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// loadWith runs Load with env layered over a quiet dev baseline.
func loadWith(t *testing.T, env map[string]string) (Config, error) {
	t.Helper()

	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	for k, v := range env {
		t.Setenv(k, v)
	}
	return Load()
}

func TestLoad_ObservabilityValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown app env":            {"APP_ENV": "staging-eu"},
		"uptrace without dsn":        {"UPTRACE_ENABLED": "true", "UPTRACE_DSN": ""},
		"betterstack without host":   {"BETTERSTACK_ENABLED": "true", "BETTERSTACK_ENDPOINT": ""},
		"pyroscope without server":   {"PYROSCOPE_ENABLED": "true", "PYROSCOPE_SERVER_ADDRESS": ""},
		"binary parameters not bool": {"DB_BINARY_PARAMETERS": "sometimes"},
		"cache ttl not a duration":   {"CACHE_TTL": "a minute"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := loadWith(t, env); err == nil {
				t.Fatalf("expected error for %v", env)
			}
		})
	}
}

func TestLoad_ObservabilitySettings(t *testing.T) {
	cfg, err := loadWith(t, map[string]string{
		"APP_SERVICE_NAME":         "dotmatchlens-worker",
		"BETTERSTACK_ENABLED":      "true",
		"BETTERSTACK_ENDPOINT":     "in.logs.betterstack.com",
		"BETTERSTACK_TOKEN":        "bs-token",
		"BETTERSTACK_TIMEOUT":      "4s",
		"BETTERSTACK_MIN_LEVEL":    "warn",
		"PPROF_ENABLED":            "true",
		"PPROF_ADDR":               " ",
		"PYROSCOPE_ENABLED":        "true",
		"PYROSCOPE_SERVER_ADDRESS": "http://pyroscope:4040",
		"PYROSCOPE_APP_NAME":       "",
	})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.BetterStackEndpoint != "in.logs.betterstack.com" || cfg.BetterStackToken != "bs-token" {
		t.Fatalf("unexpected betterstack target: %q", cfg.BetterStackEndpoint)
	}
	if cfg.BetterStackTimeout != 4*time.Second || cfg.BetterStackMinLevel.String() != "warn" {
		t.Fatalf("unexpected betterstack tuning: timeout=%s level=%s", cfg.BetterStackTimeout, cfg.BetterStackMinLevel)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("blank PPROF_ADDR should fall back to :6060, got %q", cfg.PprofAddr)
	}
	if cfg.PyroscopeAppName != "dotmatchlens-worker" {
		t.Fatalf("pyroscope app name should follow the service name, got %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_SwaggerFollowsEnvironment(t *testing.T) {
	for env, want := range map[string]bool{EnvDev: true, EnvProd: false} {
		t.Run(env, func(t *testing.T) {
			cfg, err := loadWith(t, map[string]string{"APP_ENV": env, "SWAGGER_ENABLED": ""})
			if err != nil {
				t.Fatalf("load config: %v", err)
			}
			if cfg.SwaggerEnabled != want {
				t.Fatalf("SwaggerEnabled = %v in %s", cfg.SwaggerEnabled, env)
			}
		})
	}
}

func TestLoad_CORSOrigins(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: []string{"*"}},
		{raw: " https://lens.example.com, http://localhost:5173 ,", want: []string{"https://lens.example.com", "http://localhost:5173"}},
	}
	for _, tc := range cases {
		cfg, err := loadWith(t, map[string]string{"CORS_ALLOWED_ORIGINS": tc.raw})
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if diff := cmp.Diff(tc.want, cfg.CORSAllowedOrigins); diff != "" {
			t.Fatalf("origins for %q (-want +got):\n%s", tc.raw, diff)
		}
	}
}

func TestLoad_StorageDefaults(t *testing.T) {
	cfg, err := loadWith(t, map[string]string{"DB_BINARY_PARAMETERS": "", "CACHE_ENABLED": "", "CACHE_TTL": ""})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.DBBinaryParameters {
		t.Fatalf("expected binary parameters on by default")
	}
	if !cfg.CacheEnabled || cfg.CacheTTL != time.Minute {
		t.Fatalf("unexpected cache defaults: enabled=%v ttl=%s", cfg.CacheEnabled, cfg.CacheTTL)
	}
}

func TestLoad_DriverDefaults(t *testing.T) {
	cfg, err := loadWith(t, nil)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BusDriver != BusDriverMemory || cfg.SagaStore != SagaStoreMemory || cfg.CacheDriver != CacheDriverMemory {
		t.Fatalf("unexpected drivers: bus=%s saga=%s cache=%s", cfg.BusDriver, cfg.SagaStore, cfg.CacheDriver)
	}
	if cfg.LLMProvider != LLMProviderOllama || cfg.EmbeddingProvider != EmbeddingProviderHash {
		t.Fatalf("unexpected providers: llm=%s embedding=%s", cfg.LLMProvider, cfg.EmbeddingProvider)
	}
	if cfg.EmbeddingDimensions != 768 {
		t.Fatalf("expected 768 dimensions, got %d", cfg.EmbeddingDimensions)
	}
	if cfg.FootballDataRateLimit != 10 {
		t.Fatalf("expected default rate limit 10, got %d", cfg.FootballDataRateLimit)
	}
	if cfg.FootballDataCacheTTL != 30*24*time.Hour {
		t.Fatalf("unexpected football-data cache ttl: %s", cfg.FootballDataCacheTTL)
	}
	if !cfg.WorkflowSSEEnabled || cfg.WorkflowHeartbeat != 15*time.Second {
		t.Fatalf("unexpected workflow stream config: enabled=%v heartbeat=%s", cfg.WorkflowSSEEnabled, cfg.WorkflowHeartbeat)
	}
	if cfg.DBURL != "" || !cfg.SeedDemoData {
		t.Fatalf("expected in-memory mode with demo data by default")
	}
	if cfg.UsesRedis() {
		t.Fatalf("expected no redis usage by default")
	}
}

func TestLoad_DriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cases := map[string]map[string]string{
		"unknown bus":              {"BUS_DRIVER": "kafka"},
		"unknown saga store":       {"SAGA_STORE": "mongo"},
		"unknown cache driver":     {"CACHE_DRIVER": "memcached"},
		"unknown llm":              {"LLM_PROVIDER": "openai"},
		"unknown embedding":        {"EMBEDDING_PROVIDER": "bert"},
		"redis bus without url":    {"BUS_DRIVER": BusDriverRedis, "REDIS_URL": ""},
		"redis saga without url":   {"SAGA_STORE": SagaStoreRedis, "REDIS_URL": ""},
		"postgres saga without db": {"SAGA_STORE": SagaStorePostgres, "DB_URL": ""},
		"gemini without key":       {"LLM_PROVIDER": LLMProviderGemini, "GEMINI_API_KEY": ""},
		"sync codes without token": {"COMPETITION_SYNC_CODES": "PL", "FOOTBALL_DATA_TOKEN": ""},
		"zero dimensions":          {"EMBEDDING_DIMENSIONS": "0"},
		"zero heartbeat":           {"WORKFLOW_HEARTBEAT_INTERVAL": "0s"},
		"bad circuit count":        {"FOOTBALL_DATA_CIRCUIT_FAILURE_COUNT": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %v", env)
			}
		})
	}
}

func TestLoad_RedisDrivers(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("BUS_DRIVER", "Redis")
	t.Setenv("SAGA_STORE", "redis")
	t.Setenv("CACHE_DRIVER", "redis")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BusDriver != BusDriverRedis || cfg.SagaStore != SagaStoreRedis {
		t.Fatalf("unexpected drivers: bus=%s saga=%s", cfg.BusDriver, cfg.SagaStore)
	}
	if !cfg.UsesRedis() {
		t.Fatalf("expected UsesRedis=true")
	}
}

func TestLoad_QStashBusConfig(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("requires token and target and internal token", func(t *testing.T) {
		t.Setenv("BUS_DRIVER", BusDriverQStash)
		t.Setenv("QSTASH_TOKEN", "")
		t.Setenv("QSTASH_TARGET_BASE_URL", "")
		t.Setenv("INTERNAL_JOB_TOKEN", "")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error when BUS_DRIVER=qstash without required env")
		}
	})

	t.Run("with required values", func(t *testing.T) {
		t.Setenv("BUS_DRIVER", BusDriverQStash)
		t.Setenv("QSTASH_TOKEN", "qstash-token")
		t.Setenv("QSTASH_TARGET_BASE_URL", "https://dotmatchlens.fly.dev")
		t.Setenv("INTERNAL_JOB_TOKEN", "internal-job-token")
		t.Setenv("QSTASH_RETRIES", "2")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.QStashRetries != 2 {
			t.Fatalf("unexpected qstash retries: %d", cfg.QStashRetries)
		}
		if cfg.InternalJobToken != "internal-job-token" {
			t.Fatalf("unexpected internal job token: %q", cfg.InternalJobToken)
		}
		if !cfg.QStashCircuit.Enabled || cfg.QStashCircuit.FailureThreshold != 5 {
			t.Fatalf("unexpected qstash circuit config: %+v", cfg.QStashCircuit)
		}
	})
}

func TestLoad_CompetitionSyncCodes(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("FOOTBALL_DATA_TOKEN", "fd-token")
	t.Setenv("COMPETITION_SYNC_CODES", " pl, cl ,")
	t.Setenv("COMPETITION_SYNC_INTERVAL", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CompetitionSyncCodes) != 2 || cfg.CompetitionSyncCodes[0] != "PL" || cfg.CompetitionSyncCodes[1] != "CL" {
		t.Fatalf("unexpected sync codes: %+v", cfg.CompetitionSyncCodes)
	}
	if cfg.CompetitionSyncInterval != 2*time.Hour {
		t.Fatalf("unexpected sync interval: %s", cfg.CompetitionSyncInterval)
	}
}
