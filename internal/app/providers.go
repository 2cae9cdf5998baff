package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/dotmatchlens/external/footballdata"
	"github.com/riskibarqy/dotmatchlens/external/gemini"
	"github.com/riskibarqy/dotmatchlens/external/jobqueue"
	"github.com/riskibarqy/dotmatchlens/external/ollama"
	"github.com/riskibarqy/dotmatchlens/internal/config"
	"github.com/riskibarqy/dotmatchlens/internal/infrastructure/embedding"
	"github.com/riskibarqy/dotmatchlens/internal/infrastructure/messaging"
	"github.com/riskibarqy/dotmatchlens/internal/platform/id"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/platform/resilience"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
)

// languageModel is the chat backend plus the probe and breaker the health
// report reads.
type languageModel struct {
	usecase.LanguageModel
	embed   embedding.Vectorizer
	ping    func(ctx context.Context) error
	breaker *resilience.CircuitBreaker
}

func buildLanguageModel(ctx context.Context, cfg config.Config, logger *logging.Logger) (languageModel, error) {
	switch cfg.LLMProvider {
	case config.LLMProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:         cfg.GeminiAPIKey,
			ChatModel:      cfg.GeminiChatModel,
			EmbeddingModel: cfg.GeminiEmbeddingModel,
			Dimensions:     cfg.EmbeddingDimensions,
			Logger:         logger,
			CircuitBreaker: cfg.LLMCircuit,
		})
		if err != nil {
			return languageModel{}, fmt.Errorf("build gemini client: %w", err)
		}
		return languageModel{
			LanguageModel: client,
			embed:         client,
			ping:          breakerProbe(client.Breaker()),
			breaker:       client.Breaker(),
		}, nil
	default:
		client := ollama.NewClient(ollama.Config{
			Endpoint:       cfg.OllamaEndpoint,
			ChatModel:      cfg.OllamaChatModel,
			EmbeddingModel: cfg.OllamaEmbeddingModel,
			Timeout:        cfg.LLMTimeout,
			Logger:         logger,
			CircuitBreaker: cfg.LLMCircuit,
		})
		return languageModel{
			LanguageModel: client,
			embed:         client,
			ping:          client.Ping,
			breaker:       client.Breaker(),
		}, nil
	}
}

// buildEmbedder always ends in the hash embedder so vectors exist even when
// the model backend is down.
func buildEmbedder(cfg config.Config, llm languageModel, logger *logging.Logger) usecase.EmbeddingGenerator {
	hash := embedding.NewHashEmbedder(cfg.EmbeddingDimensions)

	var primary usecase.EmbeddingGenerator
	switch cfg.EmbeddingProvider {
	case config.EmbeddingProviderOllama:
		if cfg.LLMProvider == config.LLMProviderOllama && llm.embed != nil {
			primary = embedding.NewOllamaEmbedder(llm.embed, cfg.EmbeddingDimensions)
		} else {
			primary = embedding.NewOllamaEmbedder(ollama.NewClient(ollama.Config{
				Endpoint:       cfg.OllamaEndpoint,
				EmbeddingModel: cfg.OllamaEmbeddingModel,
				Timeout:        cfg.LLMTimeout,
				Logger:         logger,
				CircuitBreaker: cfg.LLMCircuit,
			}), cfg.EmbeddingDimensions)
		}
	case config.EmbeddingProviderGemini:
		if cfg.LLMProvider == config.LLMProviderGemini && llm.embed != nil {
			primary = embedding.NewGenAIEmbedder(llm.embed, cfg.EmbeddingDimensions)
		} else {
			logger.Warn("gemini embeddings need LLM_PROVIDER=gemini, using hash embeddings")
		}
	}

	if primary == nil {
		return hash
	}
	return embedding.NewFallbackEmbedder(primary, hash, logger)
}

type competitionSource struct {
	source  *footballdata.CachedCompetitionSource
	breaker *resilience.CircuitBreaker
}

func buildCompetitionSource(cfg config.Config, rdb goredis.UniversalClient, logger *logging.Logger) competitionSource {
	client := footballdata.NewClient(footballdata.ClientConfig{
		BaseURL:            cfg.FootballDataBaseURL,
		Token:              cfg.FootballDataToken,
		Timeout:            cfg.FootballDataTimeout,
		MaxRetries:         cfg.FootballDataMaxRetries,
		RetryBackoff:       cfg.FootballDataRetryBackoff,
		RateLimitPerMinute: cfg.FootballDataRateLimit,
		Logger:             logger,
		CircuitBreaker:     cfg.FootballDataCircuit,
	})
	cached := footballdata.NewCachedCompetitionSource(
		client,
		competitionCacheBackend(cfg, rdb),
		cfg.FootballDataCacheTTL,
		logger,
	)
	return competitionSource{source: cached, breaker: client.Breaker()}
}

// messageBus bundles the bus with the pieces that only some drivers have.
type messageBus struct {
	messaging.Bus
	deliverer interface {
		Deliver(ctx context.Context, raw []byte) error
	}
	jobs    usecase.JobQueue
	breaker *resilience.CircuitBreaker
}

func buildMessageBus(cfg config.Config, rdb goredis.UniversalClient, idGen id.Generator, logger *logging.Logger) (messageBus, error) {
	switch cfg.BusDriver {
	case config.BusDriverRedis:
		if rdb == nil {
			return messageBus{}, fmt.Errorf("bus driver %q requires redis", cfg.BusDriver)
		}
		bus := messaging.NewRedisStreamBus(rdb, messaging.RedisStreamConfig{
			Prefix:   cfg.BusStreamPrefix,
			Group:    cfg.BusGroup,
			Consumer: cfg.BusConsumer,
			Block:    cfg.BusBlock,
			MaxLen:   cfg.BusMaxLen,
		}, idGen, logger)
		return messageBus{Bus: bus}, nil
	case config.BusDriverQStash:
		publisher, err := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			Timeout:          cfg.QStashTimeout,
			CircuitBreaker:   cfg.QStashCircuit,
		}, logger)
		if err != nil {
			return messageBus{}, fmt.Errorf("build qstash publisher: %w", err)
		}
		bus := messaging.NewQStashBus(publisher, idGen, logger)
		return messageBus{Bus: bus, deliverer: bus, jobs: publisher, breaker: publisher.Breaker()}, nil
	default:
		bus, err := messaging.NewMemoryBus(cfg.BusWorkers, logger)
		if err != nil {
			return messageBus{}, fmt.Errorf("build memory bus: %w", err)
		}
		return messageBus{Bus: bus}, nil
	}
}

func breakerProbe(breaker *resilience.CircuitBreaker) func(context.Context) error {
	return func(context.Context) error {
		if breaker.State() == resilience.CircuitStateOpen {
			return fmt.Errorf("%s: %w", breaker.Name(), resilience.ErrCircuitOpen)
		}
		return nil
	}
}
