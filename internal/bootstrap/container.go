package bootstrap

import (
	"context"
	"log"
	"time"

	"riff-be/internal/config"
	"riff-be/internal/constant"
	"riff-be/internal/controller"
	"riff-be/internal/handler"
	"riff-be/internal/pkg/logger"
	"riff-be/internal/repository/memory"
	"riff-be/internal/repository/unitofwork"
	"riff-be/internal/service"
	"riff-be/internal/websocket"
	"riff-be/pkg/cache"
	"riff-be/pkg/generation"
	"riff-be/pkg/llm"
	"riff-be/pkg/llm/factory"
	pktNats "riff-be/pkg/nats"
	"riff-be/pkg/pipeline"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChainController  controller.IChainController
	RunController    controller.IRunController
	SystemController controller.ISystemController

	// Sessions
	SessionHandler *handler.SessionHandler
	WebSocketHub   *websocket.Hub

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	RunService      service.IRunService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 3. Infrastructure
	// NATS (optional: run audit trail)
	var auditPublisher service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v (run audit disabled)", err)
	} else {
		auditPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	// Redis (optional: cross-instance session relay)
	rdb := connectRedis(cfg.App.RedisURL)
	if rdb != nil {
		c.closers = append(c.closers, func() { rdb.Close() })
	}

	// LLM Provider based on Config
	var llmProvider llm.LLMProvider
	provider, err := factory.NewLLMProvider(
		context.Background(),
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Printf("[WARN] Failed to initialize LLM Provider: %v (generation disabled)", err)
	} else {
		llmProvider = provider
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	generator := generation.NewService(llmProvider, generation.Config{
		Timeout:     cfg.Engine.GenerationTimeout,
		StreamDelay: cfg.Engine.StreamDelay,
		Temperature: cfg.Ai.Temperature,
	})

	// 4. Cache (memory tier over the durable fingerprint store)
	resultCache, err := cache.New(service.NewCacheStore(uowFactory), cache.Options{
		Capacity: cfg.Engine.CacheCapacity,
		TTL:      cfg.Engine.CacheTTL,
		OnError: func(op string, err error) {
			sysLogger.Error("Cache", "Durable tier "+op+" failed", map[string]interface{}{
				"code":  constant.ErrCodePersistenceError,
				"error": err.Error(),
			})
		},
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize cache: %v", err)
	}

	// 5. Sessions
	wsHub := websocket.NewHub(rdb, cfg.App.InstanceID, wsLogger)
	sessionMemory := memory.NewSessionRepository(cfg.Engine.SessionMemoryTTL)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Engine.BiasTopic, pubSub)
	biasScheduler := service.NewBiasScheduler(publisherService, sysLogger)
	consumerService := service.NewConsumerService(pubSub, cfg.Engine.BiasTopic, generator, wsHub, sysLogger)

	chainService := service.NewChainService(uowFactory)
	runService := service.NewRunService(
		uowFactory,
		service.NewRunLedger(uowFactory),
		resultCache,
		pipeline.NewExecutor(generator),
		wsHub,
		service.NewRunAuditor(auditPublisher, sysLogger),
		sysLogger,
	)
	analyzeService := service.NewAnalyzeService(
		resultCache,
		generator,
		wsHub,
		sessionMemory,
		biasScheduler,
		sysLogger,
		service.AnalyzeOptions{NoveltyGate: cfg.Engine.NoveltyGateEnabled},
	)
	dispatcher := service.NewDispatcherService(chainService, runService, analyzeService, sysLogger)
	systemService := service.NewSystemService(cfg.App.InstanceID, wsHub, resultCache, sysLogger)

	// 7. Controllers & Handlers
	c.ChainController = controller.NewChainController(chainService)
	c.RunController = controller.NewRunController(runService)
	c.SystemController = controller.NewSystemController(systemService)
	c.SessionHandler = handler.NewSessionHandler(dispatcher, wsHub, sessionMemory, cfg, wsLogger)
	c.WebSocketHub = wsHub
	c.ConsumerService = consumerService
	c.RunService = runService

	return c
}

// Close releases the broker connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.Logger.Sync()
}

func connectRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (session relay disabled)", err)
		rdb.Close()
		return nil
	}
	return rdb
}
