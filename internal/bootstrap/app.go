package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"propertydesk/internal/agentprovider"
	"propertydesk/internal/ai"
	"propertydesk/internal/app"
	"propertydesk/internal/cache"
	"propertydesk/internal/config"
	"propertydesk/internal/extract"
	"propertydesk/internal/model"
	mysqlClient "propertydesk/internal/platform/mysql"
	rabbitmqClient "propertydesk/internal/platform/rabbitmq"
	redisClient "propertydesk/internal/platform/redis"
	"propertydesk/internal/repository"
	"propertydesk/internal/worker"
)

type App struct {
	Config *config.Config
	Logger *zap.Logger
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	Auth          *app.AuthService
	Properties    *app.PropertyService
	KnowledgeBase *app.KnowledgeBaseService
	Profiles      *repository.ProfileRepository
	ScrapeWorker  *worker.ScrapeImportWorker

	StartedAt time.Time
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), cfg.IsDev())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Property{},
		&model.UserAgent{},
		&model.KnowledgeBaseDocument{},
		&model.AgentKnowledgeBase{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		_ = redisCli.Close()
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		MySQL:     mysqlDB,
		Redis:     redisCli,
		MQConn:    mqConn,
		StartedAt: time.Now(),
	}
	a.wireServices()

	a.ScrapeWorker = worker.NewScrapeImportWorker(mqConn, a.Properties, cfg.RabbitMQ.ScrapeImportQueue, logger.Named("worker"))
	if err := a.ScrapeWorker.Start(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("start scrape import worker failed: %w", err)
	}

	if !a.KnowledgeBaseConfigured() {
		logger.Warn("agent provider api key missing, knowledge base endpoints will fail")
	}
	if cfg.LLM.APIKey == "" {
		logger.Warn("llm api key missing, extraction endpoints will fail")
	}
	return a, nil
}

func (a *App) wireServices() {
	cfg := a.Config

	userRepo := repository.NewUserRepository(a.MySQL)
	profileRepo := repository.NewProfileRepository(a.MySQL)
	propertyRepo := repository.NewPropertyRepository(a.MySQL)
	userAgentRepo := repository.NewUserAgentRepository(a.MySQL)
	documentRepo := repository.NewKnowledgeBaseDocumentRepository(a.MySQL)
	assignmentRepo := repository.NewAgentKnowledgeBaseRepository(a.MySQL)

	pipeline := extract.NewPipeline(
		extract.NewHTTPFetcher(cfg.FetchTimeout(), cfg.Scrape.MaxBodyBytes),
		ai.NewOpenAICompatibleClient(cfg.LLMTimeout()),
		ai.ChatConfig{BaseURL: cfg.LLM.BaseURL, APIKey: cfg.LLM.APIKey, Model: cfg.LLM.Model},
		extract.Options{
			StripNoise: cfg.Scrape.StripNoise,
			Cache:      cache.NewExtractionCache(a.Redis, cfg.ExtractionCacheTTL(), a.Logger.Named("cache")),
		},
		a.Logger.Named("extract"),
	)

	provider := agentprovider.NewClient(cfg.AgentProvider.BaseURL, cfg.AgentProvider.APIKey, cfg.AgentProviderTimeout())

	a.Profiles = profileRepo
	a.Auth = app.NewAuthService(userRepo, profileRepo, cfg.Auth.JWTSecret, cfg.JWTExpiration())
	a.Properties = app.NewPropertyService(propertyRepo, pipeline, a.Logger.Named("properties")).
		WithPublisher(rabbitmqClient.NewScrapeJobPublisher(a.MQConn, cfg.RabbitMQ.ScrapeImportQueue))
	a.KnowledgeBase = app.NewKnowledgeBaseService(
		profileRepo,
		userAgentRepo,
		documentRepo,
		assignmentRepo,
		provider,
		cfg.AgentProvider.ListConcurrency,
		a.Logger.Named("knowledge_base"),
	)
}

func (a *App) KnowledgeBaseConfigured() bool {
	return a.Config.AgentProvider.APIKey != ""
}

func (a *App) Close() error {
	var closeErr error
	if a.ScrapeWorker != nil {
		a.ScrapeWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
