package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docuchat/internal/ai"
	"docuchat/internal/catalog"
	"docuchat/internal/chat"
	"docuchat/internal/config"
	"docuchat/internal/embedding"
	"docuchat/internal/ingest"
	"docuchat/internal/model"
	mysqlClient "docuchat/internal/platform/mysql"
	rabbitmqClient "docuchat/internal/platform/rabbitmq"
	redisClient "docuchat/internal/platform/redis"
	"docuchat/internal/session"
	"docuchat/internal/vectorindex"
	"docuchat/internal/worker"
)

// provider is what both AI clients implement: chat completion plus
// embeddings over the same credentials.
type provider interface {
	ai.LanguageModel
	ai.EmbeddingProvider
}

type App struct {
	Config *config.Config
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	Sessions      session.Store
	Index         vectorindex.Index
	Chat          *chat.Service
	Ingest        *ingest.Pipeline
	Catalog       *catalog.Repository
	CatalogWorker *worker.CatalogWorker

	providerCloser io.Closer

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	app := &App{Config: cfg, StartedAt: time.Now()}

	if cfg.NeedsMySQL() {
		mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		app.MySQL = mysqlDB

		tables := []interface{}{}
		if cfg.Index.Backend == "mysql" {
			tables = append(tables, &model.ChunkRecord{})
		}
		if cfg.Catalog.Enabled {
			tables = append(tables, &model.Document{})
		}
		if err := mysqlDB.AutoMigrate(tables...); err != nil {
			return nil, fmt.Errorf("auto migrate tables failed: %w", err)
		}
	}

	prov, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closer, ok := prov.(io.Closer); ok {
		app.providerCloser = closer
	}

	index, err := newIndex(cfg, app.MySQL)
	if err != nil {
		return nil, err
	}
	app.Index = index

	store, err := newSessionStore(ctx, cfg, app)
	if err != nil {
		return nil, err
	}
	app.Sessions = store

	gateway := embedding.NewGateway(prov, cfg.Embedding.BatchSize, cfg.Embedding.MaxConcurrency)

	app.Chat = chat.NewService(
		store,
		chat.NewRewriter(prov),
		gateway,
		index,
		prov,
		cfg.Retrieval.TopK,
	)

	app.Ingest = ingest.NewPipeline(
		ingest.NewPDFLoader(),
		gateway,
		index,
		cfg.Chunking.ChunkSize,
		cfg.Chunking.ChunkOverlap,
	)

	if cfg.Catalog.Enabled {
		mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		app.MQConn = mqConn
		app.Ingest.SetNotifier(rabbitmqClient.NewIngestPublisher(mqConn, cfg.RabbitMQ.IngestQueue))

		app.Catalog = catalog.NewRepository(app.MySQL)
		app.CatalogWorker = worker.NewCatalogWorker(mqConn, app.Catalog, cfg.RabbitMQ.IngestQueue)
		if err := app.CatalogWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start catalog worker failed: %w", err)
		}
	}

	return app, nil
}

func newProvider(ctx context.Context, cfg *config.Config) (provider, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return ai.NewGeminiClient(ctx, ai.GeminiConfig{
			APIKey:         cfg.LLM.APIKey,
			ChatModel:      cfg.LLM.Model,
			EmbeddingModel: cfg.Embedding.Model,
		})
	case "openai":
		return ai.NewOpenAICompatibleClient(ai.OpenAIConfig{
			BaseURL:        cfg.LLM.BaseURL,
			APIKey:         cfg.LLM.APIKey,
			ChatModel:      cfg.LLM.Model,
			EmbeddingModel: cfg.Embedding.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func newIndex(cfg *config.Config, db *gorm.DB) (vectorindex.Index, error) {
	switch cfg.Index.Backend {
	case "mysql":
		return vectorindex.NewMySQL(db), nil
	case "qdrant":
		return vectorindex.NewQdrant(vectorindex.QdrantConfig{
			URL:        cfg.Index.Qdrant.URL,
			APIKey:     cfg.Index.Qdrant.APIKey,
			Collection: cfg.Index.Qdrant.Collection,
		}), nil
	case "memory":
		return vectorindex.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown index backend %q", cfg.Index.Backend)
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config, app *App) (session.Store, error) {
	switch cfg.Sessions.Backend {
	case "memory":
		return session.NewMemoryStore(), nil
	case "redis":
		redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		app.Redis = redisCli
		return session.NewRedisStore(redisCli, time.Duration(cfg.Sessions.TTLSeconds)*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown sessions backend %q", cfg.Sessions.Backend)
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.CatalogWorker != nil {
		a.CatalogWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.providerCloser != nil {
		if err := a.providerCloser.Close(); err != nil {
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
