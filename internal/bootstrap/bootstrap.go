package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/civicboard/docqa/internal/config"
	"github.com/civicboard/docqa/internal/core/ports"
	"github.com/civicboard/docqa/internal/core/usecase"
	"github.com/civicboard/docqa/internal/infrastructure/chunking"
	pdfextractor "github.com/civicboard/docqa/internal/infrastructure/extractor/pdf"
	"github.com/civicboard/docqa/internal/infrastructure/index"
	"github.com/civicboard/docqa/internal/infrastructure/llm/openai"
	"github.com/civicboard/docqa/internal/infrastructure/queue/nats"
	"github.com/civicboard/docqa/internal/infrastructure/repository/postgres"
	"github.com/civicboard/docqa/internal/infrastructure/resilience"
	"github.com/civicboard/docqa/internal/infrastructure/storage/filecache"
	"github.com/civicboard/docqa/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.Metrics

	Queue      ports.MessageQueue
	ChatUC     ports.DocumentChatService
	WarmUC     ports.IndexWarmer
	RegisterUC ports.AttachmentRegistrar

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewAttachmentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	files, err := filecache.New(repo, cfg.FileCachePath)
	if err != nil {
		return nil, fmt.Errorf("init file cache: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, executor)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	m := metrics.New(service)

	client := openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbedModel, cfg.ChatModel, executor)
	embedder := openai.NewEmbedder(client)
	completer := openai.NewCompleter(client)

	extractor := pdfextractor.NewExtractor()
	chunker := chunking.NewSplitter(cfg.MaxChunkChars, cfg.OverlapChars)
	cache := index.NewCache(
		files,
		extractor,
		chunker,
		embedder,
		time.Duration(cfg.IndexTTLSeconds)*time.Second,
		m,
	)

	chatUC := usecase.NewChatUseCase(cache, embedder, completer, cfg.RAGTopK, cfg.ChatHistoryLimit, m)
	warmUC := usecase.NewWarmUseCase(cache)
	registerUC := usecase.NewRegisterUseCase(repo, queue)

	return &App{
		Config:  cfg,
		Metrics: m,

		Queue:      queue,
		ChatUC:     chatUC,
		WarmUC:     warmUC,
		RegisterUC: registerUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
