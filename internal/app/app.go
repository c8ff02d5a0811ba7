package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"EvidenceCollector/internal/config"
	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/httpapi"
	"EvidenceCollector/internal/infrastructure/llm"
	"EvidenceCollector/internal/infrastructure/ml"
	"EvidenceCollector/internal/infrastructure/parser"
	"EvidenceCollector/internal/infrastructure/scheduler"
	"EvidenceCollector/internal/infrastructure/storage"
	"EvidenceCollector/internal/infrastructure/tavily"
	"EvidenceCollector/internal/infrastructure/telegram"
	"EvidenceCollector/internal/logging"
	"EvidenceCollector/internal/ports"
	"EvidenceCollector/internal/search"
	"EvidenceCollector/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	collector  *usecase.Collector
	repository ports.ResultRepository
	notifier   ports.Notifier
	db         *sql.DB
}

// New builds a runnable application instance. It fails only on configuration
// that cannot produce a working collector.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := search.NewRegistry()
	if cfg.Tavily.APIKey != "" {
		registry.Register(tavily.NewClient(cfg.Tavily))
	}
	registry.Register(parser.NewHTMLSearch(&http.Client{Timeout: cfg.HTMLSearch.Timeout}, cfg.HTMLSearch.BaseURL))

	provider, err := registry.Resolve(cfg.Search.Provider)
	if err != nil {
		return nil, fmt.Errorf("search provider %q (tavily requires an API key): %w", cfg.Search.Provider, err)
	}
	dispatcher := search.NewDispatcher(provider, cfg.Search.Dispatch, baseLogger.With("component", "search"))

	classifier, summarizer := buildClassifier(cfg, baseLogger)

	a := &Application{cfg: cfg, logger: baseLogger}

	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		repo := storage.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.db = db
		a.repository = repo
	} else {
		a.repository = storage.NewMemoryRepository()
	}

	if cfg.Notifications.Telegram.Enabled() {
		a.notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	a.collector = usecase.NewCollector(usecase.CollectorDeps{
		Source:          dispatcher,
		Classifier:      classifier,
		Summarizer:      summarizer,
		Profile:         cfg.Profile,
		ClassifyWorkers: cfg.Classifier.Workers,
		ClassifyTimeout: cfg.Classifier.Timeout,
		Logger:          baseLogger.With("component", "collector"),
	})

	baseLogger.Info("application configured",
		"search_provider", provider.Name(),
		"classifier", cfg.Classifier.Provider,
		"persistent", a.db != nil,
		"notifications", a.notifier != nil)
	return a, nil
}

func buildClassifier(cfg config.Config, logger *slog.Logger) (ports.Classifier, ports.Summarizer) {
	var (
		classifier ports.Classifier
		summarizer ports.Summarizer
	)

	switch cfg.Classifier.Provider {
	case config.ClassifierOpenAI:
		if cfg.ChatGPT.APIKey == "" {
			logger.Warn("no OpenAI API key, documents get default provenance")
			return nil, nil
		}
		chat := llm.NewChatGPTClient(cfg.ChatGPT)
		classifier = llm.NewClassifier(chat)
		summarizer = llm.NewSummarizer(chat)
	case config.ClassifierInference:
		client := ml.NewClient(cfg.ML.InferenceURL, cfg.ML.APIKey)
		classifier, summarizer = client, client
	default:
		return nil, nil
	}

	if !cfg.Classifier.Summaries {
		summarizer = nil
	}
	return classifier, summarizer
}

// Collect runs one collection and stores the result.
func (a *Application) Collect(ctx context.Context, target domain.Target) domain.CollectionResult {
	result := a.collector.Collect(ctx, target)
	if err := a.repository.SaveResult(ctx, result); err != nil {
		a.logger.Error("persist collection failed", "run_id", result.RunID, "error", err)
	}
	return result
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           httpapi.NewServer(a.collector, a.repository, a.logger.With("component", "http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.HTTP.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Watch re-collects the configured targets on the scheduler interval until
// ctx is cancelled.
func (a *Application) Watch(ctx context.Context) error {
	if len(a.cfg.Targets) == 0 {
		return errors.New("watch mode needs at least one target in config")
	}

	watcher := usecase.NewScheduler(usecase.WatchDeps{
		Driver:     scheduler.NewTickerScheduler(a.cfg.Scheduler.Interval),
		Collector:  a.collector,
		Repository: a.repository,
		Notifier:   a.notifier,
		Targets:    a.cfg.Targets,
		Logger:     a.logger.With("component", "watch"),
	})

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watch: %w", err)
	}
	a.logger.Info("watch started",
		"targets", len(a.cfg.Targets),
		"interval", a.cfg.Scheduler.Interval,
		"timezone", a.cfg.Scheduler.Location().String())

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return watcher.Stop(stopCtx)
}

// Close releases the database handle, if any.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
