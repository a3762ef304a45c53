package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"agent-relay/internal/agent"
	"agent-relay/internal/config"
	"agent-relay/internal/http"
	"agent-relay/internal/llm"
	"agent-relay/internal/service"
	"agent-relay/internal/storage"
)

const (
	shutdownTimeout   = 5 * time.Second
	startupProbeLimit = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP relay (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

// relay holds the components shared by the serve and decide commands.
type relay struct {
	llmClient *llm.Client
	service   service.DecisionService
	journal   *storage.DecisionRepo
	close     func() error
}

// newRelay wires the completion client, the optional journal and the decision service.
func newRelay(cfg *config.Config) (*relay, error) {
	r := &relay{
		llmClient: llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout),
		close:     func() error { return nil },
	}

	opts := []service.Option{
		service.WithParseOptions(agent.ParseOptions{UnwrapFences: cfg.UnwrapFences}),
		service.WithHistoryLogTail(cfg.HistoryLogTail),
	}

	if cfg.JournalEnabled() {
		db, err := storage.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := storage.Migrate(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		slog.Info("Decision journal enabled", "path", cfg.DBPath)

		r.journal = storage.NewDecisionRepo(db)
		r.close = db.Close
		opts = append(opts, service.WithRecorder(r.journal))
	}

	r.service = service.NewDecisionService(r.llmClient, opts...)
	return r, nil
}

// routerDeps builds the router dependencies, leaving Journal nil when disabled.
func (r *relay) routerDeps(cfg *config.Config) *http.Deps {
	deps := &http.Deps{
		DecisionService: r.service,
		ModelCatalog:    r.llmClient,
		ModelName:       cfg.LLMModel,
	}
	if r.journal != nil {
		deps.Journal = r.journal
	}
	return deps
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(os.Stdout)
	if err != nil {
		return err
	}

	r, err := newRelay(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.close()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	probeModel(ctx, r.llmClient, cfg.LLMModel)

	srv := &nethttp.Server{
		Addr:              cfg.Addr(),
		Handler:           http.NewRouter(r.routerDeps(cfg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting API server", "addr", srv.Addr)
		slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModel, "timeout", cfg.LLMTimeout)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// probeModel logs whether the completion service serves the configured model.
// Failures do not stop the server.
func probeModel(ctx context.Context, client *llm.Client, model string) {
	probeCtx, cancel := context.WithTimeout(ctx, startupProbeLimit)
	defer cancel()

	ok, err := client.HasModel(probeCtx, model)
	switch {
	case err != nil:
		slog.Warn("Completion service not reachable at startup", "error", err)
	case !ok:
		slog.Warn("Configured model is not listed by the completion service", "model", model)
	default:
		slog.Info("Completion service ready", "model", model)
	}
}
