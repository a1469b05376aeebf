package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/resumeretrieval/internal/chatmodel"
	"github.com/Aman-CERP/resumeretrieval/internal/config"
	"github.com/Aman-CERP/resumeretrieval/internal/conversation"
	"github.com/Aman-CERP/resumeretrieval/internal/convfilter"
	"github.com/Aman-CERP/resumeretrieval/internal/embed"
	"github.com/Aman-CERP/resumeretrieval/internal/httpapi"
	"github.com/Aman-CERP/resumeretrieval/internal/logging"
	"github.com/Aman-CERP/resumeretrieval/internal/output"
	"github.com/Aman-CERP/resumeretrieval/internal/pipeline"
	"github.com/Aman-CERP/resumeretrieval/internal/rerank"
	"github.com/Aman-CERP/resumeretrieval/internal/retrieval"
	"github.com/Aman-CERP/resumeretrieval/internal/store"
)

// newServeCmd creates the serve command, which starts the HTTP server
// for the search, chat, history, and delete endpoints. Modeled on the
// ListenAndServe(ctx)-blocks-until-cancelled shape used elsewhere in
// this codebase, adapted to net/http's own graceful Shutdown instead
// of a hand-rolled Unix-socket accept loop.
func newServeCmd(configPath *string) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the resume retrieval HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configPath, offline, output.New(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Use a deterministic static embedder instead of Ollama")

	return cmd
}

func runServe(ctx context.Context, configPath string, offline bool, out *output.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cleanup, err := logging.SetupDefault()
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out.Status("", "starting resumeretrieval")

	resumeStore, err := store.NewDocumentStoreAdapter(cfg.Embeddings.Dimensions)
	if err != nil {
		return fmt.Errorf("creating document store: %w", err)
	}
	defer func() { _ = resumeStore.Close() }()

	embedProvider := embed.ProviderOllama
	if offline {
		embedProvider = embed.ProviderStatic
	}
	embedder, err := embed.NewEmbedder(ctx, embedProvider, cfg.Embeddings.Model, cfg.Embeddings.OllamaHost)
	if err != nil {
		out.Warningf("embedding client unavailable, falling back to static embedder: %v", err)
		embedder = embed.NewStaticEmbedder()
	}
	defer func() { _ = embedder.Close() }()

	// SkipHealthCheck: true, since fatal startup errors must not exit
	// the process. An unreachable chat model at startup is reported
	// per-request rather than blocking serve from starting at all.
	chatClient, err := chatmodel.NewOllamaClient(ctx, chatmodel.OllamaConfig{
		Host:            cfg.ChatModel.OllamaHost,
		Model:           cfg.ChatModel.Model,
		SkipHealthCheck: true,
	})
	if err != nil {
		return fmt.Errorf("creating chat model client: %w", err)
	}
	var chat chatmodel.Client = chatClient

	keywordEngine, err := retrieval.NewKeywordEngine(resumeStore)
	if err != nil {
		return fmt.Errorf("creating keyword engine: %w", err)
	}
	vectorEngine, err := retrieval.NewVectorEngine(embedder, resumeStore)
	if err != nil {
		return fmt.Errorf("creating vector engine: %w", err)
	}
	hybridEngine := retrieval.NewHybridEngine(keywordEngine, vectorEngine, retrieval.HybridConfig{
		VectorWeight:  cfg.Search.VectorWeight,
		KeywordWeight: cfg.Search.KeywordWeight,
	})

	reranker := rerank.New(chat, resumeStore)

	p := pipeline.New(pipeline.Engines{
		Keyword: keywordEngine,
		Vector:  vectorEngine,
		Hybrid:  hybridEngine,
	}, reranker, pipeline.RerankConfig{
		Enabled:       cfg.Rerank.Enabled,
		RetrievalTopK: cfg.Rerank.RetrievalTopK,
	})

	if ready, readyErr := p.Ready(); !ready {
		out.Warningf("pipeline not fully ready: %v", readyErr)
	}

	convStore, err := conversation.NewStore(cfg.Conversation.MaxConversations, cfg.Conversation.MaxHistory)
	if err != nil {
		return fmt.Errorf("creating conversation store: %w", err)
	}

	filter := convfilter.New(chat)

	server := httpapi.NewServer(p, convStore, filter,
		httpapi.ModelInfo{Model: cfg.ChatModel.Model, Provider: cfg.ChatModel.Provider},
		httpapi.Weights{Vector: cfg.Search.VectorWeight, Keyword: cfg.Search.KeywordWeight},
	)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		out.Successf("listening on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		out.Status("", "shutting down")
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
