package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/poiesic/educaia"
	"github.com/poiesic/educaia/config"
	"github.com/poiesic/educaia/core"
	"github.com/poiesic/educaia/ingestion"
	"github.com/poiesic/educaia/knowledge"
	"github.com/poiesic/educaia/reembed"
	"github.com/poiesic/educaia/search"
	"github.com/poiesic/educaia/server"
	"github.com/poiesic/educaia/storage"
	"github.com/poiesic/educaia/storage/badger"
	"github.com/urfave/cli/v2"
)

// exitWords end an interactive session.
var exitWords = map[string]bool{"sair": true, "exit": true, "quit": true}

// openAssistant builds an Assistant from cfg and loads its knowledge base.
// When useStore is set and cfg.DBPath is not empty, vectors are persisted there.
// The returned cleanup must be called when done.
func openAssistant(ctx context.Context, cfg *config.Config, useStore bool) (*educaia.Assistant, func(), error) {
	opts := []educaia.Option{
		educaia.WithAIConfig(cfg.AIConfig()),
		educaia.WithEngineOptions(search.WithThreshold(cfg.Threshold)),
	}

	var backend *badger.Backend
	if useStore && cfg.DBPath != "" {
		_, vectors, b, err := badger.NewRepositories(cfg.DBPath, slog.Default())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		backend = b
		opts = append(opts, educaia.WithVectorStore(vectors))
	}

	cleanup := func() {
		if backend != nil {
			backend.Close()
		}
	}

	assistant, err := educaia.NewAssistant(opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	done := func() {
		assistant.Close()
		cleanup()
	}

	status, err := assistant.LoadKnowledgeBase(ctx, cfg.KnowledgeBase)
	if err != nil {
		done()
		return nil, nil, fmt.Errorf("%s: %w", status, err)
	}
	slog.Info(status, "path", cfg.KnowledgeBase)

	return assistant, done, nil
}

func askCommand(c *cli.Context) error {
	ctx := c.Context
	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}

	assistant, done, err := openAssistant(ctx, cfg, c.IsSet("db"))
	if err != nil {
		return err
	}
	defer done()

	out := c.App.Writer
	if c.Args().Present() {
		reply, err := assistant.Reply(ctx, strings.Join(c.Args().Slice(), " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, reply)
		return nil
	}

	return chat(ctx, assistant, c.App.Reader, out)
}

// chat runs an interactive session until EOF or an exit word.
func chat(ctx context.Context, assistant *educaia.Assistant, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, educaia.WelcomeMessage)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if exitWords[strings.ToLower(question)] {
			return nil
		}

		reply, err := assistant.Reply(ctx, question)
		if err != nil {
			slog.Error("failed to answer", "err", err)
			reply = educaia.FallbackMessage
		}
		fmt.Fprintln(out, reply)
	}
}

func explainCommand(c *cli.Context) error {
	ctx := c.Context
	if !c.Args().Present() {
		return errors.New("a question is required")
	}
	question := strings.Join(c.Args().Slice(), " ")

	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}

	assistant, done, err := openAssistant(ctx, cfg, c.IsSet("db"))
	if err != nil {
		return err
	}
	defer done()

	query := search.NewQuery(question)
	out := c.App.Writer
	fmt.Fprintf(out, "Question:   %s\n", query.Raw)
	fmt.Fprintf(out, "Normalized: %s\n", query.Normalized)
	fmt.Fprintf(out, "Keywords:   %s\n", strings.Join(query.Keywords, ", "))
	fmt.Fprintf(out, "Generic:    %v (bonus %.2f)\n", query.IsGeneric(), query.GenericBonus)
	fmt.Fprintf(out, "Threshold:  %.2f\n\n", cfg.Threshold)

	corpus, scores, err := assistant.Rank(ctx, question, cfg.Threshold)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tSCORE\tSIMILARITY\tBOOSTED\tHITS\tPASSAGE")
	for _, s := range scores {
		fmt.Fprintf(tw, "%d\t%.4f\t%.4f\t%.4f\t%d\t%s\n",
			s.Index, s.Score, s.Similarity, s.Boosted, s.KeywordHits, truncate(corpus.Passage(s.Index).Text, 60))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	switch r := assistant.AskWithThreshold(ctx, question, cfg.Threshold).(type) {
	case core.Answer:
		fmt.Fprintf(out, "Answer %v: %s\n", r.Indices, r.Text)
	case core.NoAnswer:
		fmt.Fprintf(out, "No answer: %s\n", educaia.FallbackMessage)
	case core.Failure:
		return r.Err
	}
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func openRepositories(cfg *config.Config) (storage.KnowledgeRepository, storage.VectorRepository, *badger.Backend, error) {
	knowledgeRepo, vectors, backend, err := badger.NewRepositories(cfg.DBPath, slog.Default())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return knowledgeRepo, vectors, backend, nil
}

func importCommand(c *cli.Context) error {
	ctx := c.Context
	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}

	path := cfg.KnowledgeBase
	if c.Args().Present() {
		path = c.Args().First()
	}
	name := c.String("name")
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	corpus, err := knowledge.LoadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", knowledge.Status(corpus, err), err)
	}

	knowledgeRepo, vectors, backend, err := openRepositories(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	factory, _, err := educaia.NewProviderFactory(cfg.AIConfig(), slog.Default())
	if err != nil {
		return err
	}
	provider, err := factory(ctx)
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	defer provider.Close()

	pipeline, err := ingestion.NewPipeline(knowledgeRepo, vectors, provider,
		ingestion.WithPoolSize(c.Int("pool-size")),
		ingestion.WithBatchSize(c.Int("batch-size")),
	)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	kb, err := pipeline.Import(ctx, name, path, corpus)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	if err := pipeline.Wait(); err != nil {
		return fmt.Errorf("knowledge base %q stored but embedding failed: %w", kb.Name, err)
	}

	fmt.Fprintf(c.App.Writer, "Imported %q: %d passages embedded with %s\n",
		kb.Name, len(kb.Passages), provider.ModelName())
	return nil
}

func listCommand(c *cli.Context) error {
	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}

	knowledgeRepo, _, backend, err := openRepositories(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	kbs, err := knowledgeRepo.ListCorpora(c.Context)
	if err != nil {
		return err
	}
	if len(kbs) == 0 {
		fmt.Fprintln(c.App.Writer, "No knowledge bases stored")
		return nil
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPASSAGES\tMODEL\tUPDATED\tSOURCE")
	for _, kb := range kbs {
		model := kb.Model
		if model == "" {
			model = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			kb.Name, len(kb.Passages), model, kb.UpdatedAt.Format(time.RFC3339), kb.Source)
	}
	return tw.Flush()
}

func reembedCommand(c *cli.Context) error {
	ctx := c.Context
	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Purge:          c.Bool("purge"),
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	knowledgeRepo, vectors, backend, err := openRepositories(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	factory, model, err := educaia.NewProviderFactory(cfg.AIConfig(), slog.Default())
	if err != nil {
		return err
	}
	provider, err := factory(ctx)
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	defer provider.Close()

	reembedder, err := reembed.NewReembedder(knowledgeRepo, vectors, provider.Embedder(), model, reembedConfig, c.App.ErrWriter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.DBPath)
	fmt.Fprintf(c.App.ErrWriter, "Backend: %s\n", cfg.Backend)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", model)
	fmt.Fprintln(c.App.ErrWriter)

	if _, err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}

	assistant, done, err := openAssistant(ctx, cfg, c.IsSet("db"))
	if err != nil {
		return err
	}
	defer done()

	if cfg.Watch {
		go func() {
			if err := assistant.Watch(ctx, cfg.KnowledgeBase); err != nil {
				slog.Error("knowledge base watcher stopped", "err", err)
			}
		}()
	}

	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: server.NewRouter(server.RouterConfig{
			Answerer:        assistant,
			FallbackMessage: educaia.FallbackMessage,
			Logger:          slog.Default(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
