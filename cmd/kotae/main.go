// Package main is the Kotae CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/generate"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/query"
	"github.com/hyperjump/kotae/internal/scrape"
	"github.com/hyperjump/kotae/internal/segment"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vectorstore"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so "kotae server" from the project dir picks up the project's
// config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "index":
		runIndex()
	case "delete":
		runDelete()
	case "sources":
		runSources()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Usage: kotae <command> [flags]

Commands:
  server    start the HTTP API server
  ask       ask a question against the indexed documents
  index     index a document file
  delete    delete an indexed source
  sources   list indexed sources
  version   print version

Run "kotae <command> -h" for command flags.
`)
}

// components bundles everything built from config.
type components struct {
	Embedder     embedding.Embedder
	Store        vectorstore.Store
	Registry     storage.Registry
	Indexer      *indexer.Indexer
	Orchestrator *query.Orchestrator
	Extractor    *extract.Extractor
	Scraper      *scrape.Scraper
}

// Close releases the vector store connection and the registry database.
func (c *components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Registry != nil {
		_ = c.Registry.Close()
	}
}

// initializeComponents wires the embedding, vector store, generation, and
// pipeline components from config. The same embedder instance serves both the
// indexing and the query path so all vectors share one space.
func initializeComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	var embedder embedding.Embedder
	switch cfg.Embedding.Provider {
	case "hash", "":
		embedder = embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	case "openai":
		var err error
		embedder, err = embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding provider: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (use hash or openai)", cfg.Embedding.Provider)
	}

	var store vectorstore.Store
	if cfg.Qdrant.InMemory {
		store = vectorstore.NewMemoryStore()
	} else {
		var err error
		store, err = vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			UseTLS:     cfg.Qdrant.UseTLS,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("vector store: %w", err)
		}
	}

	registry, err := storage.NewSQLiteRegistry(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("source registry: %w", err)
	}

	var completer generate.Completer
	if cfg.Generation.APIKey != "" {
		completer, err = generate.NewOpenAIClient(generate.OpenAIClientConfig{
			APIKey:  cfg.Generation.APIKey,
			BaseURL: cfg.Generation.BaseURL,
			Model:   cfg.Generation.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("generation client: %w", err)
		}
	} else {
		logger.Warn("OPENAI_API_KEY not set; answers will use the unavailable fallback")
		completer = unavailableCompleter{}
	}

	splitter := segment.NewSplitter(cfg.Index.ChunkSize, cfg.Index.ChunkOverlap)
	idx := indexer.New(splitter, embedder, store, logger)
	gen := generate.NewGenerator(completer, logger)
	orch := query.NewOrchestrator(embedder, store, gen,
		query.WithTopK(cfg.Index.TopK), query.WithLogger(logger))

	return &components{
		Embedder:     embedder,
		Store:        store,
		Registry:     registry,
		Indexer:      idx,
		Orchestrator: orch,
		Extractor:    extract.NewExtractor(),
		Scraper:      scrape.New(time.Duration(cfg.Scrape.TimeoutSeconds)*time.Second, cfg.Scrape.MinTextChars),
	}, nil
}

// unavailableCompleter stands in when no model credentials are configured.
type unavailableCompleter struct{}

func (unavailableCompleter) Complete(context.Context, string) (string, error) {
	return "", fmt.Errorf("no generation model configured")
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if len(cfg.Watch.Directories) > 0 {
		watchSvc = newWatchService(cfg, comps, logger)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExistingFiles()
	}

	srv := server.NewServer(
		comps.Indexer,
		comps.Orchestrator,
		comps.Extractor,
		comps.Scraper,
		comps.Registry,
		comps.Store,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	if watchSvc != nil {
		watchSvc.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// newWatchService wires watched directories into the indexing pipeline. File
// paths double as source IDs so a removed file cleans up its own vectors.
func newWatchService(cfg *config.Config, comps *components, logger *zap.Logger) *watcher.Watcher {
	onIndex := func(path string) {
		ctx := context.Background()
		if !extract.Supported(filepath.Ext(path)) {
			return
		}
		text, err := comps.Extractor.Extract(path)
		if err != nil {
			logger.Warn("watch extract failed", zap.String("path", path), zap.Error(err))
			return
		}
		// Drop stale vectors before re-indexing; same-source Index appends.
		if err := comps.Indexer.Remove(ctx, path); err != nil {
			logger.Warn("watch cleanup failed", zap.String("path", path), zap.Error(err))
		}
		chunks, err := comps.Indexer.Index(ctx, text, path)
		if err != nil {
			logger.Warn("watch index failed", zap.String("path", path), zap.Error(err))
			return
		}
		err = comps.Registry.Record(ctx, &models.Source{
			ID: path, Kind: models.SourceKindWatch, Chunks: chunks, CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			logger.Warn("watch record failed", zap.String("path", path), zap.Error(err))
		}
	}
	onRemove := func(path string) {
		ctx := context.Background()
		if err := comps.Indexer.Remove(ctx, path); err != nil {
			logger.Warn("watch remove failed", zap.String("path", path), zap.Error(err))
		}
		if err := comps.Registry.Delete(ctx, path); err != nil {
			logger.Warn("watch registry delete failed", zap.String("path", path), zap.Error(err))
		}
	}
	opts := []watcher.Option{}
	if cfg.Debug {
		opts = append(opts, watcher.WithLogger(logger))
	}
	return watcher.New(cfg.Watch.Directories, cfg.Watch.Extensions, onIndex, onRemove, opts...)
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	mode := fs.String("mode", models.ModeHybrid, "answer mode: strict or hybrid")
	_ = fs.Parse(os.Args[2:])

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fmt.Fprintln(os.Stderr, "Usage: kotae ask [flags] <question>")
		os.Exit(1)
	}
	req := models.QueryRequest{Question: question, Mode: *mode}
	if err := req.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	comps, logger := mustComponents(*configPath)
	defer logger.Sync()
	defer comps.Close()

	result := comps.Orchestrator.Answer(context.Background(), req.Question, req.Mode)
	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(result.Sources, ", "))
	}
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	source := fs.String("source", "", "source label (default: file name)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: kotae index [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	comps, logger := mustComponents(*configPath)
	defer logger.Sync()
	defer comps.Close()

	text, err := comps.Extractor.Extract(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}
	label := *source
	if label == "" {
		label = filepath.Base(path)
	}
	ctx := context.Background()
	chunks, err := comps.Indexer.Index(ctx, text, label)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Indexing failed: %v\n", err)
		os.Exit(1)
	}
	err = comps.Registry.Record(ctx, &models.Source{
		ID: label, Kind: models.SourceKindFile, Chunks: chunks, CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: source not recorded: %v\n", err)
	}
	fmt.Printf("Indexed %s (%d chunks)\n", label, chunks)
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: kotae delete [flags] <source>")
		os.Exit(1)
	}
	source := fs.Arg(0)

	comps, logger := mustComponents(*configPath)
	defer logger.Sync()
	defer comps.Close()

	ctx := context.Background()
	if err := comps.Indexer.Remove(ctx, source); err != nil {
		fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
		os.Exit(1)
	}
	if err := comps.Registry.Delete(ctx, source); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: source record not removed: %v\n", err)
	}
	fmt.Printf("Deleted %s\n", source)
}

func runSources() {
	fs := flag.NewFlagSet("sources", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	comps, logger := mustComponents(*configPath)
	defer logger.Sync()
	defer comps.Close()

	sources, err := comps.Registry.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	if len(sources) == 0 {
		fmt.Println("No sources indexed.")
		return
	}
	for _, src := range sources {
		fmt.Printf("%-40s  %-8s  %4d chunks  %s\n",
			utils.Truncate(src.ID, 40), src.Kind, src.Chunks,
			src.CreatedAt.Format(time.RFC3339))
	}
}

// mustComponents loads config and builds components, exiting on failure.
func mustComponents(configPath string) (*components, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return comps, logger
}
