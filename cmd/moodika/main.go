package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moodika/moodika/internal/adapters/mongo"
	"github.com/moodika/moodika/internal/adapters/ollama"
	"github.com/moodika/moodika/internal/adapters/openai"
	"github.com/moodika/moodika/internal/adapters/spotify"
	"github.com/moodika/moodika/internal/adapters/sqlite"
	"github.com/moodika/moodika/internal/config"
	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/models"
	"github.com/moodika/moodika/internal/core/ports"
	"github.com/moodika/moodika/internal/core/services"
	"github.com/moodika/moodika/internal/similarity"
	"github.com/moodika/moodika/internal/worker"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.New()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	var (
		principal  = flag.String("principal", "", "principal to generate playlists for (required)")
		modelName  = flag.String("model", models.SimilarityDescriptor.Name, "recommendation model to use")
		numSongs   = flag.Int("songs", domain.DefaultNumSongs, "number of songs per playlist")
		popularity = flag.Int("popularity", domain.DefaultPopularity, "popularity target in [0,100]")
		genres     = flag.String("genres", "", "comma-separated seed genres; empty means infer from the prompt")
		listModels = flag.Bool("list", false, "list registered models and exit")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Credential store, selected by the storage driver switch.
	var store ports.CredentialStore
	switch cfg.StorageDriver {
	case "sqlite":
		sqliteStore, err := sqlite.NewStore(cfg.SQLitePath, logger)
		if err != nil {
			logger.Fatal("Failed to initialize credential store", zap.Error(err))
		}
		defer sqliteStore.Close()
		store = sqliteStore
	case "mongo":
		mongoStore, err := mongo.NewStore(ctx, cfg.MongoURL, cfg.MongoDatabase, logger)
		if err != nil {
			logger.Fatal("Failed to connect to mongo credential store", zap.Error(err))
		}
		defer mongoStore.Close(context.Background())
		store = mongoStore
	default:
		logger.Fatal("Unknown storage driver", zap.String("driver", cfg.StorageDriver))
	}

	// Completion backend for the LLM-based model.
	var completer ports.Completer
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Fatal("OPENAI_API_KEY is required for the openai provider")
		}
		completer = openai.NewClient(cfg.OpenAIAPIKey, "", cfg.OpenAIModel, logger)
	case "ollama":
		completer = ollama.NewClient(cfg.OllamaHost, cfg.OllamaModel, logger)
	default:
		logger.Fatal("Unknown LLM provider", zap.String("provider", cfg.LLMProvider))
	}

	catalog := spotify.NewProvider(spotify.ProviderOptions{Timeout: cfg.RequestTimeout}, logger)
	refresher := spotify.NewRefresher(cfg.SpotifyClientID, cfg.SpotifyClientSecret, "", logger)
	gate := services.NewCredentialGate(refresher, catalog, logger)

	registry := services.NewRegistry(logger)
	models.RegisterBuiltins(registry, gate, similarity.NewLexicalScorer(), completer,
		models.SimilarityOptions{
			SearchLimit:  cfg.SearchLimit,
			GapThreshold: cfg.GapThreshold,
			AppName:      cfg.AppName,
		},
		models.LLMOptions{AppName: cfg.AppName},
		logger)

	if *listModels {
		for _, desc := range registry.List() {
			fmt.Printf("%s\t%s\t%s\n", desc.Name, desc.Version, desc.Description)
		}
		return
	}

	if *principal == "" {
		logger.Fatal("-principal is required")
	}

	genCfg := domain.GenerationConfig{
		Model:      *modelName,
		NumSongs:   *numSongs,
		Popularity: *popularity,
	}
	if *genres != "" {
		genCfg.Genres = strings.Split(*genres, ",")
		genCfg.GenerateGenres = true
	}
	if err := genCfg.Validate(); err != nil {
		logger.Fatal("Invalid generation config", zap.Error(err))
	}

	prompts := flag.Args()
	if len(prompts) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				prompts = append(prompts, line)
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Fatal("Failed to read prompts", zap.Error(err))
		}
	}
	if len(prompts) == 0 {
		logger.Fatal("No prompts given: pass them as arguments or on stdin")
	}

	pool := worker.NewPool(registry, store, len(prompts), logger)
	pool.Start(ctx, cfg.Workers)
	for _, prompt := range prompts {
		pool.Submit(worker.Job{
			ID:        uuid.NewString(),
			Principal: *principal,
			Prompt:    prompt,
			Config:    genCfg,
		})
	}
	pool.Stop()

	logger.Info("All prompts processed", zap.Int("count", len(prompts)))
}
