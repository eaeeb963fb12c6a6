package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"matjip/apps/backend/internal/ai"
	"matjip/apps/backend/internal/config"
	"matjip/apps/backend/internal/curator"
	"matjip/apps/backend/internal/db"
	"matjip/apps/backend/internal/logging"
	"matjip/apps/backend/internal/recommend"
	"matjip/apps/backend/internal/refine"
	"matjip/apps/backend/internal/server"
	"matjip/apps/backend/internal/session"
)

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "matjip-api",
	})
	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	source, pool, err := preferenceSource(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("preference source setup failed")
	}
	if pool != nil {
		defer pool.Close()
	}

	tables := recommend.NewProvider(source)
	// Load eagerly so a bad file shows up at startup rather than on the
	// first request. A failure still degrades to an empty table.
	if err := tables.Err(ctx); err != nil {
		logging.Warn().Err(err).Msg("serving recommendations without preference data")
	} else {
		logging.Info().Int("keys", tables.Table(ctx).Len()).Msg("preference table loaded")
	}

	policy, err := recommend.ParseHourPolicy(cfg.DefaultHourPolicy)
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid hour policy")
	}

	client := aiClient(cfg)
	service := curator.NewService(
		tables,
		recommend.Scorer{Policy: policy, TopN: cfg.TopCategoryCount},
		refine.New(client, refine.Options{
			Threshold:       cfg.RefineThreshold,
			ChunkSize:       cfg.RefineChunkSize,
			ChunkOverlap:    cfg.RefineChunkOverlap,
			Model:           cfg.OpenAIModel,
			MaxOutputTokens: cfg.RefineMaxTokens,
		}),
		curator.NewRequester(client, cfg.OpenAIModel),
	)

	verifier, err := credentialVerifier(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid login credentials config")
	}

	app := server.New(cfg, service, verifier)
	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", "http://localhost:"+cfg.AppPort).Msg("matjip api listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func preferenceSource(ctx context.Context, cfg config.Config) (recommend.Source, *pgxpool.Pool, error) {
	if cfg.PreferenceSource != config.PreferenceSourcePostgres {
		return recommend.FileSource{Path: cfg.PreferenceDataPath}, nil, nil
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := db.ValidatePreferenceSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return recommend.PostgresSource{Pool: pool}, pool, nil
}

func aiClient(cfg config.Config) ai.AIClient {
	if cfg.AIProvider == config.AIProviderMock {
		logging.Warn().Msg("AI_PROVIDER=mock; answers are canned")
		return ai.MockAIClient{Model: cfg.OpenAIModel}
	}
	return ai.NewOpenAIChatClient(cfg)
}

func credentialVerifier(cfg config.Config) (session.CredentialVerifier, error) {
	if hash := strings.TrimSpace(cfg.LoginPasswordHash); hash != "" {
		return session.NewBcryptVerifier(cfg.LoginUser, hash)
	}
	return session.StaticVerifier{User: cfg.LoginUser, Password: cfg.LoginPassword}, nil
}
