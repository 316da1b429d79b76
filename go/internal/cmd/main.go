package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/spencerbaird36/The-League-sub000/go/internal/dbconfig"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/autopick"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/bridge"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/coordinator"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/events"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/gateway"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/registry"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/repository"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/timer"
	"github.com/spencerbaird36/The-League-sub000/go/internal/leagues"
	"github.com/spencerbaird36/The-League-sub000/go/internal/player"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	port := getEnv("PORT", cfg.Server.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbCfg := dbconfig.NewConfigFromEnv()

	migrationDB, err := dbCfg.OpenSQL()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database for migrations")
	}
	if err := repository.Migrate(migrationDB); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	migrationDB.Close()

	pool, err := dbCfg.NewPool(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	log.Info().
		Str("database", dbCfg.Database).
		Str("port", port).
		Msg("starting draft engine")

	manager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())

	broadcaster := events.MultiBroadcaster{manager}
	var natsBridge *bridge.Publisher
	if cfg.NATS.Enabled {
		bridgeCfg := bridge.DefaultConfig()
		bridgeCfg.URL = getEnv("NATS_URL", cfg.NATS.URL)
		bridgeCfg.StreamName = cfg.NATS.StreamName
		bridgeCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
		natsBridge, err = bridge.NewPublisher(bridgeCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to NATS")
		}
		defer natsBridge.Close()
		broadcaster = append(broadcaster, natsBridge)
	}

	coord := coordinator.New(
		repository.NewStore(pool),
		leagues.NewRepository(pool),
		player.NewRepository(pool),
		selectStrategy(cfg.Draft.AutoPickStrategy),
		timer.NewManager(clockwork.NewRealClock()),
		registry.New(),
		broadcaster,
		clockwork.NewRealClock(),
	)

	service := gateway.NewService(manager, coord)

	mux := http.NewServeMux()
	service.Routes(mux)
	server := setupServer(mux, port)

	go manager.Run(ctx)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	cancel()
	time.Sleep(500 * time.Millisecond)

	log.Info().Msg("draft engine shutdown complete")
}

func selectStrategy(name string) autopick.Strategy {
	switch name {
	case "random":
		return autopick.NewRandom()
	default:
		return autopick.NewBestAvailable()
	}
}
