package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/mitchelldurbincs/yspahan/internal/config"
	"github.com/mitchelldurbincs/yspahan/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/yspahan/internal/grpc/gameserver"
	"github.com/mitchelldurbincs/yspahan/internal/monitoring"
	"github.com/mitchelldurbincs/yspahan/internal/store"
	"github.com/mitchelldurbincs/yspahan/internal/web"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The server port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	maxGames := flag.Int("max-games", -1, "Maximum concurrent games (-1 to use config default)")
	variant := flag.String("variant", "", "Default robot variant (empty to use config default)")
	dbPath := flag.String("db", "", "Archive games to this sqlite file (empty to use config)")
	webAddr := flag.String("web", "", "Serve the spectator feed on this address (empty to use config)")
	enableReflection := flag.Bool("enable-reflection", false, "Enable gRPC reflection for debugging")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(os.Getenv("APP_ENV")); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}

	cfg := config.Get()

	// Use config defaults if not overridden by flags
	if *port == -1 {
		*port = cfg.Server.GRPCServer.Port
	}
	if *host == "" {
		*host = cfg.Server.GRPCServer.Host
	}
	if *logLevel == "" {
		*logLevel = cfg.Server.GRPCServer.LogLevel
	}
	if *maxGames == -1 {
		*maxGames = cfg.Server.GRPCServer.MaxGames
	}
	if *variant == "" {
		*variant = cfg.Robot.Variant
	}
	if *dbPath == "" && cfg.Store.Enabled {
		*dbPath = cfg.Store.Path
	}
	if *webAddr == "" && cfg.Server.Web.Enabled {
		*webAddr = cfg.Server.Web.Addr
	}
	if !*enableReflection {
		*enableReflection = cfg.Server.GRPCServer.EnableReflection
	}

	setupLogging(*logLevel, cfg.Development.VerboseLogging)

	log.Info().
		Int("port", *port).
		Str("host", *host).
		Int("max_games", *maxGames).
		Str("variant", *variant).
		Msg("Starting gRPC game server")

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen")
	}

	grpcServer := grpc.NewServer(gameserver.ServerOptions(log.Logger)...)

	gameService := gameserver.NewServer(gameserver.Config{
		MaxGames:    *maxGames,
		IdleTimeout: time.Duration(cfg.Server.GRPCServer.IdleTimeout) * time.Second,
		Variant:     *variant,
		Logger:      log.Logger,
	})
	gameserver.RegisterGameServiceServer(grpcServer, gameService)

	games := gameService.Games()
	if *dbPath != "" {
		archive, err := store.Open(*dbPath, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open game store")
		}
		defer archive.Close()
		games.SetArchive(archive)
	}

	eventLogger := subscribers.NewLoggerSubscriber("event-logger", log.Logger, zerolog.DebugLevel)
	eventLogger.SetDevMode(cfg.Development.VerboseLogging)
	games.Subscribe(eventLogger)

	// Register health service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(gameserver.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if *enableReflection {
		reflection.Register(grpcServer)
		log.Info().Msg("gRPC reflection enabled")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go gameService.Run(ctx)

	monitor := monitoring.NewGoroutineMonitor(30*time.Second, 1000, log.Logger)
	monitor.Register("games", games.GetActiveGames)
	go monitor.Run(ctx)

	webDone := make(chan struct{})
	if *webAddr != "" {
		hub := web.NewHub(games.Board, time.Duration(cfg.Server.Web.WriteTimeout)*time.Second, log.Logger)
		games.Subscribe(hub)
		go func() {
			defer close(webDone)
			if err := hub.Serve(ctx, *webAddr); err != nil {
				log.Error().Err(err).Msg("Spectator feed stopped")
			}
		}()
	} else {
		close(webDone)
	}

	config.WatchConfig(func() {
		level, err := zerolog.ParseLevel(config.Get().Server.GRPCServer.LogLevel)
		if err != nil {
			return
		}
		zerolog.SetGlobalLevel(level)
		log.Info().Str("level", level.String()).Msg("Config reloaded")
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")
		serveErr <- grpcServer.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		log.Fatal().Err(err).Msg("Failed to serve")
	case <-ctx.Done():
	}
	log.Info().Msg("Received shutdown signal")

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(gameserver.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	// Give ongoing requests time to complete
	time.Sleep(time.Duration(cfg.Server.GRPCServer.GracefulShutdownDelay) * time.Second)

	log.Info().Msg("Gracefully stopping gRPC server")
	grpcServer.GracefulStop()
	<-webDone
	log.Info().Msg("Server shutdown complete")
}

func setupLogging(level string, verbose bool) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	if verbose {
		logLevel = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if os.Getenv("APP_ENV") == "production" {
		// JSON output for production
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}
