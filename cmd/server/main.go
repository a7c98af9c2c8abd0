package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rizkyyjun/sportmate/internal/auth"
	"github.com/rizkyyjun/sportmate/internal/bookings"
	"github.com/rizkyyjun/sportmate/internal/chat"
	"github.com/rizkyyjun/sportmate/internal/chat/gateway"
	"github.com/rizkyyjun/sportmate/internal/config"
	"github.com/rizkyyjun/sportmate/internal/dbconfig"
	"github.com/rizkyyjun/sportmate/internal/events"
	"github.com/rizkyyjun/sportmate/internal/fields"
	"github.com/rizkyyjun/sportmate/internal/teammates"
	"github.com/rizkyyjun/sportmate/internal/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(logLevel(os.Getenv("LOG_LEVEL")))

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbCfg := dbconfig.NewConfigFromEnv()
	pool, err := dbCfg.Connect(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	log.Info().
		Str("database", dbCfg.Database).
		Str("port", cfg.Server.Port).
		Msg("starting sportmate server")

	clock := clockwork.NewRealClock()
	verifier := auth.NewVerifier(cfg.JWTSecret)

	usersApp := users.NewApp(users.NewRepository(pool))

	fieldsRepo := fields.NewRepository(pool)
	fieldsApp := fields.NewApp(fieldsRepo, cfg.Booking.OperatingHours, cfg.Booking.WindowDays, clock)
	fieldsService := fields.NewService(fieldsApp)

	bookingsApp := bookings.NewApp(bookings.NewRepository(pool), fieldsRepo, clock)
	bookingsService := bookings.NewService(bookingsApp)

	chatApp := chat.NewApp(chat.NewRepository(pool), usersApp, clock, cfg.Chat.MessagePageSize)
	chatService := chat.NewService(chatApp)

	teammatesApp := teammates.NewApp(teammates.NewRepository(pool), chatApp, clock)
	teammatesService := teammates.NewService(teammatesApp)

	eventsApp := events.NewApp(events.NewRepository(pool), chatApp, clock)
	eventsService := events.NewService(eventsApp)

	registry := gateway.NewRegistry(gateway.DefaultSessionConfig())
	gatewayService := gateway.NewService(registry, chatApp, verifier)

	// Protected REST API behind the JWT middleware. The WebSocket upgrade
	// authenticates itself at handshake time.
	api := http.NewServeMux()
	fieldsService.RegisterRoutes(api)
	bookingsService.RegisterRoutes(api)
	teammatesService.RegisterRoutes(api)
	eventsService.RegisterRoutes(api)
	chatService.RegisterRoutes(api)

	mux := http.NewServeMux()
	gatewayService.RegisterRoutes(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/", verifier.Middleware(api))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      corsHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go gatewayService.Start(ctx)

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

	log.Info().Msg("sportmate server shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// logLevel resolves the LOG_LEVEL setting, defaulting to info when unset
// or unparseable.
func logLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		log.Warn().Str("log_level", s).Msg("unknown LOG_LEVEL, using info")
		return zerolog.InfoLevel
	}
	return level
}
