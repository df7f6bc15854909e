package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/PM183/Bloom/internal/config"
	"github.com/PM183/Bloom/internal/handler"
	speechHandler "github.com/PM183/Bloom/internal/handler/speech"
	"github.com/PM183/Bloom/internal/model/assistant"
	speechmodel "github.com/PM183/Bloom/internal/model/speech"
	"github.com/PM183/Bloom/internal/service/relay"
	"github.com/PM183/Bloom/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	profile := assistant.Seed()

	relayCfg := cfg.Relay
	if relayCfg.SystemPrompt == "" {
		relayCfg.SystemPrompt = profile.SystemPrompt
	}
	if !relayCfg.Enabled() {
		log.Println("warning: GROQ_API_KEY not set, relay calls will fail upstream")
	}

	hub := speechHandler.NewHub()
	if cfg.Speech.Enabled {
		log.Println("speech narration enabled")
	} else {
		log.Println("speech narration disabled by configuration")
	}

	relayClient := relay.NewClient(cfg.Session.RelayURL, relayCfg.Timeout)

	sessionSvc := session.NewService(relayClient, hub.ForSession, session.Options{
		Profile: profile,
		SpeechParams: speechmodel.Params{
			Rate:   cfg.Speech.Rate,
			Pitch:  cfg.Speech.Pitch,
			Volume: cfg.Speech.Volume,
		},
		NarrationDelay: cfg.Session.NarrationDelay,
		VoiceEnabled:   cfg.Session.VoiceEnabled && cfg.Speech.Enabled,
	})

	router := handler.NewRouter(relayCfg, profile, sessionSvc, hub, cfg.Speech.Enabled)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Bloom backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
