package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/PM183/Bloom/internal/config"
	"github.com/PM183/Bloom/internal/model/assistant"
	speechmodel "github.com/PM183/Bloom/internal/model/speech"
	"github.com/PM183/Bloom/internal/service/relay"
	"github.com/PM183/Bloom/internal/service/session"
	speechservice "github.com/PM183/Bloom/internal/service/speech"
)

// chatprobe exercises the session state machine against a live relay from
// the command line. Narration goes through a discard synthesizer since there
// is no audio path here.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] could not load .env, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	text := flag.String("text", "", "user message to submit")
	relayURL := flag.String("relay", "", "relay endpoint URL (default from RELAY_URL)")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")

	flag.Parse()

	if strings.TrimSpace(*text) == "" {
		flag.Usage()
		log.Fatal("provide a message via -text")
	}

	endpoint := *relayURL
	if endpoint == "" {
		endpoint = cfg.Session.RelayURL
	}

	relayClient := relay.NewClient(endpoint, *timeout)
	svc := session.NewService(relayClient, func(string) speechservice.Synthesizer { return speechservice.Discard{} }, session.Options{
		Profile:        assistant.Seed(),
		SpeechParams:   speechmodel.DefaultParams(),
		NarrationDelay: cfg.Session.NarrationDelay,
		VoiceEnabled:   false,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	snapshot, err := svc.CreateSession(ctx)
	if err != nil {
		log.Fatalf("failed to create session: %v", err)
	}
	log.Printf("session %s created, greeting: %q", snapshot.Session.ID, snapshot.Messages[0].Text)

	reply, err := svc.Submit(ctx, snapshot.Session.ID, *text)
	if err != nil {
		log.Fatalf("submit failed: %v", err)
	}

	log.Printf("bot [%s]: %s", reply.Category, reply.Text)
}
