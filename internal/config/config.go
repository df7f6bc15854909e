package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every configurable knob of the service.
type Config struct {
	Server  ServerConfig
	Relay   RelayConfig
	Session SessionConfig
	Speech  SpeechConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	relay, err := loadRelayConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig(server)
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Relay: relay, Session: session, Speech: speech}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// RelayConfig describes the credential-hiding hop in front of the Groq
// chat-completions endpoint.
type RelayConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	Temperature  float64
	TopP         float64
	MaxTokens    int
	Timeout      time.Duration
}

// Enabled reports whether the upstream credential was provided.
func (c RelayConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadRelayConfig() (RelayConfig, error) {
	temperature := 0.7
	if override, err := parseOptionalFloatEnv("GROQ_TEMPERATURE"); err != nil {
		return RelayConfig{}, err
	} else if override != nil {
		temperature = *override
	}

	topP := 0.9
	if override, err := parseOptionalFloatEnv("GROQ_TOP_P"); err != nil {
		return RelayConfig{}, err
	} else if override != nil {
		topP = *override
	}

	maxTokens := 500
	if override, err := parseOptionalIntEnv("GROQ_MAX_TOKENS"); err != nil {
		return RelayConfig{}, err
	} else if override != nil {
		maxTokens = *override
	}

	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("GROQ_TIMEOUT"); err != nil {
		return RelayConfig{}, err
	} else if override != nil {
		timeoutSeconds = *override
	}

	return RelayConfig{
		APIKey:       strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		BaseURL:      getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1/chat/completions"),
		Model:        getEnvOrDefault("GROQ_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		SystemPrompt: strings.TrimSpace(os.Getenv("GROQ_SYSTEM_PROMPT")),
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
		Timeout:      time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// SessionConfig describes the conversation state machine.
type SessionConfig struct {
	RelayURL       string
	NarrationDelay time.Duration
	VoiceEnabled   bool
}

func loadSessionConfig(server ServerConfig) (SessionConfig, error) {
	delayMillis := 300
	if override, err := parseOptionalIntEnv("NARRATION_DELAY_MS"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		delayMillis = *override
	}

	voiceEnabled, err := parseBoolEnv("VOICE_ENABLED", true)
	if err != nil {
		return SessionConfig{}, err
	}

	relayURL := strings.TrimSpace(os.Getenv("RELAY_URL"))
	if relayURL == "" {
		// The session service talks to the relay the same way the browser
		// would: over HTTP against this process's own endpoint.
		relayURL = "http://127.0.0.1" + ensureHostless(server.Addr) + "/api/groq"
	}

	return SessionConfig{
		RelayURL:       relayURL,
		NarrationDelay: time.Duration(delayMillis) * time.Millisecond,
		VoiceEnabled:   voiceEnabled,
	}, nil
}

// SpeechConfig describes narration delivery.
type SpeechConfig struct {
	Rate    float32
	Pitch   float32
	Volume  float32
	Enabled bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	rate := float32(0.9)
	if override, err := parseOptionalFloat32Env("SPEECH_RATE"); err != nil {
		return SpeechConfig{}, err
	} else if override != nil {
		rate = *override
	}

	pitch := float32(1.1)
	if override, err := parseOptionalFloat32Env("SPEECH_PITCH"); err != nil {
		return SpeechConfig{}, err
	} else if override != nil {
		pitch = *override
	}

	volume := float32(0.8)
	if override, err := parseOptionalFloat32Env("SPEECH_VOLUME"); err != nil {
		return SpeechConfig{}, err
	} else if override != nil {
		volume = *override
	}

	enabled, err := parseBoolEnv("SPEECH_ENABLED", true)
	if err != nil {
		return SpeechConfig{}, err
	}

	return SpeechConfig{Rate: rate, Pitch: pitch, Volume: volume, Enabled: enabled}, nil
}

// ensureHostless keeps only the ":port" part of a listen address so a
// loopback relay URL can be derived from it.
func ensureHostless(addr string) string {
	if idx := strings.LastIndex(addr, ":"); idx >= 0 {
		return addr[idx:]
	}
	return ":" + addr
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}
