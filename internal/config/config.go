package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress     string
	OpenAIKey       string
	RealtimeModel   string
	RealtimeBaseURL string
	DeepgramKey     string
	AllowedOrigins  []string
	// SpeechWaitDefault bounds awaitUserSpeech when callers pass no timeout.
	SpeechWaitDefault time.Duration
}

// defaultOrigins mirrors the production allow-list of the web front end.
var defaultOrigins = []string{
	"http://localhost:5173",
	"https://ibrahem-khaled.github.io",
	"https://smart-letter-guide.vercel.app",
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}

	openAIKey := os.Getenv("OPENAI_API_KEY")
	if openAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set - ephemeral key relay and voice agent will not work")
	}

	model := os.Getenv("REALTIME_MODEL")
	if model == "" {
		model = "gpt-realtime"
	}

	baseURL := os.Getenv("REALTIME_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	deepgramKey := os.Getenv("DEEPGRAM_API_KEY")
	if deepgramKey == "" {
		log.Println("Warning: DEEPGRAM_API_KEY not set - local speech fallback will not work")
	}

	origins := defaultOrigins
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = nil
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	wait := 8 * time.Second
	if raw := os.Getenv("SPEECH_WAIT_DEFAULT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			wait = d
		} else {
			log.Printf("Warning: invalid SPEECH_WAIT_DEFAULT %q, keeping %s", raw, wait)
		}
	}

	log.Printf("config: HTTP_ADDRESS=%s model=%s", addr, model)
	return Config{
		HTTPAddress:       addr,
		OpenAIKey:         openAIKey,
		RealtimeModel:     model,
		RealtimeBaseURL:   baseURL,
		DeepgramKey:       deepgramKey,
		AllowedOrigins:    origins,
		SpeechWaitDefault: wait,
	}
}
