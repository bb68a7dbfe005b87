package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/agent"
	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/config"
	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/httpserver"
	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/lesson"
	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/letters"
	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/realtime"
	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/relay"
	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/speech"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	library := letters.NewLibrary()
	minter := relay.NewClient(cfg.OpenAIKey, cfg.RealtimeModel, cfg.RealtimeBaseURL)

	tools := agent.NewToolRegistry()
	timings := agent.DefaultTimings()
	timings.DefaultWait = cfg.SpeechWaitDefault
	bridge := agent.NewBridge(minter, realtime.Dialer(cfg.RealtimeBaseURL), cfg.RealtimeModel,
		func(letter string) string { return lesson.AgentInstructions(library, letter) },
		tools, timings)

	controller := lesson.NewController(library, bridge, lesson.DefaultTimings())
	controller.RegisterTools(tools)

	srv := httpserver.New(httpserver.Deps{
		Minter:         minter,
		Bridge:         bridge,
		Controller:     controller,
		Library:        library,
		Synth:          speech.NewSynthesizer(cfg.DeepgramKey, ""),
		Transcriber:    speech.NewTranscriber(cfg.DeepgramKey),
		AllowedOrigins: cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	controller.StopLesson()
	bridge.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}
