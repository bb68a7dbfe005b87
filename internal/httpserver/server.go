// Package httpserver exposes the tutoring session over REST for the
// browser client: credential relay, session control, lesson state,
// the fallback voice path and the mini games.
package httpserver

import (
	"context"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/agent"
	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/games"
	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/lesson"
	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/letters"
	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/relay"
)

// KeyMinter mints ephemeral realtime credentials.
type KeyMinter interface {
	MintEphemeralKey(ctx context.Context) (relay.Result, error)
}

// VoiceBridge is the slice of the agent bridge the handlers drive.
type VoiceBridge interface {
	Connect(ctx context.Context, letter string) error
	Disconnect()
	SetMicEnabled(enabled bool) error
	State() agent.Snapshot
}

// Synthesizer produces a PCM clip for a phrase.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	SampleRate() int
}

// Transcriber recognizes one uploaded clip.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Deps carries everything the server serves.
type Deps struct {
	Minter         KeyMinter
	Bridge         VoiceBridge
	Controller     *lesson.Controller
	Library        *letters.Library
	Synth          Synthesizer
	Transcriber    Transcriber
	AllowedOrigins []string
}

// Server is the echo application.
type Server struct {
	echo *echo.Echo
	deps Deps

	mu       sync.Mutex
	quizGame *games.QuizGame
	balloons *games.BalloonGame
	lastTick time.Time
	rng      *rand.Rand
}

func New(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: deps.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	s := &Server{
		echo: e,
		deps: deps,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.register()
	return s
}

func (s *Server) register() {
	e := s.echo
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/api/ephemeral", s.ephemeral)

	e.POST("/api/session/connect", s.connect)
	e.POST("/api/session/disconnect", s.disconnect)
	e.POST("/api/session/mic", s.mic)
	e.POST("/api/session/stage", s.stage)
	e.POST("/api/session/lesson/start", s.lessonStart)
	e.POST("/api/session/lesson/stop", s.lessonStop)
	e.POST("/api/session/quiz/answer", s.quizAnswer)
	e.GET("/api/session/state", s.state)

	e.POST("/api/letters/:letter/recording", s.letterRecording)
	e.POST("/api/letters/:letter/words/:index/image", s.wordImage)
	e.GET("/api/letters/:letter", s.letterProfile)

	e.POST("/api/speech/synthesize", s.synthesize)
	e.POST("/api/speech/transcribe", s.transcribe)

	e.POST("/api/games/quiz/start", s.gameQuizStart)
	e.POST("/api/games/quiz/answer", s.gameQuizAnswer)
	e.POST("/api/games/balloons/start", s.balloonsStart)
	e.POST("/api/games/balloons/pop", s.balloonsPop)
	e.GET("/api/games/balloons/state", s.balloonsState)
}

// Handler returns the routable handler, for tests and custom servers.
func (s *Server) Handler() http.Handler { return s.echo }

// Start blocks serving on addr.
func (s *Server) Start(addr string) error { return s.echo.Start(addr) }

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error { return s.echo.Shutdown(ctx) }
