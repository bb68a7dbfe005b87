package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/games"
	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/lesson"
	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/letters"
)

// maxAudioUpload caps recording and transcription uploads.
const maxAudioUpload = 10 << 20

// ephemeral mints a fresh realtime credential for the browser. Upstream
// provider errors pass through verbatim so the client can see exactly
// what the provider said; only transport failures map to a 500.
func (s *Server) ephemeral(c echo.Context) error {
	res, err := s.deps.Minter.MintEphemeralKey(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed_to_generate_ephemeral_key"})
	}
	if res.Key == "" {
		return c.Blob(res.UpstreamStatus, echo.MIMEApplicationJSON, res.UpstreamBody)
	}
	return c.JSON(http.StatusOK, echo.Map{"apiKey": res.Key})
}

func (s *Server) connect(c echo.Context) error {
	var req struct {
		Letter string `json:"letter"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body"})
	}
	if req.Letter != "" {
		if err := s.deps.Controller.SetLetter(req.Letter); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
	}
	if err := s.deps.Bridge.Connect(c.Request().Context(), s.deps.Controller.Letter()); err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, s.deps.Bridge.State())
}

func (s *Server) disconnect(c echo.Context) error {
	s.deps.Controller.StopLesson()
	s.deps.Bridge.Disconnect()
	return c.JSON(http.StatusOK, s.deps.Bridge.State())
}

func (s *Server) mic(c echo.Context) error {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := c.Bind(&req); err != nil || req.Enabled == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "enabled is required"})
	}
	if err := s.deps.Bridge.SetMicEnabled(*req.Enabled); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, s.deps.Bridge.State())
}

func (s *Server) stage(c echo.Context) error {
	var req struct {
		Stage string `json:"stage"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body"})
	}
	stage, err := lesson.ParseStage(req.Stage)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := s.deps.Controller.SelectStage(c.Request().Context(), stage); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, s.deps.Controller.State())
}

func (s *Server) lessonStart(c echo.Context) error {
	if err := s.deps.Controller.StartLesson(c.Request().Context()); err != nil {
		if errors.Is(err, lesson.ErrLessonRunning) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "lesson_already_running"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusAccepted, s.deps.Controller.State())
}

func (s *Server) lessonStop(c echo.Context) error {
	s.deps.Controller.StopLesson()
	return c.JSON(http.StatusOK, s.deps.Controller.State())
}

func (s *Server) quizAnswer(c echo.Context) error {
	var req struct {
		Index *int `json:"index"`
	}
	if err := c.Bind(&req); err != nil || req.Index == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "index is required"})
	}
	res, err := s.deps.Controller.AnswerQuiz(c.Request().Context(), *req.Index)
	if err != nil {
		if errors.Is(err, lesson.ErrNoQuiz) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "no_quiz_on_screen"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) state(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"session": s.deps.Controller.State(),
		"voice":   s.deps.Bridge.State(),
	})
}

// letterRecording stores an operator-uploaded pronunciation clip and
// registers it as the letter's sound. The clip itself is served back as
// a data URL by the client; the server keeps only the reference.
func (s *Server) letterRecording(c echo.Context) error {
	letter := c.Param("letter")
	if !letters.Known(letter) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown_letter"})
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&req); err != nil || req.URL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "url is required"})
	}
	if err := s.deps.Library.SetRecording(letter, req.URL); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"letter": letters.Normalize(letter), "url": req.URL})
}

// wordImage overrides the illustration of one word of a letter.
func (s *Server) wordImage(c echo.Context) error {
	letter := c.Param("letter")
	if !letters.Known(letter) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown_letter"})
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "index must be a number"})
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&req); err != nil || req.URL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "url is required"})
	}
	if err := s.deps.Library.SetWordImage(letter, index, req.URL); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, s.deps.Library.Profile(letter))
}

func (s *Server) letterProfile(c echo.Context) error {
	letter := c.Param("letter")
	if !letters.Known(letter) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown_letter"})
	}
	return c.JSON(http.StatusOK, s.deps.Library.Profile(letter))
}

func (s *Server) synthesize(c echo.Context) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil || req.Text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text is required"})
	}
	audio, err := s.deps.Synth.Synthesize(c.Request().Context(), req.Text)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	c.Response().Header().Set("X-Sample-Rate", strconv.Itoa(s.deps.Synth.SampleRate()))
	return c.Blob(http.StatusOK, "audio/l16", audio)
}

func (s *Server) transcribe(c echo.Context) error {
	audio, err := io.ReadAll(io.LimitReader(c.Request().Body, maxAudioUpload))
	if err != nil || len(audio) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "audio body is required"})
	}
	transcript, err := s.deps.Transcriber.Transcribe(c.Request().Context(), audio, c.Request().Header.Get(echo.HeaderContentType))
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"transcript": transcript})
}

// Mini games. One round of each game lives on the session at a time.

func (s *Server) gameQuizStart(c echo.Context) error {
	s.mu.Lock()
	s.quizGame = games.NewQuizGame(s.deps.Library, s.deps.Controller.Letter(), s.rng)
	g := s.quizGame
	q, _ := g.Current()
	payload := echo.Map{
		"letter":   g.Letter,
		"question": q,
		"number":   g.QuestionNumber(),
		"total":    g.TotalQuestions(),
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, payload)
}

func (s *Server) gameQuizAnswer(c echo.Context) error {
	var req struct {
		Index *int    `json:"index"`
		Text  *string `json:"text"`
	}
	if err := c.Bind(&req); err != nil || (req.Index == nil && req.Text == nil) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "index or text is required"})
	}
	s.mu.Lock()
	g := s.quizGame
	if g == nil {
		s.mu.Unlock()
		return c.JSON(http.StatusConflict, echo.Map{"error": "no_quiz_round"})
	}
	var (
		res games.QuizAnswer
		err error
	)
	if req.Text != nil {
		res, err = g.AnswerText(*req.Text)
	} else {
		res, err = g.Answer(*req.Index)
	}
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, games.ErrQuizFinished) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "quiz_finished"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	next, more := g.Current()
	payload := echo.Map{
		"result": res,
		"number": g.QuestionNumber(),
		"total":  g.TotalQuestions(),
	}
	if more {
		payload["question"] = next
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, payload)
}

func (s *Server) balloonsStart(c echo.Context) error {
	s.mu.Lock()
	s.balloons = games.NewBalloonGame(s.deps.Controller.Letter(), s.rng)
	s.lastTick = time.Now()
	g := s.balloons
	s.mu.Unlock()
	return c.JSON(http.StatusOK, g.State())
}

func (s *Server) balloonsPop(c echo.Context) error {
	var req struct {
		ID *int `json:"id"`
	}
	if err := c.Bind(&req); err != nil || req.ID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id is required"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balloons == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no_balloon_round"})
	}
	s.advanceBalloonsLocked()
	res, err := s.balloons.Pop(*req.ID)
	if err != nil {
		if errors.Is(err, games.ErrBalloonGone) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "balloon_gone"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) balloonsState(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balloons == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no_balloon_round"})
	}
	s.advanceBalloonsLocked()
	return c.JSON(http.StatusOK, s.balloons.State())
}

// advanceBalloonsLocked catches the round up to wall time. Held under
// s.mu by callers.
func (s *Server) advanceBalloonsLocked() {
	now := time.Now()
	s.balloons.Advance(now.Sub(s.lastTick))
	s.lastTick = now
}
