package lesson

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/letters"
)

// Speaker is the slice of the voice bridge the lesson needs.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	AwaitUserSpeech(ctx context.Context, timeout time.Duration) string
	PlayRecording(url string)
	StopRecording()
}

// Timings bounds lesson pacing. Tests shrink these.
type Timings struct {
	// ListenWindow is how long to wait for a student reply.
	ListenWindow time.Duration
	// QuizAdvance is the delay between a correct quiz answer and the
	// move to the writing stage, so the celebration lands first.
	QuizAdvance time.Duration
	// WordGap separates the per-word presentations.
	WordGap time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		ListenWindow: 6 * time.Second,
		QuizAdvance:  2 * time.Second,
		WordGap:      1200 * time.Millisecond,
	}
}

// State is the session snapshot served to clients.
type State struct {
	SessionID     string         `json:"sessionId"`
	Letter        string         `json:"letter"`
	Stage         Stage          `json:"stage"`
	Visual        VisualState    `json:"visual"`
	Counters      map[string]int `json:"counters"`
	Quiz          *QuizState     `json:"quiz,omitempty"`
	LessonRunning bool           `json:"lessonRunning"`
}

var ErrLessonRunning = errors.New("lesson already running")

// Controller is the mutable heart of a tutoring session. All state
// transitions funnel through it under one lock.
type Controller struct {
	library *letters.Library
	speaker Speaker
	timings Timings

	mu            sync.Mutex
	sessionID     string
	letter        string
	stage         Stage
	visual        VisualState
	counters      map[string]int
	quiz          *imageQuiz
	rng           *rand.Rand
	lessonCancel  context.CancelFunc
	lessonRunning bool
}

func NewController(library *letters.Library, speaker Speaker, timings Timings) *Controller {
	if timings.ListenWindow <= 0 {
		timings = DefaultTimings()
	}
	return &Controller{
		library:   library,
		speaker:   speaker,
		timings:   timings,
		sessionID: uuid.NewString(),
		letter:    "A",
		stage:     StageIntro,
		counters:  make(map[string]int),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetLetter switches the lesson's letter. Visuals and counters reset
// because everything on screen referred to the old letter.
func (c *Controller) SetLetter(letter string) error {
	normalized := letters.Normalize(letter)
	if !letters.Known(normalized) {
		return fmt.Errorf("unknown letter %q", letter)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.letter = normalized
	c.stage = StageIntro
	c.visual.Clear()
	c.counters = make(map[string]int)
	c.quiz = nil
	return nil
}

func (c *Controller) Letter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.letter
}

// SelectStage jumps the lesson to a stage and swaps the visual surface
// to match. The spoken cue is best effort; a failed utterance does not
// block the visual transition.
func (c *Controller) SelectStage(ctx context.Context, stage Stage) error {
	if _, err := ParseStage(string(stage)); err != nil {
		return err
	}
	c.mu.Lock()
	c.stage = stage
	profile := c.library.Profile(c.letter)
	switch stage {
	case StageIntro:
		c.visual.showLetter(CaseCapital)
	case StageWords:
		c.visual.showWords()
	case StageWriting:
		c.visual.showBlackboard()
	case StageSong:
		c.visual.showSong()
	case StageOutro:
		c.visual.Clear()
	}
	letter := c.letter
	c.mu.Unlock()

	c.say(ctx, stageCue(stage, letter, profile))
	return nil
}

// Stage returns the current stage.
func (c *Controller) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// StartLesson launches the scripted lesson flow in the background. Only
// one run is live at a time. The run outlives the triggering request;
// it stops on StopLesson or when the script completes.
func (c *Controller) StartLesson(ctx context.Context) error {
	c.mu.Lock()
	if c.lessonRunning {
		c.mu.Unlock()
		return ErrLessonRunning
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.lessonRunning = true
	c.lessonCancel = cancel
	letter := c.letter
	c.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			c.mu.Lock()
			c.lessonRunning = false
			c.lessonCancel = nil
			c.mu.Unlock()
		}()
		log.Printf("lesson: starting scripted run for letter %s", letter)
		c.runScript(runCtx)
		log.Printf("lesson: run for letter %s finished", letter)
	}()
	return nil
}

// StopLesson cancels a running scripted lesson, if any.
func (c *Controller) StopLesson() {
	c.mu.Lock()
	cancel := c.lessonCancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Visual surface operations. Each replaces whatever was showing.

func (c *Controller) ShowLetter(letterCase LetterCase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visual.showLetter(letterCase)
}

func (c *Controller) ShowBlackboard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visual.showBlackboard()
}

func (c *Controller) ShowWords() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visual.showWords()
}

func (c *Controller) ShowSong() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visual.showSong()
}

func (c *Controller) ShowGameSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visual.showGameSelection()
}

func (c *Controller) ClearVisuals() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visual.Clear()
	c.quiz = nil
}

// ShowImageSelection builds a fresh image quiz for the current letter
// and puts it on screen.
func (c *Controller) ShowImageSelection() []ImageOption {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quiz = newImageQuiz(c.library, c.letter, c.rng)
	c.visual.showImageSelection(c.quiz.options)
	return c.quiz.options
}

// Recording playback.

func (c *Controller) PlayLetterRecording() string {
	c.mu.Lock()
	letter := c.letter
	c.mu.Unlock()
	url, ok := c.library.Recording(letter)
	if !ok {
		url = c.library.Profile(letter).SoundURL
	}
	if url == "" {
		return ""
	}
	c.speaker.PlayRecording(url)
	return url
}

func (c *Controller) StopLetterRecording() {
	c.speaker.StopRecording()
}

// Repetition counters, clamped to [0, successesNeeded].

func (c *Controller) UpdateRepetitionCount(key string, delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.counters[key] + delta
	if n < 0 {
		n = 0
	}
	if n > successesNeeded {
		n = successesNeeded
	}
	c.counters[key] = n
	return n
}

// SetRepetitionCount pins a counter to an absolute value, clamped to
// the 0..successesNeeded range the progress stars can show.
func (c *Controller) SetRepetitionCount(key string, n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n > successesNeeded {
		n = successesNeeded
	}
	c.counters[key] = n
	return n
}

func (c *Controller) ResetRepetitionCount(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key] = 0
}

func (c *Controller) RepetitionCount(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[key]
}

// State returns a deep snapshot safe to serialize.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	counters := make(map[string]int, len(c.counters))
	for k, v := range c.counters {
		counters[k] = v
	}
	st := State{
		SessionID:     c.sessionID,
		Letter:        c.letter,
		Stage:         c.stage,
		Visual:        c.visual,
		Counters:      counters,
		LessonRunning: c.lessonRunning,
	}
	if c.quiz != nil {
		qs := c.quiz.state()
		st.Quiz = &qs
	}
	return st
}

// say voices a line through the agent, best effort.
func (c *Controller) say(ctx context.Context, text string) {
	if text == "" {
		return
	}
	if err := c.speaker.Speak(ctx, text); err != nil {
		log.Printf("lesson: speak: %v", err)
	}
}
