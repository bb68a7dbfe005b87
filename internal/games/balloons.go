package games

import (
	"errors"
	"math/rand"
	"time"

	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/letters"
)

const (
	balloonRoundLength   = 60 * time.Second
	balloonStartLives    = 3
	balloonMaxLive       = 10
	balloonTargetChance  = 0.6
	balloonSpawnInterval = 900 * time.Millisecond
	balloonPointsPerPop  = 10
)

var ErrBalloonGone = errors.New("balloon not on screen")

// Balloon is one floating balloon. Y runs from 1 (bottom) to 0 (top);
// the client scales to its viewport.
type Balloon struct {
	ID       int     `json:"id"`
	Letter   string  `json:"letter"`
	IsTarget bool    `json:"isTarget"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Speed    float64 `json:"speed"` // screens per second
}

// BalloonGame is the balloon pop round: pop balloons carrying the
// lesson's letter, avoid the rest.
type BalloonGame struct {
	Letter string

	rng      *rand.Rand
	balloons []Balloon
	nextID   int

	remaining  time.Duration
	sinceSpawn time.Duration
	lives      int
	score      int
}

func NewBalloonGame(letter string, rng *rand.Rand) *BalloonGame {
	return &BalloonGame{
		Letter:    letters.Normalize(letter),
		rng:       rng,
		remaining: balloonRoundLength,
		lives:     balloonStartLives,
	}
}

// Over reports whether the round ended, by timer or by lost lives.
func (g *BalloonGame) Over() bool {
	return g.remaining <= 0 || g.lives <= 0
}

// Advance moves the round forward by dt: balloons float up, escaped
// target balloons cost a life, and new balloons spawn up to the cap.
// There is always at least one target balloon on screen so the student
// is never stuck waiting.
func (g *BalloonGame) Advance(dt time.Duration) {
	if g.Over() || dt <= 0 {
		return
	}
	g.remaining -= dt
	if g.remaining < 0 {
		g.remaining = 0
	}

	kept := g.balloons[:0]
	for _, b := range g.balloons {
		b.Y -= b.Speed * dt.Seconds()
		if b.Y < -0.1 {
			if b.IsTarget {
				g.lives--
			}
			continue
		}
		kept = append(kept, b)
	}
	g.balloons = kept
	if g.Over() {
		return
	}

	g.sinceSpawn += dt
	for g.sinceSpawn >= balloonSpawnInterval && len(g.balloons) < balloonMaxLive {
		g.sinceSpawn -= balloonSpawnInterval
		g.spawn(g.rng.Float64() < balloonTargetChance)
	}
	if !g.hasTarget() && len(g.balloons) < balloonMaxLive {
		g.spawn(true)
	}
}

func (g *BalloonGame) spawn(target bool) {
	letter := g.Letter
	if !target {
		for {
			letter = letters.All()[g.rng.Intn(26)]
			if letter != g.Letter {
				break
			}
		}
	}
	g.nextID++
	g.balloons = append(g.balloons, Balloon{
		ID:       g.nextID,
		Letter:   letter,
		IsTarget: target,
		X:        0.05 + 0.9*g.rng.Float64(),
		Y:        1.0,
		Speed:    0.08 + 0.07*g.rng.Float64(),
	})
}

func (g *BalloonGame) hasTarget() bool {
	for _, b := range g.balloons {
		if b.IsTarget {
			return true
		}
	}
	return false
}

// PopResult is the outcome of tapping one balloon.
type PopResult struct {
	Target bool `json:"target"`
	Score  int  `json:"score"`
	Lives  int  `json:"lives"`
	Over   bool `json:"over"`
}

// Pop resolves a tap. Popping a target balloon scores; popping any
// other balloon costs a life.
func (g *BalloonGame) Pop(id int) (PopResult, error) {
	if g.Over() {
		return PopResult{Score: g.score, Lives: g.lives, Over: true}, nil
	}
	for i, b := range g.balloons {
		if b.ID != id {
			continue
		}
		g.balloons = append(g.balloons[:i], g.balloons[i+1:]...)
		if b.IsTarget {
			g.score += balloonPointsPerPop
		} else {
			g.lives--
		}
		return PopResult{Target: b.IsTarget, Score: g.score, Lives: g.lives, Over: g.Over()}, nil
	}
	return PopResult{}, ErrBalloonGone
}

// BalloonState is the client snapshot of the round.
type BalloonState struct {
	Letter      string    `json:"letter"`
	Balloons    []Balloon `json:"balloons"`
	Score       int       `json:"score"`
	Lives       int       `json:"lives"`
	RemainingMs int64     `json:"remainingMs"`
	Over        bool      `json:"over"`
}

func (g *BalloonGame) State() BalloonState {
	return BalloonState{
		Letter:      g.Letter,
		Balloons:    append([]Balloon(nil), g.balloons...),
		Score:       g.score,
		Lives:       g.lives,
		RemainingMs: g.remaining.Milliseconds(),
		Over:        g.Over(),
	}
}
