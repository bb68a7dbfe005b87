package lesson

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// successesNeeded is how many good repetitions finish a drill.
	successesNeeded = 5
	// maxAttemptsPerRound is how many misses are tolerated in one round
	// before the drill is abandoned gracefully.
	maxAttemptsPerRound = 3
)

// moveOnLine is said when a round of attempts fails and the drill stops.
const moveOnLine = "لا بأس، دعونا نكمل الدرس بعد كل هذا الجهد."

// MatchesTarget reports whether the student's transcript contains the
// target, ignoring case and surrounding noise. Young students rarely
// produce a clean isolated token, so substring matching is deliberate.
func MatchesTarget(transcript, target string) bool {
	transcript = strings.ToLower(strings.TrimSpace(transcript))
	target = strings.ToLower(strings.TrimSpace(target))
	if transcript == "" || target == "" {
		return false
	}
	return strings.Contains(transcript, target)
}

var affirmativePattern = regexp.MustCompile(`جاهز|جاهزين|نعم|ايوه|ايوا|اوه|yes|ready`)

// IsAffirmative reports whether a transcript sounds like "I'm ready".
func IsAffirmative(transcript string) bool {
	return affirmativePattern.MatchString(strings.ToLower(transcript))
}

// awaitReadiness asks until the student confirms they are ready, up to
// maxAsks times. It returns true once an affirmative answer arrives.
func (c *Controller) awaitReadiness(ctx context.Context, prompt string, maxAsks int) bool {
	for i := 0; i < maxAsks; i++ {
		if ctx.Err() != nil {
			return false
		}
		c.say(ctx, prompt)
		heard := c.speaker.AwaitUserSpeech(ctx, c.timings.ListenWindow)
		if IsAffirmative(heard) {
			return true
		}
	}
	return false
}

// runDrill repeats target with the student until successesNeeded good
// repetitions land. Each round models the target and allows up to
// maxAttemptsPerRound tries; a round with no good try ends the drill
// with an encouraging line so a struggling student is never stuck.
// The repetition counter feeds the progress stars on screen.
func (c *Controller) runDrill(ctx context.Context, counterKey, target, modelLine, promptLine, praiseLine string) {
	c.ResetRepetitionCount(counterKey)

	for c.RepetitionCount(counterKey) < successesNeeded {
		if ctx.Err() != nil {
			return
		}
		c.say(ctx, modelLine)
		succeeded := false
		for attempt := 0; attempt < maxAttemptsPerRound; attempt++ {
			if ctx.Err() != nil {
				return
			}
			c.say(ctx, promptLine)
			heard := c.speaker.AwaitUserSpeech(ctx, c.timings.ListenWindow)
			if MatchesTarget(heard, target) {
				n := c.UpdateRepetitionCount(counterKey, 1)
				c.say(ctx, fmt.Sprintf("%s %d", praiseLine, n))
				succeeded = true
				break
			}
		}
		if !succeeded {
			c.say(ctx, moveOnLine)
			return
		}
	}
}

// pause sleeps unless the lesson context is cancelled.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
