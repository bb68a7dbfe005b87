package lesson

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/letters"
)

// maxWrongAnswers caps the misses before the quiz reveals the answer
// and moves on, so a struggling student is never stuck.
const maxWrongAnswers = 3

var ErrNoQuiz = errors.New("no image quiz on screen")

// imageQuiz is one round of "which picture starts with the letter".
// Exactly one option is correct; the other three come from different
// letters.
type imageQuiz struct {
	options      []ImageOption
	correctIndex int
	wrongCount   int
	solved       bool
	revealed     bool
}

// QuizState is the client-facing view. The correct index is only
// exposed once the round is over.
type QuizState struct {
	Options      []ImageOption `json:"options"`
	WrongCount   int           `json:"wrongCount"`
	Solved       bool          `json:"solved"`
	Revealed     bool          `json:"revealed"`
	CorrectIndex int           `json:"correctIndex"`
}

// QuizResult reports the outcome of one answer.
type QuizResult struct {
	Correct     bool   `json:"correct"`
	Done        bool   `json:"done"`
	Revealed    bool   `json:"revealed"`
	CorrectWord string `json:"correctWord"`
	Feedback    string `json:"feedback"`
}

func newImageQuiz(lib *letters.Library, letter string, rng *rand.Rand) *imageQuiz {
	profile := lib.Profile(letter)
	correct := profile.Words[0]

	var pool []letters.Word
	for _, other := range letters.All() {
		if other == letter {
			continue
		}
		words := lib.Profile(other).Words
		if len(words) > 0 {
			pool = append(pool, words[0])
		}
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > 3 {
		pool = pool[:3]
	}

	options := make([]ImageOption, 0, len(pool)+1)
	options = append(options, ImageOption{Word: correct.Word, Arabic: correct.Arabic, Image: correct.Image})
	for _, w := range pool {
		options = append(options, ImageOption{Word: w.Word, Arabic: w.Arabic, Image: w.Image})
	}
	rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	q := &imageQuiz{options: options}
	for i, opt := range options {
		if opt.Word == correct.Word {
			q.correctIndex = i
			break
		}
	}
	return q
}

func (q *imageQuiz) answer(index int) (QuizResult, error) {
	if index < 0 || index >= len(q.options) {
		return QuizResult{}, fmt.Errorf("answer index %d out of range", index)
	}
	correct := q.options[q.correctIndex]
	if q.solved || q.revealed {
		return QuizResult{Done: true, Revealed: q.revealed, CorrectWord: correct.Word}, nil
	}
	if index == q.correctIndex {
		q.solved = true
		return QuizResult{
			Correct:     true,
			Done:        true,
			CorrectWord: correct.Word,
			Feedback:    fmt.Sprintf("أحسنت! %s يعني %s", correct.Word, correct.Arabic),
		}, nil
	}
	q.wrongCount++
	if q.wrongCount >= maxWrongAnswers {
		q.revealed = true
		return QuizResult{
			Done:        true,
			Revealed:    true,
			CorrectWord: correct.Word,
			Feedback:    fmt.Sprintf("لا بأس! الإجابة الصحيحة هي %s يعني %s", correct.Word, correct.Arabic),
		}, nil
	}
	return QuizResult{
		CorrectWord: correct.Word,
		Feedback:    fmt.Sprintf("حاول مرة أخرى! ابحث عن %s", correct.Word),
	}, nil
}

func (q *imageQuiz) state() QuizState {
	st := QuizState{
		Options:      append([]ImageOption(nil), q.options...),
		WrongCount:   q.wrongCount,
		Solved:       q.solved,
		Revealed:     q.revealed,
		CorrectIndex: -1,
	}
	if q.solved || q.revealed {
		st.CorrectIndex = q.correctIndex
	}
	return st
}

// AnswerQuiz resolves one tap on the image quiz. Once the round ends,
// by either a correct pick or the reveal cap, the lesson advances to
// the writing stage after a short celebration delay.
func (c *Controller) AnswerQuiz(ctx context.Context, index int) (QuizResult, error) {
	c.mu.Lock()
	quiz := c.quiz
	c.mu.Unlock()
	if quiz == nil {
		return QuizResult{}, ErrNoQuiz
	}

	c.mu.Lock()
	result, err := quiz.answer(index)
	c.mu.Unlock()
	if err != nil {
		return QuizResult{}, err
	}

	c.say(ctx, result.Feedback)
	if result.Done {
		// The advance outlives the answering request.
		advanceCtx := context.WithoutCancel(ctx)
		go func() {
			pause(advanceCtx, c.timings.QuizAdvance)
			_ = c.SelectStage(advanceCtx, StageWriting)
		}()
	}
	return result, nil
}
