package lesson

import (
	"context"
	"math/rand"
	"testing"

	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/letters"
)

func TestImageQuizComposition(t *testing.T) {
	lib := letters.NewLibrary()
	correct := lib.Profile("C").Words[0].Word

	for seed := int64(0); seed < 20; seed++ {
		q := newImageQuiz(lib, "C", rand.New(rand.NewSource(seed)))
		if len(q.options) != 4 {
			t.Fatalf("seed %d: %d options, want 4", seed, len(q.options))
		}
		found := 0
		for i, opt := range q.options {
			if opt.Word == correct {
				found++
				if i != q.correctIndex {
					t.Fatalf("seed %d: correctIndex %d but correct word at %d", seed, q.correctIndex, i)
				}
			}
		}
		if found != 1 {
			t.Fatalf("seed %d: correct word appears %d times", seed, found)
		}
	}
}

func TestImageQuizCorrectAnswer(t *testing.T) {
	lib := letters.NewLibrary()
	q := newImageQuiz(lib, "A", rand.New(rand.NewSource(1)))

	res, err := q.answer(q.correctIndex)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !res.Correct || !res.Done || res.Revealed {
		t.Fatalf("result = %+v", res)
	}
	st := q.state()
	if !st.Solved || st.CorrectIndex != q.correctIndex {
		t.Fatalf("state = %+v", st)
	}
}

func TestImageQuizRevealsAfterThreeMisses(t *testing.T) {
	lib := letters.NewLibrary()
	q := newImageQuiz(lib, "A", rand.New(rand.NewSource(2)))
	wrong := (q.correctIndex + 1) % len(q.options)

	for i := 0; i < maxWrongAnswers-1; i++ {
		res, err := q.answer(wrong)
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if res.Done || res.Correct {
			t.Fatalf("answer %d ended the round early: %+v", i, res)
		}
		if res.Feedback == "" {
			t.Fatalf("answer %d gave no feedback", i)
		}
	}
	res, err := q.answer(wrong)
	if err != nil {
		t.Fatalf("final answer: %v", err)
	}
	if !res.Done || !res.Revealed || res.Correct {
		t.Fatalf("final result = %+v", res)
	}
	if st := q.state(); st.CorrectIndex != q.correctIndex {
		t.Fatalf("reveal state hides the answer: %+v", st)
	}
}

func TestImageQuizStateHidesAnswerWhileLive(t *testing.T) {
	lib := letters.NewLibrary()
	q := newImageQuiz(lib, "A", rand.New(rand.NewSource(3)))
	if st := q.state(); st.CorrectIndex != -1 {
		t.Fatalf("live state exposes correctIndex %d", st.CorrectIndex)
	}
}

func TestImageQuizAnswerOutOfRange(t *testing.T) {
	lib := letters.NewLibrary()
	q := newImageQuiz(lib, "A", rand.New(rand.NewSource(4)))
	if _, err := q.answer(-1); err == nil {
		t.Fatal("negative index accepted")
	}
	if _, err := q.answer(len(q.options)); err == nil {
		t.Fatal("overflow index accepted")
	}
}

func TestAnswerQuizAdvancesToWriting(t *testing.T) {
	c, _ := newTestController()
	c.ShowImageSelection()

	st := c.State()
	correct := letters.NewLibrary().Profile("A").Words[0].Word
	idx := -1
	for i, opt := range st.Quiz.Options {
		if opt.Word == correct {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatal("correct option missing")
	}

	res, err := c.AnswerQuiz(context.Background(), idx)
	if err != nil {
		t.Fatalf("AnswerQuiz: %v", err)
	}
	if !res.Correct {
		t.Fatalf("result = %+v", res)
	}
	waitFor(t, "writing stage", func() bool {
		s := c.State()
		return s.Stage == StageWriting && s.Visual.ShowBlackboard
	})
}

func TestAnswerQuizWithoutQuiz(t *testing.T) {
	c, _ := newTestController()
	if _, err := c.AnswerQuiz(context.Background(), 0); err != ErrNoQuiz {
		t.Fatalf("err = %v, want ErrNoQuiz", err)
	}
}
