// Package games holds the two mini games offered after a lesson: a
// multiple choice quiz and the balloon pop game. Both are deterministic
// state machines driven by the HTTP layer; randomness is injected so
// rounds are reproducible in tests.
package games

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/letters"
)

const quizPointsPerRight = 10

// Question presentation kinds. Text questions offer letter options,
// image questions pair each option with an illustration, and the
// writing question takes a typed answer instead of an option index.
const (
	QuestionText    = "text"
	QuestionImage   = "image"
	QuestionWriting = "writing"
)

var ErrQuizFinished = errors.New("quiz already finished")

// Question is one quiz item. The correct index stays server side until
// the question is answered.
type Question struct {
	Prompt  string   `json:"prompt"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
	Images  []string `json:"images,omitempty"`
	correct int
}

// QuizAnswer reports the outcome of answering the current question.
type QuizAnswer struct {
	Correct      bool `json:"correct"`
	CorrectIndex int  `json:"correctIndex"`
	Score        int  `json:"score"`
	Done         bool `json:"done"`
}

// QuizGame is a five question round built around one letter.
type QuizGame struct {
	Letter    string
	questions []Question
	current   int
	score     int
}

// NewQuizGame builds a round for letter: a picture hunt, a small form
// pick, a learned pair pick, a capital form pick, and a written answer.
func NewQuizGame(lib *letters.Library, letter string, rng *rand.Rand) *QuizGame {
	letter = letters.Normalize(letter)
	profile := lib.Profile(letter)

	return &QuizGame{
		Letter: letter,
		questions: []Question{
			imageQuestion(lib, letter, profile, rng),
			smallFormQuestion(lib, letter, rng),
			learnedPairQuestion(lib, letter, profile, rng),
			capitalFormQuestion(lib, letter, profile, rng),
			writingQuestion(),
		},
	}
}

// imageQuestion asks for the picture whose word starts with the letter.
// Options carry the Arabic labels; images sit in a parallel slice.
func imageQuestion(lib *letters.Library, letter string, profile letters.Profile, rng *rand.Rand) Question {
	correct := profile.Words[rng.Intn(len(profile.Words))]
	labels := []string{correct.Arabic}
	images := []string{correct.Image}
	for _, other := range shuffledLetters(letter, rng) {
		if len(labels) == 4 {
			break
		}
		words := lib.Profile(other).Words
		w := words[rng.Intn(len(words))]
		labels = append(labels, w.Arabic)
		images = append(images, w.Image)
	}

	q := Question{
		Prompt:  fmt.Sprintf("اختر الصورة التي تبدأ بحرف %s", letter),
		Type:    QuestionImage,
		Options: labels,
		Images:  images,
	}
	rng.Shuffle(len(q.Options), func(i, j int) {
		q.Options[i], q.Options[j] = q.Options[j], q.Options[i]
		q.Images[i], q.Images[j] = q.Images[j], q.Images[i]
	})
	for i, opt := range q.Options {
		if opt == correct.Arabic {
			q.correct = i
			break
		}
	}
	return q
}

func smallFormQuestion(lib *letters.Library, letter string, rng *rand.Rand) Question {
	options := []string{lib.Profile(letter).Small}
	for _, other := range shuffledLetters(letter, rng) {
		if len(options) == 4 {
			break
		}
		options = append(options, lib.Profile(other).Small)
	}
	return shuffledQuestion(
		fmt.Sprintf("اضغط على الحرف الصغير لحرف %s", letter),
		options, rng)
}

func learnedPairQuestion(lib *letters.Library, letter string, profile letters.Profile, rng *rand.Rand) Question {
	options := []string{profile.Capital + profile.Small}
	for _, other := range shuffledLetters(letter, rng) {
		if len(options) == 4 {
			break
		}
		p := lib.Profile(other)
		options = append(options, p.Capital+p.Small)
	}
	return shuffledQuestion("اختر الحرف الذي تعلمناه اليوم", options, rng)
}

func capitalFormQuestion(lib *letters.Library, letter string, profile letters.Profile, rng *rand.Rand) Question {
	options := []string{profile.Capital}
	for _, other := range shuffledLetters(letter, rng) {
		if len(options) == 4 {
			break
		}
		options = append(options, lib.Profile(other).Capital)
	}
	return shuffledQuestion(
		fmt.Sprintf("اختر الحرف الكبير لحرف %s", profile.Small),
		options, rng)
}

func writingQuestion() Question {
	return Question{
		Prompt: "اكتب الحرف الذي تعلمناه اليوم",
		Type:   QuestionWriting,
	}
}

// shuffledLetters returns the alphabet minus exclude in random order.
func shuffledLetters(exclude string, rng *rand.Rand) []string {
	var out []string
	for _, l := range letters.All() {
		if l != exclude {
			out = append(out, l)
		}
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// shuffledQuestion shuffles options (the first is the correct one) and
// records where the correct answer landed.
func shuffledQuestion(prompt string, options []string, rng *rand.Rand) Question {
	correct := options[0]
	rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	q := Question{Prompt: prompt, Type: QuestionText, Options: options}
	for i, opt := range options {
		if opt == correct {
			q.correct = i
			break
		}
	}
	return q
}

// Current returns the live question, or false when the round is over.
func (g *QuizGame) Current() (Question, bool) {
	if g.current >= len(g.questions) {
		return Question{}, false
	}
	return g.questions[g.current], true
}

// Answer resolves the live option question and advances to the next.
func (g *QuizGame) Answer(index int) (QuizAnswer, error) {
	q, ok := g.Current()
	if !ok {
		return QuizAnswer{}, ErrQuizFinished
	}
	if q.Type == QuestionWriting {
		return QuizAnswer{}, errors.New("current question expects a written answer")
	}
	if index < 0 || index >= len(q.Options) {
		return QuizAnswer{}, fmt.Errorf("answer index %d out of range", index)
	}
	return g.resolve(index == q.correct, q.correct), nil
}

// AnswerText resolves the writing question against the typed letter.
func (g *QuizGame) AnswerText(text string) (QuizAnswer, error) {
	q, ok := g.Current()
	if !ok {
		return QuizAnswer{}, ErrQuizFinished
	}
	if q.Type != QuestionWriting {
		return QuizAnswer{}, errors.New("current question expects an option index")
	}
	correct := strings.EqualFold(strings.TrimSpace(text), g.Letter)
	return g.resolve(correct, -1), nil
}

func (g *QuizGame) resolve(correct bool, correctIndex int) QuizAnswer {
	if correct {
		g.score += quizPointsPerRight
	}
	g.current++
	return QuizAnswer{
		Correct:      correct,
		CorrectIndex: correctIndex,
		Score:        g.score,
		Done:         g.current >= len(g.questions),
	}
}

// Score returns the running score.
func (g *QuizGame) Score() int { return g.score }

// QuestionNumber is the 1-based index of the live question.
func (g *QuizGame) QuestionNumber() int {
	if g.current >= len(g.questions) {
		return len(g.questions)
	}
	return g.current + 1
}

// TotalQuestions reports the round length.
func (g *QuizGame) TotalQuestions() int { return len(g.questions) }
