// Package lesson drives one letter lesson: the stage progression, the
// exclusive visual surface shown to the student, the repetition drill
// and the image quiz. It talks to the voice agent through a narrow
// Speaker interface so the whole flow is testable with fakes.
package lesson

import "fmt"

// Stage identifies where the lesson currently is.
type Stage string

const (
	StageIntro   Stage = "intro"
	StageWords   Stage = "words"
	StageWriting Stage = "writing"
	StageSong    Stage = "song"
	StageOutro   Stage = "outro"
)

var stageOrder = []Stage{StageIntro, StageWords, StageWriting, StageSong, StageOutro}

// ParseStage validates a stage name from the API.
func ParseStage(s string) (Stage, error) {
	for _, st := range stageOrder {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// LetterCase selects which glyph form the letter card shows.
type LetterCase string

const (
	CaseCapital LetterCase = "capital"
	CaseSmall   LetterCase = "small"
	CaseBoth    LetterCase = "both"
)

// ImageOption is one card in the image selection quiz.
type ImageOption struct {
	Word   string `json:"word"`
	Arabic string `json:"arabic"`
	Image  string `json:"image"`
}

// VisualState describes the single surface the student sees. At most
// one Show flag is set at a time; Clear resets everything.
type VisualState struct {
	ShowLetter         bool          `json:"showLetter"`
	LetterCase         LetterCase    `json:"letterCase,omitempty"`
	ShowBlackboard     bool          `json:"showBlackboard"`
	ShowWords          bool          `json:"showWords"`
	ShowImageSelection bool          `json:"showImageSelection"`
	ImageOptions       []ImageOption `json:"imageOptions,omitempty"`
	ShowSong           bool          `json:"showSong"`
	ShowGameSelection  bool          `json:"showGameSelection"`
}

// Clear resets the surface to empty.
func (v *VisualState) Clear() {
	*v = VisualState{}
}

// ActiveCount reports how many surfaces are showing. It exists for the
// exclusivity checks in tests.
func (v VisualState) ActiveCount() int {
	n := 0
	for _, on := range []bool{
		v.ShowLetter, v.ShowBlackboard, v.ShowWords,
		v.ShowImageSelection, v.ShowSong, v.ShowGameSelection,
	} {
		if on {
			n++
		}
	}
	return n
}

func (v *VisualState) showLetter(c LetterCase) {
	v.Clear()
	v.ShowLetter = true
	v.LetterCase = c
}

func (v *VisualState) showBlackboard() {
	v.Clear()
	v.ShowBlackboard = true
}

func (v *VisualState) showWords() {
	v.Clear()
	v.ShowWords = true
}

func (v *VisualState) showImageSelection(options []ImageOption) {
	v.Clear()
	v.ShowImageSelection = true
	v.ImageOptions = options
}

func (v *VisualState) showSong() {
	v.Clear()
	v.ShowSong = true
}

func (v *VisualState) showGameSelection() {
	v.Clear()
	v.ShowGameSelection = true
}
