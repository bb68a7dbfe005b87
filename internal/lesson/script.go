package lesson

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/letters"
)

var (
	capitalPattern = regexp.MustCompile(`(?i)capital|كابيتال|كبير`)
	smallPattern   = regexp.MustCompile(`(?i)small|صمول|صغير`)
)

// stageCue is the spoken line that accompanies a stage switch.
func stageCue(stage Stage, letter string, profile letters.Profile) string {
	switch stage {
	case StageIntro:
		return fmt.Sprintf("هيا نتعلم حرف %s!", letter)
	case StageWords:
		return fmt.Sprintf("الآن سنتعلم كلمات تبدأ بحرف %s", letter)
	case StageWriting:
		return fmt.Sprintf("هيا نتعلم كيف نكتب حرف %s على السبورة", letter)
	case StageSong:
		return fmt.Sprintf("حان وقت أغنية حرف %s!", letter)
	case StageOutro:
		return fmt.Sprintf("أحسنت! لقد أنهينا درس حرف %s. صوته %s، تذكر دائما!", letter, profile.Sound)
	}
	return ""
}

// listen is shorthand for one answer window.
func (c *Controller) listen(ctx context.Context) string {
	return c.speaker.AwaitUserSpeech(ctx, c.timings.ListenWindow)
}

// runScript walks the whole lesson for the current letter. Every spoken
// line is best effort; visual transitions always land. Cancelling the
// context stops the run at the next step boundary.
func (c *Controller) runScript(ctx context.Context) {
	letter := c.Letter()
	profile := c.library.Profile(letter)

	// Introduction and readiness.
	if err := c.SelectStage(ctx, StageIntro); err != nil {
		return
	}
	c.say(ctx, fmt.Sprintf("مرحبا يا صديقي! اليوم سنتعلم حرف %s. حرف %s صوته %s.", letter, letter, profile.Sound))
	if !c.awaitReadiness(ctx, "هل أنت جاهز لنبدأ؟ قل نعم جاهز!", 3) {
		c.say(ctx, "لا بأس، سنبدأ معا على مهل!")
	}
	if ctx.Err() != nil {
		return
	}

	// Model the letter sound, with the recording when one exists.
	if url := c.PlayLetterRecording(); url != "" {
		pause(ctx, c.timings.WordGap)
		c.StopLetterRecording()
	}
	c.runDrill(ctx, "letter",
		letter,
		fmt.Sprintf("هذا حرف %s. اسمع جيدا: %s. الآن أعد بعدي!", letter, profile.Sound),
		fmt.Sprintf("قل %s!", letter),
		"رائع! هذه المرة رقم")
	if ctx.Err() != nil {
		return
	}
	c.runDrill(ctx, "sound",
		profile.Sound,
		fmt.Sprintf("اسم الحرف %s. قل معي: %s!", profile.Sound, profile.Sound),
		fmt.Sprintf("مرة أخرى، قل %s!", profile.Sound),
		"ممتاز! هذه المرة رقم")
	if ctx.Err() != nil {
		return
	}

	c.recognitionQuiz(ctx, letter)
	if ctx.Err() != nil {
		return
	}
	c.capitalSmallSayAlong(ctx, letter, profile)
	if ctx.Err() != nil {
		return
	}

	// Words that start with the letter, drilled one by one.
	if err := c.SelectStage(ctx, StageWords); err != nil {
		return
	}
	for _, w := range profile.Words {
		if ctx.Err() != nil {
			return
		}
		c.say(ctx, fmt.Sprintf("كلمة %s يعني %s.", w.Word, w.Arabic))
		c.say(ctx, fmt.Sprintf("بتنطق هكذا: %s %s. جرب تقول %s.", letter, w.Word, w.Word))
		c.runDrill(ctx, "word:"+w.Word,
			w.Word,
			fmt.Sprintf("قل معي كلمة %s.", w.Word),
			fmt.Sprintf("كرر كلمة %s.", w.Word),
			"أحسنت! هذه المرة رقم")
		pause(ctx, c.timings.WordGap)
	}
	c.say(ctx, fmt.Sprintf("من يعرف كلمات تبدأ بحرف %s؟", letter))
	if strings.TrimSpace(c.listen(ctx)) != "" {
		c.say(ctx, "أحسنت!")
	} else {
		c.say(ctx, "حاول مرة أخرى.")
	}

	// Picture quiz before writing.
	c.ShowImageSelection()
	c.say(ctx, fmt.Sprintf("أين الصورة التي تبدأ بحرف %s؟ اضغط عليها!", letter))
	if !c.waitQuizDone(ctx, 2*time.Minute) {
		return
	}

	// AnswerQuiz already schedules the writing transition; the run
	// rejoins it here so the narration continues in order.
	pause(ctx, c.timings.QuizAdvance)
	if err := c.SelectStage(ctx, StageWriting); err != nil {
		return
	}
	c.say(ctx, fmt.Sprintf("تتبع الخطوط المنقطة لتكتب حرف %s. خذ وقتك!", letter))
	c.listen(ctx)
	c.say(ctx, fmt.Sprintf("اكتب الحرف بشكل كبير %s.", profile.Capital))
	c.listen(ctx)
	c.say(ctx, fmt.Sprintf("اكتبه الآن بشكل صغير %s.", profile.Small))
	c.listen(ctx)
	c.say(ctx, "أحسنت! كتابتك جميلة جدا.")

	c.postWritingQuestions(ctx, letter)
	if ctx.Err() != nil {
		return
	}
	c.finalQuiz(ctx, letter)
	if ctx.Err() != nil {
		return
	}

	// Song, then outro with the game picker.
	if err := c.SelectStage(ctx, StageSong); err != nil {
		return
	}
	pause(ctx, c.timings.ListenWindow)

	if err := c.SelectStage(ctx, StageOutro); err != nil {
		return
	}
	c.outroReview(ctx)
	c.ShowGameSelection()
	c.say(ctx, "هل تريد أن نلعب لعبة؟ اختر لعبتك المفضلة!")
}

// recognitionQuiz shows the letter and asks the student to name it,
// with three attempts before the answer is revealed.
func (c *Controller) recognitionQuiz(ctx context.Context, letter string) {
	c.ShowLetter(CaseCapital)
	c.say(ctx, "ما هذا الحرف؟")
	for attempt := 0; attempt < 3; attempt++ {
		if ctx.Err() != nil {
			return
		}
		if MatchesTarget(c.listen(ctx), letter) {
			c.say(ctx, "أحسنت!")
			return
		}
		if attempt < 2 {
			c.say(ctx, "حاول مرة أخرى.")
		} else {
			c.say(ctx, fmt.Sprintf("هذا هو حرف %s. فلنحاول مرة أخرى.", letter))
		}
	}
}

// capitalSmallSayAlong walks the two letter shapes and asks the student
// to repeat the capital/small distinction in their own words.
func (c *Controller) capitalSmallSayAlong(ctx context.Context, letter string, profile letters.Profile) {
	c.ShowLetter(CaseBoth)
	c.say(ctx, fmt.Sprintf("انظر إلى الشاشة: حرف %s يتكون من شكلين.", letter))
	c.say(ctx, fmt.Sprintf("على الشمال ترى %s. هذا الشكل الكبير ونسميه Capital.", profile.Capital))
	c.say(ctx, "قل معي: الكبير على الشمال.")
	c.listen(ctx)
	c.say(ctx, fmt.Sprintf("وعلى اليمين ترى %s. هذا الشكل الصغير ونسميه Small.", profile.Small))
	c.say(ctx, "قل معي: الصغير على اليمين.")
	c.listen(ctx)
	c.say(ctx, "من يقدر يعيدها بطريقته؟")
	answer := c.listen(ctx)
	if capitalPattern.MatchString(answer) && smallPattern.MatchString(answer) {
		c.say(ctx, "أحسنت!")
	} else {
		c.say(ctx, "حاول مرة أخرى.")
	}
}

// postWritingQuestions reviews the letter right after the writing stage.
func (c *Controller) postWritingQuestions(ctx context.Context, letter string) {
	c.ShowLetter(CaseCapital)
	c.say(ctx, "ما هذا الحرف؟")
	first := c.listen(ctx)
	c.say(ctx, "ما هو صوته؟")
	c.listen(ctx)
	c.say(ctx, fmt.Sprintf("من يعرف يكتب حرف %s؟", letter))
	c.listen(ctx)
	if MatchesTarget(first, letter) {
		c.say(ctx, "أحسنت!")
	} else {
		c.say(ctx, "حاول مرة أخرى.")
	}
}

// finalQuiz runs the end-of-lesson check before the song.
func (c *Controller) finalQuiz(ctx context.Context, letter string) {
	c.say(ctx, fmt.Sprintf("ما هو صوت حرف %s؟", letter))
	c.listen(ctx)
	c.ShowLetter(CaseCapital)
	c.say(ctx, "ما هذا الحرف؟")
	named := c.listen(ctx)
	c.say(ctx, fmt.Sprintf("اذكر كلمة تبدأ بحرف %s.", letter))
	c.listen(ctx)
	if MatchesTarget(named, letter) {
		c.say(ctx, "رائع!")
	} else {
		c.say(ctx, "حاول مرة أخرى.")
	}
}

// outroReview asks the three closing review questions.
func (c *Controller) outroReview(ctx context.Context) {
	for _, q := range []string{"ما هذا الحرف؟", "ما هو صوته؟", "اذكر كلمة تبدأ به."} {
		c.say(ctx, q)
		c.listen(ctx)
	}
	c.say(ctx, "أحسنتم يا أطفالي! كنتم رائعين اليوم.")
}

// waitQuizDone polls until the on-screen quiz resolves or is dismissed.
func (c *Controller) waitQuizDone(ctx context.Context, limit time.Duration) bool {
	deadline := time.Now().Add(limit)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return false
		}
		c.mu.Lock()
		quiz := c.quiz
		done := quiz == nil || quiz.solved || quiz.revealed
		c.mu.Unlock()
		if done {
			return true
		}
		pause(ctx, 100*time.Millisecond)
	}
	return false
}
