package lesson

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/agent"
	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/letters"
)

func objectSchema(properties string, required ...string) json.RawMessage {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": json.RawMessage(properties),
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	raw, _ := json.Marshal(schema)
	return raw
}

var emptySchema = objectSchema(`{}`)

// RegisterTools exposes the lesson's controls to the voice agent. The
// agent drives the screen exclusively through these.
func (c *Controller) RegisterTools(reg *agent.ToolRegistry) {
	reg.Register(agent.ToolDef{
		Name:        "show_letter",
		Description: "Display the current letter card. case is capital, small or both.",
		Parameters:  objectSchema(`{"case":{"type":"string","enum":["capital","small","both"]}}`),
	}, func(args json.RawMessage) (string, error) {
		var p struct {
			Case string `json:"case" validate:"omitempty,oneof=capital small both"`
		}
		if err := agent.BindParams(args, &p); err != nil {
			return "", err
		}
		letterCase := LetterCase(p.Case)
		if p.Case == "" {
			letterCase = CaseCapital
		}
		c.ShowLetter(letterCase)
		return "", nil
	})

	reg.Register(agent.ToolDef{
		Name:        "show_both",
		Description: "Display the capital and small forms of the letter together.",
		Parameters:  emptySchema,
	}, func(json.RawMessage) (string, error) {
		c.ShowLetter(CaseBoth)
		return "", nil
	})

	reg.Register(agent.ToolDef{
		Name:        "show_blackboard",
		Description: "Display the writing blackboard with the dotted letter to trace.",
		Parameters:  emptySchema,
	}, func(json.RawMessage) (string, error) {
		c.ShowBlackboard()
		return "", nil
	})

	reg.Register(agent.ToolDef{
		Name:        "show_words",
		Description: "Display the word cards for the current letter.",
		Parameters:  emptySchema,
	}, func(json.RawMessage) (string, error) {
		c.ShowWords()
		return "", nil
	})

	reg.Register(agent.ToolDef{
		Name:        "show_image_selection",
		Description: "Start the picture quiz: the student taps the picture that starts with the letter.",
		Parameters:  emptySchema,
	}, func(json.RawMessage) (string, error) {
		options := c.ShowImageSelection()
		out, err := json.Marshal(map[string]interface{}{"options": options})
		if err != nil {
			return "", err
		}
		return string(out), nil
	})

	reg.Register(agent.ToolDef{
		Name:        "show_song",
		Description: "Display and start the letter song.",
		Parameters:  emptySchema,
	}, func(json.RawMessage) (string, error) {
		c.ShowSong()
		return "", nil
	})

	reg.Register(agent.ToolDef{
		Name:        "show_game_selection",
		Description: "Display the mini game picker.",
		Parameters:  emptySchema,
	}, func(json.RawMessage) (string, error) {
		c.ShowGameSelection()
		return "", nil
	})

	reg.Register(agent.ToolDef{
		Name:        "clear_visuals",
		Description: "Remove everything from the screen.",
		Parameters:  emptySchema,
	}, func(json.RawMessage) (string, error) {
		c.ClearVisuals()
		return "", nil
	})

	reg.Register(agent.ToolDef{
		Name:        "set_letter",
		Description: "Switch the lesson to another letter of the English alphabet.",
		Parameters:  objectSchema(`{"letter":{"type":"string","description":"A single English letter"}}`, "letter"),
	}, func(args json.RawMessage) (string, error) {
		var p struct {
			Letter string `json:"letter" validate:"required,len=1,alpha"`
		}
		if err := agent.BindParams(args, &p); err != nil {
			return "", err
		}
		if err := c.SetLetter(p.Letter); err != nil {
			return "", err
		}
		return fmt.Sprintf(`{"letter":%q}`, c.Letter()), nil
	})

	reg.Register(agent.ToolDef{
		Name:        "update_repetition_count",
		Description: "Set the drill progress stars for a letter, from 0 to 5.",
		Parameters:  objectSchema(`{"letter":{"type":"string","description":"A single English letter"},"count":{"type":"integer","minimum":0,"maximum":5}}`, "letter", "count"),
	}, func(args json.RawMessage) (string, error) {
		var p struct {
			Letter string `json:"letter" validate:"required,len=1,alpha"`
			Count  int    `json:"count" validate:"min=0,max=5"`
		}
		if err := agent.BindParams(args, &p); err != nil {
			return "", err
		}
		n := c.SetRepetitionCount(letters.Normalize(p.Letter), p.Count)
		return fmt.Sprintf(`{"count":%d}`, n), nil
	})

	reg.Register(agent.ToolDef{
		Name:        "reset_repetition_count",
		Description: "Reset the drill progress stars for a letter to zero.",
		Parameters:  objectSchema(`{"letter":{"type":"string","description":"A single English letter"}}`, "letter"),
	}, func(args json.RawMessage) (string, error) {
		var p struct {
			Letter string `json:"letter" validate:"required,len=1,alpha"`
		}
		if err := agent.BindParams(args, &p); err != nil {
			return "", err
		}
		c.ResetRepetitionCount(letters.Normalize(p.Letter))
		return "", nil
	})

	reg.Register(agent.ToolDef{
		Name:        "play_letter_recording",
		Description: "Play the native recording of the letter sound. Stay quiet while it plays.",
		Parameters:  emptySchema,
	}, func(json.RawMessage) (string, error) {
		url := c.PlayLetterRecording()
		if url == "" {
			return `{"played":false}`, nil
		}
		return fmt.Sprintf(`{"played":true,"url":%q}`, url), nil
	})

	reg.Register(agent.ToolDef{
		Name:        "stop_letter_recording",
		Description: "Stop the letter sound recording.",
		Parameters:  emptySchema,
	}, func(json.RawMessage) (string, error) {
		c.StopLetterRecording()
		return "", nil
	})

	reg.Register(agent.ToolDef{
		Name:        "wait_for_student_response",
		Description: "Pause and listen for the student. Returns the transcript, empty if nothing was heard.",
		Parameters:  objectSchema(`{"timeoutMs":{"type":"integer","minimum":1000,"maximum":60000}}`),
	}, func(args json.RawMessage) (string, error) {
		var p struct {
			TimeoutMs int `json:"timeoutMs" validate:"omitempty,min=1000,max=60000"`
		}
		if err := agent.BindParams(args, &p); err != nil {
			return "", err
		}
		timeout := time.Duration(p.TimeoutMs) * time.Millisecond
		transcript := c.speaker.AwaitUserSpeech(context.Background(), timeout)
		out, err := json.Marshal(map[string]string{"transcript": transcript})
		if err != nil {
			return "", err
		}
		return string(out), nil
	})
}
