package realtime

import "encoding/json"

// Client to server events.

type sessionUpdateEvent struct {
	Type    string       `json:"type"`
	Session sessionPatch `json:"session"`
}

type sessionPatch struct {
	Instructions            string             `json:"instructions,omitempty"`
	Tools                   []sessionTool      `json:"tools,omitempty"`
	TurnDetection           *turnDetection     `json:"turn_detection,omitempty"`
	InputAudioTranscription *transcriptionSpec `json:"input_audio_transcription,omitempty"`
}

type sessionTool struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type turnDetection struct {
	Type              string `json:"type"`
	Eagerness         string `json:"eagerness,omitempty"`
	CreateResponse    bool   `json:"create_response"`
	InterruptResponse bool   `json:"interrupt_response"`
}

type transcriptionSpec struct {
	Model string `json:"model"`
}

type itemCreateEvent struct {
	Type string           `json:"type"`
	Item conversationItem `json:"item"`
}

type conversationItem struct {
	Type    string        `json:"type"`
	Role    string        `json:"role,omitempty"`
	Content []itemContent `json:"content,omitempty"`
	CallID  string        `json:"call_id,omitempty"`
	Output  string        `json:"output,omitempty"`
}

type itemContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type responseCreateEvent struct {
	Type string `json:"type"`
}

type clearAudioEvent struct {
	Type string `json:"type"`
}

// Server to client events. One envelope covers every event type the
// control plane cares about; unused fields stay zero.

type serverEnvelope struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	Transcript string          `json:"transcript,omitempty"`
	CallID     string          `json:"call_id,omitempty"`
	Name       string          `json:"name,omitempty"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	Error      serverError     `json:"error,omitempty"`
}

type serverError struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
