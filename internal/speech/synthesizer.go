// Package speech is the offline voice path: text to speech and speech
// to text through Deepgram. The lesson normally speaks through the
// realtime agent; these clients cover browsers that cannot hold a
// realtime session and the letter recording workflow.
package speech

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/websocket/interfaces"
	clientinterfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces/v1"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/speak"
)

// Synthesizer turns short Arabic and English phrases into linear16 PCM.
type Synthesizer struct {
	apiKey     string
	model      string
	sampleRate int
	encoding   string
}

func NewSynthesizer(apiKey, model string) *Synthesizer {
	if model == "" {
		model = "aura-2-thalia-en"
	}
	return &Synthesizer{apiKey: apiKey, model: model, sampleRate: 24000, encoding: "linear16"}
}

// SampleRate reports the PCM rate of the synthesized audio.
func (s *Synthesizer) SampleRate() int { return s.sampleRate }

// Synthesize speaks text and returns the whole PCM clip. The stream is
// considered complete after a short idle window with no new audio, with
// a hard deadline so a stalled socket cannot hang the caller.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("speech: deepgram api key missing")
	}
	if text == "" {
		return nil, fmt.Errorf("speech: empty text")
	}

	options := &clientinterfaces.WSSpeakOptions{
		Model:      s.model,
		Encoding:   s.encoding,
		SampleRate: s.sampleRate,
	}

	var (
		mu           sync.Mutex
		buf          bytes.Buffer
		lastRecvUnix int64
		seenAudio    int32
	)
	cb := &audioSink{write: func(data []byte) error {
		if len(data) == 0 {
			return nil
		}
		atomic.StoreInt64(&lastRecvUnix, time.Now().UnixNano())
		atomic.StoreInt32(&seenAudio, 1)
		mu.Lock()
		buf.Write(data)
		mu.Unlock()
		return nil
	}}
	collect := func() []byte {
		mu.Lock()
		defer mu.Unlock()
		out := make([]byte, buf.Len())
		copy(out, buf.Bytes())
		return out
	}

	dg, err := speak.NewWSUsingCallback(ctx, s.apiKey, &clientinterfaces.ClientOptions{}, options, cb)
	if err != nil {
		return nil, fmt.Errorf("speech: create ws client: %w", err)
	}
	defer dg.Stop()

	if ok := dg.Connect(); !ok {
		return nil, fmt.Errorf("speech: deepgram connect failed")
	}
	if err := dg.SpeakWithText(text); err != nil {
		return nil, fmt.Errorf("speech: speak text: %w", err)
	}
	if err := dg.Flush(); err != nil {
		return nil, fmt.Errorf("speech: flush: %w", err)
	}

	idleWindow := 400 * time.Millisecond
	deadline := time.Now().Add(12 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if atomic.LoadInt32(&seenAudio) == 1 {
				last := time.Unix(0, atomic.LoadInt64(&lastRecvUnix))
				if time.Since(last) > idleWindow {
					return collect(), nil
				}
			}
			if time.Now().After(deadline) {
				out := collect()
				if len(out) == 0 {
					return nil, fmt.Errorf("speech: no audio before deadline")
				}
				return out, nil
			}
		}
	}
}

// audioSink implements the speak socket callback. Only the audio frames
// matter to the synthesizer; errors are logged and the remaining control
// events acknowledged and dropped.
type audioSink struct {
	write func([]byte) error
}

func (a *audioSink) Binary(chunk []byte) error {
	if a.write == nil {
		return nil
	}
	return a.write(chunk)
}

func (a *audioSink) Error(er *msginterfaces.ErrorResponse) error {
	if er != nil {
		log.Printf("speech: deepgram speak error %s: %s", er.ErrCode, er.ErrMsg)
	}
	return nil
}

func (a *audioSink) Open(*msginterfaces.OpenResponse) error         { return nil }
func (a *audioSink) Close(*msginterfaces.CloseResponse) error       { return nil }
func (a *audioSink) Metadata(*msginterfaces.MetadataResponse) error { return nil }
func (a *audioSink) Flush(*msginterfaces.FlushedResponse) error     { return nil }
func (a *audioSink) Clear(*msginterfaces.ClearedResponse) error     { return nil }
func (a *audioSink) Warning(*msginterfaces.WarningResponse) error   { return nil }
func (a *audioSink) UnhandledEvent([]byte) error                    { return nil }
