package speech

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func listenServer(t *testing.T, status int, body string, gotAuth, gotCT *string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotAuth = r.Header.Get("Authorization")
		*gotCT = r.Header.Get("Content-Type")
		if b, _ := io.ReadAll(r.Body); len(b) == 0 {
			t.Error("empty request body")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestTranscribeReturnsTopAlternative(t *testing.T) {
	var auth, ct string
	srv := listenServer(t, http.StatusOK, `{
		"results":{"channels":[{"alternatives":[
			{"transcript":"نعم جاهز","confidence":0.97},
			{"transcript":"garbage","confidence":0.1}
		]}]}
	}`, &auth, &ct)
	defer srv.Close()

	tr := NewTranscriber("dg_key")
	tr.BaseURL = srv.URL
	got, err := tr.Transcribe(context.Background(), []byte("audio"), "audio/webm")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "نعم جاهز" {
		t.Fatalf("transcript = %q", got)
	}
	if auth != "Token dg_key" {
		t.Errorf("Authorization = %q", auth)
	}
	if ct != "audio/webm" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestTranscribeEmptyResultIsNotAnError(t *testing.T) {
	var auth, ct string
	srv := listenServer(t, http.StatusOK, `{"results":{"channels":[]}}`, &auth, &ct)
	defer srv.Close()

	tr := NewTranscriber("dg_key")
	tr.BaseURL = srv.URL
	got, err := tr.Transcribe(context.Background(), []byte("audio"), "")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "" {
		t.Fatalf("transcript = %q, want empty", got)
	}
	if ct != "audio/wav" {
		t.Errorf("default Content-Type = %q", ct)
	}
}

func TestTranscribeUpstreamError(t *testing.T) {
	var auth, ct string
	srv := listenServer(t, http.StatusBadRequest, `{"err_msg":"bad audio"}`, &auth, &ct)
	defer srv.Close()

	tr := NewTranscriber("dg_key")
	tr.BaseURL = srv.URL
	if _, err := tr.Transcribe(context.Background(), []byte("audio"), ""); err == nil {
		t.Fatal("upstream 400 not surfaced")
	}
}

func TestTranscribeValidatesInput(t *testing.T) {
	tr := NewTranscriber("")
	if _, err := tr.Transcribe(context.Background(), []byte("x"), ""); err == nil {
		t.Fatal("missing key accepted")
	}
	tr = NewTranscriber("k")
	if _, err := tr.Transcribe(context.Background(), nil, ""); err == nil {
		t.Fatal("empty audio accepted")
	}
}
