package deepgram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Aakash-star320/mimevoice/pkg/provider/stt"
)

const listenBody = `{
  "results": {
    "channels": [
      {
        "alternatives": [
          {"transcript": "go to the old mill", "confidence": 0.97}
        ],
        "detected_language": "en"
      }
    ]
  }
}`

func TestNew_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Fatal("New(\"\") expected error, got nil")
	}
}

func TestTranscribe(t *testing.T) {
	t.Parallel()

	var gotAuth, gotPath, gotModel, gotLanguage string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotModel = r.URL.Query().Get("model")
		gotLanguage = r.URL.Query().Get("language")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(listenBody))
	}))
	defer srv.Close()

	p, err := New("dg-key", WithBaseURL(srv.URL), WithModel("nova-3"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tr, err := p.Transcribe(context.Background(), strings.NewReader("raw-audio"), stt.TranscribeOptions{Language: "en"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if gotAuth != "Token dg-key" {
		t.Errorf("Authorization = %q, want 'Token dg-key'", gotAuth)
	}
	if gotPath != "/v1/listen" {
		t.Errorf("path = %q, want /v1/listen", gotPath)
	}
	if gotModel != "nova-3" || gotLanguage != "en" {
		t.Errorf("query model=%q language=%q, want nova-3 / en", gotModel, gotLanguage)
	}
	if string(gotBody) != "raw-audio" {
		t.Errorf("body = %q, want raw-audio", gotBody)
	}
	if tr.Text != "go to the old mill" {
		t.Errorf("text = %q, want 'go to the old mill'", tr.Text)
	}
	if tr.Confidence != 0.97 {
		t.Errorf("confidence = %v, want 0.97", tr.Confidence)
	}
	if tr.Language != "en" {
		t.Errorf("language = %q, want en", tr.Language)
	}
}

func TestTranscribe_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, err := New("bad-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = p.Transcribe(context.Background(), strings.NewReader("x"), stt.TranscribeOptions{})
	if err == nil {
		t.Fatal("Transcribe expected error for HTTP 401, got nil")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v, want mention of HTTP 401", err)
	}
}

func TestTranscribe_EmptyResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results":{"channels":[]}}`))
	}))
	defer srv.Close()

	p, err := New("dg-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = p.Transcribe(context.Background(), strings.NewReader("x"), stt.TranscribeOptions{})
	if err == nil {
		t.Fatal("Transcribe expected error for empty response, got nil")
	}
	if !strings.Contains(err.Error(), "no transcript") {
		t.Errorf("error = %v, want mention of missing transcript", err)
	}
}
