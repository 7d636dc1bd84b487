// Package stt defines the Provider interface for batch speech-to-text
// backends.
//
// An STT provider wraps a transcription service (e.g., Deepgram, OpenAI, or a
// local Whisper server) behind a uniform batch interface: the caller submits a
// complete audio recording and receives a single Transcript back. The
// transcript text is the raw provider output; normalisation and command
// resolution happen downstream.
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"io"
)

// Transcript is the result of transcribing one audio recording.
type Transcript struct {
	// Text is the transcribed text as returned by the provider, without any
	// normalisation applied.
	Text string `json:"text"`

	// Confidence is the provider's confidence score in [0, 1], or 0 when the
	// provider does not report one.
	Confidence float64 `json:"confidence,omitempty"`

	// Language is the BCP-47 language tag the provider detected or was told
	// to use. Empty when unknown.
	Language string `json:"language,omitempty"`
}

// TranscribeOptions carries per-request hints for a transcription call.
type TranscribeOptions struct {
	// Filename is the original name of the uploaded audio file. Providers use
	// the extension to infer the container format. Defaults to "audio.wav".
	Filename string

	// Language is the BCP-47 language tag for recognition (e.g., "en", "de").
	// An empty string lets the provider auto-detect, if supported.
	Language string
}

// Provider is the abstraction over any batch STT backend.
type Provider interface {
	// Transcribe submits the complete audio recording read from audio and
	// returns its transcript. The reader is consumed fully; the caller
	// retains ownership and closes it if needed.
	Transcribe(ctx context.Context, audio io.Reader, opts TranscribeOptions) (*Transcript, error)
}
