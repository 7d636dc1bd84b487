// Package mock provides a test double for the stt.Provider interface.
//
// Use Provider to feed a controlled Transcript to the caller and inspect the
// audio and options that were submitted.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/Aakash-star320/mimevoice/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Provider.Transcribe.
type TranscribeCall struct {
	// Audio is a copy of the bytes read from the submitted reader.
	Audio []byte

	// Opts is the TranscribeOptions passed to Transcribe.
	Opts stt.TranscribeOptions
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// Transcript is returned by Transcribe when TranscribeErr is nil. If nil,
	// an empty Transcript is returned.
	Transcript *stt.Transcript

	// TranscribeErr, if non-nil, is returned as the error from Transcribe.
	TranscribeErr error

	// TranscribeCalls records every call to Transcribe.
	TranscribeCalls []TranscribeCall
}

// Ensure Provider implements stt.Provider at compile time.
var _ stt.Provider = (*Provider)(nil)

// Transcribe records the call, draining audio, and returns Transcript or
// TranscribeErr.
func (p *Provider) Transcribe(_ context.Context, audio io.Reader, opts stt.TranscribeOptions) (*stt.Transcript, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.TranscribeCalls = append(p.TranscribeCalls, TranscribeCall{Audio: data, Opts: opts})

	if p.TranscribeErr != nil {
		return nil, p.TranscribeErr
	}
	if p.Transcript != nil {
		t := *p.Transcript
		return &t, nil
	}
	return &stt.Transcript{}, nil
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TranscribeCalls = nil
}
