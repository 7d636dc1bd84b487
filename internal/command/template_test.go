package command

import "testing"

func TestNewSlotSpan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		command    string
		parameter  string
		wantPrefix string
		wantSuffix string
		wantOK     bool
	}{
		{
			name:    "middle slot",
			command: "search for QUERY on the web", parameter: "QUERY",
			wantPrefix: "search for ", wantSuffix: " on the web", wantOK: true,
		},
		{
			name:    "trailing slot",
			command: "open FILE", parameter: "FILE",
			wantPrefix: "open ", wantSuffix: "", wantOK: true,
		},
		{
			name:    "leading slot",
			command: "SONG please", parameter: "SONG",
			wantPrefix: "", wantSuffix: " please", wantOK: true,
		},
		{
			name:    "first occurrence wins",
			command: "play it play it", parameter: "play it",
			wantPrefix: "", wantSuffix: " play it", wantOK: true,
		},
		{
			name:    "case and punctuation insensitive",
			command: "Open the File.txt", parameter: "FILE.TXT",
			wantPrefix: "open the ", wantSuffix: "", wantOK: true,
		},
		{
			name:    "parameter absent",
			command: "go home", parameter: "place",
			wantOK: false,
		},
		{
			name:    "empty parameter",
			command: "go home", parameter: "",
			wantOK: false,
		},
		{
			name:    "parameter normalizes to empty",
			command: "go home", parameter: "?!",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			span, ok := newSlotSpan(tt.command, tt.parameter)
			if ok != tt.wantOK {
				t.Fatalf("newSlotSpan(%q, %q) ok = %v, want %v", tt.command, tt.parameter, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if span.prefix != tt.wantPrefix {
				t.Errorf("prefix = %q, want %q", span.prefix, tt.wantPrefix)
			}
			if span.suffix != tt.wantSuffix {
				t.Errorf("suffix = %q, want %q", span.suffix, tt.wantSuffix)
			}
		})
	}
}

func TestSlotSpan_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		command   string
		parameter string
		utterance string // already normalized
		wantValue string
		wantOK    bool
	}{
		{
			name:    "middle slot",
			command: "search for QUERY on the web", parameter: "QUERY",
			utterance: "search for rust ownership on the web",
			wantValue: "rust ownership", wantOK: true,
		},
		{
			name:    "trailing slot",
			command: "play SONG", parameter: "SONG",
			utterance: "play thriller",
			wantValue: "thriller", wantOK: true,
		},
		{
			// A multi-word example widens the bound correspondingly.
			name:    "trailing slot with multi-word example",
			command: "play SONG TITLE", parameter: "SONG TITLE",
			utterance: "play hey jude",
			wantValue: "hey jude", wantOK: true,
		},
		{
			// An edge slot has no boundary on its open side; it may absorb at
			// most as many words as the parameter example itself.
			name:    "trailing slot rejects extra words",
			command: "open the FILE", parameter: "FILE",
			utterance: "open the report please",
			wantOK: false,
		},
		{
			name:    "leading slot rejects extra words",
			command: "SONG please", parameter: "SONG",
			utterance: "hey jude please",
			wantOK: false,
		},
		{
			name:    "prefix mismatch",
			command: "play SONG now", parameter: "SONG",
			utterance: "start hey jude now",
			wantOK: false,
		},
		{
			name:    "suffix mismatch",
			command: "open the File.txt", parameter: "File.txt",
			utterance: "open a report",
			wantOK: false,
		},
		{
			name:    "overlapping boundaries",
			command: "play SONG now", parameter: "SONG",
			utterance: "play now",
			wantOK: false,
		},
		{
			// Boundaries exactly cover the utterance: the match itself
			// succeeds with an empty value; the resolver rejects it.
			name:    "exact boundary lengths leave empty slot",
			command: "play SONG now", parameter: "SONG",
			utterance: "play  now",
			wantValue: "", wantOK: true,
		},
		{
			name:    "utterance shorter than prefix",
			command: "search for QUERY on the web", parameter: "QUERY",
			utterance: "search",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			span, ok := newSlotSpan(tt.command, tt.parameter)
			if !ok {
				t.Fatalf("newSlotSpan(%q, %q) unexpectedly malformed", tt.command, tt.parameter)
			}
			value, ok := span.match(tt.utterance)
			if ok != tt.wantOK {
				t.Fatalf("match(%q) ok = %v, want %v", tt.utterance, ok, tt.wantOK)
			}
			if ok && value != tt.wantValue {
				t.Errorf("match(%q) = %q, want %q", tt.utterance, value, tt.wantValue)
			}
		})
	}
}
