// Package mock provides a TTS backend for tests and for operating without
// any configured provider key: it always succeeds by writing a short valid
// WAV, standing in for a "SAPI-equivalent fallback" tier.
package mock

import (
	"context"
	"strings"
	"time"

	"github.com/shortform/scenecraft/internal/tts"
)

// Provider implements tts.Provider by writing a silent WAV sized to the
// text's rough expected length, never returning an error.
type Provider struct {
	// MsPerWord approximates speaking rate for the placeholder file length.
	MsPerWord int
}

// New returns a Provider with a reasonable default speaking rate.
func New() *Provider {
	return &Provider{MsPerWord: 300}
}

func (p *Provider) Name() string { return "mock-sapi" }

func (p *Provider) Synthesize(_ context.Context, text string, outPath string) error {
	wordCount := len(strings.Fields(text))
	if wordCount == 0 {
		wordCount = 1
	}
	duration := time.Duration(wordCount*p.MsPerWord) * time.Millisecond
	return tts.WriteSilentWAV(outPath, duration)
}
