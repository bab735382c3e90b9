package tts

import (
	"context"
	"log/slog"
	"time"
)

// Provider synthesizes speech audio for a scene's text, writing the result
// to outPath. Implementations that cannot reach a backend return an error;
// they never fall back silently — that decision belongs to [Cascade].
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text string, outPath string) error
}

// Cascade tries each configured Provider in order and falls back to a
// silent WAV of the given duration if every provider fails. This mirrors
// the oracle adapter's primary/secondary failover shape, but the terminal
// fallback here is always available — there is no FATAL_ORACLE equivalent
// for audio, since a silent track still lets the rest of the pipeline run.
type Cascade struct {
	providers []Provider
	log       *slog.Logger
}

// NewCascade builds a Cascade trying providers in the given order.
func NewCascade(log *slog.Logger, providers ...Provider) *Cascade {
	if log == nil {
		log = slog.Default()
	}
	return &Cascade{providers: providers, log: log}
}

// Synthesize tries each provider in turn; if all fail (or none are
// configured) it writes a silent WAV of duration instead. The returned
// synthetic flag (which sceneproc stores in AudioResult.Synthetic) tells the
// caller which path was taken.
func (c *Cascade) Synthesize(ctx context.Context, text, outPath string, duration time.Duration) (synthetic bool, err error) {
	for _, p := range c.providers {
		if err := p.Synthesize(ctx, text, outPath); err != nil {
			c.log.Warn("tts provider failed, trying next", "provider", p.Name(), "error", err)
			continue
		}
		return false, nil
	}

	if err := WriteSilentWAV(outPath, duration); err != nil {
		return true, err
	}
	return true, nil
}
