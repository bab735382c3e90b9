// Package visual builds the contiguous sequence of stock-footage clips
// covering a scene's full duration, with injectable randomness so clip
// durations and transforms are reproducible under test.
package visual

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/shortform/scenecraft/internal/assetcache"
	"github.com/shortform/scenecraft/internal/model"
	"github.com/shortform/scenecraft/internal/stockprovider"
)

// ErrExhausted is returned when no fallback layer (L1-L4) can produce an
// asset and reuse is not permitted.
var ErrExhausted = errors.New("visual: no asset available and reuse not allowed")

const (
	minClipFloor       = 800 * time.Millisecond
	maxClipCeil        = 3000 * time.Millisecond
	assumedClipCoverage = 3000 * time.Millisecond // used to estimate whether reuse is necessary
)

// Builder constructs visual timelines. RNG defaults to a time-seeded
// generator; tests inject a fixed-seed one for reproducibility.
type Builder struct {
	Cache    *assetcache.Cache
	Provider stockprovider.Provider
	RNG      *rand.Rand
}

// NewBuilder returns a Builder with a time-seeded RNG.
func NewBuilder(cache *assetcache.Cache, provider stockprovider.Provider) *Builder {
	return &Builder{
		Cache:    cache,
		Provider: provider,
		RNG:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Build selects clips covering [0, duration) for the given ordered keyword
// list, cycling through keywords as successive clips are chosen.
func (b *Builder) Build(ctx context.Context, keywords []string, duration time.Duration) ([]model.VisualClip, error) {
	if len(keywords) == 0 {
		keywords = []string{""}
	}

	if _, err := stockprovider.Prefetch(ctx, b.Provider, keywords); err != nil {
		return nil, fmt.Errorf("visual: prefetch: %w", err)
	}
	for _, kw := range keywords {
		if _, ok := b.Cache.Get(kw); !ok {
			assets, err := b.Provider.Search(ctx, kw)
			if err != nil {
				return nil, fmt.Errorf("visual: search %q: %w", kw, err)
			}
			b.Cache.Put(kw, assets)
		}
	}

	totalUnique := b.Cache.TotalUnique()
	allowReuse := time.Duration(totalUnique)*assumedClipCoverage < duration
	minClipMs := clampDuration(
		time.Duration(math.Ceil(float64(duration)/float64(max(1, totalUnique)))),
		minClipFloor, maxClipCeil,
	)

	var clips []model.VisualClip
	var cursor time.Duration
	keywordIdx := 0
	var previousClipID string

	for cursor < duration {
		remaining := duration - cursor
		clipDuration := randomDuration(b.RNG, minClipMs, maxClipCeil)

		if clipDuration > remaining {
			clipDuration = remaining
		} else if leftover := remaining - clipDuration; leftover > 0 && leftover < 800*time.Millisecond {
			if remaining <= maxClipCeil {
				clipDuration = remaining
			} else {
				clipDuration = remaining - 800*time.Millisecond
			}
		}

		keyword := keywords[keywordIdx%len(keywords)]
		keywordIdx++

		asset, reused, err := b.selectAsset(keyword, previousClipID, allowReuse)
		if err != nil {
			return nil, err
		}

		if err := b.Provider.Ensure(ctx, &asset); err != nil {
			return nil, fmt.Errorf("visual: ensure asset %s: %w", asset.ID, err)
		}
		b.Cache.MarkUsed(asset.ID)

		clips = append(clips, model.VisualClip{
			ID:      asset.ID,
			Source:  b.Provider.Name(),
			Path:    asset.LocalPath,
			Keyword: keyword,
			Reused:  reused,
			Start:   cursor,
			End:     cursor + clipDuration,
		})

		previousClipID = asset.ID
		cursor += clipDuration
	}

	return clips, nil
}

// selectAsset runs the four fallback layers in order.
func (b *Builder) selectAsset(keyword, previousClipID string, allowReuse bool) (stockprovider.Asset, bool, error) {
	// L1: exact keyword cache, prefer unused.
	if unused := b.Cache.UnusedFor(keyword); len(unused) > 0 {
		return unused[0], false, nil
	}

	// L2: generic broad fallback list from the provider itself.
	if assets, ok := b.Cache.Get(""); ok {
		for _, a := range assets {
			if !b.Cache.IsUsed(a.ID) {
				return a, false, nil
			}
		}
	}

	// L3: nuclear — scan everything cached for any unused asset.
	if asset, ok := b.Cache.AnyUnused(); ok {
		return asset, false, nil
	}

	// L4: reuse, if permitted.
	if allowReuse {
		if asset, ok := b.Cache.Any(); ok && asset.ID != previousClipID {
			return asset, true, nil
		}
	}

	return stockprovider.Asset{}, false, ErrExhausted
}

// Transform assigns the zoom/pan visual treatment for a clip: zoom is 1.0
// with 50% probability, else uniformly one of {1.05, 1.10}; pan is "none"
// with 50% probability, else uniformly one of the remaining directions.
func (b *Builder) Transform() (zoom float64, pan string) {
	if b.RNG.Float64() < 0.5 {
		zoom = 1.0
	} else {
		zooms := []float64{1.05, 1.10}
		zoom = zooms[b.RNG.Intn(len(zooms))]
	}

	if b.RNG.Float64() < 0.5 {
		pan = model.Pans[0]
	} else {
		pan = model.Pans[1+b.RNG.Intn(len(model.Pans)-1)]
	}
	return zoom, pan
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

func randomDuration(rng *rand.Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	span := int64(hi - lo)
	return lo + time.Duration(rng.Int63n(span+1))
}
