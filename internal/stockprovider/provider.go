// Package stockprovider defines the stock-footage search abstraction used
// by the visual timeline builder, plus its concurrent keyword pre-fetch
// helper.
package stockprovider

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Asset is one searchable stock-footage result.
type Asset struct {
	ID        string
	URL       string // remote URL for a real provider; local path for mocks
	LocalPath string // populated once Ensure has run
	Keyword   string
}

// Provider searches stock footage by keyword and resolves a local file for
// a chosen asset.
type Provider interface {
	Name() string
	// Search returns assets matching keyword, or the provider's generic
	// "fallbacks" list if keyword is empty.
	Search(ctx context.Context, keyword string) ([]Asset, error)
	// Ensure guarantees asset.LocalPath is populated and the file exists on
	// disk, downloading real URLs or copying a placeholder for mocks.
	Ensure(ctx context.Context, asset *Asset) error
}

// Prefetch searches every distinct keyword concurrently and returns a map
// from lower-cased keyword to its results. This generalizes the teacher's
// three-goroutine context-assembly fan-out to an arbitrary keyword count.
func Prefetch(ctx context.Context, p Provider, keywords []string) (map[string][]Asset, error) {
	distinct := distinctLower(keywords)
	results := make(map[string][]Asset, len(distinct))
	var mu sync.Mutex

	eg, ctx := errgroup.WithContext(ctx)
	for _, kw := range distinct {
		kw := kw
		eg.Go(func() error {
			assets, err := p.Search(ctx, kw)
			if err != nil {
				return err
			}
			mu.Lock()
			results[kw] = assets
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func distinctLower(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	var out []string
	for _, kw := range keywords {
		lower := strings.ToLower(kw)
		if !seen[lower] {
			seen[lower] = true
			out = append(out, lower)
		}
	}
	return out
}
