// Package mock provides a deterministic, file-system-only stock provider
// used for tests and for keywords with no real backend configured.
package mock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shortform/scenecraft/internal/stockprovider"
)

// placeholderSize is how large the copied placeholder clip file is. Its
// content is irrelevant — only a real renderer cares about real media
// bytes, and tests that exercise the render stage use its own mock.
const placeholderSize = 1024

// Provider returns a small, fixed pool of placeholder assets regardless of
// keyword, simulating an always-available stock library.
type Provider struct {
	cacheRoot string
	pool      int
}

// New returns a Provider with pool distinct placeholder assets available
// for any keyword.
func New(cacheRoot string, pool int) *Provider {
	if pool <= 0 {
		pool = 10
	}
	return &Provider{cacheRoot: cacheRoot, pool: pool}
}

var _ stockprovider.Provider = (*Provider)(nil)

func (p *Provider) Name() string { return "mock" }

// Search returns pool assets for every keyword, with IDs built from the
// keyword and an index, so tests can rely on deterministic asset
// availability regardless of what the scene actually asked for.
func (p *Provider) Search(_ context.Context, keyword string) ([]stockprovider.Asset, error) {
	assets := make([]stockprovider.Asset, p.pool)
	for i := range assets {
		assets[i] = stockprovider.Asset{
			ID:      fmt.Sprintf("mock-%s-%d", keyword, i),
			URL:     "",
			Keyword: keyword,
		}
	}
	return assets, nil
}

// Ensure writes (or reuses) a placeholder file in cacheRoot standing in for
// asset's real media.
func (p *Provider) Ensure(_ context.Context, asset *stockprovider.Asset) error {
	dest := filepath.Join(p.cacheRoot, sanitize(asset.ID)+".mp4")
	if _, err := os.Stat(dest); err == nil {
		asset.LocalPath = dest
		return nil
	}
	if err := os.MkdirAll(p.cacheRoot, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(dest, make([]byte, placeholderSize), 0o644); err != nil {
		return fmt.Errorf("mock stockprovider: write placeholder: %w", err)
	}
	asset.LocalPath = dest
	return nil
}

func sanitize(id string) string {
	b := []byte(id)
	for i, c := range b {
		if c == '/' || c == '\\' || c == ' ' {
			b[i] = '_'
		}
	}
	return string(b)
}
