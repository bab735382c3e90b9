// Package pexels implements [stockprovider.Provider] against the Pexels
// video search API.
package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/shortform/scenecraft/internal/stockprovider"
)

const searchURL = "https://api.pexels.com/videos/search"

// fallbackKeywords is searched when a scene's own keywords return nothing,
// per the L2 generic-broad-list fallback layer.
var fallbackKeywords = []string{"abstract background", "city timelapse", "nature landscape"}

// Provider is the real remote stock-footage backend. It requires a
// PEXELS_API_KEY and applies a client-side rate limit so a burst of
// concurrent Prefetch calls does not trip the upstream API's own limiter.
type Provider struct {
	apiKey    string
	client    *http.Client
	limiter   *rate.Limiter
	cacheRoot string
}

// New returns a Provider limited to reqsPerSecond requests/second.
func New(apiKey, cacheRoot string, reqsPerSecond float64) *Provider {
	return &Provider{
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 15 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(reqsPerSecond), 1),
		cacheRoot: cacheRoot,
	}
}

var _ stockprovider.Provider = (*Provider)(nil)

func (p *Provider) Name() string { return "pexels" }

type searchResponse struct {
	Videos []video `json:"videos"`
}

type video struct {
	ID        int          `json:"id"`
	VideoFiles []videoFile `json:"video_files"`
}

type videoFile struct {
	Link    string `json:"link"`
	Quality string `json:"quality"`
}

func (p *Provider) Search(ctx context.Context, keyword string) ([]stockprovider.Asset, error) {
	if keyword == "" {
		return p.searchAny(ctx, fallbackKeywords)
	}

	assets, err := p.search(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return p.searchAny(ctx, fallbackKeywords)
	}
	return assets, nil
}

func (p *Provider) searchAny(ctx context.Context, keywords []string) ([]stockprovider.Asset, error) {
	for _, kw := range keywords {
		assets, err := p.search(ctx, kw)
		if err != nil {
			return nil, err
		}
		if len(assets) > 0 {
			return assets, nil
		}
	}
	return nil, nil
}

func (p *Provider) search(ctx context.Context, keyword string) ([]stockprovider.Asset, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("query", keyword)
	q.Set("per_page", "15")
	q.Set("orientation", "portrait")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels: search %q: %w", keyword, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pexels: search %q: status %d", keyword, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("pexels: decode response: %w", err)
	}

	assets := make([]stockprovider.Asset, 0, len(parsed.Videos))
	for _, v := range parsed.Videos {
		link := bestQualityLink(v.VideoFiles)
		if link == "" {
			continue
		}
		assets = append(assets, stockprovider.Asset{
			ID:      fmt.Sprintf("pexels-%d", v.ID),
			URL:     link,
			Keyword: keyword,
		})
	}
	return assets, nil
}

func bestQualityLink(files []videoFile) string {
	for _, f := range files {
		if f.Quality == "hd" {
			return f.Link
		}
	}
	if len(files) > 0 {
		return files[0].Link
	}
	return ""
}

// Ensure downloads asset.URL into the cache root if it is not already
// present locally.
func (p *Provider) Ensure(ctx context.Context, asset *stockprovider.Asset) error {
	dest := filepath.Join(p.cacheRoot, asset.ID+".mp4")
	if _, err := os.Stat(dest); err == nil {
		asset.LocalPath = dest
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pexels: download %s: %w", asset.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pexels: download %s: status %d", asset.ID, resp.StatusCode)
	}

	if err := os.MkdirAll(p.cacheRoot, 0o755); err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return err
	}

	asset.LocalPath = dest
	return nil
}
