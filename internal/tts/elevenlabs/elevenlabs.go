// Package elevenlabs implements the premium TTS backend using ElevenLabs'
// streaming WebSocket API, adapted to write a complete audio file to disk
// rather than forward PCM frames to a live mixer.
package elevenlabs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/coder/websocket"
)

const defaultModel = "eleven_monolingual_v1"

// Option configures a Provider.
type Option func(*Provider)

// WithModel overrides the default synthesis model.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithVoiceID overrides the default voice.
func WithVoiceID(voiceID string) Option {
	return func(p *Provider) { p.voiceID = voiceID }
}

// Provider is the premium TTS backend: it requires an ELEVENLABS_API_KEY and
// is tried first in the [tts.Cascade].
type Provider struct {
	apiKey  string
	voiceID string
	model   string
	client  *http.Client
}

// New validates apiKey is non-empty and returns a ready Provider.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("elevenlabs: API key is required")
	}
	p := &Provider{
		apiKey:  apiKey,
		voiceID: "21m00Tcm4TlvDq8ikWAM",
		model:   defaultModel,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Provider) Name() string { return "elevenlabs" }

type textMessage struct {
	Text          string         `json:"text"`
	VoiceSettings *voiceSettings `json:"voice_settings,omitempty"`
	Flush         bool           `json:"flush,omitempty"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type audioResponse struct {
	Audio   string `json:"audio"`
	IsFinal bool   `json:"isFinal"`
	Error   string `json:"error"`
}

// Synthesize streams text through the websocket endpoint and writes the
// concatenated, base64-decoded audio chunks to outPath.
func (p *Provider) Synthesize(ctx context.Context, text string, outPath string) error {
	url := fmt.Sprintf(
		"wss://api.elevenlabs.io/v1/text-to-speech/%s/stream-input?model_id=%s",
		p.voiceID, p.model,
	)

	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"xi-api-key": []string{p.apiKey}},
	})
	if err != nil {
		return fmt.Errorf("elevenlabs: dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	init := textMessage{
		Text:          " ",
		VoiceSettings: &voiceSettings{Stability: 0.5, SimilarityBoost: 0.75},
	}
	if err := writeJSON(ctx, conn, init); err != nil {
		return err
	}
	if err := writeJSON(ctx, conn, textMessage{Text: text, Flush: true}); err != nil {
		return err
	}
	if err := writeJSON(ctx, conn, textMessage{Text: ""}); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("elevenlabs: create output file: %w", err)
	}
	defer f.Close()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("elevenlabs: read: %w", err)
		}

		var resp audioResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return fmt.Errorf("elevenlabs: decode response: %w", err)
		}
		if resp.Error != "" {
			return fmt.Errorf("elevenlabs: %s", resp.Error)
		}
		if resp.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(resp.Audio)
			if err != nil {
				return fmt.Errorf("elevenlabs: decode audio chunk: %w", err)
			}
			if _, err := f.Write(chunk); err != nil {
				return err
			}
		}
		if resp.IsFinal {
			return nil
		}
	}
}

func writeJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("elevenlabs: encode message: %w", err)
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
