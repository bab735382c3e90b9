// Package gemini implements the primary oracle backend against Google's
// Gemini API, with support for rotating across up to five configured keys
// when the adapter reports a 429.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/shortform/scenecraft/internal/model"
	"github.com/shortform/scenecraft/internal/oracle"
)

const systemPrompt = `You write short-form video scripts. Respond with strict JSON matching
{"hook": string, "hook_keywords": [string, ...], "scenes": [string, ...],
"scene_keywords": [[string, ...], ...], "ending": string, "ending_keywords":
[string, ...]}. The hook must be one sentence of at most 12 words using a
curiosity-gap structure. The ending must be at most 8 words. Every keywords
list has 2-3 concrete, lower-case nouns or actions describing what the scene
should show on screen. Do not include any text outside the JSON object.`

// Backend wraps the genai client with key rotation. keys[0] is tried first;
// a 429 from the adapter triggers RotateKey, which advances idx and
// reconstructs the client against the next key.
type Backend struct {
	mu      sync.Mutex
	keys    []string
	idx     int
	model   string
	client  *genai.Client
}

// New returns a Backend using keys in order; at least one non-empty key is
// required.
func New(ctx context.Context, model string, keys ...string) (*Backend, error) {
	var nonEmpty []string
	for _, k := range keys {
		if k != "" {
			nonEmpty = append(nonEmpty, k)
		}
	}
	if len(nonEmpty) == 0 {
		return nil, fmt.Errorf("gemini: at least one API key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	b := &Backend{keys: nonEmpty, model: model}
	client, err := newClient(ctx, nonEmpty[0])
	if err != nil {
		return nil, err
	}
	b.client = client
	return b, nil
}

func newClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
}

func (b *Backend) Name() string { return "gemini" }

// RotateKey advances to the next configured key, wrapping to the first
// after the last. It returns false only when a single key is configured or
// the client for the next key cannot be built; it does not track which keys
// were already tried, so the adapter's maxRotations bound is what stops
// rotation and lets it fall through to backoff or the secondary backend.
func (b *Backend) RotateKey() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.keys) <= 1 {
		return false
	}
	b.idx = (b.idx + 1) % len(b.keys)
	client, err := newClient(context.Background(), b.keys[b.idx])
	if err != nil {
		return false
	}
	b.client = client
	return true
}

// ClassifyError maps Gemini's HTTP-status-bearing errors to the adapter's
// retry taxonomy: any 4xx other than 429 is fatal, 429 triggers rotation,
// everything else (5xx, network) is a plain transient retry.
func (b *Backend) ClassifyError(err error) oracle.ErrorClass {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource_exhausted") {
		return oracle.ErrorClassRateLimited
	}
	for _, code := range []string{"400", "401", "403", "404"} {
		if strings.Contains(msg, code) {
			return oracle.ErrorClassFatal
		}
	}
	return oracle.ErrorClassTransient
}

func (b *Backend) GenerateScript(ctx context.Context, topic string, durationSeconds int, tone model.Tone) (*model.Script, error) {
	b.mu.Lock()
	client := b.client
	modelName := b.model
	b.mu.Unlock()

	prompt := fmt.Sprintf(
		"Topic: %s\nTarget duration: %d seconds\nTone: %s\n",
		topic, durationSeconds, tone,
	)

	resp, err := client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: generate: %w", err)
	}

	text := resp.Text()
	script, err := parseScript(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oracle.ErrParse, err)
	}
	return script, nil
}

type scriptJSON struct {
	Hook          string     `json:"hook"`
	HookKeywords  []string   `json:"hook_keywords"`
	Scenes        []string   `json:"scenes"`
	SceneKeywords [][]string `json:"scene_keywords"`
	Ending        string     `json:"ending"`
	EndingKeywords []string  `json:"ending_keywords"`
}

func parseScript(text string) (*model.Script, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var parsed scriptJSON
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil, err
	}
	if parsed.Hook == "" || parsed.Ending == "" || len(parsed.Scenes) == 0 {
		return nil, fmt.Errorf("response missing hook, ending, or scenes")
	}

	all := append([]string{parsed.Hook}, parsed.Scenes...)
	all = append(all, parsed.Ending)

	allKeywords := append([][]string{parsed.HookKeywords}, parsed.SceneKeywords...)
	allKeywords = append(allKeywords, parsed.EndingKeywords)

	scenes := make([]model.ScriptScene, len(all))
	wordCount := 0
	for i, t := range all {
		var kw []string
		if i < len(allKeywords) {
			kw = allKeywords[i]
		}
		scenes[i] = model.ScriptScene{Index: i, Text: t, Keywords: kw}
		wordCount += len(strings.Fields(t))
	}

	return &model.Script{
		Hook:      parsed.Hook,
		Scenes:    scenes,
		Ending:    parsed.Ending,
		WordCount: wordCount,
	}, nil
}
