// Package groq implements the secondary oracle backend against Groq's
// OpenAI-compatible chat completions API.
package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/shortform/scenecraft/internal/model"
	"github.com/shortform/scenecraft/internal/oracle"
)

const (
	baseURL      = "https://api.groq.com/openai/v1"
	defaultModel = "llama-3.1-8b-instant"
)

const systemPrompt = `You write short-form video scripts. Respond with strict JSON matching
{"hook": string, "hook_keywords": [string, ...], "scenes": [string, ...],
"scene_keywords": [[string, ...], ...], "ending": string, "ending_keywords":
[string, ...]}. The hook must be one sentence of at most 12 words using a
curiosity-gap structure. The ending must be at most 8 words. Every keywords
list has 2-3 concrete, lower-case nouns or actions describing what the scene
should show on screen. Do not include any text outside the JSON object.`

// Backend implements oracle.Backend against Groq. It has no key rotation —
// the spec only names a rotation pool for the primary Gemini backend — so
// it does not implement oracle.RateLimited.
type Backend struct {
	client oai.Client
	model  string
}

// New validates apiKey is non-empty and returns a ready Backend.
func New(apiKey string, model string) (*Backend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("groq: API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client := oai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &Backend{client: client, model: model}, nil
}

func (b *Backend) Name() string { return "groq" }

// ClassifyError mirrors the gemini backend's taxonomy mapping so the
// adapter applies the same retry policy regardless of which backend is
// currently active.
func (b *Backend) ClassifyError(err error) oracle.ErrorClass {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") {
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
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	userPrompt := fmt.Sprintf("Topic: %s\nTarget duration: %d seconds\nTone: %s\n", topic, durationSeconds, tone)

	resp, err := b.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: b.model,
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("groq: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("groq: empty choices in response")
	}

	script, err := parseScript(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oracle.ErrParse, err)
	}
	return script, nil
}

type scriptJSON struct {
	Hook           string     `json:"hook"`
	HookKeywords   []string   `json:"hook_keywords"`
	Scenes         []string   `json:"scenes"`
	SceneKeywords  [][]string `json:"scene_keywords"`
	Ending         string     `json:"ending"`
	EndingKeywords []string   `json:"ending_keywords"`
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
