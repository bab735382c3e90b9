// Package mock provides a deterministic oracle backend for tests: it always
// returns a gate-passing script built from the topic, or a configured error.
package mock

import (
	"context"
	"fmt"

	"github.com/shortform/scenecraft/internal/model"
)

// Backend is a scriptable test double for oracle.Backend.
type Backend struct {
	NameValue string
	Err       error
	Script    *model.Script
	Calls     int
}

// New returns a Backend that always succeeds with a hard-coded,
// gate-passing script unless Err or Script is overridden by the caller.
func New(name string) *Backend {
	return &Backend{NameValue: name}
}

func (b *Backend) Name() string {
	if b.NameValue == "" {
		return "mock-oracle"
	}
	return b.NameValue
}

func (b *Backend) GenerateScript(_ context.Context, topic string, _ int, _ model.Tone) (*model.Script, error) {
	b.Calls++
	if b.Err != nil {
		return nil, b.Err
	}
	if b.Script != nil {
		return b.Script, nil
	}

	hook := fmt.Sprintf("Most people think %s is boring, but it isn't", topic)
	ending := "that's the whole story"
	return &model.Script{
		Hook: hook,
		Scenes: []model.ScriptScene{
			{Index: 0, Text: hook, Keywords: []string{topic, "question"}},
			{Index: 1, Text: fmt.Sprintf("Here's the real story behind %s.", topic), Keywords: []string{topic, "detail"}},
			{Index: 2, Text: ending, Keywords: []string{topic, "outro"}},
		},
		Ending: ending,
	}, nil
}
