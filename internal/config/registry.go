package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shortform/scenecraft/internal/oracle"
	"github.com/shortform/scenecraft/internal/stockprovider"
	"github.com/shortform/scenecraft/internal/tts"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory
// has been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider kind scenecraft supports. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	oracle map[string]func(ProviderEntry) (oracle.Backend, error)
	tts    map[string]func(ProviderEntry) (tts.Provider, error)
	stock  map[string]func(ProviderEntry) (stockprovider.Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		oracle: make(map[string]func(ProviderEntry) (oracle.Backend, error)),
		tts:    make(map[string]func(ProviderEntry) (tts.Provider, error)),
		stock:  make(map[string]func(ProviderEntry) (stockprovider.Provider, error)),
	}
}

// RegisterOracle registers an LLM oracle backend factory under name.
func (r *Registry) RegisterOracle(name string, factory func(ProviderEntry) (oracle.Backend, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.oracle[name] = factory
}

// RegisterTTS registers a TTS provider factory under name.
func (r *Registry) RegisterTTS(name string, factory func(ProviderEntry) (tts.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tts[name] = factory
}

// RegisterStock registers a stock-footage provider factory under name.
func (r *Registry) RegisterStock(name string, factory func(ProviderEntry) (stockprovider.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stock[name] = factory
}

// CreateOracle instantiates an oracle backend using the factory registered
// under entry.Name.
func (r *Registry) CreateOracle(entry ProviderEntry) (oracle.Backend, error) {
	r.mu.RLock()
	factory, ok := r.oracle[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: oracle/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateTTS instantiates a TTS provider using the factory registered under
// entry.Name.
func (r *Registry) CreateTTS(entry ProviderEntry) (tts.Provider, error) {
	r.mu.RLock()
	factory, ok := r.tts[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: tts/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateStock instantiates a stock-footage provider using the factory
// registered under entry.Name.
func (r *Registry) CreateStock(entry ProviderEntry) (stockprovider.Provider, error) {
	r.mu.RLock()
	factory, ok := r.stock[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: stock/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}
