package show

import (
	"fmt"
	"sync"
)

// Registry is the ordered catalogue of available shows.
//
// Shows are kept in registration order. Registration never removes or
// deduplicates: if two shows share an id, Get returns the first one.
//
// All methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	shows []Show
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry creates a registry holding the full show catalogue.
// levels feeds the sound-reactive show and may be nil.
func NewDefaultRegistry(levels LevelSource) *Registry {
	r := NewRegistry()
	r.Register(NewSolidColor())
	r.Register(NewAlternatingColors())
	r.Register(NewWaveColor())
	r.Register(NewRainbowWave())
	r.Register(NewColorPulse())
	r.Register(NewGradientFlow())
	r.Register(NewStrobe())
	r.Register(NewTwinkle())
	r.Register(NewFireEffect())
	r.Register(NewOceanWaves())
	r.Register(NewSnake())
	r.Register(NewNeonParty())
	r.Register(NewBassDrop())
	r.Register(NewHauntedSpirits())
	r.Register(NewSoundReactive(levels))
	return r
}

// Register appends s to the catalogue.
func (r *Registry) Register(s Show) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shows = append(r.shows, s)
}

// Get returns the first show registered under id.
func (r *Registry) Get(id string) (Show, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.shows {
		if s.Describe().ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrShowNotFound, id)
}

// List returns catalogue entries in registration order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, len(r.shows))
	for i, s := range r.shows {
		infos[i] = s.Describe()
	}
	return infos
}

// Len returns the number of registered shows.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shows)
}
