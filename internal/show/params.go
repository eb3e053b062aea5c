package show

import (
	"encoding/json"
	"fmt"
	"sync"
)

// validator is implemented by every show config.
type validator interface {
	Validate() error
}

// params holds a show's live configuration.
type params[T validator] struct {
	mu sync.RWMutex
	v  T
}

// get returns a snapshot copy.
func (p *params[T]) get() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.v
}

// set validates and replaces the config.
func (p *params[T]) set(v T) error {
	if err := v.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	p.v = v
	p.mu.Unlock()
	return nil
}

// merge decodes data over the current config and applies it if valid.
func (p *params[T]) merge(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.v
	if err := json.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	p.v = next
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

func checkColor(field string, c interface{ Valid() bool }) error {
	if !c.Valid() {
		return invalid("%s out of range", field)
	}
	return nil
}

func checkUnit(field string, v float64) error {
	if v < 0 || v > 1 {
		return invalid("%s must be between 0 and 1", field)
	}
	return nil
}

// maxIntervalSeconds bounds every duration setting.
const maxIntervalSeconds = 3600.0

func checkInterval(field string, v float64) error {
	if !(v > 0 && v <= maxIntervalSeconds) {
		return invalid("%s must be in (0, %g] seconds", field, maxIntervalSeconds)
	}
	return nil
}
