package lightctl

import (
	"time"

	"github.com/nerrad567/luminary-core/internal/color"
)

// SourceEngine marks commands issued by the show engine.
const SourceEngine = "show-engine"

// CommandMessage is the payload published for one colour write.
type CommandMessage struct {
	// ID uniquely identifies the command (UUID).
	ID string `json:"id"`

	// LightID is the target light.
	LightID string `json:"light_id"`

	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Brightness float64 `json:"brightness"`

	// Source identifies the issuer.
	Source string `json:"source"`

	Timestamp time.Time `json:"timestamp"`
}

// Color returns the commanded colour.
func (m CommandMessage) Color() color.HSB {
	return color.HSB{Hue: m.Hue, Saturation: m.Saturation, Brightness: m.Brightness}
}
