// ABOUTME: Configuration for the mashup pipeline
// ABOUTME: Bundles scorer and mixer settings with phrase rotation
package mashup

import (
	"github.com/harperreed/automashup-go/pkg/mashability"
	"github.com/harperreed/automashup-go/pkg/mixer"
)

// Config holds every tunable of a pipeline
type Config struct {
	Scoring mashability.Config
	Mixing  mixer.Options

	// RotateBeats rotates the rendered mashup so A's beat n becomes the first sample
	RotateBeats int
}

// DefaultConfig returns default scoring and mixing settings without rotation
func DefaultConfig() Config {
	return Config{
		Scoring: mashability.DefaultConfig(),
		Mixing:  mixer.DefaultOptions(),
	}
}

// Validate checks the nested settings
func (c Config) Validate() error {
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	return c.Mixing.Validate()
}
