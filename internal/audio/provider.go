package audio

import (
	"context"

	"codeberg.org/snonux/kanavox/internal/engine"
)

// Engine is the subset of the synthesis engine API used for speech generation.
// *engine.Client implements it.
type Engine interface {
	// AudioQuery builds a rendering description for text spoken by speaker
	AudioQuery(ctx context.Context, text string, speaker int) (*engine.AudioQuery, error)

	// AudioQueryFromPreset builds a rendering description using a preset
	AudioQueryFromPreset(ctx context.Context, text string, presetID int) (*engine.AudioQuery, error)

	// Synthesis renders a query into audio bytes
	Synthesis(ctx context.Context, query *engine.AudioQuery, opts engine.SynthesisOptions) ([]byte, error)
}
