package audio

import (
	"context"

	"codeberg.org/snonux/kanavox/internal/engine"
)

// QueryBuilder obtains audio queries from the engine.
type QueryBuilder struct {
	engine Engine
}

// NewQueryBuilder creates a query builder on top of e.
func NewQueryBuilder(e Engine) *QueryBuilder {
	return &QueryBuilder{engine: e}
}

// BuildQuery returns the audio query for text. A nil presetID uses the plain
// audio_query endpoint with speakerID; otherwise the preset endpoint is used
// and speakerID is ignored. Errors match engine.ErrRemoteQuery. No retries.
func (b *QueryBuilder) BuildQuery(ctx context.Context, text string, speakerID int, presetID *int) (*engine.AudioQuery, error) {
	if presetID == nil {
		return b.engine.AudioQuery(ctx, text, speakerID)
	}
	return b.engine.AudioQueryFromPreset(ctx, text, *presetID)
}
