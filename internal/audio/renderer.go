package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"codeberg.org/snonux/kanavox/internal/engine"
)

// ErrEmptyAudio is returned when the engine answers synthesis with no bytes.
var ErrEmptyAudio = errors.New("no audio data received from engine")

// Renderer turns audio queries into audio files.
type Renderer struct {
	engine Engine
}

// NewRenderer creates a renderer on top of e.
func NewRenderer(e Engine) *Renderer {
	return &Renderer{engine: e}
}

// Render synthesizes query with params and writes the audio to destination,
// overwriting any existing file there. The written bytes are returned.
//
// The engine call is synchronous and returns finished audio, so the file is
// written as soon as the call returns.
func (r *Renderer) Render(ctx context.Context, query *engine.AudioQuery, params Params, destination string) ([]byte, error) {
	if destination == "" {
		return nil, fmt.Errorf("destination path cannot be empty")
	}

	data, err := r.engine.Synthesis(ctx, query, params.synthesisOptions())
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", engine.ErrRemoteRender, ErrEmptyAudio)
	}

	if dir := filepath.Dir(destination); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(destination, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write audio file: %w", err)
	}

	return data, nil
}
