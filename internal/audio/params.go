package audio

import (
	"fmt"

	"codeberg.org/snonux/kanavox/internal/engine"
)

// Params holds the synthesis parameters shared by every entry of a batch run.
type Params struct {
	SpeakerID int
	PresetID  *int // nil renders without a preset

	SpeedScale        float64
	VolumeScale       float64
	IntonationScale   float64
	PrePhonemeLength  float64 // seconds of silence before the speech
	PostPhonemeLength float64 // seconds of silence after the speech
}

// DefaultParams returns the parameters the batch tool has always used:
// speaker 20 with preset 1 and a strong intonation.
func DefaultParams() Params {
	preset := 1
	return Params{
		SpeakerID:         20,
		PresetID:          &preset,
		SpeedScale:        1.0,
		VolumeScale:       1.0,
		IntonationScale:   2.0,
		PrePhonemeLength:  0.1,
		PostPhonemeLength: 0.1,
	}
}

// Validate rejects values no engine accepts. Engine specific upper bounds are
// left to the engine, which answers with a non-success status.
func (p Params) Validate() error {
	if p.SpeakerID < 0 {
		return fmt.Errorf("speaker id must not be negative, got %d", p.SpeakerID)
	}
	if p.PresetID != nil && *p.PresetID < 0 {
		return fmt.Errorf("preset id must not be negative, got %d", *p.PresetID)
	}
	if p.SpeedScale <= 0 {
		return fmt.Errorf("speed scale must be positive, got %.2f", p.SpeedScale)
	}

	checks := []struct {
		name  string
		value float64
	}{
		{"volume scale", p.VolumeScale},
		{"intonation scale", p.IntonationScale},
		{"pre phoneme length", p.PrePhonemeLength},
		{"post phoneme length", p.PostPhonemeLength},
	}
	for _, c := range checks {
		if c.value < 0 {
			return fmt.Errorf("%s must not be negative, got %.2f", c.name, c.value)
		}
	}
	return nil
}

// WithPreset returns a copy of p rendering with the given preset.
func (p Params) WithPreset(id int) Params {
	p.PresetID = &id
	return p
}

// WithoutPreset returns a copy of p rendering with the plain speaker.
func (p Params) WithoutPreset() Params {
	p.PresetID = nil
	return p
}

func (p Params) synthesisOptions() engine.SynthesisOptions {
	return engine.SynthesisOptions{
		Speaker:           p.SpeakerID,
		SpeedScale:        p.SpeedScale,
		VolumeScale:       p.VolumeScale,
		IntonationScale:   p.IntonationScale,
		PrePhonemeLength:  p.PrePhonemeLength,
		PostPhonemeLength: p.PostPhonemeLength,
	}
}
