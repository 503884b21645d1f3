package cli

import (
	"fmt"
	"time"

	"codeberg.org/snonux/kanavox/internal/audio"
)

// Supported LLM fallbacks for transliteration
const (
	LLMNone   = ""
	LLMOpenAI = "openai"
	LLMGemini = "gemini"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile     string
	OutputDir   string
	AudioFormat string
	BatchFile   string
	Name        string
	Archive     bool
	ListPresets bool
	ImportDict  string
	ReportFile  string
	Retries     int
	Verbose     bool

	// Engine flags
	EngineURL       string
	EngineTimeout   time.Duration
	RateLimit       float64
	BreakerFailures int

	// Synthesis flags
	Speaker           int
	Preset            int
	NoPreset          bool
	SpeedScale        float64
	VolumeScale       float64
	IntonationScale   float64
	PrePhonemeLength  float64
	PostPhonemeLength float64
	NoDiagnosticQuery bool

	// Transliteration flags
	Transliterate bool
	DictFile      string
	LLM           string
	LLMModel      string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	params := audio.DefaultParams()
	return &Flags{
		OutputDir:         ".",
		AudioFormat:       "wav",
		BatchFile:         "words.txt",
		EngineURL:         "http://127.0.0.1:50021",
		EngineTimeout:     60 * time.Second,
		BreakerFailures:   5,
		Speaker:           params.SpeakerID,
		Preset:            *params.PresetID,
		SpeedScale:        params.SpeedScale,
		VolumeScale:       params.VolumeScale,
		IntonationScale:   params.IntonationScale,
		PrePhonemeLength:  params.PrePhonemeLength,
		PostPhonemeLength: params.PostPhonemeLength,
	}
}

// Params returns the synthesis parameters selected by the flags
func (f *Flags) Params() audio.Params {
	p := audio.Params{
		SpeakerID:         f.Speaker,
		SpeedScale:        f.SpeedScale,
		VolumeScale:       f.VolumeScale,
		IntonationScale:   f.IntonationScale,
		PrePhonemeLength:  f.PrePhonemeLength,
		PostPhonemeLength: f.PostPhonemeLength,
	}
	if !f.NoPreset {
		p = p.WithPreset(f.Preset)
	}
	return p
}

// Validate checks flag combinations that cannot work
func (f *Flags) Validate() error {
	if err := f.Params().Validate(); err != nil {
		return fmt.Errorf("invalid synthesis parameters: %w", err)
	}
	if f.AudioFormat != "wav" {
		return fmt.Errorf("unsupported audio format %q (the engine renders wav)", f.AudioFormat)
	}
	if f.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", f.Retries)
	}
	if f.EngineTimeout < 0 {
		return fmt.Errorf("engine timeout must not be negative, got %s", f.EngineTimeout)
	}
	if f.BreakerFailures < 0 {
		return fmt.Errorf("breaker failures must not be negative, got %d", f.BreakerFailures)
	}

	switch f.LLM {
	case LLMNone, LLMOpenAI, LLMGemini:
	default:
		return fmt.Errorf("unknown LLM %q (use openai or gemini)", f.LLM)
	}
	if f.LLM != LLMNone && !f.Transliterate {
		return fmt.Errorf("--llm requires --transliterate")
	}
	return nil
}
