package cli

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"OutputDir", flags.OutputDir, "."},
		{"AudioFormat", flags.AudioFormat, "wav"},
		{"BatchFile", flags.BatchFile, "words.txt"},
		{"EngineURL", flags.EngineURL, "http://127.0.0.1:50021"},
		{"EngineTimeout", flags.EngineTimeout, 60 * time.Second},
		{"BreakerFailures", flags.BreakerFailures, 5},
		{"Speaker", flags.Speaker, 20},
		{"Preset", flags.Preset, 1},
		{"SpeedScale", flags.SpeedScale, 1.0},
		{"VolumeScale", flags.VolumeScale, 1.0},
		{"IntonationScale", flags.IntonationScale, 2.0},
		{"PrePhonemeLength", flags.PrePhonemeLength, 0.1},
		{"PostPhonemeLength", flags.PostPhonemeLength, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test boolean defaults (should be false)
	boolTests := []struct {
		name  string
		value bool
	}{
		{"Archive", flags.Archive},
		{"ListPresets", flags.ListPresets},
		{"NoPreset", flags.NoPreset},
		{"NoDiagnosticQuery", flags.NoDiagnosticQuery},
		{"Transliterate", flags.Transliterate},
		{"Verbose", flags.Verbose},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != false {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}
}

func TestFlagsParams(t *testing.T) {
	flags := NewFlags()
	flags.Speaker = 3
	flags.Preset = 4

	p := flags.Params()
	if p.SpeakerID != 3 {
		t.Errorf("SpeakerID = %d, want 3", p.SpeakerID)
	}
	if p.PresetID == nil || *p.PresetID != 4 {
		t.Errorf("PresetID = %v, want 4", p.PresetID)
	}

	flags.NoPreset = true
	if p := flags.Params(); p.PresetID != nil {
		t.Errorf("PresetID = %d, want nil with --no-preset", *p.PresetID)
	}
}

func TestFlagsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *Flags)
		wantErr string
	}{
		{"defaults", func(f *Flags) {}, ""},
		{"openai fallback", func(f *Flags) { f.Transliterate = true; f.LLM = LLMOpenAI }, ""},
		{"gemini fallback", func(f *Flags) { f.Transliterate = true; f.LLM = LLMGemini }, ""},
		{"unknown llm", func(f *Flags) { f.Transliterate = true; f.LLM = "claude" }, "unknown LLM"},
		{"llm without transliterate", func(f *Flags) { f.LLM = LLMOpenAI }, "requires --transliterate"},
		{"mp3 format", func(f *Flags) { f.AudioFormat = "mp3" }, "unsupported audio format"},
		{"negative retries", func(f *Flags) { f.Retries = -1 }, "retries"},
		{"zero speed", func(f *Flags) { f.SpeedScale = 0 }, "invalid synthesis parameters"},
		{"negative speaker", func(f *Flags) { f.Speaker = -1 }, "invalid synthesis parameters"},
		{"negative timeout", func(f *Flags) { f.EngineTimeout = -time.Second }, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := NewFlags()
			tt.mutate(flags)

			err := flags.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFlagsStructure(t *testing.T) {
	// Test that Flags struct has all expected fields
	flags := &Flags{}
	flagsType := reflect.TypeOf(*flags)

	expectedFields := []string{
		"CfgFile", "OutputDir", "AudioFormat", "BatchFile", "Name",
		"Archive", "ListPresets", "ImportDict", "ReportFile", "Retries", "Verbose",
		"EngineURL", "EngineTimeout", "RateLimit", "BreakerFailures",
		"Speaker", "Preset", "NoPreset", "SpeedScale", "VolumeScale", "IntonationScale",
		"PrePhonemeLength", "PostPhonemeLength", "NoDiagnosticQuery",
		"Transliterate", "DictFile", "LLM", "LLMModel",
	}

	for _, fieldName := range expectedFields {
		t.Run("has_field_"+fieldName, func(t *testing.T) {
			if _, ok := flagsType.FieldByName(fieldName); !ok {
				t.Errorf("Flags struct missing field: %s", fieldName)
			}
		})
	}
}
