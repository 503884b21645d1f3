package processor

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"codeberg.org/snonux/kanavox/internal/cli"
	"codeberg.org/snonux/kanavox/internal/testutil"
	"codeberg.org/snonux/kanavox/internal/transliterate"
)

func TestNewFromFlags(t *testing.T) {
	mock := testutil.NewMockEngine(t)

	flags := cli.NewFlags()
	flags.EngineURL = mock.URL()
	flags.OutputDir = t.TempDir()
	flags.NoPreset = true

	p, err := NewFromFlags(context.Background(), flags)
	if err != nil {
		t.Fatalf("NewFromFlags failed: %v", err)
	}
	defer p.Close()
	p.out = io.Discard

	if p.transliterator != nil {
		t.Error("Transliteration should be disabled by default")
	}
	if p.config.DiagnosticQuery != true || p.config.Params.PresetID != nil {
		t.Errorf("Unexpected config: %+v", p.config)
	}

	result, err := p.ProcessSingle(context.Background(), "テスト", "")
	if err != nil || !result.Succeeded {
		t.Fatalf("ProcessSingle failed: %v / %v", err, result.Err)
	}
}

func TestNewFromFlags_Transliterate(t *testing.T) {
	mock := testutil.NewMockEngine(t)
	dictPath := filepath.Join(t.TempDir(), "kana.db")

	dict, err := transliterate.Open(dictPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := dict.Add(context.Background(), "hello", "ハロー"); err != nil {
		t.Fatal(err)
	}
	dict.Close()

	flags := cli.NewFlags()
	flags.EngineURL = mock.URL()
	flags.OutputDir = t.TempDir()
	flags.Transliterate = true
	flags.DictFile = dictPath

	p, err := NewFromFlags(context.Background(), flags)
	if err != nil {
		t.Fatalf("NewFromFlags failed: %v", err)
	}
	p.out = io.Discard

	result, err := p.ProcessSingle(context.Background(), "Hello", "")
	if err != nil || !result.Succeeded {
		t.Fatalf("ProcessSingle failed: %v / %v", err, result.Err)
	}
	if got := mock.Calls()[0].Text; got != "ハロー" {
		t.Errorf("Expected transliterated text, got %q", got)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestNewFromFlags_LLMWithoutKey(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("OPENAI_API_KEY", "")

	flags := cli.NewFlags()
	flags.Transliterate = true
	flags.DictFile = filepath.Join(t.TempDir(), "kana.db")
	flags.LLM = cli.LLMOpenAI

	if _, err := NewFromFlags(context.Background(), flags); err == nil {
		t.Error("Expected error for OpenAI fallback without API key")
	}
}

func TestNewFromFlags_InvalidEngineURL(t *testing.T) {
	flags := cli.NewFlags()
	flags.EngineURL = "not a url"

	if _, err := NewFromFlags(context.Background(), flags); err == nil {
		t.Error("Expected error for invalid engine URL")
	}
}
