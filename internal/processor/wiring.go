package processor

import (
	"context"
	"fmt"
	"io"
	"time"

	"codeberg.org/snonux/kanavox/internal/cli"
	"codeberg.org/snonux/kanavox/internal/engine"
	"codeberg.org/snonux/kanavox/internal/transliterate"
)

// NewFromFlags creates a processor talking to the engine and dictionary
// selected on the command line. The caller must Close it.
func NewFromFlags(ctx context.Context, flags *cli.Flags) (*Processor, error) {
	client, err := NewEngineClient(flags)
	if err != nil {
		return nil, err
	}

	var t transliterate.Transliterator
	var closers []io.Closer
	if flags.Transliterate {
		t, closers, err = newTransliterator(ctx, flags)
		if err != nil {
			return nil, err
		}
	}

	config := Config{
		OutputDir:       flags.OutputDir,
		Format:          flags.AudioFormat,
		Params:          flags.Params(),
		DiagnosticQuery: !flags.NoDiagnosticQuery,
		Retries:         flags.Retries,
		ReportPath:      flags.ReportFile,
	}

	p, err := New(config, client, t)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	p.closers = closers
	return p, nil
}

// NewEngineClient creates the engine client configured by flags
func NewEngineClient(flags *cli.Flags) (*engine.Client, error) {
	return engine.NewClient(&engine.Config{
		BaseURL:         flags.EngineURL,
		Timeout:         flags.EngineTimeout,
		RateLimit:       flags.RateLimit,
		BreakerFailures: uint32(flags.BreakerFailures),
		BreakerCooldown: 30 * time.Second,
	})
}

// newTransliterator opens the dictionary and chains the LLM fallback behind
// it. Lookups are cached for the run.
func newTransliterator(ctx context.Context, flags *cli.Flags) (transliterate.Transliterator, []io.Closer, error) {
	dict, err := transliterate.Open(flags.DictFile)
	if err != nil {
		return nil, nil, err
	}
	links := []transliterate.Transliterator{dict}

	switch flags.LLM {
	case cli.LLMOpenAI:
		o, err := transliterate.NewOpenAI(transliterate.OpenAIConfig{
			APIKey: cli.GetOpenAIKey(),
			Model:  flags.LLMModel,
		})
		if err != nil {
			dict.Close()
			return nil, nil, err
		}
		links = append(links, o)

	case cli.LLMGemini:
		g, err := transliterate.NewGemini(ctx, transliterate.GeminiConfig{
			APIKey: cli.GetGeminiKey(),
			Model:  flags.LLMModel,
		})
		if err != nil {
			dict.Close()
			return nil, nil, err
		}
		links = append(links, g)

	case cli.LLMNone:

	default:
		dict.Close()
		return nil, nil, fmt.Errorf("unknown LLM %q", flags.LLM)
	}

	return transliterate.NewCache(transliterate.NewChain(links...)), []io.Closer{dict}, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}
