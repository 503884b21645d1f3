package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"codeberg.org/snonux/kanavox/internal"
	"codeberg.org/snonux/kanavox/internal/audio"
	"codeberg.org/snonux/kanavox/internal/batch"
	"codeberg.org/snonux/kanavox/internal/transliterate"
)

// Config holds the settings of a batch run
type Config struct {
	OutputDir string
	Format    string // file extension of the rendered audio
	Params    audio.Params

	// DiagnosticQuery issues a preset-less query before the preset query.
	// Its outcome is only logged.
	DiagnosticQuery bool

	Retries    int    // re-runs of the failed entries after the first pass
	ReportPath string // YAML report, empty to skip
}

// DefaultConfig returns the settings of a plain batch run
func DefaultConfig() Config {
	return Config{
		OutputDir:       ".",
		Format:          "wav",
		Params:          audio.DefaultParams(),
		DiagnosticQuery: true,
	}
}

// Processor handles the batch processing logic
type Processor struct {
	config         Config
	queries        *audio.QueryBuilder
	renderer       *audio.Renderer
	transliterator transliterate.Transliterator
	runID          string
	log            *slog.Logger

	out     io.Writer
	errOut  io.Writer
	closers []io.Closer
}

// New creates a processor rendering through e. A nil transliterator
// disables transliteration.
func New(config Config, e audio.Engine, t transliterate.Transliterator) (*Processor, error) {
	if err := config.Params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid synthesis parameters: %w", err)
	}
	if config.Format == "" {
		config.Format = "wav"
	}
	if config.OutputDir == "" {
		config.OutputDir = "."
	}

	runID := internal.GenerateRunID()
	return &Processor{
		config:         config,
		queries:        audio.NewQueryBuilder(e),
		renderer:       audio.NewRenderer(e),
		transliterator: t,
		runID:          runID,
		log:            slog.With("run", runID),
		out:            os.Stdout,
		errOut:         os.Stderr,
	}, nil
}

// RunID identifies this processor's run in logs and reports
func (p *Processor) RunID() string {
	return p.runID
}

// Close releases the resources opened for the processor
func (p *Processor) Close() error {
	var errs []error
	for _, c := range p.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunBatch processes entries in order and returns one result per processed
// entry. Entry failures are recorded in the results. The error is non-nil
// only when ctx is done; the results gathered until then are returned with it
// and files already written are left in place.
func (p *Processor) RunBatch(ctx context.Context, entries []batch.Entry) ([]Result, error) {
	return p.runEntries(ctx, entries, make(map[string]int))
}

// runEntries is RunBatch with seen mapping the output names already written
// in this run to the line that first wrote them.
func (p *Processor) runEntries(ctx context.Context, entries []batch.Entry, seen map[string]int) ([]Result, error) {
	results := make([]Result, 0, len(entries))

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			p.log.Warn("Batch cancelled", "processed", len(results), "total", len(entries))
			return results, err
		}

		fmt.Fprintf(p.out, "\nProcessing %d/%d: %s\n", i+1, len(entries), entry)

		result := p.processEntry(ctx, entry, seen)
		results = append(results, result)

		if result.Succeeded {
			fmt.Fprintf(p.out, "  Saved %s (%d bytes)\n", result.OutputPath, result.Bytes)
		} else {
			fmt.Fprintf(p.errOut, "Error processing '%s': %v\n", entry.RawText, result.Err)
		}

		if err := ctx.Err(); err != nil {
			p.log.Warn("Batch cancelled", "processed", len(results), "total", len(entries))
			return results, err
		}
	}

	return results, nil
}

// processEntry runs transliteration, query and render for one entry
func (p *Processor) processEntry(ctx context.Context, entry batch.Entry, seen map[string]int) Result {
	result := Result{Entry: entry, Attempts: 1}
	log := p.log.With("line", entry.Line, "entry", entry.RawText)

	text, err := p.speechText(ctx, entry)
	if err != nil {
		result.Err = err
		return result
	}

	name := batch.NameFor(entry)
	if name == "" {
		result.Err = fmt.Errorf("cannot derive an output name from %q", entry.RawText)
		return result
	}

	// Collisions overwrite the earlier file, which is accepted
	if first, ok := seen[name]; ok {
		log.Warn("Output name already used in this run, file will be overwritten", "name", name, "first_line", first)
		result.Collision = true
	} else {
		seen[name] = entry.Line
	}

	params := p.config.Params
	if params.PresetID != nil && p.config.DiagnosticQuery {
		if _, err := p.queries.BuildQuery(ctx, text, params.SpeakerID, nil); err != nil {
			log.Warn("Preset-less query failed", "error", err)
		}
	}

	query, err := p.queries.BuildQuery(ctx, text, params.SpeakerID, params.PresetID)
	if err != nil {
		result.Err = err
		return result
	}

	outputPath := filepath.Join(p.config.OutputDir, name+"."+p.config.Format)
	data, err := p.renderer.Render(ctx, query, params, outputPath)
	if err != nil {
		result.Err = err
		return result
	}

	log.Debug("Rendered entry", "path", outputPath, "bytes", len(data))
	result.Succeeded = true
	result.OutputPath = outputPath
	result.Bytes = len(data)
	return result
}

// speechText returns the text sent to the engine for entry
func (p *Processor) speechText(ctx context.Context, entry batch.Entry) (string, error) {
	text := entry.Text()

	if p.transliterator != nil {
		converted, err := transliterate.Phrase(ctx, p.transliterator, text)
		if err != nil {
			return "", err
		}
		if converted != text {
			fmt.Fprintf(p.out, "  Transliterated: %s\n", converted)
		}
		text = converted
	}

	if err := audio.ValidateSpeechText(text); err != nil {
		return "", fmt.Errorf("invalid text '%s': %w", entry.RawText, err)
	}
	return text, nil
}

// ProcessBatchFile processes every entry of an input list, retries failed
// entries as configured, prints a summary and writes the report. It fails
// only when the list cannot be read or the output directory cannot be
// created, or when ctx is done.
func (p *Processor) ProcessBatchFile(ctx context.Context, filename string) ([]Result, error) {
	entries, err := batch.ReadBatchFile(filename)
	if err != nil {
		return nil, err
	}

	// Create output directory (including parent directories)
	if err := os.MkdirAll(p.config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	p.log.Info("Starting batch", "file", filename, "entries", len(entries))

	results, runErr := p.RunBatch(ctx, entries)
	if runErr == nil && p.config.Retries > 0 {
		results, runErr = p.RetryFailed(ctx, results, p.config.Retries)
	}

	PrintSummary(p.out, results, len(entries))

	if p.config.ReportPath != "" {
		if err := WriteReport(p.config.ReportPath, p.runID, results, len(entries)); err != nil {
			fmt.Fprintf(p.errOut, "Warning: Failed to write report: %v\n", err)
		} else {
			fmt.Fprintf(p.out, "Report written to: %s\n", p.config.ReportPath)
		}
	}

	return results, runErr
}

// ProcessSingle renders one text given on the command line. name overrides
// the derived output name when non-empty.
func (p *Processor) ProcessSingle(ctx context.Context, text, name string) (Result, error) {
	if err := os.MkdirAll(p.config.OutputDir, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	entry := batch.Entry{RawText: text, DisplayName: name}
	results, err := p.RunBatch(ctx, []batch.Entry{entry})
	if len(results) == 0 {
		return Result{Entry: entry, Err: err}, err
	}
	return results[0], err
}
