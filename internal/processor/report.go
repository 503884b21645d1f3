package processor

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"codeberg.org/snonux/kanavox/internal/engine"
)

// Report is the YAML document written after a batch run
type Report struct {
	RunID     string        `yaml:"run_id"`
	Created   time.Time     `yaml:"created"`
	Total     int           `yaml:"total"`
	Succeeded int           `yaml:"succeeded"`
	Failed    int           `yaml:"failed"`
	Entries   []ReportEntry `yaml:"entries"`
}

// ReportEntry is the outcome of one entry in a Report
type ReportEntry struct {
	Line      int    `yaml:"line,omitempty"`
	Text      string `yaml:"text"`
	Succeeded bool   `yaml:"succeeded"`
	Output    string `yaml:"output,omitempty"`
	Bytes     int    `yaml:"bytes,omitempty"`
	Error     string `yaml:"error,omitempty"`
	Status    int    `yaml:"status,omitempty"` // engine HTTP status of a failed call
	Collision bool   `yaml:"collision,omitempty"`
	Attempts  int    `yaml:"attempts"`
}

// NewReport builds the report of results. total is the number of entries in
// the input, which exceeds len(results) when the run was cancelled.
func NewReport(runID string, results []Result, total int) Report {
	report := Report{
		RunID:   runID,
		Created: time.Now().UTC().Truncate(time.Second),
		Total:   total,
		Entries: make([]ReportEntry, 0, len(results)),
	}

	for _, r := range results {
		entry := ReportEntry{
			Line:      r.Entry.Line,
			Text:      r.Entry.RawText,
			Succeeded: r.Succeeded,
			Output:    r.OutputPath,
			Bytes:     r.Bytes,
			Collision: r.Collision,
			Attempts:  r.Attempts,
		}
		if r.Succeeded {
			report.Succeeded++
		} else {
			report.Failed++
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
			var remote *engine.RemoteError
			if errors.As(r.Err, &remote) {
				entry.Status = remote.StatusCode
			}
		}
		report.Entries = append(report.Entries, entry)
	}

	return report
}

// WriteReport writes the YAML report of results to path
func WriteReport(path, runID string, results []Result, total int) error {
	data, err := yaml.Marshal(NewReport(runID, results, total))
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
