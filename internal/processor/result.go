package processor

import (
	"fmt"
	"io"

	"codeberg.org/snonux/kanavox/internal/batch"
)

// Result is the outcome of one entry
type Result struct {
	Entry      batch.Entry
	Succeeded  bool
	Err        error
	OutputPath string
	Bytes      int
	Collision  bool // output name was already used earlier in the run
	Attempts   int
}

// Failed returns the failed results
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Succeeded {
			failed = append(failed, r)
		}
	}
	return failed
}

// PrintSummary prints the batch processing summary. total is the number of
// entries in the input; it exceeds len(results) when the run was cancelled.
func PrintSummary(w io.Writer, results []Result, total int) {
	processedCount := 0
	errorCount := 0
	collisionCount := 0

	for _, r := range results {
		if r.Succeeded {
			processedCount++
		} else {
			errorCount++
		}
		if r.Collision {
			collisionCount++
		}
	}

	fmt.Fprintf(w, "\n=== Batch Processing Summary ===\n")
	fmt.Fprintf(w, "Total entries: %d\n", total)
	fmt.Fprintf(w, "Processed: %d\n", processedCount)
	if errorCount > 0 {
		fmt.Fprintf(w, "Errors: %d\n", errorCount)
		for _, r := range results {
			if !r.Succeeded {
				fmt.Fprintf(w, "  - %s: %v\n", r.Entry.RawText, r.Err)
			}
		}
	}
	if collisionCount > 0 {
		fmt.Fprintf(w, "Overwritten names: %d\n", collisionCount)
	}
	if skipped := total - len(results); skipped > 0 {
		fmt.Fprintf(w, "Not processed (cancelled): %d\n", skipped)
	}
	fmt.Fprintf(w, "================================\n")
}
