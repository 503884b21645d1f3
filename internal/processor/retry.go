package processor

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/snonux/kanavox/internal/batch"
)

// ErrSuperseded marks a failed entry that is not retried because a later
// entry of the input already wrote its output name.
var ErrSuperseded = errors.New("output name taken by a later entry")

// RetryFailed re-runs the failed entries of results up to attempts times and
// merges the new outcomes back in place. Succeeded results are kept as they
// are. When ctx is done the merged results so far are returned with its error.
//
// The input order still decides which entry owns an output name: a failed
// entry whose name a later entry already wrote is marked with ErrSuperseded
// instead of being retried.
func (p *Processor) RetryFailed(ctx context.Context, results []Result, attempts int) ([]Result, error) {
	merged := append([]Result(nil), results...)

	for attempt := 1; attempt <= attempts; attempt++ {
		first, last := claimedNames(merged)

		var indexes []int
		var entries []batch.Entry
		for i, r := range merged {
			if r.Succeeded || errors.Is(r.Err, ErrSuperseded) {
				continue
			}

			name := batch.NameFor(r.Entry)
			if line, ok := last[name]; ok && name != "" && line > r.Entry.Line {
				p.log.Warn("Not retrying entry, its output name was written by a later entry",
					"line", r.Entry.Line, "name", name, "later_line", line)
				merged[i].Err = fmt.Errorf("%w (line %d): %v", ErrSuperseded, line, r.Err)
				merged[i].Collision = true
				continue
			}

			indexes = append(indexes, i)
			entries = append(entries, r.Entry)
		}
		if len(entries) == 0 {
			break
		}

		p.log.Info("Retrying failed entries", "attempt", attempt, "entries", len(entries))

		retried, err := p.runEntries(ctx, entries, first)
		for j, r := range retried {
			prev := merged[indexes[j]]
			r.Attempts = prev.Attempts + 1
			r.Collision = r.Collision || prev.Collision
			merged[indexes[j]] = r
		}
		if err != nil {
			return merged, err
		}
	}

	return merged, nil
}

// claimedNames returns the first and the last line that wrote each output
// name among the succeeded results.
func claimedNames(results []Result) (first, last map[string]int) {
	first = make(map[string]int)
	last = make(map[string]int)
	for _, r := range results {
		if !r.Succeeded {
			continue
		}
		name := batch.NameFor(r.Entry)
		line := r.Entry.Line
		if l, ok := first[name]; !ok || line < l {
			first[name] = line
		}
		if l, ok := last[name]; !ok || line > l {
			last[name] = line
		}
	}
	return first, last
}
