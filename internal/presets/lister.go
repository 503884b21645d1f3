package presets

import (
	"context"
	"fmt"
	"io"
	"sort"

	"codeberg.org/snonux/kanavox/internal/engine"
)

// Source provides the presets of an engine
type Source interface {
	Presets(ctx context.Context) ([]engine.Preset, error)
}

// Lister handles listing the presets of an engine
type Lister struct {
	source Source
	out    io.Writer
}

// NewLister creates a new preset lister printing to out
func NewLister(source Source, out io.Writer) *Lister {
	return &Lister{
		source: source,
		out:    out,
	}
}

// ListPresets prints the presets of the engine sorted by id. The preset
// matching activeID, if any, is marked.
func (l *Lister) ListPresets(ctx context.Context, activeID *int) error {
	presets, err := l.source.Presets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list presets: %w", err)
	}

	sort.Slice(presets, func(i, j int) bool {
		return presets[i].ID < presets[j].ID
	})

	fmt.Fprintln(l.out, "Available engine presets:")
	if len(presets) == 0 {
		fmt.Fprintln(l.out, "  No presets configured (create one in the engine or use --no-preset)")
		return nil
	}

	found := false
	for _, p := range presets {
		marker := " "
		if activeID != nil && *activeID == p.ID {
			marker = "*"
			found = true
		}
		fmt.Fprintf(l.out, "%s %3d  %-20s style %-4d speed %.2f  intonation %.2f  volume %.2f\n",
			marker, p.ID, p.Name, p.StyleID, p.SpeedScale, p.IntonationScale, p.VolumeScale)
	}

	if activeID != nil && !found {
		fmt.Fprintf(l.out, "\nWarning: configured preset %d does not exist on the engine\n", *activeID)
	}
	return nil
}
