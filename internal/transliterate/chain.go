package transliterate

import (
	"context"
	"log/slog"
)

// learner is implemented by transliterators that can store new renderings.
type learner interface {
	Add(ctx context.Context, word, kana string) error
}

// Chain tries each transliterator in order and returns the first rendering.
// A failing link is logged and skipped. When a later link finds a rendering
// and the first link can learn, the rendering is stored there.
type Chain struct {
	links []Transliterator
}

// NewChain creates a chain of the given transliterators.
func NewChain(links ...Transliterator) *Chain {
	return &Chain{links: links}
}

// Transliterate implements Transliterator.
func (c *Chain) Transliterate(ctx context.Context, token string) (string, bool, error) {
	for i, link := range c.links {
		kana, ok, err := link.Transliterate(ctx, token)
		if err != nil {
			if ctx.Err() != nil {
				return "", false, ctx.Err()
			}
			slog.Warn("Transliteration backend failed", "token", token, "backend", i, "error", err)
			continue
		}
		if !ok {
			continue
		}

		if i > 0 {
			c.learn(ctx, token, kana)
		}
		return kana, true, nil
	}

	return "", false, nil
}

func (c *Chain) learn(ctx context.Context, token, kana string) {
	l, ok := c.links[0].(learner)
	if !ok {
		return
	}
	if err := l.Add(ctx, token, kana); err != nil {
		slog.Warn("Failed to store learned transliteration", "token", token, "error", err)
		return
	}
	slog.Info("Learned transliteration", "token", token, "kana", kana)
}
