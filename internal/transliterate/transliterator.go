package transliterate

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Transliterator looks up the katakana rendering of a single token.
// A token without a rendering yields ok == false and a nil error.
type Transliterator interface {
	Transliterate(ctx context.Context, token string) (kana string, ok bool, err error)
}

// Phrase transliterates every token of text that contains Latin letters.
// Tokens without a rendering are dropped, all other tokens are kept as they
// are, and the result is joined with single spaces in input order.
func Phrase(ctx context.Context, t Transliterator, text string) (string, error) {
	tokens := strings.Fields(text)
	parts := make([]string, 0, len(tokens))

	for _, token := range tokens {
		if !NeedsTransliteration(token) {
			parts = append(parts, token)
			continue
		}

		kana, ok, err := t.Transliterate(ctx, token)
		if err != nil {
			return "", fmt.Errorf("failed to transliterate %q: %w", token, err)
		}
		if ok {
			parts = append(parts, kana)
		}
	}

	return Join(parts), nil
}

// Join joins the non-empty parts with single spaces. Empty parts leave no
// separator behind.
func Join(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}

// NeedsTransliteration reports whether token contains Latin letters.
func NeedsTransliteration(token string) bool {
	for _, r := range token {
		if unicode.Is(unicode.Latin, r) {
			return true
		}
	}
	return false
}

// normalizeAnswer cleans an LLM answer. Anything other than plain katakana,
// including the literal NONE, counts as no rendering.
func normalizeAnswer(answer string) (string, bool) {
	answer = strings.TrimSpace(answer)
	answer = strings.Trim(answer, "`\"'「」 ")
	if answer == "" || strings.EqualFold(answer, "NONE") {
		return "", false
	}

	for _, r := range answer {
		if !isKatakana(r) {
			return "", false
		}
	}
	return answer, true
}

func isKatakana(r rune) bool {
	return unicode.Is(unicode.Katakana, r) || r == 'ー' || r == '・'
}

func prompt(token string) string {
	return fmt.Sprintf("Write the word '%s' in katakana the way a Japanese speaker would pronounce it. "+
		"Respond with only the katakana, nothing else. "+
		"If it is not a word that can be pronounced, respond with NONE.", token)
}
