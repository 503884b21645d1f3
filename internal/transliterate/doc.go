// Package transliterate turns Latin tokens into katakana the synthesis engine
// can pronounce.
//
// The primary source is a SQLite dictionary of word to kana mappings. Words
// missing from the dictionary can optionally be resolved through an LLM
// (OpenAI or Gemini); answers learned that way are written back to the
// dictionary so the next run finds them locally.
//
// A token that cannot be transliterated is not an error: Transliterate
// returns ok == false and callers drop the token.
//
// Example usage:
//
//	dict, err := transliterate.Open("kana.db")
//	if err != nil {
//		return err
//	}
//	defer dict.Close()
//
//	text, err := transliterate.Phrase(ctx, dict, "Hello World")
//	// text == "ハロー ワールド"
package transliterate
