// Package language holds the cheap English-ish heuristic shared by the
// trends and search filters. It is intentionally not a language
// detector and over-rejects ambiguous input.
package language

// cjkRanges are unicode ranges whose presence rejects a string
// outright: Hiragana/Katakana, CJK extensions, unified ideographs, and
// Hangul syllables.
var cjkRanges = [][2]rune{
	{0x3040, 0x30FF},
	{0x3400, 0x4DBF},
	{0x4E00, 0x9FFF},
	{0xAC00, 0xD7AF},
}

// ProbablyEnglish reports whether s looks like English text. Empty
// strings pass. Any CJK/Hangul code point fails. Otherwise the
// non-ASCII character fraction must not exceed 10%.
func ProbablyEnglish(s string) bool {
	if s == "" {
		return true
	}

	runes := []rune(s)
	nonASCII := 0
	for _, r := range runes {
		for _, rng := range cjkRanges {
			if r >= rng[0] && r <= rng[1] {
				return false
			}
		}
		if r > 127 {
			nonASCII++
		}
	}

	if nonASCII == 0 {
		return true
	}
	return float64(nonASCII)/float64(len(runes)) <= 0.10
}
