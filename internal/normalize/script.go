package normalize

// Malayalam code point classes used for name cleanup.

// IsCoreLetter reports whether r is a Malayalam consonant or independent
// vowel (U+0D05..U+0D39). A line holding one of these is a name candidate.
func IsCoreLetter(r rune) bool {
	return r >= 0x0D05 && r <= 0x0D39
}

// IsChillu reports whether r is an atomic chillu letter (U+0D7A..U+0D7F).
func IsChillu(r rune) bool {
	return r >= 0x0D7A && r <= 0x0D7F
}

// IsSign reports whether r is a dependent vowel sign or virama
// (U+0D3E..U+0D57), an anusvara or a visarga.
func IsSign(r rune) bool {
	return (r >= 0x0D3E && r <= 0x0D57) || r == 0x0D02 || r == 0x0D03
}

// HasCoreLetter reports whether s contains at least one core letter.
func HasCoreLetter(s string) bool {
	for _, r := range s {
		if IsCoreLetter(r) {
			return true
		}
	}
	return false
}
