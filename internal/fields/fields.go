// Package fields turns the raw OCR text of a voter block into typed values.
// Every extractor is independent and returns ok=false when its field is
// not present.
package fields

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ivlev/voterroll/internal/model"
	"github.com/ivlev/voterroll/internal/normalize"
)

// Literal tokens printed on the roll.
const (
	MaleToken   = "ആൺ"
	FemaleToken = "സ്ത്രീ"
)

// AgeLabels are the words that introduce the age value.
var AgeLabels = []string{"വയ", "പ്രായ"}

// digit matches ASCII and Malayalam (U+0D66..U+0D6F) digits.
const digit = `[0-9\x{0D66}-\x{0D6F}]`

var (
	houseRe      = regexp.MustCompile(digit + `{1,4}`)
	ageRe        = regexp.MustCompile(`(?:` + strings.Join(AgeLabels, "|") + `)[^0-9\x{0D66}-\x{0D6F}]{0,6}(` + digit + `{1,2})`)
	identifierRe = regexp.MustCompile(`[A-Z]{3}[0-9]{7}`)
)

// asciiDigits rewrites Malayalam digits as ASCII ones.
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0x0D66 && r <= 0x0D6F {
			return '0' + r - 0x0D66
		}
		return r
	}, s)
}

// Lines splits text into trimmed, non-empty lines.
func Lines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// HouseNumber returns the first run of one to four digits, in ASCII.
func HouseNumber(text string) (string, bool) {
	m := houseRe.FindString(text)
	return asciiDigits(m), m != ""
}

// Age returns the number following an age label within six non-digit characters.
func Age(text string) (int, bool) {
	m := ageRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	age, err := strconv.Atoi(asciiDigits(m[1]))
	if err != nil {
		return 0, false
	}
	return age, true
}

// GenderOf looks for the male and female tokens. When both are present the
// result is GenderUnknown, which callers should report as ambiguous.
func GenderOf(text string) (model.Gender, bool) {
	male := strings.Contains(text, MaleToken)
	female := strings.Contains(text, FemaleToken)
	switch {
	case male && female:
		return model.GenderUnknown, true
	case male:
		return model.Male, true
	case female:
		return model.Female, true
	}
	return "", false
}

// Identifier returns the first three-letter, seven-digit code.
func Identifier(text string) (string, bool) {
	m := identifierRe.FindString(text)
	return m, m != ""
}

// Name picks the first line holding a Malayalam letter and normalizes it.
// With scanAll, lines that normalize to nothing are passed over and the
// search continues.
func Name(lines []string, n normalize.Normalizer, scanAll bool) (string, bool) {
	for _, l := range lines {
		if !normalize.HasCoreLetter(l) {
			continue
		}
		if name, ok := n.Normalize(l); ok {
			return name, true
		}
		if !scanAll {
			break
		}
	}
	return "", false
}
