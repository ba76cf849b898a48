// Package normalize cleans the raw OCR line that holds a voter's name.
package normalize

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalizer turns a raw name line into a clean name. ok is false when
// nothing usable is left.
type Normalizer interface {
	Normalize(raw string) (name string, ok bool)
}

// New creates a normalizer based on the specified variant.
func New(variant string, lex *Lexicon) (Normalizer, error) {
	switch variant {
	case "refined", "":
		if lex == nil {
			lex = DefaultLexicon()
		}
		return NewRefined(lex), nil
	case "basic":
		return Basic{}, nil
	default:
		return nil, fmt.Errorf("unknown normalizer variant: %s", variant)
	}
}

// Basic keeps core letters and spaces only.
type Basic struct{}

func (Basic) Normalize(raw string) (string, bool) {
	name := strings.TrimSpace(strings.Map(func(r rune) rune {
		if IsCoreLetter(r) || r == ' ' {
			return r
		}
		return -1
	}, raw))
	return name, name != ""
}

// Refined handles OCR line merging and known misreadings:
// label prefix, relation text, noise characters, spacing, corrections.
// Text is compared in NFC form.
type Refined struct {
	lex *Lexicon
}

func NewRefined(lex *Lexicon) *Refined {
	return &Refined{lex: lex}
}

// maxPasses bounds the cleanup loop for lexicons that never settle.
const maxPasses = 8

func (n *Refined) Normalize(raw string) (string, bool) {
	name := norm.NFC.String(raw)
	// Dropping noise can join a label or relation marker that OCR split,
	// so clean until nothing changes.
	for i := 0; i < maxPasses; i++ {
		next := n.clean(name)
		if next == name {
			break
		}
		name = next
	}

	if utf8.RuneCountInString(name) < 2 {
		return "", false
	}
	return name, true
}

func (n *Refined) clean(s string) string {
	s = n.stripLabel(s)
	s = n.cutRelation(s)
	s = strings.Map(keepNameRune, s)
	// Dropping noise can leave a decomposed vowel sign pair behind.
	s = norm.NFC.String(strings.Join(strings.Fields(s), " "))

	for _, c := range n.lex.Corrections {
		s = strings.ReplaceAll(s, c.From, c.To)
	}
	return s
}

// stripLabel removes leading field labels and colons.
func (n *Refined) stripLabel(s string) string {
	for {
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, ":") {
			s = s[1:]
			continue
		}

		stripped := false
		for _, l := range n.lex.Labels {
			if !strings.HasPrefix(s, l.Text) {
				continue
			}
			rest := s[len(l.Text):]
			if l.RequireSeparator {
				after := strings.TrimLeft(rest, " \t")
				if !strings.HasPrefix(after, ":") && len(after) == len(rest) {
					continue
				}
			}
			s = rest
			stripped = true
			break
		}
		if !stripped {
			return s
		}
	}
}

// cutRelation drops everything from the earliest relation marker on.
func (n *Refined) cutRelation(s string) string {
	cut := len(s)
	for _, m := range n.lex.RelationMarkers {
		if i := strings.Index(s, m); i >= 0 && i < cut {
			cut = i
		}
	}
	return strings.TrimSpace(s[:cut])
}

func keepNameRune(r rune) rune {
	if IsCoreLetter(r) || IsChillu(r) || IsSign(r) || r == ' ' {
		return r
	}
	return -1
}
