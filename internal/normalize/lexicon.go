package normalize

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

// Lexicon is the reviewable vocabulary behind the refined normalizer.
type Lexicon struct {
	Version         int          `yaml:"version"`
	Labels          []Label      `yaml:"labels"`
	RelationMarkers []string     `yaml:"relation_markers"`
	Corrections     []Correction `yaml:"corrections"`
}

type Label struct {
	Text string `yaml:"text"`
	// RequireSeparator keeps the label when no colon or space follows it,
	// for fragments that also start real names.
	RequireSeparator bool `yaml:"require_separator"`
}

type Correction struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// DefaultLexicon returns the vocabulary compiled into the binary.
func DefaultLexicon() *Lexicon {
	lex, err := ParseLexicon(defaultLexicon)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon: %v", err))
	}
	return lex
}

func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lex, err := ParseLexicon(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lex, nil
}

func ParseLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, err
	}
	lex.compose()
	if err := lex.validate(); err != nil {
		return nil, err
	}
	return &lex, nil
}

// compose brings every entry to NFC, the form names are matched in.
func (l *Lexicon) compose() {
	for i := range l.Labels {
		l.Labels[i].Text = norm.NFC.String(l.Labels[i].Text)
	}
	for i, m := range l.RelationMarkers {
		l.RelationMarkers[i] = norm.NFC.String(m)
	}
	for i := range l.Corrections {
		l.Corrections[i].From = norm.NFC.String(l.Corrections[i].From)
		l.Corrections[i].To = norm.NFC.String(l.Corrections[i].To)
	}
}

func (l *Lexicon) validate() error {
	if l.Version < 1 {
		return fmt.Errorf("lexicon version must be set")
	}
	for _, lb := range l.Labels {
		if lb.Text == "" {
			return fmt.Errorf("empty label")
		}
	}
	for _, m := range l.RelationMarkers {
		if m == "" {
			return fmt.Errorf("empty relation marker")
		}
	}
	// A replacement that reintroduces a key would change a cleaned name again.
	for _, c := range l.Corrections {
		if c.From == "" {
			return fmt.Errorf("correction to %q has empty key", c.To)
		}
		for _, k := range l.Corrections {
			if strings.Contains(c.To, k.From) {
				return fmt.Errorf("correction %q -> %q contains key %q", c.From, c.To, k.From)
			}
		}
	}
	return nil
}
