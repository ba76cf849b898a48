package fields

import (
	"log"

	"github.com/ivlev/voterroll/internal/model"
	"github.com/ivlev/voterroll/internal/normalize"
)

// CarryOver is the last house number recognized in a document. Blocks
// without legible house digits inherit it. The zero value holds nothing.
type CarryOver struct {
	last *string
}

// Last returns the carried house number, nil before the first one.
func (c *CarryOver) Last() *string {
	return c.last
}

func (c *CarryOver) set(house string) {
	c.last = &house
}

// Parser composes the extractors into a record.
type Parser struct {
	Normalizer       normalize.Normalizer
	ScanAllNameLines bool
}

func NewParser(n normalize.Normalizer, scanAll bool) *Parser {
	return &Parser{Normalizer: n, ScanAllNameLines: scanAll}
}

// Parse builds the record for one block. It returns false, leaving carry
// untouched, when the block text has no non-empty line.
func (p *Parser) Parse(houseText, blockText string, carry *CarryOver, page int) (model.Record, bool) {
	lines := Lines(blockText)
	if len(lines) == 0 {
		return model.Record{}, false
	}

	rec := model.Record{Page: page}

	if house, ok := HouseNumber(houseText); ok {
		carry.set(house)
	}
	if last := carry.Last(); last != nil {
		rec.HouseNo = model.Ptr(*last)
	}

	if name, ok := Name(lines, p.Normalizer, p.ScanAllNameLines); ok {
		rec.Name = &name
	}
	if age, ok := Age(blockText); ok {
		rec.Age = &age
	}
	if g, ok := GenderOf(blockText); ok {
		if g == model.GenderUnknown {
			log.Printf("[!] Page %d: both gender tokens found, gender left as %s", page, g)
		}
		rec.Gender = &g
	}
	if id, ok := Identifier(blockText); ok {
		rec.Identifier = &id
	}
	return rec, true
}
