package model

import "strconv"

type Gender string

const (
	Male          Gender = "Male"
	Female        Gender = "Female"
	GenderUnknown Gender = "unknown"
)

// Record is one voter row. Nil fields are unrecognized values.
type Record struct {
	HouseNo    *string
	Name       *string
	Age        *int
	Gender     *Gender
	Identifier *string
	Page       int // 1-based page index within the document
}

// Columns is the fixed output column order.
var Columns = []string{"House No", "Name", "Age", "Gender", "Identifier", "Page No"}

// Row returns the record as a row tuple in Columns order. Nil fields are nil cells.
func (r Record) Row() []interface{} {
	row := make([]interface{}, 0, len(Columns))
	row = append(row, strOrNil(r.HouseNo), strOrNil(r.Name))
	if r.Age != nil {
		row = append(row, *r.Age)
	} else {
		row = append(row, nil)
	}
	if r.Gender != nil {
		row = append(row, string(*r.Gender))
	} else {
		row = append(row, nil)
	}
	row = append(row, strOrNil(r.Identifier), r.Page)
	return row
}

// Strings returns the record as text cells, empty for null values.
func (r Record) Strings() []string {
	out := make([]string, 0, len(Columns))
	for _, v := range r.Row() {
		switch t := v.(type) {
		case nil:
			out = append(out, "")
		case string:
			out = append(out, t)
		case int:
			out = append(out, strconv.Itoa(t))
		}
	}
	return out
}

func strOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
