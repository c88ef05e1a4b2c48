// Package transform holds the pure table transforms that turn the raw
// profile, portfolio and transcript tables into analysis-ready rows.
package transform

import "github.com/boddenberg/offer-prep-go/internal/domain"

// Mapper assigns dense integer codes to raw identifiers in order of first
// appearance. Codes begin at the start value given to NewMapper.
type Mapper struct {
	start int
	codes map[string]int
	order []string
}

// NewMapper returns an empty mapper whose first code is start.
func NewMapper(start int) *Mapper {
	return &Mapper{start: start, codes: make(map[string]int)}
}

// MapIDs builds a mapper over values in the given order.
func MapIDs(values []string, start int) *Mapper {
	m := NewMapper(start)
	for _, v := range values {
		m.Code(v)
	}
	return m
}

// Code returns the code for raw, assigning the next one if raw is new.
func (m *Mapper) Code(raw string) int {
	if c, ok := m.codes[raw]; ok {
		return c
	}
	c := m.start + len(m.order)
	m.codes[raw] = c
	m.order = append(m.order, raw)
	return c
}

// Lookup returns the code for raw without assigning one.
func (m *Mapper) Lookup(raw string) (int, bool) {
	c, ok := m.codes[raw]
	return c, ok
}

// Len is the number of distinct values seen.
func (m *Mapper) Len() int { return len(m.order) }

// Table returns the remapping in first-seen order.
func (m *Mapper) Table() []domain.IDPair {
	out := make([]domain.IDPair, len(m.order))
	for i, raw := range m.order {
		out[i] = domain.IDPair{Raw: raw, Code: m.start + i}
	}
	return out
}
