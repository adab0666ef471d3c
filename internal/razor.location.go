package internal

import "fmt"

// SourceLocation is a zero-based position in a text. AbsoluteIndex is
// authoritative; LineIndex and CharacterIndex are derived from it.
type SourceLocation struct {
	AbsoluteIndex  int `yaml:"absolute_index" json:"absolute_index"`
	LineIndex      int `yaml:"line_index" json:"line_index"`
	CharacterIndex int `yaml:"character_index" json:"character_index"`
}

// String returns a human-readable position string
func (l SourceLocation) String() string {
	return fmt.Sprintf("(%d:%d,%d)", l.AbsoluteIndex, l.LineIndex, l.CharacterIndex)
}

// Advance returns the location reached after text is consumed starting at l.
// "\r\n" counts as a single line break.
func (l SourceLocation) Advance(text string) SourceLocation {
	for i := 0; i < len(text); i++ {
		l.AbsoluteIndex++
		switch text[i] {
		case CharNewline:
			l.LineIndex++
			l.CharacterIndex = 0
		case CharCarriageRet:
			if i+1 < len(text) && text[i+1] == CharNewline {
				l.CharacterIndex++
				continue
			}
			l.LineIndex++
			l.CharacterIndex = 0
		default:
			l.CharacterIndex++
		}
	}
	return l
}

// LocationAt computes the location of offset within source.
func LocationAt(source string, offset int) SourceLocation {
	if offset > len(source) {
		offset = len(source)
	}
	return SourceLocation{}.Advance(source[:offset])
}

// MappingLocation is a location plus the length of the span it starts.
type MappingLocation struct {
	SourceLocation `yaml:",inline"`
	ContentLength  int `yaml:"content_length" json:"content_length"`
}

// End returns the absolute index just past the span.
func (m MappingLocation) End() int {
	return m.AbsoluteIndex + m.ContentLength
}

// String returns a human-readable span string
func (m MappingLocation) String() string {
	return fmt.Sprintf("%s+%d", m.SourceLocation, m.ContentLength)
}

// LineMapping correlates a document span with the generated span holding the
// same text.
type LineMapping struct {
	DocumentLocation  MappingLocation `yaml:"document"`
	GeneratedLocation MappingLocation `yaml:"generated"`
}

// String returns a human-readable mapping string
func (m LineMapping) String() string {
	return fmt.Sprintf("%s -> %s", m.DocumentLocation, m.GeneratedLocation)
}
