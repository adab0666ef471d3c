package razor

import (
	"github.com/itsatony/go-razor/internal"
)

// SourceLocation is a zero-based position in a template or in generated code.
type SourceLocation = internal.SourceLocation

// MappingLocation is a SourceLocation plus the length of the span it starts.
type MappingLocation = internal.MappingLocation

// LineMapping correlates a template span with the generated span holding the
// same text.
type LineMapping = internal.LineMapping

// ParserError is a diagnostic reported while parsing a template or building
// its code tree. It is returned in results, never as a Go error.
type ParserError = internal.RazorError

// SyntaxTree is the parsed form of a template.
type SyntaxTree = internal.SyntaxTree

// TagHelperDescriptor registers a tag helper type for an element name.
type TagHelperDescriptor = internal.TagHelperDescriptor

// TagHelperAttributeDescriptor binds an element attribute to a helper property.
type TagHelperAttributeDescriptor = internal.TagHelperAttributeDescriptor

// LocationAt computes the location of offset within text.
func LocationAt(text string, offset int) SourceLocation {
	return internal.LocationAt(text, offset)
}
