package razor

import (
	"go.uber.org/zap"

	"github.com/itsatony/go-razor/internal"
)

// TemplateParser turns template text into a syntax tree. Problems are
// reported in SyntaxTree.Errors; Parse never fails.
type TemplateParser interface {
	Parse(source string) *SyntaxTree
}

// RazorParser is the default TemplateParser.
type RazorParser struct {
	descriptors []*TagHelperDescriptor
	patterns    []string
	logger      *zap.Logger
}

// NewRazorParser creates a parser that knows descriptors. Templates enable
// them with @addTagHelper.
func NewRazorParser(descriptors []*TagHelperDescriptor, logger *zap.Logger) *RazorParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RazorParser{
		descriptors: append([]*TagHelperDescriptor(nil), descriptors...),
		logger:      logger,
	}
}

// WithTagHelperPatterns returns a copy of p that starts every parse with the
// tag helpers selected by patterns already enabled.
func (p *RazorParser) WithTagHelperPatterns(patterns ...string) *RazorParser {
	clone := *p
	clone.patterns = append(append([]string(nil), p.patterns...), patterns...)
	return &clone
}

// TagHelperPatterns returns the patterns enabled before parsing starts.
func (p *RazorParser) TagHelperPatterns() []string {
	return append([]string(nil), p.patterns...)
}

// Parse implements TemplateParser.
func (p *RazorParser) Parse(source string) *SyntaxTree {
	set := internal.NewTagHelperSet(p.descriptors)
	for _, pattern := range p.patterns {
		set.Enable(pattern)
	}
	return internal.NewParser(source, internal.ParserOptions{TagHelpers: set}, p.logger).Parse()
}
