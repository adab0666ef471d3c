package internal

import (
	"strings"
)

// TagHelperAttributeDescriptor binds an HTML attribute to a helper property.
type TagHelperAttributeDescriptor struct {
	Name         string `yaml:"name" json:"name"`
	PropertyName string `yaml:"property" json:"property"`
	TypeName     string `yaml:"type" json:"type"`
}

// TagHelperDescriptor describes a tag helper type and the element it targets.
type TagHelperDescriptor struct {
	TagName    string                         `yaml:"tag" json:"tag"`
	TypeName   string                         `yaml:"type" json:"type"`
	Attributes []TagHelperAttributeDescriptor `yaml:"attributes" json:"attributes"`
}

// Attribute looks up a bound attribute by name, ignoring case.
func (d *TagHelperDescriptor) Attribute(name string) (*TagHelperAttributeDescriptor, bool) {
	for i := range d.Attributes {
		if strings.EqualFold(d.Attributes[i].Name, name) {
			return &d.Attributes[i], true
		}
	}
	return nil, false
}

// MatchesPattern reports whether an @addTagHelper pattern selects d.
// "*" selects everything, "prefix*" selects type names with that prefix,
// anything else must equal the type name.
func (d *TagHelperDescriptor) MatchesPattern(pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == TagHelperPatternAll {
		return true
	}
	if strings.HasSuffix(pattern, TagHelperPatternWildcard) {
		return strings.HasPrefix(d.TypeName, strings.TrimSuffix(pattern, TagHelperPatternWildcard))
	}
	return d.TypeName == pattern
}

// TagHelperSet holds the descriptors enabled for one parse, keyed by the
// lower-cased tag name. Registration order is preserved per tag.
type TagHelperSet struct {
	registered []*TagHelperDescriptor
	enabled    map[string][]*TagHelperDescriptor
}

// NewTagHelperSet creates a set that can enable any of registered.
func NewTagHelperSet(registered []*TagHelperDescriptor) *TagHelperSet {
	return &TagHelperSet{
		registered: registered,
		enabled:    make(map[string][]*TagHelperDescriptor),
	}
}

// Enable turns on every registered descriptor selected by pattern and
// returns how many were newly enabled.
func (s *TagHelperSet) Enable(pattern string) int {
	count := 0
	for _, d := range s.registered {
		if !d.MatchesPattern(pattern) {
			continue
		}
		key := strings.ToLower(d.TagName)
		if containsDescriptor(s.enabled[key], d) {
			continue
		}
		s.enabled[key] = append(s.enabled[key], d)
		count++
	}
	return count
}

// Match returns the enabled descriptors targeting tagName.
func (s *TagHelperSet) Match(tagName string) []*TagHelperDescriptor {
	if s == nil {
		return nil
	}
	return s.enabled[strings.ToLower(tagName)]
}

// Clone returns an independent copy of the set.
func (s *TagHelperSet) Clone() *TagHelperSet {
	clone := NewTagHelperSet(s.registered)
	for k, v := range s.enabled {
		clone.enabled[k] = append([]*TagHelperDescriptor(nil), v...)
	}
	return clone
}

// Len returns the number of enabled descriptors.
func (s *TagHelperSet) Len() int {
	n := 0
	for _, v := range s.enabled {
		n += len(v)
	}
	return n
}

func containsDescriptor(list []*TagHelperDescriptor, d *TagHelperDescriptor) bool {
	for _, existing := range list {
		if existing == d {
			return true
		}
	}
	return false
}
