package internal

import (
	"fmt"
	"strings"
)

// NodeKind identifies syntax tree node kinds
type NodeKind int

// Node kind constants
const (
	NodeKindRoot NodeKind = iota
	NodeKindMarkup
	NodeKindExpression
	NodeKindStatement
	NodeKindDirective
	NodeKindBlock
	NodeKindTagHelper
)

// Node kind string names for debugging
const (
	NodeKindNameRoot       = "ROOT"
	NodeKindNameMarkup     = "MARKUP"
	NodeKindNameExpression = "EXPRESSION"
	NodeKindNameStatement  = "STATEMENT"
	NodeKindNameDirective  = "DIRECTIVE"
	NodeKindNameBlock      = "BLOCK"
	NodeKindNameTagHelper  = "TAG_HELPER"
)

// String returns the string representation of the node kind
func (k NodeKind) String() string {
	switch k {
	case NodeKindMarkup:
		return NodeKindNameMarkup
	case NodeKindExpression:
		return NodeKindNameExpression
	case NodeKindStatement:
		return NodeKindNameStatement
	case NodeKindDirective:
		return NodeKindNameDirective
	case NodeKindBlock:
		return NodeKindNameBlock
	case NodeKindTagHelper:
		return NodeKindNameTagHelper
	default:
		return NodeKindNameRoot
	}
}

// Node is the interface all syntax tree nodes implement
type Node interface {
	Kind() NodeKind
	// Location is where the node's content starts in the document.
	Location() SourceLocation
	String() string
}

// RootNode is the top-level container of a syntax tree
type RootNode struct {
	Children []Node
}

func (n *RootNode) Kind() NodeKind           { return NodeKindRoot }
func (n *RootNode) Location() SourceLocation { return SourceLocation{} }

func (n *RootNode) String() string {
	var sb strings.Builder
	sb.WriteString("RootNode{\n")
	for i, child := range n.Children {
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", i, child.String()))
	}
	sb.WriteString("}")
	return sb.String()
}

// MarkupNode is literal output text. Content may differ from the document
// text it was read from (escaped transitions), so the document length is
// tracked separately.
type MarkupNode struct {
	Start   SourceLocation
	Content string
	Length  int
}

func (n *MarkupNode) Kind() NodeKind           { return NodeKindMarkup }
func (n *MarkupNode) Location() SourceLocation { return n.Start }

func (n *MarkupNode) String() string {
	return fmt.Sprintf("MarkupNode{%q @ %s}", truncate(n.Content), n.Start)
}

// ExpressionNode is a code expression whose value is written to the output.
// Start and Code describe the code content without the transition or parens.
type ExpressionNode struct {
	Start    SourceLocation
	Code     string
	Explicit bool
}

func (n *ExpressionNode) Kind() NodeKind           { return NodeKindExpression }
func (n *ExpressionNode) Location() SourceLocation { return n.Start }

func (n *ExpressionNode) String() string {
	return fmt.Sprintf("ExpressionNode{%q @ %s}", truncate(n.Code), n.Start)
}

// StatementNode is code emitted verbatim without output.
type StatementNode struct {
	Start SourceLocation
	Code  string
}

func (n *StatementNode) Kind() NodeKind           { return NodeKindStatement }
func (n *StatementNode) Location() SourceLocation { return n.Start }

func (n *StatementNode) String() string {
	return fmt.Sprintf("StatementNode{%q @ %s}", truncate(n.Code), n.Start)
}

// DirectiveNode is an "@keyword value" line.
type DirectiveNode struct {
	Start      SourceLocation // position of the transition
	Name       string
	Value      string
	ValueStart SourceLocation
}

func (n *DirectiveNode) Kind() NodeKind           { return NodeKindDirective }
func (n *DirectiveNode) Location() SourceLocation { return n.ValueStart }

func (n *DirectiveNode) String() string {
	return fmt.Sprintf("DirectiveNode{%s %q @ %s}", n.Name, truncate(n.Value), n.ValueStart)
}

// BlockNode groups a control-flow construct: its header, continuation and
// closing statements interleaved with the markup bodies.
type BlockNode struct {
	Start    SourceLocation
	Keyword  string
	Children []Node
}

func (n *BlockNode) Kind() NodeKind           { return NodeKindBlock }
func (n *BlockNode) Location() SourceLocation { return n.Start }

func (n *BlockNode) String() string {
	return fmt.Sprintf("BlockNode{%s, children=%d @ %s}", n.Keyword, len(n.Children), n.Start)
}

// TagHelperAttributeNode is one attribute of a tag helper element.
type TagHelperAttributeNode struct {
	Name       string
	Value      string
	ValueStart SourceLocation
	HasValue   bool
}

// TagHelperNode is an element bound to one or more tag helpers.
type TagHelperNode struct {
	Start       SourceLocation
	TagName     string
	SelfClosing bool
	Attributes  []TagHelperAttributeNode
	Children    []Node
	Descriptors []*TagHelperDescriptor
}

func (n *TagHelperNode) Kind() NodeKind           { return NodeKindTagHelper }
func (n *TagHelperNode) Location() SourceLocation { return n.Start }

func (n *TagHelperNode) String() string {
	return fmt.Sprintf("TagHelperNode{%s, attrs=%d, children=%d @ %s}", n.TagName, len(n.Attributes), len(n.Children), n.Start)
}

// RazorError is a diagnostic produced while parsing or building a template.
type RazorError struct {
	Message  string         `yaml:"message" json:"message"`
	Location SourceLocation `yaml:"location" json:"location"`
	Length   int            `yaml:"length" json:"length"`
}

// Error implements the error interface.
func (e *RazorError) Error() string {
	return e.Message + " at " + e.Location.String()
}

// SyntaxTree is the result of parsing one document.
type SyntaxTree struct {
	Source string
	Root   *RootNode
	Errors []*RazorError
}

// Walk calls fn for every node depth-first, parents before children.
func Walk(nodes []Node, fn func(Node)) {
	for _, node := range nodes {
		fn(node)
		switch n := node.(type) {
		case *BlockNode:
			Walk(n.Children, fn)
		case *TagHelperNode:
			Walk(n.Children, fn)
		}
	}
}

func truncate(s string) string {
	if len(s) > MaxStringDisplayLength {
		return s[:TruncatedStringLength] + TruncationSuffix
	}
	return s
}
