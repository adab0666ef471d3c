package razor

import (
	"strconv"
	"strings"

	"github.com/itsatony/go-razor/internal"
)

// BuildCodeTree converts a syntax tree into the code tree for the normalized
// path. Semantic problems are returned as diagnostics; the tree holds every
// chunk that could be built.
func BuildCodeTree(path string, tree *SyntaxTree) (*CodeTree, []*ParserError) {
	b := &chunkTreeBuilder{path: path}
	var chunks []Chunk
	if tree != nil && tree.Root != nil {
		chunks = b.build(tree.Root.Children)
	}
	return NewCodeTree(path, chunks), b.errors
}

type chunkTreeBuilder struct {
	path     string
	errors   []*ParserError
	model    *internal.DirectiveNode
	inherits *internal.DirectiveNode
}

func (b *chunkTreeBuilder) build(nodes []internal.Node) []Chunk {
	var chunks []Chunk
	for _, node := range nodes {
		if chunk := b.visit(node); chunk != nil {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

func (b *chunkTreeBuilder) visit(node internal.Node) Chunk {
	switch n := node.(type) {
	case *internal.MarkupNode:
		if n.Content == "" {
			return nil
		}
		return &LiteralChunk{ChunkBase: b.base(n.Start, n.Length), Text: n.Content}
	case *internal.ExpressionNode:
		if strings.TrimSpace(n.Code) == "" {
			return nil
		}
		return &ExpressionChunk{ChunkBase: b.base(n.Start, len(n.Code)), Code: n.Code}
	case *internal.StatementNode:
		if strings.TrimSpace(n.Code) == "" {
			return nil
		}
		return &StatementChunk{ChunkBase: b.base(n.Start, len(n.Code)), Code: n.Code}
	case *internal.BlockNode:
		return &ChunkBlock{ChunkBase: ChunkBase{Path: b.path}, Children: b.build(n.Children)}
	case *internal.DirectiveNode:
		return b.visitDirective(n)
	case *internal.TagHelperNode:
		return b.visitTagHelper(n)
	}
	return nil
}

func (b *chunkTreeBuilder) visitDirective(n *internal.DirectiveNode) Chunk {
	if n.Value == "" {
		return nil
	}

	switch n.Name {
	case internal.DirectiveModel:
		if b.model != nil {
			b.addError(ErrMsgDuplicateModel, n)
			return nil
		}
		b.model = n
		if b.inherits != nil {
			b.addError(ErrMsgModelWithInherits, n)
		}
		modelType := trimDirectiveValue(n.Value)
		return &ModelChunk{ChunkBase: b.base(n.ValueStart, len(modelType)), ModelType: modelType}

	case internal.DirectiveInherits:
		b.inherits = n
		if b.model != nil {
			b.addError(ErrMsgModelWithInherits, n)
		}
		typeName := trimDirectiveValue(n.Value)
		return &SetBaseTypeChunk{ChunkBase: b.base(n.ValueStart, len(typeName)), TypeName: typeName}

	case internal.DirectiveInject:
		declaration := trimDirectiveValue(n.Value)
		name, typeName, ok := splitInject(declaration)
		if !ok {
			b.addError(ErrMsgInjectMalformed, n)
			return nil
		}
		return &InjectChunk{
			ChunkBase:   b.base(n.ValueStart, len(declaration)),
			MemberName:  name,
			TypeName:    typeName,
			Declaration: declaration,
		}

	case internal.DirectiveUsing:
		return b.visitUsing(n)

	case internal.DirectiveAddTagHelper:
		value := trimDirectiveValue(n.Value)
		pattern := value
		if unquoted, err := strconv.Unquote(value); err == nil {
			pattern = unquoted
		}
		return &AddTagHelperChunk{ChunkBase: b.base(n.ValueStart, len(value)), Pattern: pattern, Value: value}
	}
	return nil
}

func (b *chunkTreeBuilder) visitUsing(n *internal.DirectiveNode) Chunk {
	value := trimDirectiveValue(n.Value)
	alias := ""
	literal := value
	if fields := strings.Fields(value); len(fields) == 2 {
		alias = fields[0]
		literal = fields[1]
	} else if len(fields) != 1 {
		b.addError(ErrMsgUsingMalformed, n)
		return nil
	}

	importPath, err := strconv.Unquote(literal)
	if err != nil || importPath == "" || (alias != "" && !isIdentifier(alias)) {
		b.addError(ErrMsgUsingMalformed, n)
		return nil
	}

	literalStart := n.ValueStart.Advance(value[:strings.LastIndex(value, literal)])
	return &UsingChunk{
		ChunkBase:   b.base(literalStart, len(literal)),
		Alias:       alias,
		ImportPath:  importPath,
		PathLiteral: literal,
	}
}

func (b *chunkTreeBuilder) visitTagHelper(n *internal.TagHelperNode) Chunk {
	chunk := &TagHelperChunk{
		ChunkBase:   b.base(n.Start, len(n.TagName)+1),
		TagName:     n.TagName,
		SelfClosing: n.SelfClosing,
		Descriptors: n.Descriptors,
		Children:    b.build(n.Children),
	}
	for _, attr := range n.Attributes {
		a := TagHelperAttributeChunk{Name: attr.Name, Value: attr.Value, HasValue: attr.HasValue}
		if attr.HasValue && attr.Value != "" {
			a.ValueSpan = &MappingLocation{SourceLocation: attr.ValueStart, ContentLength: len(attr.Value)}
		}
		chunk.Attributes = append(chunk.Attributes, a)
	}
	return chunk
}

func (b *chunkTreeBuilder) base(start SourceLocation, length int) ChunkBase {
	return ChunkBase{
		Span: &MappingLocation{SourceLocation: start, ContentLength: length},
		Path: b.path,
	}
}

func (b *chunkTreeBuilder) addError(msg string, n *internal.DirectiveNode) {
	b.errors = append(b.errors, &ParserError{
		Message:  msg,
		Location: n.Start,
		Length:   len(n.Name) + 1,
	})
}

// trimDirectiveValue drops a trailing semicolon and surrounding blanks.
func trimDirectiveValue(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimSuffix(value, ";")
	return strings.TrimSpace(value)
}

// splitInject splits "Name Type" at the first run of blanks.
func splitInject(declaration string) (string, string, bool) {
	i := strings.IndexAny(declaration, " \t")
	if i <= 0 {
		return "", "", false
	}
	name := declaration[:i]
	typeName := strings.TrimSpace(declaration[i:])
	if !isIdentifier(name) || typeName == "" {
		return "", "", false
	}
	return name, typeName, true
}

// isIdentifier reports whether s is a Go identifier (ASCII only).
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '_' || isASCIILetter(ch):
		case i > 0 && ch >= '0' && ch <= '9':
		default:
			return false
		}
	}
	return true
}
