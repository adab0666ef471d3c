package razor

import (
	"fmt"
)

// Chunk is one node of a code tree.
type Chunk interface {
	// Association is the document span the chunk was built from, nil for
	// synthesized chunks.
	Association() *MappingLocation
	// DeclaringPath is the normalized path of the template that declared the
	// chunk, "" for host defaults.
	DeclaringPath() string
	// Inheritable reports whether the chunk is merged into descendant pages.
	Inheritable() bool
	String() string
}

// ParentChunk is a chunk that owns ordered children.
type ParentChunk interface {
	Chunk
	ChildChunks() []Chunk
}

// ChunkBase carries the association and declaring path shared by all chunks.
type ChunkBase struct {
	Span *MappingLocation
	Path string
}

// Association implements Chunk.
func (c *ChunkBase) Association() *MappingLocation { return c.Span }

// DeclaringPath implements Chunk.
func (c *ChunkBase) DeclaringPath() string { return c.Path }

// Inheritable implements Chunk.
func (c *ChunkBase) Inheritable() bool { return false }

// LiteralChunk is markup written verbatim.
type LiteralChunk struct {
	ChunkBase
	Text string
}

func (c *LiteralChunk) String() string { return fmt.Sprintf("Literal(%q)", c.Text) }

// ExpressionChunk is code whose value is written to the output.
type ExpressionChunk struct {
	ChunkBase
	Code string
}

func (c *ExpressionChunk) String() string { return fmt.Sprintf("Expression(%s)", c.Code) }

// StatementChunk is code emitted as-is.
type StatementChunk struct {
	ChunkBase
	Code string
}

func (c *StatementChunk) String() string { return fmt.Sprintf("Statement(%s)", c.Code) }

// UsingChunk is a namespace import. Span covers the quoted import path.
type UsingChunk struct {
	ChunkBase
	Alias       string
	ImportPath  string
	PathLiteral string
}

// Inheritable implements Chunk.
func (c *UsingChunk) Inheritable() bool { return true }

func (c *UsingChunk) String() string { return fmt.Sprintf("Using(%s %s)", c.Alias, c.PathLiteral) }

// key identifies an import for de-duplication.
func (c *UsingChunk) key() string { return c.Alias + " " + c.ImportPath }

// ModelChunk declares the model type.
type ModelChunk struct {
	ChunkBase
	ModelType string
}

func (c *ModelChunk) String() string { return fmt.Sprintf("Model(%s)", c.ModelType) }

// SetBaseTypeChunk declares the embedded base type.
type SetBaseTypeChunk struct {
	ChunkBase
	TypeName string
}

// Inheritable implements Chunk.
func (c *SetBaseTypeChunk) Inheritable() bool { return true }

func (c *SetBaseTypeChunk) String() string { return fmt.Sprintf("SetBaseType(%s)", c.TypeName) }

// InjectChunk declares an injected member. Span covers Declaration, the
// directive value without its trailing semicolon.
type InjectChunk struct {
	ChunkBase
	MemberName  string
	TypeName    string
	Declaration string
}

// Inheritable implements Chunk.
func (c *InjectChunk) Inheritable() bool { return true }

func (c *InjectChunk) String() string { return fmt.Sprintf("Inject(%s %s)", c.MemberName, c.TypeName) }

// AddTagHelperChunk enables registered tag helpers matching Pattern. Value is
// the directive text as written.
type AddTagHelperChunk struct {
	ChunkBase
	Pattern string
	Value   string
}

// Inheritable implements Chunk.
func (c *AddTagHelperChunk) Inheritable() bool { return true }

func (c *AddTagHelperChunk) String() string { return fmt.Sprintf("AddTagHelper(%s)", c.Value) }

// TagHelperAttributeChunk is one attribute of a tag helper element.
type TagHelperAttributeChunk struct {
	Name     string
	Value    string
	HasValue bool
	// ValueSpan locates Value in the document, nil when there is no value.
	ValueSpan *MappingLocation
}

// TagHelperChunk is an element rendered through tag helpers.
type TagHelperChunk struct {
	ChunkBase
	TagName     string
	SelfClosing bool
	Descriptors []*TagHelperDescriptor
	Attributes  []TagHelperAttributeChunk
	Children    []Chunk
}

// ChildChunks implements ParentChunk.
func (c *TagHelperChunk) ChildChunks() []Chunk { return c.Children }

func (c *TagHelperChunk) String() string {
	return fmt.Sprintf("TagHelper(%s, attrs=%d, children=%d)", c.TagName, len(c.Attributes), len(c.Children))
}

// ChunkBlock groups the chunks of a control-flow construct.
type ChunkBlock struct {
	ChunkBase
	Children []Chunk
}

// ChildChunks implements ParentChunk.
func (c *ChunkBlock) ChildChunks() []Chunk { return c.Children }

func (c *ChunkBlock) String() string { return fmt.Sprintf("Block(children=%d)", len(c.Children)) }

// CodeTree is the chunk tree of one template. It is immutable once built and
// may be shared between compilations.
type CodeTree struct {
	path   string
	chunks []Chunk
}

// NewCodeTree creates a code tree for the normalized path.
func NewCodeTree(path string, chunks []Chunk) *CodeTree {
	return &CodeTree{
		path:   path,
		chunks: append([]Chunk(nil), chunks...),
	}
}

// Path returns the normalized template path.
func (t *CodeTree) Path() string {
	return t.path
}

// Chunks returns the root chunks.
func (t *CodeTree) Chunks() []Chunk {
	return append([]Chunk(nil), t.chunks...)
}

// Len returns the number of root chunks.
func (t *CodeTree) Len() int {
	return len(t.chunks)
}

// WalkChunks calls fn for chunks and their descendants depth-first, parents
// first.
func WalkChunks(chunks []Chunk, fn func(Chunk)) {
	for _, chunk := range chunks {
		fn(chunk)
		if parent, ok := chunk.(ParentChunk); ok {
			WalkChunks(parent.ChildChunks(), fn)
		}
	}
}

// InheritableChunks returns the inheritable chunks of the tree in document
// order, including nested ones.
func (t *CodeTree) InheritableChunks() []Chunk {
	var result []Chunk
	WalkChunks(t.chunks, func(c Chunk) {
		if c.Inheritable() {
			result = append(result, c)
		}
	})
	return result
}
