package razor

import (
	"path"
	"strconv"
	"strings"

	"github.com/itsatony/go-razor/internal"
)

// CodeBuilderContext carries everything a code builder needs for one
// compilation. DecorateCodeBuilder replaces CodeTree with the merged tree
// before Build runs.
type CodeBuilderContext struct {
	SourceFile     string
	NormalizedPath string
	ClassName      string
	Namespace      string
	Config         *HostConfig
	CodeTree       *CodeTree
	IDGenerator    IDGenerator
	Errors         []*ParserError
}

// CodeBuilderResult is the output of a code builder.
type CodeBuilderResult struct {
	Code                   string
	DesignTimeLineMappings []LineMapping
}

// CodeBuilder generates code for a CodeBuilderContext.
type CodeBuilder interface {
	Build() *CodeBuilderResult
}

// CodeBuilderFactory creates the code builder of one compilation.
type CodeBuilderFactory func(ctx *CodeBuilderContext) CodeBuilder

// GoCodeBuilder is the default CodeBuilder. It emits a Go type embedding the
// page base type with an Execute method that writes the template output.
type GoCodeBuilder struct {
	ctx *CodeBuilderContext
	w   *internal.CodeWriter

	designTime      bool
	instrumentation bool
	linePragmas     bool

	modelType  string
	baseType   string
	imports    []*UsingChunk
	injects    []*InjectChunk
	directives []Chunk

	tagHelpers     *TagHelperRenderer
	mappings       []LineMapping
	helperMappings []LineMapping
}

// NewGoCodeBuilder creates the default code builder. It satisfies
// CodeBuilderFactory.
func NewGoCodeBuilder(ctx *CodeBuilderContext) CodeBuilder {
	return &GoCodeBuilder{ctx: ctx}
}

// Build implements CodeBuilder.
func (b *GoCodeBuilder) Build() *CodeBuilderResult {
	config := b.ctx.Config
	if config == nil {
		config = DefaultHostConfig()
	}
	ids := b.ctx.IDGenerator
	if ids == nil {
		ids = defaultIDGeneratorFactory(config.DesignTime())
	}

	b.w = internal.NewCodeWriter()
	b.mappings = nil
	b.helperMappings = nil
	b.designTime = config.DesignTime()
	b.instrumentation = config.InstrumentationActive()
	b.linePragmas = config.LinePragmas()
	b.collect(config)
	b.tagHelpers = NewTagHelperRenderer(b, config.TagHelperContext(), ids)

	b.writeHeader()
	b.writeImports()
	b.writeClass()
	if b.designTime {
		b.writeDesignTimeHelpers()
		b.helperMappings, b.mappings = b.mappings, nil
	}
	b.writeExecute()

	result := &CodeBuilderResult{Code: b.w.GenerateCode()}
	if b.designTime {
		result.DesignTimeLineMappings = orderMappings(b.helperMappings, b.mappings)
	}
	return result
}

// collect gathers the class-level declarations of the tree.
func (b *GoCodeBuilder) collect(config *HostConfig) {
	b.modelType = config.DefaultModel()
	b.baseType = ""
	b.imports = nil
	b.injects = nil
	b.directives = nil

	modelSet := false
	seenImports := make(map[string]bool)
	WalkChunks(b.chunks(), func(c Chunk) {
		switch chunk := c.(type) {
		case *UsingChunk:
			if !seenImports[chunk.key()] {
				seenImports[chunk.key()] = true
				b.imports = append(b.imports, chunk)
			}
		case *ModelChunk:
			if !modelSet {
				modelSet = true
				b.modelType = chunk.ModelType
			}
		case *SetBaseTypeChunk:
			b.baseType = chunk.TypeName
		case *InjectChunk:
			b.injects = append(b.injects, chunk)
		case *AddTagHelperChunk:
		default:
			return
		}
		if b.isDocumentChunk(c) {
			b.directives = append(b.directives, c)
		}
	})
}

func (b *GoCodeBuilder) chunks() []Chunk {
	if b.ctx.CodeTree == nil {
		return nil
	}
	return b.ctx.CodeTree.Chunks()
}

// isDocumentChunk reports whether c was declared by the template being
// generated and can be traced back to it.
func (b *GoCodeBuilder) isDocumentChunk(c Chunk) bool {
	if c.Association() == nil || b.ctx.CodeTree == nil {
		return false
	}
	return c.DeclaringPath() == b.ctx.CodeTree.Path()
}

func (b *GoCodeBuilder) writeHeader() {
	b.w.WriteLine(GeneratedHeaderPrefix + b.ctx.NormalizedPath + GeneratedHeaderSuffix)
	b.w.WriteLine("")
	b.w.WriteLine(GeneratedPackage + b.ctx.Namespace)
	b.w.WriteLine("")
}

func (b *GoCodeBuilder) writeImports() {
	if len(b.imports) == 0 {
		return
	}
	b.w.WriteLine(GeneratedImportOpen)
	b.w.IncreaseIndent()
	for _, imp := range b.imports {
		spec := strconv.Quote(imp.ImportPath)
		if imp.Alias != "" {
			spec = imp.Alias + " " + spec
		}
		b.w.WriteLine(spec)
	}
	b.w.DecreaseIndent()
	b.w.WriteLine(GeneratedImportClose)
	b.w.WriteLine("")
}

func (b *GoCodeBuilder) writeClass() {
	b.w.WriteLine(GeneratedTypePrefix + b.ctx.ClassName + GeneratedStructOpen)
	b.w.IncreaseIndent()
	if b.baseType != "" {
		b.w.WriteLine(b.replaceModel(b.baseType))
	}
	for _, inject := range b.injects {
		b.w.WriteLine(inject.MemberName + " " + b.replaceModel(inject.TypeName) + GeneratedInjectTag)
	}
	b.w.DecreaseIndent()
	b.w.WriteLine(GeneratedBlockClose)
	b.w.WriteLine("")
}

// writeDesignTimeHelpers emits one statement per directive of the document
// so editors can resolve the types and import paths it names.
func (b *GoCodeBuilder) writeDesignTimeHelpers() {
	if len(b.directives) == 0 {
		return
	}
	b.w.WriteLine(GeneratedReceiverPrefix + b.ctx.ClassName + GeneratedHelpersSuffix)
	b.w.IncreaseIndent()
	for _, c := range b.directives {
		span := c.Association()
		switch chunk := c.(type) {
		case *UsingChunk:
			b.writeCodeLine(GeneratedDiscard, chunk.PathLiteral, "", span, true)
		case *ModelChunk:
			b.writeCodeLine(GeneratedVarDiscard, chunk.ModelType, "", span, true)
		case *SetBaseTypeChunk:
			if containsModelPlaceholder(chunk.TypeName) {
				b.w.WriteLine(GeneratedVarDiscard + b.replaceModel(chunk.TypeName))
				continue
			}
			b.writeCodeLine(GeneratedVarDiscard, chunk.TypeName, "", span, true)
		case *InjectChunk:
			if containsModelPlaceholder(chunk.TypeName) {
				nameSpan := &MappingLocation{SourceLocation: span.SourceLocation, ContentLength: len(chunk.MemberName)}
				b.writeCodeLine(GeneratedFuncParamOpen, chunk.MemberName, " "+b.replaceModel(chunk.TypeName)+GeneratedFuncParamClose, nameSpan, true)
				continue
			}
			b.writeCodeLine(GeneratedFuncParamOpen, chunk.Declaration, GeneratedFuncParamClose, span, true)
		case *AddTagHelperChunk:
			if _, err := strconv.Unquote(chunk.Value); err != nil {
				b.w.WriteLine(GeneratedDiscard + strconv.Quote(chunk.Pattern))
				continue
			}
			b.writeCodeLine(GeneratedDiscard, chunk.Value, "", span, true)
		}
	}
	b.w.DecreaseIndent()
	b.w.WriteLine(GeneratedBlockClose)
	b.w.WriteLine("")
}

func (b *GoCodeBuilder) writeExecute() {
	b.w.WriteLine(GeneratedReceiverPrefix + b.ctx.ClassName + GeneratedExecuteSuffix)
	b.w.IncreaseIndent()
	if b.baseType != "" {
		b.w.WriteLine(GeneratedModelVariable + GeneratedPageField + GeneratedModelVariable)
		b.w.WriteLine(GeneratedDiscard + GeneratedModelVariable)
	}
	for _, inject := range b.injects {
		b.w.WriteLine(inject.MemberName + GeneratedPageField + inject.MemberName)
		b.w.WriteLine(GeneratedDiscard + inject.MemberName)
	}
	b.writeChunks(b.chunks())
	b.w.EnsureNewLine()
	b.w.WriteLine(GeneratedReturnNil)
	b.w.DecreaseIndent()
	b.w.WriteLine(GeneratedBlockClose)
}

// writeChunks visits chunks depth-first, left to right.
func (b *GoCodeBuilder) writeChunks(chunks []Chunk) {
	for _, c := range chunks {
		b.writeChunk(c)
	}
}

func (b *GoCodeBuilder) writeChunk(c Chunk) {
	switch chunk := c.(type) {
	case *LiteralChunk:
		b.writeLiteral(chunk)
	case *ExpressionChunk:
		b.beginContext(chunk.Span, false)
		b.writeCodeLine(WriteMethod, chunk.Code, CallClose, chunk.Span, b.isDocumentChunk(chunk))
		b.endContext(chunk.Span)
	case *StatementChunk:
		b.writeCodeLine("", chunk.Code, "", chunk.Span, b.isDocumentChunk(chunk))
	case *ChunkBlock:
		b.writeBlock(chunk)
	case *TagHelperChunk:
		b.tagHelpers.RenderTagHelper(chunk)
	}
}

func (b *GoCodeBuilder) writeLiteral(chunk *LiteralChunk) {
	b.beginContext(chunk.Span, true)
	b.w.EnsureNewLine()
	b.w.Write(WriteLiteralMethod)
	b.w.WriteStringLiteral(chunk.Text)
	b.w.WriteLine(CallClose)
	b.endContext(chunk.Span)
}

// writeBlock indents the body of a control-flow construct. The first child
// opens the block; statements starting with '}' close it and, unless they are
// last, reopen it.
func (b *GoCodeBuilder) writeBlock(block *ChunkBlock) {
	saved := b.w.Indent()
	last := len(block.Children) - 1
	for i, child := range block.Children {
		if st, ok := child.(*StatementChunk); ok && i > 0 && strings.HasPrefix(strings.TrimSpace(st.Code), GeneratedBlockClose) {
			b.w.DecreaseIndent()
			b.writeChunk(child)
			if i < last {
				b.w.IncreaseIndent()
			}
			continue
		}
		b.writeChunk(child)
		if i == 0 {
			b.w.IncreaseIndent()
		}
	}
	b.setIndent(saved)
}

func (b *GoCodeBuilder) setIndent(level int) {
	for b.w.Indent() > level {
		b.w.DecreaseIndent()
	}
	for b.w.Indent() < level {
		b.w.IncreaseIndent()
	}
}

// writeCodeLine writes prefix+code+suffix on a line of its own. In design-time
// mode a document chunk's code is mapped back to span; the line is padded so
// the code lands on the document column when the prefix fits.
func (b *GoCodeBuilder) writeCodeLine(prefix, code, suffix string, span *MappingLocation, document bool) {
	pragma := b.linePragmas && span != nil && document
	if pragma {
		b.w.WriteLinePragma(b.ctx.NormalizedPath, span.LineIndex+1)
	}

	b.w.EnsureNewLine()
	if b.designTime && document && span != nil && code != "" {
		b.w.WritePadding(span.CharacterIndex - len(prefix))
		b.w.Write(prefix)
		generated := b.w.Location()
		b.w.Write(code)
		b.w.WriteLine(suffix)
		b.mappings = append(b.mappings, LineMapping{
			DocumentLocation:  MappingLocation{SourceLocation: span.SourceLocation, ContentLength: len(code)},
			GeneratedLocation: MappingLocation{SourceLocation: generated, ContentLength: len(code)},
		})
	} else {
		b.w.WriteLine(prefix + code + suffix)
	}

	if pragma {
		b.w.WriteLinePragmaReset(b.ctx.NormalizedPath + GeneratedFileExtension)
	}
}

func (b *GoCodeBuilder) beginContext(span *MappingLocation, isLiteral bool) {
	if !b.instrumentation || span == nil {
		return
	}
	b.w.EnsureNewLine()
	b.w.WriteLine(BeginContextMethod +
		strconv.Itoa(span.AbsoluteIndex) + ", " +
		strconv.Itoa(span.ContentLength) + ", " +
		strconv.FormatBool(isLiteral) + CallClose)
}

func (b *GoCodeBuilder) endContext(span *MappingLocation) {
	if !b.instrumentation || span == nil {
		return
	}
	b.w.WriteLine(EndContextCall)
}

// replaceModel substitutes the model type for every TModel identifier.
func (b *GoCodeBuilder) replaceModel(typeName string) string {
	return replaceIdentifier(typeName, ModelPlaceholder, b.modelType)
}

func containsModelPlaceholder(typeName string) bool {
	return replaceIdentifier(typeName, ModelPlaceholder, "") != typeName
}

// replaceIdentifier replaces whole-identifier occurrences of old in s.
func replaceIdentifier(s, old, replacement string) string {
	var sb strings.Builder
	i := 0
	for {
		j := strings.Index(s[i:], old)
		if j < 0 {
			sb.WriteString(s[i:])
			return sb.String()
		}
		start := i + j
		end := start + len(old)
		boundary := (start == 0 || !isIdentByte(s[start-1])) && (end == len(s) || !isIdentByte(s[end]))
		sb.WriteString(s[i:start])
		if boundary {
			sb.WriteString(replacement)
		} else {
			sb.WriteString(old)
		}
		i = end
	}
}

func isIdentByte(ch byte) bool {
	return ch == '_' || isASCIILetter(ch) || (ch >= '0' && ch <= '9')
}

// monotonicMappings drops mappings whose document span starts before the end
// of the previously kept one, so both sides of the result are ordered and
// non-overlapping.
func monotonicMappings(mappings []LineMapping) []LineMapping {
	var result []LineMapping
	docEnd := 0
	for _, m := range mappings {
		if m.DocumentLocation.ContentLength <= 0 || m.DocumentLocation.AbsoluteIndex < docEnd {
			continue
		}
		result = append(result, m)
		docEnd = m.DocumentLocation.End()
	}
	return result
}

// orderMappings keeps the body mappings and those directive helper mappings
// that end before the first body mapping starts in the document. Helpers
// precede the body in the generated code.
func orderMappings(helpers, body []LineMapping) []LineMapping {
	body = monotonicMappings(body)
	if len(body) > 0 {
		limit := body[0].DocumentLocation.AbsoluteIndex
		var kept []LineMapping
		for _, m := range helpers {
			if m.DocumentLocation.End() <= limit {
				kept = append(kept, m)
			}
		}
		helpers = kept
	}
	return append(monotonicMappings(helpers), body...)
}

// ClassNameForPath derives a Go type name from a normalized template path:
// the extension is dropped and path segments are joined with '_'.
func ClassNameForPath(normalizedPath string) string {
	trimmed := strings.TrimSuffix(normalizedPath, path.Ext(normalizedPath))
	var sb strings.Builder
	for _, segment := range strings.Split(trimmed, pathSeparator) {
		if segment == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('_')
		}
		for i := 0; i < len(segment); i++ {
			if isIdentByte(segment[i]) {
				sb.WriteByte(segment[i])
			} else {
				sb.WriteByte('_')
			}
		}
	}
	name := sb.String()
	if name == "" {
		return DefaultClassName
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}
