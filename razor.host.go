package razor

import (
	"context"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// GeneratorResults is the outcome of one GenerateCode call.
type GeneratorResults struct {
	// GeneratedCode is the Go source, best effort when there are errors.
	GeneratedCode string
	// Success is true when ParserErrors is empty.
	Success bool
	// ParserErrors holds parser and code tree diagnostics in document order
	// of discovery.
	ParserErrors []*ParserError
	// DesignTimeLineMappings is only set in design-time mode.
	DesignTimeLineMappings []LineMapping
	// CodeTree is the merged tree the code was generated from.
	CodeTree *CodeTree
}

// Host compiles templates into Go source. It is safe for concurrent use; the
// code tree cache is the only shared mutable state.
type Host struct {
	config     *HostConfig
	cache      CodeTreeCache
	normalizer PathNormalizer
	resolver   ChunkInheritanceResolver
	defaults   []Chunk
	logger     *zap.Logger
}

// NewHost creates a host that loads ancestor view start files through cache.
func NewHost(cache CodeTreeCache, opts ...Option) (*Host, error) {
	return newHost(cache, NewHostConfig(opts...))
}

func newHost(cache CodeTreeCache, config *HostConfig) (*Host, error) {
	if cache == nil {
		return nil, NewConfigError(ErrMsgNilCache, ConfigFieldCache, "")
	}
	if !isIdentifier(config.Namespace()) {
		return nil, NewConfigError(ErrMsgInvalidNamespace, ConfigFieldNamespace, config.Namespace())
	}
	if name := config.ClassName(); name != "" && !isIdentifier(name) {
		return nil, NewConfigError(ErrMsgInvalidClassName, ConfigFieldClassName, name)
	}
	if config.ViewStartFileName() == "" {
		return nil, NewConfigError(ErrMsgEmptyViewStartName, ConfigFieldViewStart, "")
	}

	defaults, err := defaultChunks(config)
	if err != nil {
		return nil, err
	}

	h := &Host{
		config:     config,
		cache:      cache,
		normalizer: config.PathNormalizer(),
		defaults:   defaults,
		logger:     config.Logger(),
	}
	h.resolver = config.resolver
	if h.resolver == nil {
		h.resolver = NewChunkInheritanceUtility(h, cache, config.ViewStartFileName(), h.logger)
	}

	h.logger.Debug(LogMsgHostCreated,
		zap.Bool(LogFieldDesignTime, config.DesignTime()),
		zap.Int(LogFieldEntries, len(defaults)))
	return h, nil
}

// defaultChunks turns the configured imports, base type and injects into the
// bottom inheritance layer.
func defaultChunks(config *HostConfig) ([]Chunk, error) {
	var chunks []Chunk
	for _, imp := range config.NamespaceImports() {
		alias := ""
		importPath := strings.TrimSpace(imp)
		if fields := strings.Fields(importPath); len(fields) == 2 {
			alias, importPath = fields[0], fields[1]
		}
		if unquoted, err := strconv.Unquote(importPath); err == nil {
			importPath = unquoted
		}
		if importPath == "" {
			continue
		}
		chunks = append(chunks, &UsingChunk{
			Alias:       alias,
			ImportPath:  importPath,
			PathLiteral: strconv.Quote(importPath),
		})
	}
	if config.BaseType() != "" {
		chunks = append(chunks, &SetBaseTypeChunk{TypeName: config.BaseType()})
	}
	for _, declaration := range config.DefaultInjects() {
		declaration = trimDirectiveValue(declaration)
		name, typeName, ok := splitInject(declaration)
		if !ok {
			return nil, NewConfigError(ErrMsgInvalidInject, ConfigFieldInjects, declaration)
		}
		chunks = append(chunks, &InjectChunk{MemberName: name, TypeName: typeName, Declaration: declaration})
	}
	return chunks, nil
}

// WithConfig returns a host sharing h's cache with opts applied on top of h's
// configuration.
func (h *Host) WithConfig(opts ...Option) (*Host, error) {
	return newHost(h.cache, h.config.With(opts...))
}

// Config returns the host configuration.
func (h *Host) Config() *HostConfig {
	return h.config
}

// Cache returns the code tree cache.
func (h *Host) Cache() CodeTreeCache {
	return h.cache
}

// NormalizePath normalizes a raw template path with the host's normalizer.
func (h *Host) NormalizePath(sourceFile string) string {
	return h.normalizer.NormalizePath(sourceFile)
}

// GenerateCode compiles the template read from input. sourceFile is the raw
// template path. The error is only set when input cannot be read; template
// problems are reported in the result.
func (h *Host) GenerateCode(ctx context.Context, sourceFile string, input io.Reader) (*GeneratorResults, error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return nil, NewReadInputError(sourceFile, err)
	}

	normalized := h.NormalizePath(sourceFile)
	h.logger.Debug(LogMsgGenerateStart,
		zap.String(LogFieldPath, sourceFile),
		zap.String(LogFieldNormalized, normalized),
		zap.Bool(LogFieldDesignTime, h.config.DesignTime()))

	parser := h.DecorateParser(ctx, h.NewParser(), sourceFile)
	syntaxTree := parser.Parse(string(data))
	tree, diagnostics := BuildCodeTree(normalized, syntaxTree)

	var errs []*ParserError
	errs = append(errs, syntaxTree.Errors...)
	errs = append(errs, diagnostics...)

	cbCtx := h.NewCodeBuilderContext(sourceFile, tree, errs)
	builder := h.DecorateCodeBuilder(ctx, h.newCodeBuilder(cbCtx), cbCtx)
	built := builder.Build()

	results := &GeneratorResults{
		GeneratedCode: built.Code,
		Success:       len(errs) == 0,
		ParserErrors:  errs,
		CodeTree:      cbCtx.CodeTree,
	}
	if h.config.DesignTime() {
		results.DesignTimeLineMappings = built.DesignTimeLineMappings
	}

	h.logger.Debug(LogMsgGenerateComplete,
		zap.String(LogFieldNormalized, normalized),
		zap.Int(LogFieldErrors, len(errs)),
		zap.Int(LogFieldMappings, len(results.DesignTimeLineMappings)),
		zap.Int(LogFieldCodeLength, len(results.GeneratedCode)))
	return results, nil
}

// NewParser returns an undecorated parser knowing the registered tag helpers.
func (h *Host) NewParser() TemplateParser {
	return NewRazorParser(h.config.TagHelpers(), h.logger)
}

// DecorateParser enables the tag helpers registered by the page's ancestors.
// Inheritance is resolved with the normalized form of sourceFile. Parsers
// other than *RazorParser are returned unchanged.
func (h *Host) DecorateParser(ctx context.Context, parser TemplateParser, sourceFile string) TemplateParser {
	inherited := h.resolver.GetInheritedCodeTrees(ctx, h.NormalizePath(sourceFile))
	rp, ok := parser.(*RazorParser)
	if !ok {
		return parser
	}
	patterns := inheritedTagHelperPatterns(inherited)
	if len(patterns) == 0 {
		return rp
	}
	return rp.WithTagHelperPatterns(patterns...)
}

// NewCodeBuilderContext creates the builder context of one compilation.
func (h *Host) NewCodeBuilderContext(sourceFile string, tree *CodeTree, errs []*ParserError) *CodeBuilderContext {
	normalized := h.NormalizePath(sourceFile)
	className := h.config.ClassName()
	if className == "" {
		className = ClassNameForPath(normalized)
	}
	idFactory := h.config.idGeneratorFactory
	if idFactory == nil {
		idFactory = defaultIDGeneratorFactory
	}
	return &CodeBuilderContext{
		SourceFile:     sourceFile,
		NormalizedPath: normalized,
		ClassName:      className,
		Namespace:      h.config.Namespace(),
		Config:         h.config,
		CodeTree:       tree,
		IDGenerator:    idFactory(h.config.DesignTime()),
		Errors:         errs,
	}
}

// DecorateCodeBuilder merges the host defaults and the inheritable chunks of
// the page's ancestors into cbCtx.CodeTree.
func (h *Host) DecorateCodeBuilder(ctx context.Context, builder CodeBuilder, cbCtx *CodeBuilderContext) CodeBuilder {
	inherited := h.resolver.GetInheritedCodeTrees(ctx, cbCtx.NormalizedPath)
	cbCtx.CodeTree = MergeInheritedCodeTrees(cbCtx.CodeTree, inherited, h.defaults)
	h.logger.Debug(LogMsgInheritanceResolved,
		zap.String(LogFieldNormalized, cbCtx.NormalizedPath),
		zap.Int(LogFieldAncestors, len(inherited)))
	return builder
}

// ParseViewFile builds the code tree of an ancestor file with the undecorated
// pipeline. Diagnostics are dropped; a malformed file contributes whatever
// chunks could be built.
func (h *Host) ParseViewFile(ctx context.Context, normalizedPath, content string) *CodeTree {
	syntaxTree := h.NewParser().Parse(content)
	tree, _ := BuildCodeTree(normalizedPath, syntaxTree)
	return tree
}

func (h *Host) newCodeBuilder(cbCtx *CodeBuilderContext) CodeBuilder {
	if h.config.codeBuilderFactory != nil {
		return h.config.codeBuilderFactory(cbCtx)
	}
	return NewGoCodeBuilder(cbCtx)
}
