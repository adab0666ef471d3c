package razor

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring a Host.
type Option func(*HostConfig)

// GeneratedTagHelperContext names the runtime members generated tag helper
// code calls.
type GeneratedTagHelperContext struct {
	ScopeManager                string
	CreateTagHelperMethod       string
	RunTagHelperMethod          string
	ModelExpressionTypeName     string
	CreateModelExpressionMethod string
	ExecutionContextVariable    string
}

// DefaultGeneratedTagHelperContext returns the names used by the view package.
func DefaultGeneratedTagHelperContext() GeneratedTagHelperContext {
	return GeneratedTagHelperContext{
		ScopeManager:                DefaultScopeManager,
		CreateTagHelperMethod:       DefaultCreateTagHelperMethod,
		RunTagHelperMethod:          DefaultRunTagHelperMethod,
		ModelExpressionTypeName:     DefaultModelExpressionTypeName,
		CreateModelExpressionMethod: DefaultCreateModelExpression,
		ExecutionContextVariable:    DefaultExecutionContextVariable,
	}
}

// HostConfig is the immutable configuration of a Host. Use With to derive a
// modified copy.
type HostConfig struct {
	designTime         bool
	instrumentation    bool
	linePragmas        bool
	namespaceImports   []string
	namespace          string
	className          string
	baseType           string
	defaultModel       string
	defaultInjects     []string
	viewStartFileName  string
	tagHelpers         []*TagHelperDescriptor
	applicationRoot    string
	pathNormalizer     PathNormalizer
	resolver           ChunkInheritanceResolver
	codeBuilderFactory CodeBuilderFactory
	idGeneratorFactory IDGeneratorFactory
	tagHelperContext   GeneratedTagHelperContext
	logger             *zap.Logger
}

// DefaultHostConfig returns the default host configuration.
func DefaultHostConfig() *HostConfig {
	return &HostConfig{
		instrumentation:   true,
		namespaceImports:  []string{ImportContext, ImportView},
		namespace:         DefaultNamespace,
		baseType:          DefaultBaseType,
		defaultModel:      DefaultModelType,
		viewStartFileName: DefaultViewStartFileName,
		tagHelperContext:  DefaultGeneratedTagHelperContext(),
	}
}

// NewHostConfig applies opts to the default configuration.
func NewHostConfig(opts ...Option) *HostConfig {
	return DefaultHostConfig().With(opts...)
}

// With returns a copy of c with opts applied. c is not modified.
func (c *HostConfig) With(opts ...Option) *HostConfig {
	clone := *c
	clone.namespaceImports = append([]string(nil), c.namespaceImports...)
	clone.defaultInjects = append([]string(nil), c.defaultInjects...)
	clone.tagHelpers = append([]*TagHelperDescriptor(nil), c.tagHelpers...)
	for _, opt := range opts {
		opt(&clone)
	}
	return &clone
}

// DesignTime reports whether design-time code with line mappings is generated.
func (c *HostConfig) DesignTime() bool { return c.designTime }

// Instrumentation reports whether instrumentation is enabled. It only takes
// effect in runtime mode; see InstrumentationActive.
func (c *HostConfig) Instrumentation() bool { return c.instrumentation }

// InstrumentationActive reports whether generated code carries
// BeginContext/EndContext markers.
func (c *HostConfig) InstrumentationActive() bool { return c.instrumentation && !c.designTime }

// LinePragmas reports whether //line directives are emitted around mapped code.
func (c *HostConfig) LinePragmas() bool { return c.linePragmas }

// NamespaceImports returns the default imports of every generated file.
func (c *HostConfig) NamespaceImports() []string {
	return append([]string(nil), c.namespaceImports...)
}

// Namespace returns the package name of generated files.
func (c *HostConfig) Namespace() string { return c.namespace }

// ClassName returns the configured type name, "" to derive it from the path.
func (c *HostConfig) ClassName() string { return c.className }

// BaseType returns the default embedded base type.
func (c *HostConfig) BaseType() string { return c.baseType }

// DefaultModel returns the model type used when no @model is declared.
func (c *HostConfig) DefaultModel() string { return c.defaultModel }

// DefaultInjects returns the default "Name Type" inject declarations.
func (c *HostConfig) DefaultInjects() []string {
	return append([]string(nil), c.defaultInjects...)
}

// ViewStartFileName returns the file name looked up in ancestor directories.
func (c *HostConfig) ViewStartFileName() string { return c.viewStartFileName }

// TagHelpers returns the registered tag helper descriptors.
func (c *HostConfig) TagHelpers() []*TagHelperDescriptor {
	return append([]*TagHelperDescriptor(nil), c.tagHelpers...)
}

// ApplicationRoot returns the root stripped from template paths.
func (c *HostConfig) ApplicationRoot() string { return c.applicationRoot }

// PathNormalizer returns the configured normalizer. Without one, paths are
// normalized against ApplicationRoot.
func (c *HostConfig) PathNormalizer() PathNormalizer {
	if c.pathNormalizer != nil {
		return c.pathNormalizer
	}
	if c.applicationRoot != "" {
		return NewDesignTimePathNormalizer(c.applicationRoot)
	}
	return DefaultPathNormalizer
}

// TagHelperContext returns the runtime member names used by tag helper code.
func (c *HostConfig) TagHelperContext() GeneratedTagHelperContext { return c.tagHelperContext }

// Logger returns the configured logger, never nil.
func (c *HostConfig) Logger() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}

// WithDesignTimeMode selects design-time generation.
// Default: false
func WithDesignTimeMode(enabled bool) Option {
	return func(c *HostConfig) {
		c.designTime = enabled
	}
}

// WithInstrumentation toggles BeginContext/EndContext markers.
// Default: true
func WithInstrumentation(enabled bool) Option {
	return func(c *HostConfig) {
		c.instrumentation = enabled
	}
}

// WithLinePragmas toggles //line directives around mapped code.
// Default: false
func WithLinePragmas(enabled bool) Option {
	return func(c *HostConfig) {
		c.linePragmas = enabled
	}
}

// WithNamespaceImports replaces the default imports. Entries are import paths,
// optionally preceded by an alias and a blank.
// Default: "context", "github.com/itsatony/go-razor/view"
func WithNamespaceImports(imports ...string) Option {
	return func(c *HostConfig) {
		c.namespaceImports = append([]string(nil), imports...)
	}
}

// WithNamespace sets the package name of generated files.
// Default: "views"
func WithNamespace(namespace string) Option {
	return func(c *HostConfig) {
		c.namespace = namespace
	}
}

// WithClassName fixes the generated type name instead of deriving it from the
// template path.
func WithClassName(name string) Option {
	return func(c *HostConfig) {
		c.className = name
	}
}

// WithBaseType sets the default embedded base type. TModel is replaced by the
// model type.
// Default: "view.Page[TModel]"
func WithBaseType(typeName string) Option {
	return func(c *HostConfig) {
		c.baseType = typeName
	}
}

// WithDefaultModel sets the model type used when a template declares none.
// Default: "any"
func WithDefaultModel(typeName string) Option {
	return func(c *HostConfig) {
		if typeName != "" {
			c.defaultModel = typeName
		}
	}
}

// WithDefaultInjects replaces the default injected members, each written as
// "Name Type".
func WithDefaultInjects(declarations ...string) Option {
	return func(c *HostConfig) {
		c.defaultInjects = append([]string(nil), declarations...)
	}
}

// WithViewStartFileName sets the file name looked up in ancestor directories.
// Default: "_ViewStart.gohtml"
func WithViewStartFileName(name string) Option {
	return func(c *HostConfig) {
		c.viewStartFileName = name
	}
}

// WithTagHelpers registers tag helper descriptors. Templates enable them with
// @addTagHelper.
func WithTagHelpers(descriptors ...*TagHelperDescriptor) Option {
	return func(c *HostConfig) {
		c.tagHelpers = append(c.tagHelpers, descriptors...)
	}
}

// WithApplicationRoot sets the root stripped from template paths.
func WithApplicationRoot(root string) Option {
	return func(c *HostConfig) {
		c.applicationRoot = root
	}
}

// WithPathNormalizer replaces the path normalization strategy.
func WithPathNormalizer(normalizer PathNormalizer) Option {
	return func(c *HostConfig) {
		c.pathNormalizer = normalizer
	}
}

// WithChunkInheritanceResolver replaces the ancestor lookup strategy.
// Default: a ChunkInheritanceUtility over the host's cache
func WithChunkInheritanceResolver(resolver ChunkInheritanceResolver) Option {
	return func(c *HostConfig) {
		c.resolver = resolver
	}
}

// WithCodeBuilderFactory replaces the code builder.
// Default: NewGoCodeBuilder
func WithCodeBuilderFactory(factory CodeBuilderFactory) Option {
	return func(c *HostConfig) {
		c.codeBuilderFactory = factory
	}
}

// WithIDGeneratorFactory replaces the tag helper id strategy.
// Default: unique ids at runtime, sequential ids at design time
func WithIDGeneratorFactory(factory IDGeneratorFactory) Option {
	return func(c *HostConfig) {
		c.idGeneratorFactory = factory
	}
}

// WithFixedTagHelperIDs makes every tag helper id equal id. Used for golden
// file comparisons.
func WithFixedTagHelperIDs(id string) Option {
	return func(c *HostConfig) {
		c.idGeneratorFactory = func(bool) IDGenerator {
			return FixedIDGenerator(id)
		}
	}
}

// WithTagHelperContext replaces the runtime member names used by tag helper
// code. Empty fields keep their defaults.
func WithTagHelperContext(ctx GeneratedTagHelperContext) Option {
	return func(c *HostConfig) {
		defaults := DefaultGeneratedTagHelperContext()
		c.tagHelperContext = GeneratedTagHelperContext{
			ScopeManager:                firstNonEmpty(ctx.ScopeManager, defaults.ScopeManager),
			CreateTagHelperMethod:       firstNonEmpty(ctx.CreateTagHelperMethod, defaults.CreateTagHelperMethod),
			RunTagHelperMethod:          firstNonEmpty(ctx.RunTagHelperMethod, defaults.RunTagHelperMethod),
			ModelExpressionTypeName:     firstNonEmpty(ctx.ModelExpressionTypeName, defaults.ModelExpressionTypeName),
			CreateModelExpressionMethod: firstNonEmpty(ctx.CreateModelExpressionMethod, defaults.CreateModelExpressionMethod),
			ExecutionContextVariable:    firstNonEmpty(ctx.ExecutionContextVariable, defaults.ExecutionContextVariable),
		}
	}
}

// WithLogger sets the logger.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *HostConfig) {
		c.logger = logger
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
