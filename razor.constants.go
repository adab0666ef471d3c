package razor

// Host defaults
const (
	DefaultNamespace         = "views"
	DefaultBaseType          = "view.Page[TModel]"
	DefaultModelType         = "any"
	DefaultViewStartFileName = "_ViewStart.gohtml"
	DefaultClassName         = "Page"
	DefaultFixedTagHelperID  = "test"
	DefaultCacheMaxEntries   = 1000
	TemplateFileExtension    = ".gohtml"
	GeneratedFileExtension   = ".go"
)

// Default namespace imports of every generated file
const (
	ImportContext = "context"
	ImportView    = "github.com/itsatony/go-razor/view"
)

// ModelPlaceholder is replaced by the model type in base types and inject
// declarations.
const ModelPlaceholder = "TModel"

// Generated code tokens
const (
	GeneratedHeaderPrefix   = "// Code generated by razorgen from "
	GeneratedHeaderSuffix   = ". DO NOT EDIT."
	GeneratedPackage        = "package "
	GeneratedImportOpen     = "import ("
	GeneratedImportClose    = ")"
	GeneratedTypePrefix     = "type "
	GeneratedStructOpen     = " struct {"
	GeneratedBlockClose     = "}"
	GeneratedInjectTag      = " `razor:\"inject\"`"
	GeneratedReceiverPrefix = "func (__page *"
	GeneratedHelpersSuffix  = ") __razorDesignTimeHelpers() {"
	GeneratedExecuteSuffix  = ") Execute(ctx context.Context) error {"
	GeneratedReturnNil      = "return nil"
	GeneratedPageField      = " := __page."
	GeneratedDiscard        = "_ = "
	GeneratedVarDiscard     = "var _ "
	GeneratedFuncParamOpen  = "_ = func("
	GeneratedFuncParamClose = ") {}"
	GeneratedModelVariable  = "Model"

	GeneratedBlockOpen = "{"
	TransitionText     = "@"

	WriteLiteralMethod = "__page.WriteLiteral("
	WriteMethod        = "__page.Write("
	BeginContextMethod = "__page.BeginContext("
	EndContextCall     = "__page.EndContext()"
	CallClose          = ")"
)

// Tag helper runtime surface used by generated code
const (
	DefaultScopeManager             = "__page.TagHelperScope"
	DefaultCreateTagHelperMethod    = "view.CreateTagHelper"
	DefaultRunTagHelperMethod       = "__page.RunTagHelper"
	DefaultModelExpressionTypeName  = "view.ModelExpression"
	DefaultCreateModelExpression    = "__page.CreateModelExpression"
	DefaultExecutionContextVariable = "__tagHelperExecutionContext"
	StringTypeName                  = "string"
	ModelExpressionParameter        = "__model"
	TagHelperVariablePrefix         = "__"
	SequentialIDPrefix              = "__razor_taghelper_"
	ModelExpressionOpen             = "(func("
	ModelExpressionReturn           = ") any { return "
	ModelExpressionSuffix           = " })"

	TagHelperTypeOpen               = "["
	TagHelperCreateArgs             = "](__page)"
	TagHelperBeginMethod            = ".Begin("
	TagHelperBodyOpen               = ", func(ctx context.Context) error {"
	TagHelperBodyClose              = "})"
	TagHelperAddMethod              = ".Add("
	TagHelperAddAttributeMethod     = ".AddTagHelperAttribute("
	TagHelperAddHTMLAttributeMethod = ".AddHTMLAttribute("
	TagHelperAddMinimizedMethod     = ".AddMinimizedHTMLAttribute("
	TagHelperRunPrefix              = "if err := "
	TagHelperRunArgs                = "(ctx, "
	TagHelperRunSuffix              = "); err != nil {"
	TagHelperReturnErr              = "return err"
	TagHelperEndCall                = ".End()"
)

// Log message constants
const (
	LogMsgHostCreated         = "razor host created"
	LogMsgGenerateStart       = "generating code"
	LogMsgGenerateComplete    = "code generation complete"
	LogMsgInheritanceResolved = "inherited code trees resolved"
	LogMsgInheritanceCycle    = "page already being resolved, skipping ancestors"
	LogMsgViewStartLoaded     = "view start loaded"
	LogMsgCacheHit            = "code tree cache hit"
	LogMsgCacheMiss           = "code tree cache miss"
	LogMsgCacheStale          = "code tree cache entry stale"
	LogMsgCacheEvicted        = "code tree cache entry evicted"
	LogMsgFileUnavailable     = "template file unavailable"
	LogMsgConfigLoaded        = "razor config loaded"
)

// Log field names
const (
	LogFieldPath       = "path"
	LogFieldNormalized = "normalized_path"
	LogFieldAncestors  = "ancestor_count"
	LogFieldErrors     = "error_count"
	LogFieldMappings   = "mapping_count"
	LogFieldDesignTime = "design_time"
	LogFieldVersion    = "version"
	LogFieldShared     = "shared"
	LogFieldEntries    = "entries"
	LogFieldCodeLength = "code_length"
)

// Metadata keys for errors
const (
	MetaKeyPath      = "path"
	MetaKeyRoot      = "root"
	MetaKeyField     = "field"
	MetaKeyValue     = "value"
	MetaKeyOperation = "operation"
)

// Configuration field names reported in config errors
const (
	ConfigFieldCache     = "cache"
	ConfigFieldNamespace = "namespace"
	ConfigFieldClassName = "class_name"
	ConfigFieldViewStart = "view_start"
	ConfigFieldInjects   = "injects"
)

// PostgreSQL provider defaults
const (
	DefaultPostgresTablePrefix  = "razor_"
	DefaultPostgresMaxOpenConns = 10
	DefaultPostgresMaxIdleConns = 2
	PostgresDriverName          = "postgres"
	PostgresTemplatesTable      = "templates"
	PostgresOperationMigrate    = "migrate"
	PostgresOperationGet        = "get"
	PostgresOperationUpsert     = "upsert"
	PostgresOperationDelete     = "delete"
)
