package razor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/itsatony/go-razor/internal"
)

func emptyCache() *DefaultCodeTreeCache {
	return NewDefaultCodeTreeCache(NewMemoryFileProvider(), DefaultCodeTreeCacheConfig())
}

// recordingResolver remembers every path it was asked to resolve.
type recordingResolver struct {
	mu    sync.Mutex
	paths []string
	trees []*CodeTree
}

func (r *recordingResolver) resolver() ChunkInheritanceResolver {
	return ChunkInheritanceResolverFunc(func(_ context.Context, normalizedPath string) []*CodeTree {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.paths = append(r.paths, normalizedPath)
		return r.trees
	})
}

func TestNewHost(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		host, err := NewHost(emptyCache())
		require.NoError(t, err)

		config := host.Config()
		assert.False(t, config.DesignTime())
		assert.True(t, config.Instrumentation())
		assert.True(t, config.InstrumentationActive())
		assert.False(t, config.LinePragmas())
		assert.Equal(t, DefaultNamespace, config.Namespace())
		assert.Equal(t, DefaultBaseType, config.BaseType())
		assert.Equal(t, DefaultModelType, config.DefaultModel())
		assert.Equal(t, DefaultViewStartFileName, config.ViewStartFileName())
		assert.Equal(t, []string{ImportContext, ImportView}, config.NamespaceImports())
		assert.Equal(t, DefaultGeneratedTagHelperContext(), config.TagHelperContext())
		assert.NotNil(t, config.Logger())
		assert.NotNil(t, host.Cache())
	})

	tests := []struct {
		name  string
		cache CodeTreeCache
		opts  []Option
		msg   string
		field string
	}{
		{name: "nil cache", cache: nil, msg: ErrMsgNilCache, field: ConfigFieldCache},
		{name: "empty namespace", cache: emptyCache(), opts: []Option{WithNamespace("")}, msg: ErrMsgInvalidNamespace, field: ConfigFieldNamespace},
		{name: "namespace with dots", cache: emptyCache(), opts: []Option{WithNamespace("my.views")}, msg: ErrMsgInvalidNamespace, field: ConfigFieldNamespace},
		{name: "invalid class name", cache: emptyCache(), opts: []Option{WithClassName("9Page")}, msg: ErrMsgInvalidClassName, field: ConfigFieldClassName},
		{name: "empty view start", cache: emptyCache(), opts: []Option{WithViewStartFileName("")}, msg: ErrMsgEmptyViewStartName, field: ConfigFieldViewStart},
		{name: "malformed default inject", cache: emptyCache(), opts: []Option{WithDefaultInjects("Html")}, msg: ErrMsgInvalidInject, field: ConfigFieldInjects},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, err := NewHost(tt.cache, tt.opts...)
			require.Error(t, err)
			assert.Nil(t, host)
			assert.Contains(t, err.Error(), tt.msg)

			var customErr *cuserr.CustomError
			require.True(t, errors.As(err, &customErr))
			field, ok := customErr.GetMetadata(MetaKeyField)
			assert.True(t, ok)
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestHost_DefaultChunks(t *testing.T) {
	config := NewHostConfig(
		WithNamespaceImports("fmt", `h "html/template"`, `"strings"`, "  "),
		WithBaseType("app.Page"),
		WithDefaultInjects("Html view.HTMLHelper[TModel];"))

	chunks, err := defaultChunks(config)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`Using( "fmt")`,
		`Using(h "html/template")`,
		`Using( "strings")`,
		`SetBaseType(app.Page)`,
		`Inject(Html view.HTMLHelper[TModel])`,
	}, chunkStrings(chunks))

	for _, c := range chunks {
		assert.Nil(t, c.Association(), "host defaults are synthesized")
		assert.Empty(t, c.DeclaringPath())
	}
}

func TestHost_ResolvesInheritanceWithNormalizedPath(t *testing.T) {
	roots := []struct {
		name   string
		root   string
		source string
	}{
		{name: "unc forward", root: "//SomeComputer/Location/Project/", source: "//SomeComputer/Location/Project/src/file.gohtml"},
		{name: "drive forward", root: "C:/Location/Project/", source: "C:/Location/Project/src/file.gohtml"},
		{name: "unc backslash", root: `\\SomeComputer\Location\Project\`, source: `\\SomeComputer\Location\Project\src\file.gohtml`},
		{name: "drive backslash", root: `C:\Location\Project\`, source: `C:\Location\Project\src\file.gohtml`},
	}

	for _, r := range roots {
		t.Run(r.name, func(t *testing.T) {
			recorder := &recordingResolver{}
			host, err := NewHost(emptyCache(),
				WithApplicationRoot(r.root),
				WithChunkInheritanceResolver(recorder.resolver()))
			require.NoError(t, err)
			assert.Equal(t, "src/file.gohtml", host.NormalizePath(r.source))

			ctx := context.Background()
			parser := host.DecorateParser(ctx, host.NewParser(), r.source)
			require.NotNil(t, parser)

			cbCtx := host.NewCodeBuilderContext(r.source, NewCodeTree("src/file.gohtml", nil), nil)
			builder := host.DecorateCodeBuilder(ctx, NewGoCodeBuilder(cbCtx), cbCtx)
			require.NotNil(t, builder)

			assert.Equal(t, []string{"src/file.gohtml", "src/file.gohtml"}, recorder.paths)
			assert.Equal(t, r.source, cbCtx.SourceFile)
			assert.Equal(t, "src_file", cbCtx.ClassName)
		})
	}
}

func TestHost_GenerateCode(t *testing.T) {
	ctx := context.Background()
	provider := NewMemoryFileProvider()
	provider.Set("_ViewStart.gohtml", "@using \"fmt\"\n@inject Log *zap.Logger\n@addTagHelper \"*\"\n")
	provider.Set("home/_ViewStart.gohtml", "@inherits app.HomePage[TModel]\n")
	cache := NewDefaultCodeTreeCache(provider, DefaultCodeTreeCacheConfig())

	host, err := NewHost(cache,
		WithTagHelpers(inputTagHelper()),
		WithFixedTagHelperIDs("id"),
		WithInstrumentation(false))
	require.NoError(t, err)

	source := "@model *app.User\n<p>@fmt.Sprint(Model.Name)</p>\n<input asp-for=\"Name\" />"
	results, err := host.GenerateCode(ctx, "home/index.gohtml", strings.NewReader(source))
	require.NoError(t, err)
	require.True(t, results.Success, "unexpected errors: %v", results.ParserErrors)
	assert.Empty(t, results.DesignTimeLineMappings)
	require.NotNil(t, results.CodeTree)
	assert.Equal(t, "home/index.gohtml", results.CodeTree.Path())

	code := results.GeneratedCode
	assert.Contains(t, code, "// Code generated by razorgen from home/index.gohtml. DO NOT EDIT.\n")
	assert.Contains(t, code, "import (\n\t\"context\"\n\t\"github.com/itsatony/go-razor/view\"\n\t\"fmt\"\n)\n")
	assert.Contains(t, code, "type home_index struct {\n\tapp.HomePage[*app.User]\n\tLog *zap.Logger `razor:\"inject\"`\n}\n")
	assert.Contains(t, code, "\tLog := __page.Log\n\t_ = Log\n")
	assert.Contains(t, code, "\t__page.Write(fmt.Sprint(Model.Name))\n")
	// the tag helper was enabled by the root view start file
	assert.Contains(t, code, "view.CreateTagHelper[*helpers.InputTagHelper](__page)")

	t.Run("ancestors are cached across compilations", func(t *testing.T) {
		before := cache.Stats()
		_, err := host.GenerateCode(ctx, "home/other.gohtml", strings.NewReader("<p></p>"))
		require.NoError(t, err)
		after := cache.Stats()
		assert.Greater(t, after.Hits, before.Hits)
		assert.Equal(t, before.Misses, after.Misses)
	})

	t.Run("edited view start is picked up", func(t *testing.T) {
		provider.Set("home/_ViewStart.gohtml", "@inherits app.OtherPage[TModel]\n")
		results, err := host.GenerateCode(ctx, "home/index.gohtml", strings.NewReader(source))
		require.NoError(t, err)
		assert.Contains(t, results.GeneratedCode, "\tapp.OtherPage[*app.User]\n")
	})
}

func TestHost_GenerateCodeDesignTime(t *testing.T) {
	host, err := NewHost(emptyCache(), WithDesignTimeMode(true))
	require.NoError(t, err)
	assert.False(t, host.Config().InstrumentationActive())

	source := "@using \"fmt\"\n<p>@fmt.Sprint(1)</p>"
	results, err := host.GenerateCode(context.Background(), "a.gohtml", strings.NewReader(source))
	require.NoError(t, err)

	require.Len(t, results.DesignTimeLineMappings, 2)
	assert.Equal(t, `"fmt"`, results.GeneratedCode[results.DesignTimeLineMappings[0].GeneratedLocation.AbsoluteIndex:results.DesignTimeLineMappings[0].GeneratedLocation.End()])
	assert.Contains(t, results.GeneratedCode, ") __razorDesignTimeHelpers() {\n")
}

func TestHost_GenerateCodeReadError(t *testing.T) {
	host, err := NewHost(emptyCache())
	require.NoError(t, err)

	_, err = host.GenerateCode(context.Background(), "a.gohtml", failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgReadInput)

	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))
	path, ok := customErr.GetMetadata(MetaKeyPath)
	assert.True(t, ok)
	assert.Equal(t, "a.gohtml", path)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestHost_ParserErrorsAreResults(t *testing.T) {
	host, err := NewHost(emptyCache())
	require.NoError(t, err)

	results, err := host.GenerateCode(context.Background(), "a.gohtml", strings.NewReader("@model A\n@model B\n@{ x"))
	require.NoError(t, err)
	assert.False(t, results.Success)
	require.Len(t, results.ParserErrors, 2)
	assert.NotEmpty(t, results.GeneratedCode)
}

func TestHost_WithConfig(t *testing.T) {
	cache := emptyCache()
	host, err := NewHost(cache, WithNamespace("pages"))
	require.NoError(t, err)

	design, err := host.WithConfig(WithDesignTimeMode(true))
	require.NoError(t, err)
	assert.True(t, design.Config().DesignTime())
	assert.Equal(t, "pages", design.Config().Namespace())
	assert.Same(t, cache, design.Cache())

	assert.False(t, host.Config().DesignTime(), "original host is unchanged")

	_, err = host.WithConfig(WithNamespace("not valid"))
	require.Error(t, err)
}

func TestHost_ClassNameOverride(t *testing.T) {
	host, err := NewHost(emptyCache(), WithClassName("Fixed"))
	require.NoError(t, err)

	results, err := host.GenerateCode(context.Background(), "views/a.gohtml", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Contains(t, results.GeneratedCode, "type Fixed struct {")
}

func TestHost_DecorateParserEnablesInheritedTagHelpers(t *testing.T) {
	inherited := []*CodeTree{NewCodeTree("_ViewStart.gohtml", []Chunk{&AddTagHelperChunk{Pattern: "*"}})}
	recorder := &recordingResolver{trees: inherited}
	host, err := NewHost(emptyCache(),
		WithTagHelpers(inputTagHelper()),
		WithChunkInheritanceResolver(recorder.resolver()))
	require.NoError(t, err)

	parser := host.DecorateParser(context.Background(), host.NewParser(), "a.gohtml")
	rp, ok := parser.(*RazorParser)
	require.True(t, ok)
	assert.Equal(t, []string{"*"}, rp.TagHelperPatterns())

	tree := rp.Parse("<input asp-for=\"Name\" />")
	require.Empty(t, tree.Errors)
	require.Len(t, tree.Root.Children, 1)
	node, ok := tree.Root.Children[0].(*internal.TagHelperNode)
	require.True(t, ok)
	assert.Equal(t, "input", node.TagName)

	t.Run("other parsers are returned unchanged", func(t *testing.T) {
		custom := templateParserFunc(func(string) *SyntaxTree { return nil })
		decorated := host.DecorateParser(context.Background(), custom, "a.gohtml")
		assert.NotNil(t, decorated)
		_, isRazor := decorated.(*RazorParser)
		assert.False(t, isRazor)
	})
}

type templateParserFunc func(string) *SyntaxTree

func (f templateParserFunc) Parse(source string) *SyntaxTree { return f(source) }

func TestHost_CodeBuilderFactory(t *testing.T) {
	var seen *CodeBuilderContext
	host, err := NewHost(emptyCache(), WithCodeBuilderFactory(func(ctx *CodeBuilderContext) CodeBuilder {
		seen = ctx
		return codeBuilderFunc(func() *CodeBuilderResult {
			return &CodeBuilderResult{Code: "// custom " + ctx.ClassName}
		})
	}))
	require.NoError(t, err)

	results, err := host.GenerateCode(context.Background(), "views/a.gohtml", strings.NewReader("<p>@Name</p>"))
	require.NoError(t, err)
	assert.Equal(t, "// custom views_a", results.GeneratedCode)
	require.NotNil(t, seen)
	assert.Equal(t, "views/a.gohtml", seen.NormalizedPath)
	assert.NotNil(t, seen.IDGenerator)
	assert.Equal(t, DefaultNamespace, seen.Namespace)
}

type codeBuilderFunc func() *CodeBuilderResult

func (f codeBuilderFunc) Build() *CodeBuilderResult { return f() }

func TestHost_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	host, err := NewHost(emptyCache(), WithLogger(zap.New(core)))
	require.NoError(t, err)

	_, err = host.GenerateCode(context.Background(), "a.gohtml", strings.NewReader("x"))
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage(LogMsgHostCreated).Len())
	assert.Equal(t, 1, logs.FilterMessage(LogMsgGenerateStart).Len())
	assert.Equal(t, 1, logs.FilterMessage(LogMsgGenerateComplete).Len())
}

func TestHost_ConcurrentGenerateCode(t *testing.T) {
	provider := NewMemoryFileProvider()
	provider.Set("_ViewStart.gohtml", "@using \"fmt\"\n")
	host, err := NewHost(NewDefaultCodeTreeCache(provider, DefaultCodeTreeCacheConfig()))
	require.NoError(t, err)

	var wg sync.WaitGroup
	codes := make([]string, 8)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results, err := host.GenerateCode(context.Background(), "a.gohtml", strings.NewReader("<p>@Name</p>"))
			if err == nil {
				codes[i] = results.GeneratedCode
			}
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, codes[0], code)
		assert.Contains(t, code, "\t\"fmt\"\n")
	}
}
