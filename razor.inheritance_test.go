package razor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// treeParser builds view start trees with the default parser.
type treeParser struct {
	calls []string
}

func (p *treeParser) ParseViewFile(_ context.Context, normalizedPath, content string) *CodeTree {
	p.calls = append(p.calls, normalizedPath)
	tree, _ := BuildCodeTree(normalizedPath, NewRazorParser(nil, zap.NewNop()).Parse(content))
	return tree
}

func newInheritanceUtility(files map[string]string) (*ChunkInheritanceUtility, *treeParser) {
	provider := NewMemoryFileProvider()
	for path, content := range files {
		provider.Set(path, content)
	}
	parser := &treeParser{}
	cache := NewDefaultCodeTreeCache(provider, DefaultCodeTreeCacheConfig())
	return NewChunkInheritanceUtility(parser, cache, DefaultViewStartFileName, zap.NewNop()), parser
}

func treePaths(trees []*CodeTree) []string {
	paths := make([]string, 0, len(trees))
	for _, tree := range trees {
		paths = append(paths, tree.Path())
	}
	return paths
}

func TestChunkInheritanceUtility_GetInheritedCodeTrees(t *testing.T) {
	ctx := context.Background()
	u, parser := newInheritanceUtility(map[string]string{
		"_ViewStart.gohtml":             "@using \"fmt\"\n",
		"views/_ViewStart.gohtml":       "@using \"strings\"\n",
		"views/home/_ViewStart.gohtml":  "@using \"bytes\"\n",
		"views/other/_ViewStart.gohtml": "@using \"os\"\n",
	})

	t.Run("root-most first", func(t *testing.T) {
		trees := u.GetInheritedCodeTrees(ctx, "views/home/index.gohtml")
		assert.Equal(t, []string{
			"_ViewStart.gohtml",
			"views/_ViewStart.gohtml",
			"views/home/_ViewStart.gohtml",
		}, treePaths(trees))
	})

	t.Run("missing levels are skipped", func(t *testing.T) {
		trees := u.GetInheritedCodeTrees(ctx, "views/home/deep/page.gohtml")
		assert.Equal(t, []string{
			"_ViewStart.gohtml",
			"views/_ViewStart.gohtml",
			"views/home/_ViewStart.gohtml",
		}, treePaths(trees))
	})

	t.Run("page at the root", func(t *testing.T) {
		trees := u.GetInheritedCodeTrees(ctx, "index.gohtml")
		assert.Equal(t, []string{"_ViewStart.gohtml"}, treePaths(trees))
	})

	t.Run("a view start file does not inherit itself", func(t *testing.T) {
		trees := u.GetInheritedCodeTrees(ctx, "views/_ViewStart.gohtml")
		assert.Equal(t, []string{"_ViewStart.gohtml"}, treePaths(trees))
	})

	t.Run("ancestors are parsed once", func(t *testing.T) {
		counts := make(map[string]int)
		for _, path := range parser.calls {
			counts[path]++
		}
		for path, n := range counts {
			assert.Equal(t, 1, n, "parsed %s more than once", path)
		}
		assert.NotContains(t, counts, "views/other/_ViewStart.gohtml")
	})
}

func TestChunkInheritanceUtility_NoViewStartFiles(t *testing.T) {
	u, _ := newInheritanceUtility(nil)
	trees := u.GetInheritedCodeTrees(context.Background(), "views/index.gohtml")
	assert.Empty(t, trees)
}

func TestChunkInheritanceUtility_MalformedAncestor(t *testing.T) {
	u, _ := newInheritanceUtility(map[string]string{
		"_ViewStart.gohtml": "@using fmt\n@inject Svc *app.Service\n@{ unterminated",
	})
	trees := u.GetInheritedCodeTrees(context.Background(), "index.gohtml")
	require.Len(t, trees, 1)

	inheritable := trees[0].InheritableChunks()
	require.Len(t, inheritable, 1)
	assert.Equal(t, "Svc", inheritable[0].(*InjectChunk).MemberName)
}

func TestChunkInheritanceUtility_CycleGuard(t *testing.T) {
	provider := NewMemoryFileProvider()
	provider.Set("_ViewStart.gohtml", "@using \"fmt\"\n")
	cache := NewDefaultCodeTreeCache(provider, DefaultCodeTreeCacheConfig())

	var u *ChunkInheritanceUtility
	nested := 0
	parser := viewFileParserFunc(func(ctx context.Context, path, content string) *CodeTree {
		nested++
		// resolving the page again from inside its own resolution yields nothing
		assert.Empty(t, u.GetInheritedCodeTrees(ctx, "a/page.gohtml"))
		tree, _ := BuildCodeTree(path, NewRazorParser(nil, zap.NewNop()).Parse(content))
		return tree
	})
	u = NewChunkInheritanceUtility(parser, cache, "", nil)

	trees := u.GetInheritedCodeTrees(context.Background(), "a/page.gohtml")
	assert.Len(t, trees, 1)
	assert.Equal(t, 1, nested)
}

type viewFileParserFunc func(ctx context.Context, path, content string) *CodeTree

func (f viewFileParserFunc) ParseViewFile(ctx context.Context, path, content string) *CodeTree {
	return f(ctx, path, content)
}

func TestChunkInheritanceResolverFunc(t *testing.T) {
	want := []*CodeTree{NewCodeTree("_ViewStart.gohtml", nil)}
	var got string
	resolver := ChunkInheritanceResolverFunc(func(_ context.Context, path string) []*CodeTree {
		got = path
		return want
	})
	assert.Equal(t, want, resolver.GetInheritedCodeTrees(context.Background(), "a.gohtml"))
	assert.Equal(t, "a.gohtml", got)
}

func chunkStrings(chunks []Chunk) []string {
	result := make([]string, 0, len(chunks))
	for _, c := range chunks {
		result = append(result, c.String())
	}
	return result
}

func TestMergeInheritedCodeTrees(t *testing.T) {
	root := NewCodeTree("_ViewStart.gohtml", []Chunk{
		&UsingChunk{ImportPath: "fmt", PathLiteral: `"fmt"`},
		&SetBaseTypeChunk{TypeName: "app.RootPage[TModel]"},
		&InjectChunk{MemberName: "Html", TypeName: "RootHelper"},
		&InjectChunk{MemberName: "Log", TypeName: "*zap.Logger"},
		&AddTagHelperChunk{Pattern: "*", Value: `"*"`},
		&LiteralChunk{Text: "not inherited"},
	})
	nearer := NewCodeTree("views/_ViewStart.gohtml", []Chunk{
		&UsingChunk{ImportPath: "fmt", PathLiteral: `"fmt"`},
		&UsingChunk{Alias: "s", ImportPath: "strings", PathLiteral: `"strings"`},
		&SetBaseTypeChunk{TypeName: "app.ViewsPage[TModel]"},
		&InjectChunk{MemberName: "Html", TypeName: "ViewsHelper"},
		&AddTagHelperChunk{Pattern: "*", Value: `"*"`},
	})
	defaults := []Chunk{
		&UsingChunk{ImportPath: "context", PathLiteral: `"context"`},
		&SetBaseTypeChunk{TypeName: DefaultBaseType},
		&InjectChunk{MemberName: "Url", TypeName: "UrlHelper"},
	}

	t.Run("nearer layers override farther ones", func(t *testing.T) {
		page := NewCodeTree("views/index.gohtml", []Chunk{
			&LiteralChunk{Text: "<p>"},
		})
		merged := MergeInheritedCodeTrees(page, []*CodeTree{root, nearer}, defaults)

		assert.Equal(t, "views/index.gohtml", merged.Path())
		assert.Equal(t, []string{
			`Using( "context")`,
			`Using( "fmt")`,
			`Using(s "strings")`,
			`SetBaseType(app.ViewsPage[TModel])`,
			`Inject(Url UrlHelper)`,
			`Inject(Html ViewsHelper)`,
			`Inject(Log *zap.Logger)`,
			`AddTagHelper("*")`,
			`Literal("<p>")`,
		}, chunkStrings(merged.Chunks()))
	})

	t.Run("page declarations win", func(t *testing.T) {
		page := NewCodeTree("views/index.gohtml", []Chunk{
			&UsingChunk{ChunkBase: ChunkBase{Path: "views/index.gohtml"}, ImportPath: "fmt", PathLiteral: `"fmt"`},
			&SetBaseTypeChunk{TypeName: "app.Custom"},
			&InjectChunk{MemberName: "Html", TypeName: "PageHelper"},
		})
		merged := MergeInheritedCodeTrees(page, []*CodeTree{root, nearer}, defaults)

		assert.Equal(t, []string{
			`Using( "context")`,
			`Using(s "strings")`,
			`Inject(Url UrlHelper)`,
			`Inject(Log *zap.Logger)`,
			`AddTagHelper("*")`,
			`Using( "fmt")`,
			`SetBaseType(app.Custom)`,
			`Inject(Html PageHelper)`,
		}, chunkStrings(merged.Chunks()))
	})

	t.Run("page tree is not modified", func(t *testing.T) {
		page := NewCodeTree("a.gohtml", []Chunk{&LiteralChunk{Text: "x"}})
		MergeInheritedCodeTrees(page, []*CodeTree{root, nil}, defaults)
		assert.Equal(t, 1, page.Len())
	})
}

func TestInheritedTagHelperPatterns(t *testing.T) {
	inherited := []*CodeTree{
		NewCodeTree("_ViewStart.gohtml", []Chunk{
			&AddTagHelperChunk{Pattern: "*helpers.*"},
			&AddTagHelperChunk{Pattern: "*"},
		}),
		nil,
		NewCodeTree("views/_ViewStart.gohtml", []Chunk{
			&AddTagHelperChunk{Pattern: "*"},
			&AddTagHelperChunk{Pattern: "app.Widget"},
		}),
	}
	assert.Equal(t, []string{"*helpers.*", "*", "app.Widget"}, inheritedTagHelperPatterns(inherited))
	assert.Empty(t, inheritedTagHelperPatterns(nil))
}
