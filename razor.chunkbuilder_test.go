package razor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func location(abs, line, char int) SourceLocation {
	return SourceLocation{AbsoluteIndex: abs, LineIndex: line, CharacterIndex: char}
}

func span(abs, line, char, length int) *MappingLocation {
	return &MappingLocation{SourceLocation: location(abs, line, char), ContentLength: length}
}

func inputTagHelper() *TagHelperDescriptor {
	return &TagHelperDescriptor{
		TagName:  "input",
		TypeName: "*helpers.InputTagHelper",
		Attributes: []TagHelperAttributeDescriptor{
			{Name: "asp-for", PropertyName: "For", TypeName: "view.ModelExpression"},
			{Name: "asp-format", PropertyName: "Format", TypeName: "string"},
		},
	}
}

func buildTree(t *testing.T, path, source string, descriptors ...*TagHelperDescriptor) (*CodeTree, []*ParserError) {
	t.Helper()
	syntaxTree := NewRazorParser(descriptors, zap.NewNop()).Parse(source)
	require.NotNil(t, syntaxTree)
	tree, diagnostics := BuildCodeTree(path, syntaxTree)
	require.NotNil(t, tree)
	return tree, append(syntaxTree.Errors, diagnostics...)
}

func TestBuildCodeTree_MarkupAndExpressions(t *testing.T) {
	tree, errs := buildTree(t, "index.gohtml", "<p>@Name</p>")
	require.Empty(t, errs)
	assert.Equal(t, "index.gohtml", tree.Path())

	chunks := tree.Chunks()
	require.Len(t, chunks, 3)

	assert.Equal(t, "<p>", chunks[0].(*LiteralChunk).Text)

	expr, ok := chunks[1].(*ExpressionChunk)
	require.True(t, ok)
	assert.Equal(t, "Name", expr.Code)
	assert.Equal(t, span(4, 0, 4, 4), expr.Association())
	assert.Equal(t, "index.gohtml", expr.DeclaringPath())
	assert.False(t, expr.Inheritable())

	assert.Equal(t, "</p>", chunks[2].(*LiteralChunk).Text)
}

func TestBuildCodeTree_Statements(t *testing.T) {
	t.Run("statement block", func(t *testing.T) {
		tree, errs := buildTree(t, "a.gohtml", "@{ x := 1 }")
		require.Empty(t, errs)
		require.Equal(t, 1, tree.Len())
		stmt := tree.Chunks()[0].(*StatementChunk)
		assert.Equal(t, " x := 1 ", stmt.Code)
		assert.Equal(t, span(2, 0, 2, 8), stmt.Association())
	})

	t.Run("blank statement block is dropped", func(t *testing.T) {
		tree, errs := buildTree(t, "a.gohtml", "@{   }")
		require.Empty(t, errs)
		assert.Equal(t, 0, tree.Len())
	})

	t.Run("control flow becomes a block", func(t *testing.T) {
		tree, errs := buildTree(t, "a.gohtml", "@if Model.Show {\n    <p>yes</p>\n}\n")
		require.Empty(t, errs)
		require.Equal(t, 1, tree.Len())

		block, ok := tree.Chunks()[0].(*ChunkBlock)
		require.True(t, ok)
		assert.Nil(t, block.Association())
		require.Len(t, block.ChildChunks(), 3)
		assert.Equal(t, "if Model.Show {", block.Children[0].(*StatementChunk).Code)
		assert.Equal(t, "    <p>yes</p>\n", block.Children[1].(*LiteralChunk).Text)
		assert.Equal(t, "}", block.Children[2].(*StatementChunk).Code)
	})
}

func TestBuildCodeTree_Using(t *testing.T) {
	t.Run("plain and aliased imports", func(t *testing.T) {
		tree, errs := buildTree(t, "a.gohtml", "@using \"fmt\"\n@using h \"html/template\"\n")
		require.Empty(t, errs)
		chunks := tree.Chunks()
		require.Len(t, chunks, 2)

		plain := chunks[0].(*UsingChunk)
		assert.Equal(t, "", plain.Alias)
		assert.Equal(t, "fmt", plain.ImportPath)
		assert.Equal(t, `"fmt"`, plain.PathLiteral)
		assert.Equal(t, span(7, 0, 7, 5), plain.Association())
		assert.True(t, plain.Inheritable())

		aliased := chunks[1].(*UsingChunk)
		assert.Equal(t, "h", aliased.Alias)
		assert.Equal(t, "html/template", aliased.ImportPath)
		assert.Equal(t, span(22, 1, 9, 15), aliased.Association())
	})

	t.Run("unquoted path", func(t *testing.T) {
		tree, errs := buildTree(t, "a.gohtml", "@using fmt\n")
		require.Len(t, errs, 1)
		assert.Equal(t, ErrMsgUsingMalformed, errs[0].Message)
		assert.Equal(t, location(0, 0, 0), errs[0].Location)
		assert.Equal(t, len("@using"), errs[0].Length)
		assert.Equal(t, 0, tree.Len())
	})

	t.Run("invalid alias", func(t *testing.T) {
		_, errs := buildTree(t, "a.gohtml", "@using 9x \"fmt\"\n")
		require.Len(t, errs, 1)
		assert.Equal(t, ErrMsgUsingMalformed, errs[0].Message)
	})

	t.Run("too many fields", func(t *testing.T) {
		_, errs := buildTree(t, "a.gohtml", "@using a b \"fmt\"\n")
		require.Len(t, errs, 1)
		assert.Equal(t, ErrMsgUsingMalformed, errs[0].Message)
	})
}

func TestBuildCodeTree_Inject(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		member      string
		typeName    string
		declaration string
		span        *MappingLocation
	}{
		{
			name:        "simple",
			input:       "@inject Svc *app.Service\n",
			member:      "Svc",
			typeName:    "*app.Service",
			declaration: "Svc *app.Service",
			span:        span(8, 0, 8, 16),
		},
		{
			name:        "trailing semicolon is not part of the span",
			input:       "@inject Svc *app.Service;\n",
			member:      "Svc",
			typeName:    "*app.Service",
			declaration: "Svc *app.Service",
			span:        span(8, 0, 8, 16),
		},
		{
			name:        "generic type",
			input:       "@inject Html view.HTMLHelper[TModel]\n",
			member:      "Html",
			typeName:    "view.HTMLHelper[TModel]",
			declaration: "Html view.HTMLHelper[TModel]",
			span:        span(8, 0, 8, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, errs := buildTree(t, "a.gohtml", tt.input)
			require.Empty(t, errs)
			require.Equal(t, 1, tree.Len())

			inject := tree.Chunks()[0].(*InjectChunk)
			assert.Equal(t, tt.member, inject.MemberName)
			assert.Equal(t, tt.typeName, inject.TypeName)
			assert.Equal(t, tt.declaration, inject.Declaration)
			assert.Equal(t, tt.span, inject.Association())
			assert.True(t, inject.Inheritable())
		})
	}

	t.Run("missing type", func(t *testing.T) {
		tree, errs := buildTree(t, "a.gohtml", "@inject Svc\n")
		require.Len(t, errs, 1)
		assert.Equal(t, ErrMsgInjectMalformed, errs[0].Message)
		assert.Equal(t, location(0, 0, 0), errs[0].Location)
		assert.Equal(t, len("@inject"), errs[0].Length)
		assert.Equal(t, 0, tree.Len())
	})
}

func TestBuildCodeTree_ModelAndInherits(t *testing.T) {
	t.Run("model", func(t *testing.T) {
		tree, errs := buildTree(t, "a.gohtml", "@model *app.User\n")
		require.Empty(t, errs)
		model := tree.Chunks()[0].(*ModelChunk)
		assert.Equal(t, "*app.User", model.ModelType)
		assert.Equal(t, span(7, 0, 7, 9), model.Association())
		assert.False(t, model.Inheritable())
	})

	t.Run("duplicate model keeps the first", func(t *testing.T) {
		tree, errs := buildTree(t, "a.gohtml", "@model A\n@model B\n")
		require.Len(t, errs, 1)
		assert.Equal(t, ErrMsgDuplicateModel, errs[0].Message)
		assert.Equal(t, location(9, 1, 0), errs[0].Location)
		require.Equal(t, 1, tree.Len())
		assert.Equal(t, "A", tree.Chunks()[0].(*ModelChunk).ModelType)
	})

	t.Run("inherits", func(t *testing.T) {
		tree, errs := buildTree(t, "a.gohtml", "@inherits app.BasePage\n")
		require.Empty(t, errs)
		base := tree.Chunks()[0].(*SetBaseTypeChunk)
		assert.Equal(t, "app.BasePage", base.TypeName)
		assert.True(t, base.Inheritable())
	})

	t.Run("model with inherits", func(t *testing.T) {
		tree, errs := buildTree(t, "a.gohtml", "@inherits app.BasePage\n@model M\n")
		require.Len(t, errs, 1)
		assert.Equal(t, ErrMsgModelWithInherits, errs[0].Message)
		assert.Equal(t, 2, tree.Len(), "both chunks are kept")
	})
}

func TestBuildCodeTree_AddTagHelper(t *testing.T) {
	tree, errs := buildTree(t, "a.gohtml", "@addTagHelper \"*helpers.*\"\n")
	require.Empty(t, errs)
	chunk := tree.Chunks()[0].(*AddTagHelperChunk)
	assert.Equal(t, "*helpers.*", chunk.Pattern)
	assert.Equal(t, `"*helpers.*"`, chunk.Value)
	assert.True(t, chunk.Inheritable())
}

func TestBuildCodeTree_TagHelper(t *testing.T) {
	source := "@addTagHelper \"*\"\n<input asp-for=\"Name\" disabled class=\"x\" />"
	tree, errs := buildTree(t, "a.gohtml", source, inputTagHelper())
	require.Empty(t, errs)
	require.Equal(t, 2, tree.Len())

	chunk, ok := tree.Chunks()[1].(*TagHelperChunk)
	require.True(t, ok)
	assert.Equal(t, "input", chunk.TagName)
	assert.True(t, chunk.SelfClosing)
	assert.Equal(t, span(18, 1, 0, len("input")+1), chunk.Association())
	require.Len(t, chunk.Descriptors, 1)
	assert.Equal(t, []TagHelperAttributeChunk{
		{Name: "asp-for", Value: "Name", HasValue: true, ValueSpan: span(34, 1, 16, 4)},
		{Name: "disabled"},
		{Name: "class", Value: "x", HasValue: true, ValueSpan: span(56, 1, 38, 1)},
	}, chunk.Attributes)
}

func TestCodeTree_InheritableChunks(t *testing.T) {
	source := "@using \"fmt\"\n@model M\n@inject Svc *app.Service\n<p>@Name</p>\n@addTagHelper \"*\"\n"
	tree, errs := buildTree(t, "_ViewStart.gohtml", source)
	require.Empty(t, errs)

	inheritable := tree.InheritableChunks()
	require.Len(t, inheritable, 3)
	assert.IsType(t, &UsingChunk{}, inheritable[0])
	assert.IsType(t, &InjectChunk{}, inheritable[1])
	assert.IsType(t, &AddTagHelperChunk{}, inheritable[2])
}

func TestCodeTree_ChunksIsACopy(t *testing.T) {
	tree := NewCodeTree("a.gohtml", []Chunk{&LiteralChunk{Text: "x"}})
	chunks := tree.Chunks()
	chunks[0] = &LiteralChunk{Text: "y"}
	assert.Equal(t, "x", tree.Chunks()[0].(*LiteralChunk).Text)
}

func TestSplitInject(t *testing.T) {
	tests := []struct {
		input    string
		name     string
		typeName string
		ok       bool
	}{
		{input: "Svc *app.Service", name: "Svc", typeName: "*app.Service", ok: true},
		{input: "Svc\t  app.Service", name: "Svc", typeName: "app.Service", ok: true},
		{input: "Svc", ok: false},
		{input: " Svc app.Service", ok: false},
		{input: "1Svc app.Service", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, typeName, ok := splitInject(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.typeName, typeName)
		})
	}
}

func TestTrimDirectiveValue(t *testing.T) {
	assert.Equal(t, "a b", trimDirectiveValue("  a b ; "))
	assert.Equal(t, "a b", trimDirectiveValue("a b;"))
	assert.Equal(t, "a;b", trimDirectiveValue("a;b"))
}
