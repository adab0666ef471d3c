package razor

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator allocates tag helper instance ids.
type IDGenerator interface {
	GenerateUniqueID() string
}

// IDGeneratorFactory creates the id generator of one compilation.
type IDGeneratorFactory func(designTime bool) IDGenerator

// UniqueIDGenerator returns a fresh random id on every call.
type UniqueIDGenerator struct{}

// GenerateUniqueID implements IDGenerator.
func (UniqueIDGenerator) GenerateUniqueID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// SequentialIDGenerator numbers ids from 1 in allocation order.
type SequentialIDGenerator struct {
	next atomic.Int64
}

// NewSequentialIDGenerator creates a generator starting at 1.
func NewSequentialIDGenerator() *SequentialIDGenerator {
	return &SequentialIDGenerator{}
}

// GenerateUniqueID implements IDGenerator.
func (g *SequentialIDGenerator) GenerateUniqueID() string {
	return SequentialIDPrefix + strconv.FormatInt(g.next.Add(1), 10)
}

// FixedIDGenerator returns the same id on every call.
type FixedIDGenerator string

// GenerateUniqueID implements IDGenerator.
func (g FixedIDGenerator) GenerateUniqueID() string {
	return string(g)
}

func defaultIDGeneratorFactory(designTime bool) IDGenerator {
	if designTime {
		return NewSequentialIDGenerator()
	}
	return UniqueIDGenerator{}
}

// TagHelperRenderer emits the code of tag helper elements for a GoCodeBuilder.
// Element bodies go back through the builder, so tag helpers nest freely.
type TagHelperRenderer struct {
	builder *GoCodeBuilder
	context GeneratedTagHelperContext
	ids     IDGenerator
}

// NewTagHelperRenderer creates a renderer writing through builder.
func NewTagHelperRenderer(builder *GoCodeBuilder, context GeneratedTagHelperContext, ids IDGenerator) *TagHelperRenderer {
	return &TagHelperRenderer{builder: builder, context: context, ids: ids}
}

// tagHelperBinding is a helper instance created for one element.
type tagHelperBinding struct {
	descriptor *TagHelperDescriptor
	variable   string
}

// boundValue is the first helper property an attribute was assigned to.
type boundValue struct {
	variable string
	property string
}

// RenderTagHelper writes the scope of one tag helper element.
func (r *TagHelperRenderer) RenderTagHelper(chunk *TagHelperChunk) {
	b := r.builder
	w := b.w
	document := b.isDocumentChunk(chunk)
	id := r.ids.GenerateUniqueID()

	w.EnsureNewLine()
	w.WriteLine(GeneratedBlockOpen)
	w.IncreaseIndent()

	bindings := r.createHelpers(chunk.Descriptors)

	type attributeCall struct {
		method string
		args   string
	}
	var calls []attributeCall

	for _, attr := range chunk.Attributes {
		bound := false
		var first *boundValue
		for _, binding := range bindings {
			desc, ok := binding.descriptor.Attribute(attr.Name)
			if !ok || !attr.HasValue || attr.Value == "" {
				continue
			}
			bound = true
			target := binding.variable + "." + desc.PropertyName
			if first != nil {
				w.WriteLine(target + " = " + first.variable + "." + first.property)
				continue
			}
			first = &boundValue{variable: binding.variable, property: desc.PropertyName}
			r.writeBoundAttribute(target, desc, attr, document)
		}

		name := strconv.Quote(attr.Name)
		switch {
		case bound:
			calls = append(calls, attributeCall{method: TagHelperAddAttributeMethod, args: name + ", " + first.variable + "." + first.property})
		case attr.HasValue:
			calls = append(calls, attributeCall{method: TagHelperAddHTMLAttributeMethod, args: name + ", " + strconv.Quote(attr.Value)})
		default:
			calls = append(calls, attributeCall{method: TagHelperAddMinimizedMethod, args: name})
		}
	}

	execCtx := r.context.ExecutionContextVariable
	w.WriteLine(execCtx + " := " + r.context.ScopeManager + TagHelperBeginMethod +
		strconv.Quote(chunk.TagName) + ", " +
		strconv.FormatBool(chunk.SelfClosing) + ", " +
		strconv.Quote(id) + TagHelperBodyOpen)
	w.IncreaseIndent()
	b.writeChunks(chunk.Children)
	w.EnsureNewLine()
	w.WriteLine(GeneratedReturnNil)
	w.DecreaseIndent()
	w.WriteLine(TagHelperBodyClose)

	for _, binding := range bindings {
		w.WriteLine(execCtx + TagHelperAddMethod + binding.variable + CallClose)
	}
	for _, call := range calls {
		w.WriteLine(execCtx + call.method + call.args + CallClose)
	}

	w.WriteLine(TagHelperRunPrefix + r.context.RunTagHelperMethod + TagHelperRunArgs + execCtx + TagHelperRunSuffix)
	w.IncreaseIndent()
	w.WriteLine(TagHelperReturnErr)
	w.DecreaseIndent()
	w.WriteLine(GeneratedBlockClose)
	w.WriteLine(r.context.ScopeManager + TagHelperEndCall)

	w.DecreaseIndent()
	w.WriteLine(GeneratedBlockClose)
}

// createHelpers writes one helper variable per descriptor.
func (r *TagHelperRenderer) createHelpers(descriptors []*TagHelperDescriptor) []tagHelperBinding {
	w := r.builder.w
	used := make(map[string]int)
	bindings := make([]tagHelperBinding, 0, len(descriptors))
	for _, d := range descriptors {
		variable := helperVariableName(d.TypeName)
		used[variable]++
		if n := used[variable]; n > 1 {
			variable += strconv.Itoa(n)
		}
		w.WriteLine(variable + " := " + r.context.CreateTagHelperMethod + TagHelperTypeOpen + d.TypeName + TagHelperCreateArgs)
		bindings = append(bindings, tagHelperBinding{descriptor: d, variable: variable})
	}
	return bindings
}

// writeBoundAttribute assigns an attribute value to a helper property.
func (r *TagHelperRenderer) writeBoundAttribute(target string, desc *TagHelperAttributeDescriptor, attr TagHelperAttributeChunk, document bool) {
	b := r.builder
	code := attr.Value
	span := attr.ValueSpan
	explicit := strings.HasPrefix(code, TransitionText)
	if explicit {
		code = code[len(TransitionText):]
		if span != nil {
			shifted := MappingLocation{SourceLocation: span.SourceLocation.Advance(TransitionText), ContentLength: len(code)}
			span = &shifted
		}
	}

	switch {
	case desc.TypeName == StringTypeName && !explicit:
		b.w.WriteLine(target + " = " + strconv.Quote(attr.Value))
	case desc.TypeName == r.context.ModelExpressionTypeName:
		prefix := target + " = " + r.context.CreateModelExpressionMethod + ModelExpressionOpen + ModelExpressionParameter + " " + b.modelType + ModelExpressionReturn
		if !explicit {
			prefix += ModelExpressionParameter + "."
		}
		b.writeCodeLine(prefix, code, ModelExpressionSuffix, span, document)
	default:
		b.writeCodeLine(target+" = ", code, "", span, document)
	}
}

// helperVariableName turns "*pkg.Type[T]" into "__Type".
func helperVariableName(typeName string) string {
	name := strings.TrimLeft(typeName, "*")
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return TagHelperVariablePrefix + name
}
