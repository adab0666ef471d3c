package razor

import (
	"context"

	"go.uber.org/zap"
)

// ChunkInheritanceResolver returns the ancestor code trees of a page whose
// inheritable chunks are merged into the page, root-most ancestor first.
type ChunkInheritanceResolver interface {
	GetInheritedCodeTrees(ctx context.Context, normalizedPath string) []*CodeTree
}

// ChunkInheritanceResolverFunc adapts a function to ChunkInheritanceResolver.
type ChunkInheritanceResolverFunc func(ctx context.Context, normalizedPath string) []*CodeTree

// GetInheritedCodeTrees calls f.
func (f ChunkInheritanceResolverFunc) GetInheritedCodeTrees(ctx context.Context, normalizedPath string) []*CodeTree {
	return f(ctx, normalizedPath)
}

// ViewFileParser builds the code tree of an ancestor file.
type ViewFileParser interface {
	ParseViewFile(ctx context.Context, normalizedPath, content string) *CodeTree
}

// ChunkInheritanceUtility discovers view start files by walking from a page's
// directory up to the application root.
type ChunkInheritanceUtility struct {
	parser            ViewFileParser
	cache             CodeTreeCache
	viewStartFileName string
	logger            *zap.Logger
}

// NewChunkInheritanceUtility creates a resolver that loads ancestors through
// cache, parsing misses with parser.
func NewChunkInheritanceUtility(parser ViewFileParser, cache CodeTreeCache, viewStartFileName string, logger *zap.Logger) *ChunkInheritanceUtility {
	if logger == nil {
		logger = zap.NewNop()
	}
	if viewStartFileName == "" {
		viewStartFileName = DefaultViewStartFileName
	}
	return &ChunkInheritanceUtility{
		parser:            parser,
		cache:             cache,
		viewStartFileName: viewStartFileName,
		logger:            logger,
	}
}

// GetInheritedCodeTrees implements ChunkInheritanceResolver. Missing or
// unreadable view start files are skipped. A page that is already being
// resolved further up the call chain gets no ancestors.
func (u *ChunkInheritanceUtility) GetInheritedCodeTrees(ctx context.Context, normalizedPath string) []*CodeTree {
	if isResolving(ctx, normalizedPath) {
		u.logger.Debug(LogMsgInheritanceCycle, zap.String(LogFieldNormalized, normalizedPath))
		return nil
	}
	ctx = withResolving(ctx, normalizedPath)

	var nearestFirst []*CodeTree
	visited := make(map[string]bool)
	dir := parentDir(normalizedPath)
	for !visited[dir] {
		visited[dir] = true

		candidate := joinPath(dir, u.viewStartFileName)
		if candidate != normalizedPath {
			tree := u.cache.GetOrAdd(ctx, candidate, func(_ FileInfo, content string) *CodeTree {
				return u.parser.ParseViewFile(ctx, candidate, content)
			})
			if tree != nil {
				u.logger.Debug(LogMsgViewStartLoaded, zap.String(LogFieldPath, candidate))
				nearestFirst = append(nearestFirst, tree)
			}
		}

		if dir == "" {
			break
		}
		dir = parentDir(dir)
	}

	result := make([]*CodeTree, 0, len(nearestFirst))
	for i := len(nearestFirst) - 1; i >= 0; i-- {
		result = append(result, nearestFirst[i])
	}
	u.logger.Debug(LogMsgInheritanceResolved,
		zap.String(LogFieldNormalized, normalizedPath),
		zap.Int(LogFieldAncestors, len(result)))
	return result
}

type resolvingKey struct{}

// withResolving returns a context that marks path as being resolved.
func withResolving(ctx context.Context, path string) context.Context {
	current, _ := ctx.Value(resolvingKey{}).(map[string]bool)
	next := make(map[string]bool, len(current)+1)
	for k := range current {
		next[k] = true
	}
	next[path] = true
	return context.WithValue(ctx, resolvingKey{}, next)
}

func isResolving(ctx context.Context, path string) bool {
	current, _ := ctx.Value(resolvingKey{}).(map[string]bool)
	return current[path]
}

// MergeInheritedCodeTrees returns a copy of tree with the inheritable chunks
// of defaults and inherited prepended. Layers apply in the order defaults,
// inherited (root-most first), tree; a later layer overrides an earlier one:
//   - imports are a union keyed by alias and path,
//   - the base type of the latest layer declaring one wins,
//   - injected members are keyed by name, the latest declaration wins,
//   - tag helper registrations are a union keyed by pattern.
//
// Declarations of tree itself stay in place and are never duplicated.
func MergeInheritedCodeTrees(tree *CodeTree, inherited []*CodeTree, defaults []Chunk) *CodeTree {
	docChunks := tree.Chunks()

	docImports := make(map[string]bool)
	docInjects := make(map[string]bool)
	docPatterns := make(map[string]bool)
	docBaseType := false
	WalkChunks(docChunks, func(c Chunk) {
		switch chunk := c.(type) {
		case *UsingChunk:
			docImports[chunk.key()] = true
		case *InjectChunk:
			docInjects[chunk.MemberName] = true
		case *AddTagHelperChunk:
			docPatterns[chunk.Pattern] = true
		case *SetBaseTypeChunk:
			docBaseType = true
		}
	})

	layers := [][]Chunk{defaults}
	for _, ancestor := range inherited {
		if ancestor != nil {
			layers = append(layers, ancestor.InheritableChunks())
		}
	}

	var imports []Chunk
	seenImports := make(map[string]bool)
	var baseType Chunk
	var injectOrder []string
	injects := make(map[string]Chunk)
	var tagHelpers []Chunk
	seenPatterns := make(map[string]bool)

	for _, layer := range layers {
		for _, c := range layer {
			switch chunk := c.(type) {
			case *UsingChunk:
				key := chunk.key()
				if docImports[key] || seenImports[key] {
					continue
				}
				seenImports[key] = true
				imports = append(imports, chunk)
			case *SetBaseTypeChunk:
				if !docBaseType {
					baseType = chunk
				}
			case *InjectChunk:
				if docInjects[chunk.MemberName] {
					continue
				}
				if _, ok := injects[chunk.MemberName]; !ok {
					injectOrder = append(injectOrder, chunk.MemberName)
				}
				injects[chunk.MemberName] = chunk
			case *AddTagHelperChunk:
				if docPatterns[chunk.Pattern] || seenPatterns[chunk.Pattern] {
					continue
				}
				seenPatterns[chunk.Pattern] = true
				tagHelpers = append(tagHelpers, chunk)
			}
		}
	}

	merged := make([]Chunk, 0, len(imports)+len(injectOrder)+len(tagHelpers)+len(docChunks)+1)
	merged = append(merged, imports...)
	if baseType != nil {
		merged = append(merged, baseType)
	}
	for _, name := range injectOrder {
		merged = append(merged, injects[name])
	}
	merged = append(merged, tagHelpers...)
	merged = append(merged, docChunks...)
	return NewCodeTree(tree.Path(), merged)
}

// inheritedTagHelperPatterns collects the @addTagHelper patterns of inherited.
func inheritedTagHelperPatterns(inherited []*CodeTree) []string {
	var patterns []string
	seen := make(map[string]bool)
	for _, tree := range inherited {
		if tree == nil {
			continue
		}
		for _, c := range tree.InheritableChunks() {
			if chunk, ok := c.(*AddTagHelperChunk); ok && !seen[chunk.Pattern] {
				seen[chunk.Pattern] = true
				patterns = append(patterns, chunk.Pattern)
			}
		}
	}
	return patterns
}
