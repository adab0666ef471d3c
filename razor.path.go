package razor

import (
	"strings"
)

const (
	pathSeparator      = "/"
	windowsSeparator   = `\`
	doubleSeparator    = "//"
	driveLetterSuffix  = ':'
	driveLetterPrefixN = 2
)

// PathNormalizer turns a raw template path into the application-relative
// form used as cache key and inheritance anchor.
type PathNormalizer interface {
	NormalizePath(rawPath string) string
}

// PathNormalizerFunc adapts a function to PathNormalizer.
type PathNormalizerFunc func(rawPath string) string

// NormalizePath calls f.
func (f PathNormalizerFunc) NormalizePath(rawPath string) string {
	return f(rawPath)
}

// DefaultPathNormalizer canonicalizes separators and strips root markers
// without an application root.
var DefaultPathNormalizer PathNormalizer = PathNormalizerFunc(func(rawPath string) string {
	return NormalizePath(rawPath, "")
})

// DesignTimePathNormalizer strips a fixed application root.
type DesignTimePathNormalizer struct {
	applicationRoot string
}

// NewDesignTimePathNormalizer creates a normalizer bound to applicationRoot.
func NewDesignTimePathNormalizer(applicationRoot string) *DesignTimePathNormalizer {
	return &DesignTimePathNormalizer{applicationRoot: applicationRoot}
}

// NormalizePath implements PathNormalizer.
func (n *DesignTimePathNormalizer) NormalizePath(rawPath string) string {
	return NormalizePath(rawPath, n.applicationRoot)
}

// ApplicationRoot returns the configured root as given.
func (n *DesignTimePathNormalizer) ApplicationRoot() string {
	return n.applicationRoot
}

// NormalizePath returns rawPath relative to applicationRoot with forward
// slashes and no root marker. Recognized roots are "//" and "\\" (UNC),
// "X:/" and "X:\" (drive letters) and "/". The root is compared without
// regard to case. A path outside the root is returned separator-normalized
// with its root marker removed. The function never fails and is idempotent
// for rooted application roots. A relative applicationRoot is stripped on
// every call, so "proj/proj/x" becomes "proj/x" and then "x"; normalize such
// paths once.
func NormalizePath(rawPath, applicationRoot string) string {
	path, pathRooted := canonicalPath(rawPath)
	if applicationRoot == "" {
		return path
	}

	root, rootRooted := canonicalPath(applicationRoot)
	if root == "" || pathRooted != rootRooted {
		return path
	}

	switch {
	case strings.EqualFold(path, root):
		return ""
	case len(path) > len(root) && strings.EqualFold(path[:len(root)], root) && path[len(root)] == '/':
		return path[len(root)+1:]
	}
	return path
}

// canonicalPath converts separators, strips any root marker and collapses
// repeated or trailing separators. It reports whether a root marker was
// present.
func canonicalPath(raw string) (string, bool) {
	p := strings.ReplaceAll(raw, windowsSeparator, pathSeparator)
	rooted := false

	if len(p) >= driveLetterPrefixN && isASCIILetter(p[0]) && p[1] == driveLetterSuffix {
		p = p[driveLetterPrefixN:]
		rooted = true
	}
	if strings.HasPrefix(p, pathSeparator) {
		rooted = true
	}

	for strings.Contains(p, doubleSeparator) {
		p = strings.ReplaceAll(p, doubleSeparator, pathSeparator)
	}
	p = strings.Trim(p, pathSeparator)
	return p, rooted
}

func isASCIILetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// parentDir returns the directory part of a normalized path, "" at the root.
func parentDir(normalized string) string {
	if i := strings.LastIndex(normalized, pathSeparator); i >= 0 {
		return normalized[:i]
	}
	return ""
}

// joinPath joins a normalized directory and a file name.
func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + pathSeparator + name
}
