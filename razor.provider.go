package razor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// FileInfo describes a template file. Version changes whenever the content
// changes and is used by the code tree cache as freshness marker.
type FileInfo struct {
	Path    string
	Version string
}

// FileProvider gives read access to templates by normalized path.
type FileProvider interface {
	// GetFileInfo returns an error when the file does not exist.
	GetFileInfo(ctx context.Context, path string) (FileInfo, error)
	ReadFile(ctx context.Context, path string) (string, error)
}

// OSFileProvider serves templates from a directory on disk. Versions are
// derived from modification time and size.
type OSFileProvider struct {
	root string
}

// NewOSFileProvider creates a provider rooted at dir.
func NewOSFileProvider(dir string) (*OSFileProvider, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, NewProviderRootError(ErrMsgInvalidProviderDir, dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, NewProviderRootError(ErrMsgInvalidProviderDir, dir)
	}
	return &OSFileProvider{root: abs}, nil
}

// Root returns the absolute provider directory.
func (p *OSFileProvider) Root() string {
	return p.root
}

// GetFileInfo implements FileProvider.
func (p *OSFileProvider) GetFileInfo(ctx context.Context, path string) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}
	full, err := p.resolve(path)
	if err != nil {
		return FileInfo{}, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileInfo{}, NewFileNotFoundError(path)
		}
		return FileInfo{}, NewFileReadError(path, err)
	}
	if info.IsDir() {
		return FileInfo{}, NewFileNotFoundError(path)
	}
	version := strconv.FormatInt(info.ModTime().UnixNano(), 10) + "-" + strconv.FormatInt(info.Size(), 10)
	return FileInfo{Path: path, Version: version}, nil
}

// ReadFile implements FileProvider.
func (p *OSFileProvider) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := p.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", NewFileNotFoundError(path)
		}
		return "", NewFileReadError(path, err)
	}
	return string(data), nil
}

// resolve maps a normalized path into the root, rejecting escapes.
func (p *OSFileProvider) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", NewProviderRootError(ErrMsgPathEscapesRoot, path)
	}
	return filepath.Join(p.root, clean), nil
}

// MemoryFileProvider keeps templates in memory. Every Set bumps the version.
type MemoryFileProvider struct {
	mu      sync.RWMutex
	files   map[string]memoryFile
	counter int64
}

type memoryFile struct {
	content string
	version int64
}

// NewMemoryFileProvider creates an empty in-memory provider.
func NewMemoryFileProvider() *MemoryFileProvider {
	return &MemoryFileProvider{files: make(map[string]memoryFile)}
}

// Set stores or replaces a template.
func (p *MemoryFileProvider) Set(path, content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counter++
	p.files[path] = memoryFile{content: content, version: p.counter}
}

// Delete removes a template.
func (p *MemoryFileProvider) Delete(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.files, path)
}

// GetFileInfo implements FileProvider.
func (p *MemoryFileProvider) GetFileInfo(ctx context.Context, path string) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	f, ok := p.files[path]
	if !ok {
		return FileInfo{}, NewFileNotFoundError(path)
	}
	return FileInfo{Path: path, Version: strconv.FormatInt(f.version, 10)}, nil
}

// ReadFile implements FileProvider.
func (p *MemoryFileProvider) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	f, ok := p.files[path]
	if !ok {
		return "", NewFileNotFoundError(path)
	}
	return f.content, nil
}
