package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	razor "github.com/itsatony/go-razor"
)

// hostFlags holds the flags that shape the host.
type hostFlags struct {
	root       string
	config     string
	namespace  string
	designTime bool
}

// workspace is a host bound to one application root on disk.
type workspace struct {
	root   string
	host   *razor.Host
	logger *zap.Logger
}

// resolveInput returns the absolute input path, the absolute application
// root and whether the input is a directory.
func resolveInput(input, rootFlag string) (string, string, bool, error) {
	absInput, err := filepath.Abs(input)
	if err != nil {
		return "", "", false, newExitError(ExitCodeInputError, ErrMsgInputNotFound, err)
	}
	info, err := os.Stat(absInput)
	if err != nil {
		return "", "", false, newExitError(ExitCodeInputError, ErrMsgInputNotFound, err)
	}

	root := rootFlag
	if root == "" {
		root = absInput
		if !info.IsDir() {
			root = filepath.Dir(absInput)
		}
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", "", false, newExitError(ExitCodeInputError, ErrMsgInvalidRoot, err)
	}

	rel, err := filepath.Rel(absRoot, absInput)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", false, newExitError(ExitCodeInputError, ErrMsgInputOutsideRoot, errors.New(absInput))
	}
	return absInput, absRoot, info.IsDir(), nil
}

// newWorkspace creates the host for root. Options are applied in order:
// config file, application root and logger, then command line flags.
func newWorkspace(opts *cliOptions, flags *hostFlags, root string, forceDesignTime bool) (*workspace, error) {
	logger := opts.logger()

	provider, err := razor.NewOSFileProvider(root)
	if err != nil {
		return nil, newExitError(ExitCodeInputError, ErrMsgInvalidRoot, err)
	}

	var hostOpts []razor.Option
	cfg, err := loadConfig(flags.config, root)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		hostOpts = append(hostOpts, cfg.Options()...)
		logger.Debug(razor.LogMsgConfigLoaded, zap.String(razor.LogFieldPath, configPath(flags.config, root)))
	}
	hostOpts = append(hostOpts, razor.WithApplicationRoot(root), razor.WithLogger(logger))
	if flags.namespace != "" {
		hostOpts = append(hostOpts, razor.WithNamespace(flags.namespace))
	}
	if flags.designTime || forceDesignTime {
		hostOpts = append(hostOpts, razor.WithDesignTimeMode(true))
	}

	cache := razor.NewDefaultCodeTreeCache(provider, razor.DefaultCodeTreeCacheConfig(), razor.WithCacheLogger(logger))
	host, err := razor.NewHost(cache, hostOpts...)
	if err != nil {
		return nil, newExitError(ExitCodeUsageError, ErrMsgHostFailed, err)
	}
	return &workspace{root: root, host: host, logger: logger}, nil
}

// loadConfig reads the explicit config file, or razor.yaml in root when it
// exists. It returns nil when there is nothing to load.
func loadConfig(explicit, root string) (*razor.ConfigFile, error) {
	path := configPath(explicit, root)
	if explicit == "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
	}
	cfg, err := razor.LoadConfigFile(path)
	if err != nil {
		return nil, newExitError(ExitCodeInputError, ErrMsgConfigLoadFailed, err)
	}
	return cfg, nil
}

func configPath(explicit, root string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Join(root, DefaultConfigFileName)
}

// compile generates the code of the template at path.
func (w *workspace) compile(ctx context.Context, path string) (*razor.GeneratorResults, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newExitError(ExitCodeInputError, ErrMsgOpenFileFailed, err)
	}
	defer f.Close()

	results, err := w.host.GenerateCode(ctx, path, f)
	if err != nil {
		return nil, newExitError(ExitCodeError, ErrMsgGenerateFailed, err)
	}
	return results, nil
}

// relative returns path relative to the application root with forward
// slashes.
func (w *workspace) relative(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// reportDiagnostics prints one line per parser error with one-based
// positions.
func (w *workspace) reportDiagnostics(out io.Writer, path string, results *razor.GeneratorResults) {
	rel := w.relative(path)
	for _, e := range results.ParserErrors {
		fmt.Fprintf(out, FmtDiagnostic, rel, e.Location.LineIndex+1, e.Location.CharacterIndex+1, e.Message)
	}
}
