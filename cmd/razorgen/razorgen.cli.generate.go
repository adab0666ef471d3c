package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	razor "github.com/itsatony/go-razor"
)

// generateConfig holds parsed generate command configuration
type generateConfig struct {
	hostFlags
	out   string
	quiet bool
}

func newGenerateCommand(opts *cliOptions) *cobra.Command {
	cfg := &generateConfig{}
	cmd := &cobra.Command{
		Use:   UseGenerate,
		Short: ShortGenerate,
		Long:  LongGenerate,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, cfg, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.root, FlagRoot, FlagRootShort, "", FlagHelpRoot)
	flags.StringVarP(&cfg.out, FlagOut, FlagOutShort, "", FlagHelpOut)
	flags.BoolVar(&cfg.designTime, FlagDesignTime, false, FlagHelpDesignTime)
	flags.StringVarP(&cfg.config, FlagConfig, FlagConfigShort, "", FlagHelpConfig)
	flags.StringVarP(&cfg.namespace, FlagNamespace, FlagNamespaceShort, "", FlagHelpNamespace)
	flags.BoolVarP(&cfg.quiet, FlagQuiet, FlagQuietShort, false, FlagHelpQuiet)
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *cliOptions, cfg *generateConfig, input string) error {
	absInput, root, isDir, err := resolveInput(input, cfg.root)
	if err != nil {
		return err
	}
	if !isDir && filepath.Ext(absInput) != razor.TemplateFileExtension {
		return newExitError(ExitCodeInputError, ErrMsgNotATemplate, errors.New(absInput))
	}

	ws, err := newWorkspace(opts, &cfg.hostFlags, root, false)
	if err != nil {
		return err
	}

	templates := []string{absInput}
	if isDir {
		templates, err = discoverTemplates(root, absInput, ws.host.Config().ViewStartFileName(), ws.logger)
		if err != nil {
			return err
		}
		if len(templates) == 0 {
			return newExitError(ExitCodeInputError, ErrMsgNoTemplatesFound, errors.New(absInput))
		}
	}

	outRoot := ""
	if cfg.out != "" {
		if outRoot, err = filepath.Abs(cfg.out); err != nil {
			return newExitError(ExitCodeInputError, ErrMsgWriteOutputFailed, err)
		}
	}

	ctx := cmd.Context()
	generated, failed := 0, 0
	for _, path := range templates {
		results, err := ws.compile(ctx, path)
		if err != nil {
			return err
		}
		if !results.Success {
			ws.reportDiagnostics(opts.stderr, path, results)
			failed++
			continue
		}

		target := outputPath(ws, outRoot, path)
		if err := writeGenerated(target, results.GeneratedCode); err != nil {
			return err
		}
		ws.logger.Debug(LogMsgTemplateWritten,
			zap.String(razor.LogFieldPath, path),
			zap.String(LogFieldOutput, target))
		generated++
		if !cfg.quiet {
			fmt.Fprintf(opts.stdout, FmtGenerated, ws.relative(path), target)
		}
	}

	if !cfg.quiet {
		fmt.Fprintf(opts.stdout, FmtSummary, generated, failed)
	}
	if failed > 0 {
		return newExitError(ExitCodeValidationError, ErrMsgTemplateErrors, nil)
	}
	return nil
}

// discoverTemplates walks dir and returns the template pages below it in
// lexical order. View start files, hidden directories and paths matched by
// the root's .razorignore are skipped.
func discoverTemplates(root, dir, viewStart string, logger *zap.Logger) ([]string, error) {
	gi, err := loadIgnoreFile(root)
	if err != nil {
		return nil, err
	}

	skip := func(path, reason string) {
		logger.Debug(LogMsgTemplateSkipped, zap.String(razor.LogFieldPath, path), zap.String(LogFieldReason, reason))
	}

	var templates []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == dir {
				return nil
			}
			if strings.HasPrefix(d.Name(), hiddenDirectoryPrefix) {
				skip(rel, SkipReasonHidden)
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel+"/") {
				skip(rel, SkipReasonIgnored)
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) != razor.TemplateFileExtension {
			return nil
		}
		if d.Name() == viewStart {
			skip(rel, SkipReasonViewStart)
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			skip(rel, SkipReasonIgnored)
			return nil
		}
		templates = append(templates, path)
		return nil
	})
	if err != nil {
		return nil, newExitError(ExitCodeError, ErrMsgWalkFailed, err)
	}

	logger.Debug(LogMsgWalkComplete, zap.Int(LogFieldTemplates, len(templates)))
	return templates, nil
}

// loadIgnoreFile compiles root/.razorignore. A missing file yields nil.
func loadIgnoreFile(root string) (*ignore.GitIgnore, error) {
	path := filepath.Join(root, IgnoreFileName)
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, newExitError(ExitCodeInputError, ErrMsgIgnoreFileFailed, err)
	}
	return gi, nil
}

// outputPath maps a template to its generated file: next to the template,
// or at the same relative position below outRoot.
func outputPath(ws *workspace, outRoot, path string) string {
	base := strings.TrimSuffix(path, razor.TemplateFileExtension)
	if outRoot != "" {
		rel := strings.TrimSuffix(ws.relative(path), razor.TemplateFileExtension)
		base = filepath.Join(outRoot, filepath.FromSlash(rel))
	}
	return base + razor.GeneratedFileExtension
}

func writeGenerated(path, code string) error {
	if err := os.MkdirAll(filepath.Dir(path), DirectoryPermissions); err != nil {
		return newExitError(ExitCodeError, ErrMsgWriteOutputFailed, err)
	}
	if err := os.WriteFile(path, []byte(code), FilePermissions); err != nil {
		return newExitError(ExitCodeError, ErrMsgWriteOutputFailed, err)
	}
	return nil
}
