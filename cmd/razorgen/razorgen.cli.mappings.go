package main

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	razor "github.com/itsatony/go-razor"
)

// mappingsOutput is the YAML document printed by the mappings command.
type mappingsOutput struct {
	Path     string              `yaml:"path"`
	Mappings []razor.LineMapping `yaml:"mappings"`
}

func newMappingsCommand(opts *cliOptions) *cobra.Command {
	flags := &hostFlags{}
	cmd := &cobra.Command{
		Use:   UseMappings,
		Short: ShortMappings,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMappings(cmd, opts, flags, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.root, FlagRoot, FlagRootShort, "", FlagHelpRoot)
	f.StringVarP(&flags.config, FlagConfig, FlagConfigShort, "", FlagHelpConfig)
	f.StringVarP(&flags.namespace, FlagNamespace, FlagNamespaceShort, "", FlagHelpNamespace)
	return cmd
}

func runMappings(cmd *cobra.Command, opts *cliOptions, flags *hostFlags, input string) error {
	absInput, root, isDir, err := resolveInput(input, flags.root)
	if err != nil {
		return err
	}
	if isDir || filepath.Ext(absInput) != razor.TemplateFileExtension {
		return newExitError(ExitCodeInputError, ErrMsgNotATemplate, errors.New(absInput))
	}

	ws, err := newWorkspace(opts, flags, root, true)
	if err != nil {
		return err
	}
	results, err := ws.compile(cmd.Context(), absInput)
	if err != nil {
		return err
	}
	if !results.Success {
		ws.reportDiagnostics(opts.stderr, absInput, results)
		return newExitError(ExitCodeValidationError, ErrMsgTemplateErrors, nil)
	}

	out, err := yaml.Marshal(mappingsOutput{
		Path:     ws.relative(absInput),
		Mappings: results.DesignTimeLineMappings,
	})
	if err != nil {
		return newExitError(ExitCodeError, ErrMsgMarshalFailed, err)
	}
	if _, err := opts.stdout.Write(out); err != nil {
		return newExitError(ExitCodeError, ErrMsgWriteOutputFailed, err)
	}
	return nil
}
