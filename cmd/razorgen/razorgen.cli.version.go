package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

// versionOutput represents JSON output for version
type versionOutput struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
}

func newVersionCommand(opts *cliOptions) *cobra.Command {
	format := FlagDefaultFormat
	cmd := &cobra.Command{
		Use:   UseVersion,
		Short: ShortVersion,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(opts.stdout, format)
		},
	}
	cmd.Flags().StringVarP(&format, FlagFormat, FlagFormatShort, FlagDefaultFormat, FlagHelpFormat)
	return cmd
}

func runVersion(stdout io.Writer, format string) error {
	info := versionOutput{Version: buildVersion(), GoVersion: runtime.Version()}

	switch format {
	case OutputFormatText:
		fmt.Fprintf(stdout, VersionTextTemplate+FmtNewline, info.Version, info.GoVersion)
		return nil
	case OutputFormatJSON:
		jsonBytes, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return newExitError(ExitCodeError, ErrMsgMarshalFailed, err)
		}
		fmt.Fprintln(stdout, string(jsonBytes))
		return nil
	default:
		return newExitError(ExitCodeUsageError, ErrMsgInvalidFormat, errors.New(format))
	}
}

// buildVersion prefers the linker-provided version, then the module version
// recorded in the binary.
func buildVersion() string {
	if version != "" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != VersionDevel {
		return bi.Main.Version
	}
	return VersionUnknown
}
