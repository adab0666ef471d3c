package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	exitCode := run(os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// run is the main entry point for the CLI, separated for testing
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		return ExitCodeSuccess
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		fmt.Fprintf(stderr, FmtError, exitErr)
		return exitErr.code
	}
	// flag and argument errors reported by cobra
	fmt.Fprintf(stderr, FmtError, err)
	return ExitCodeUsageError
}

// cliOptions holds the persistent flags shared by all commands.
type cliOptions struct {
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &cliOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           CLIName,
		Short:         CLIDescription,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&opts.verbose, FlagVerbose, FlagVerboseShort, false, FlagHelpVerbose)

	root.AddCommand(
		newGenerateCommand(opts),
		newMappingsCommand(opts),
		newVersionCommand(opts),
	)
	return root
}

// logger returns a console logger on stderr in verbose mode, a no-op one
// otherwise.
func (o *cliOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(o.stderr), zapcore.DebugLevel)
	return zap.New(core)
}

// exitError carries the exit code of a failed command.
type exitError struct {
	code  int
	msg   string
	cause error
}

func newExitError(code int, msg string, cause error) *exitError {
	return &exitError{code: code, msg: msg, cause: cause}
}

// Error implements the error interface.
func (e *exitError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf(FmtCause, e.msg, e.cause)
}

// Unwrap returns the cause.
func (e *exitError) Unwrap() error {
	return e.cause
}
