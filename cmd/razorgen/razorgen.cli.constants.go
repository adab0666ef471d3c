package main

import "os"

// CLI identity
const (
	CLIName        = "razorgen"
	CLIDescription = "Compile Razor-style .gohtml templates into Go source"
)

// Command names
const (
	CmdNameGenerate = "generate"
	CmdNameMappings = "mappings"
	CmdNameVersion  = "version"
)

// Command usage lines
const (
	UseGenerate = CmdNameGenerate + " <file|dir>"
	UseMappings = CmdNameMappings + " <file>"
	UseVersion  = CmdNameVersion
)

// Command descriptions
const (
	ShortGenerate = "Generate Go code for a template or every template below a directory"
	ShortMappings = "Print the design-time line mappings of a template as YAML"
	ShortVersion  = "Show version information"
	LongGenerate  = `Generate compiles .gohtml templates into Go files.

A directory argument is walked recursively. Paths matched by a .razorignore
file in the application root are skipped, as are hidden directories and
_ViewStart files. Each template is written next to itself as <name>.go, or
below --out when given. A razor.yaml in the application root is loaded when
--config is not set.`
)

// Flag names - long form
const (
	FlagRoot       = "root"
	FlagOut        = "out"
	FlagDesignTime = "design-time"
	FlagConfig     = "config"
	FlagNamespace  = "namespace"
	FlagQuiet      = "quiet"
	FlagVerbose    = "verbose"
	FlagFormat     = "format"
)

// Flag names - short form
const (
	FlagRootShort      = "r"
	FlagOutShort       = "o"
	FlagConfigShort    = "c"
	FlagNamespaceShort = "n"
	FlagQuietShort     = "q"
	FlagVerboseShort   = "v"
	FlagFormatShort    = "F"
)

// Flag help texts
const (
	FlagHelpRoot       = "application root (default: the directory argument or the file's directory)"
	FlagHelpOut        = "output directory mirroring the application root"
	FlagHelpDesignTime = "generate design-time code"
	FlagHelpConfig     = "host configuration file"
	FlagHelpNamespace  = "Go package name of the generated code"
	FlagHelpQuiet      = "only report errors"
	FlagHelpVerbose    = "log debug output to stderr"
	FlagHelpFormat     = "output format (text or json)"
)

// Flag default values
const (
	FlagDefaultFormat = OutputFormatText
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// File names and permissions
const (
	DefaultConfigFileName = "razor.yaml"
	IgnoreFileName        = ".razorignore"
	FilePermissions       = os.FileMode(0o644)
	DirectoryPermissions  = os.FileMode(0o755)
	hiddenDirectoryPrefix = "."
)

// Error messages - ALL must be constants
const (
	ErrMsgInvalidRoot       = "invalid application root"
	ErrMsgInputOutsideRoot  = "input is outside the application root"
	ErrMsgInputNotFound     = "input not found"
	ErrMsgNotATemplate      = "input is not a template file"
	ErrMsgConfigLoadFailed  = "failed to load config"
	ErrMsgIgnoreFileFailed  = "failed to load ignore file"
	ErrMsgWalkFailed        = "failed to walk templates"
	ErrMsgHostFailed        = "failed to create host"
	ErrMsgOpenFileFailed    = "failed to open file"
	ErrMsgGenerateFailed    = "code generation failed"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgTemplateErrors    = "templates have errors"
	ErrMsgMarshalFailed     = "failed to marshal output"
	ErrMsgInvalidFormat     = "invalid output format"
	ErrMsgNoTemplatesFound  = "no templates found"
)

// Log messages
const (
	LogMsgTemplateSkipped = "template skipped"
	LogMsgTemplateWritten = "generated file written"
	LogMsgWalkComplete    = "template walk complete"
)

// Log field names
const (
	LogFieldOutput    = "output"
	LogFieldTemplates = "templates"
	LogFieldReason    = "reason"
)

// Skip reasons
const (
	SkipReasonIgnored   = "ignored"
	SkipReasonViewStart = "view start"
	SkipReasonHidden    = "hidden directory"
)

// Output format strings
const (
	FmtCause      = "%s: %v"
	FmtError      = "%s\n"
	FmtDiagnostic = "%s:%d:%d: %s\n"
	FmtGenerated  = "%s -> %s\n"
	FmtSummary    = "%d generated, %d failed\n"
	FmtNewline    = "\n"
)

// Version output
const (
	VersionTextTemplate = CLIName + " version %s\nGo: %s"
	VersionUnknown      = "unknown"
	VersionDevel        = "(devel)"
)
