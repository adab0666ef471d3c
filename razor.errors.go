package razor

import (
	"github.com/itsatony/go-cuserr"
)

// Error message constants
const (
	// Host and configuration errors
	ErrMsgNilCache           = "code tree cache is required"
	ErrMsgInvalidNamespace   = "namespace must be a valid Go package name"
	ErrMsgInvalidClassName   = "class name must be a valid Go identifier"
	ErrMsgEmptyViewStartName = "view start file name cannot be empty"
	ErrMsgReadInput          = "failed to read template input"
	ErrMsgConfigRead         = "failed to read razor config file"
	ErrMsgConfigParse        = "failed to parse razor config file"
	ErrMsgConfigTagHelper    = "tag helper entries require a tag and a type"
	ErrMsgInvalidInject      = "default injects must be written as 'Name Type'"

	// File provider errors
	ErrMsgFileNotFound       = "template file not found"
	ErrMsgFileRead           = "failed to read template file"
	ErrMsgInvalidProviderDir = "file provider root must be an existing directory"
	ErrMsgPathEscapesRoot    = "template path escapes the provider root"

	// PostgreSQL provider errors
	ErrMsgPostgresConnect = "failed to connect to postgres"
	ErrMsgPostgresQuery   = "postgres template query failed"
	ErrMsgPostgresMigrate = "failed to create postgres templates table"
	ErrMsgEmptyDSN        = "postgres connection string cannot be empty"
)

// Code tree diagnostics reported alongside parser errors
const (
	ErrMsgDuplicateModel    = "only one 'model' directive is allowed per template"
	ErrMsgModelWithInherits = "the 'inherits' directive is not allowed together with the 'model' directive"
	ErrMsgInjectMalformed   = "the 'inject' directive expects a member name followed by a type"
	ErrMsgUsingMalformed    = "the 'using' directive expects a quoted import path with an optional alias"
)

// Error code constants for categorization
const (
	ErrCodeConfig   = "RAZOR_CONFIG"
	ErrCodeInput    = "RAZOR_INPUT"
	ErrCodeProvider = "RAZOR_PROVIDER"
	ErrCodeStorage  = "RAZOR_STORAGE"
)

// NewConfigError creates a configuration error for field.
func NewConfigError(msg, field, value string) error {
	return cuserr.NewValidationError(ErrCodeConfig, msg).
		WithMetadata(MetaKeyField, field).
		WithMetadata(MetaKeyValue, value)
}

// NewConfigFileError creates an error for an unreadable or invalid config file.
func NewConfigFileError(msg, path string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeConfig, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeConfig, msg)
	}
	return err.WithMetadata(MetaKeyPath, path)
}

// NewReadInputError creates an error for a template stream that cannot be read.
func NewReadInputError(path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeInput, ErrMsgReadInput).
		WithMetadata(MetaKeyPath, path)
}

// NewFileNotFoundError creates a not-found error for a template path.
func NewFileNotFoundError(path string) error {
	return cuserr.NewNotFoundError(MetaKeyPath, ErrMsgFileNotFound).
		WithMetadata(MetaKeyPath, path)
}

// NewFileReadError creates an error for a template that exists but cannot be read.
func NewFileReadError(path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeProvider, ErrMsgFileRead).
		WithMetadata(MetaKeyPath, path)
}

// NewProviderRootError creates an error for an invalid provider root.
func NewProviderRootError(msg, root string) error {
	return cuserr.NewValidationError(ErrCodeProvider, msg).
		WithMetadata(MetaKeyRoot, root)
}

// NewPostgresError creates a storage error for a failed postgres operation.
func NewPostgresError(msg, operation string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeStorage, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeStorage, msg)
	}
	return err.WithMetadata(MetaKeyOperation, operation)
}
