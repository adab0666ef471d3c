package razor

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the YAML form of a host configuration, usually razor.yaml.
// Unset fields keep the host defaults.
type ConfigFile struct {
	Namespace         string                  `yaml:"namespace,omitempty"`
	ClassName         string                  `yaml:"class_name,omitempty"`
	BaseType          string                  `yaml:"base_type,omitempty"`
	DefaultModel      string                  `yaml:"default_model,omitempty"`
	Imports           []string                `yaml:"imports,omitempty"`
	Injects           []string                `yaml:"injects,omitempty"`
	ViewStartFileName string                  `yaml:"view_start,omitempty"`
	ApplicationRoot   string                  `yaml:"application_root,omitempty"`
	DesignTime        *bool                   `yaml:"design_time,omitempty"`
	Instrumentation   *bool                   `yaml:"instrumentation,omitempty"`
	LinePragmas       *bool                   `yaml:"line_pragmas,omitempty"`
	FixedTagHelperID  string                  `yaml:"fixed_tag_helper_id,omitempty"`
	TagHelpers        []*TagHelperDescriptor  `yaml:"tag_helpers,omitempty"`
	TagHelperContext  *ConfigTagHelperContext `yaml:"tag_helper_context,omitempty"`
}

// ConfigTagHelperContext overrides runtime member names used by generated tag
// helper code.
type ConfigTagHelperContext struct {
	ScopeManager                string `yaml:"scope_manager,omitempty"`
	CreateTagHelperMethod       string `yaml:"create_tag_helper,omitempty"`
	RunTagHelperMethod          string `yaml:"run_tag_helper,omitempty"`
	ModelExpressionTypeName     string `yaml:"model_expression_type,omitempty"`
	CreateModelExpressionMethod string `yaml:"create_model_expression,omitempty"`
	ExecutionContextVariable    string `yaml:"execution_context_variable,omitempty"`
}

// LoadConfigFile reads and parses a YAML host configuration.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigFileError(ErrMsgConfigRead, path, err)
	}
	return ParseConfigFile(data, path)
}

// ParseConfigFile parses YAML host configuration data. path is only used in
// errors.
func ParseConfigFile(data []byte, path string) (*ConfigFile, error) {
	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, NewConfigFileError(ErrMsgConfigParse, path, err)
	}
	for _, d := range cfg.TagHelpers {
		if d == nil || d.TagName == "" || d.TypeName == "" {
			return nil, NewConfigFileError(ErrMsgConfigTagHelper, path, nil)
		}
	}
	return &cfg, nil
}

// Options converts the file into host options.
func (c *ConfigFile) Options() []Option {
	var opts []Option
	if c.Namespace != "" {
		opts = append(opts, WithNamespace(c.Namespace))
	}
	if c.ClassName != "" {
		opts = append(opts, WithClassName(c.ClassName))
	}
	if c.BaseType != "" {
		opts = append(opts, WithBaseType(c.BaseType))
	}
	if c.DefaultModel != "" {
		opts = append(opts, WithDefaultModel(c.DefaultModel))
	}
	if c.Imports != nil {
		opts = append(opts, WithNamespaceImports(c.Imports...))
	}
	if c.Injects != nil {
		opts = append(opts, WithDefaultInjects(c.Injects...))
	}
	if c.ViewStartFileName != "" {
		opts = append(opts, WithViewStartFileName(c.ViewStartFileName))
	}
	if c.ApplicationRoot != "" {
		opts = append(opts, WithApplicationRoot(c.ApplicationRoot))
	}
	if c.DesignTime != nil {
		opts = append(opts, WithDesignTimeMode(*c.DesignTime))
	}
	if c.Instrumentation != nil {
		opts = append(opts, WithInstrumentation(*c.Instrumentation))
	}
	if c.LinePragmas != nil {
		opts = append(opts, WithLinePragmas(*c.LinePragmas))
	}
	if c.FixedTagHelperID != "" {
		opts = append(opts, WithFixedTagHelperIDs(c.FixedTagHelperID))
	}
	if len(c.TagHelpers) > 0 {
		opts = append(opts, WithTagHelpers(c.TagHelpers...))
	}
	if c.TagHelperContext != nil {
		opts = append(opts, WithTagHelperContext(GeneratedTagHelperContext(*c.TagHelperContext)))
	}
	return opts
}
