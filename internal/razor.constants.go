package internal

// Transition and delimiter characters
const (
	CharTransition   = '@'
	CharOpenParen    = '('
	CharCloseParen   = ')'
	CharOpenBrace    = '{'
	CharCloseBrace   = '}'
	CharOpenBracket  = '['
	CharCloseBracket = ']'
	CharStar         = '*'
	CharDot          = '.'
	CharLessThan     = '<'
	CharGreaterThan  = '>'
	CharSlash        = '/'
	CharEquals       = '='
	CharDoubleQuote  = '"'
	CharSingleQuote  = '\''
	CharBacktick     = '`'
	CharBackslash    = '\\'
	CharNewline      = '\n'
	CharCarriageRet  = '\r'
	CharSpace        = ' '
	CharTab          = '\t'
)

// Multi-character markers
const (
	StrCommentOpen  = "@*"
	StrCommentClose = "*@"
	StrEscapedAt    = "@@"
	StrSelfClose    = "/>"
	StrEndTagOpen   = "</"
)

// Directive keywords
const (
	DirectiveModel        = "model"
	DirectiveInherits     = "inherits"
	DirectiveInject       = "inject"
	DirectiveUsing        = "using"
	DirectiveAddTagHelper = "addTagHelper"
)

// Control-flow keywords whose body is markup
const (
	KeywordIf   = "if"
	KeywordFor  = "for"
	KeywordElse = "else"
)

// Tag helper matching
const (
	TagHelperPatternAll      = "*"
	TagHelperPatternWildcard = "*"
)

// Log message constants
const (
	LogMsgParserCreated    = "parser created"
	LogMsgParserStart      = "starting parse"
	LogMsgParserEnd        = "parse complete"
	LogMsgTagHelperEnabled = "tag helper enabled"
)

// Log field names
const (
	LogFieldSourceLength = "source_length"
	LogFieldNodes        = "node_count"
	LogFieldErrors       = "error_count"
	LogFieldPattern      = "pattern"
	LogFieldEnabled      = "enabled_count"
)

// Parser error messages
const (
	ErrMsgUnterminatedExplicitExpr = "the explicit expression block is missing a closing ')' character"
	ErrMsgUnterminatedCodeBlock    = "the code block is missing a closing '}' character"
	ErrMsgUnterminatedComment      = "end of file was reached before the end of the comment; expected '*@'"
	ErrMsgUnexpectedAfterAt        = "unexpected character after '@'; expected an identifier, '(' or '{'"
	ErrMsgDirectiveMissingValue    = "the directive requires a value"
	ErrMsgControlFlowMissingBrace  = "the control-flow statement must end with '{' on the same line"
	ErrMsgControlFlowUnclosed      = "the control-flow block is missing a closing '}' character"
	ErrMsgTagHelperUnclosed        = "the tag helper element is missing its end tag"
	ErrMsgTagHelperUnterminatedTag = "the tag helper start tag is missing a closing '>'"
	ErrMsgTagHelperUnterminatedStr = "the tag helper attribute value is missing a closing quote"
	ErrMsgTagHelperBoundNoValue    = "the bound tag helper attribute requires a value"
)

// String limits for debug output
const (
	MaxStringDisplayLength = 40
	TruncatedStringLength  = 37
	TruncationSuffix       = "..."
)
