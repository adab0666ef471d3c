package internal

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ParserOptions configures a Parser.
type ParserOptions struct {
	// TagHelpers holds the tag helpers enabled before the document starts
	// (registrations inherited from _ViewStart files). The parser works on a
	// clone, so @addTagHelper directives in the document do not leak.
	TagHelpers *TagHelperSet
}

// Parser turns template text into a SyntaxTree. It never fails: problems are
// collected as RazorErrors and parsing continues with a best-effort tree.
type Parser struct {
	source     string
	pos        int
	loc        SourceLocation
	tagHelpers *TagHelperSet
	errors     []*RazorError
	logger     *zap.Logger
}

// NewParser creates a parser for source.
func NewParser(source string, opts ParserOptions, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	tagHelpers := opts.TagHelpers
	if tagHelpers == nil {
		tagHelpers = NewTagHelperSet(nil)
	} else {
		tagHelpers = tagHelpers.Clone()
	}
	logger.Debug(LogMsgParserCreated, zap.Int(LogFieldSourceLength, len(source)))
	return &Parser{
		source:     source,
		tagHelpers: tagHelpers,
		logger:     logger,
	}
}

// Parse produces the syntax tree.
func (p *Parser) Parse() *SyntaxTree {
	p.logger.Debug(LogMsgParserStart)

	nodes, _ := p.parseMarkup(markupContext{})

	p.logger.Debug(LogMsgParserEnd,
		zap.Int(LogFieldNodes, len(nodes)),
		zap.Int(LogFieldErrors, len(p.errors)))

	return &SyntaxTree{
		Source: p.source,
		Root:   &RootNode{Children: nodes},
		Errors: p.errors,
	}
}

// markupContext tells parseMarkup what ends the current markup run.
type markupContext struct {
	inBlock bool   // a '}' closes the run
	endTag  string // "</endTag>" closes the run
}

type terminator int

const (
	termEOF terminator = iota
	termCloseBrace
	termEndTag
)

// markupBuffer accumulates literal text between code constructs.
type markupBuffer struct {
	buf      []byte
	start    SourceLocation
	startPos int
	nodes    []Node
}

func (b *markupBuffer) mark(loc SourceLocation, pos int) {
	if len(b.buf) == 0 {
		b.start = loc
		b.startPos = pos
	}
}

func (b *markupBuffer) flush(endPos int) {
	if len(b.buf) > 0 {
		b.nodes = append(b.nodes, &MarkupNode{
			Start:   b.start,
			Content: string(b.buf),
			Length:  endPos - b.startPos,
		})
	}
	b.buf = b.buf[:0]
}

// trimTail drops the indentation between lineStart and pos from the buffer.
func (b *markupBuffer) trimTail(lineStart, pos int) bool {
	n := pos - lineStart
	if n == 0 {
		return true
	}
	if len(b.buf) < n || b.startPos > lineStart {
		return false
	}
	b.buf = b.buf[:len(b.buf)-n]
	return true
}

func (b *markupBuffer) add(node Node, endPos int) {
	b.flush(endPos)
	b.nodes = append(b.nodes, node)
}

// parseMarkup reads markup and code constructs until ctx's terminator or EOF.
// The terminator itself is left unconsumed.
func (p *Parser) parseMarkup(ctx markupContext) ([]Node, terminator) {
	mb := &markupBuffer{}

	for !p.isAtEnd() {
		ch := p.peek()
		switch {
		case ctx.inBlock && ch == CharCloseBrace:
			p.beginLineConstruct(mb)
			return mb.nodes, termCloseBrace
		case ctx.endTag != "" && p.matchEndTag(ctx.endTag):
			mb.flush(p.pos)
			return mb.nodes, termEndTag
		case ch == CharTransition:
			p.parseTransition(mb)
		case ch == CharLessThan && p.tryParseTagHelper(mb):
			// handled
		default:
			mb.mark(p.loc, p.pos)
			mb.buf = append(mb.buf, p.advance())
		}
	}

	mb.flush(p.pos)
	return mb.nodes, termEOF
}

// parseTransition handles everything that starts with '@'.
func (p *Parser) parseTransition(mb *markupBuffer) {
	atLoc := p.loc
	atPos := p.pos

	// Escaped transition
	if p.matchStr(StrEscapedAt) {
		mb.mark(p.loc, p.pos)
		p.advanceN(len(StrEscapedAt))
		mb.buf = append(mb.buf, CharTransition)
		return
	}

	// E-mail style addresses keep the '@' as text
	if atPos > 0 && isAlnum(p.source[atPos-1]) && atPos+1 < len(p.source) && isAlnum(p.source[atPos+1]) {
		mb.mark(p.loc, p.pos)
		mb.buf = append(mb.buf, p.advance())
		return
	}

	// Razor comment
	if p.matchStr(StrCommentOpen) {
		mb.flush(p.pos)
		end := strings.Index(p.source[atPos+len(StrCommentOpen):], StrCommentClose)
		if end < 0 {
			p.addError(ErrMsgUnterminatedComment, atLoc, len(StrCommentOpen))
			p.advanceTo(len(p.source))
			return
		}
		p.advanceTo(atPos + len(StrCommentOpen) + end + len(StrCommentClose))
		return
	}

	next := p.peekAt(1)
	switch {
	case next == CharOpenParen:
		mb.flush(p.pos)
		mb.add(p.parseExplicitExpression(), p.pos)
	case next == CharOpenBrace:
		owned := p.beginLineConstruct(mb)
		mb.nodes = append(mb.nodes, p.parseStatementBlock())
		if owned {
			p.consumeLineEnd()
		}
	case isIdentStart(next):
		word := p.peekWord(atPos + 1)
		after := p.peekAt(1 + len(word))
		switch {
		case isDirective(word) && (isInlineSpace(after) || isLineEnd(after)):
			p.beginLineConstruct(mb)
			mb.nodes = append(mb.nodes, p.parseDirective(word))
			p.consumeLineEnd()
		case isControlFlow(word) && isInlineSpace(after):
			p.beginLineConstruct(mb)
			mb.nodes = append(mb.nodes, p.parseControlFlow(word))
		default:
			mb.flush(p.pos)
			mb.nodes = append(mb.nodes, p.parseImplicitExpression())
		}
	default:
		p.addError(ErrMsgUnexpectedAfterAt, atLoc, 1)
		mb.mark(p.loc, p.pos)
		mb.buf = append(mb.buf, p.advance())
	}
}

// beginLineConstruct flushes pending markup before a construct that owns its
// line. When only indentation precedes the construct on its line, the
// indentation is dropped and true is returned.
func (p *Parser) beginLineConstruct(mb *markupBuffer) bool {
	lineStart := p.pos
	for lineStart > 0 && isInlineSpace(p.source[lineStart-1]) {
		lineStart--
	}
	atLineStart := lineStart == 0 || isLineEnd(p.source[lineStart-1])
	if atLineStart && mb.trimTail(lineStart, p.pos) {
		mb.flush(lineStart)
		return true
	}
	mb.flush(p.pos)
	return false
}

// consumeLineEnd swallows trailing blanks and one line break when nothing
// else follows on the current line.
func (p *Parser) consumeLineEnd() {
	i := p.pos
	for i < len(p.source) && isInlineSpace(p.source[i]) {
		i++
	}
	switch {
	case i >= len(p.source):
		p.advanceTo(i)
	case p.source[i] == CharNewline:
		p.advanceTo(i + 1)
	case p.source[i] == CharCarriageRet:
		if i+1 < len(p.source) && p.source[i+1] == CharNewline {
			p.advanceTo(i + 2)
		} else {
			p.advanceTo(i + 1)
		}
	}
}

// parseExplicitExpression parses @( ... )
func (p *Parser) parseExplicitExpression() Node {
	atLoc := p.loc
	p.advance() // '@'
	openPos := p.pos
	end, ok := p.findBalanced(openPos)
	p.advance() // '('
	start := p.loc
	if !ok {
		p.addError(ErrMsgUnterminatedExplicitExpr, atLoc, 2)
		code := p.source[openPos+1:]
		p.advanceTo(len(p.source))
		return &ExpressionNode{Start: start, Code: code, Explicit: true}
	}
	code := p.source[openPos+1 : end-1]
	p.advanceTo(end)
	return &ExpressionNode{Start: start, Code: code, Explicit: true}
}

// parseStatementBlock parses @{ ... }
func (p *Parser) parseStatementBlock() Node {
	atLoc := p.loc
	p.advance() // '@'
	openPos := p.pos
	end, ok := p.findBalanced(openPos)
	p.advance() // '{'
	start := p.loc
	if !ok {
		p.addError(ErrMsgUnterminatedCodeBlock, atLoc, 2)
		code := p.source[openPos+1:]
		p.advanceTo(len(p.source))
		return &StatementNode{Start: start, Code: code}
	}
	code := p.source[openPos+1 : end-1]
	p.advanceTo(end)
	return &StatementNode{Start: start, Code: code}
}

// parseImplicitExpression parses @Ident(.Ident|(...)|[...])*
func (p *Parser) parseImplicitExpression() Node {
	p.advance() // '@'
	start := p.loc
	startPos := p.pos
	p.scanIdentifier()

	for !p.isAtEnd() {
		ch := p.peek()
		if ch == CharDot && isIdentStart(p.peekAt(1)) {
			p.advance()
			p.scanIdentifier()
			continue
		}
		if ch == CharOpenParen || ch == CharOpenBracket {
			end, ok := p.findBalanced(p.pos)
			if !ok {
				p.addError(ErrMsgUnterminatedExplicitExpr, p.loc, 1)
				p.advanceTo(len(p.source))
				break
			}
			p.advanceTo(end)
			continue
		}
		break
	}

	return &ExpressionNode{Start: start, Code: p.source[startPos:p.pos]}
}

// parseDirective parses "@keyword value" up to the end of the line.
func (p *Parser) parseDirective(name string) Node {
	atLoc := p.loc
	p.advanceN(1 + len(name))
	for !p.isAtEnd() && isInlineSpace(p.peek()) {
		p.advance()
	}
	valueStart := p.loc
	valuePos := p.pos
	for !p.isAtEnd() && !isLineEnd(p.peek()) {
		p.advance()
	}
	value := strings.TrimRight(p.source[valuePos:p.pos], " \t")
	if value == "" {
		p.addError(ErrMsgDirectiveMissingValue, atLoc, 1+len(name))
	}

	if name == DirectiveAddTagHelper && value != "" {
		pattern := unquote(value)
		enabled := p.tagHelpers.Enable(pattern)
		p.logger.Debug(LogMsgTagHelperEnabled,
			zap.String(LogFieldPattern, pattern),
			zap.Int(LogFieldEnabled, enabled))
	}

	return &DirectiveNode{
		Start:      atLoc,
		Name:       name,
		Value:      value,
		ValueStart: valueStart,
	}
}

// parseControlFlow parses "@if cond {" / "@for clause {" with a markup body
// and any "} else ... {" continuations up to the closing '}'.
func (p *Parser) parseControlFlow(keyword string) Node {
	p.advance() // '@'
	headerStart := p.loc
	header := p.readCodeLine()
	if !strings.HasSuffix(header, string(CharOpenBrace)) {
		p.addError(ErrMsgControlFlowMissingBrace, headerStart, len(header))
		p.consumeLineEnd()
		return &StatementNode{Start: headerStart, Code: header}
	}
	p.consumeLineEnd()

	block := &BlockNode{Start: headerStart, Keyword: keyword}
	block.Children = append(block.Children, &StatementNode{Start: headerStart, Code: header})

	for {
		body, term := p.parseMarkup(markupContext{inBlock: true})
		block.Children = append(block.Children, body...)
		if term != termCloseBrace {
			p.addError(ErrMsgControlFlowUnclosed, headerStart, len(header))
			return block
		}

		closeLoc := p.loc
		if p.elseFollows() {
			cont := p.readCodeLine()
			block.Children = append(block.Children, &StatementNode{Start: closeLoc, Code: cont})
			if !strings.HasSuffix(cont, string(CharOpenBrace)) {
				p.addError(ErrMsgControlFlowMissingBrace, closeLoc, len(cont))
				p.consumeLineEnd()
				return block
			}
			p.consumeLineEnd()
			continue
		}

		p.advance() // '}'
		block.Children = append(block.Children, &StatementNode{Start: closeLoc, Code: string(CharCloseBrace)})
		p.consumeLineEnd()
		return block
	}
}

// elseFollows reports whether the '}' at the cursor is followed by "else".
func (p *Parser) elseFollows() bool {
	i := p.pos + 1
	for i < len(p.source) && isInlineSpace(p.source[i]) {
		i++
	}
	if !strings.HasPrefix(p.source[i:], KeywordElse) {
		return false
	}
	after := i + len(KeywordElse)
	return after >= len(p.source) || !isIdentChar(p.source[after])
}

// readCodeLine consumes to the end of the line and returns the text with
// trailing blanks removed.
func (p *Parser) readCodeLine() string {
	startPos := p.pos
	for !p.isAtEnd() && !isLineEnd(p.peek()) {
		p.advance()
	}
	return strings.TrimRight(p.source[startPos:p.pos], " \t")
}

// findBalanced returns the offset just past the bracket matching the one at
// openPos, skipping Go string, rune and comment literals.
func (p *Parser) findBalanced(openPos int) (int, bool) {
	depth := 0
	src := p.source
	for i := openPos; i < len(src); i++ {
		switch ch := src[i]; ch {
		case CharOpenParen, CharOpenBrace, CharOpenBracket:
			depth++
		case CharCloseParen, CharCloseBrace, CharCloseBracket:
			depth--
			if depth == 0 {
				return i + 1, true
			}
		case CharDoubleQuote, CharSingleQuote:
			i = skipQuoted(src, i, ch)
		case CharBacktick:
			end := strings.IndexByte(src[i+1:], CharBacktick)
			if end < 0 {
				return len(src), false
			}
			i += end + 1
		case CharSlash:
			if i+1 < len(src) && src[i+1] == CharSlash {
				end := strings.IndexByte(src[i:], CharNewline)
				if end < 0 {
					return len(src), false
				}
				i += end
			} else if i+1 < len(src) && src[i+1] == CharStar {
				end := strings.Index(src[i+2:], "*/")
				if end < 0 {
					return len(src), false
				}
				i += end + 3
			}
		}
	}
	return len(src), false
}

// skipQuoted returns the index of the closing quote of the literal opened at
// i, or the last index of the line when the literal is not closed.
func skipQuoted(src string, i int, quote byte) int {
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case CharBackslash:
			j++
		case quote:
			return j
		case CharNewline:
			return j - 1
		}
	}
	return len(src) - 1
}

// Tag helpers

// tryParseTagHelper parses the element at '<' when its tag name has an
// enabled tag helper. It returns false, consuming nothing, otherwise.
func (p *Parser) tryParseTagHelper(mb *markupBuffer) bool {
	i := p.pos + 1
	if i >= len(p.source) || !isLetter(p.source[i]) {
		return false
	}
	j := i
	for j < len(p.source) && isTagNameChar(p.source[j]) {
		j++
	}
	if j >= len(p.source) {
		return false
	}
	if c := p.source[j]; !isSpace(c) && c != CharSlash && c != CharGreaterThan {
		return false
	}
	name := p.source[i:j]
	descriptors := p.tagHelpers.Match(name)
	if len(descriptors) == 0 {
		return false
	}

	mb.flush(p.pos)
	mb.nodes = append(mb.nodes, p.parseTagHelper(name, descriptors))
	return true
}

func (p *Parser) parseTagHelper(name string, descriptors []*TagHelperDescriptor) Node {
	start := p.loc
	p.advanceN(1 + len(name))
	node := &TagHelperNode{Start: start, TagName: name, Descriptors: descriptors}

	for {
		p.skipWhitespace()
		if p.isAtEnd() {
			p.addError(ErrMsgTagHelperUnterminatedTag, start, 1+len(name))
			return node
		}
		if p.matchStr(StrSelfClose) {
			p.advanceN(len(StrSelfClose))
			node.SelfClosing = true
			return node
		}
		if p.peek() == CharGreaterThan {
			p.advance()
			break
		}
		nameLoc := p.loc
		attr, ok := p.parseTagHelperAttribute()
		if !ok {
			p.advance()
			continue
		}
		if !attr.HasValue && isBoundAttribute(descriptors, attr.Name) {
			p.addError(ErrMsgTagHelperBoundNoValue, nameLoc, len(attr.Name))
		}
		node.Attributes = append(node.Attributes, attr)
	}

	children, term := p.parseMarkup(markupContext{endTag: name})
	node.Children = children
	if term != termEndTag {
		p.addError(ErrMsgTagHelperUnclosed, start, 1+len(name))
		return node
	}

	p.advanceN(len(StrEndTagOpen) + len(name))
	p.skipWhitespace()
	if !p.isAtEnd() && p.peek() == CharGreaterThan {
		p.advance()
	}
	return node
}

func (p *Parser) parseTagHelperAttribute() (TagHelperAttributeNode, bool) {
	namePos := p.pos
	for !p.isAtEnd() {
		ch := p.peek()
		if isSpace(ch) || ch == CharEquals || ch == CharGreaterThan || p.matchStr(StrSelfClose) {
			break
		}
		p.advance()
	}
	if p.pos == namePos {
		return TagHelperAttributeNode{}, false
	}
	attr := TagHelperAttributeNode{Name: p.source[namePos:p.pos]}

	p.skipWhitespace()
	if p.isAtEnd() || p.peek() != CharEquals {
		return attr, true
	}
	p.advance() // '='
	p.skipWhitespace()
	attr.HasValue = true

	if quote := p.peek(); quote == CharDoubleQuote || quote == CharSingleQuote {
		quoteLoc := p.loc
		p.advance()
		attr.ValueStart = p.loc
		valuePos := p.pos
		for !p.isAtEnd() && p.peek() != quote {
			p.advance()
		}
		attr.Value = p.source[valuePos:p.pos]
		if p.isAtEnd() {
			p.addError(ErrMsgTagHelperUnterminatedStr, quoteLoc, 1)
			return attr, true
		}
		p.advance() // closing quote
		return attr, true
	}

	attr.ValueStart = p.loc
	valuePos := p.pos
	for !p.isAtEnd() {
		ch := p.peek()
		if isSpace(ch) || ch == CharGreaterThan || p.matchStr(StrSelfClose) {
			break
		}
		p.advance()
	}
	attr.Value = p.source[valuePos:p.pos]
	return attr, true
}

// matchEndTag reports whether "</name" followed by blank or '>' is next.
func (p *Parser) matchEndTag(name string) bool {
	if !p.matchStr(StrEndTagOpen) {
		return false
	}
	start := p.pos + len(StrEndTagOpen)
	end := start + len(name)
	if end > len(p.source) || !strings.EqualFold(p.source[start:end], name) {
		return false
	}
	return end == len(p.source) || isSpace(p.source[end]) || p.source[end] == CharGreaterThan
}

func isBoundAttribute(descriptors []*TagHelperDescriptor, name string) bool {
	for _, d := range descriptors {
		if _, ok := d.Attribute(name); ok {
			return true
		}
	}
	return false
}

// Cursor helpers

func (p *Parser) isAtEnd() bool {
	return p.pos >= len(p.source)
}

func (p *Parser) peek() byte {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) byte {
	if p.pos+n >= len(p.source) {
		return 0
	}
	return p.source[p.pos+n]
}

// peekWord returns the identifier starting at offset without consuming it.
func (p *Parser) peekWord(offset int) string {
	end := offset
	for end < len(p.source) && isIdentChar(p.source[end]) {
		end++
	}
	return p.source[offset:end]
}

// advance consumes one byte and keeps the location in step with
// SourceLocation.Advance.
func (p *Parser) advance() byte {
	if p.isAtEnd() {
		return 0
	}
	ch := p.source[p.pos]
	p.pos++
	p.loc.AbsoluteIndex++
	switch {
	case ch == CharNewline:
		p.loc.LineIndex++
		p.loc.CharacterIndex = 0
	case ch == CharCarriageRet && p.peek() != CharNewline:
		p.loc.LineIndex++
		p.loc.CharacterIndex = 0
	default:
		p.loc.CharacterIndex++
	}
	return ch
}

func (p *Parser) advanceN(n int) {
	for i := 0; i < n && !p.isAtEnd(); i++ {
		p.advance()
	}
}

func (p *Parser) advanceTo(pos int) {
	for p.pos < pos && !p.isAtEnd() {
		p.advance()
	}
}

func (p *Parser) matchStr(s string) bool {
	return strings.HasPrefix(p.source[p.pos:], s)
}

func (p *Parser) scanIdentifier() {
	for !p.isAtEnd() && isIdentChar(p.peek()) {
		p.advance()
	}
}

func (p *Parser) skipWhitespace() {
	for !p.isAtEnd() && isSpace(p.peek()) {
		p.advance()
	}
}

func (p *Parser) addError(msg string, loc SourceLocation, length int) {
	p.errors = append(p.errors, &RazorError{Message: msg, Location: loc, Length: length})
}

// Character classification helpers

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlnum(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isTagNameChar(ch byte) bool {
	return isAlnum(ch) || ch == '-' || ch == ':' || ch == '_' || ch == '.'
}

func isInlineSpace(ch byte) bool {
	return ch == CharSpace || ch == CharTab
}

func isLineEnd(ch byte) bool {
	return ch == CharNewline || ch == CharCarriageRet || ch == 0
}

func isSpace(ch byte) bool {
	return isInlineSpace(ch) || ch == CharNewline || ch == CharCarriageRet
}

func isDirective(word string) bool {
	switch word {
	case DirectiveModel, DirectiveInherits, DirectiveInject, DirectiveUsing, DirectiveAddTagHelper:
		return true
	}
	return false
}

func isControlFlow(word string) bool {
	return word == KeywordIf || word == KeywordFor
}

// unquote strips Go string quotes when present.
func unquote(value string) string {
	if s, err := strconv.Unquote(value); err == nil {
		return s
	}
	return value
}
