package dom

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/midbel/xpath/environ"
	"github.com/midbel/xpath/xdm"
)

const MaxDepth = 512

const (
	SupportedVersion  = "1.0"
	SupportedEncoding = "UTF-8"
)

type ParseError struct {
	Position
	Element string
	Message string
}

func createParseError(elem, msg string, pos Position) error {
	return ParseError{
		Position: pos,
		Element:  elem,
		Message:  msg,
	}
}

func (p ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", p.Line, p.Column, p.Element, p.Message)
}

type Parser struct {
	scan *Scanner
	curr Token
	peek Token

	depth int

	TrimSpace bool
	KeepEmpty bool
	StrictNS  bool
	MaxDepth  int

	namespaces environ.Environ[string]
}

func NewParser(r io.Reader) *Parser {
	p := Parser{
		scan:       Scan(r),
		TrimSpace:  true,
		MaxDepth:   MaxDepth,
		namespaces: environ.Empty[string](),
	}
	p.namespaces.Define("xml", xdm.XmlSpace)
	p.next()
	p.next()
	return &p
}

func ParseFile(file string) (*Document, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	doc, err := ParseReader(r)
	if err == nil {
		doc.Uri = file
	}
	return doc, err
}

func ParseString(xml string) (*Document, error) {
	return ParseReader(strings.NewReader(xml))
}

func ParseReader(r io.Reader) (*Document, error) {
	p := NewParser(r)
	return p.Parse()
}

// Parse reads a complete document: an optional validated declaration,
// leading and trailing comments or instructions and exactly one root
// element.
func (p *Parser) Parse() (*Document, error) {
	doc := NewDocument()
	if err := p.parseProlog(doc); err != nil {
		return nil, err
	}
	for !p.done() {
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}
		switch node := node.(type) {
		case *Element:
			if doc.Root() != nil {
				return nil, p.createError("document", "multiple root elements")
			}
		case *Comment, *Instruction:
		case *Text:
			if strings.TrimSpace(node.Content) != "" {
				return nil, p.createError("document", "text outside of root element")
			}
			continue
		default:
			return nil, p.createError("document", "unsupported node")
		}
		doc.Append(node)
	}
	if doc.Root() == nil {
		return nil, p.createError("document", "missing root element")
	}
	return doc, nil
}

func (p *Parser) parseProlog(doc *Document) error {
	if !p.is(ProcInstTag) || p.peek.Literal != "xml" {
		return nil
	}
	node, err := p.parsePI()
	if err != nil {
		return err
	}
	pi, ok := node.(*Instruction)
	if !ok {
		return p.createError("prolog", "expected xml declaration")
	}
	version := attrValue(pi.Attrs, "version")
	if version == "" {
		return p.createError("prolog", "version is missing")
	}
	if version != SupportedVersion {
		return p.createError("prolog", "xml version not supported")
	}
	doc.Version = version
	if enc := attrValue(pi.Attrs, "encoding"); enc != "" {
		if !strings.EqualFold(enc, SupportedEncoding) {
			return p.createError("prolog", "xml encoding not supported")
		}
		doc.Encoding = strings.ToUpper(enc)
	}
	return nil
}

func (p *Parser) parseNode() (Node, error) {
	p.enter()
	defer p.leave()
	if p.depth >= p.MaxDepth {
		return nil, p.createError("document", "maximum depth reached")
	}
	switch p.curr.Type {
	case OpenTag:
		return p.parseElement()
	case CommentTag:
		return p.parseComment()
	case ProcInstTag:
		return p.parsePI()
	case Cdata:
		return p.parseCharData()
	case Literal:
		return p.parseText()
	case Invalid:
		return nil, p.createError("document", "invalid token")
	default:
		return nil, p.createError("document", "unsupported element type")
	}
}

func (p *Parser) parseElement() (Node, error) {
	outer := p.namespaces
	p.namespaces = environ.Enclosed(outer)
	defer func() {
		p.namespaces = outer
	}()
	p.next()
	var elem Element
	if p.is(NsName) {
		elem.QName.Space = p.getCurrentLiteral()
		p.next()
	}
	if !p.is(Name) {
		return nil, p.createError("element", "name is missing")
	}
	elem.QName.Name = p.getCurrentLiteral()
	p.next()

	attrs, err := p.parseAttributes(func() bool {
		return p.is(EndTag) || p.is(EmptyElemTag)
	})
	if err != nil {
		return nil, err
	}
	for i, a := range attrs {
		a.setParent(&elem)
		a.setPosition(i)
	}
	elem.Attrs = attrs
	if err := p.resolveNames(&elem); err != nil {
		return nil, err
	}

	switch p.curr.Type {
	case EmptyElemTag:
		p.next()
		return &elem, nil
	case EndTag:
		p.next()
		for !p.done() && !p.is(CloseTag) {
			child, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			if child != nil {
				elem.Append(child)
			}
		}
		if !p.is(CloseTag) {
			return nil, p.createError("element", "closing element is missing")
		}
		p.next()
		return &elem, p.parseCloseElement(&elem)
	default:
		return nil, p.createError("element", "end of element expected")
	}
}

func (p *Parser) parseCloseElement(elem *Element) error {
	var space string
	if p.is(NsName) {
		space = p.getCurrentLiteral()
		p.next()
	}
	if space != elem.QName.Space {
		return p.createError("element", "namespace mismatched with opening element")
	}
	if !p.is(Name) {
		return p.createError("element", "name is missing")
	}
	if p.getCurrentLiteral() != elem.QName.Name {
		return p.createError("element", "name mismatched with opening element")
	}
	p.next()
	if !p.is(EndTag) {
		return p.createError("element", "end of element expected")
	}
	p.next()
	return nil
}

func (p *Parser) parsePI() (Node, error) {
	p.next()
	if !p.is(Name) {
		return nil, p.createError("processing instruction", "name is missing")
	}
	pi := NewInstruction(p.getCurrentLiteral())
	p.next()
	attrs, err := p.parseAttributes(func() bool {
		return p.is(ProcInstTag)
	})
	if err != nil {
		return nil, err
	}
	for _, a := range attrs {
		pi.SetAttribute(a)
	}
	if !p.is(ProcInstTag) {
		return nil, p.createError("processing instruction", "end of element expected")
	}
	p.next()
	return pi, nil
}

func (p *Parser) parseAttributes(done func() bool) ([]*Attribute, error) {
	var attrs []*Attribute
	for !p.done() && !done() {
		attr, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		ok := slices.ContainsFunc(attrs, func(a *Attribute) bool {
			return a.QName.QualifiedName() == attr.QName.QualifiedName()
		})
		if ok {
			return nil, p.createError("attribute", "attribute is already defined")
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func (p *Parser) parseAttr() (*Attribute, error) {
	var attr Attribute
	if p.is(NsName) {
		attr.QName.Space = p.getCurrentLiteral()
		p.next()
	}
	if !p.is(AttrName) {
		return nil, p.createError("attribute", "name is expected")
	}
	attr.QName.Name = p.getCurrentLiteral()
	p.next()
	if !p.is(Literal) {
		return nil, p.createError("attribute", "value is missing")
	}
	attr.Datum = p.getCurrentLiteral()
	p.next()
	if prefix, ok := attr.declares(); ok {
		p.namespaces.Define(prefix, attr.Datum)
	}
	return &attr, nil
}

func (p *Parser) parseComment() (Node, error) {
	defer p.next()
	return NewComment(p.getCurrentLiteral()), nil
}

func (p *Parser) parseCharData() (Node, error) {
	defer p.next()
	text := NewText(p.getCurrentLiteral())
	text.Raw = true
	return text, nil
}

func (p *Parser) parseText() (Node, error) {
	text := NewText(p.getCurrentLiteral())
	if p.TrimSpace {
		text.Content = strings.TrimSpace(text.Content)
	}
	p.next()
	if !p.KeepEmpty && text.Content == "" {
		return nil, nil
	}
	return text, nil
}

// resolveNames fills namespace uris once every declaration of the tag
// is in scope, so declarations may follow the attributes they qualify.
// Unprefixed attributes stay outside the default namespace.
func (p *Parser) resolveNames(elem *Element) error {
	var err error
	if elem.QName.Uri, err = p.resolveNS(elem.QName.Space, false); err != nil {
		return err
	}
	seen := make(map[xdm.ExpandedName]struct{})
	for _, a := range elem.Attrs {
		if _, ok := a.declares(); ok {
			continue
		}
		if a.QName.Uri, err = p.resolveNS(a.QName.Space, true); err != nil {
			return err
		}
		if _, ok := seen[a.QName.Expanded()]; ok {
			return p.createError("attribute", "attribute is already defined")
		}
		seen[a.QName.Expanded()] = struct{}{}
	}
	return nil
}

func (p *Parser) resolveNS(prefix string, attr bool) (string, error) {
	if prefix == "" && attr {
		return "", nil
	}
	uri, err := p.namespaces.Resolve(prefix)
	if err != nil && prefix != "" && p.StrictNS {
		return "", p.createError("namespace", fmt.Sprintf("%s: namespace is not defined", prefix))
	}
	return uri, nil
}

func attrValue(attrs []*Attribute, name string) string {
	for _, a := range attrs {
		if a.QName.Space == "" && a.QName.Name == name {
			return a.Datum
		}
	}
	return ""
}

func (p *Parser) getCurrentLiteral() string {
	return p.curr.Literal
}

func (p *Parser) createError(elem, msg string) error {
	return createParseError(elem, msg, p.curr.Position)
}

func (p *Parser) is(kind rune) bool {
	return p.curr.Type == kind
}

func (p *Parser) done() bool {
	return p.is(EOF)
}

func (p *Parser) enter() {
	p.depth++
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) next() {
	p.curr = p.peek
	p.peek = p.scan.Scan()
}

const (
	EOF rune = -(1 + iota)
	Name
	NsName   // name:
	AttrName // name=
	Literal
	Cdata
	CommentTag   // <!--
	OpenTag      // <
	EndTag       // >
	CloseTag     // </
	EmptyElemTag // />
	ProcInstTag  // <?, ?>
	Invalid
)

type Position struct {
	Line   int
	Column int
}

type Token struct {
	Literal string
	Type    rune
	Position
}

func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "<eof>"
	case CommentTag:
		return fmt.Sprintf("comment(%s)", t.Literal)
	case Name:
		return fmt.Sprintf("name(%s)", t.Literal)
	case NsName:
		return fmt.Sprintf("namespace(%s)", t.Literal)
	case AttrName:
		return fmt.Sprintf("attr(%s)", t.Literal)
	case Cdata:
		return fmt.Sprintf("chardata(%s)", t.Literal)
	case Literal:
		return fmt.Sprintf("literal(%s)", t.Literal)
	case OpenTag:
		return "<open-elem-tag>"
	case EndTag:
		return "<end-elem-tag>"
	case CloseTag:
		return "<close-elem-tag>"
	case EmptyElemTag:
		return "<empty-elem-tag>"
	case ProcInstTag:
		return "<processing-instruction>"
	case Invalid:
		return "<invalid>"
	default:
		return "<unknown>"
	}
}

const (
	langle    = '<'
	rangle    = '>'
	lsquare   = '['
	rsquare   = ']'
	colon     = ':'
	quote     = '"'
	apos      = '\''
	slash     = '/'
	question  = '?'
	bang      = '!'
	equal     = '='
	ampersand = '&'
	semicolon = ';'
	dash      = '-'
	under     = '_'
	dot       = '.'
)

type state int8

const (
	literalState state = 1 << iota
)

type Scanner struct {
	input io.RuneScanner
	char  rune
	str   bytes.Buffer

	Position

	state
}

func Scan(r io.Reader) *Scanner {
	var (
		rs    = bufio.NewReader(r)
		pk, _ = rs.Peek(3)
	)
	if bytes.Equal(pk, []byte{0xEF, 0xBB, 0xBF}) {
		rs.Discard(3)
	}

	scan := &Scanner{
		input: rs,
	}
	scan.Position.Line = 1
	scan.read()
	return scan
}

func (s *Scanner) Scan() Token {
	var tok Token
	tok.Position = s.Position
	if s.done() {
		tok.Type = EOF
		return tok
	}
	s.str.Reset()
	if s.state == literalState {
		s.scanLiteral(&tok)
		return tok
	}
	switch {
	case s.char == langle:
		s.scanOpeningTag(&tok)
	case s.char == rangle:
		s.scanEndTag(&tok)
	case s.char == slash || s.char == question:
		s.scanClosingTag(&tok)
	case s.char == quote || s.char == apos:
		s.scanValue(&tok)
	case unicode.IsLetter(s.char) || s.char == under:
		s.scanName(&tok)
	default:
		s.scanLiteral(&tok)
	}
	return tok
}

func (s *Scanner) scanOpeningTag(tok *Token) {
	s.read()
	tok.Type = OpenTag
	switch s.char {
	case bang:
		s.read()
		if s.char == lsquare {
			s.scanCharData(tok)
			return
		}
		if s.char == dash {
			s.scanComment(tok)
			return
		}
		tok.Type = Invalid
	case question:
		tok.Type = ProcInstTag
	case slash:
		tok.Type = CloseTag
	default:
	}
	if tok.Type == ProcInstTag || tok.Type == CloseTag {
		s.read()
	}
}

func (s *Scanner) scanComment(tok *Token) {
	s.read()
	if s.char != dash {
		tok.Type = Invalid
		return
	}
	s.read()
	var done bool
	for !s.done() {
		if s.char == dash && s.peek() == dash {
			s.read()
			if done = s.peek() == rangle; done {
				s.read()
				s.read()
				break
			}
			s.str.WriteRune(dash)
			continue
		}
		s.write()
		s.read()
	}
	tok.Literal = s.str.String()
	tok.Type = CommentTag
	if !done {
		tok.Type = Invalid
		return
	}
	s.state = literalState
}

func (s *Scanner) scanCharData(tok *Token) {
	s.read()
	for !s.done() && s.char != lsquare {
		s.write()
		s.read()
	}
	s.read()
	if s.str.String() != "CDATA" {
		tok.Type = Invalid
		return
	}
	s.str.Reset()
	var done bool
	for !s.done() {
		if s.char == rsquare && s.peek() == rsquare {
			s.read()
			if done = s.peek() == rangle; done {
				s.read()
				s.read()
				break
			}
			s.str.WriteRune(rsquare)
			continue
		}
		s.write()
		s.read()
	}
	tok.Literal = s.str.String()
	tok.Type = Cdata
	if !done {
		tok.Type = Invalid
		return
	}
	s.state = literalState
}

func (s *Scanner) scanEndTag(tok *Token) {
	tok.Type = EndTag
	s.state = literalState
	s.read()
}

func (s *Scanner) scanClosingTag(tok *Token) {
	tok.Type = Invalid
	if s.char == question {
		tok.Type = ProcInstTag
	} else if s.char == slash {
		tok.Type = EmptyElemTag
	}
	s.read()
	if s.char != rangle {
		tok.Type = Invalid
		return
	}
	s.read()
	s.state = literalState
}

func (s *Scanner) scanValue(tok *Token) {
	until := s.char
	s.read()
	for !s.done() && s.char != until {
		if s.char == ampersand {
			str := s.scanEntity()
			if str == "" {
				break
			}
			s.str.WriteString(str)
			continue
		}
		s.write()
		s.read()
	}
	tok.Type = Literal
	tok.Literal = s.str.String()
	if s.char != until {
		tok.Type = Invalid
		return
	}
	s.read()
	s.skipBlank()
}

func (s *Scanner) scanEntity() string {
	s.read()
	var str bytes.Buffer
	str.WriteRune(ampersand)
	for !s.done() && s.char != semicolon {
		str.WriteRune(s.char)
		s.read()
	}
	if s.char != semicolon {
		return ""
	}
	str.WriteRune(semicolon)
	s.read()
	return html.UnescapeString(str.String())
}

func (s *Scanner) scanLiteral(tok *Token) {
	for !s.done() && s.char != langle {
		if s.char == ampersand {
			str := s.scanEntity()
			if str == "" {
				break
			}
			s.str.WriteString(str)
			continue
		}
		s.write()
		s.read()
	}
	tok.Type = Literal
	tok.Literal = s.str.String()
	if s.char == langle {
		s.state = 0
	}
}

func (s *Scanner) scanName(tok *Token) {
	accept := func() bool {
		return unicode.IsLetter(s.char) || unicode.IsDigit(s.char) ||
			s.char == dash || s.char == under || s.char == dot
	}
	for !s.done() && accept() {
		s.write()
		s.read()
	}
	tok.Type = Name
	tok.Literal = s.str.String()
	if s.char == equal {
		tok.Type = AttrName
		s.read()
	} else if s.char == colon {
		tok.Type = NsName
		s.read()
	} else {
		s.skipBlank()
	}
}

func (s *Scanner) write() {
	s.str.WriteRune(s.char)
}

func (s *Scanner) read() {
	if s.char == '\n' {
		s.Column = 0
		s.Line++
	}
	s.Column++
	char, _, err := s.input.ReadRune()
	if errors.Is(err, io.EOF) {
		char = utf8.RuneError
	}
	s.char = char
}

func (s *Scanner) peek() rune {
	defer s.input.UnreadRune()
	r, _, _ := s.input.ReadRune()
	return r
}

func (s *Scanner) done() bool {
	return s.char == utf8.RuneError
}

func (s *Scanner) skipBlank() {
	for !s.done() && unicode.IsSpace(s.char) {
		s.read()
	}
}
