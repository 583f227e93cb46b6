// Package json reads JSON documents into the dom node tree so that they
// can be queried like any other document.
//
// The mapping is structural: the top level value becomes the content of
// a json root element, object members become child elements named after
// their key and array items become item elements. Scalars are stored as
// text, numbers keeping their source form. A key that would not be a
// valid element name is kept on the key attribute of an entry element.
// A null value gives an empty element.
package json

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/midbel/xpath/dom"
	"github.com/midbel/xpath/xdm"
)

const (
	rootName  = "json"
	itemName  = "item"
	entryName = "entry"
	keyAttr   = "key"
)

type SyntaxError struct {
	Position
	Message string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: syntax error: %s", e.Line, e.Column, e.Message)
}

type Parser struct {
	scan *Scanner
	curr Token
	peek Token
}

func Parse(r io.Reader) (*dom.Document, error) {
	p := Parser{
		scan: Scan(r),
	}
	p.next()
	p.next()
	return p.Parse()
}

func ParseString(str string) (*dom.Document, error) {
	return Parse(strings.NewReader(str))
}

// Parse reads exactly one value and wraps it in a document holding the
// json root element.
func (p *Parser) Parse() (*dom.Document, error) {
	root := dom.NewElement(xdm.LocalName(rootName))
	if err := p.parseValue(root); err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.syntaxError("content after top level value")
	}
	doc := dom.NewDocument()
	doc.Append(root)
	return doc, nil
}

func (p *Parser) parseValue(parent *dom.Element) error {
	switch p.curr.Type {
	case BegObj:
		return p.parseObject(parent)
	case BegArr:
		return p.parseArray(parent)
	case String, Number, Boolean:
		if p.curr.Literal != "" {
			parent.Append(dom.NewText(p.curr.Literal))
		}
		p.next()
		return nil
	case Null:
		p.next()
		return nil
	default:
		return p.syntaxError("value expected")
	}
}

func (p *Parser) parseKey() (string, error) {
	if !p.is(String) {
		return "", p.syntaxError("object key should be string")
	}
	key := p.curr.Literal
	p.next()
	if !p.is(Colon) {
		return "", p.syntaxError("missing ':' after object key")
	}
	p.next()
	return key, nil
}

func (p *Parser) parseObject(parent *dom.Element) error {
	p.next()
	for !p.done() && !p.is(EndObj) {
		key, err := p.parseKey()
		if err != nil {
			return err
		}
		elem := keyedElement(key)
		if err := p.parseValue(elem); err != nil {
			return err
		}
		parent.Append(elem)
		switch {
		case p.is(Comma):
			p.next()
			if p.is(EndObj) {
				return p.syntaxError("trailing comma not allowed")
			}
		case p.is(EndObj):
		default:
			return p.syntaxError("expected ',' or '}'")
		}
	}
	if !p.is(EndObj) {
		return p.syntaxError("missing '}'")
	}
	p.next()
	return nil
}

func (p *Parser) parseArray(parent *dom.Element) error {
	p.next()
	for !p.done() && !p.is(EndArr) {
		elem := dom.NewElement(xdm.LocalName(itemName))
		if err := p.parseValue(elem); err != nil {
			return err
		}
		parent.Append(elem)
		switch {
		case p.is(Comma):
			p.next()
			if p.is(EndArr) {
				return p.syntaxError("trailing comma not allowed")
			}
		case p.is(EndArr):
		default:
			return p.syntaxError("expected ',' or ']'")
		}
	}
	if !p.is(EndArr) {
		return p.syntaxError("missing ']'")
	}
	p.next()
	return nil
}

func (p *Parser) syntaxError(msg string) error {
	return SyntaxError{
		Position: p.curr.Position,
		Message:  msg,
	}
}

func (p *Parser) done() bool {
	return p.is(EOF)
}

func (p *Parser) is(kind rune) bool {
	return p.curr.Type == kind
}

func (p *Parser) next() {
	p.curr = p.peek
	p.peek = p.scan.Scan()
}

// keyedElement maps an object member to an element. The key gives the
// element name when it can, otherwise it is kept on a key attribute.
func keyedElement(key string) *dom.Element {
	if validName(key) {
		return dom.NewElement(xdm.LocalName(key))
	}
	elem := dom.NewElement(xdm.LocalName(entryName))
	elem.SetAttribute(dom.Attr(keyAttr, key))
	return elem
}

func validName(key string) bool {
	for i, c := range key {
		if isLetter(c) || c == '_' {
			continue
		}
		if i > 0 && (isDigit(c) || c == '-' || c == '.') {
			continue
		}
		return false
	}
	return key != ""
}

type Scanner struct {
	input io.RuneScanner
	char  rune

	Position

	str bytes.Buffer
}

func Scan(r io.Reader) *Scanner {
	scan := Scanner{
		input: bufio.NewReader(r),
	}
	scan.Line = 1
	scan.read()
	return &scan
}

func (s *Scanner) Scan() Token {
	defer s.str.Reset()
	s.skipBlank()

	var tok Token
	tok.Position = s.Position
	if s.done() {
		tok.Type = EOF
		return tok
	}
	switch {
	case isLower(s.char):
		s.scanIdent(&tok)
	case s.char == '"':
		s.scanString(&tok)
	case s.char == '-' || isDigit(s.char):
		s.scanNumber(&tok)
	case isDelim(s.char):
		s.scanDelimiter(&tok)
	default:
		tok.Type = Invalid
		tok.Literal = string(s.char)
		s.read()
	}
	return tok
}

func (s *Scanner) scanIdent(tok *Token) {
	for !s.done() && isLower(s.char) {
		s.write()
		s.read()
	}
	tok.Literal = s.str.String()
	switch tok.Literal {
	case "true", "false":
		tok.Type = Boolean
	case "null":
		tok.Type = Null
	default:
		tok.Type = Invalid
	}
}

func (s *Scanner) scanString(tok *Token) {
	s.read()
	for !s.done() && s.char != '"' {
		if s.char == '\\' {
			s.read()
			if !s.scanEscape() {
				tok.Type = Invalid
				return
			}
			continue
		}
		if s.char < 0x20 {
			tok.Type = Invalid
			return
		}
		s.write()
		s.read()
	}
	tok.Literal = s.str.String()
	tok.Type = String
	if s.char != '"' {
		tok.Type = Invalid
		return
	}
	s.read()
}

// scanEscape decodes the sequence after a backslash into the buffer and
// leaves the scanner on the first character after it.
func (s *Scanner) scanEscape() bool {
	switch s.char {
	case '"', '\\', '/':
		s.writeRune(s.char)
	case 'b':
		s.writeRune('\b')
	case 'f':
		s.writeRune('\f')
	case 'n':
		s.writeRune('\n')
	case 'r':
		s.writeRune('\r')
	case 't':
		s.writeRune('\t')
	case 'u':
		return s.scanUnicode()
	default:
		return false
	}
	s.read()
	return true
}

// scanUnicode decodes a \uXXXX escape. A high surrogate followed by a
// low surrogate escape gives the combined character, a surrogate left
// alone gives the replacement character.
func (s *Scanner) scanUnicode() bool {
	first, ok := s.scanHex4()
	if !ok {
		return false
	}
	if !utf16.IsSurrogate(first) {
		s.writeRune(first)
		return true
	}
	if s.char != '\\' || s.peek() != 'u' {
		s.writeRune(utf8.RuneError)
		return true
	}
	s.read()
	second, ok := s.scanHex4()
	if !ok {
		return false
	}
	if char := utf16.DecodeRune(first, second); char != utf8.RuneError {
		s.writeRune(char)
		return true
	}
	s.writeRune(utf8.RuneError)
	if utf16.IsSurrogate(second) {
		s.writeRune(utf8.RuneError)
	} else {
		s.writeRune(second)
	}
	return true
}

// scanHex4 reads the four hex digits after the u of a unicode escape.
func (s *Scanner) scanHex4() (rune, bool) {
	var code rune
	for i := 0; i < 4; i++ {
		s.read()
		var digit rune
		switch {
		case s.char >= '0' && s.char <= '9':
			digit = s.char - '0'
		case s.char >= 'a' && s.char <= 'f':
			digit = s.char - 'a' + 10
		case s.char >= 'A' && s.char <= 'F':
			digit = s.char - 'A' + 10
		default:
			return 0, false
		}
		code = code<<4 | digit
	}
	s.read()
	return code, true
}

func (s *Scanner) scanNumber(tok *Token) {
	tok.Type = Number
	if s.char == '-' {
		s.write()
		s.read()
	}
	if !isDigit(s.char) {
		tok.Type = Invalid
		return
	}
	leading := s.char
	s.write()
	s.read()
	if leading == '0' && isDigit(s.char) {
		tok.Type = Invalid
		return
	}
	for !s.done() && isDigit(s.char) {
		s.write()
		s.read()
	}
	if s.char == '.' {
		s.write()
		s.read()
		if !isDigit(s.char) {
			tok.Type = Invalid
			return
		}
		for !s.done() && isDigit(s.char) {
			s.write()
			s.read()
		}
	}
	if s.char == 'e' || s.char == 'E' {
		s.write()
		s.read()
		if s.char == '-' || s.char == '+' {
			s.write()
			s.read()
		}
		if !isDigit(s.char) {
			tok.Type = Invalid
			return
		}
		for !s.done() && isDigit(s.char) {
			s.write()
			s.read()
		}
	}
	tok.Literal = s.str.String()
}

func (s *Scanner) scanDelimiter(tok *Token) {
	switch s.char {
	case '[':
		tok.Type = BegArr
	case ']':
		tok.Type = EndArr
	case '{':
		tok.Type = BegObj
	case '}':
		tok.Type = EndObj
	case ',':
		tok.Type = Comma
	case ':':
		tok.Type = Colon
	}
	s.read()
}

func (s *Scanner) writeRune(c rune) {
	s.str.WriteRune(c)
}

func (s *Scanner) write() {
	s.writeRune(s.char)
}

func (s *Scanner) read() {
	if s.char == '\n' {
		s.Line++
		s.Column = 0
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
	char, _, _ := s.input.ReadRune()
	return char
}

func (s *Scanner) done() bool {
	return s.char == utf8.RuneError
}

func (s *Scanner) skipBlank() {
	for !s.done() && unicode.IsSpace(s.char) {
		s.read()
	}
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isLower(c rune) bool {
	return c >= 'a' && c <= 'z'
}

func isLetter(c rune) bool {
	return isLower(c) || (c >= 'A' && c <= 'Z')
}

func isDelim(c rune) bool {
	return c == '{' || c == '}' || c == '[' || c == ']' || c == ',' || c == ':'
}
