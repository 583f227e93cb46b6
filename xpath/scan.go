package xpath

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"
)

type Position struct {
	Line   int
	Column int
}

const (
	kwLet       = "let"
	kwIf        = "if"
	kwThen      = "then"
	kwElse      = "else"
	kwFor       = "for"
	kwIn        = "in"
	kwTo        = "to"
	kwReturn    = "return"
	kwSome      = "some"
	kwEvery     = "every"
	kwSatisfies = "satisfies"
	kwAnd       = "and"
	kwOr        = "or"
	kwDiv       = "div"
	kwIdiv      = "idiv"
	kwMod       = "mod"
	kwAs        = "as"
	kwOf        = "of"
	kwIs        = "is"
	kwCast      = "cast"
	kwCastable  = "castable"
	kwInstance  = "instance"
	kwTreat     = "treat"
	kwUnion     = "union"
	kwIntersect = "intersect"
	kwExcept    = "except"
	kwEq        = "eq"
	kwNe        = "ne"
	kwLt        = "lt"
	kwLe        = "le"
	kwGt        = "gt"
	kwGe        = "ge"
)

const (
	EOF rune = -(1 + iota)
	Name
	Namespace // name:
	Literal
	Digit
	Invalid
)

// Token and operator types. The scanner only emits the punctuation
// part of the set; word operators like div or cast as reach the parser
// as plain names and are mapped onto their operator type there, where
// operand and operator positions can be told apart.
const (
	currNode = -(iota + 1000)
	parentNode
	attrNode
	variable
	currLevel
	anyLevel
	begPred
	endPred
	begGrp
	endGrp
	opAssign
	opRange
	opConcat
	opBefore
	opAfter
	opQuestion
	opAdd
	opSub
	opMul
	opDiv
	opIdiv
	opMod
	opValEq
	opValNe
	opValGt
	opValGe
	opValLt
	opValLe
	opEq
	opNe
	opGt
	opGe
	opLt
	opLe
	opUnion
	opExcept
	opIntersect
	opIs
	opAnd
	opOr
	opSeq
	opAxis
	opInstanceOf
	opCastAs
	opCastableAs
	opTreatAs
)

type Token struct {
	Literal string
	Type    rune
	Position
}

func (t Token) String() string {
	switch t.Type {
	case currNode:
		return "<current-node>"
	case parentNode:
		return "<parent-node>"
	case attrNode:
		return fmt.Sprintf("attribute(%s)", t.Literal)
	case variable:
		return fmt.Sprintf("variable(%s)", t.Literal)
	case currLevel:
		return "<current-level>"
	case anyLevel:
		return "<any-level>"
	case begPred:
		return "<begin-predicate>"
	case endPred:
		return "<end-predicate>"
	case begGrp:
		return "<begin-group>"
	case endGrp:
		return "<end-group>"
	case opAssign:
		return "<assignment>"
	case opRange:
		return "<range>"
	case opConcat:
		return "<concat>"
	case opBefore:
		return "<node-before>"
	case opAfter:
		return "<node-after>"
	case opQuestion:
		return "<question>"
	case opAdd:
		return "<add>"
	case opSub:
		return "<subtract>"
	case opMul:
		return "<multiply>"
	case opDiv:
		return "<divide>"
	case opIdiv:
		return "<integer-divide>"
	case opMod:
		return "<modulo>"
	case opValEq:
		return "<value-eq>"
	case opValNe:
		return "<value-ne>"
	case opValGt:
		return "<value-gt>"
	case opValGe:
		return "<value-ge>"
	case opValLt:
		return "<value-lt>"
	case opValLe:
		return "<value-le>"
	case opEq:
		return "<equal>"
	case opNe:
		return "<not-equal>"
	case opGt:
		return "<greater-than>"
	case opGe:
		return "<greater-eq>"
	case opLt:
		return "<lesser-than>"
	case opLe:
		return "<lesser-eq>"
	case opUnion:
		return "<union>"
	case opExcept:
		return "<except>"
	case opIntersect:
		return "<intersect>"
	case opIs:
		return "<identity>"
	case opAnd:
		return "<and>"
	case opOr:
		return "<or>"
	case opSeq:
		return "<sequence>"
	case opAxis:
		return "<axis>"
	case opInstanceOf:
		return "<instance-of>"
	case opCastAs:
		return "<cast-as>"
	case opCastableAs:
		return "<castable-as>"
	case opTreatAs:
		return "<treat-as>"
	case EOF:
		return "<eof>"
	case Name:
		return fmt.Sprintf("name(%s)", t.Literal)
	case Namespace:
		return fmt.Sprintf("namespace(%s)", t.Literal)
	case Digit:
		return fmt.Sprintf("number(%s)", t.Literal)
	case Literal:
		return fmt.Sprintf("literal(%s)", t.Literal)
	case Invalid:
		return fmt.Sprintf("<invalid(%s)>", t.Literal)
	default:
		return "<unknown>"
	}
}

type Scanner struct {
	input *bufio.Reader
	char  rune
	str   bytes.Buffer

	Position
}

func Scan(r io.Reader) *Scanner {
	scan := &Scanner{
		input: bufio.NewReader(r),
	}
	scan.Line = 1
	scan.read()
	return scan
}

func (s *Scanner) Scan() Token {
	var tok Token
	s.str.Reset()
	s.skipBlank()
	for s.char == lparen && s.peek() == colon {
		tok.Position = s.Position
		if !s.skipComment() {
			tok.Type = Invalid
			tok.Literal = "unterminated comment"
			return tok
		}
		s.skipBlank()
	}
	tok.Position = s.Position
	if s.done() {
		tok.Type = EOF
		return tok
	}
	switch {
	case s.char == dot && unicode.IsDigit(s.peek()):
		s.scanNumber(&tok)
	case isOperator(s.char):
		s.scanOperator(&tok)
	case isDelimiter(s.char):
		s.scanDelimiter(&tok)
	case s.char == arobase:
		s.scanAttr(&tok)
	case s.char == apos || s.char == quote:
		s.scanLiteral(&tok)
	case s.char == dollar:
		s.scanVariable(&tok)
	case unicode.IsLetter(s.char) || s.char == underscore:
		s.scanName(&tok)
	case unicode.IsDigit(s.char):
		s.scanNumber(&tok)
	default:
		tok.Type = Invalid
		tok.Literal = string(s.char)
		s.read()
	}
	return tok
}

func (s *Scanner) scanOperator(tok *Token) {
	switch k := s.peek(); s.char {
	case question:
		tok.Type = opQuestion
	case plusSign:
		tok.Type = opAdd
	case dash:
		tok.Type = opSub
	case star:
		tok.Type = opMul
	case equal:
		tok.Type = opEq
	case bang:
		tok.Type = Invalid
		tok.Literal = string(s.char)
		if k == equal {
			s.read()
			tok.Type = opNe
			tok.Literal = ""
		}
	case langle:
		tok.Type = opLt
		if k == equal {
			s.read()
			tok.Type = opLe
		} else if k == langle {
			s.read()
			tok.Type = opBefore
		}
	case rangle:
		tok.Type = opGt
		if k == equal {
			s.read()
			tok.Type = opGe
		} else if k == rangle {
			s.read()
			tok.Type = opAfter
		}
	case lparen:
		tok.Type = begGrp
	case rparen:
		tok.Type = endGrp
	default:
		tok.Type = Invalid
		tok.Literal = string(s.char)
	}
	s.read()
}

func (s *Scanner) scanDelimiter(tok *Token) {
	switch k := s.peek(); s.char {
	case colon:
		tok.Type = Namespace
		if k == colon {
			s.read()
			tok.Type = opAxis
		} else if k == equal {
			s.read()
			tok.Type = opAssign
		}
	case dot:
		tok.Type = currNode
		if k == s.char {
			s.read()
			tok.Type = parentNode
		}
	case comma:
		tok.Type = opSeq
	case pipe:
		tok.Type = opUnion
		if k == s.char {
			s.read()
			tok.Type = opConcat
		}
	case lsquare:
		tok.Type = begPred
	case rsquare:
		tok.Type = endPred
	case slash:
		tok.Type = currLevel
		if k == slash {
			s.read()
			tok.Type = anyLevel
		}
	default:
		tok.Type = Invalid
		tok.Literal = string(s.char)
	}
	s.read()
}

func (s *Scanner) scanLiteral(tok *Token) {
	quoted := s.char
	s.read()
	for !s.done() {
		if s.char == quoted {
			if s.peek() != quoted {
				break
			}
			s.read()
		}
		s.write()
		s.read()
	}
	tok.Type = Literal
	tok.Literal = s.str.String()
	if s.char != quoted {
		tok.Type = Invalid
		tok.Literal = "unterminated literal"
		return
	}
	s.read()
}

func (s *Scanner) scanAttr(tok *Token) {
	s.read()
	if s.char == star {
		s.read()
		tok.Type = attrNode
		tok.Literal = "*"
		return
	}
	s.scanName(tok)
	tok.Type = attrNode
}

func (s *Scanner) scanNumber(tok *Token) {
	tok.Type = Digit
	for !s.done() && unicode.IsDigit(s.char) {
		s.write()
		s.read()
	}
	if s.char == dot {
		s.write()
		s.read()
		for !s.done() && unicode.IsDigit(s.char) {
			s.write()
			s.read()
		}
	}
	if s.char == 'e' || s.char == 'E' {
		s.write()
		s.read()
		if s.char == dash || s.char == plusSign {
			s.write()
			s.read()
		}
		if !unicode.IsDigit(s.char) {
			tok.Type = Invalid
		}
		for !s.done() && unicode.IsDigit(s.char) {
			s.write()
			s.read()
		}
	}
	tok.Literal = s.str.String()
}

func (s *Scanner) scanVariable(tok *Token) {
	s.read()
	s.scanName(tok)
	tok.Type = variable
	if tok.Literal == "" {
		tok.Type = Invalid
		tok.Literal = "missing name after $"
	}
}

func (s *Scanner) scanName(tok *Token) {
	for !s.done() && isName(s.char) {
		s.write()
		s.read()
	}
	tok.Type = Name
	tok.Literal = s.str.String()
}

func (s *Scanner) skipComment() bool {
	s.read()
	s.read()
	depth := 1
	for depth > 0 && !s.done() {
		switch {
		case s.char == lparen && s.peek() == colon:
			s.read()
			s.read()
			depth++
		case s.char == colon && s.peek() == rparen:
			s.read()
			s.read()
			depth--
		default:
			s.read()
		}
	}
	return depth == 0
}

func (s *Scanner) skipBlank() {
	for unicode.IsSpace(s.char) {
		s.read()
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
	c, _, err := s.input.ReadRune()
	if err != nil {
		s.char = utf8.RuneError
	} else {
		s.char = c
	}
}

func (s *Scanner) peek() rune {
	defer s.input.UnreadRune()
	c, _, _ := s.input.ReadRune()
	return c
}

func (s *Scanner) done() bool {
	return s.char == utf8.RuneError
}

const (
	langle     = '<'
	rangle     = '>'
	lsquare    = '['
	rsquare    = ']'
	lparen     = '('
	rparen     = ')'
	colon      = ':'
	quote      = '"'
	apos       = '\''
	slash      = '/'
	question   = '?'
	bang       = '!'
	equal      = '='
	dash       = '-'
	underscore = '_'
	dot        = '.'
	arobase    = '@'
	comma      = ','
	plusSign   = '+'
	star       = '*'
	pipe       = '|'
	dollar     = '$'
)

func isName(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) ||
		c == dash || c == underscore || c == dot
}

func isDelimiter(c rune) bool {
	return c == comma || c == dot || c == pipe || c == slash ||
		c == lsquare || c == rsquare || c == colon
}

func isOperator(c rune) bool {
	return c == question || c == plusSign || c == dash || c == star ||
		c == equal || c == bang || c == langle || c == rangle ||
		c == lparen || c == rparen
}
