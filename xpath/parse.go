package xpath

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/midbel/xpath/xdm"
)

// Parser turns expression text into a tree. It is a Pratt parser: one
// prefix handler per token able to start an operand, one infix handler
// per operator, driven by the bindings table.
type Parser struct {
	scan *Scanner
	curr Token
	peek Token

	Tracer

	infix  map[rune]func(Expr) (Expr, error)
	prefix map[rune]func() (Expr, error)
}

func NewParser(r io.Reader) *Parser {
	p := Parser{
		scan:   Scan(r),
		Tracer: discardTracer{},
	}

	p.infix = map[rune]func(Expr) (Expr, error){
		currLevel:    p.parseStep,
		anyLevel:     p.parseDescendantStep,
		begPred:      p.parsePredicate,
		opRange:      p.parseRange,
		opAdd:        p.parseBinary,
		opSub:        p.parseBinary,
		opMul:        p.parseBinary,
		opDiv:        p.parseBinary,
		opIdiv:       p.parseBinary,
		opMod:        p.parseBinary,
		opEq:         p.parseBinary,
		opNe:         p.parseBinary,
		opGt:         p.parseBinary,
		opGe:         p.parseBinary,
		opLt:         p.parseBinary,
		opLe:         p.parseBinary,
		opValEq:      p.parseBinary,
		opValNe:      p.parseBinary,
		opValGt:      p.parseBinary,
		opValGe:      p.parseBinary,
		opValLt:      p.parseBinary,
		opValLe:      p.parseBinary,
		opBefore:     p.parseBinary,
		opAfter:      p.parseBinary,
		opIs:         p.parseBinary,
		opAnd:        p.parseBinary,
		opOr:         p.parseBinary,
		opUnion:      p.parseBinary,
		opIntersect:  p.parseBinary,
		opExcept:     p.parseBinary,
		opInstanceOf: p.parseInstanceOf,
		opTreatAs:    p.parseTreat,
		opCastAs:     p.parseCast,
		opCastableAs: p.parseCastable,
	}
	p.prefix = map[rune]func() (Expr, error){
		currLevel:  p.parseRoot,
		anyLevel:   p.parseDescendantRoot,
		Name:       p.parseName,
		opMul:      p.parseName,
		variable:   p.parseVariable,
		currNode:   p.parseCurrent,
		parentNode: p.parseParent,
		attrNode:   p.parseAttr,
		Literal:    p.parseLiteral,
		Digit:      p.parseNumber,
		opSub:      p.parseReverse,
		opAdd:      p.parsePlus,
		begGrp:     p.parseGroup,
	}

	p.next()
	p.next()
	return &p
}

func Parse(r io.Reader) (Expr, error) {
	p := NewParser(r)
	return p.Parse()
}

func ParseString(query string) (Expr, error) {
	return Parse(strings.NewReader(query))
}

func (p *Parser) Parse() (Expr, error) {
	expr, err := p.parseAll()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.unexpected("end of expression")
	}
	return expr, nil
}

// parseAll parses a full expression, commas included.
func (p *Parser) parseAll() (Expr, error) {
	expr, err := p.parseExpr(powLowest)
	if err != nil {
		return nil, err
	}
	if !p.is(opSeq) {
		return expr, nil
	}
	seq := sequence{
		all: []Expr{expr},
	}
	for p.is(opSeq) {
		p.next()
		next, err := p.parseExpr(powLowest)
		if err != nil {
			return nil, err
		}
		seq.all = append(seq.all, next)
	}
	return seq, nil
}

func (p *Parser) parseExpr(pow int) (Expr, error) {
	p.Enter("expr")
	defer p.Leave("expr")
	fn, ok := p.prefix[p.curr.Type]
	if !ok {
		return nil, p.unexpected("expression")
	}
	left, err := fn()
	if err != nil {
		return nil, err
	}
	for !p.done() && pow < p.power() {
		fn, ok := p.infix[p.operator()]
		if !ok {
			return nil, p.unexpected("operator")
		}
		left, err = fn(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// operator gives the effective operator type of the current token,
// mapping the word operators scanned as plain names.
func (p *Parser) operator() rune {
	if p.curr.Type == Name {
		if op, ok := keywords[p.curr.Literal]; ok {
			return op
		}
	}
	return p.curr.Type
}

func (p *Parser) parseBinary(left Expr) (Expr, error) {
	p.Enter("binary")
	defer p.Leave("binary")
	var (
		op  = p.operator()
		pow = bindings[op]
	)
	p.next()
	right, err := p.parseExpr(pow)
	if err != nil {
		return nil, err
	}
	b := binary{
		left:  left,
		right: right,
		op:    op,
	}
	return b, nil
}

func (p *Parser) parseRange(left Expr) (Expr, error) {
	p.Enter("range")
	defer p.Leave("range")
	p.next()
	right, err := p.parseExpr(powRange)
	if err != nil {
		return nil, err
	}
	expr := rng{
		left:  left,
		right: right,
	}
	return expr, nil
}

func (p *Parser) parseReverse() (Expr, error) {
	p.Enter("reverse")
	defer p.Leave("reverse")
	p.next()
	expr, err := p.parseExpr(powPrefix)
	if err != nil {
		return nil, err
	}
	r := reverse{
		expr: expr,
	}
	return r, nil
}

func (p *Parser) parsePlus() (Expr, error) {
	p.Enter("plus")
	defer p.Leave("plus")
	p.next()
	expr, err := p.parseExpr(powPrefix)
	if err != nil {
		return nil, err
	}
	u := plus{
		expr: expr,
	}
	return u, nil
}

func (p *Parser) parseLiteral() (Expr, error) {
	p.Enter("literal")
	defer p.Leave("literal")
	defer p.next()
	i := literal{
		expr: p.curr.Literal,
	}
	return i, nil
}

func (p *Parser) parseNumber() (Expr, error) {
	p.Enter("number")
	defer p.Leave("number")
	str := p.curr.Literal
	var val xdm.Value
	switch {
	case strings.ContainsAny(str, "eE"):
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return nil, p.syntaxError(fmt.Sprintf("invalid number %q", str))
		}
		val = xdm.Double(f)
	case strings.Contains(str, "."):
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return nil, p.syntaxError(fmt.Sprintf("invalid number %q", str))
		}
		val = xdm.Decimal(f)
	default:
		i, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return nil, staticError(xdm.CodeNumericRange, fmt.Sprintf("integer %s out of range", str), p.curr.Position)
		}
		val = xdm.Integer(i)
	}
	p.next()
	n := number{
		expr: val,
	}
	return n, nil
}

func (p *Parser) parseVariable() (Expr, error) {
	p.Enter("variable")
	defer p.Leave("variable")
	qn, err := p.parseVariableName()
	if err != nil {
		return nil, err
	}
	v := identifier{
		name: qn,
	}
	return v, nil
}

func (p *Parser) parseVariableName() (xdm.QName, error) {
	qn := xdm.LocalName(p.curr.Literal)
	if !p.is(variable) {
		return qn, p.unexpected("variable")
	}
	p.next()
	if p.is(Namespace) {
		p.next()
		if !p.is(Name) {
			return qn, p.unexpected("name after namespace")
		}
		qn.Space = qn.Name
		qn.Name = p.curr.Literal
		p.next()
	}
	return qn, nil
}

func (p *Parser) parseCurrent() (Expr, error) {
	p.Enter("current")
	defer p.Leave("current")
	p.next()
	return current{}, nil
}

func (p *Parser) parseParent() (Expr, error) {
	p.Enter("parent")
	defer p.Leave("parent")
	p.next()
	expr := step{
		axis: parentAxis,
		curr: kindTest{kind: anyKind},
	}
	return expr, nil
}

func (p *Parser) parseAttr() (Expr, error) {
	p.Enter("attribute")
	defer p.Leave("attribute")
	qn := xdm.LocalName(p.curr.Literal)
	p.next()
	if p.is(Namespace) {
		p.next()
		qn.Space = qn.Name
		switch {
		case p.is(Name):
			qn.Name = p.curr.Literal
		case p.is(opMul):
			qn.Name = "*"
		default:
			return nil, p.unexpected("name after namespace")
		}
		p.next()
	}
	expr := step{
		axis: attributeAxis,
		curr: nameTest{name: qn},
	}
	return expr, nil
}

func (p *Parser) parseGroup() (Expr, error) {
	p.Enter("group")
	defer p.Leave("group")
	p.next()
	if p.is(endGrp) {
		p.next()
		return sequence{}, nil
	}
	expr, err := p.parseAll()
	if err != nil {
		return nil, err
	}
	if !p.is(endGrp) {
		return nil, p.syntaxError("missing closing ')'")
	}
	p.next()
	return expr, nil
}

func (p *Parser) parseName() (Expr, error) {
	p.Enter("name")
	defer p.Leave("name")
	if p.is(Name) && p.peek.Type == begGrp && p.curr.Literal == kwIf {
		return p.parseIf()
	}
	if p.is(Name) && p.peek.Type == variable {
		switch p.curr.Literal {
		case kwFor:
			return p.parseFor()
		case kwLet:
			return p.parseLet()
		case kwSome, kwEvery:
			return p.parseQuantified(p.curr.Literal == kwEvery)
		}
	}
	if p.peek.Type == opAxis {
		return p.parseAxis()
	}
	if p.is(Name) && p.peek.Type == begGrp {
		if isKind(p.curr.Literal) {
			kt, err := p.parseKindTest()
			if err != nil {
				return nil, err
			}
			expr := step{
				axis: childAxis,
				curr: kt,
			}
			return expr, nil
		}
		switch p.curr.Literal {
		case "item", "empty-sequence":
			return nil, p.syntaxError(fmt.Sprintf("%s can not be called", p.curr.Literal))
		}
		qn := xdm.LocalName(p.curr.Literal)
		p.next()
		return p.parseCall(qn)
	}
	qn, err := p.parseQName()
	if err != nil {
		return nil, err
	}
	if p.is(begGrp) {
		if qn.Name == "*" || qn.Space == "*" {
			return nil, p.syntaxError("wildcard can not be called")
		}
		return p.parseCall(qn)
	}
	expr := step{
		axis: childAxis,
		curr: nameTest{name: qn},
	}
	return expr, nil
}

func (p *Parser) parseQName() (xdm.QName, error) {
	qn := xdm.LocalName(p.curr.Literal)
	switch {
	case p.is(opMul):
		qn.Name = "*"
	case p.is(Name):
	default:
		return qn, p.unexpected("name")
	}
	p.next()
	if p.is(Namespace) {
		p.next()
		qn.Space = qn.Name
		switch {
		case p.is(Name):
			qn.Name = p.curr.Literal
		case p.is(opMul):
			qn.Name = "*"
		default:
			return qn, p.unexpected("name after namespace")
		}
		p.next()
	}
	return qn, nil
}

func (p *Parser) parseAxis() (Expr, error) {
	p.Enter("axis")
	defer p.Leave("axis")
	kind := p.curr.Literal
	if !p.is(Name) || !knownAxis(kind) {
		return nil, p.syntaxError(fmt.Sprintf("%s: unknown axis", p.curr.Literal))
	}
	p.next()
	p.next()
	curr, err := p.parseNodeTest()
	if err != nil {
		return nil, err
	}
	expr := step{
		axis: kind,
		curr: curr,
	}
	return expr, nil
}

func (p *Parser) parseNodeTest() (test, error) {
	if p.is(opMul) && p.peek.Type != Namespace {
		p.next()
		return nameTest{name: xdm.QName{Name: "*"}}, nil
	}
	if p.is(Name) && p.peek.Type == begGrp && isKind(p.curr.Literal) {
		return p.parseKindTest()
	}
	qn, err := p.parseQName()
	if err != nil {
		return nil, err
	}
	return nameTest{name: qn}, nil
}

func (p *Parser) parseKindTest() (test, error) {
	p.Enter("kind")
	defer p.Leave("kind")
	var kt kindTest
	switch p.curr.Literal {
	case "node":
		kt.kind = anyKind
	case "element":
		kt.kind = xdm.KindElement
	case "attribute":
		kt.kind = xdm.KindAttribute
	case "text":
		kt.kind = xdm.KindText
	case "comment":
		kt.kind = xdm.KindComment
	case "processing-instruction":
		kt.kind = xdm.KindInstruction
	case "document-node":
		kt.kind = xdm.KindDocument
	default:
		return nil, p.syntaxError(fmt.Sprintf("%s: unknown kind test", p.curr.Literal))
	}
	p.next()
	p.next()
	switch kt.kind {
	case xdm.KindElement, xdm.KindAttribute:
		if !p.is(endGrp) {
			qn, err := p.parseQName()
			if err != nil {
				return nil, err
			}
			if qn.Name != "*" || qn.Space != "" {
				kt.name = qn
			}
			if p.is(opSeq) {
				return nil, staticError(xdm.CodeUnknownType, "type annotations need schema awareness", p.curr.Position)
			}
		}
	case xdm.KindInstruction:
		if p.is(Name) || p.is(Literal) {
			kt.target = p.curr.Literal
			p.next()
		}
	case xdm.KindDocument:
		if p.is(Name) && p.curr.Literal == "element" && p.peek.Type == begGrp {
			inner, err := p.parseKindTest()
			if err != nil {
				return nil, err
			}
			elem, ok := inner.(kindTest)
			if !ok || elem.kind != xdm.KindElement {
				return nil, p.syntaxError("element test expected in document-node test")
			}
			kt.name = elem.name
		}
	}
	if !p.is(endGrp) {
		return nil, p.syntaxError("missing closing ')' in kind test")
	}
	p.next()
	return kt, nil
}

func (p *Parser) parseCall(qn xdm.QName) (Expr, error) {
	p.Enter("call")
	defer p.Leave("call")
	fn := call{
		name: qn,
	}
	p.next()
	for !p.done() && !p.is(endGrp) {
		arg, err := p.parseExpr(powLowest)
		if err != nil {
			return nil, err
		}
		fn.args = append(fn.args, arg)
		switch {
		case p.is(opSeq):
			p.next()
			if p.is(endGrp) {
				return nil, p.syntaxError("missing argument after ','")
			}
		case p.is(endGrp):
		default:
			return nil, p.unexpected("',' or ')' in arguments")
		}
	}
	if !p.is(endGrp) {
		return nil, p.syntaxError("missing closing ')' after arguments")
	}
	p.next()
	return fn, nil
}

func (p *Parser) parsePredicate(left Expr) (Expr, error) {
	p.Enter("predicate")
	defer p.Leave("predicate")
	p.next()
	expr, err := p.parseAll()
	if err != nil {
		return nil, err
	}
	if !p.is(endPred) {
		return nil, p.syntaxError("missing closing ']' after predicate")
	}
	p.next()
	switch e := left.(type) {
	case step:
		e.preds = append(e.preds, expr)
		return e, nil
	case filter:
		e.preds = append(e.preds, expr)
		return e, nil
	default:
		f := filter{
			expr:  left,
			preds: []Expr{expr},
		}
		return f, nil
	}
}

func (p *Parser) parseRoot() (Expr, error) {
	p.Enter("root")
	defer p.Leave("root")
	p.next()
	if !p.startsStep() {
		return root{}, nil
	}
	right, err := p.parseExpr(powStep)
	if err != nil {
		return nil, err
	}
	expr := path{
		left:  root{},
		right: right,
	}
	return expr, nil
}

func (p *Parser) parseDescendantRoot() (Expr, error) {
	p.Enter("descendant-root")
	defer p.Leave("descendant-root")
	p.next()
	right, err := p.parseExpr(powStep)
	if err != nil {
		return nil, err
	}
	expr := path{
		left: path{
			left:  root{},
			right: descendSelf(),
		},
		right: right,
	}
	return expr, nil
}

func (p *Parser) parseStep(left Expr) (Expr, error) {
	p.Enter("step")
	defer p.Leave("step")
	p.next()
	right, err := p.parseExpr(powStep)
	if err != nil {
		return nil, err
	}
	expr := path{
		left:  left,
		right: right,
	}
	return expr, nil
}

func (p *Parser) parseDescendantStep(left Expr) (Expr, error) {
	p.Enter("descendant-step")
	defer p.Leave("descendant-step")
	p.next()
	right, err := p.parseExpr(powStep)
	if err != nil {
		return nil, err
	}
	expr := path{
		left: path{
			left:  left,
			right: descendSelf(),
		},
		right: right,
	}
	return expr, nil
}

// descendSelf is the step the double slash abbreviates.
func descendSelf() Expr {
	return step{
		axis: descendantSelfAxis,
		curr: kindTest{kind: anyKind},
	}
}

func (p *Parser) parseIf() (Expr, error) {
	p.Enter("if")
	defer p.Leave("if")
	p.next()
	p.next()
	var (
		cdt conditional
		err error
	)
	if cdt.test, err = p.parseAll(); err != nil {
		return nil, err
	}
	if !p.is(endGrp) {
		return nil, p.syntaxError("missing closing ')' after condition")
	}
	p.next()
	if err := p.expectWord(kwThen); err != nil {
		return nil, err
	}
	if cdt.csq, err = p.parseExpr(powLowest); err != nil {
		return nil, err
	}
	if err := p.expectWord(kwElse); err != nil {
		return nil, err
	}
	if cdt.alt, err = p.parseExpr(powLowest); err != nil {
		return nil, err
	}
	return cdt, nil
}

func (p *Parser) parseFor() (Expr, error) {
	p.Enter("for")
	defer p.Leave("for")
	p.next()
	var q loop
	for {
		bind, err := p.parseInClause()
		if err != nil {
			return nil, err
		}
		q.binds = append(q.binds, bind)
		if !p.is(opSeq) {
			break
		}
		p.next()
	}
	if err := p.expectWord(kwReturn); err != nil {
		return nil, err
	}
	body, err := p.parseExpr(powLowest)
	if err != nil {
		return nil, err
	}
	q.body = body
	return q, nil
}

func (p *Parser) parseLet() (Expr, error) {
	p.Enter("let")
	defer p.Leave("let")
	p.next()
	var q let
	for {
		var b binding
		qn, err := p.parseVariableName()
		if err != nil {
			return nil, err
		}
		b.ident = qn
		if !p.is(opAssign) {
			return nil, p.unexpected("':='")
		}
		p.next()
		if b.expr, err = p.parseExpr(powLowest); err != nil {
			return nil, err
		}
		q.binds = append(q.binds, b)
		if !p.is(opSeq) {
			break
		}
		p.next()
	}
	if err := p.expectWord(kwReturn); err != nil {
		return nil, err
	}
	body, err := p.parseExpr(powLowest)
	if err != nil {
		return nil, err
	}
	q.body = body
	return q, nil
}

func (p *Parser) parseQuantified(every bool) (Expr, error) {
	p.Enter("quantified")
	defer p.Leave("quantified")
	p.next()
	q := quantified{
		every: every,
	}
	for {
		bind, err := p.parseInClause()
		if err != nil {
			return nil, err
		}
		q.binds = append(q.binds, bind)
		if !p.is(opSeq) {
			break
		}
		p.next()
	}
	if err := p.expectWord(kwSatisfies); err != nil {
		return nil, err
	}
	test, err := p.parseExpr(powLowest)
	if err != nil {
		return nil, err
	}
	q.test = test
	return q, nil
}

func (p *Parser) parseInClause() (binding, error) {
	p.Enter("in")
	defer p.Leave("in")
	var b binding
	qn, err := p.parseVariableName()
	if err != nil {
		return b, err
	}
	b.ident = qn
	if err := p.expectWord(kwIn); err != nil {
		return b, err
	}
	if b.expr, err = p.parseExpr(powLowest); err != nil {
		return b, err
	}
	return b, nil
}

func (p *Parser) parseCast(left Expr) (Expr, error) {
	p.Enter("cast")
	defer p.Leave("cast")
	p.next()
	if err := p.expectWord(kwAs); err != nil {
		return nil, err
	}
	kind, err := p.parseSingleType()
	if err != nil {
		return nil, err
	}
	expr := cast{
		expr: left,
		kind: kind,
	}
	return expr, nil
}

func (p *Parser) parseCastable(left Expr) (Expr, error) {
	p.Enter("castable")
	defer p.Leave("castable")
	p.next()
	if err := p.expectWord(kwAs); err != nil {
		return nil, err
	}
	kind, err := p.parseSingleType()
	if err != nil {
		return nil, err
	}
	expr := castable{
		expr: left,
		kind: kind,
	}
	return expr, nil
}

func (p *Parser) parseInstanceOf(left Expr) (Expr, error) {
	p.Enter("instance")
	defer p.Leave("instance")
	p.next()
	if err := p.expectWord(kwOf); err != nil {
		return nil, err
	}
	kind, err := p.parseSequenceType()
	if err != nil {
		return nil, err
	}
	expr := instanceof{
		expr: left,
		kind: kind,
	}
	return expr, nil
}

func (p *Parser) parseTreat(left Expr) (Expr, error) {
	p.Enter("treat")
	defer p.Leave("treat")
	p.next()
	if err := p.expectWord(kwAs); err != nil {
		return nil, err
	}
	kind, err := p.parseSequenceType()
	if err != nil {
		return nil, err
	}
	expr := treat{
		expr: left,
		kind: kind,
	}
	return expr, nil
}

func (p *Parser) parseSingleType() (single, error) {
	var st single
	qn, err := p.parseTypeName()
	if err != nil {
		return st, err
	}
	st.name = qn
	if p.is(opQuestion) {
		st.optional = true
		p.next()
	}
	return st, nil
}

func (p *Parser) parseSequenceType() (seqType, error) {
	var st seqType
	if p.is(Name) && p.peek.Type == begGrp {
		switch {
		case p.curr.Literal == "empty-sequence":
			p.next()
			p.next()
			if !p.is(endGrp) {
				return st, p.syntaxError("missing closing ')'")
			}
			p.next()
			st.occurs = occEmpty
			return st, nil
		case p.curr.Literal == "item":
			p.next()
			p.next()
			if !p.is(endGrp) {
				return st, p.syntaxError("missing closing ')'")
			}
			p.next()
			st.item = true
		case isKind(p.curr.Literal):
			kt, err := p.parseKindTest()
			if err != nil {
				return st, err
			}
			elem := kt.(kindTest)
			st.kind = &elem
		default:
			return st, p.unexpected("sequence type")
		}
	} else {
		qn, err := p.parseTypeName()
		if err != nil {
			return st, err
		}
		st.atom = qn
	}
	switch p.curr.Type {
	case opQuestion:
		st.occurs = occOpt
		p.next()
	case opMul:
		st.occurs = occStar
		p.next()
	case opAdd:
		st.occurs = occPlus
		p.next()
	}
	return st, nil
}

func (p *Parser) parseTypeName() (xdm.QName, error) {
	qn := xdm.LocalName(p.curr.Literal)
	if !p.is(Name) {
		return qn, p.unexpected("type name")
	}
	p.next()
	if p.is(Namespace) {
		p.next()
		if !p.is(Name) {
			return qn, p.unexpected("name after namespace")
		}
		qn.Space = qn.Name
		qn.Name = p.curr.Literal
		p.next()
	}
	return qn, nil
}

// startsStep reports whether the current token can begin a step, which
// decides if a leading slash is a full path or the bare root.
func (p *Parser) startsStep() bool {
	switch p.curr.Type {
	case Name, variable, currNode, parentNode, attrNode, Literal, Digit, begGrp, opMul:
		return true
	default:
		return false
	}
}

func (p *Parser) expectWord(kw string) error {
	if !p.is(Name) || p.curr.Literal != kw {
		return p.unexpected(kw)
	}
	p.next()
	return nil
}

func (p *Parser) power() int {
	return bindings[p.operator()]
}

func (p *Parser) is(kind rune) bool {
	return p.curr.Type == kind
}

func (p *Parser) done() bool {
	return p.is(EOF)
}

func (p *Parser) next() {
	p.curr = p.peek
	p.peek = p.scan.Scan()
}

func (p *Parser) unexpected(want string) error {
	return p.syntaxError(fmt.Sprintf("unexpected %s, expecting %s", p.curr, want))
}

func (p *Parser) syntaxError(cause string) error {
	return syntaxError(cause, p.curr.Position)
}

func isKind(literal string) bool {
	switch literal {
	case "node", "element", "attribute", "text", "comment",
		"processing-instruction", "document-node":
		return true
	default:
		return false
	}
}

const (
	powLowest = iota
	powOr
	powAnd
	powCmp
	powRange
	powAdd
	powMul
	powUnion
	powIntersect
	powInstance
	powTreat
	powCastable
	powCast
	powPrefix
	powStep
	powPred
	powHighest
)

var bindings = map[rune]int{
	currLevel:    powStep,
	anyLevel:     powStep,
	begPred:      powPred,
	opOr:         powOr,
	opAnd:        powAnd,
	opEq:         powCmp,
	opNe:         powCmp,
	opGt:         powCmp,
	opGe:         powCmp,
	opLt:         powCmp,
	opLe:         powCmp,
	opValEq:      powCmp,
	opValNe:      powCmp,
	opValGt:      powCmp,
	opValGe:      powCmp,
	opValLt:      powCmp,
	opValLe:      powCmp,
	opBefore:     powCmp,
	opAfter:      powCmp,
	opIs:         powCmp,
	opRange:      powRange,
	opAdd:        powAdd,
	opSub:        powAdd,
	opMul:        powMul,
	opDiv:        powMul,
	opIdiv:       powMul,
	opMod:        powMul,
	opUnion:      powUnion,
	opIntersect:  powIntersect,
	opExcept:     powIntersect,
	opInstanceOf: powInstance,
	opTreatAs:    powTreat,
	opCastableAs: powCastable,
	opCastAs:     powCast,
}

var keywords = map[string]rune{
	kwOr:        opOr,
	kwAnd:       opAnd,
	kwDiv:       opDiv,
	kwIdiv:      opIdiv,
	kwMod:       opMod,
	kwTo:        opRange,
	kwIs:        opIs,
	kwUnion:     opUnion,
	kwIntersect: opIntersect,
	kwExcept:    opExcept,
	kwEq:        opValEq,
	kwNe:        opValNe,
	kwLt:        opValLt,
	kwLe:        opValLe,
	kwGt:        opValGt,
	kwGe:        opValGe,
	kwCast:      opCastAs,
	kwCastable:  opCastableAs,
	kwInstance:  opInstanceOf,
	kwTreat:     opTreatAs,
}
