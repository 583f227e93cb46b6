package xpath_test

import (
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/midbel/xpath/dom"
	"github.com/midbel/xpath/xdm"
	"github.com/midbel/xpath/xpath"
)

const libraryDoc = `<?xml version="1.0" encoding="UTF-8"?>
<library>
	<book id="b1" year="2005">
		<title>The Go Programming Language</title>
		<author>Donovan</author>
		<author>Kernighan</author>
		<price>32.50</price>
	</book>
	<book id="b2" year="2019">
		<title>Learning XPath</title>
		<author>Marple</author>
		<price>18.00</price>
	</book>
	<book id="b3" year="2019" xml:lang="fr">
		<title>Essais</title>
		<author>Montaigne</author>
		<price>12.25</price>
	</book>
</library>`

func TestEvalPaths(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "/library/book[1]/title", Want: []string{"The Go Programming Language"}},
		{Query: "//book/@id", Want: []string{"b1", "b2", "b3"}},
		{Query: "/library/book/author", Want: []string{"Donovan", "Kernighan", "Marple", "Montaigne"}},
		{Query: "//book[@year='2019']/@id", Want: []string{"b2", "b3"}},
		{Query: "//book[price > 20]/title", Want: []string{"The Go Programming Language"}},
		{Query: "//book[last()]/@id", Want: []string{"b3"}},
		{Query: "//book[2]/@id", Want: []string{"b2"}},
		{Query: "//book[1]/@id", Want: []string{"b1"}},
		{Query: "//author[position() = 2]", Want: []string{"Kernighan"}},
		{Query: "//author[1]", Want: []string{"Donovan", "Marple", "Montaigne"}},
		{Query: "//book[author = 'Montaigne']/title", Want: []string{"Essais"}},
		{Query: "/library/book[price < 20][2]/@id", Want: []string{"b3"}},
		{Query: "//book[not(@year = '2005')]/@id", Want: []string{"b2", "b3"}},
		{Query: "//title/text()", Want: []string{"The Go Programming Language", "Learning XPath", "Essais"}},
		{Query: "//@year", Want: []string{"2005", "2019", "2019"}},
		{Query: "//*[@xml:lang]/@id", Want: []string{"b3"}},
		{Query: "count(//book)", Want: []string{"3"}},
		{Query: "//book/@missing", Want: nil},
		{Query: "//missing", Want: nil},
		{Query: "//book/title | //book/price", Want: []string{
			"The Go Programming Language", "32.50",
			"Learning XPath", "18.00",
			"Essais", "12.25",
		}},
		{Query: "(//book)[2]/@id", Want: []string{"b2"}},
		{Query: "(//author)[position() > 2]", Want: []string{"Marple", "Montaigne"}},
	}
	for _, c := range tests {
		checkEval(t, doc, c.Query, c.Want)
	}
}

func TestEvalAxes(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	tests := []struct {
		Query string
		Want  []string
	}{
		{
			Query: "for $a in /library/book[1]/author[2]/ancestor::* return local-name($a)",
			Want:  []string{"book", "library"},
		},
		{
			Query: "/library/book[1]/author[2]/ancestor::*[1]/@id",
			Want:  []string{"b1"},
		},
		{
			Query: "for $a in //price[. = 18]/ancestor-or-self::* return local-name($a)",
			Want:  []string{"price", "book", "library"},
		},
		{
			Query: "//author[. = 'Kernighan']/preceding-sibling::author",
			Want:  []string{"Donovan"},
		},
		{
			Query: "//author[. = 'Donovan']/following-sibling::*",
			Want:  []string{"Kernighan", "32.50"},
		},
		{
			Query: "//price[. = 18]/parent::book/@id",
			Want:  []string{"b2"},
		},
		{
			Query: "for $n in //book[3]/preceding::author return string($n)",
			Want:  []string{"Marple", "Kernighan", "Donovan"},
		},
		{
			Query: "//book[1]/following::book/@id",
			Want:  []string{"b2", "b3"},
		},
		{
			Query: "//book[2]/self::book/@id",
			Want:  []string{"b2"},
		},
		{
			Query: "count(//book[2]/self::title)",
			Want:  []string{"0"},
		},
		{
			Query: "count(/library/descendant::*)",
			Want:  []string{"13"},
		},
		{
			Query: "count(//book[1]/descendant-or-self::node())",
			Want:  []string{"9"},
		},
		{
			Query: "//book[3]/preceding-sibling::book/@id",
			Want:  []string{"b1", "b2"},
		},
		{
			Query: "for $b in //book[3]/preceding-sibling::book return string($b/@id)",
			Want:  []string{"b2", "b1"},
		},
	}
	for _, c := range tests {
		checkEval(t, doc, c.Query, c.Want)
	}
}

func TestEvalOperators(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "1 + 2 * 3", Want: []string{"7"}},
		{Query: "10 idiv 3", Want: []string{"3"}},
		{Query: "10 mod 3", Want: []string{"1"}},
		{Query: "7 div 2", Want: []string{"3.5"}},
		{Query: "1e0 div 0", Want: []string{"INF"}},
		{Query: "-(//book[1]/price)", Want: []string{"-32.5"}},
		{Query: "//book[1]/price + 1", Want: []string{"33.5"}},
		{Query: "() + 1", Want: nil},
		{Query: "1 to 3", Want: []string{"1", "2", "3"}},
		{Query: "count(3 to 1)", Want: []string{"0"}},
		{Query: "(1 to 5)[position() mod 2 = 0]", Want: []string{"2", "4"}},
		{Query: "(1 to 5)[last()]", Want: []string{"5"}},
		{Query: "2 = 1 + 1", Want: []string{"true"}},
		{Query: "(1, 2, 3) = (3, 4)", Want: []string{"true"}},
		{Query: "(1, 2) != (1, 2)", Want: []string{"true"}},
		{Query: "(1, 1) = (2, 3)", Want: []string{"false"}},
		{Query: "() = 1", Want: []string{"false"}},
		{Query: "2 lt 3", Want: []string{"true"}},
		{Query: "'abc' lt 'abd'", Want: []string{"true"}},
		{Query: "() eq 1", Want: nil},
		{Query: "//book[1] is (//book)[1]", Want: []string{"true"}},
		{Query: "//book[1] << //book[2]", Want: []string{"true"}},
		{Query: "//book[2] >> //book[3]", Want: []string{"false"}},
		{Query: "count(//book intersect //book[@year='2019'])", Want: []string{"2"}},
		{Query: "(//book except //book[@year='2019'])/@id", Want: []string{"b1"}},
		{Query: "(//book[2] | //book[1])/@id", Want: []string{"b1", "b2"}},
		{Query: "count(//book | //book)", Want: []string{"3"}},
		{Query: "1 = 1 and 2 = 2", Want: []string{"true"}},
		{Query: "1 = 2 or 2 = 2", Want: []string{"true"}},
		{Query: "1 = 2 and error()", Want: []string{"false"}},
		{Query: "1 = 1 or error()", Want: []string{"true"}},
	}
	for _, c := range tests {
		checkEval(t, doc, c.Query, c.Want)
	}
}

func TestEvalControl(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "if (//book[@year='2005']) then 'old' else 'new'", Want: []string{"old"}},
		{Query: "if (//missing) then 'x' else 'y'", Want: []string{"y"}},
		{Query: "if (true()) then 1 else error()", Want: []string{"1"}},
		{Query: "if (false()) then error() else 2", Want: []string{"2"}},
		{Query: "for $i in 1 to 3 return $i * 2", Want: []string{"2", "4", "6"}},
		{Query: "for $b in //book return $b/@year", Want: []string{"2005", "2019", "2019"}},
		{Query: "for $x in 1 to 2, $y in 1 to 2 return $x + $y", Want: []string{"2", "3", "3", "4"}},
		{Query: "let $n := count(//book) return $n + 1", Want: []string{"4"}},
		{Query: "let $a := 1, $b := $a + 1 return $b * 10", Want: []string{"20"}},
		{Query: "some $x in (1, 2, 3) satisfies $x gt 2", Want: []string{"true"}},
		{Query: "some $x in (1, 2, 3) satisfies $x gt 5", Want: []string{"false"}},
		{Query: "every $x in (1, 2, 3) satisfies $x gt 0", Want: []string{"true"}},
		{Query: "every $b in //book satisfies $b/@id", Want: []string{"true"}},
		{Query: "some $x in () satisfies $x", Want: []string{"false"}},
		{Query: "every $x in () satisfies $x", Want: []string{"true"}},
		{Query: "some $x in (1, 2, error()) satisfies $x = 2", Want: []string{"true"}},
		{Query: "every $x in (1, error()) satisfies $x = 0", Want: []string{"false"}},
	}
	for _, c := range tests {
		checkEval(t, doc, c.Query, c.Want)
	}
}

func TestEvalTypes(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "5 instance of xs:integer", Want: []string{"true"}},
		{Query: "5 instance of xs:decimal", Want: []string{"true"}},
		{Query: "5 instance of xs:string", Want: []string{"false"}},
		{Query: "(1, 2) instance of xs:integer", Want: []string{"false"}},
		{Query: "(1, 2) instance of xs:integer+", Want: []string{"true"}},
		{Query: "() instance of xs:integer?", Want: []string{"true"}},
		{Query: "() instance of empty-sequence()", Want: []string{"true"}},
		{Query: "1 instance of empty-sequence()", Want: []string{"false"}},
		{Query: "//book instance of element()+", Want: []string{"true"}},
		{Query: "//book/@id instance of attribute()*", Want: []string{"true"}},
		{Query: "//book instance of item()*", Want: []string{"true"}},
		{Query: "'3' cast as xs:integer", Want: []string{"3"}},
		{Query: "'3.5' cast as xs:double", Want: []string{"3.5"}},
		{Query: "() cast as xs:integer?", Want: nil},
		{Query: "//book[1]/price cast as xs:decimal", Want: []string{"32.5"}},
		{Query: "'3' castable as xs:integer", Want: []string{"true"}},
		{Query: "'abc' castable as xs:integer", Want: []string{"false"}},
		{Query: "() castable as xs:integer?", Want: []string{"true"}},
		{Query: "() castable as xs:integer", Want: []string{"false"}},
		{Query: "(1, 2) castable as xs:integer", Want: []string{"false"}},
		{Query: "xs:integer('42') + 1", Want: []string{"43"}},
		{Query: "xs:date('2019-05-04')", Want: []string{"2019-05-04"}},
		{Query: "5 treat as xs:integer", Want: []string{"5"}},
		{Query: "//book treat as item()*", Want: nil},
	}
	for _, c := range tests {
		if c.Query == "//book treat as item()*" {
			seq, err := xpath.Find(doc, c.Query)
			if err != nil {
				t.Errorf("%s: unexpected error: %s", c.Query, err)
			}
			if seq.Len() != 3 {
				t.Errorf("%s: want 3 items, got %d", c.Query, seq.Len())
			}
			continue
		}
		checkEval(t, doc, c.Query, c.Want)
	}
}

func TestEvalStrings(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "string(//book[2]/title)", Want: []string{"Learning XPath"}},
		{Query: "string-length(//book[2]/title)", Want: []string{"14"}},
		{Query: "name(//book[1]/@id)", Want: []string{"id"}},
		{Query: "local-name(/library/book[1])", Want: []string{"book"}},
		{Query: "//book[lang('fr')]/@id", Want: []string{"b3"}},
		{Query: "//title[lang('fr')]", Want: []string{"Essais"}},
		{Query: "//book[lang('en')]/@id", Want: nil},
		{Query: "string-join(//book/@id, ',')", Want: []string{"b1,b2,b3"}},
		{Query: "concat(//book[1]/@id, '-', //book[1]/@year)", Want: []string{"b1-2005"}},
	}
	for _, c := range tests {
		checkEval(t, doc, c.Query, c.Want)
	}
}

func TestEvalErrors(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	tests := []struct {
		Query string
		Code  string
	}{
		{Query: "'3' + 2", Code: "XPTY0004"},
		{Query: "'a' = 1", Code: "XPTY0004"},
		{Query: "(1, 2) lt 3", Code: "XPTY0004"},
		{Query: "(1, 2) + 1", Code: "XPTY0004"},
		{Query: "() cast as xs:integer", Code: "XPTY0004"},
		{Query: "(1, 2) cast as xs:integer", Code: "XPTY0004"},
		{Query: "//book[1] is 1", Code: "XPTY0004"},
		{Query: "(1, 2) union (3)", Code: "XPTY0004"},
		{Query: "//book union 1", Code: "XPTY0004"},
		{Query: "1 div 0", Code: "FOAR0001"},
		{Query: "1 idiv 0", Code: "FOAR0001"},
		{Query: "1 mod 0", Code: "FOAR0001"},
		{Query: "'abc' cast as xs:integer", Code: "FORG0001"},
		{Query: "5 treat as xs:string", Code: "XPDY0050"},
		{Query: "() treat as xs:integer", Code: "XPDY0050"},
		{Query: "//book/(., 1)", Code: "XPTY0018"},
		{Query: "(1)/title", Code: "XPTY0019"},
		{Query: "error()", Code: "FOER0000"},
		{Query: "error(fn:QName('urn:err', 'e:BOOM'))", Code: "BOOM"},
		{Query: "sum(//book)", Code: "FORG0001"},
		{Query: "boolean((1, 2))", Code: "FORG0006"},
		{Query: "//book[('a', 'b')]", Code: "FORG0006"},
	}
	for _, c := range tests {
		checkCode(t, doc, c.Query, c.Code)
	}
}

func TestEvalContextItem(t *testing.T) {
	exec, err := xpath.CompileString(". + 1")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	ctx := xpath.NewContext(nil, xpath.WithContextItem(xdm.NewAtomicItem(xdm.Integer(41))))
	stream, err := exec.Evaluate(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	it, err := stream.Next()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if it.String() != "42" {
		t.Errorf("want 42, got %s", it)
	}

	for _, q := range []string{".", "position()", "title"} {
		exec, err := xpath.CompileString(q)
		if err != nil {
			t.Fatalf("%s: unexpected error: %s", q, err)
		}
		stream, err := exec.Evaluate(xpath.NewContext(nil))
		if err != nil {
			t.Fatalf("%s: unexpected error: %s", q, err)
		}
		if _, err := stream.Next(); err == nil {
			t.Errorf("%s: error expected without a context item", q)
		} else if code := xpath.CodeOf(err); code != "XPDY0002" {
			t.Errorf("%s: want code XPDY0002, got %s", q, code)
		}
	}
}

func TestEvalVariables(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	exec, err := xpath.CompileString("//book[position() <= $limit]/@id", xpath.WithVariable("limit"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	seq, err := exec.FindWith(doc, map[string]xdm.Sequence{
		"limit": xdm.From(xdm.Integer(2)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := seqStrings(seq); strings.Join(got, ",") != "b1,b2" {
		t.Errorf("want b1,b2; got %s", strings.Join(got, ","))
	}

	seq, err = exec.FindWith(doc, map[string]xdm.Sequence{
		"limit": xdm.From(xdm.Integer(1)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := seqStrings(seq); strings.Join(got, ",") != "b1" {
		t.Errorf("want b1; got %s", strings.Join(got, ","))
	}

	if _, err := exec.Find(doc); err == nil {
		t.Errorf("missing variable value: error expected")
	} else if code := xpath.CodeOf(err); code != "XPDY0002" {
		t.Errorf("missing variable value: want code XPDY0002, got %s", code)
	}
}

func TestEvalVariableOption(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	exec, err := xpath.CompileString("$year = //book/@year", xpath.WithVariable("year"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	ctx := xpath.NewContext(doc, xpath.WithVariableValue("year", xdm.From(xdm.String("2005"))))
	stream, err := exec.Evaluate(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	ok, err := stream.Bool()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !ok {
		t.Errorf("want true for year 2005")
	}
}

func TestEvalDistinctTrees(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	other := parseDoc(t, `<library><book id="x1"/></library>`)
	exec, err := xpath.CompileString("$other << /library", xpath.WithVariable("other"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	vars := map[string]xdm.Sequence{
		"other": xdm.Singleton(xdm.NewNodeItem(other.Root())),
	}
	if _, err := exec.FindWith(doc, vars); err == nil {
		t.Errorf("document order across trees: error expected")
	} else if code := xpath.CodeOf(err); code != "FOER0000" {
		t.Errorf("want code FOER0000, got %s", code)
	}

	exec, err = xpath.CompileString("$other | /library", xpath.WithVariable("other"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := exec.FindWith(doc, vars); err == nil {
		t.Errorf("union across trees: error expected")
	} else if code := xpath.CodeOf(err); code != "FOER0000" {
		t.Errorf("want code FOER0000, got %s", code)
	}

	exec, err = xpath.CompileString("$other is /library", xpath.WithVariable("other"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	seq, err := exec.FindWith(doc, vars)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := strings.Join(seqStrings(seq), ","); got != "false" {
		t.Errorf("identity across trees: want false, got %s", got)
	}
}

func TestEvalLazyStream(t *testing.T) {
	exec, err := xpath.CompileString("(1 to 3, error())[1]")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	stream, err := exec.Evaluate(xpath.NewContext(nil))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	it, err := stream.Next()
	if err != nil {
		t.Fatalf("first item should not evaluate the tail: %s", err)
	}
	if it.String() != "1" {
		t.Errorf("want 1, got %s", it)
	}

	seq, err := xpath.Find(nil, "subsequence((1, 2, error()), 1, 2)")
	if err != nil {
		t.Fatalf("window should stop before the error: %s", err)
	}
	if got := strings.Join(seqStrings(seq), ","); got != "1,2" {
		t.Errorf("want 1,2; got %s", got)
	}
}

func TestEvalCancellation(t *testing.T) {
	var flag atomic.Bool
	flag.Store(true)
	exec, err := xpath.CompileString("1 to 100000")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	stream, err := exec.Evaluate(xpath.NewContext(nil, xpath.WithCancel(&flag)))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := stream.Next(); err == nil {
		t.Fatalf("cancelled evaluation: error expected")
	} else if !xpath.Cancelled(err) {
		t.Errorf("want cancellation, got %s", err)
	}

	flag.Store(false)
	stream, err = exec.Evaluate(xpath.NewContext(nil, xpath.WithCancel(&flag)))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := stream.Next(); err != nil {
		t.Fatalf("unexpected error before the flag is set: %s", err)
	}
	flag.Store(true)
	if _, err := stream.Next(); err == nil {
		t.Fatalf("tripped flag: error expected")
	} else if !xpath.Cancelled(err) {
		t.Errorf("want cancellation, got %s", err)
	}
}

func TestStreamBool(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	tests := []struct {
		Query string
		Want  bool
	}{
		{Query: "//book", Want: true},
		{Query: "//missing", Want: false},
		{Query: "0", Want: false},
		{Query: "42", Want: true},
		{Query: "''", Want: false},
		{Query: "'x'", Want: true},
	}
	for _, c := range tests {
		exec, err := xpath.CompileString(c.Query)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Query, err)
			continue
		}
		stream, err := exec.Evaluate(xpath.NewContext(doc))
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Query, err)
			continue
		}
		got, err := stream.Bool()
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Query, err)
			continue
		}
		if got != c.Want {
			t.Errorf("%s: want %t, got %t", c.Query, c.Want, got)
		}
	}
}

func TestStreamAll(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	exec, err := xpath.CompileString("//book/@id")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	stream, err := exec.Evaluate(xpath.NewContext(doc))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	var got []string
	for it, err := range stream.All() {
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		got = append(got, it.String())
	}
	if strings.Join(got, ",") != "b1,b2,b3" {
		t.Errorf("want b1,b2,b3; got %s", strings.Join(got, ","))
	}

	stream, err = exec.Evaluate(xpath.NewContext(doc))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	for range 3 {
		if _, err := stream.Next(); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	}
	if _, err := stream.Next(); err != io.EOF {
		t.Errorf("want io.EOF after the last item, got %v", err)
	}
}

func TestEvalCustomFunction(t *testing.T) {
	reg := xpath.NewRegistry()
	reg.Register("urn:example:fn", "twice", 1, func(_ *xpath.DynamicContext, args []xdm.Sequence) (xdm.Sequence, error) {
		out := xdm.NewSequence()
		for _, it := range args[0] {
			out.Append(it)
			out.Append(it)
		}
		return out, nil
	})
	exec, err := xpath.CompileString("my:twice((1, 2))",
		xpath.WithNamespace("my", "urn:example:fn"),
		xpath.WithFunctions(reg),
	)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	seq, err := exec.Find(nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := strings.Join(seqStrings(seq), ","); got != "1,1,2,2" {
		t.Errorf("want 1,1,2,2; got %s", got)
	}
}

type recordTracer struct {
	prints []string
}

func (_ *recordTracer) Enter(_ string)          {}
func (_ *recordTracer) Leave(_ string)          {}
func (_ *recordTracer) Error(_ string, _ error) {}

func (t *recordTracer) Print(label, value string) {
	t.prints = append(t.prints, label+"="+value)
}

func TestEvalTracer(t *testing.T) {
	exec, err := xpath.CompileString("trace(1 to 3, 'item')")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	tracer := recordTracer{}
	stream, err := exec.Evaluate(xpath.NewContext(nil, xpath.WithTracer(&tracer)))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := stream.Collect(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []string{"item=1", "item=2", "item=3"}
	if strings.Join(tracer.prints, ";") != strings.Join(want, ";") {
		t.Errorf("want %v, got %v", want, tracer.prints)
	}
}

func checkCode(t *testing.T, doc xdm.Node, query, code string) {
	t.Helper()
	_, err := xpath.Find(doc, query)
	if err == nil {
		t.Errorf("%s: error expected", query)
		return
	}
	if got := xpath.CodeOf(err); got != code {
		t.Errorf("%s: want code %s, got %s (%s)", query, code, got, err)
	}
}

func checkEval(t *testing.T, doc xdm.Node, query string, want []string) {
	t.Helper()
	seq, err := xpath.Find(doc, query)
	if err != nil {
		t.Errorf("%s: unexpected error: %s", query, err)
		return
	}
	got := seqStrings(seq)
	if len(got) != len(want) {
		t.Errorf("%s: want %d items, got %d", query, len(want), len(got))
		t.Logf("want: %s", strings.Join(want, " | "))
		t.Logf("got : %s", strings.Join(got, " | "))
		return
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%s: item %d differs", query, i+1)
			t.Logf("want: %s", strings.Join(want, " | "))
			t.Logf("got : %s", strings.Join(got, " | "))
			return
		}
	}
}

func seqStrings(seq xdm.Sequence) []string {
	var out []string
	for _, it := range seq {
		out = append(out, it.String())
	}
	return out
}

func parseDoc(t *testing.T, text string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(text)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	return doc
}
