package xpath_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/midbel/xpath/xdm"
	"github.com/midbel/xpath/xpath"
)

func TestCompile(t *testing.T) {
	queries := []string{
		"/",
		"/library",
		"/library/book",
		"//book",
		"//book/@id",
		"//book[@year='2019']/title",
		"//book[1]",
		"//book[position() = last()]",
		"book/title",
		"./title",
		"../title",
		"child::book/attribute::id",
		"descendant::author",
		"descendant-or-self::node()",
		"ancestor::*",
		"ancestor-or-self::book",
		"parent::library",
		"preceding::book",
		"preceding-sibling::author",
		"following::book",
		"following-sibling::*",
		"self::book",
		"namespace::*",
		"//text()",
		"//comment()",
		"//processing-instruction()",
		"//processing-instruction('style')",
		"//element()",
		"//element(book)",
		"//attribute(id)",
		"//document-node()",
		"//node()",
		"1 + 2 * 3",
		"10 idiv 3 - 10 mod 3",
		"7 div 2",
		"-price",
		"+price",
		"1 to 10",
		"(1, 2, 3)",
		"()",
		"'quote' = \"quote\"",
		"1 = 2 or 1 != 2",
		"1 < 2 and 2 <= 3",
		"1 > 2 or 2 >= 3",
		"1 eq 2 or 1 ne 2",
		"1 lt 2 and 1 le 2",
		"1 gt 2 or 1 ge 2",
		"//book[1] is //book[2]",
		"//book[1] << //book[2]",
		"//book[1] >> //book[2]",
		"//book | //article",
		"//book union //article",
		"//book intersect //book[@year]",
		"//book except //book[@year]",
		"if (1 < 2) then 'a' else 'b'",
		"for $b in //book return $b/title",
		"for $x in 1 to 3, $y in 1 to 3 return $x * $y",
		"let $n := count(//book) return $n + 1",
		"let $a := 1, $b := 2 return $a + $b",
		"some $x in (1, 2, 3) satisfies $x > 2",
		"every $x in //book satisfies $x/@id",
		"5 instance of xs:integer",
		"//book instance of element()+",
		"() instance of empty-sequence()",
		"'3' cast as xs:integer",
		"'3' cast as xs:integer?",
		"'3' castable as xs:decimal",
		"5 treat as xs:integer",
		"//book treat as item()*",
		"count(//book)",
		"concat('a', 'b', 'c')",
		"string-join(//book/title, ', ')",
		"substring('hello', 2, 3)",
		"not(empty(//book))",
		"xs:integer('42')",
		"xs:date('2019-05-04')",
		"fn:count(//book)",
		"(//book)[2]",
		"(1 to 10)[. mod 2 = 0]",
		"//book/(title, price)",
	}
	for _, q := range queries {
		exec, err := xpath.CompileString(q)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", q, err)
			continue
		}
		if exec.String() == "" {
			t.Errorf("%s: empty instruction listing", q)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		Query string
		Code  string
	}{
		{Query: "1 +", Code: "XPST0003"},
		{Query: "//book[", Code: "XPST0003"},
		{Query: "//book[]", Code: "XPST0003"},
		{Query: "'unterminated", Code: "XPST0003"},
		{Query: "1 2", Code: "XPST0003"},
		{Query: "for $x in", Code: "XPST0003"},
		{Query: "for x in (1) return x", Code: "XPST0003"},
		{Query: "let $x = 1 return $x", Code: "XPST0003"},
		{Query: "if (1) then 2", Code: "XPST0003"},
		{Query: "some $x in (1)", Code: "XPST0003"},
		{Query: "count(1,", Code: "XPST0003"},
		{Query: "(1, 2", Code: "XPST0003"},
		{Query: "$unknown", Code: "XPST0008"},
		{Query: "$x + $y", Code: "XPST0008"},
		{Query: "for $x in (1) return $y", Code: "XPST0008"},
		{Query: "no-such-function()", Code: "XPST0017"},
		{Query: "count()", Code: "XPST0017"},
		{Query: "count(1, 2)", Code: "XPST0017"},
		{Query: "concat('a')", Code: "XPST0017"},
		{Query: "position(1)", Code: "XPST0017"},
		{Query: "last(//book)", Code: "XPST0017"},
		{Query: "5 instance of xs:nosuchtype", Code: "XPST0051"},
		{Query: "'a' cast as xs:nosuchtype", Code: "XPST0051"},
		{Query: "'a' castable as xs:wrong", Code: "XPST0051"},
		{Query: "'a' cast as xs:anyAtomicType", Code: "XPST0080"},
		{Query: "xs:anyAtomicType('a')", Code: "XPST0080"},
		{Query: "//unbound:name", Code: "XPST0081"},
		{Query: "unbound:func()", Code: "XPST0081"},
		{Query: "'a' cast as unbound:type", Code: "XPST0081"},
	}
	for _, c := range tests {
		_, err := xpath.CompileString(c.Query)
		if err == nil {
			t.Errorf("%s: error expected", c.Query)
			continue
		}
		if code := xpath.CodeOf(err); code != c.Code {
			t.Errorf("%s: want code %s, got %s (%s)", c.Query, c.Code, code, err)
		}
	}
}

func TestCompileSuggestion(t *testing.T) {
	_, err := xpath.CompileString("conct('a', 'b')")
	if err == nil {
		t.Fatalf("error expected for misspelled function")
	}
	if !strings.Contains(err.Error(), "concat") {
		t.Errorf("suggestion missing from %q", err)
	}
	env := xpath.NewStaticContext(xpath.WithVariable("total"))
	_, err = xpath.Compile(mustParse(t, "$totl + 1"), env)
	if err == nil {
		t.Fatalf("error expected for misspelled variable")
	}
	if !strings.Contains(err.Error(), "total") {
		t.Errorf("suggestion missing from %q", err)
	}
}

func TestCompileNamespaces(t *testing.T) {
	reg := xpath.NewRegistry()
	reg.Register("urn:example:books", "shelf", 0, func(_ *xpath.DynamicContext, _ []xdm.Sequence) (xdm.Sequence, error) {
		return xdm.From(xdm.String("A")), nil
	})
	env := xpath.NewStaticContext(
		xpath.WithNamespace("bk", "urn:example:books"),
		xpath.WithVariable("bk:limit"),
		xpath.WithFunctions(reg),
	)
	queries := []string{
		"//bk:book",
		"//bk:book/@bk:status",
		"bk:shelf()",
		"$bk:limit",
	}
	for _, q := range queries {
		if _, err := xpath.Compile(mustParse(t, q), env); err != nil {
			t.Errorf("%s: unexpected error: %s", q, err)
		}
	}
	if _, err := xpath.CompileString("//bk:book"); err == nil {
		t.Errorf("unbound prefix: error expected without the namespace option")
	}
}

func TestCompileDefaultNamespace(t *testing.T) {
	env := xpath.NewStaticContext(xpath.WithDefaultNamespace("urn:example:books"))
	if _, err := xpath.Compile(mustParse(t, "//book[@status]"), env); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}

func TestCompileVariables(t *testing.T) {
	env := xpath.NewStaticContext(xpath.WithVariable("limit"))
	if _, err := xpath.Compile(mustParse(t, "//book[position() <= $limit]"), env); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	_, err := xpath.Compile(mustParse(t, "$other"), env)
	if err == nil {
		t.Fatalf("undeclared variable: error expected")
	}
	if code := xpath.CodeOf(err); code != "XPST0008" {
		t.Errorf("undeclared variable: want code XPST0008, got %s", code)
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	_, err := xpath.ParseString("//book[")
	if err == nil {
		t.Fatalf("error expected")
	}
	var serr xpath.SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("want SyntaxError, got %T", err)
	}
	if serr.Code != "XPST0003" {
		t.Errorf("want code XPST0003, got %s", serr.Code)
	}
	if serr.Position.Line != 1 || serr.Position.Column == 0 {
		t.Errorf("position not set: %d:%d", serr.Position.Line, serr.Position.Column)
	}
}

func TestDebug(t *testing.T) {
	tests := []struct {
		Query string
		Want  string
	}{
		{
			Query: "/library/book",
			Want:  "path(path(root, step(child::library)), step(child::book))",
		},
		{
			Query: "//book",
			Want:  "path(path(root, step(descendant-or-self::node())), step(child::book))",
		},
		{
			Query: "1 + 2",
			Want:  "binary(number(1), number(2), +)",
		},
		{
			Query: "book[1]",
			Want:  "step(child::book, number(1))",
		},
		{
			Query: "if (1) then 'a' else 'b'",
			Want:  "if(number(1), literal(a), literal(b))",
		},
		{
			Query: "some $x in (1, 2) satisfies $x",
			Want:  "some((x, sequence(number(1), number(2))), satisfies(variable(x)))",
		},
	}
	for _, c := range tests {
		got := xpath.Debug(mustParse(t, c.Query))
		if got != c.Want {
			t.Errorf("%s:", c.Query)
			t.Logf("want: %s", c.Want)
			t.Logf("got : %s", got)
		}
	}
}

func TestExecutableString(t *testing.T) {
	exec, err := xpath.CompileString("//book[@year]/title")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	listing := exec.String()
	for _, want := range []string{"root", "step", "predicate"} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing misses %q:\n%s", want, listing)
		}
	}
}

func mustParse(t *testing.T, query string) xpath.Expr {
	t.Helper()
	expr, err := xpath.ParseString(query)
	if err != nil {
		t.Fatalf("%s: unexpected parse error: %s", query, err)
	}
	return expr
}
