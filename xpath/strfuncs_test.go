package xpath_test

import (
	"testing"
)

func TestStringFunctions(t *testing.T) {
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "string(3.14e0)", Want: []string{"3.14"}},
		{Query: "string(true())", Want: []string{"true"}},
		{Query: "string(())", Want: []string{""}},
		{Query: "concat('un', 'grateful')", Want: []string{"ungrateful"}},
		{Query: "concat('a', (), 'b', 1)", Want: []string{"ab1"}},
		{Query: "string-join(('a', 'b', 'c'), '-')", Want: []string{"a-b-c"}},
		{Query: "string-join((), '-')", Want: []string{""}},
		{Query: "substring('motor car', 6)", Want: []string{" car"}},
		{Query: "substring('metadata', 4, 3)", Want: []string{"ada"}},
		{Query: "substring('12345', 1.5, 2.6)", Want: []string{"234"}},
		{Query: "substring('12345', 0, 3)", Want: []string{"12"}},
		{Query: "substring('12345', 5, -3)", Want: []string{""}},
		{Query: "substring('12345', number('one'))", Want: []string{""}},
		{Query: "string-length('Harp not on that string')", Want: []string{"23"}},
		{Query: "string-length('')", Want: []string{"0"}},
		{Query: "normalize-space('  The   wealthy curled darlings   ')", Want: []string{"The wealthy curled darlings"}},
		{Query: "upper-case('abCd0')", Want: []string{"ABCD0"}},
		{Query: "lower-case('ABc!D')", Want: []string{"abc!d"}},
		{Query: "translate('bar', 'abc', 'ABC')", Want: []string{"BAr"}},
		{Query: "translate('--aaa--', 'abc-', 'ABC')", Want: []string{"AAA"}},
		{Query: "translate('abcdabc', 'abc', 'AB')", Want: []string{"ABdAB"}},
		{Query: "encode-for-uri('http://example.com/a b')", Want: []string{"http%3A%2F%2Fexample.com%2Fa%20b"}},
		{Query: "iri-to-uri('http://example.com/~bébé')", Want: []string{"http://example.com/~b%C3%A9b%C3%A9"}},
		{Query: "escape-html-uri('http://example.com/#fé')", Want: []string{"http://example.com/#f%C3%A9"}},
		{Query: "contains('tattoo', 'tat')", Want: []string{"true"}},
		{Query: "contains('tattoo', 'ttt')", Want: []string{"false"}},
		{Query: "contains('tattoo', '')", Want: []string{"true"}},
		{Query: "starts-with('tattoo', 'tat')", Want: []string{"true"}},
		{Query: "starts-with('tattoo', 'att')", Want: []string{"false"}},
		{Query: "ends-with('tattoo', 'too')", Want: []string{"true"}},
		{Query: "ends-with('tattoo', 'tatt')", Want: []string{"false"}},
		{Query: "substring-before('tattoo', 'attoo')", Want: []string{"t"}},
		{Query: "substring-before('tattoo', 'tatto')", Want: []string{""}},
		{Query: "substring-before('tattoo', '')", Want: []string{""}},
		{Query: "substring-before('tattoo', 'x')", Want: []string{""}},
		{Query: "substring-after('tattoo', 'tat')", Want: []string{"too"}},
		{Query: "substring-after('tattoo', 'tattoo')", Want: []string{""}},
		{Query: "substring-after('tattoo', 'x')", Want: []string{""}},
		{Query: "substring-after('tattoo', '')", Want: []string{"tattoo"}},
		{Query: "compare('abc', 'abc')", Want: []string{"0"}},
		{Query: "compare('abc', 'abd')", Want: []string{"-1"}},
		{Query: "compare('b', 'a')", Want: []string{"1"}},
		{Query: "count(compare((), 'a'))", Want: []string{"0"}},
		{Query: "codepoint-equal('abc', 'abc')", Want: []string{"true"}},
		{Query: "codepoint-equal('abc', 'abd')", Want: []string{"false"}},
		{Query: "count(codepoint-equal((), 'x'))", Want: []string{"0"}},
		{Query: "string-to-codepoints('abc')", Want: []string{"97", "98", "99"}},
		{Query: "codepoints-to-string((104, 101, 108, 108, 111))", Want: []string{"hello"}},
		{Query: "codepoints-to-string(())", Want: []string{""}},
		{Query: "string-to-codepoints(normalize-unicode(codepoints-to-string((101, 769))))", Want: []string{"233"}},
		{Query: "string-to-codepoints(normalize-unicode(codepoints-to-string((101, 769)), 'NFD'))", Want: []string{"101", "769"}},
		{Query: "normalize-unicode('abc', '')", Want: []string{"abc"}},
	}
	for _, c := range tests {
		checkEval(t, nil, c.Query, c.Want)
	}
}

func TestStringFunctionsFocus(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "//title[string-length() = 6]", Want: []string{"Essais"}},
		{Query: "//author[starts-with(., 'Ker')]", Want: []string{"Kernighan"}},
		{Query: "//book[contains(title, 'XPath')]/@id", Want: []string{"b2"}},
		{Query: "//book[ends-with(title, 'Language')]/@id", Want: []string{"b1"}},
		{Query: "substring-after(//book[1]/@id, 'b')", Want: []string{"1"}},
	}
	for _, c := range tests {
		checkEval(t, doc, c.Query, c.Want)
	}
}

func TestStringFunctionErrors(t *testing.T) {
	tests := []struct {
		Query string
		Code  string
	}{
		{Query: "codepoints-to-string((0))", Code: "FORG0001"},
		{Query: "codepoints-to-string(('a'))", Code: "XPTY0004"},
		{Query: "normalize-unicode('abc', 'XYZ')", Code: "FOCH0003"},
		{Query: "string((1, 2))", Code: "XPTY0004"},
		{Query: "upper-case(('a', 'b'))", Code: "XPTY0004"},
	}
	for _, c := range tests {
		checkCode(t, nil, c.Query, c.Code)
	}
}
