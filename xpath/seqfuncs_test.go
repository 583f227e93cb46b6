package xpath_test

import (
	"testing"
)

func TestBooleanFunctions(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "true()", Want: []string{"true"}},
		{Query: "false()", Want: []string{"false"}},
		{Query: "boolean(())", Want: []string{"false"}},
		{Query: "boolean(0)", Want: []string{"false"}},
		{Query: "boolean(0.0e0)", Want: []string{"false"}},
		{Query: "boolean(42)", Want: []string{"true"}},
		{Query: "boolean('')", Want: []string{"false"}},
		{Query: "boolean('false')", Want: []string{"true"}},
		{Query: "boolean(number('zero'))", Want: []string{"false"}},
		{Query: "boolean(//book)", Want: []string{"true"}},
		{Query: "boolean(//missing)", Want: []string{"false"}},
		{Query: "not(())", Want: []string{"true"}},
		{Query: "not('x')", Want: []string{"false"}},
		{Query: "not(//missing)", Want: []string{"true"}},
	}
	for _, c := range tests {
		checkEval(t, doc, c.Query, c.Want)
	}
}

func TestSequenceFunctions(t *testing.T) {
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "empty(())", Want: []string{"true"}},
		{Query: "empty((1))", Want: []string{"false"}},
		{Query: "exists(())", Want: []string{"false"}},
		{Query: "exists((1, 2))", Want: []string{"true"}},
		{Query: "distinct-values((1, 2.0, 3, 2))", Want: []string{"1", "2", "3"}},
		{Query: "distinct-values(('a', 'A', 'a'))", Want: []string{"a", "A"}},
		{Query: "distinct-values((number('NaN'), number('NaN'), 1))", Want: []string{"NaN", "1"}},
		{Query: "distinct-values((1, 'one', 1))", Want: []string{"1", "one"}},
		{Query: "index-of((10, 20, 30, 20), 20)", Want: []string{"2", "4"}},
		{Query: "count(index-of(('a', 'b'), 'z'))", Want: []string{"0"}},
		{Query: "index-of((1, 'a', 2), 2)", Want: []string{"3"}},
		{Query: "insert-before((1, 2, 3), 2, ('a', 'b'))", Want: []string{"1", "a", "b", "2", "3"}},
		{Query: "insert-before((1, 2, 3), 0, 'x')", Want: []string{"x", "1", "2", "3"}},
		{Query: "insert-before((1, 2, 3), 10, 'x')", Want: []string{"1", "2", "3", "x"}},
		{Query: "remove((1, 2, 3), 2)", Want: []string{"1", "3"}},
		{Query: "remove((1, 2, 3), 0)", Want: []string{"1", "2", "3"}},
		{Query: "remove((1, 2, 3), 4)", Want: []string{"1", "2", "3"}},
		{Query: "reverse((1, 2, 3))", Want: []string{"3", "2", "1"}},
		{Query: "count(reverse(()))", Want: []string{"0"}},
		{Query: "reverse(reverse((1, 2, 3)))", Want: []string{"1", "2", "3"}},
		{Query: "subsequence((1, 2, 3, 4, 5), 2, 2)", Want: []string{"2", "3"}},
		{Query: "subsequence((1, 2, 3, 4, 5), 4)", Want: []string{"4", "5"}},
		{Query: "subsequence((1, 2, 3, 4, 5), 1.5, 2)", Want: []string{"2", "3"}},
		{Query: "subsequence((1, 2, 3), -2, 5)", Want: []string{"1", "2"}},
		{Query: "count(subsequence((1, 2, 3), number('none')))", Want: []string{"0"}},
		{Query: "unordered((3, 1, 2))", Want: []string{"3", "1", "2"}},
		{Query: "count(zero-or-one(()))", Want: []string{"0"}},
		{Query: "zero-or-one((1))", Want: []string{"1"}},
		{Query: "one-or-more((1, 2))", Want: []string{"1", "2"}},
		{Query: "exactly-one((1))", Want: []string{"1"}},
		{Query: "deep-equal((1, 2), (1, 2))", Want: []string{"true"}},
		{Query: "deep-equal((1, 2), (2, 1))", Want: []string{"false"}},
		{Query: "deep-equal((1, 'a'), (1, 'a'))", Want: []string{"true"}},
		{Query: "deep-equal((1), (1, 2))", Want: []string{"false"}},
		{Query: "deep-equal((), ())", Want: []string{"true"}},
		{Query: "deep-equal((number('NaN')), (number('NaN')))", Want: []string{"true"}},
		{Query: "deep-equal((1), ('1'))", Want: []string{"false"}},
	}
	for _, c := range tests {
		checkEval(t, nil, c.Query, c.Want)
	}
}

func TestDeepEqualNodes(t *testing.T) {
	doc := parseDoc(t, `<r><a><b x="1">t</b></a><a><b x="1">t</b></a><a><b x="2">t</b></a><a><b x="1">u</b></a></r>`)
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "deep-equal(/r/a[1], /r/a[2])", Want: []string{"true"}},
		{Query: "deep-equal(/r/a[1], /r/a[3])", Want: []string{"false"}},
		{Query: "deep-equal(/r/a[1], /r/a[4])", Want: []string{"false"}},
		{Query: "deep-equal(/r/a[1]/b/@x, /r/a[2]/b/@x)", Want: []string{"true"}},
		{Query: "deep-equal(/r/a[1], 'ta')", Want: []string{"false"}},
	}
	for _, c := range tests {
		checkEval(t, doc, c.Query, c.Want)
	}
}

func TestSequenceFunctionErrors(t *testing.T) {
	tests := []struct {
		Query string
		Code  string
	}{
		{Query: "zero-or-one((1, 2))", Code: "FORG0003"},
		{Query: "one-or-more(())", Code: "FORG0004"},
		{Query: "exactly-one(())", Code: "FORG0005"},
		{Query: "exactly-one((1, 2))", Code: "FORG0005"},
		{Query: "error((), 'details withheld')", Code: "FOER0000"},
		{Query: "error(fn:QName('urn:example:err', 'app:E42'), 'oops', (1, 2))", Code: "E42"},
		{Query: "error('plain')", Code: "XPTY0004"},
	}
	for _, c := range tests {
		checkCode(t, nil, c.Query, c.Code)
	}
}
