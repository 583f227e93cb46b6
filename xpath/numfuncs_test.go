package xpath_test

import (
	"testing"
)

func TestNumericFunctions(t *testing.T) {
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "abs(-3)", Want: []string{"3"}},
		{Query: "abs(-3.5)", Want: []string{"3.5"}},
		{Query: "abs(10.5e0)", Want: []string{"10.5"}},
		{Query: "ceiling(10.5)", Want: []string{"11"}},
		{Query: "ceiling(-10.5)", Want: []string{"-10"}},
		{Query: "ceiling(7)", Want: []string{"7"}},
		{Query: "floor(10.5)", Want: []string{"10"}},
		{Query: "floor(-10.5)", Want: []string{"-11"}},
		{Query: "floor(7)", Want: []string{"7"}},
		{Query: "round(2.5)", Want: []string{"3"}},
		{Query: "round(2.4999)", Want: []string{"2"}},
		{Query: "round(-2.5)", Want: []string{"-2"}},
		{Query: "round(7)", Want: []string{"7"}},
		{Query: "round-half-to-even(0.5)", Want: []string{"0"}},
		{Query: "round-half-to-even(1.5)", Want: []string{"2"}},
		{Query: "round-half-to-even(2.5)", Want: []string{"2"}},
		{Query: "round-half-to-even(3.25e0, 1)", Want: []string{"3.2"}},
		{Query: "number('42')", Want: []string{"42"}},
		{Query: "number('13.5')", Want: []string{"13.5"}},
		{Query: "number('one')", Want: []string{"NaN"}},
		{Query: "number(())", Want: []string{"NaN"}},
		{Query: "number(true())", Want: []string{"1"}},
		{Query: "count(())", Want: []string{"0"}},
		{Query: "count((1, 2, 3))", Want: []string{"3"}},
		{Query: "count((1, (2, 3)))", Want: []string{"3"}},
		{Query: "sum((1, 2, 3))", Want: []string{"6"}},
		{Query: "sum(())", Want: []string{"0"}},
		{Query: "count(sum((), ()))", Want: []string{"0"}},
		{Query: "sum((1.5, 2.5))", Want: []string{"4"}},
		{Query: "avg((1, 2, 3))", Want: []string{"2"}},
		{Query: "avg((1, 2))", Want: []string{"1.5"}},
		{Query: "count(avg(()))", Want: []string{"0"}},
		{Query: "max((1, 2, 3))", Want: []string{"3"}},
		{Query: "max((1, 2.5))", Want: []string{"2.5"}},
		{Query: "max((1, 2e0))", Want: []string{"2"}},
		{Query: "max(('a', 'b', 'c'))", Want: []string{"c"}},
		{Query: "count(max(()))", Want: []string{"0"}},
		{Query: "min((3, 1, 2))", Want: []string{"1"}},
		{Query: "min(('b', 'a'))", Want: []string{"a"}},
		{Query: "max((number('NaN'), 5))", Want: []string{"NaN"}},
		{Query: "min((1, number('NaN')))", Want: []string{"NaN"}},
	}
	for _, c := range tests {
		checkEval(t, nil, c.Query, c.Want)
	}
}

func TestNumericFunctionsOverNodes(t *testing.T) {
	doc := parseDoc(t, libraryDoc)
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "count(//author)", Want: []string{"4"}},
		{Query: "sum(//book/price)", Want: []string{"62.75"}},
		{Query: "max(//book/price)", Want: []string{"32.5"}},
		{Query: "min(//book/price)", Want: []string{"12.25"}},
		{Query: "//book[number(@year) = 2005]/@id", Want: []string{"b1"}},
		{Query: "round(sum(//book/price))", Want: []string{"63"}},
	}
	for _, c := range tests {
		checkEval(t, doc, c.Query, c.Want)
	}
}

func TestNumericFunctionErrors(t *testing.T) {
	tests := []struct {
		Query string
		Code  string
	}{
		{Query: "abs('x')", Code: "XPTY0004"},
		{Query: "floor(('a', 'b'))", Code: "XPTY0004"},
		{Query: "sum((1, 'a'))", Code: "FORG0006"},
		{Query: "max((1, 'a'))", Code: "FORG0006"},
		{Query: "avg(('a', 'b'))", Code: "FORG0006"},
	}
	for _, c := range tests {
		checkCode(t, nil, c.Query, c.Code)
	}
}
