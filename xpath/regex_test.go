package xpath_test

import (
	"strings"
	"testing"

	"github.com/midbel/xpath/xpath"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "matches('abracadabra', 'bra')", Want: []string{"true"}},
		{Query: "matches('abracadabra', '^a.*a$')", Want: []string{"true"}},
		{Query: "matches('abracadabra', '^bra')", Want: []string{"false"}},
		{Query: "matches('ABC', 'abc', 'i')", Want: []string{"true"}},
		{Query: "matches('a\nb', '^b', 'm')", Want: []string{"true"}},
		{Query: "matches('a\nb', 'a.b', 's')", Want: []string{"true"}},
		{Query: "matches('a\nb', 'a.b')", Want: []string{"false"}},
		{Query: "matches('helloworld', 'hello world', 'x')", Want: []string{"true"}},
		{Query: "matches('hello world', 'hello[ ]world', 'x')", Want: []string{"true"}},
		{Query: "matches('', 'a*')", Want: []string{"true"}},
	}
	for _, c := range tests {
		checkEval(t, nil, c.Query, c.Want)
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "replace('abracadabra', 'bra', '*')", Want: []string{"a*cada*"}},
		{Query: "replace('abracadabra', 'a.*a', '*')", Want: []string{"*"}},
		{Query: "replace('abracadabra', 'a.*?a', '*')", Want: []string{"*c*bra"}},
		{Query: "replace('AAAA', 'A+', 'b')", Want: []string{"b"}},
		{Query: "replace('AAAA', 'A+?', 'b')", Want: []string{"bbbb"}},
		{Query: "replace('darted', '^(.*?)d(.*)$', '$1c$2')", Want: []string{"carted"}},
		{Query: "replace('abc', 'b', '\\$')", Want: []string{"a$c"}},
		{Query: "replace('no match', 'xyz', '!')", Want: []string{"no match"}},
	}
	for _, c := range tests {
		checkEval(t, nil, c.Query, c.Want)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "tokenize('The cat sat', '\\s+')", Want: []string{"The", "cat", "sat"}},
		{Query: "tokenize('1, 15, 24, 50', ',\\s*')", Want: []string{"1", "15", "24", "50"}},
		{Query: "tokenize(',a', ',')", Want: []string{"", "a"}},
		{Query: "tokenize('abc', 'q')", Want: []string{"abc"}},
		{Query: "count(tokenize('', 'q'))", Want: []string{"0"}},
	}
	for _, c := range tests {
		checkEval(t, nil, c.Query, c.Want)
	}
}

func TestRegexErrors(t *testing.T) {
	tests := []struct {
		Query string
		Code  string
	}{
		{Query: "matches('a', 'a', 'g')", Code: "FORX0001"},
		{Query: "matches('a', '[')", Code: "FORX0002"},
		{Query: "replace('abracadabra', '.*?', '*')", Code: "FORX0003"},
		{Query: "tokenize('abc', 'q?')", Code: "FORX0003"},
		{Query: "replace('abc', 'b', '$')", Code: "FORX0004"},
		{Query: "replace('abc', 'b', '\\x')", Code: "FORX0004"},
	}
	for _, c := range tests {
		checkCode(t, nil, c.Query, c.Code)
	}
}

type literalRegex struct{}

func (literalRegex) Matches(value, pattern, _ string) (bool, error) {
	return strings.Contains(value, pattern), nil
}

func (literalRegex) Replace(value, pattern, _, repl string) (string, error) {
	return strings.ReplaceAll(value, pattern, repl), nil
}

func (literalRegex) Tokenize(value, pattern, _ string) ([]string, error) {
	return strings.Split(value, pattern), nil
}

func TestRegexProvider(t *testing.T) {
	tests := []struct {
		Query string
		Want  string
	}{
		{Query: "replace('a.b', '.', '!')", Want: "a!b"},
		{Query: "matches('a.b', '.')", Want: "true"},
		{Query: "matches('ab', '.')", Want: "false"},
		{Query: "string-join(tokenize('a.b', '.'), '/')", Want: "a/b"},
	}
	for _, c := range tests {
		exec, err := xpath.CompileString(c.Query)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Query, err)
			continue
		}
		stream, err := exec.Evaluate(xpath.NewContext(nil, xpath.WithRegex(literalRegex{})))
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Query, err)
			continue
		}
		seq, err := stream.Collect()
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Query, err)
			continue
		}
		if got := strings.Join(seqStrings(seq), ","); got != c.Want {
			t.Errorf("%s: want %s, got %s", c.Query, c.Want, got)
		}
	}
}
