package json_test

import (
	"strings"
	"testing"

	"github.com/midbel/xpath/dom"
	"github.com/midbel/xpath/json"
	"github.com/midbel/xpath/xdm"
	"github.com/midbel/xpath/xpath"
)

func TestParseQuery(t *testing.T) {
	data := []struct {
		Input string
		Query string
		Want  []string
	}{
		{
			Input: `{"name": "midbel"}`,
			Query: `/json/name`,
			Want:  []string{"midbel"},
		},
		{
			Input: `{"books": [{"title": "go", "price": 10}, {"title": "xpath", "price": 25}]}`,
			Query: `/json/books/item[price > 20]/title`,
			Want:  []string{"xpath"},
		},
		{
			Input: `[1, 2, 3]`,
			Query: `count(/json/item)`,
			Want:  []string{"3"},
		},
		{
			Input: `[1, 2, 3]`,
			Query: `sum(/json/item)`,
			Want:  []string{"6"},
		},
		{
			Input: `{"n": 1e3}`,
			Query: `/json/n`,
			Want:  []string{"1e3"},
		},
		{
			Input: `{"n": 1e3}`,
			Query: `number(/json/n) + 1`,
			Want:  []string{"1001"},
		},
		{
			Input: `{"a": null, "b": false}`,
			Query: `count(/json/a)`,
			Want:  []string{"1"},
		},
		{
			Input: `{"a": null}`,
			Query: `/json/a/text()`,
			Want:  nil,
		},
		{
			Input: `{"ok": true}`,
			Query: `/json/ok = 'true'`,
			Want:  []string{"true"},
		},
		{
			Input: `{"full name": "sax", "y z": "w"}`,
			Query: `/json/entry[@key = 'full name']`,
			Want:  []string{"sax"},
		},
		{
			Input: `{"full name": "sax", "y z": "w"}`,
			Query: `count(/json/entry)`,
			Want:  []string{"2"},
		},
		{
			Input: `{"a": 1, "a": 2}`,
			Query: `string-join(/json/a, ',')`,
			Want:  []string{"1,2"},
		},
		{
			Input: `{"a": {"b": {"c": "deep"}}}`,
			Query: `//c`,
			Want:  []string{"deep"},
		},
		{
			Input: `{"b": 1, "a": 2}`,
			Query: `name(/json/*[1])`,
			Want:  []string{"b"},
		},
		{
			Input: `"hi"`,
			Query: `string(/json)`,
			Want:  []string{"hi"},
		},
		{
			Input: `{}`,
			Query: `count(/json/*)`,
			Want:  []string{"0"},
		},
		{
			Input: `{"s": "a\nb"}`,
			Query: `string-length(/json/s)`,
			Want:  []string{"3"},
		},
		{
			Input: `{"s": "été"}`,
			Query: `/json/s`,
			Want:  []string{"été"},
		},
		{
			Input: `{"s": "😀"}`,
			Query: `string-length(/json/s)`,
			Want:  []string{"1"},
		},
		{
			Input: `{"s": "say \"hi\"/bye"}`,
			Query: `/json/s`,
			Want:  []string{`say "hi"/bye`},
		},
	}
	for _, d := range data {
		doc, err := json.ParseString(d.Input)
		if err != nil {
			t.Errorf("%s: fail to parse document: %s", d.Input, err)
			continue
		}
		seq, err := xpath.Find(doc, d.Query)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", d.Query, err)
			continue
		}
		got := seqStrings(seq)
		if len(got) != len(d.Want) {
			t.Errorf("%s: want %d items, got %d", d.Query, len(d.Want), len(got))
			t.Logf("want: %s", strings.Join(d.Want, " | "))
			t.Logf("got : %s", strings.Join(got, " | "))
			continue
		}
		for i := range got {
			if got[i] != d.Want[i] {
				t.Errorf("%s: item %d differs", d.Query, i+1)
				t.Logf("want: %s", strings.Join(d.Want, " | "))
				t.Logf("got : %s", strings.Join(got, " | "))
				break
			}
		}
	}
}

func TestParseShape(t *testing.T) {
	doc, err := json.ParseString(`{"tags": ["go", "xml"], "count": 2}`)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	root, ok := doc.Root().(*dom.Element)
	if !ok {
		t.Fatalf("missing root element")
	}
	if root.Name().Name != "json" {
		t.Errorf("want root named json, got %s", root.Name().Name)
	}
	if len(root.Nodes) != 2 {
		t.Fatalf("want 2 members, got %d", len(root.Nodes))
	}
	tags := root.Nodes[0].(*dom.Element)
	if tags.Name().Name != "tags" {
		t.Errorf("want first member named tags, got %s", tags.Name().Name)
	}
	if len(tags.Nodes) != 2 {
		t.Errorf("want 2 items, got %d", len(tags.Nodes))
	}
	if parent := tags.Parent(); parent != xdm.Node(root) {
		t.Errorf("member should have the root as parent")
	}
}

func TestParseErrors(t *testing.T) {
	data := []string{
		``,
		`{`,
		`{"a"}`,
		`{"a":1,}`,
		`[1 2]`,
		`[1,2,]`,
		`{"a":01}`,
		`{"a":+1}`,
		`{"a":1.}`,
		`{"a":1e}`,
		`"abc`,
		`{"a":1} {}`,
		`{'a':1}`,
		`{"a":nul}`,
		`{"s":"\q"}`,
		`{"s":"\u12"}`,
		"{\"s\":\"a\tb\"}",
	}
	for _, input := range data {
		if _, err := json.ParseString(input); err == nil {
			t.Errorf("%s: error expected", input)
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
