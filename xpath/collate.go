package xpath

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/midbel/xpath/xdm"
)

// Collation URIs known to the default collation set.
const (
	CollationCodepoint  = "http://www.w3.org/2005/xpath-functions/collation/codepoint"
	CollationCaseless   = "http://midbel.org/xpath/collation/case-insensitive"
	CollationAccentless = "http://midbel.org/xpath/collation/accent-insensitive"
	CollationFolded     = "http://midbel.org/xpath/collation/folded"
)

// Collation is a named string ordering. A nil Compare means codepoint
// order. Key, when set, maps strings onto comparison keys and lets the
// substring matching functions work under the collation; without it
// only whole string comparison is available.
type Collation struct {
	Uri     string
	Compare xdm.Collation
	Key     func(string) string
}

// KeyCollation builds a collation from a key transform: strings sort
// and match by their keys.
func KeyCollation(uri string, key func(string) string) *Collation {
	return &Collation{
		Uri: uri,
		Key: key,
		Compare: func(a, b string) int {
			return strings.Compare(key(a), key(b))
		},
	}
}

// codepoint reports whether the collation compares raw codepoints.
func (c *Collation) codepoint() bool {
	return c == nil || (c.Compare == nil && c.Key == nil)
}

func (c *Collation) compare(a, b string) int {
	if c == nil || c.Compare == nil {
		return strings.Compare(a, b)
	}
	return c.Compare(a, b)
}

// substrKey returns the transform substring matching runs under, false
// when the collation does not support breaking strings into units.
func (c *Collation) substrKey() (func(string) string, bool) {
	if c.codepoint() {
		return func(s string) string { return s }, true
	}
	if c.Key != nil {
		return c.Key, true
	}
	return nil, false
}

func (f *frame) collate() xdm.Collation {
	if f.coll == nil {
		return nil
	}
	return f.coll.Compare
}

// Collations resolves collation URIs for evaluations. The zero value is
// not usable; build one with NewCollations.
type Collations struct {
	mu    sync.Mutex
	known map[string]*Collation
	vers  int
}

// NewCollations returns a set holding only the codepoint collation.
func NewCollations() *Collations {
	set := Collations{
		known: make(map[string]*Collation),
	}
	set.Register(&Collation{Uri: CollationCodepoint})
	return &set
}

// Register adds or replaces a collation under its URI.
func (s *Collations) Register(c *Collation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.known[c.Uri] = c
	s.vers++
}

// Lookup resolves uri, raising FOCH0002 for collations not in the set.
func (s *Collations) Lookup(uri string) (*Collation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.known[uri]
	if !ok {
		return nil, xdm.Errorf(xdm.CodeUnknownCollation, "collation %s is not known", uri)
	}
	return c, nil
}

func (s *Collations) version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vers
}

var (
	defaultColls *Collations
	onceColls    sync.Once
)

// DefaultCollations returns the shared collation set: codepoint order
// plus case insensitive, accent insensitive and folded variants.
func DefaultCollations() *Collations {
	onceColls.Do(func() {
		set := NewCollations()
		set.Register(KeyCollation(CollationCaseless, strings.ToLower))
		set.Register(KeyCollation(CollationAccentless, stripMarks))
		set.Register(KeyCollation(CollationFolded, func(s string) string {
			return strings.ToLower(stripMarks(s))
		}))
		defaultColls = set
	})
	return defaultColls
}

// stripMarks decomposes the string and drops the combining marks, so
// accented letters compare equal to their base letter.
func stripMarks(str string) string {
	var out strings.Builder
	for _, r := range norm.NFD.String(str) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}
