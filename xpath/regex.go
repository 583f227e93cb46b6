package xpath

import (
	"regexp"
	"strings"
	"sync"

	"github.com/midbel/xpath/xdm"
)

// Regex is the engine behind fn:matches, fn:replace and fn:tokenize.
// The default provider compiles Go regular expressions and translates
// the i, m, s and x flags; install another provider with WithRegex when
// full XML Schema pattern syntax is required.
type Regex interface {
	Matches(value, pattern, flags string) (bool, error)
	Replace(value, pattern, flags, replacement string) (string, error)
	Tokenize(value, pattern, flags string) ([]string, error)
}

var (
	stdRegex *goRegex
	onceRe   sync.Once
)

func defaultRegex() Regex {
	onceRe.Do(func() {
		stdRegex = &goRegex{
			cache: make(map[string]*regexp.Regexp),
		}
	})
	return stdRegex
}

const regexCacheSize = 64

type goRegex struct {
	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

func (g *goRegex) Matches(value, pattern, flags string) (bool, error) {
	re, err := g.compile(pattern, flags)
	if err != nil {
		return false, err
	}
	return re.MatchString(value), nil
}

func (g *goRegex) Replace(value, pattern, flags, replacement string) (string, error) {
	re, err := g.compile(pattern, flags)
	if err != nil {
		return "", err
	}
	if re.MatchString("") {
		return "", zeroMatch(pattern)
	}
	tpl, err := goReplacement(replacement)
	if err != nil {
		return "", err
	}
	return re.ReplaceAllString(value, tpl), nil
}

func (g *goRegex) Tokenize(value, pattern, flags string) ([]string, error) {
	re, err := g.compile(pattern, flags)
	if err != nil {
		return nil, err
	}
	if re.MatchString("") {
		return nil, zeroMatch(pattern)
	}
	return re.Split(value, -1), nil
}

func (g *goRegex) compile(pattern, flags string) (*regexp.Regexp, error) {
	key := pattern + "\x00" + flags
	g.mu.Lock()
	re, ok := g.cache[key]
	g.mu.Unlock()
	if ok {
		return re, nil
	}
	inline, xmode, err := splitFlags(flags)
	if err != nil {
		return nil, err
	}
	expr := pattern
	if xmode {
		expr = stripPatternSpace(expr)
	}
	if inline != "" {
		expr = "(?" + inline + ")" + expr
	}
	re, err = regexp.Compile(expr)
	if err != nil {
		return nil, xdm.Errorf(xdm.CodeBadRegex, "%s is not a valid pattern", pattern)
	}
	g.mu.Lock()
	if len(g.cache) >= regexCacheSize {
		clear(g.cache)
	}
	g.cache[key] = re
	g.mu.Unlock()
	return re, nil
}

func zeroMatch(pattern string) error {
	return xdm.Errorf(xdm.CodeRegexZeroMatch, "pattern %s matches a zero length string", pattern)
}

// splitFlags validates the flag string and separates the flags Go
// supports inline from the x flag, which needs a pattern rewrite.
func splitFlags(flags string) (string, bool, error) {
	var (
		inline strings.Builder
		xmode  bool
	)
	for _, r := range flags {
		switch r {
		case 'i', 'm', 's':
			if !strings.ContainsRune(inline.String(), r) {
				inline.WriteRune(r)
			}
		case 'x':
			xmode = true
		default:
			return "", false, xdm.Errorf(xdm.CodeBadRegexFlags, "%c is not a valid flag", r)
		}
	}
	return inline.String(), xmode, nil
}

// stripPatternSpace removes whitespace from the pattern except inside
// character classes and after a backslash, implementing the x flag.
func stripPatternSpace(pattern string) string {
	var (
		out   strings.Builder
		esc   bool
		class bool
	)
	for _, r := range pattern {
		if esc {
			out.WriteRune('\\')
			out.WriteRune(r)
			esc = false
			continue
		}
		switch r {
		case '\\':
			esc = true
			continue
		case '[':
			class = true
		case ']':
			class = false
		case ' ', '\t', '\n', '\r':
			if !class {
				continue
			}
		}
		out.WriteRune(r)
	}
	if esc {
		out.WriteRune('\\')
	}
	return out.String()
}

// goReplacement rewrites an XPath replacement string into a Go
// template: $N group references become ${N}, \$ and \\ unescape, and
// anything else after a backslash or dollar sign is invalid.
func goReplacement(repl string) (string, error) {
	var out strings.Builder
	for i := 0; i < len(repl); i++ {
		switch repl[i] {
		case '\\':
			i++
			if i >= len(repl) {
				return "", xdm.NewError(xdm.CodeBadReplacement, "replacement ends with a lone backslash")
			}
			switch repl[i] {
			case '\\':
				out.WriteByte('\\')
			case '$':
				out.WriteString("$$")
			default:
				return "", xdm.Errorf(xdm.CodeBadReplacement, `\%c is not a valid replacement escape`, repl[i])
			}
		case '$':
			if i+1 >= len(repl) || !isDigit(repl[i+1]) {
				return "", xdm.NewError(xdm.CodeBadReplacement, "$ must be followed by a group number")
			}
			start := i + 1
			for i+1 < len(repl) && isDigit(repl[i+1]) {
				i++
			}
			out.WriteString("${" + repl[start:i+1] + "}")
		default:
			out.WriteByte(repl[i])
		}
	}
	return out.String(), nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
