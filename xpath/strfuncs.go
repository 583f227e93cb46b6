package xpath

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/midbel/xpath/xdm"
)

func registerStringFuncs(b builder) {
	b.add("string", callString)
	b.add("string", callString, pItemOpt)
	b.variadic("concat", callConcat, pvOpt(xdm.TypeAnyAtomic), pvOpt(xdm.TypeAnyAtomic))
	b.add("string-join", callStringJoin, pvStar(xdm.TypeString), pv(xdm.TypeString))
	b.add("substring", callSubstring, pvOpt(xdm.TypeString), pv(xdm.TypeDouble))
	b.add("substring", callSubstring, pvOpt(xdm.TypeString), pv(xdm.TypeDouble), pv(xdm.TypeDouble))
	b.add("string-length", callStringLength)
	b.add("string-length", callStringLength, pvOpt(xdm.TypeString))
	b.add("normalize-space", callNormalizeSpace)
	b.add("normalize-space", callNormalizeSpace, pvOpt(xdm.TypeString))
	b.add("normalize-unicode", callNormalizeUnicode, pvOpt(xdm.TypeString))
	b.add("normalize-unicode", callNormalizeUnicode, pvOpt(xdm.TypeString), pv(xdm.TypeString))
	b.add("upper-case", callUpperCase, pvOpt(xdm.TypeString))
	b.add("lower-case", callLowerCase, pvOpt(xdm.TypeString))
	b.add("translate", callTranslate, pvOpt(xdm.TypeString), pv(xdm.TypeString), pv(xdm.TypeString))
	b.add("encode-for-uri", callEncodeForURI, pvOpt(xdm.TypeString))
	b.add("iri-to-uri", callIriToURI, pvOpt(xdm.TypeString))
	b.add("escape-html-uri", callEscapeHTMLURI, pvOpt(xdm.TypeString))
	b.add("contains", callContains, pvOpt(xdm.TypeString), pvOpt(xdm.TypeString))
	b.add("contains", callContains, pvOpt(xdm.TypeString), pvOpt(xdm.TypeString), pv(xdm.TypeString))
	b.add("starts-with", callStartsWith, pvOpt(xdm.TypeString), pvOpt(xdm.TypeString))
	b.add("starts-with", callStartsWith, pvOpt(xdm.TypeString), pvOpt(xdm.TypeString), pv(xdm.TypeString))
	b.add("ends-with", callEndsWith, pvOpt(xdm.TypeString), pvOpt(xdm.TypeString))
	b.add("ends-with", callEndsWith, pvOpt(xdm.TypeString), pvOpt(xdm.TypeString), pv(xdm.TypeString))
	b.add("substring-before", callSubstringBefore, pvOpt(xdm.TypeString), pvOpt(xdm.TypeString))
	b.add("substring-before", callSubstringBefore, pvOpt(xdm.TypeString), pvOpt(xdm.TypeString), pv(xdm.TypeString))
	b.add("substring-after", callSubstringAfter, pvOpt(xdm.TypeString), pvOpt(xdm.TypeString))
	b.add("substring-after", callSubstringAfter, pvOpt(xdm.TypeString), pvOpt(xdm.TypeString), pv(xdm.TypeString))
	b.add("compare", callCompare, pvOpt(xdm.TypeString), pvOpt(xdm.TypeString))
	b.add("compare", callCompare, pvOpt(xdm.TypeString), pvOpt(xdm.TypeString), pv(xdm.TypeString))
	b.add("codepoint-equal", callCodepointEqual, pvOpt(xdm.TypeString), pvOpt(xdm.TypeString))
	b.add("string-to-codepoints", callStringToCodepoints, pvOpt(xdm.TypeString))
	b.add("codepoints-to-string", callCodepointsToString, pvStar(xdm.TypeInteger))
	b.add("matches", callMatches, pvOpt(xdm.TypeString), pv(xdm.TypeString))
	b.add("matches", callMatches, pvOpt(xdm.TypeString), pv(xdm.TypeString), pv(xdm.TypeString))
	b.add("replace", callReplace, pvOpt(xdm.TypeString), pv(xdm.TypeString), pv(xdm.TypeString))
	b.add("replace", callReplace, pvOpt(xdm.TypeString), pv(xdm.TypeString), pv(xdm.TypeString), pv(xdm.TypeString))
	b.add("tokenize", callTokenize, pvOpt(xdm.TypeString), pv(xdm.TypeString))
	b.add("tokenize", callTokenize, pvOpt(xdm.TypeString), pv(xdm.TypeString), pv(xdm.TypeString))
}

func stringItem(str string) cursor {
	return only(xdm.NewAtomicItem(xdm.String(str)))
}

// stringArg reads the string the zero or one argument forms work on:
// the first argument when given, the string value of the context item
// otherwise. An empty argument reads as the zero string.
func stringArg(call *callCtx, args []cursor) (string, error) {
	if len(args) == 0 {
		it, err := call.focusItem()
		if err != nil {
			return "", err
		}
		return it.String(), nil
	}
	return argString(args[0])
}

func callString(call *callCtx, args []cursor) (cursor, error) {
	if len(args) == 0 {
		it, err := call.focusItem()
		if err != nil {
			return nil, err
		}
		return stringItem(it.String()), nil
	}
	it, ok, err := argItem(args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return stringItem(""), nil
	}
	return stringItem(it.String()), nil
}

func callConcat(call *callCtx, args []cursor) (cursor, error) {
	if len(args) < 2 {
		return nil, xdm.Errorf(xdm.CodeUnknownFunction, "concat takes at least two arguments")
	}
	var str strings.Builder
	for _, arg := range args {
		val, ok, err := argValue(arg)
		if err != nil {
			return nil, err
		}
		if ok {
			str.WriteString(val.String())
		}
	}
	return stringItem(str.String()), nil
}

func callStringJoin(call *callCtx, args []cursor) (cursor, error) {
	parts, err := drainStrings(args[0], call.dynamic())
	if err != nil {
		return nil, err
	}
	sep, err := argString(args[1])
	if err != nil {
		return nil, err
	}
	return stringItem(strings.Join(parts, sep)), nil
}

func drainStrings(c cursor, ctx *DynamicContext) ([]string, error) {
	seq, err := drain(c, ctx)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(seq))
	for i := range seq {
		parts[i] = seq[i].String()
	}
	return parts, nil
}

// callSubstring selects characters by position: those at or past the
// rounded start and, with a length, before start plus length. NaN in
// either bound selects nothing.
func callSubstring(call *callCtx, args []cursor) (cursor, error) {
	source, err := argString(args[0])
	if err != nil {
		return nil, err
	}
	start, _, err := argDouble(args[1])
	if err != nil {
		return nil, err
	}
	length := math.Inf(1)
	if len(args) == 3 {
		length, _, err = argDouble(args[2])
		if err != nil {
			return nil, err
		}
		length = math.Floor(length + 0.5)
	}
	start = math.Floor(start + 0.5)
	var str strings.Builder
	pos := 0
	for _, r := range source {
		pos++
		if float64(pos) >= start && float64(pos) < start+length {
			str.WriteRune(r)
		}
	}
	return stringItem(str.String()), nil
}

func callStringLength(call *callCtx, args []cursor) (cursor, error) {
	str, err := stringArg(call, args)
	if err != nil {
		return nil, err
	}
	return only(xdm.NewAtomicItem(xdm.Integer(utf8.RuneCountInString(str)))), nil
}

func callNormalizeSpace(call *callCtx, args []cursor) (cursor, error) {
	str, err := stringArg(call, args)
	if err != nil {
		return nil, err
	}
	return stringItem(strings.Join(strings.Fields(str), " ")), nil
}

func callNormalizeUnicode(call *callCtx, args []cursor) (cursor, error) {
	str, err := argString(args[0])
	if err != nil {
		return nil, err
	}
	form := "NFC"
	if len(args) == 2 {
		form, err = argString(args[1])
		if err != nil {
			return nil, err
		}
		form = strings.ToUpper(strings.TrimSpace(form))
	}
	if form == "" {
		return stringItem(str), nil
	}
	out, err := normalizeForm(str, form)
	if err != nil {
		return nil, err
	}
	return stringItem(out), nil
}

func callUpperCase(call *callCtx, args []cursor) (cursor, error) {
	str, err := argString(args[0])
	if err != nil {
		return nil, err
	}
	return stringItem(strings.ToUpper(str)), nil
}

func callLowerCase(call *callCtx, args []cursor) (cursor, error) {
	str, err := argString(args[0])
	if err != nil {
		return nil, err
	}
	return stringItem(strings.ToLower(str)), nil
}

// callTranslate maps characters listed in the map string onto the
// character at the same position of the translation string, dropping
// those without a counterpart.
func callTranslate(call *callCtx, args []cursor) (cursor, error) {
	source, err := argString(args[0])
	if err != nil {
		return nil, err
	}
	from, err := argString(args[1])
	if err != nil {
		return nil, err
	}
	to, err := argString(args[2])
	if err != nil {
		return nil, err
	}
	var (
		repl  = []rune(to)
		table = make(map[rune]rune)
		drop  = make(map[rune]struct{})
	)
	for i, r := range []rune(from) {
		if _, seen := table[r]; seen {
			continue
		}
		if _, seen := drop[r]; seen {
			continue
		}
		if i < len(repl) {
			table[r] = repl[i]
		} else {
			drop[r] = struct{}{}
		}
	}
	var str strings.Builder
	for _, r := range source {
		if _, gone := drop[r]; gone {
			continue
		}
		if out, ok := table[r]; ok {
			str.WriteRune(out)
		} else {
			str.WriteRune(r)
		}
	}
	return stringItem(str.String()), nil
}

func callEncodeForURI(call *callCtx, args []cursor) (cursor, error) {
	str, err := argString(args[0])
	if err != nil {
		return nil, err
	}
	return stringItem(escapeBytes(str, func(b byte) bool {
		switch {
		case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
			return true
		case b == '-', b == '_', b == '.', b == '~':
			return true
		}
		return false
	})), nil
}

func callIriToURI(call *callCtx, args []cursor) (cursor, error) {
	str, err := argString(args[0])
	if err != nil {
		return nil, err
	}
	return stringItem(escapeBytes(str, func(b byte) bool {
		if b <= 0x20 || b >= 0x7f {
			return false
		}
		switch b {
		case '<', '>', '"', '{', '}', '|', '\\', '^', '`':
			return false
		}
		return true
	})), nil
}

func callEscapeHTMLURI(call *callCtx, args []cursor) (cursor, error) {
	str, err := argString(args[0])
	if err != nil {
		return nil, err
	}
	return stringItem(escapeBytes(str, func(b byte) bool {
		return b >= 0x20 && b <= 0x7e
	})), nil
}

// escapeBytes percent encodes every byte keep rejects, upper case hex.
func escapeBytes(str string, keep func(byte) bool) string {
	var out strings.Builder
	for i := 0; i < len(str); i++ {
		if keep(str[i]) {
			out.WriteByte(str[i])
		} else {
			fmt.Fprintf(&out, "%%%02X", str[i])
		}
	}
	return out.String()
}

// matchArgs reads the two operand strings and the collation of the
// substring matching functions.
func matchArgs(call *callCtx, args []cursor) (string, string, *Collation, error) {
	str, err := argString(args[0])
	if err != nil {
		return "", "", nil, err
	}
	sub, err := argString(args[1])
	if err != nil {
		return "", "", nil, err
	}
	coll, err := call.collationArg(args, 2)
	if err != nil {
		return "", "", nil, err
	}
	return str, sub, coll, nil
}

func callContains(call *callCtx, args []cursor) (cursor, error) {
	str, sub, coll, err := matchArgs(call, args)
	if err != nil {
		return nil, err
	}
	key, ok := coll.substrKey()
	if !ok {
		return nil, unitsError("contains", coll)
	}
	return only(boolItem(strings.Contains(key(str), key(sub)))), nil
}

func callStartsWith(call *callCtx, args []cursor) (cursor, error) {
	str, sub, coll, err := matchArgs(call, args)
	if err != nil {
		return nil, err
	}
	key, ok := coll.substrKey()
	if !ok {
		return nil, unitsError("starts-with", coll)
	}
	return only(boolItem(strings.HasPrefix(key(str), key(sub)))), nil
}

func callEndsWith(call *callCtx, args []cursor) (cursor, error) {
	str, sub, coll, err := matchArgs(call, args)
	if err != nil {
		return nil, err
	}
	key, ok := coll.substrKey()
	if !ok {
		return nil, unitsError("ends-with", coll)
	}
	return only(boolItem(strings.HasSuffix(key(str), key(sub)))), nil
}

// The cut functions return character ranges of the original string, so
// they only work under the codepoint collation.
func callSubstringBefore(call *callCtx, args []cursor) (cursor, error) {
	str, sub, coll, err := matchArgs(call, args)
	if err != nil {
		return nil, err
	}
	if !coll.codepoint() {
		return nil, unitsError("substring-before", coll)
	}
	if sub == "" {
		return stringItem(""), nil
	}
	before, _, found := strings.Cut(str, sub)
	if !found {
		return stringItem(""), nil
	}
	return stringItem(before), nil
}

func callSubstringAfter(call *callCtx, args []cursor) (cursor, error) {
	str, sub, coll, err := matchArgs(call, args)
	if err != nil {
		return nil, err
	}
	if !coll.codepoint() {
		return nil, unitsError("substring-after", coll)
	}
	_, after, found := strings.Cut(str, sub)
	if !found {
		return stringItem(""), nil
	}
	return stringItem(after), nil
}

func unitsError(name string, coll *Collation) error {
	return xdm.Errorf(xdm.CodeCollationUnits, "%s can not break %s into collation units", name, coll.Uri)
}

func callCompare(call *callCtx, args []cursor) (cursor, error) {
	a, aok, err := argValue(args[0])
	if err != nil {
		return nil, err
	}
	b, bok, err := argValue(args[1])
	if err != nil {
		return nil, err
	}
	if !aok || !bok {
		return emptyCursor{}, nil
	}
	coll, err := call.collationArg(args, 2)
	if err != nil {
		return nil, err
	}
	res := coll.compare(a.String(), b.String())
	return only(xdm.NewAtomicItem(xdm.Integer(res))), nil
}

func callCodepointEqual(call *callCtx, args []cursor) (cursor, error) {
	a, aok, err := argValue(args[0])
	if err != nil {
		return nil, err
	}
	b, bok, err := argValue(args[1])
	if err != nil {
		return nil, err
	}
	if !aok || !bok {
		return emptyCursor{}, nil
	}
	return only(boolItem(a.String() == b.String())), nil
}

func callStringToCodepoints(call *callCtx, args []cursor) (cursor, error) {
	str, err := argString(args[0])
	if err != nil {
		return nil, err
	}
	out := xdm.NewSequence()
	for _, r := range str {
		out.Append(xdm.NewAtomicItem(xdm.Integer(r)))
	}
	return fromSeq(out), nil
}

func callCodepointsToString(call *callCtx, args []cursor) (cursor, error) {
	points, err := drain(args[0], call.dynamic())
	if err != nil {
		return nil, err
	}
	var str strings.Builder
	for _, it := range points {
		n, ok := it.Value().(xdm.Integer)
		if !ok {
			return nil, xdm.Errorf(xdm.CodeType, "codepoints-to-string expects integers, got %s", it.Value().Type())
		}
		r := rune(n)
		if !validChar(r) {
			return nil, xdm.Errorf(xdm.CodeInvalidValue, "%d is not a valid character codepoint", n)
		}
		str.WriteRune(r)
	}
	return stringItem(str.String()), nil
}

// validChar reports whether r is a character the document model allows.
func validChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xa || r == 0xd:
		return true
	case r >= 0x20 && r <= 0xd7ff:
		return true
	case r >= 0xe000 && r <= 0xfffd:
		return true
	case r >= 0x10000 && r <= 0x10ffff:
		return true
	}
	return false
}

func regexArgs(args []cursor, at int) (string, error) {
	if at >= len(args) {
		return "", nil
	}
	return argString(args[at])
}

func callMatches(call *callCtx, args []cursor) (cursor, error) {
	input, err := argString(args[0])
	if err != nil {
		return nil, err
	}
	pattern, err := argString(args[1])
	if err != nil {
		return nil, err
	}
	flags, err := regexArgs(args, 2)
	if err != nil {
		return nil, err
	}
	ok, err := call.dynamic().regex.Matches(input, pattern, flags)
	if err != nil {
		return nil, err
	}
	return only(boolItem(ok)), nil
}

func callReplace(call *callCtx, args []cursor) (cursor, error) {
	input, err := argString(args[0])
	if err != nil {
		return nil, err
	}
	pattern, err := argString(args[1])
	if err != nil {
		return nil, err
	}
	repl, err := argString(args[2])
	if err != nil {
		return nil, err
	}
	flags, err := regexArgs(args, 3)
	if err != nil {
		return nil, err
	}
	out, err := call.dynamic().regex.Replace(input, pattern, flags, repl)
	if err != nil {
		return nil, err
	}
	return stringItem(out), nil
}

func callTokenize(call *callCtx, args []cursor) (cursor, error) {
	input, err := argString(args[0])
	if err != nil {
		return nil, err
	}
	pattern, err := argString(args[1])
	if err != nil {
		return nil, err
	}
	flags, err := regexArgs(args, 2)
	if err != nil {
		return nil, err
	}
	if input == "" {
		return emptyCursor{}, nil
	}
	tokens, err := call.dynamic().regex.Tokenize(input, pattern, flags)
	if err != nil {
		return nil, err
	}
	out := xdm.NewSequence()
	for _, t := range tokens {
		out.Append(xdm.NewAtomicItem(xdm.String(t)))
	}
	return fromSeq(out), nil
}

// normalizeForm applies one Unicode normalization form by name.
func normalizeForm(str, form string) (string, error) {
	switch form {
	case "NFC":
		return norm.NFC.String(str), nil
	case "NFD":
		return norm.NFD.String(str), nil
	case "NFKC":
		return norm.NFKC.String(str), nil
	case "NFKD":
		return norm.NFKD.String(str), nil
	default:
		return "", xdm.Errorf(xdm.CodeUnsupportedNorm, "normalization form %s is not supported", form)
	}
}
