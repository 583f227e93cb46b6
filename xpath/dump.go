package xpath

import (
	"fmt"
	"io"
	"strings"

	"github.com/midbel/xpath/xdm"
)

// Debug renders the parsed tree in a compact prefix form, one node per
// parenthesized group. The form is stable and meant for tests and
// troubleshooting, not for round tripping.
func Debug(expr Expr) string {
	var str strings.Builder
	debugExpr(&str, expr)
	return str.String()
}

func debugExpr(w io.Writer, expr Expr) {
	switch v := expr.(type) {
	case root:
		io.WriteString(w, "root")
	case current:
		io.WriteString(w, "current")
	case literal:
		io.WriteString(w, "literal")
		io.WriteString(w, "(")
		io.WriteString(w, v.expr)
		io.WriteString(w, ")")
	case number:
		io.WriteString(w, "number")
		io.WriteString(w, "(")
		io.WriteString(w, v.expr.String())
		io.WriteString(w, ")")
	case identifier:
		io.WriteString(w, "variable")
		io.WriteString(w, "(")
		io.WriteString(w, v.name.QualifiedName())
		io.WriteString(w, ")")
	case step:
		io.WriteString(w, "step")
		io.WriteString(w, "(")
		io.WriteString(w, v.axis)
		io.WriteString(w, "::")
		debugTest(w, v.curr)
		for i := range v.preds {
			io.WriteString(w, ", ")
			debugExpr(w, v.preds[i])
		}
		io.WriteString(w, ")")
	case path:
		io.WriteString(w, "path")
		io.WriteString(w, "(")
		debugExpr(w, v.left)
		io.WriteString(w, ", ")
		debugExpr(w, v.right)
		io.WriteString(w, ")")
	case filter:
		io.WriteString(w, "filter")
		io.WriteString(w, "(")
		debugExpr(w, v.expr)
		for i := range v.preds {
			io.WriteString(w, ", ")
			debugExpr(w, v.preds[i])
		}
		io.WriteString(w, ")")
	case sequence:
		io.WriteString(w, "sequence")
		io.WriteString(w, "(")
		for i := range v.all {
			if i > 0 {
				io.WriteString(w, ", ")
			}
			debugExpr(w, v.all[i])
		}
		io.WriteString(w, ")")
	case binary:
		io.WriteString(w, "binary")
		io.WriteString(w, "(")
		debugExpr(w, v.left)
		io.WriteString(w, ", ")
		debugExpr(w, v.right)
		io.WriteString(w, ", ")
		io.WriteString(w, opName(v.op))
		io.WriteString(w, ")")
	case reverse:
		io.WriteString(w, "reverse")
		io.WriteString(w, "(")
		debugExpr(w, v.expr)
		io.WriteString(w, ")")
	case plus:
		io.WriteString(w, "plus")
		io.WriteString(w, "(")
		debugExpr(w, v.expr)
		io.WriteString(w, ")")
	case rng:
		io.WriteString(w, "range")
		io.WriteString(w, "(")
		debugExpr(w, v.left)
		io.WriteString(w, ", ")
		debugExpr(w, v.right)
		io.WriteString(w, ")")
	case conditional:
		io.WriteString(w, "if")
		io.WriteString(w, "(")
		debugExpr(w, v.test)
		io.WriteString(w, ", ")
		debugExpr(w, v.csq)
		io.WriteString(w, ", ")
		debugExpr(w, v.alt)
		io.WriteString(w, ")")
	case loop:
		io.WriteString(w, "for")
		io.WriteString(w, "(")
		debugBinds(w, v.binds)
		io.WriteString(w, ", return(")
		debugExpr(w, v.body)
		io.WriteString(w, "))")
	case let:
		io.WriteString(w, "let")
		io.WriteString(w, "(")
		debugBinds(w, v.binds)
		io.WriteString(w, ", return(")
		debugExpr(w, v.body)
		io.WriteString(w, "))")
	case quantified:
		if v.every {
			io.WriteString(w, "every")
		} else {
			io.WriteString(w, "some")
		}
		io.WriteString(w, "(")
		debugBinds(w, v.binds)
		io.WriteString(w, ", satisfies(")
		debugExpr(w, v.test)
		io.WriteString(w, "))")
	case call:
		io.WriteString(w, "call")
		io.WriteString(w, "(")
		io.WriteString(w, v.name.QualifiedName())
		for i := range v.args {
			io.WriteString(w, ", ")
			debugExpr(w, v.args[i])
		}
		io.WriteString(w, ")")
	case cast:
		io.WriteString(w, "cast")
		io.WriteString(w, "(")
		debugExpr(w, v.expr)
		io.WriteString(w, ", ")
		debugSingle(w, v.kind)
		io.WriteString(w, ")")
	case castable:
		io.WriteString(w, "castable")
		io.WriteString(w, "(")
		debugExpr(w, v.expr)
		io.WriteString(w, ", ")
		debugSingle(w, v.kind)
		io.WriteString(w, ")")
	case instanceof:
		io.WriteString(w, "instance")
		io.WriteString(w, "(")
		debugExpr(w, v.expr)
		io.WriteString(w, ", ")
		debugSeqType(w, v.kind)
		io.WriteString(w, ")")
	case treat:
		io.WriteString(w, "treat")
		io.WriteString(w, "(")
		debugExpr(w, v.expr)
		io.WriteString(w, ", ")
		debugSeqType(w, v.kind)
		io.WriteString(w, ")")
	default:
		io.WriteString(w, "unknown")
		io.WriteString(w, "(")
		fmt.Fprintf(w, "%T", v)
		io.WriteString(w, ")")
	}
}

func debugBinds(w io.Writer, binds []binding) {
	for i, b := range binds {
		if i > 0 {
			io.WriteString(w, ", ")
		}
		io.WriteString(w, "(")
		io.WriteString(w, b.ident.QualifiedName())
		io.WriteString(w, ", ")
		debugExpr(w, b.expr)
		io.WriteString(w, ")")
	}
}

func debugTest(w io.Writer, t test) {
	switch v := t.(type) {
	case nameTest:
		io.WriteString(w, v.name.QualifiedName())
	case kindTest:
		debugKind(w, v)
	default:
		fmt.Fprintf(w, "%T", v)
	}
}

func debugKind(w io.Writer, v kindTest) {
	switch v.kind {
	case xdm.KindDocument:
		io.WriteString(w, "document-node(")
		if !v.name.Zero() {
			io.WriteString(w, "element(")
			io.WriteString(w, v.name.QualifiedName())
			io.WriteString(w, ")")
		}
		io.WriteString(w, ")")
	case xdm.KindElement:
		io.WriteString(w, "element(")
		if !v.name.Zero() {
			io.WriteString(w, v.name.QualifiedName())
		}
		io.WriteString(w, ")")
	case xdm.KindAttribute:
		io.WriteString(w, "attribute(")
		if !v.name.Zero() {
			io.WriteString(w, v.name.QualifiedName())
		}
		io.WriteString(w, ")")
	case xdm.KindText:
		io.WriteString(w, "text()")
	case xdm.KindComment:
		io.WriteString(w, "comment()")
	case xdm.KindInstruction:
		io.WriteString(w, "processing-instruction(")
		io.WriteString(w, v.target)
		io.WriteString(w, ")")
	default:
		io.WriteString(w, "node()")
	}
}

func debugSingle(w io.Writer, v single) {
	io.WriteString(w, v.name.QualifiedName())
	if v.optional {
		io.WriteString(w, "?")
	}
}

func debugSeqType(w io.Writer, v seqType) {
	switch {
	case v.occurs == occEmpty:
		io.WriteString(w, "empty-sequence()")
		return
	case v.item:
		io.WriteString(w, "item()")
	case !v.atom.Zero():
		io.WriteString(w, v.atom.QualifiedName())
	case v.kind != nil:
		debugKind(w, *v.kind)
	}
	switch v.occurs {
	case occOpt:
		io.WriteString(w, "?")
	case occStar:
		io.WriteString(w, "*")
	case occPlus:
		io.WriteString(w, "+")
	}
}
