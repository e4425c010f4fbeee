package capture

import (
	goast "go/ast"
	gotoken "go/token"

	"github.com/funvibe/comprehend/internal/ast"
)

// Class is the capture classification of one iterable.
type Class int

const (
	// RangeLike is a `lo..hi` or `lo..=hi` integer range.
	RangeLike Class = iota
	// NamedBinding is a plain variable.
	NamedBinding
	// PreIterated is an explicit iterator or an explicit copy.
	PreIterated
	// Reference is `&x`.
	Reference
	// Computed is any other value expression: a literal, call, selector,
	// index or slice expression. It is evaluated afresh on every pass.
	Computed
	// Unsupported can never be ranged over.
	Unsupported
)

var classNames = [...]string{
	RangeLike:    "range",
	NamedBinding: "named binding",
	PreIterated:  "pre-iterated",
	Reference:    "reference",
	Computed:     "computed",
	Unsupported:  "unsupported",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// Form tells the backends how a loop ranges over the iterable.
type Form int

const (
	// FormRange loops over rt.Range/rt.RangeInclusive.
	FormRange Form = iota
	// FormSeq loops over an iter.Seq or iter.Seq2 with the pattern as the
	// range variables.
	FormSeq
	// FormCollection loops over a slice, array, string or map; a one-name
	// pattern binds the element and a pair binds index/key and element.
	FormCollection
)

func (f Form) String() string {
	switch f {
	case FormRange:
		return "range"
	case FormSeq:
		return "seq"
	case FormCollection:
		return "collection"
	}
	return "unknown"
}

// iterProducers are method or function names whose call returns an
// iterator. rtProducers are only recognized on the runtime package.
var iterProducers = map[string]bool{
	"All":      true,
	"Values":   true,
	"Keys":     true,
	"Backward": true,
	"Iter":     true,
	"Seq":      true,
}

var rtProducers = map[string]bool{
	"Range":          true,
	"RangeInclusive": true,
}

// cloneFuncs return a fresh copy of a collection.
var cloneFuncs = map[string]bool{
	"Clone":    true,
	"Snapshot": true,
}

// Classify inspects the shape of an iterable. It never looks at types;
// only the syntax decides.
func Classify(e *ast.Expr) (Class, Form) {
	if e.IsRange() {
		return RangeLike, FormRange
	}
	return classifyNode(e.Node)
}

func classifyNode(n goast.Expr) (Class, Form) {
	switch node := n.(type) {
	case *goast.ParenExpr:
		return classifyNode(node.X)
	case *goast.Ident:
		switch node.Name {
		case "_", "nil", "true", "false", "iota":
			return Unsupported, FormCollection
		}
		return NamedBinding, FormCollection
	case *goast.UnaryExpr:
		switch node.Op {
		case gotoken.AND:
			return Reference, FormCollection
		case gotoken.ARROW:
			return Computed, FormCollection
		}
		return Unsupported, FormCollection
	case *goast.BinaryExpr:
		if isBoolOp(node.Op) {
			return Unsupported, FormCollection
		}
		return Computed, FormCollection
	case *goast.BasicLit:
		if node.Kind == gotoken.STRING {
			return Computed, FormCollection
		}
		return Unsupported, FormCollection
	case *goast.CallExpr:
		if form, ok := preIterated(node); ok {
			return PreIterated, form
		}
		return Computed, FormCollection
	case *goast.CompositeLit, *goast.SelectorExpr, *goast.IndexExpr, *goast.IndexListExpr,
		*goast.SliceExpr, *goast.StarExpr, *goast.TypeAssertExpr:
		return Computed, FormCollection
	}
	return Unsupported, FormCollection
}

// preIterated recognizes calls that produce an iterator, including
// adapters chained onto one (`seq.Filter(f)` where seq is such a call),
// and calls that return an explicit copy.
func preIterated(call *goast.CallExpr) (Form, bool) {
	sel, ok := call.Fun.(*goast.SelectorExpr)
	if !ok {
		// Generic instantiation: slices.Values[[]int](xs)
		if idx, isIdx := call.Fun.(*goast.IndexExpr); isIdx {
			sel, ok = idx.X.(*goast.SelectorExpr)
		}
		if !ok {
			return 0, false
		}
	}

	name := sel.Sel.Name
	if pkg, isIdent := sel.X.(*goast.Ident); isIdent && pkg.Name == "rt" && rtProducers[name] {
		return FormSeq, true
	}
	if iterProducers[name] {
		return FormSeq, true
	}
	if cloneFuncs[name] {
		return FormCollection, true
	}
	if inner, isCall := sel.X.(*goast.CallExpr); isCall {
		if form, ok := preIterated(inner); ok && form == FormSeq {
			return FormSeq, true
		}
	}
	return 0, false
}

func isBoolOp(op gotoken.Token) bool {
	switch op {
	case gotoken.LAND, gotoken.LOR, gotoken.EQL, gotoken.NEQ,
		gotoken.LSS, gotoken.GTR, gotoken.LEQ, gotoken.GEQ:
		return true
	}
	return false
}

// referenceOperand returns the source text of x in `&x`.
func referenceOperand(e *ast.Expr) string {
	n := e.Node
	for {
		p, ok := n.(*goast.ParenExpr)
		if !ok {
			break
		}
		n = p.X
	}
	u, ok := n.(*goast.UnaryExpr)
	if !ok {
		return e.Source
	}
	// go/parser positions start at 1 for a single expression.
	start, end := int(u.X.Pos())-1, int(u.X.End())-1
	if start < 0 || end > len(e.Source) || start > end {
		return e.Source
	}
	return e.Source[start:end]
}

// bindingName returns the variable of a NamedBinding, looking through
// parentheses.
func bindingName(e *ast.Expr) string {
	n := e.Node
	for {
		p, ok := n.(*goast.ParenExpr)
		if !ok {
			break
		}
		n = p.X
	}
	if id, ok := n.(*goast.Ident); ok {
		return id.Name
	}
	return ""
}
