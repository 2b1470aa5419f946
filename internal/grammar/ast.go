// Package grammar parses search expressions such as
//
//	author = "Smith" AND (year == 2020 OR entrytype = article)
//
// into a tree of expression nodes. It does not evaluate expressions.
package grammar

import (
	"strings"
)

// Operator is the comparison semantics of a single field test.
type Operator int

const (
	Exact          Operator = iota // value must match the whole field content
	Contains                       // value must match a substring of the field content
	DoesNotContain                 // value must not match any substring of the field content
)

// OperatorFromToken derives the operator from the token text as written.
// The derivation is total: every text that is not an exact or contains
// token yields DoesNotContain.
func OperatorFromToken(text string) Operator {
	if text == "=" || strings.EqualFold(text, "CONTAINS") {
		return Contains
	}
	if text == "==" || strings.EqualFold(text, "MATCHES") {
		return Exact
	}
	return DoesNotContain
}

func (op Operator) String() string {
	switch op {
	case Exact:
		return "=="
	case Contains:
		return "="
	default:
		return "!="
	}
}

// Node is the interface for all expression nodes.
// The marker method prevents external types from implementing Node.
type Node interface {
	node()
	// String returns the canonical query text of the node.
	String() string
}

// Comparison tests field content against a value.
type Comparison struct {
	Field    string
	Operator Operator
	Value    string
}

// Not negates its inner expression.
type Not struct {
	Inner Node
}

// And is the conjunction of two expressions.
type And struct {
	Left  Node
	Right Node
}

// Or is the disjunction of two expressions.
type Or struct {
	Left  Node
	Right Node
}

// Group carries parentheses from the query text. It evaluates like Inner.
type Group struct {
	Inner Node
}

func (*Comparison) node() {}
func (*Not) node()        {}
func (*And) node()        {}
func (*Or) node()         {}
func (*Group) node()      {}

func (c *Comparison) String() string {
	return quote(c.Field) + " " + c.Operator.String() + " " + quote(c.Value)
}

func (n *Not) String() string {
	return "NOT " + n.Inner.String()
}

func (a *And) String() string {
	return a.Left.String() + " AND " + a.Right.String()
}

func (o *Or) String() string {
	return o.Left.String() + " OR " + o.Right.String()
}

func (g *Group) String() string {
	return "(" + g.Inner.String() + ")"
}

// Walk visits node and its descendants in depth-first order.
// Children are skipped if fn returns false.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *Not:
		Walk(n.Inner, fn)
	case *Group:
		Walk(n.Inner, fn)
	case *And:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Or:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	}
}

// Comparisons returns all comparison leaves of the tree from left to right.
func Comparisons(node Node) []*Comparison {
	var ret []*Comparison
	Walk(node, func(n Node) bool {
		if c, ok := n.(*Comparison); ok {
			ret = append(ret, c)
		}
		return true
	})
	return ret
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	if s != "" && keywordKind(s) == TokWord && !strings.ContainsFunc(s, needsQuote) {
		return s
	}
	return `"` + quoteEscaper.Replace(s) + `"`
}

func needsQuote(r rune) bool {
	return !isBarewordRune(r, 0) || r == '!'
}
