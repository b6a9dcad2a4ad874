package surql

import (
	"strconv"
	"strings"
)

// Expr is a value expression used by VALUE, DEFAULT and ASSERT clauses.
// The concrete types are *Literal, *Param, *FieldRef, *Comparison,
// *Logical and *Call.
type Expr interface {
	String() string
	expr()
}

// LiteralKind tags the value held by a Literal.
type LiteralKind int

const (
	LitNone LiteralKind = iota
	LitNull
	LitBool
	LitNumber
	LitString
)

// Literal is a constant. Raw holds the number text, "true"/"false", or the
// unquoted string contents.
type Literal struct {
	Kind LiteralKind
	Raw  string
}

func (*Literal) expr() {}

func (l *Literal) String() string {
	switch l.Kind {
	case LitNone:
		return "NONE"
	case LitNull:
		return "NULL"
	case LitString:
		return quote(l.Raw)
	default:
		return l.Raw
	}
}

// IsNone reports whether e is the NONE literal.
func IsNone(e Expr) bool {
	l, ok := e.(*Literal)
	return ok && l.Kind == LitNone
}

// Param is a bound parameter such as $value.
type Param struct {
	Name string
}

func (*Param) expr() {}

func (p *Param) String() string { return "$" + p.Name }

// FieldRef refers to a field of the current record, possibly nested.
type FieldRef struct {
	Path []string
}

func (*FieldRef) expr() {}

func (f *FieldRef) String() string { return strings.Join(f.Path, ".") }

// Operator is a binary comparison operator.
type Operator int

const (
	OpEqual Operator = iota
	OpExactEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

var operatorText = [...]string{
	OpEqual:        "=",
	OpExactEqual:   "==",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
}

func (o Operator) String() string {
	if int(o) < len(operatorText) {
		return operatorText[o]
	}
	return "Operator(" + strconv.Itoa(int(o)) + ")"
}

// Comparison is a binary comparison between two operands.
type Comparison struct {
	Op    Operator
	Left  Expr
	Right Expr
}

func (*Comparison) expr() {}

func (c *Comparison) String() string {
	return render(c.Left, precCompare, false) + " " + c.Op.String() + " " + render(c.Right, precCompare, true)
}

// LogicalOp joins two conditions.
type LogicalOp int

const (
	And LogicalOp = iota
	Or
)

func (o LogicalOp) String() string {
	if o == Or {
		return "OR"
	}
	return "AND"
}

// Logical is a conjunction or disjunction.
type Logical struct {
	Op    LogicalOp
	Left  Expr
	Right Expr
}

func (*Logical) expr() {}

func (l *Logical) String() string {
	p := precedence(l)
	return render(l.Left, p, false) + " " + l.Op.String() + " " + render(l.Right, p, true)
}

// Call is a function invocation like string::is::email($value).
type Call struct {
	Name string
	Args []Expr
}

func (*Call) expr() {}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

const (
	precOr = iota + 1
	precAnd
	precCompare
	precOperand
)

func precedence(e Expr) int {
	switch v := e.(type) {
	case *Logical:
		if v.Op == Or {
			return precOr
		}
		return precAnd
	case *Comparison:
		return precCompare
	default:
		return precOperand
	}
}

// render wraps e in parentheses when the parser would otherwise bind it
// differently under a parent of precedence parent. Operators are left
// associative and comparisons do not chain.
func render(e Expr, parent int, right bool) string {
	p := precedence(e)
	if p < parent || (p == parent && (right || parent == precCompare)) {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	body := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
