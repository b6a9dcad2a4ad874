package surql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Error is a syntax error at a position in the parsed text.
type Error struct {
	Line   int
	Column int
	Msg    string
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

func errorAt(pos lexer.Position, format string, args ...any) *Error {
	return &Error{Line: pos.Line, Column: pos.Column, Msg: fmt.Sprintf(format, args...)}
}

// Parse parses text into its statements, in source order. Empty
// statements and comments are skipped, so text may yield no statements.
func Parse(text string) ([]Statement, error) {
	script, err := surqlParser.ParseString("", text)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			pos := perr.Position()
			return nil, &Error{Line: pos.Line, Column: pos.Column, Msg: perr.Message()}
		}
		return nil, &Error{Msg: err.Error()}
	}

	stmts := make([]Statement, 0, len(script.Statements))
	for _, g := range script.Statements {
		st, err := g.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	return stmts, nil
}

// MustParse is Parse for fixed text known to be valid.
func MustParse(text string) []Statement {
	stmts, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return stmts
}

func (g *statementGrammar) statement() (Statement, error) {
	switch {
	case g.Define != nil:
		return g.Define.statement(g.Pos)
	case g.Remove != nil:
		if g.Remove.Field != nil {
			return &RemoveField{Name: g.Remove.Field.Name, Table: g.Remove.Field.Table}, nil
		}
		return &RemoveTable{Name: g.Remove.Table}, nil
	case g.Info != nil:
		return g.Info.statement(), nil
	}
	return nil, errorAt(g.Pos, "empty statement")
}

func (g *defineGrammar) statement(pos lexer.Position) (Statement, error) {
	switch {
	case g.Namespace != "":
		return &DefineNamespace{Name: g.Namespace}, nil
	case g.Database != "":
		return &DefineDatabase{Name: g.Database}, nil
	case g.Table != nil:
		tb := &DefineTable{Name: g.Table.Name}
		for _, c := range g.Table.Clauses {
			switch strings.ToUpper(c) {
			case "DROP":
				tb.Drop = true
			case "SCHEMAFULL":
				tb.Schemafull = true
			case "SCHEMALESS":
				tb.Schemafull = false
			}
		}
		return tb, nil
	case g.Field != nil:
		return g.Field.statement()
	}
	return nil, errorAt(pos, "incomplete DEFINE statement")
}

func (g *defineFieldGrammar) statement() (Statement, error) {
	fd := &DefineField{Name: g.Name, Table: g.Table}
	for _, c := range g.Clauses {
		var err error
		switch {
		case c.Type != nil:
			var k Kind
			k, err = c.Type.kind()
			fd.Kind = &k
		case c.Value != nil:
			fd.Value, err = c.Value.expr()
		case c.Default != nil:
			fd.Default, err = c.Default.expr()
		case c.Assert != nil:
			fd.Assert, err = c.Assert.expr()
		}
		if err != nil {
			return nil, err
		}
	}
	return fd, nil
}

func (g *infoGrammar) statement() Statement {
	switch strings.ToUpper(g.Level) {
	case "KV", "ROOT":
		return &Info{Level: InfoKV}
	case "NS", "NAMESPACE":
		return &Info{Level: InfoNS}
	case "DB", "DATABASE":
		return &Info{Level: InfoDB}
	}
	return &Info{Level: InfoTable, Table: g.Table}
}

func (g *kindGrammar) kind() (Kind, error) {
	name, ok := LookupKind(g.Name)
	if !ok {
		return Kind{}, errorAt(g.Pos, "unknown kind %q", g.Name)
	}
	k := Kind{Name: name}
	if len(g.Params) == 0 {
		return k, nil
	}
	switch name {
	case KindArray:
		for _, p := range g.Params {
			sub, err := p.kind()
			if err != nil {
				return Kind{}, err
			}
			k.Args = append(k.Args, sub)
		}
	case KindRecord, KindGeometry:
		for _, p := range g.Params {
			if len(p.Params) > 0 {
				return Kind{}, errorAt(p.Pos, "%s parameters must be plain names", name)
			}
			k.Ident = append(k.Ident, p.Name)
		}
	default:
		return Kind{}, errorAt(g.Pos, "kind %s takes no parameters", name)
	}
	return k, nil
}

func (g *orExpr) expr() (Expr, error) {
	left, err := g.Left.expr()
	if err != nil {
		return nil, err
	}
	for _, r := range g.Right {
		right, err := r.expr()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: Or, Left: left, Right: right}
	}
	return left, nil
}

func (g *andExpr) expr() (Expr, error) {
	left, err := g.Left.expr()
	if err != nil {
		return nil, err
	}
	for _, r := range g.Right {
		right, err := r.expr()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: And, Left: left, Right: right}
	}
	return left, nil
}

func (g *cmpExpr) expr() (Expr, error) {
	left, err := g.Left.expr()
	if err != nil {
		return nil, err
	}
	if g.Right == nil {
		return left, nil
	}
	right, err := g.Right.expr()
	if err != nil {
		return nil, err
	}
	return &Comparison{Op: operator(g.Op), Left: left, Right: right}, nil
}

func operator(tokens []string) Operator {
	switch strings.ToUpper(strings.Join(tokens, " ")) {
	case "==":
		return OpExactEqual
	case "!=", "IS NOT":
		return OpNotEqual
	case "<":
		return OpLess
	case "<=":
		return OpLessEqual
	case ">":
		return OpGreater
	case ">=":
		return OpGreaterEqual
	default:
		return OpEqual
	}
}

func (g *operand) expr() (Expr, error) {
	switch {
	case g.None:
		return &Literal{Kind: LitNone}, nil
	case g.Null:
		return &Literal{Kind: LitNull}, nil
	case g.True:
		return &Literal{Kind: LitBool, Raw: "true"}, nil
	case g.False:
		return &Literal{Kind: LitBool, Raw: "false"}, nil
	case g.Number != nil:
		return &Literal{Kind: LitNumber, Raw: *g.Number}, nil
	case g.String != nil:
		return &Literal{Kind: LitString, Raw: unquote(*g.String)}, nil
	case g.Param != nil:
		return &Param{Name: strings.TrimPrefix(*g.Param, "$")}, nil
	case g.Sub != nil:
		return g.Sub.expr()
	case g.Path != nil:
		return g.Path.expr()
	}
	return nil, &Error{Msg: "empty operand"}
}

func (g *pathExpr) expr() (Expr, error) {
	if g.Call != nil {
		args := make([]Expr, 0, len(g.Call.Args))
		for _, a := range g.Call.Args {
			e, err := a.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, e)
		}
		return &Call{Name: strings.Join(g.Parts, "::"), Args: args}, nil
	}
	if len(g.Parts) > 1 {
		return nil, errorAt(g.Pos, "function %s is missing its argument list", strings.Join(g.Parts, "::"))
	}
	return &FieldRef{Path: append([]string{g.Parts[0]}, g.Fields...)}, nil
}
