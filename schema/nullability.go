package schema

import "github.com/ridoystarlord/blackbird/surql"

// IsNullable reports whether a field may hold no value. Only an assertion of
// the form `$value != NONE` makes a field non-nullable; any other assertion,
// including one that combines that check with others, leaves it nullable.
func IsNullable(def *surql.DefineField) bool {
	if def == nil || def.Assert == nil {
		return true
	}
	return surql.Visit[bool](def.Assert, nullability{})
}

// nullability answers "may the value be NONE?" for an assertion.
type nullability struct{}

func (nullability) VisitLiteral(*surql.Literal) bool { return true }
func (nullability) VisitParam(*surql.Param) bool     { return true }
func (nullability) VisitField(*surql.FieldRef) bool  { return true }
func (nullability) VisitLogical(*surql.Logical) bool { return true }
func (nullability) VisitCall(*surql.Call) bool       { return true }

func (nullability) VisitComparison(c *surql.Comparison) bool {
	if c.Op != surql.OpNotEqual {
		return true
	}
	// exactly one side must be NONE; NONE != NONE says nothing about the value
	return surql.IsNone(c.Left) == surql.IsNone(c.Right)
}
