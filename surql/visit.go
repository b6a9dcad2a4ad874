package surql

import "fmt"

// Visitor computes a T for each expression variant.
type Visitor[T any] interface {
	VisitLiteral(*Literal) T
	VisitParam(*Param) T
	VisitField(*FieldRef) T
	VisitComparison(*Comparison) T
	VisitLogical(*Logical) T
	VisitCall(*Call) T
}

// Visit dispatches e to the matching method of v.
func Visit[T any](e Expr, v Visitor[T]) T {
	switch x := e.(type) {
	case *Literal:
		return v.VisitLiteral(x)
	case *Param:
		return v.VisitParam(x)
	case *FieldRef:
		return v.VisitField(x)
	case *Comparison:
		return v.VisitComparison(x)
	case *Logical:
		return v.VisitLogical(x)
	case *Call:
		return v.VisitCall(x)
	default:
		panic(fmt.Sprintf("surql: unknown expression type %T", e))
	}
}
