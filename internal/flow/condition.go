package flow

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprCondition compiles an expr-lang expression into a step condition. The
// expression is evaluated against the context values; it must yield a
// boolean. Evaluation errors count as false, same as a panicking condition.
//
//	flow.ExprCondition(`navigate != nil && status == 200`)
func ExprCondition(src string) (Condition, error) {
	program, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compiling condition %q: %w", src, err)
	}
	return conditionFromProgram(program), nil
}

// MustExprCondition is ExprCondition for statically known expressions.
func MustExprCondition(src string) Condition {
	cond, err := ExprCondition(src)
	if err != nil {
		panic(err)
	}
	return cond
}

func conditionFromProgram(program *vm.Program) Condition {
	return func(wctx *Context) bool {
		out, err := expr.Run(program, wctx.Values())
		if err != nil {
			return false
		}
		b, ok := out.(bool)
		if !ok {
			return false
		}
		return b
	}
}
