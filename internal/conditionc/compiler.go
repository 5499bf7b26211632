// Package conditionc is the JSON condition compiler collaborator the
// Transformer calls for every sequence flow condition expression (spec
// §4.4 step 4). It wraps github.com/expr-lang/expr, the expression
// language several example repos in the corpus depend on for exactly this
// purpose (GoCodeAlone-workflow, Soochol-Upal, smilemakc-mbflow,
// stherrien-gorax, yesoreyeram-thaiyyal).
package conditionc

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// CompiledCondition is the result of compiling a condition expression.
// Compilation never fails with a Go error: an unparseable expression is
// represented as an invalid CompiledCondition carrying the compiler's
// reason, surfaced later as a validation diagnostic rather than a panic
// or returned error.
type CompiledCondition struct {
	Text    string
	Valid   bool
	Reason  string
	program *vm.Program
}

// Evaluate runs the compiled expression against a variable scope, returning
// whether the condition took the flow. Only meaningful when Valid is true.
func (c *CompiledCondition) Evaluate(vars map[string]interface{}) (bool, error) {
	if c == nil || !c.Valid {
		return false, nil
	}
	out, err := expr.Run(c.program, vars)
	if err != nil {
		return false, err
	}
	truth, _ := out.(bool)
	return truth, nil
}

// Compile compiles a condition expression. The expression language is a
// boolean expression over JSON-decoded process variables, e.g.
// `amount > 100 && currency == "USD"`.
func Compile(text string) *CompiledCondition {
	program, err := expr.Compile(text, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return &CompiledCondition{Text: text, Valid: false, Reason: err.Error()}
	}
	return &CompiledCondition{Text: text, Valid: true, program: program}
}
