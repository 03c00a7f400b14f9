// Package eventfilter compiles CEL expressions that select which push
// events a watcher surfaces, e.g. `event == "score_updated"` or
// `session_id == "abc" && event != "registration_updated"`.
package eventfilter

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/realtime"
)

// maxExpressionLength caps filter expressions; anything longer is a
// mistake, not a filter.
const maxExpressionLength = 1024

// Filter is a compiled event filter. A nil *Filter matches every event.
type Filter struct {
	expr string
	prg  cel.Program
}

// New compiles an expression over the variables event, session_id and
// match_id. Invalid expressions fail here, before any connection is made.
func New(expression string) (*Filter, error) {
	if expression == "" {
		return nil, errors.New("filter expression is empty")
	}
	if len(expression) > maxExpressionLength {
		return nil, fmt.Errorf("filter expression too long: %d characters (max %d)",
			len(expression), maxExpressionLength)
	}

	env, err := cel.NewEnv(
		cel.Variable("event", cel.StringType),
		cel.Variable("session_id", cel.StringType),
		cel.Variable("match_id", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create filter environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("filter expression must return a boolean, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast, cel.EvalOptions(cel.OptOptimize))
	if err != nil {
		return nil, fmt.Errorf("compile filter expression: %w", err)
	}

	return &Filter{expr: expression, prg: prg}, nil
}

// Match reports whether the event passes the filter. Evaluation errors
// count as no match.
func (f *Filter) Match(ev realtime.Event) bool {
	if f == nil {
		return true
	}
	result, _, err := f.prg.Eval(map[string]any{
		"event":      ev.Event,
		"session_id": ev.SessionID,
		"match_id":   ev.MatchID,
	})
	if err != nil {
		return false
	}
	matched, ok := result.Value().(bool)
	return ok && matched
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}
