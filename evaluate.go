package plotopts

import (
	"fmt"
	"time"
)

// Evaluate executes expr using the store's evaluator with an empty context.
// Useful for probing an expression before registering it as an option value.
func (s *Store) Evaluate(expr string) (any, error) {
	return s.EvaluateWith(EvalContext{}, expr)
}

// EvaluateWith executes expr against an explicit evaluation context.
func (s *Store) EvaluateWith(ctx EvalContext, expr string) (any, error) {
	return s.evaluateExpr(ctx, "", expr)
}

// evaluateExpr is the single funnel for expression execution: it times the
// call, routes the outcome through the evaluator logger, and normalizes
// failures into EvaluationError values.
func (s *Store) evaluateExpr(ctx EvalContext, option, expression string) (any, error) {
	evaluator := s.cfg.evaluator
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	engine := evaluatorEngineName(evaluator)
	if expression == "" {
		return nil, wrapEvaluationError(engine, expression, ctx.elementLabel(), option, fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expression)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(engine, expression, ctx.elementLabel(), option, evalErr)
	s.cfg.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expression,
		Element:  ctx.elementLabel(),
		Option:   option,
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*plotopts.exprEvaluator":
		return "expr"
	case "*plotopts.celEvaluator":
		return "cel"
	case "*plotopts.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
