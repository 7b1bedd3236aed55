package plotopts

import (
	"errors"
	"fmt"
	"strings"
)

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine  string
	Expr    string
	Element string
	Option  string
	Err     error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	target := e.Element
	if e.Option != "" {
		target = fmt.Sprintf("%s option=%s", target, e.Option)
	}
	return fmt.Sprintf("plotopts: %s evaluator %s element=%s: %v", e.Engine, describeExpression(e.Expr), target, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "plotopts:") {
		return err
	}
	return fmt.Errorf("plotopts: %s evaluator: %w", engine, err)
}

// wrapEvaluationError augments an existing EvaluationError with missing
// metadata instead of re-wrapping it.
func wrapEvaluationError(engine, expr, element, option string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Element == "" {
			evalErr.Element = element
		}
		if evalErr.Option == "" {
			evalErr.Option = option
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:  engine,
		Expr:    expr,
		Element: element,
		Option:  option,
		Err:     err,
	}
}
