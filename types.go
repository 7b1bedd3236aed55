package plotopts

import (
	"time"

	"github.com/goliatone/go-plotopts/pkg/activity"
)

// EvalContext carries the inputs available to expression-valued options
// during resolution.
type EvalContext struct {
	Element  Element
	Backend  string
	Index    int
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx EvalContext) withDefaultNow() EvalContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx EvalContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx EvalContext) withDefaultMaps() EvalContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx EvalContext) withDefaults() EvalContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx EvalContext) elementLabel() string {
	if !ctx.Element.isZero() {
		return ctx.Element.Path()
	}
	return "unknown"
}

func (ctx EvalContext) elementBinding() map[string]any {
	if ctx.Element.isZero() {
		return nil
	}
	binding := map[string]any{
		"type":  ctx.Element.Type(),
		"group": ctx.Element.Group(),
		"label": ctx.Element.Label(),
		"id":    ctx.Element.ID(),
	}
	if dims := ctx.Element.Dimensions(); len(dims) > 0 {
		binding["dimensions"] = dims
	}
	return binding
}

// Evaluator executes option expressions against an evaluation context.
type Evaluator interface {
	Evaluate(ctx EvalContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx EvalContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// StoreOption configures a Store at construction.
type StoreOption func(*storeConfig)

type storeConfig struct {
	evaluator     Evaluator
	programCache  ProgramCache
	functions     *FunctionRegistry
	logger        EvaluatorLogger
	activityHooks activity.Hooks
}

func applyStoreOptions(opts []StoreOption) storeConfig {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg storeConfig) evaluatorLogger() EvaluatorLogger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return noopEvaluatorLogger{}
}

// WithEvaluator configures the expression engine used for Expr option values.
// Without it the store falls back to the expr engine.
func WithEvaluator(e Evaluator) StoreOption {
	return func(cfg *storeConfig) {
		cfg.evaluator = e
	}
}
