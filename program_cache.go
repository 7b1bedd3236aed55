package plotopts

// ProgramCache stores compiled expression programs keyed by expression
// strings, so repeated resolution of the same Expr value skips compilation.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache on the store.
func WithProgramCache(cache ProgramCache) StoreOption {
	return func(cfg *storeConfig) {
		cfg.programCache = cache
	}
}
