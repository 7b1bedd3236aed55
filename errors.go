package plotopts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnrecognizedOption indicates a keyword unknown to every registered
	// backend vocabulary.
	ErrUnrecognizedOption = errors.New("plotopts: option not recognized by any backend")
	// ErrUnknownBackend indicates a backend name with no registered vocabulary.
	ErrUnknownBackend = errors.New("plotopts: backend not registered")
	// ErrDuplicateBackend indicates a backend name registered twice.
	ErrDuplicateBackend = errors.New("plotopts: backend already registered")
	// ErrBackendNameRequired indicates a backend registration with an empty name.
	ErrBackendNameRequired = errors.New("plotopts: backend name must be provided")
	// ErrNoBackends indicates an operation that needs at least one registered
	// backend vocabulary.
	ErrNoBackends = errors.New("plotopts: no backends registered")
	// ErrNoActiveBackend indicates resolution was requested before any backend
	// became active.
	ErrNoActiveBackend = errors.New("plotopts: no active backend")
	// ErrElementTypeRequired indicates an element or scope missing its type.
	ErrElementTypeRequired = errors.New("plotopts: element type must be provided")
	// ErrLabelRequiresGroup indicates a scope with a label but no group.
	ErrLabelRequiresGroup = errors.New("plotopts: scope label requires a group")
	// ErrObjectScopeExclusive indicates an object scope that also carries
	// type, group, or label components.
	ErrObjectScopeExclusive = errors.New("plotopts: object scope excludes type, group, and label")
	// ErrScopeInvalid indicates a scope path that failed to parse.
	ErrScopeInvalid = errors.New("plotopts: invalid scope")
	// ErrKindInvalid indicates an option kind other than plot or style.
	ErrKindInvalid = errors.New("plotopts: kind must be plot or style")
	// ErrCycleEmpty indicates a cycle constructed without values.
	ErrCycleEmpty = errors.New("plotopts: cycle requires at least one value")
	// ErrCycleLength indicates cycles of differing lengths within one bundle.
	ErrCycleLength = errors.New("plotopts: cycles in one bundle must share a length")
	// ErrNoEvaluator indicates expression resolution without an evaluator.
	ErrNoEvaluator = errors.New("plotopts: evaluator not configured")
	// ErrChannelPattern indicates an overlay channel pattern that failed to
	// parse.
	ErrChannelPattern = errors.New("plotopts: invalid channel pattern")
	// ErrDuplicateChannel indicates a channel pattern registered twice.
	ErrDuplicateChannel = errors.New("plotopts: channel pattern already registered")
	// ErrNoChannelMatch indicates an overlay no registered channel applies to.
	ErrNoChannelMatch = errors.New("plotopts: no channel matches overlay")
	// ErrChannelLabelMismatch indicates an overlay whose element labels
	// disagree where the matched channel requires consistency.
	ErrChannelLabelMismatch = errors.New("plotopts: overlay labels are inconsistent")
	// ErrCollapseFuncRequired indicates a channel registered without a
	// collapse operation.
	ErrCollapseFuncRequired = errors.New("plotopts: collapse func must be provided")
)

// OptionError reports a keyword rejected at registration along with the
// allowed set it was validated against. It unwraps to ErrUnrecognizedOption.
type OptionError struct {
	Option  string
	Scope   string
	Backend string
	Allowed []string
}

func (e *OptionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	target := e.Scope
	if e.Backend != "" {
		target = fmt.Sprintf("%s under backend %q", target, e.Backend)
	}
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("plotopts: unrecognized option %q for %s", e.Option, target)
	}
	return fmt.Sprintf("plotopts: unrecognized option %q for %s, allowed options: %s",
		e.Option, target, strings.Join(e.Allowed, ", "))
}

func (e *OptionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return ErrUnrecognizedOption
}

func newOptionError(option, scope, backend string, allowed []string) *OptionError {
	return &OptionError{
		Option:  option,
		Scope:   scope,
		Backend: backend,
		Allowed: allowed,
	}
}
