package activity

import (
	"strings"
	"time"
)

// EventInput describes the common fields for store lifecycle events.
type EventInput struct {
	ObjectID   string
	Backend    string
	Scope      string
	SnapshotID string
	Keys       []string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildRegisteredEvent constructs a normalized event for an option
// registration.
func BuildRegisteredEvent(input EventInput) Event {
	return buildEvent("options.registered", "options.scope", input)
}

// BuildResolvedEvent constructs a normalized event for an element resolution.
func BuildResolvedEvent(input EventInput) Event {
	return buildEvent("options.resolved", "element", input)
}

// BuildBackendRegisteredEvent constructs a normalized event for a backend
// vocabulary registration.
func BuildBackendRegisteredEvent(input EventInput) Event {
	return buildEvent("backend.registered", "backend", input)
}

// BuildBackendActivatedEvent constructs a normalized event for a backend
// activation.
func BuildBackendActivatedEvent(input EventInput) Event {
	return buildEvent("backend.activated", "backend", input)
}

func buildEvent(verb, objectType string, input EventInput) Event {
	metadata := cloneMap(input.Metadata)
	if len(input.Keys) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["keys"] = append([]string{}, input.Keys...)
	}

	objectID := strings.TrimSpace(input.ObjectID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Scope)
	}
	if objectID == "" {
		objectID = strings.TrimSpace(input.SnapshotID)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ObjectType: objectType,
		ObjectID:   objectID,
		Backend:    strings.TrimSpace(input.Backend),
		Scope:      strings.TrimSpace(input.Scope),
		SnapshotID: strings.TrimSpace(input.SnapshotID),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
