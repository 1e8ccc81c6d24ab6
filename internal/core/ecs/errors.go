package ecs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrMissingRequiredEntity is matched by every *MissingRequiredEntityError.
	ErrMissingRequiredEntity = errors.New("missing required entity")
)

// NotFoundError reports a direct access to a missing entity, or to kinds the
// entity does not carry. Kinds is empty when the entity itself is not live.
type NotFoundError struct {
	Entity EntityID
	Kinds  []Kind
}

func (e *NotFoundError) Error() string {
	if len(e.Kinds) == 0 {
		return fmt.Sprintf("entity %d not found", e.Entity)
	}
	return fmt.Sprintf("entity %d has no component %s", e.Entity, joinKinds(e.Kinds))
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// MissingRequiredEntityError reports a required query that matched nothing.
type MissingRequiredEntityError struct {
	Kinds []Kind
}

func (e *MissingRequiredEntityError) Error() string {
	return fmt.Sprintf("missing at least one required entity with components: %s", joinKinds(e.Kinds))
}

func (e *MissingRequiredEntityError) Is(target error) bool {
	return target == ErrMissingRequiredEntity
}

func joinKinds(kinds []Kind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}
