package system

import (
	"errors"
	"fmt"
)

var (
	ErrCircularDependency = errors.New("circular dependency")
	ErrDuplicateSystemTag = errors.New("duplicate system tag")
	ErrUnknownDependency  = errors.New("unknown dependency")
	ErrRegisterMidFrame   = errors.New("system registration during a frame")
	ErrSystemPanic        = errors.New("system panicked")
)

// CircularDependencyError names the tag at which the cycle was detected.
type CircularDependencyError struct {
	Tag string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", e.Tag)
}

func (e *CircularDependencyError) Is(target error) bool { return target == ErrCircularDependency }

type DuplicateSystemTagError struct {
	Tag string
}

func (e *DuplicateSystemTagError) Error() string {
	return fmt.Sprintf("system %q already registered", e.Tag)
}

func (e *DuplicateSystemTagError) Is(target error) bool { return target == ErrDuplicateSystemTag }

// UnknownDependencyError reports a dependency on a tag nobody registered.
type UnknownDependencyError struct {
	Tag        string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("system %q depends on unregistered system %q", e.Tag, e.Dependency)
}

func (e *UnknownDependencyError) Is(target error) bool { return target == ErrUnknownDependency }
