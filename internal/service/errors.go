package service

import (
	"errors"
	"fmt"
)

var (
	// ErrExternalService is matched by failures to get a reply from the completion service.
	ErrExternalService = errors.New("external service error")
	// ErrInvalidReply is matched by replies that are not a valid decision.
	ErrInvalidReply = errors.New("invalid model reply")
)

// RemoteCallError wraps a network, timeout or non-success failure of the completion service.
type RemoteCallError struct {
	Err error
}

func (e *RemoteCallError) Error() string {
	return e.Err.Error()
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExternalService.
func (e *RemoteCallError) Is(target error) bool {
	return target == ErrExternalService
}

// ParseError reports that the model reply could not be decoded into a decision.
type ParseError struct {
	Reply string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model did not return a valid decision: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidReply.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidReply
}
