package llm

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyChoices     = errors.New("empty choices array from API")
	ErrModelUnavailable = errors.New("generative model is not available")
)

// TransportError wraps any failure talking to the remote endpoint:
// connection problems, non-success statuses and unparsable bodies alike.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
