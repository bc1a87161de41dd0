package reviewserver

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrEmptyQuestion = errors.New("question must not be blank")
)

// ValidationError describes a malformed or missing input field. It is
// always returned before any write to the dataset or the vector index.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DownstreamError wraps a failure of one of the external collaborators
// (embedder, retriever, generative model) keeping its identity so callers
// know which component failed.
type DownstreamError struct {
	Component string
	Err       error
}

func (e DownstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Component, e.Err)
}

func (e DownstreamError) Unwrap() error {
	return e.Err
}
