package algorithms

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-subgraph/pkg/graph"
)

// Sentinel errors surfaced at component boundaries
var (
	ErrInvalidPartition   = graph.ErrInvalidPartition
	ErrEmptyCommunity     = errors.New("empty community")
	ErrDegenerateTieCount = errors.New("community has no ties")
	ErrEmptySample        = errors.New("empty sample")
	ErrInvalidOption      = errors.New("invalid option")
)

// AnalysisError provides structured error information for analysis operations.
type AnalysisError struct {
	Op        string            // Operation that failed (e.g., "ComputeTieComposition")
	Community graph.CommunityID // Community involved, if any
	Node      string            // Node involved, if any
	Context   string            // Additional context
	Cause     error             // Underlying error
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	switch {
	case e.Community != "" && e.Node != "":
		return fmt.Sprintf("%s community %s node %s: %v", e.Op, e.Community, e.Node, e.Cause)
	case e.Community != "":
		return fmt.Sprintf("%s community %s: %v", e.Op, e.Community, e.Cause)
	case e.Node != "":
		return fmt.Sprintf("%s node %s: %v", e.Op, e.Node, e.Cause)
	case e.Context != "":
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Context, e.Cause)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
}

// Unwrap returns the underlying cause for error chain support.
func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *AnalysisError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building AnalysisErrors.
type ErrorBuilder struct {
	err AnalysisError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: AnalysisError{Op: op}}
}

// Community sets the community the failure concerns.
func (b *ErrorBuilder) Community(id graph.CommunityID) *ErrorBuilder {
	b.err.Community = id
	return b
}

// Node sets the node the failure concerns.
func (b *ErrorBuilder) Node(node string) *ErrorBuilder {
	b.err.Node = node
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// invalidOption wraps a validation failure as ErrInvalidOption.
func invalidOption(op string, err error) error {
	return NewError(op).Context(err.Error()).Cause(ErrInvalidOption).Err()
}

// IsDegenerate returns true if the error reports a community without ties.
func IsDegenerate(err error) bool {
	return errors.Is(err, ErrDegenerateTieCount)
}
