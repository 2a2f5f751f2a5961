package poet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvariant matches every *InvariantError.
	ErrInvariant = errors.New("poet: invariant violation")

	// ErrUnsupported matches every *UnsupportedError.
	ErrUnsupported = errors.New("poet: unsupported type description")
)

// InvariantError reports an attempt to construct a malformed type name.
// It is raised at construction, never at render time.
type InvariantError struct {
	// Op is the constructor that rejected its input (e.g. "NewWildcard").
	Op string

	// Message describes the violated invariant and the offending values.
	Message string
}

func (e *InvariantError) Error() string {
	return e.Op + ": " + e.Message
}

// Is makes errors.Is(err, ErrInvariant) hold.
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

func invariantf(op, format string, args ...any) *InvariantError {
	return &InvariantError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedError reports a host type description with no TypeName mapping.
type UnsupportedError struct {
	// Description is the host's own rendering of the offending type.
	Description string
}

func (e *UnsupportedError) Error() string {
	return "unsupported type: " + e.Description
}

// Is makes errors.Is(err, ErrUnsupported) hold.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// formatList renders a bound list for error messages: [A, B].
func formatList(ts []TypeName) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		if t == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
