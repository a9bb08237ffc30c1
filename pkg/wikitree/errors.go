package wikitree

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Kind is one of the three error categories the external interface
// surfaces, per the wire error taxonomy.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindPermission Kind = "permission"
)

// Error is the typed error every core operation returns for an expected
// failure. Unexpected failures (a broken database connection, a bug)
// are returned as plain wrapped errors instead.
type Error struct {
	Kind    Kind
	Message string

	// Conflicts carries the per-doc_key conflict rows recorded by a
	// failed merge, so a caller can render them without a second query.
	Conflicts []MergeConflict
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a KindValidation error.
func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Permission builds a KindPermission error.
func Permission(format string, args ...interface{}) error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

// ConflictError builds a KindValidation error carrying the recorded
// merge conflicts. Every conflict is folded into a multierror so the
// message enumerates each one instead of only the count, matching the
// "all conflicts recorded before failing" requirement.
func ConflictError(conflicts []MergeConflict) error {
	var result *multierror.Error
	for _, c := range conflicts {
		result = multierror.Append(result, fmt.Errorf("%s: %s conflict", c.DocKey, c.ConflictType))
	}
	return &Error{
		Kind:      KindValidation,
		Message:   result.Error(),
		Conflicts: conflicts,
	}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, k Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}
