package conversation

import "errors"

// Rejection kinds. The reply sent to the user is always prepared by the machine;
// these errors only classify what happened.
var (
	// ErrValidation: malformed input, the same step is asked again.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound: the food query gave no candidates, the flow is dropped.
	ErrNotFound = errors.New("nothing found")
	// ErrSelection: choice index out of range, state unchanged.
	ErrSelection = errors.New("selection out of range")
	// ErrNoProfile: the command needs a completed profile.
	ErrNoProfile = errors.New("profile not set")
)

// Reason maps an error to a short metrics label.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSelection):
		return "selection"
	case errors.Is(err, ErrNoProfile):
		return "no_profile"
	default:
		return "collaborator"
	}
}
