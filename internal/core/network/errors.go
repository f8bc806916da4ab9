package network

import "errors"

// Rejections: the respondent asked for something the elicitation does not
// allow. The store is left untouched and the message is meant to be shown.
var (
	ErrEmptyName       = errors.New("please provide a name")
	ErrAlterLimit      = errors.New("you entered enough names, thank you; click on a node to change their name")
	ErrIndexOutOfRange = errors.New("every person has a value for this question, thank you; click on a node to change it")
)

// Contract violations: a malformed callback. These never mutate the store
// and panic in strict mode.
var (
	ErrInvalidIndex    = errors.New("node index out of range")
	ErrRespondent      = errors.New("operation not allowed on the respondent node")
	ErrSelfLink        = errors.New("link endpoints must differ")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidValue    = errors.New("invalid attribute value")
	ErrUnknownMeasure  = errors.New("unknown placement measure")
	ErrDuplicateLink   = errors.New("duplicate link")
	ErrInvariant       = errors.New("network invariant violated")
)

var rejections = []error{
	ErrEmptyName,
	ErrAlterLimit,
	ErrIndexOutOfRange,
}

// IsRejection reports whether err is a user input rejection rather than a
// contract violation.
func IsRejection(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
