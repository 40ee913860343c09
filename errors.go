package svglayers

import "errors"

// User-facing errors. Anything else returned by this package is an internal error, such as a
// document that cannot be parsed.
var (
	ErrMissingIdentity  = errors.New("layer has no id attribute")
	ErrNoMatch          = errors.New("pattern did not match any layers")
	ErrNotFound         = errors.New("layer not found")
	ErrInvalidSelection = errors.New("invalid layer selection")
	ErrEmptyBounds      = errors.New("layer has no visible content")
	ErrRender           = errors.New("command failed")
)

// IsUserError returns true if err is caused by user input or by the state of the input document.
func IsUserError(err error) bool {
	for _, target := range []error{ErrMissingIdentity, ErrNoMatch, ErrNotFound, ErrInvalidSelection, ErrEmptyBounds, ErrRender} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
