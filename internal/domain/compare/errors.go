package compare

import "errors"

var (
	ErrCorrectionNotFound = errors.New("correction not found")
	ErrNothingToConfirm   = errors.New("only days with an attendance punch can be confirmed")
)
