package items

import "errors"

// Domain errors for the items module.
var (
	ErrItemNotFound = errors.New("item not found")
)
