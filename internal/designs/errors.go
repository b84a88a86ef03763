package designs

import "errors"

// Domain errors for the designs module.
var (
	ErrDesignNotFound          = errors.New("design not found")
	ErrCategoryNameExists      = errors.New("category with this name already exists")
	ErrFabricNameExists        = errors.New("fabric with this name already exists in the category")
	ErrInvalidReference        = errors.New("category or fabric does not exist")
	ErrFabricCategoryMismatch  = errors.New("fabric does not belong to the category")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
