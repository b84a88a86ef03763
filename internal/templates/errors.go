package templates

import "errors"

// Domain errors for the templates module.
var (
	ErrTemplateNotFound   = errors.New("template not found")
	ErrTemplateNameExists = errors.New("template with this name already exists")
)
