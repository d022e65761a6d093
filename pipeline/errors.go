package pipeline

import "errors"

var (
	// ErrTransformationRequired is returned when a pipeline is built with no
	// transformations.
	ErrTransformationRequired = errors.New("at least one transformation required")

	// ErrTransformationFailed wraps a transformation application failure.
	ErrTransformationFailed = errors.New("transformation failed")
)
