package diagnosis

import "errors"

var (
	ErrSymptomsRequired = errors.New("no symptoms provided")
	ErrModelDisabled    = errors.New("diagnosis model is not configured")
	ErrModelResponse    = errors.New("diagnosis model returned an unusable response")
)
