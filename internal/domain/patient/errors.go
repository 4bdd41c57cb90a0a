package patient

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrPatientAlreadyExists = errors.New("patient with this ID is already registered")
	ErrInvalidGender        = errors.New("invalid gender value")
	ErrInvalidAge           = errors.New("age must be between 0 and 150")
)
