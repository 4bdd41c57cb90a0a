package patient

import "context"

type Repository interface {
	// Create inserts a new patient and returns ErrPatientAlreadyExists if the ID is taken.
	Create(ctx context.Context, p *Patient) error

	// Upsert inserts the patient or replaces the stored demographics for the same ID.
	Upsert(ctx context.Context, p *Patient) error

	// GetByID returns ErrPatientNotFound if no patient has the ID.
	GetByID(ctx context.Context, id string) (*Patient, error)
}
