package diagnosis

import "context"

type Repository interface {
	// Create persists a finished diagnosis.
	Create(ctx context.Context, r *Record) error

	// ListByPatient returns the newest records first, at most limit entries.
	ListByPatient(ctx context.Context, patientID string, limit int) ([]*Record, error)
}
