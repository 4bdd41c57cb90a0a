// Package memory provides process-local repositories, used when no database
// is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/patient"
)

type PatientRepository struct {
	mu       sync.RWMutex
	patients map[string]patient.Patient
	now      func() time.Time
}

func NewPatientRepository() *PatientRepository {
	return &PatientRepository{patients: make(map[string]patient.Patient), now: time.Now}
}

var _ patient.Repository = (*PatientRepository)(nil)

func (r *PatientRepository) Create(_ context.Context, p *patient.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[p.ID]; ok {
		return patient.ErrPatientAlreadyExists
	}
	now := r.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.patients[p.ID] = *p
	return nil
}

func (r *PatientRepository) Upsert(_ context.Context, p *patient.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if existing, ok := r.patients[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.patients[p.ID] = *p
	return nil
}

func (r *PatientRepository) GetByID(_ context.Context, id string) (*patient.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	return &p, nil
}

type DiagnosisRepository struct {
	mu      sync.RWMutex
	records map[string][]*diagnosis.Record // oldest first
	now     func() time.Time
}

func NewDiagnosisRepository() *DiagnosisRepository {
	return &DiagnosisRepository{records: make(map[string][]*diagnosis.Record), now: time.Now}
}

var _ diagnosis.Repository = (*DiagnosisRepository)(nil)

func (r *DiagnosisRepository) Create(_ context.Context, rec *diagnosis.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}
	cp := *rec
	r.records[rec.PatientID] = append(r.records[rec.PatientID], &cp)
	return nil
}

func (r *DiagnosisRepository) ListByPatient(_ context.Context, patientID string, limit int) ([]*diagnosis.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := r.records[patientID]
	n := len(recs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*diagnosis.Record, 0, n)
	for i := len(recs) - 1; i >= 0 && len(out) < n; i-- {
		cp := *recs[i]
		out = append(out, &cp)
	}
	return out, nil
}
