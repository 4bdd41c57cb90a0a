// Package postgres implements the domain repositories on gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/metrics"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// observe records query latency when a collector is configured.
func observe(m *metrics.Collector, op, table string, start time.Time) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
}

type PatientRepository struct {
	db      *gorm.DB
	metrics *metrics.Collector
}

func NewPatientRepository(db *gorm.DB, m *metrics.Collector) *PatientRepository {
	return &PatientRepository{db: db, metrics: m}
}

var _ patient.Repository = (*PatientRepository)(nil)

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	defer observe(r.metrics, "create", "patients", time.Now())

	// DO NOTHING keeps concurrent first registrations of one ID from overwriting each other.
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(p)
	if res.Error != nil {
		return fmt.Errorf("creating patient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return patient.ErrPatientAlreadyExists
	}
	return nil
}

func (r *PatientRepository) Upsert(ctx context.Context, p *patient.Patient) error {
	defer observe(r.metrics, "upsert", "patients", time.Now())

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "age", "gender", "contact", "updated_at"}),
		}).
		Create(p).Error
	if err != nil {
		return fmt.Errorf("upserting patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id string) (*patient.Patient, error) {
	defer observe(r.metrics, "get", "patients", time.Now())

	var p patient.Patient
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, patient.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting patient: %w", err)
	}
	return &p, nil
}

type DiagnosisRepository struct {
	db      *gorm.DB
	metrics *metrics.Collector
}

func NewDiagnosisRepository(db *gorm.DB, m *metrics.Collector) *DiagnosisRepository {
	return &DiagnosisRepository{db: db, metrics: m}
}

var _ diagnosis.Repository = (*DiagnosisRepository)(nil)

func (r *DiagnosisRepository) Create(ctx context.Context, rec *diagnosis.Record) error {
	defer observe(r.metrics, "create", "diagnosis_history", time.Now())

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("creating diagnosis record: %w", err)
	}
	return nil
}

func (r *DiagnosisRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]*diagnosis.Record, error) {
	defer observe(r.metrics, "list", "diagnosis_history", time.Now())

	var recs []*diagnosis.Record
	q := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("listing diagnosis history: %w", err)
	}
	return recs, nil
}
