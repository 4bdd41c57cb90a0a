package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/metrics"
	"go.uber.org/zap"
)

type PatientService struct {
	repo       patient.Repository
	history    diagnosis.Repository
	jwtManager *auth.JWTManager
	pageSize   int
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewPatientService(
	repo patient.Repository,
	history diagnosis.Repository,
	jwtManager *auth.JWTManager,
	pageSize int,
	m *metrics.Collector,
	log *zap.Logger,
) *PatientService {
	return &PatientService{
		repo:       repo,
		history:    history,
		jwtManager: jwtManager,
		pageSize:   pageSize,
		metrics:    m,
		log:        log,
	}
}

// Register creates the patient and returns a token scoped to that patient's
// history. Replacing the demographics of an existing ID requires the caller to
// be that patient or a clinician; anyone else gets ErrPatientAlreadyExists.
func (s *PatientService) Register(ctx context.Context, caller *domain.Claims, cmd *patient.RegisterPatientCommand) (*patient.Patient, *domain.TokenPair, error) {
	if err := validateRegisterCommand(cmd); err != nil {
		return nil, nil, err
	}

	p := &patient.Patient{
		ID:      strings.TrimSpace(cmd.PatientID),
		Name:    strings.TrimSpace(cmd.Name),
		Age:     cmd.Age,
		Gender:  cmd.Gender,
		Contact: strings.TrimSpace(cmd.Contact),
	}

	var err error
	if caller.CanReadPatient(p.ID) {
		err = s.repo.Upsert(ctx, p)
	} else {
		err = s.repo.Create(ctx, p)
	}
	if errors.Is(err, patient.ErrPatientAlreadyExists) {
		s.log.Warn("registration for existing patient rejected", zap.String("patient_id", p.ID))
		return nil, nil, err
	}
	if err != nil {
		s.log.Error("failed to register patient", zap.Error(err))
		return nil, nil, fmt.Errorf("registering patient: %w", err)
	}

	token, err := s.jwtManager.GeneratePatientToken(p.ID)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.PatientsRegistered.Inc()
	s.log.Info("patient registered", zap.String("patient_id", p.ID))

	return p, token, nil
}

// History lists a patient's past diagnoses, newest first. Patients may only
// read their own history.
func (s *PatientService) History(ctx context.Context, caller *domain.Claims, patientID string) ([]diagnosis.HistoryEntry, error) {
	patientID = strings.TrimSpace(patientID)
	if !caller.CanReadPatient(patientID) {
		return nil, ErrForbidden
	}

	recs, err := s.history.ListByPatient(ctx, patientID, s.pageSize)
	if err != nil {
		s.log.Error("failed to load history", zap.String("patient_id", patientID), zap.Error(err))
		return nil, fmt.Errorf("loading history: %w", err)
	}

	entries := make([]diagnosis.HistoryEntry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, r.Entry())
	}
	return entries, nil
}

func validateRegisterCommand(cmd *patient.RegisterPatientCommand) error {
	var errs []string

	if msg := validatePatientID(cmd.PatientID, true); msg != "" {
		errs = append(errs, msg)
	}
	if strings.TrimSpace(cmd.Name) == "" {
		errs = append(errs, "name is required")
	}
	if cmd.Age < 0 || cmd.Age > 150 {
		errs = append(errs, patient.ErrInvalidAge.Error())
	}
	if !cmd.Gender.IsValid() {
		errs = append(errs, patient.ErrInvalidGender.Error())
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// validatePatientID returns a field error message, or "" when the ID is acceptable.
func validatePatientID(raw string, required bool) string {
	id := strings.TrimSpace(raw)
	switch {
	case id == "" && required:
		return "patient_id is required"
	case len(id) > patient.MaxIDLength:
		return fmt.Sprintf("patient_id must be at most %d characters", patient.MaxIDLength)
	}
	return ""
}
