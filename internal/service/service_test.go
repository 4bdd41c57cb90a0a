package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/pharmacy"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeModel struct {
	enabled bool
	res     *diagnosis.Result
	err     error
	calls   int
	wait    bool
}

func (f *fakeModel) Enabled() bool { return f.enabled }

func (f *fakeModel) Diagnose(ctx context.Context, _ *diagnosis.Request) (*diagnosis.Result, error) {
	f.calls++
	if f.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.res, f.err
}

type recordingRepo struct {
	mu      sync.Mutex
	records []*diagnosis.Record
	err     error
	block   chan struct{}
}

func (r *recordingRepo) Create(_ context.Context, rec *diagnosis.Record) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return r.err
}

func (r *recordingRepo) ListByPatient(context.Context, string, int) ([]*diagnosis.Record, error) {
	return nil, nil
}

func (r *recordingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func newDiagnosisService(t *testing.T, model Diagnoser, repo diagnosis.Repository) (*DiagnosisService, *HistoryRecorder) {
	t.Helper()
	m := metrics.NewCollector("test")
	log := zap.NewNop()
	rec := NewHistoryRecorder(repo, 10, m, log)
	return NewDiagnosisService(model, 50*time.Millisecond, NewPharmacyService(m), rec, m, log), rec
}

func drain(t *testing.T, rec *HistoryRecorder) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rec.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestDiagnose_RequiresSymptoms(t *testing.T) {
	svc, rec := newDiagnosisService(t, nil, &recordingRepo{})
	defer drain(t, rec)

	for _, s := range []string{"", "   \n"} {
		_, err := svc.Diagnose(context.Background(), &diagnosis.Request{Symptoms: s})
		if !errors.Is(err, diagnosis.ErrSymptomsRequired) {
			t.Fatalf("%q: expected ErrSymptomsRequired, got %v", s, err)
		}
	}
}

func TestDiagnose_RulesWhenModelDisabled(t *testing.T) {
	model := &fakeModel{enabled: false}
	repo := &recordingRepo{}
	svc, rec := newDiagnosisService(t, model, repo)

	out, err := svc.Diagnose(context.Background(), &diagnosis.Request{
		PatientID:   "P1",
		Symptoms:    "fever and body pain",
		VitalSigns:  diagnosis.VitalSigns{Temperature: "102.5"},
		Age:         "8",
		Weight:      "25",
		Medications: []string{"warfarin"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	drain(t, rec)

	if model.calls != 0 {
		t.Error("disabled model must not be called")
	}
	if out.Source != diagnosis.SourceRules {
		t.Fatalf("expected rules source, got %s", out.Source)
	}
	if out.Diagnosis.PrimaryDiagnosis != "Fever - Likely Viral Infection" {
		t.Fatalf("unexpected diagnosis %q", out.Diagnosis.PrimaryDiagnosis)
	}
	if repo.count() != 1 || repo.records[0].Source != diagnosis.SourceRules {
		t.Fatalf("expected one persisted rules record, got %d", repo.count())
	}

	var para *pharmacy.Dosage
	for i := range out.DosageRecommendations {
		if out.DosageRecommendations[i].Medication == "Paracetamol" {
			para = &out.DosageRecommendations[i]
		}
	}
	if para == nil || para.AgeCategory != pharmacy.AgeChild {
		t.Fatalf("expected a child paracetamol dosage, got %+v", out.DosageRecommendations)
	}
}

func TestDiagnose_ModelSuccess(t *testing.T) {
	model := &fakeModel{enabled: true, res: &diagnosis.Result{
		PrimaryDiagnosis: "Viral Fever",
		ConfidenceScore:  0.8,
		TreatmentProtocol: diagnosis.TreatmentProtocol{
			Medications: []diagnosis.Medication{{Name: "Aspirin"}, {Name: "aspirin"}},
		},
	}}
	svc, rec := newDiagnosisService(t, model, &recordingRepo{})
	defer drain(t, rec)

	out, err := svc.Diagnose(context.Background(), &diagnosis.Request{
		Symptoms:    "fever",
		Medications: []string{"Warfarin"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Source != diagnosis.SourceModel || out.Diagnosis.PrimaryDiagnosis != "Viral Fever" {
		t.Fatalf("expected model result, got %+v", out)
	}
	if out.Diagnosis.RedFlags == nil {
		t.Error("model result must be normalized")
	}
	if len(out.DrugInteractions) != 1 || out.DrugInteractions[0].Severity != pharmacy.SeverityHigh {
		t.Fatalf("expected aspirin/warfarin interaction, got %+v", out.DrugInteractions)
	}
	if len(out.DosageRecommendations) != 1 {
		t.Fatalf("duplicate protocol medications should share one dosage, got %d", len(out.DosageRecommendations))
	}
}

func TestDiagnose_FallbackOnModelFailure(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{"error", &fakeModel{enabled: true, err: diagnosis.ErrModelResponse}},
		{"timeout", &fakeModel{enabled: true, wait: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, rec := newDiagnosisService(t, tt.model, &recordingRepo{})
			defer drain(t, rec)

			out, err := svc.Diagnose(context.Background(), &diagnosis.Request{Symptoms: "cough and cold"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.model.calls != 1 {
				t.Errorf("model should be tried once, got %d", tt.model.calls)
			}
			if out.Source != diagnosis.SourceRules {
				t.Fatalf("expected fallback to rules, got %s", out.Source)
			}
			if out.Diagnosis.PrimaryDiagnosis != "Common Cold - Upper Respiratory Infection" {
				t.Fatalf("unexpected diagnosis %q", out.Diagnosis.PrimaryDiagnosis)
			}
		})
	}
}

func TestDiagnose_RejectsOverlongPatientID(t *testing.T) {
	repo := &recordingRepo{}
	svc, rec := newDiagnosisService(t, nil, repo)

	_, err := svc.Diagnose(context.Background(), &diagnosis.Request{
		PatientID: strings.Repeat("p", patient.MaxIDLength+1),
		Symptoms:  "cough",
	})
	drain(t, rec)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.count() != 0 {
		t.Fatalf("rejected request must not be queued, got %d records", repo.count())
	}
}

func TestDiagnose_RecordsTemplateLanguage(t *testing.T) {
	tests := map[string]diagnosis.Language{
		"en-IN-latn": diagnosis.LanguageEnglish,
		"xx":         diagnosis.LanguageEnglish,
		"":           diagnosis.LanguageEnglish,
		"TA":         diagnosis.LanguageTamil,
	}

	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			repo := &recordingRepo{}
			svc, rec := newDiagnosisService(t, nil, repo)

			if _, err := svc.Diagnose(context.Background(), &diagnosis.Request{PatientID: "P1", Symptoms: "cough", Language: raw}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			drain(t, rec)

			if repo.count() != 1 {
				t.Fatalf("expected one record, got %d", repo.count())
			}
			got := repo.records[0].Language
			if got != want || len(got) > 8 {
				t.Fatalf("stored language %q, want %q", got, want)
			}
		})
	}
}

func TestDiagnose_NoHistoryWithoutPatient(t *testing.T) {
	repo := &recordingRepo{}
	svc, rec := newDiagnosisService(t, nil, repo)

	if _, err := svc.Diagnose(context.Background(), &diagnosis.Request{Symptoms: "headache"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	drain(t, rec)

	if repo.count() != 0 {
		t.Fatalf("anonymous diagnoses must not be persisted, got %d", repo.count())
	}
}

func TestHistoryRecorder_DropsWhenFull(t *testing.T) {
	repo := &recordingRepo{block: make(chan struct{})}
	rec := NewHistoryRecorder(repo, 1, metrics.NewCollector("test"), zap.NewNop())

	accepted := 0
	for i := 0; i < 5; i++ {
		if rec.RecordAsync(&diagnosis.Record{PatientID: "P1"}) {
			accepted++
		}
	}
	// One record may be held by the worker plus one in the buffer.
	if accepted < 1 || accepted > 2 {
		t.Fatalf("expected 1 or 2 accepted records, got %d", accepted)
	}

	close(repo.block)
	drain(t, rec)

	if repo.count() != accepted {
		t.Fatalf("expected %d persisted, got %d", accepted, repo.count())
	}
	if rec.RecordAsync(&diagnosis.Record{PatientID: "P1"}) {
		t.Fatal("records after shutdown must be rejected")
	}
}

func TestHistoryRecorder_ShutdownTimeout(t *testing.T) {
	repo := &recordingRepo{block: make(chan struct{})}
	defer close(repo.block)
	rec := NewHistoryRecorder(repo, 4, metrics.NewCollector("test"), zap.NewNop())
	rec.RecordAsync(&diagnosis.Record{PatientID: "P1"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rec.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func newPatientService(t *testing.T) (*PatientService, *memory.DiagnosisRepository, *auth.JWTManager) {
	t.Helper()
	jwtm := auth.NewJWTManager(config.JWTConfig{
		Secret:          "test-secret",
		PatientTokenTTL: time.Hour,
		Issuer:          "test",
	})
	history := memory.NewDiagnosisRepository()
	svc := NewPatientService(memory.NewPatientRepository(), history, jwtm, 2, metrics.NewCollector("test"), zap.NewNop())
	return svc, history, jwtm
}

func TestRegisterPatient(t *testing.T) {
	svc, _, jwtm := newPatientService(t)

	p, token, err := svc.Register(context.Background(), nil, &patient.RegisterPatientCommand{
		PatientID: " P-7 ",
		Name:      "Lakshmi",
		Age:       52,
		Gender:    patient.GenderFemale,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "P-7" {
		t.Errorf("id should be trimmed, got %q", p.ID)
	}

	claims, err := jwtm.ValidateAccessToken(token.AccessToken)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Subject != "P-7" || claims.Role != domain.RolePatient {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRegisterPatient_Validation(t *testing.T) {
	svc, _, _ := newPatientService(t)

	_, _, err := svc.Register(context.Background(), nil, &patient.RegisterPatientCommand{
		Age:    200,
		Gender: "robot",
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(vErr.Fields) != 4 {
		t.Fatalf("expected 4 field errors, got %v", vErr.Fields)
	}
}

func TestRegisterPatient_ExistingID(t *testing.T) {
	svc, _, _ := newPatientService(t)
	ctx := context.Background()
	cmd := func(name string) *patient.RegisterPatientCommand {
		return &patient.RegisterPatientCommand{PatientID: "P-7", Name: name, Age: 52, Gender: patient.GenderFemale}
	}

	if _, _, err := svc.Register(ctx, nil, cmd("Lakshmi")); err != nil {
		t.Fatalf("first registration: %v", err)
	}

	_, token, err := svc.Register(ctx, nil, cmd("Impostor"))
	if !errors.Is(err, patient.ErrPatientAlreadyExists) || token != nil {
		t.Fatalf("anonymous re-registration: expected ErrPatientAlreadyExists and no token, got %v", err)
	}
	if _, _, err := svc.Register(ctx, &domain.Claims{Subject: "P-8", Role: domain.RolePatient}, cmd("Impostor")); !errors.Is(err, patient.ErrPatientAlreadyExists) {
		t.Fatalf("other patient's token: expected ErrPatientAlreadyExists, got %v", err)
	}

	p, _, err := svc.Register(ctx, &domain.Claims{Subject: "P-7", Role: domain.RolePatient}, cmd("Lakshmi R"))
	if err != nil || p.Name != "Lakshmi R" {
		t.Fatalf("owner update: got %+v, %v", p, err)
	}
	p, _, err = svc.Register(ctx, &domain.Claims{Subject: "dr", Role: domain.RoleClinician}, cmd("Lakshmi Rao"))
	if err != nil || p.Name != "Lakshmi Rao" {
		t.Fatalf("clinician update: got %+v, %v", p, err)
	}
}

func TestHistoryAccess(t *testing.T) {
	svc, history, _ := newPatientService(t)
	ctx := context.Background()

	for _, d := range []string{"Common Cold", "Tension Headache", "Acute Gastroenteritis"} {
		_ = history.Create(ctx, &diagnosis.Record{PatientID: "P1", Diagnosis: d, Source: diagnosis.SourceRules})
	}

	own := &domain.Claims{Subject: "P1", Role: domain.RolePatient}
	entries, err := svc.History(ctx, own, "P1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[0].Diagnosis != "Acute Gastroenteritis" {
		t.Fatalf("expected newest two entries, got %+v", entries)
	}

	other := &domain.Claims{Subject: "P2", Role: domain.RolePatient}
	if _, err := svc.History(ctx, other, "P1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	clinician := &domain.Claims{Subject: "dr", Role: domain.RoleClinician}
	if _, err := svc.History(ctx, clinician, "P1"); err != nil {
		t.Fatalf("clinician should read any history: %v", err)
	}

	if _, err := svc.History(ctx, nil, "P1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("anonymous access must be forbidden, got %v", err)
	}
}

func TestClinicianLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	jwtm := auth.NewJWTManager(config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "test",
	})
	svc := NewAuthService(config.ClinicianConfig{Username: "dr-rao", PasswordHash: string(hash)}, jwtm, zap.NewNop())
	ctx := context.Background()

	pair, err := svc.Login(ctx, "dr-rao", "s3cret", "127.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	for _, c := range [][2]string{{"dr-rao", "wrong"}, {"someone", "s3cret"}, {"", ""}} {
		if _, err := svc.Login(ctx, c[0], c[1], "127.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%v: expected ErrInvalidCredentials, got %v", c, err)
		}
	}

	patientToken, _ := jwtm.GeneratePatientToken("P1")
	if _, err := svc.Refresh(ctx, patientToken.AccessToken); err == nil {
		t.Fatal("access tokens must not refresh")
	}
}

func TestClinicianLogin_Unconfigured(t *testing.T) {
	svc := NewAuthService(config.ClinicianConfig{}, auth.NewJWTManager(config.JWTConfig{Secret: "x"}), zap.NewNop())
	if _, err := svc.Login(context.Background(), "", "medassist-dummy-password", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
