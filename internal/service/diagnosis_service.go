package service

import (
	"context"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/engine"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/llm"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/pharmacy"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Diagnoser is the remote model. *llm.Client satisfies it.
type Diagnoser interface {
	Enabled() bool
	Diagnose(ctx context.Context, req *diagnosis.Request) (*diagnosis.Result, error)
}

// DiagnosisOutcome is everything returned for one intake.
type DiagnosisOutcome struct {
	Source                diagnosis.Source       `json:"source"`
	Diagnosis             *diagnosis.Result      `json:"diagnosis"`
	DrugInteractions      []pharmacy.Interaction `json:"drug_interactions"`
	DosageRecommendations []pharmacy.Dosage      `json:"dosage_recommendations"`
}

type DiagnosisService struct {
	model        Diagnoser
	modelTimeout time.Duration
	pharmacy     *PharmacyService
	history      *HistoryRecorder
	metrics      *metrics.Collector
	tracer       trace.Tracer
	log          *zap.Logger
}

func NewDiagnosisService(
	model Diagnoser,
	modelTimeout time.Duration,
	pharmacySvc *PharmacyService,
	history *HistoryRecorder,
	m *metrics.Collector,
	log *zap.Logger,
) *DiagnosisService {
	return &DiagnosisService{
		model:        model,
		modelTimeout: modelTimeout,
		pharmacy:     pharmacySvc,
		history:      history,
		metrics:      m,
		tracer:       otel.Tracer("medassist/service/diagnosis"),
		log:          log,
	}
}

func (s *DiagnosisService) ModelAvailable() bool {
	return s.model != nil && s.model.Enabled()
}

// Diagnose produces a result from the model when it is available and from the
// rule engine otherwise. Only a request without symptoms is an error.
func (s *DiagnosisService) Diagnose(ctx context.Context, req *diagnosis.Request) (*DiagnosisOutcome, error) {
	req.Symptoms = strings.TrimSpace(req.Symptoms)
	if req.Symptoms == "" {
		return nil, diagnosis.ErrSymptomsRequired
	}
	if msg := validatePatientID(req.PatientID, false); msg != "" {
		return nil, &ValidationError{Fields: []string{msg}}
	}

	ctx, span := s.tracer.Start(ctx, "DiagnosisService.Diagnose")
	defer span.End()

	lang := diagnosis.ParseLanguage(req.Language)
	res, source := s.fromModel(ctx, req)
	if res == nil {
		res = s.fromRules(ctx, req, lang)
		source = diagnosis.SourceRules
	}

	out := &DiagnosisOutcome{
		Source:                source,
		Diagnosis:             res,
		DrugInteractions:      s.pharmacy.CheckInteractions(append(res.MedicationNames(), req.Medications...)),
		DosageRecommendations: s.dosages(req, res),
	}

	span.SetAttributes(
		attribute.String("diagnosis.source", string(source)),
		attribute.String("diagnosis.language", string(lang)),
		attribute.Bool("diagnosis.referral", res.ReferralNeeded),
		attribute.Int("diagnosis.interactions", len(out.DrugInteractions)),
	)
	s.metrics.DiagnosesTotal.WithLabelValues(string(source)).Inc()
	if res.ReferralNeeded {
		s.metrics.ReferralsTotal.Inc()
	}

	if pid := strings.TrimSpace(req.PatientID); pid != "" && s.history != nil {
		s.history.RecordAsync(diagnosis.NewRecord(req, res, source))
	}

	s.log.Info("diagnosis completed",
		zap.String("source", string(source)),
		zap.String("diagnosis", res.PrimaryDiagnosis),
		zap.Float64("confidence", res.ConfidenceScore),
		zap.Bool("referral", res.ReferralNeeded),
		zap.String("language", string(lang)),
	)

	return out, nil
}

// fromModel returns nil when the model is disabled or fails for any reason.
func (s *DiagnosisService) fromModel(ctx context.Context, req *diagnosis.Request) (*diagnosis.Result, diagnosis.Source) {
	if !s.ModelAvailable() {
		return nil, ""
	}

	ctx, span := s.tracer.Start(ctx, "model."+llm.Name)
	defer span.End()

	if s.modelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.modelTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.model.Diagnose(ctx, req)
	s.metrics.ModelDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		reason := llm.FailureReason(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		s.metrics.ModelFallbacksTotal.WithLabelValues(reason).Inc()
		s.log.Warn("model diagnosis failed, using rule engine",
			zap.String("reason", reason),
			zap.Error(err),
		)
		return nil, ""
	}

	res.Normalize()
	return res, diagnosis.SourceModel
}

func (s *DiagnosisService) fromRules(ctx context.Context, req *diagnosis.Request, lang diagnosis.Language) *diagnosis.Result {
	_, span := s.tracer.Start(ctx, "engine."+engine.Name)
	defer span.End()

	res := engine.Evaluate(engine.Input{
		Symptoms:       req.Symptoms,
		VitalSigns:     req.VitalSigns,
		MedicalHistory: req.MedicalHistory,
		Language:       lang,
	})
	span.SetAttributes(attribute.String("diagnosis.primary", res.PrimaryDiagnosis))
	return res
}

// dosages computes one recommendation per distinct protocol medication.
func (s *DiagnosisService) dosages(req *diagnosis.Request, res *diagnosis.Result) []pharmacy.Dosage {
	out := []pharmacy.Dosage{}
	seen := make(map[string]bool)
	for _, name := range res.MedicationNames() {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s.pharmacy.CalculateDosage(name, string(req.Age), string(req.Weight), req.Gender))
	}
	return out
}
