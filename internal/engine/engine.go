// Package engine is the offline, rule-based diagnosis path. It is used when
// the generative model is unavailable and must never fail.
package engine

import (
	"strconv"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
)

// Name is reported as the result source by callers.
const Name = "rule-based"

const (
	DefaultDiagnosis  = "General Malaise"
	defaultConfidence = 0.3
)

// Emergency thresholds. All comparisons are strict.
const (
	emergencyTemperatureF = 104.0
	emergencyOxygenPct    = 90.0
	emergencyHeartRate    = 120.0
	highFeverF            = 103.0
	feverF                = 100.0
	hypertensiveSystolic  = 140
)

type Input struct {
	Symptoms       string
	VitalSigns     diagnosis.VitalSigns
	MedicalHistory string
	Language       diagnosis.Language
}

// evaluation is the mutable state shared by the rule chain for one request.
type evaluation struct {
	text    string // lower-cased symptoms
	history string // lower-cased medical history

	temperature    float64
	hasTemperature bool
	heartRate      float64
	oxygen         float64
	hasOxygen      bool
	bloodPressure  string

	result *diagnosis.Result
}

func newEvaluation(in Input) *evaluation {
	ev := &evaluation{
		text:          strings.ToLower(in.Symptoms),
		history:       strings.ToLower(in.MedicalHistory),
		bloodPressure: strings.TrimSpace(in.VitalSigns.BloodPressure),
		result:        defaultResult(),
	}
	ev.temperature, ev.hasTemperature = in.VitalSigns.Temperature.Float()
	ev.heartRate, _ = in.VitalSigns.HeartRate.Float()
	if o2, ok := in.VitalSigns.OxygenLevel.Float(); ok && o2 > 0 {
		ev.oxygen, ev.hasOxygen = o2, true
	}
	return ev
}

func defaultResult() *diagnosis.Result {
	return &diagnosis.Result{
		PrimaryDiagnosis:      DefaultDiagnosis,
		ConfidenceScore:       defaultConfidence,
		DifferentialDiagnoses: []diagnosis.Differential{},
		ImmediateActions: []string{
			"Monitor symptoms",
			"Consult a doctor if symptoms worsen",
		},
		TreatmentProtocol: diagnosis.TreatmentProtocol{
			Medications: []diagnosis.Medication{},
			LifestyleAdvice: []string{
				"Rest adequately",
				"Stay hydrated",
				"Eat nutritious food",
			},
			FollowUp: "Follow up with a doctor in 3 days if symptoms persist",
		},
		RedFlags: []string{},
	}
}

// Evaluate runs the rule chain in its fixed order and returns a fresh result.
// Later rules may overwrite fields set by earlier ones; an emergency
// short-circuits everything except the patient explanation.
func Evaluate(in Input) *diagnosis.Result {
	ev := newEvaluation(in)

	if ev.isEmergency() {
		ev.applyEmergency()
	} else {
		for _, r := range chain {
			if r.match(ev) {
				r.apply(ev)
			}
		}
		ev.annotateHistory()
	}

	ev.result.PatientExplanation = Explain(in.Language, ev.result.PrimaryDiagnosis)
	ev.result.Normalize()
	return ev.result
}

func (ev *evaluation) isEmergency() bool {
	return (ev.hasTemperature && ev.temperature > emergencyTemperatureF) ||
		(ev.hasOxygen && ev.oxygen < emergencyOxygenPct) ||
		ev.heartRate > emergencyHeartRate
}

func (ev *evaluation) applyEmergency() {
	r := ev.result
	r.PrimaryDiagnosis = "Medical Emergency"
	r.ConfidenceScore = 0.9
	r.ReferralNeeded = true
	r.ReferralSpecialty = "Emergency Medicine"
	r.ImmediateActions = []string{
		"URGENT: Seek immediate medical attention",
		"Call emergency services or go to the nearest emergency room",
	}
	r.TreatmentProtocol.FollowUp = "Immediate in-person evaluation required"

	if ev.hasTemperature && ev.temperature > emergencyTemperatureF {
		r.RedFlags = append(r.RedFlags, "Temperature above 104°F")
	}
	if ev.hasOxygen && ev.oxygen < emergencyOxygenPct {
		r.RedFlags = append(r.RedFlags, "Oxygen saturation below 90%")
	}
	if ev.heartRate > emergencyHeartRate {
		r.RedFlags = append(r.RedFlags, "Heart rate above 120 bpm")
	}
}

// systolic parses the first half of an "S/D" reading.
func (ev *evaluation) systolic() (int, bool) {
	s, _, ok := strings.Cut(ev.bloodPressure, "/")
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

func (ev *evaluation) annotateHistory() {
	if ev.history == "" {
		return
	}
	for _, c := range chronicConditions {
		for _, f := range c.fragments {
			if strings.Contains(ev.history, f) {
				ev.result.RedFlags = append(ev.result.RedFlags, c.flag)
				break
			}
		}
	}
}
