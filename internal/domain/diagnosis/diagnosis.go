package diagnosis

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
	LanguageTamil   Language = "ta"
	LanguageTelugu  Language = "te"
	LanguageBengali Language = "bn"
)

func (l Language) IsValid() bool {
	switch l {
	case LanguageEnglish, LanguageHindi, LanguageTamil, LanguageTelugu, LanguageBengali:
		return true
	}
	return false
}

// ParseLanguage normalizes a client supplied code. Empty input maps to English;
// unknown codes are returned as-is so that callers can still fall back per template.
func ParseLanguage(raw string) Language {
	l := Language(strings.ToLower(strings.TrimSpace(raw)))
	if l == "" {
		return LanguageEnglish
	}
	return l
}

// OrDefault returns l when it is supported and English otherwise, matching
// the template the patient explanation is rendered from.
func (l Language) OrDefault() Language {
	if l.IsValid() {
		return l
	}
	return LanguageEnglish
}

// Source identifies which path produced a result.
type Source string

const (
	SourceModel Source = "model"
	SourceRules Source = "rules"
)

// Reading is a numeric field that clients send either as a JSON number or as a
// string. Values that do not parse are kept verbatim and treated as absent.
type Reading string

func (r *Reading) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Reading(strings.TrimSpace(s))
		return nil
	}
	*r = Reading(data)
	return nil
}

func (r Reading) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	if f, ok := r.Float(); ok {
		return json.Marshal(f)
	}
	return json.Marshal(string(r))
}

// Float returns the parsed value and whether it was usable.
func (r Reading) Float() (float64, bool) {
	if r == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(r)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

type VitalSigns struct {
	Temperature   Reading `json:"temperature,omitempty"` // °F
	BloodPressure string  `json:"blood_pressure,omitempty"`
	HeartRate     Reading `json:"heart_rate,omitempty"`
	OxygenLevel   Reading `json:"oxygen_level,omitempty"`
}

type Request struct {
	PatientID      string     `json:"patient_id"`
	Symptoms       string     `json:"symptoms"`
	VitalSigns     VitalSigns `json:"vital_signs"`
	MedicalHistory string     `json:"medical_history"`
	Language       string     `json:"language"`
	Age            Reading    `json:"age"`
	Weight         Reading    `json:"weight"`
	Gender         string     `json:"gender"`
	// Medications the patient is already taking; checked against the proposed protocol.
	Medications []string `json:"medications"`
}

type Differential struct {
	Condition   string  `json:"condition"`
	Probability float64 `json:"probability"`
	Reasoning   string  `json:"reasoning"`
}

type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

type TreatmentProtocol struct {
	Medications     []Medication `json:"medications"`
	LifestyleAdvice []string     `json:"lifestyle_advice"`
	FollowUp        string       `json:"follow_up"`
}

type Result struct {
	PrimaryDiagnosis      string            `json:"primary_diagnosis"`
	ConfidenceScore       float64           `json:"confidence_score"`
	DifferentialDiagnoses []Differential    `json:"differential_diagnoses"`
	ImmediateActions      []string          `json:"immediate_actions"`
	TreatmentProtocol     TreatmentProtocol `json:"treatment_protocol"`
	ReferralNeeded        bool              `json:"referral_needed"`
	ReferralSpecialty     string            `json:"referral_specialty"`
	RedFlags              []string          `json:"red_flags"`
	PatientExplanation    string            `json:"patient_explanation"`
}

// Normalize replaces nil slices with empty ones and clamps the confidence
// score into [0,1] so that every serialized result carries all keys.
func (r *Result) Normalize() {
	if r.DifferentialDiagnoses == nil {
		r.DifferentialDiagnoses = []Differential{}
	}
	if r.ImmediateActions == nil {
		r.ImmediateActions = []string{}
	}
	if r.TreatmentProtocol.Medications == nil {
		r.TreatmentProtocol.Medications = []Medication{}
	}
	if r.TreatmentProtocol.LifestyleAdvice == nil {
		r.TreatmentProtocol.LifestyleAdvice = []string{}
	}
	if r.RedFlags == nil {
		r.RedFlags = []string{}
	}
	switch {
	case r.ConfidenceScore < 0 || r.ConfidenceScore != r.ConfidenceScore:
		r.ConfidenceScore = 0
	case r.ConfidenceScore > 1:
		r.ConfidenceScore = 1
	}
}

// MedicationNames lists the protocol medication names in order.
func (r *Result) MedicationNames() []string {
	names := make([]string, 0, len(r.TreatmentProtocol.Medications))
	for _, m := range r.TreatmentProtocol.Medications {
		names = append(names, m.Name)
	}
	return names
}

// Record is one persisted diagnosis. The full result is stored as an opaque blob.
type Record struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	PatientID      string   `gorm:"column:patient_id;type:varchar(64);not null;index"`
	Symptoms       string   `gorm:"column:symptoms;type:text;not null"`
	Diagnosis      string   `gorm:"column:diagnosis;type:varchar(255);not null"`
	Confidence     float64  `gorm:"column:confidence;not null"`
	ReferralNeeded bool     `gorm:"column:referral_needed;default:false"`
	Language       Language `gorm:"column:language;type:varchar(8);not null"`
	Source         Source   `gorm:"column:source;type:varchar(16);not null"`

	Result *Result `gorm:"column:result;type:jsonb;serializer:json"`
}

func (Record) TableName() string {
	return "clinical.diagnosis_history"
}

// NewRecord builds the history entry for a finished diagnosis.
func NewRecord(req *Request, res *Result, source Source) *Record {
	return &Record{
		ID:             uuid.New(),
		PatientID:      strings.TrimSpace(req.PatientID),
		Symptoms:       req.Symptoms,
		Diagnosis:      res.PrimaryDiagnosis,
		Confidence:     res.ConfidenceScore,
		ReferralNeeded: res.ReferralNeeded,
		Language:       ParseLanguage(req.Language).OrDefault(),
		Source:         source,
		Result:         res,
	}
}

// HistoryEntry is the client facing projection of a Record.
type HistoryEntry struct {
	Diagnosis  string    `json:"diagnosis"`
	Confidence float64   `json:"confidence"`
	Date       time.Time `json:"date"`
	Source     Source    `json:"source"`
	Referral   bool      `json:"referral_needed"`
}

func (r *Record) Entry() HistoryEntry {
	return HistoryEntry{
		Diagnosis:  r.Diagnosis,
		Confidence: r.Confidence,
		Date:       r.CreatedAt,
		Source:     r.Source,
		Referral:   r.ReferralNeeded,
	}
}
