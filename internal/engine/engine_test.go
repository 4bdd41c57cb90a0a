package engine

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
)

func vitals(temp, bp, hr, o2 string) diagnosis.VitalSigns {
	return diagnosis.VitalSigns{
		Temperature:   diagnosis.Reading(temp),
		BloodPressure: bp,
		HeartRate:     diagnosis.Reading(hr),
		OxygenLevel:   diagnosis.Reading(o2),
	}
}

func hasDifferential(r *diagnosis.Result, condition string, probability float64) bool {
	for _, d := range r.DifferentialDiagnoses {
		if d.Condition == condition && d.Probability == probability {
			return true
		}
	}
	return false
}

func hasMedication(r *diagnosis.Result, name string) bool {
	for _, m := range r.TreatmentProtocol.Medications {
		if m.Name == name {
			return true
		}
	}
	return false
}

func TestEvaluate_Default(t *testing.T) {
	r := Evaluate(Input{Symptoms: "feeling a bit off", Language: diagnosis.LanguageEnglish})

	if r.PrimaryDiagnosis != DefaultDiagnosis {
		t.Fatalf("expected %q, got %q", DefaultDiagnosis, r.PrimaryDiagnosis)
	}
	if r.ConfidenceScore != 0.3 {
		t.Errorf("expected confidence 0.3, got %v", r.ConfidenceScore)
	}
	if r.ReferralNeeded {
		t.Error("default result must not require referral")
	}
}

func TestEvaluate_EmergencyThresholds(t *testing.T) {
	tests := []struct {
		name      string
		vitals    diagnosis.VitalSigns
		emergency bool
	}{
		{"temperature 104.1", vitals("104.1", "", "", ""), true},
		{"temperature 104.0", vitals("104.0", "", "", ""), false},
		{"oxygen 89", vitals("", "", "", "89"), true},
		{"oxygen 90", vitals("", "", "", "90"), false},
		{"oxygen absent", vitals("", "", "", ""), false},
		{"oxygen zero treated as absent", vitals("", "", "", "0"), false},
		{"heart rate 121", vitals("", "", "121", ""), true},
		{"heart rate 120", vitals("", "", "120", ""), false},
		{"unparseable vitals", vitals("hot", "", "fast", "low"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Evaluate(Input{Symptoms: "tired", VitalSigns: tt.vitals})
			got := r.PrimaryDiagnosis == "Medical Emergency"
			if got != tt.emergency {
				t.Fatalf("emergency = %v, want %v (diagnosis %q)", got, tt.emergency, r.PrimaryDiagnosis)
			}
			if tt.emergency {
				if r.ConfidenceScore != 0.9 || !r.ReferralNeeded || r.ReferralSpecialty != "Emergency Medicine" {
					t.Errorf("unexpected emergency result: %+v", r)
				}
			}
		})
	}
}

func TestEvaluate_EmergencyShortCircuits(t *testing.T) {
	r := Evaluate(Input{
		Symptoms:       "cough and diarrhea with headache",
		VitalSigns:     vitals("", "180/110", "130", ""),
		MedicalHistory: "diabetes",
		Language:       diagnosis.LanguageHindi,
	})

	if r.PrimaryDiagnosis != "Medical Emergency" {
		t.Fatalf("expected emergency, got %q", r.PrimaryDiagnosis)
	}
	if len(r.TreatmentProtocol.Medications) != 0 {
		t.Errorf("no symptom rule should run after an emergency, got %+v", r.TreatmentProtocol.Medications)
	}
	if !strings.Contains(r.PatientExplanation, "Medical Emergency") || strings.HasPrefix(r.PatientExplanation, "Based on") {
		t.Errorf("expected Hindi explanation, got %q", r.PatientExplanation)
	}
}

func TestEvaluate_ModerateFever(t *testing.T) {
	r := Evaluate(Input{Symptoms: "High fever for 3 days", VitalSigns: vitals("102.5", "", "", "")})

	if r.PrimaryDiagnosis != "Fever - Likely Viral Infection" {
		t.Fatalf("got %q", r.PrimaryDiagnosis)
	}
	if !hasMedication(r, "Paracetamol") {
		t.Error("expected paracetamol in protocol")
	}
}

func TestEvaluate_HighFeverDengue(t *testing.T) {
	r := Evaluate(Input{Symptoms: "joint pain since yesterday", VitalSigns: vitals("103.5", "", "", "")})

	if r.PrimaryDiagnosis != "High Fever - Possible Serious Infection" {
		t.Fatalf("got %q", r.PrimaryDiagnosis)
	}
	if !hasDifferential(r, "Dengue Fever", 0.6) {
		t.Fatalf("expected Dengue Fever 0.6 differential, got %+v", r.DifferentialDiagnoses)
	}
	if hasDifferential(r, "Malaria", 0.55) {
		t.Error("malaria differential should require chills or sweating")
	}
}

func TestEvaluate_HighFeverMalaria(t *testing.T) {
	r := Evaluate(Input{Symptoms: "fever with chills and sweating", VitalSigns: vitals("103.8", "", "", "")})

	if !hasDifferential(r, "Malaria", 0.55) {
		t.Fatalf("expected malaria differential, got %+v", r.DifferentialDiagnoses)
	}
	if !r.ReferralNeeded {
		t.Error("high fever should require referral")
	}
}

func TestEvaluate_FeverKeywordWithoutTemperature(t *testing.T) {
	r := Evaluate(Input{Symptoms: "बुखार"})
	if r.PrimaryDiagnosis != "Mild Fever - Monitor Temperature" {
		t.Fatalf("got %q", r.PrimaryDiagnosis)
	}
}

func TestEvaluate_FeverOverridesBodyAche(t *testing.T) {
	tests := []struct {
		name   string
		temp   string
		expect string
	}{
		{"no temperature", "", "Mild Fever - Monitor Temperature"},
		{"moderate", "101", "Fever - Likely Viral Infection"},
		{"high", "103.2", "High Fever - Possible Serious Infection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Evaluate(Input{Symptoms: "Fever and body ache", VitalSigns: vitals(tt.temp, "", "", "")})
			if r.PrimaryDiagnosis != tt.expect {
				t.Fatalf("got %q, want %q", r.PrimaryDiagnosis, tt.expect)
			}
		})
	}
}

func TestEvaluate_BodyAcheAlone(t *testing.T) {
	r := Evaluate(Input{Symptoms: "body ache after gym"})
	if r.PrimaryDiagnosis != "Myalgia - Generalized Body Ache" {
		t.Fatalf("got %q", r.PrimaryDiagnosis)
	}
}

func TestEvaluate_Respiratory(t *testing.T) {
	cold := Evaluate(Input{Symptoms: "runny nose and mild cough"})
	if cold.PrimaryDiagnosis != "Common Cold - Upper Respiratory Infection" {
		t.Errorf("got %q", cold.PrimaryDiagnosis)
	}

	pneumonia := Evaluate(Input{Symptoms: "cough with shortness of breath"})
	if pneumonia.PrimaryDiagnosis != "Suspected Pneumonia - Lower Respiratory Tract Infection" {
		t.Errorf("got %q", pneumonia.PrimaryDiagnosis)
	}
	if !pneumonia.ReferralNeeded || pneumonia.ReferralSpecialty != "Pulmonology" {
		t.Errorf("pneumonia should refer to pulmonology: %+v", pneumonia)
	}
}

func TestEvaluate_Gastro(t *testing.T) {
	plain := Evaluate(Input{Symptoms: "diarrhea since morning"})
	if plain.PrimaryDiagnosis != "Acute Gastroenteritis" || plain.ReferralNeeded {
		t.Fatalf("unexpected result: %+v", plain)
	}
	if hasMedication(plain, "Ciprofloxacin") {
		t.Error("antibiotic should only be added on escalation")
	}

	bloody := Evaluate(Input{Symptoms: "diarrhea with blood"})
	if !bloody.ReferralNeeded || !hasMedication(bloody, "Ciprofloxacin") {
		t.Fatalf("expected escalation with antibiotic: %+v", bloody)
	}
}

// "severe" anywhere in the text escalates the GI path, even when it
// describes a different symptom; the later headache rule then wins the
// primary diagnosis but the GI referral flags stay.
func TestEvaluate_GastroSevereMatchesWholeText(t *testing.T) {
	r := Evaluate(Input{Symptoms: "vomiting and severe headache"})

	if r.PrimaryDiagnosis != "Severe Headache - Requires Evaluation" {
		t.Fatalf("got %q", r.PrimaryDiagnosis)
	}
	if !hasMedication(r, "Ciprofloxacin") {
		t.Error("expected GI escalation antibiotic to remain")
	}
}

func TestEvaluate_Headache(t *testing.T) {
	tension := Evaluate(Input{Symptoms: "dull headache after work"})
	if tension.PrimaryDiagnosis != "Tension Headache" {
		t.Errorf("got %q", tension.PrimaryDiagnosis)
	}

	severe := Evaluate(Input{Symptoms: "sudden headache with blurred vision"})
	if severe.PrimaryDiagnosis != "Severe Headache - Requires Evaluation" || severe.ReferralSpecialty != "Neurology" {
		t.Errorf("unexpected: %+v", severe)
	}
}

func TestEvaluate_Diabetes(t *testing.T) {
	r := Evaluate(Input{Symptoms: "excessive thirst and frequent urination"})
	if r.PrimaryDiagnosis != "Possible Diabetes Mellitus - Screening Recommended" {
		t.Fatalf("got %q", r.PrimaryDiagnosis)
	}
}

func TestEvaluate_Hypertension(t *testing.T) {
	tests := []struct {
		bp     string
		expect string
	}{
		{"150/95", "Hypertension - Elevated Blood Pressure"},
		{"140/90", DefaultDiagnosis},
		{"abc/def", DefaultDiagnosis},
		{"150", DefaultDiagnosis},
		{" 160 / 100 ", "Hypertension - Elevated Blood Pressure"},
	}

	for _, tt := range tests {
		t.Run(tt.bp, func(t *testing.T) {
			r := Evaluate(Input{Symptoms: "dizzy", VitalSigns: vitals("", tt.bp, "", "")})
			if r.PrimaryDiagnosis != tt.expect {
				t.Fatalf("got %q, want %q", r.PrimaryDiagnosis, tt.expect)
			}
		})
	}
}

func TestEvaluate_HypertensionOverridesEarlierRules(t *testing.T) {
	r := Evaluate(Input{Symptoms: "mild headache", VitalSigns: vitals("", "165/100", "", "")})
	if r.PrimaryDiagnosis != "Hypertension - Elevated Blood Pressure" {
		t.Fatalf("got %q", r.PrimaryDiagnosis)
	}
}

func TestEvaluate_TyphoidAndJaundice(t *testing.T) {
	typhoid := Evaluate(Input{Symptoms: "fever with abdominal pain"})
	if typhoid.PrimaryDiagnosis != "Typhoid Fever (Suspected)" {
		t.Errorf("got %q", typhoid.PrimaryDiagnosis)
	}

	jaundice := Evaluate(Input{Symptoms: "yellow eyes and dark urine"})
	if jaundice.PrimaryDiagnosis != "Jaundice - Possible Liver Dysfunction" {
		t.Errorf("got %q", jaundice.PrimaryDiagnosis)
	}
}

func TestEvaluate_MedicalHistoryFlags(t *testing.T) {
	r := Evaluate(Input{Symptoms: "cough", MedicalHistory: "Type 2 Diabetes, asthma since childhood"})

	var diabetes, asthma bool
	for _, f := range r.RedFlags {
		diabetes = diabetes || strings.Contains(f, "diabetes")
		asthma = asthma || strings.Contains(f, "asthma")
	}
	if !diabetes || !asthma {
		t.Fatalf("expected history red flags, got %v", r.RedFlags)
	}
	if r.PrimaryDiagnosis != "Common Cold - Upper Respiratory Infection" {
		t.Errorf("history must not change the diagnosis, got %q", r.PrimaryDiagnosis)
	}
}

func TestEvaluate_HistoryFragmentsAreSpecific(t *testing.T) {
	tests := []struct {
		history string
		want    bool
	}{
		{"occasional heartburn", false},
		{"heartbeat feels normal", false},
		{"Coronary artery disease", true},
		{"mild heart failure since 2019", true},
	}

	for _, tt := range tests {
		t.Run(tt.history, func(t *testing.T) {
			r := Evaluate(Input{Symptoms: "cough", MedicalHistory: tt.history})
			got := false
			for _, f := range r.RedFlags {
				got = got || strings.Contains(f, "heart disease")
			}
			if got != tt.want {
				t.Fatalf("heart disease flag = %v, want %v (flags %v)", got, tt.want, r.RedFlags)
			}
		})
	}
}

func TestEvaluate_MultilingualSymptoms(t *testing.T) {
	tests := map[diagnosis.Language]string{
		diagnosis.LanguageHindi:   "बुखार और सिरदर्द",
		diagnosis.LanguageTamil:   "காய்ச்சல் மற்றும் தலைவலி",
		diagnosis.LanguageTelugu:  "జ్వరం మరియు తలనొప్పి",
		diagnosis.LanguageBengali: "জ্বর এবং মাথাব্যথা",
	}

	for lang, symptoms := range tests {
		t.Run(string(lang), func(t *testing.T) {
			r := Evaluate(Input{Symptoms: symptoms, VitalSigns: vitals("101", "", "", ""), Language: lang})
			// Fever fires first, then the headache rule overrides it.
			if r.PrimaryDiagnosis != "Tension Headache" {
				t.Fatalf("got %q", r.PrimaryDiagnosis)
			}
			if r.PatientExplanation != Explain(lang, r.PrimaryDiagnosis) {
				t.Errorf("explanation not localized: %q", r.PatientExplanation)
			}
		})
	}
}

func TestExplain_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	got := Explain("fr", "Tension Headache")
	want := Explain(diagnosis.LanguageEnglish, "Tension Headache")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	r := Evaluate(Input{Symptoms: "headache", Language: "xx"})
	if r.PatientExplanation != want {
		t.Fatalf("got %q, want %q", r.PatientExplanation, want)
	}
}

func TestEvaluate_ResultAlwaysComplete(t *testing.T) {
	inputs := []Input{
		{},
		{Symptoms: "   "},
		{Symptoms: "fever cough diarrhea blood headache thirst typhoid jaundice body ache", VitalSigns: vitals("103.9", "200/120", "119", "91")},
		{Symptoms: "severe everything", VitalSigns: vitals("NaN", "/", "-5", "abc")},
		{Symptoms: "x", VitalSigns: vitals("1e400", "999999999999999999999/1", "", "")},
	}

	for i, in := range inputs {
		r := Evaluate(in)
		if r.ConfidenceScore < 0 || r.ConfidenceScore > 1 {
			t.Errorf("input %d: confidence %v out of range", i, r.ConfidenceScore)
		}
		if r.PrimaryDiagnosis == "" || r.PatientExplanation == "" {
			t.Errorf("input %d: missing fields: %+v", i, r)
		}

		raw, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("input %d: marshal: %v", i, err)
		}
		if strings.Contains(string(raw), "null") {
			t.Errorf("input %d: expected no null fields, got %s", i, raw)
		}
	}
}

func TestEvaluate_FreshResultPerCall(t *testing.T) {
	a := Evaluate(Input{Symptoms: "diarrhea with blood"})
	a.RedFlags = append(a.RedFlags, "mutated")

	b := Evaluate(Input{Symptoms: "diarrhea with blood"})
	for _, f := range b.RedFlags {
		if f == "mutated" {
			t.Fatal("results share state across calls")
		}
	}
}

func TestRuleNames_Order(t *testing.T) {
	want := []string{"fever", "respiratory", "gastrointestinal", "headache", "diabetes", "hypertension", "typhoid", "jaundice", "body_ache"}
	got := RuleNames()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
}
