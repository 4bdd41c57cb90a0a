package llm

import (
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
)

var languageNames = map[diagnosis.Language]string{
	diagnosis.LanguageEnglish: "English",
	diagnosis.LanguageHindi:   "Hindi",
	diagnosis.LanguageTamil:   "Tamil",
	diagnosis.LanguageTelugu:  "Telugu",
	diagnosis.LanguageBengali: "Bengali",
}

const resultSchema = `{
  "primary_diagnosis": string,
  "confidence_score": number between 0 and 1,
  "differential_diagnoses": [{"condition": string, "probability": number between 0 and 1, "reasoning": string}],
  "immediate_actions": [string],
  "treatment_protocol": {
    "medications": [{"name": string, "dosage": string, "frequency": string, "duration": string}],
    "lifestyle_advice": [string],
    "follow_up": string
  },
  "referral_needed": boolean,
  "referral_specialty": string,
  "red_flags": [string],
  "patient_explanation": string
}`

// buildPrompt renders the intake as a single instruction. Empty fields are
// left out rather than sent as "unknown".
func buildPrompt(req *diagnosis.Request) string {
	lang := languageNames[diagnosis.ParseLanguage(req.Language)]
	if lang == "" {
		lang = "English"
	}

	var b strings.Builder
	b.WriteString("You are a clinical triage assistant for rural primary health centres. ")
	b.WriteString("Assess the patient below and answer with a single JSON object, no prose and no markdown, using exactly this shape:\n")
	b.WriteString(resultSchema)
	b.WriteString("\n\nPatient:\n")

	line := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			fmt.Fprintf(&b, "- %s: %s\n", label, v)
		}
	}
	line("Symptoms", req.Symptoms)
	line("Age", string(req.Age))
	line("Gender", req.Gender)
	line("Weight (kg)", string(req.Weight))
	line("Temperature (F)", string(req.VitalSigns.Temperature))
	line("Blood pressure", req.VitalSigns.BloodPressure)
	line("Heart rate (bpm)", string(req.VitalSigns.HeartRate))
	line("Oxygen saturation (%)", string(req.VitalSigns.OxygenLevel))
	line("Medical history", req.MedicalHistory)
	line("Current medications", strings.Join(req.Medications, ", "))

	fmt.Fprintf(&b, "\nWrite patient_explanation in %s using plain words. All other fields in English. ", lang)
	b.WriteString("Recommend a referral whenever any red flag is present.")
	return b.String()
}
