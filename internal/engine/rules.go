package engine

import "github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"

type rule struct {
	name  string
	match func(ev *evaluation) bool
	apply func(ev *evaluation)
}

// chain is evaluated top to bottom. The order is part of the contract:
// several rules can fire for one input and the last writer wins.
var chain = []rule{
	{name: "fever", match: matchFever, apply: applyFever},
	{name: "respiratory", match: keyword(catRespiratory), apply: applyRespiratory},
	{name: "gastrointestinal", match: keyword(catGastro), apply: applyGastro},
	{name: "headache", match: keyword(catHeadache), apply: applyHeadache},
	{name: "diabetes", match: keyword(catDiabetes), apply: applyDiabetes},
	{name: "hypertension", match: matchHypertension, apply: applyHypertension},
	{name: "typhoid", match: matchTyphoid, apply: applyTyphoid},
	{name: "jaundice", match: keyword(catJaundice), apply: applyJaundice},
	{name: "body_ache", match: matchBodyAche, apply: applyBodyAche},
}

// RuleNames lists the chain in evaluation order.
func RuleNames() []string {
	names := make([]string, len(chain))
	for i, r := range chain {
		names[i] = r.name
	}
	return names
}

func keyword(c category) func(*evaluation) bool {
	return func(ev *evaluation) bool { return matches(ev.text, c) }
}

func paracetamol(dosage, frequency, duration string) diagnosis.Medication {
	return diagnosis.Medication{Name: "Paracetamol", Dosage: dosage, Frequency: frequency, Duration: duration}
}

// A recorded temperature of 100°F or more counts as fever even when the
// patient did not describe one.
func matchFever(ev *evaluation) bool {
	return matches(ev.text, catFever) || (ev.hasTemperature && ev.temperature >= feverF)
}

func applyFever(ev *evaluation) {
	r := ev.result
	switch {
	case ev.hasTemperature && ev.temperature > highFeverF:
		r.PrimaryDiagnosis = "High Fever - Possible Serious Infection"
		r.ConfidenceScore = 0.7
		r.ReferralNeeded = true
		r.ReferralSpecialty = "Internal Medicine"
		r.TreatmentProtocol.Medications = []diagnosis.Medication{
			paracetamol("650mg", "Every 6 hours", "3 days"),
		}
		r.ImmediateActions = []string{
			"Take paracetamol to bring the temperature down",
			"Get a complete blood count (CBC) test",
			"See a doctor within 24 hours",
		}
		r.RedFlags = append(r.RedFlags, "Temperature above 103°F")
		r.DifferentialDiagnoses = append(r.DifferentialDiagnoses, diagnosis.Differential{
			Condition: "Viral Fever", Probability: 0.4, Reasoning: "Most common cause of acute high fever",
		})

		if matches(ev.text, catDengue) {
			r.DifferentialDiagnoses = append(r.DifferentialDiagnoses, diagnosis.Differential{
				Condition: "Dengue Fever", Probability: 0.6, Reasoning: "High fever with joint pain, rash or eye pain",
			})
			r.ImmediateActions = append(r.ImmediateActions, "Dengue NS1 antigen test and platelet count")
			r.RedFlags = append(r.RedFlags, "Watch for bleeding gums, black stools or severe abdominal pain")
		}
		if matches(ev.text, catMalaria) {
			r.DifferentialDiagnoses = append(r.DifferentialDiagnoses, diagnosis.Differential{
				Condition: "Malaria", Probability: 0.55, Reasoning: "High fever with chills or sweating",
			})
			r.ImmediateActions = append(r.ImmediateActions, "Peripheral blood smear for malaria parasites")
		}

	case ev.hasTemperature && ev.temperature >= feverF:
		r.PrimaryDiagnosis = "Fever - Likely Viral Infection"
		r.ConfidenceScore = 0.65
		r.TreatmentProtocol.Medications = []diagnosis.Medication{
			paracetamol("500mg", "Every 6-8 hours", "3 days"),
		}
		r.ImmediateActions = []string{
			"Check temperature every 4-6 hours",
			"Take paracetamol if temperature exceeds 100°F",
		}
		r.TreatmentProtocol.LifestyleAdvice = append(r.TreatmentProtocol.LifestyleAdvice, "Drink plenty of fluids")
		r.TreatmentProtocol.FollowUp = "See a doctor if fever persists beyond 3 days"
		r.DifferentialDiagnoses = append(r.DifferentialDiagnoses,
			diagnosis.Differential{Condition: "Viral Fever", Probability: 0.6, Reasoning: "Moderate fever without localizing signs"},
			diagnosis.Differential{Condition: "Influenza", Probability: 0.25, Reasoning: "Fever is a leading influenza symptom"},
		)

	default:
		r.PrimaryDiagnosis = "Mild Fever - Monitor Temperature"
		r.ConfidenceScore = 0.5
		r.ImmediateActions = []string{
			"Measure temperature with a thermometer",
			"Take paracetamol if temperature exceeds 100°F",
		}
		r.TreatmentProtocol.FollowUp = "See a doctor if fever persists beyond 3 days"
	}
}

func applyRespiratory(ev *evaluation) {
	r := ev.result
	if matches(ev.text, catBreathing) {
		r.PrimaryDiagnosis = "Suspected Pneumonia - Lower Respiratory Tract Infection"
		r.ConfidenceScore = 0.65
		r.ReferralNeeded = true
		r.ReferralSpecialty = "Pulmonology"
		r.TreatmentProtocol.Medications = []diagnosis.Medication{
			{Name: "Amoxicillin", Dosage: "500mg", Frequency: "3 times daily", Duration: "5-7 days"},
		}
		r.ImmediateActions = []string{
			"Chest X-ray",
			"Check oxygen saturation",
			"See a doctor within 24 hours",
		}
		r.RedFlags = append(r.RedFlags, "Breathing difficulty")
		r.DifferentialDiagnoses = append(r.DifferentialDiagnoses,
			diagnosis.Differential{Condition: "Acute Bronchitis", Probability: 0.3, Reasoning: "Cough with chest symptoms"},
			diagnosis.Differential{Condition: "Asthma Exacerbation", Probability: 0.2, Reasoning: "Breathlessness or wheeze"},
		)
		return
	}

	r.PrimaryDiagnosis = "Common Cold - Upper Respiratory Infection"
	r.ConfidenceScore = 0.7
	r.TreatmentProtocol.Medications = []diagnosis.Medication{
		{Name: "Cetirizine", Dosage: "10mg", Frequency: "Once daily at night", Duration: "3-5 days"},
		{Name: "Steam inhalation", Dosage: "5-10 minutes", Frequency: "2-3 times daily", Duration: "5 days"},
	}
	r.ImmediateActions = []string{
		"Rest and drink warm fluids",
		"Gargle with warm salt water",
	}
	r.DifferentialDiagnoses = append(r.DifferentialDiagnoses, diagnosis.Differential{
		Condition: "Allergic Rhinitis", Probability: 0.2, Reasoning: "Sneezing and congestion without fever",
	})
}

func applyGastro(ev *evaluation) {
	r := ev.result
	r.PrimaryDiagnosis = "Acute Gastroenteritis"
	r.ConfidenceScore = 0.7
	r.TreatmentProtocol.Medications = []diagnosis.Medication{
		{Name: "ORS", Dosage: "200ml", Frequency: "After each loose stool", Duration: "Until diarrhea stops"},
		{Name: "Zinc", Dosage: "20mg", Frequency: "Once daily", Duration: "10-14 days"},
	}
	r.ImmediateActions = []string{
		"Start ORS immediately",
		"Watch for signs of dehydration",
	}
	r.TreatmentProtocol.LifestyleAdvice = append(r.TreatmentProtocol.LifestyleAdvice,
		"Eat light, easily digestible food (rice, banana, curd)")

	if matches(ev.text, catGastroAlarm) {
		r.ReferralNeeded = true
		r.ReferralSpecialty = "Gastroenterology"
		r.RedFlags = append(r.RedFlags, "Blood in stool or severe dehydration risk")
		r.TreatmentProtocol.Medications = append(r.TreatmentProtocol.Medications, diagnosis.Medication{
			Name: "Ciprofloxacin", Dosage: "500mg", Frequency: "Twice daily", Duration: "3 days",
		})
	}
}

func applyHeadache(ev *evaluation) {
	r := ev.result
	if matches(ev.text, catHeadSevere) {
		r.PrimaryDiagnosis = "Severe Headache - Requires Evaluation"
		r.ConfidenceScore = 0.6
		r.ReferralNeeded = true
		r.ReferralSpecialty = "Neurology"
		r.ImmediateActions = []string{
			"See a doctor promptly",
			"Avoid driving until evaluated",
		}
		r.RedFlags = append(r.RedFlags, "Severe or sudden-onset headache")
		return
	}

	r.PrimaryDiagnosis = "Tension Headache"
	r.ConfidenceScore = 0.65
	r.TreatmentProtocol.Medications = []diagnosis.Medication{
		paracetamol("500mg", "Every 6 hours as needed", "2-3 days"),
	}
	r.ImmediateActions = []string{
		"Rest in a quiet, dark room",
		"Limit screen time",
	}
	r.TreatmentProtocol.LifestyleAdvice = append(r.TreatmentProtocol.LifestyleAdvice, "Maintain regular sleep hours")
}

func applyDiabetes(ev *evaluation) {
	r := ev.result
	r.PrimaryDiagnosis = "Possible Diabetes Mellitus - Screening Recommended"
	r.ConfidenceScore = 0.55
	r.ReferralNeeded = true
	r.ReferralSpecialty = "Endocrinology"
	r.ImmediateActions = []string{
		"Fasting blood glucose test",
		"HbA1c test",
	}
	r.TreatmentProtocol.LifestyleAdvice = append(r.TreatmentProtocol.LifestyleAdvice,
		"Reduce sugar and refined carbohydrate intake")
}

// Malformed readings are skipped silently.
func matchHypertension(ev *evaluation) bool {
	s, ok := ev.systolic()
	return ok && s > hypertensiveSystolic
}

func applyHypertension(ev *evaluation) {
	r := ev.result
	r.PrimaryDiagnosis = "Hypertension - Elevated Blood Pressure"
	r.ConfidenceScore = 0.7
	r.ReferralNeeded = true
	r.ReferralSpecialty = "Cardiology"
	r.ImmediateActions = []string{
		"Recheck blood pressure after 5 minutes of rest",
		"Monitor blood pressure daily",
	}
	r.TreatmentProtocol.LifestyleAdvice = append(r.TreatmentProtocol.LifestyleAdvice,
		"Reduce salt intake", "Exercise for 30 minutes daily")
	r.RedFlags = append(r.RedFlags, "Systolic blood pressure above 140 mmHg")
}

func matchTyphoid(ev *evaluation) bool {
	return matches(ev.text, catTyphoid) ||
		(matches(ev.text, catFever) && matches(ev.text, catAbdominal))
}

func applyTyphoid(ev *evaluation) {
	r := ev.result
	r.PrimaryDiagnosis = "Typhoid Fever (Suspected)"
	r.ConfidenceScore = 0.6
	r.ReferralNeeded = true
	r.ReferralSpecialty = "Internal Medicine"
	r.ImmediateActions = []string{
		"Widal test",
		"Blood culture",
	}
	r.TreatmentProtocol.LifestyleAdvice = append(r.TreatmentProtocol.LifestyleAdvice, "Drink only boiled or bottled water")
}

func applyJaundice(ev *evaluation) {
	r := ev.result
	r.PrimaryDiagnosis = "Jaundice - Possible Liver Dysfunction"
	r.ConfidenceScore = 0.65
	r.ReferralNeeded = true
	r.ReferralSpecialty = "Gastroenterology"
	r.ImmediateActions = []string{
		"Liver function test",
		"Serum bilirubin test",
	}
	r.TreatmentProtocol.LifestyleAdvice = append(r.TreatmentProtocol.LifestyleAdvice, "Avoid fatty foods and alcohol")
}

// Body ache only explains the picture when nothing else did.
func matchBodyAche(ev *evaluation) bool {
	return ev.result.PrimaryDiagnosis == DefaultDiagnosis && matches(ev.text, catBodyAche)
}

func applyBodyAche(ev *evaluation) {
	r := ev.result
	r.PrimaryDiagnosis = "Myalgia - Generalized Body Ache"
	r.ConfidenceScore = 0.5
	r.TreatmentProtocol.Medications = []diagnosis.Medication{
		paracetamol("500mg", "Every 6-8 hours as needed", "2-3 days"),
	}
	r.ImmediateActions = []string{
		"Rest and gentle stretching",
		"Warm compress on sore muscles",
	}
}
