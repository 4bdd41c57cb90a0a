package pharmacy

import (
	"fmt"
	"strconv"
	"strings"
)

type AgeCategory string

const (
	AgeChild   AgeCategory = "child"
	AgeAdult   AgeCategory = "adult"
	AgeElderly AgeCategory = "elderly"
)

const (
	DefaultAge    = 30
	DefaultWeight = 60.0

	childMaxAge   = 12 // exclusive
	elderlyMinAge = 65 // exclusive
)

type Dosage struct {
	Medication        string      `json:"medication"`
	AgeCategory       AgeCategory `json:"age_category"`
	RecommendedDosage string      `json:"recommended_dosage"`
	Notes             []string    `json:"notes"`
	Age               int         `json:"age"`
	WeightKg          float64     `json:"weight"`
	Gender            string      `json:"gender"`
	Known             bool        `json:"known"`
}

type dosageEntry struct {
	// childMgPerKg > 0 means the child dose is weight-scaled and child is the
	// frequency suffix; otherwise child is the whole instruction.
	childMgPerKg float64
	child        string
	adult        string
	elderly      string
}

var dosageTable = map[string]dosageEntry{
	"paracetamol": {
		childMgPerKg: 15,
		child:        "every 6 hours, max 4 doses in 24 hours",
		adult:        "500-1000mg every 6 hours, max 4g per day",
		elderly:      "500mg every 6-8 hours, max 3g per day",
	},
	"ibuprofen": {
		childMgPerKg: 10,
		child:        "every 8 hours with food",
		adult:        "200-400mg every 6-8 hours with food, max 1200mg per day",
		elderly:      "200mg every 8 hours with food; monitor kidney function",
	},
	"amoxicillin": {
		childMgPerKg: 25,
		child:        "twice daily for 5-7 days",
		adult:        "500mg every 8 hours for 5-7 days",
		elderly:      "500mg every 8-12 hours; adjust for kidney function",
	},
	"cetirizine": {
		child:   "5mg once daily",
		adult:   "10mg once daily",
		elderly: "5mg once daily",
	},
	"ors": {
		child:   "50-100ml after each loose stool",
		adult:   "200-400ml after each loose stool",
		elderly: "200-400ml after each loose stool; watch for fluid overload",
	},
	"zinc": {
		child:   "10mg once daily for 10-14 days",
		adult:   "20mg once daily for 10-14 days",
		elderly: "20mg once daily for 10-14 days",
	},
	"ciprofloxacin": {
		child:   "Not recommended for children; consult a pediatrician",
		adult:   "500mg twice daily",
		elderly: "250-500mg twice daily; adjust for kidney function",
	},
	"metformin": {
		child:   "Not recommended for children; consult a pediatric endocrinologist",
		adult:   "500mg twice daily with meals",
		elderly: "500mg once daily with meals; monitor kidney function",
	},
	"aspirin": {
		child:   "Avoid in children (risk of Reye's syndrome)",
		adult:   "75-325mg once daily",
		elderly: "75mg once daily",
	},
}

// ParseAge returns DefaultAge for empty, non-numeric or negative input.
// Fractional ages are truncated.
func ParseAge(raw string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f != f || f < 0 || f > 150 {
		return DefaultAge
	}
	return int(f)
}

// ParseWeight returns DefaultWeight for empty, non-numeric or non-positive input.
func ParseWeight(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f != f || f <= 0 || f > 500 {
		return DefaultWeight
	}
	return f
}

func CategorizeAge(age int) AgeCategory {
	switch {
	case age < childMaxAge:
		return AgeChild
	case age > elderlyMinAge:
		return AgeElderly
	default:
		return AgeAdult
	}
}

// CalculateDosage looks up the per-age-group dose. It never fails: unparseable
// age and weight fall back to defaults, unknown medications get a generic
// instruction to consult a physician.
func CalculateDosage(medication, age, weight, gender string) Dosage {
	a := ParseAge(age)
	w := ParseWeight(weight)
	g := strings.ToLower(strings.TrimSpace(gender))
	cat := CategorizeAge(a)

	d := Dosage{
		Medication:  strings.TrimSpace(medication),
		AgeCategory: cat,
		Notes:       []string{},
		Age:         a,
		WeightKg:    w,
		Gender:      g,
	}

	entry, ok := dosageTable[normalizeDrug(medication)]
	if !ok {
		d.RecommendedDosage = fmt.Sprintf("Consult a physician for %s dosage", d.Medication)
		return d
	}
	d.Known = true

	switch cat {
	case AgeChild:
		if entry.childMgPerKg > 0 {
			d.RecommendedDosage = fmt.Sprintf("%.0fmg %s", w*entry.childMgPerKg, entry.child)
			d.Notes = append(d.Notes, fmt.Sprintf("Weight-based dose: %.0fmg/kg for %.1fkg", entry.childMgPerKg, w))
		} else {
			d.RecommendedDosage = entry.child
		}
	case AgeElderly:
		d.RecommendedDosage = entry.elderly
		d.Notes = append(d.Notes, "Start at the lowest effective dose")
	default:
		d.RecommendedDosage = entry.adult
	}

	if g == "female" && a >= childMaxAge && a <= 50 {
		d.Notes = append(d.Notes, "Confirm pregnancy and breastfeeding status before use")
	}
	return d
}
