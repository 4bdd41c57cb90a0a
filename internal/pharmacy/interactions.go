// Package pharmacy holds the static drug interaction and dosage tables.
package pharmacy

import "strings"

type Severity string

const (
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
	SeverityLow      Severity = "low"
)

type Interaction struct {
	Drugs       []string `json:"drugs"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

type interactionInfo struct {
	severity    Severity
	description string
}

type drugPair struct{ a, b string }

// interactionTable is keyed by one ordering only; lookups try both.
var interactionTable = map[drugPair]interactionInfo{
	{"aspirin", "warfarin"}:       {SeverityHigh, "Increased risk of serious bleeding"},
	{"ibuprofen", "warfarin"}:     {SeverityHigh, "Increased risk of gastrointestinal bleeding"},
	{"aspirin", "ibuprofen"}:      {SeverityModerate, "Ibuprofen may reduce the cardioprotective effect of aspirin"},
	{"ciprofloxacin", "warfarin"}: {SeverityHigh, "Ciprofloxacin can raise warfarin levels and bleeding risk"},
	{"metformin", "alcohol"}:      {SeverityModerate, "Increased risk of lactic acidosis"},
	{"paracetamol", "alcohol"}:    {SeverityModerate, "Increased risk of liver damage"},
	{"amlodipine", "simvastatin"}: {SeverityModerate, "Higher simvastatin exposure; limit simvastatin to 20mg"},
	{"ciprofloxacin", "zinc"}:     {SeverityLow, "Zinc reduces ciprofloxacin absorption; separate doses by 2 hours"},
	{"lisinopril", "ibuprofen"}:   {SeverityModerate, "NSAIDs blunt the blood pressure effect and can impair kidney function"},
	{"clopidogrel", "omeprazole"}: {SeverityModerate, "Omeprazole reduces clopidogrel activation"},
}

// lookupInteraction checks both orderings of the pair.
func lookupInteraction(a, b string) (interactionInfo, bool) {
	if info, ok := interactionTable[drugPair{a, b}]; ok {
		return info, true
	}
	info, ok := interactionTable[drugPair{b, a}]
	return info, ok
}

func normalizeDrug(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CheckInteractions returns every known interaction among the given
// medications. Names are case-insensitive and duplicates are ignored.
// An empty result means no known interaction.
func CheckInteractions(medications []string) []Interaction {
	seen := make(map[string]bool, len(medications))
	drugs := make([]string, 0, len(medications))
	for _, m := range medications {
		n := normalizeDrug(m)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		drugs = append(drugs, n)
	}

	found := []Interaction{}
	for i := 0; i < len(drugs); i++ {
		for j := i + 1; j < len(drugs); j++ {
			info, ok := lookupInteraction(drugs[i], drugs[j])
			if !ok {
				continue
			}
			found = append(found, Interaction{
				Drugs:       []string{drugs[i], drugs[j]},
				Severity:    info.severity,
				Description: info.description,
			})
		}
	}
	return found
}
