package service

import (
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/pharmacy"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/metrics"
)

// PharmacyService fronts the static interaction and dosage tables.
type PharmacyService struct {
	metrics *metrics.Collector
}

func NewPharmacyService(m *metrics.Collector) *PharmacyService {
	return &PharmacyService{metrics: m}
}

func (s *PharmacyService) CheckInteractions(medications []string) []pharmacy.Interaction {
	found := pharmacy.CheckInteractions(medications)
	for _, i := range found {
		s.metrics.InteractionsFound.WithLabelValues(string(i.Severity)).Inc()
	}
	return found
}

func (s *PharmacyService) CalculateDosage(medication, age, weight, gender string) pharmacy.Dosage {
	return pharmacy.CalculateDosage(medication, age, weight, gender)
}
