package v1

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/service"
	"github.com/gin-gonic/gin"
)

// HealthChecker reports database reachability.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type handlers struct {
	diagnosis *service.DiagnosisService
	patients  *service.PatientService
	pharmacy  *service.PharmacyService
	auth      *service.AuthService
	db        HealthChecker
	version   string
}

func (h *handlers) health(c *gin.Context) {
	body := gin.H{
		"status":          "healthy",
		"version":         h.version,
		"model_available": h.diagnosis.ModelAvailable(),
		"database":        "disabled",
	}
	if h.db == nil {
		c.JSON(http.StatusOK, body)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		body["status"] = "degraded"
		body["database"] = "unreachable"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["database"] = "connected"
	c.JSON(http.StatusOK, body)
}

type registerPatientRequest struct {
	PatientID string            `json:"patient_id"`
	Name      string            `json:"name"`
	Age       diagnosis.Reading `json:"age"`
	Gender    string            `json:"gender"`
	Contact   string            `json:"contact"`
}

type patientView struct {
	PatientID string         `json:"patient_id"`
	Name      string         `json:"name"`
	Age       int            `json:"age"`
	Gender    patient.Gender `json:"gender"`
	Contact   string         `json:"contact,omitempty"`
}

func (h *handlers) registerPatient(c *gin.Context) {
	var req registerPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	age := -1
	if f, ok := req.Age.Float(); ok {
		age = int(f)
	}

	p, token, err := h.patients.Register(c.Request.Context(), callerClaims(c), &patient.RegisterPatientCommand{
		PatientID: req.PatientID,
		Name:      req.Name,
		Age:       age,
		Gender:    patient.ParseGender(req.Gender),
		Contact:   req.Contact,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{
		"message": "Patient registered",
		"patient": patientView{
			PatientID: p.ID,
			Name:      p.Name,
			Age:       p.Age,
			Gender:    p.Gender,
			Contact:   p.Contact,
		},
		"token": token,
	})
}

func (h *handlers) history(c *gin.Context) {
	entries, err := h.patients.History(c.Request.Context(), callerClaims(c), c.Param("patient_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"history": entries})
}

func (h *handlers) diagnose(c *gin.Context) {
	var req diagnosis.Request
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.diagnosis.Diagnose(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{
		"source":                 out.Source,
		"diagnosis":              out.Diagnosis,
		"drug_interactions":      out.DrugInteractions,
		"dosage_recommendations": out.DosageRecommendations,
	})
}

type interactionRequest struct {
	Medications []string `json:"medications"`
}

func (h *handlers) checkInteractions(c *gin.Context) {
	var req interactionRequest
	if !bindJSON(c, &req) {
		return
	}

	found := h.pharmacy.CheckInteractions(req.Medications)
	respondOK(c, gin.H{
		"interactions": found,
		"safe":         len(found) == 0,
	})
}

type dosageRequest struct {
	Medication string            `json:"medication"`
	Age        diagnosis.Reading `json:"age"`
	Weight     diagnosis.Reading `json:"weight"`
	Gender     string            `json:"gender"`
}

func (h *handlers) calculateDosage(c *gin.Context) {
	var req dosageRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Medication) == "" {
		respondServiceError(c, &service.ValidationError{Fields: []string{"medication is required"}})
		return
	}

	d := h.pharmacy.CalculateDosage(req.Medication, string(req.Age), string(req.Weight), req.Gender)
	respondOK(c, gin.H{"dosage": d})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"token": pair})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *handlers) refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"token": pair})
}
