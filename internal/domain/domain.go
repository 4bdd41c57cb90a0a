package domain

import "time"

type Role string

const (
	RoleClinician Role = "clinician"
	RolePatient   Role = "patient"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleClinician, RolePatient:
		return true
	}
	return false
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

// Claims identify the caller. Subject is the clinician username or the patient ID.
type Claims struct {
	Subject string `json:"sub"`
	Role    Role   `json:"role"`
}

// CanReadPatient reports whether the caller may see a patient's history.
func (c *Claims) CanReadPatient(patientID string) bool {
	if c == nil {
		return false
	}
	switch c.Role {
	case RoleClinician:
		return true
	case RolePatient:
		return c.Subject == patientID
	}
	return false
}
