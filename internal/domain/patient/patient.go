package patient

import (
	"strings"
	"time"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

// ParseGender lower-cases the input; empty input maps to GenderUnknown.
func ParseGender(raw string) Gender {
	g := Gender(strings.ToLower(strings.TrimSpace(raw)))
	if g == "" {
		return GenderUnknown
	}
	return g
}

// MaxIDLength bounds patient IDs everywhere they are stored.
const MaxIDLength = 64

// Patient IDs are assigned by the intake client (e.g. a clinic card number),
// not generated here.
type Patient struct {
	ID        string    `gorm:"column:id;type:varchar(64);primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name    string `gorm:"column:name;type:varchar(200);not null"`
	Age     int    `gorm:"column:age"`
	Gender  Gender `gorm:"column:gender;type:varchar(20);not null"`
	Contact string `gorm:"column:contact;type:varchar(100)"` // PHI
}

func (Patient) TableName() string {
	return "clinical.patients"
}

type RegisterPatientCommand struct {
	PatientID string
	Name      string
	Age       int
	Gender    Gender
	Contact   string
}
