package repository

import (
	"encoding/json"
	"strings"
	"time"
)

// Organisation owns the values framework blob that carries its operating
// environment and signal taxonomy.
type Organisation struct {
	ID              string  `gorm:"primaryKey;size:64"`
	Name            string  `gorm:"size:255"`
	ValuesFramework *string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SetValuesFramework stores v as JSON text. A nil v clears the blob.
func (o *Organisation) SetValuesFramework(v map[string]any) error {
	if v == nil {
		o.ValuesFramework = nil
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s := string(raw)
	o.ValuesFramework = &s
	return nil
}

// JobRole belongs to an organisation.
type JobRole struct {
	ID             string `gorm:"primaryKey;size:64"`
	OrganisationID string `gorm:"size:64;index"`
	Title          string `gorm:"size:255"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Application links a candidate to a job role.
type Application struct {
	ID          string `gorm:"primaryKey;size:64"`
	JobRoleID   string `gorm:"size:64;index"`
	CandidateID string `gorm:"size:64;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
