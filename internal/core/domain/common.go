package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewAuditFields stamps both timestamps with now.
func NewAuditFields(now time.Time) AuditFields {
	return AuditFields{CreatedAt: now, UpdatedAt: now}
}

// Touched returns a copy with UpdatedAt advanced to now.
func (a AuditFields) Touched(now time.Time) AuditFields {
	return AuditFields{CreatedAt: a.CreatedAt, UpdatedAt: now}
}
