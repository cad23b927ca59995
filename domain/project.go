package domain

import (
	"strings"
	"time"
)

// ProjectStatus is the lifecycle stage of a project.
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on-hold"
)

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

// Project groups cards.
type Project struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description,omitempty"`
	StartDate        *time.Time    `json:"start_date,omitempty"`
	EstimatedEndDate *time.Time    `json:"estimated_end_date,omitempty"`
	Status           ProjectStatus `json:"status"`
	Progress         int           `json:"progress"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Validate normalises defaults and rejects invalid fields.
func (p *Project) Validate() error {
	if p == nil {
		return ErrInvalidPayload
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Invalid("project name must not be empty")
	}
	if p.Status == "" {
		p.Status = ProjectPlanning
	}
	if !p.Status.Valid() {
		return Invalid("unknown project status")
	}
	if p.Progress < 0 || p.Progress > 100 {
		return Invalid("progress must be between 0 and 100")
	}
	if p.StartDate != nil && p.EstimatedEndDate != nil && p.EstimatedEndDate.Before(*p.StartDate) {
		return Invalid("estimated end date precedes start date")
	}
	return nil
}
