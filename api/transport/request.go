package transport

import "time"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileUpdateRequest struct {
	Name     *string           `json:"name" validate:"omitempty,min=1,max=120"`
	Avatar   *string           `json:"avatar" validate:"omitempty,max=512"`
	Metadata map[string]string `json:"metadata"`
}

type ProjectRequest struct {
	Name             string     `json:"name" validate:"required,max=200"`
	Description      string     `json:"description" validate:"max=4000"`
	StartDate        *time.Time `json:"start_date"`
	EstimatedEndDate *time.Time `json:"estimated_end_date"`
	Status           string     `json:"status" validate:"omitempty,oneof=planning in-progress completed on-hold"`
	Progress         int        `json:"progress" validate:"min=0,max=100"`
}

type AssigneeRequest struct {
	Name   string `json:"name" validate:"max=120"`
	Avatar string `json:"avatar" validate:"max=512"`
}

type SubtasksRequest struct {
	Completed int `json:"completed" validate:"min=0,ltefield=Total"`
	Total     int `json:"total" validate:"min=0"`
}

type CardCreateRequest struct {
	Column                  string          `json:"column" validate:"required"`
	Title                   string          `json:"title" validate:"required,max=200"`
	Description             string          `json:"description" validate:"max=4000"`
	Priority                string          `json:"priority"`
	Assignee                AssigneeRequest `json:"assignee"`
	Tags                    []string        `json:"tags" validate:"max=20,dive,required,max=40"`
	EstimatedCompletionDate *time.Time      `json:"estimated_completion_date"`
	ProjectID               string          `json:"project_id"`
}

type CardUpdateRequest struct {
	Title                   *string          `json:"title" validate:"omitempty,max=200"`
	Description             *string          `json:"description" validate:"omitempty,max=4000"`
	Priority                *string          `json:"priority"`
	Assignee                *AssigneeRequest `json:"assignee"`
	Tags                    *[]string        `json:"tags" validate:"omitempty,max=20,dive,required,max=40"`
	Subtasks                *SubtasksRequest `json:"subtasks"`
	Attachments             *int             `json:"attachments" validate:"omitempty,min=0"`
	Dependencies            *[]int64         `json:"dependencies"`
	Blocked                 *bool            `json:"blocked"`
	EstimatedCompletionDate *time.Time       `json:"estimated_completion_date"`
	ClearEstimate           bool             `json:"clear_estimate"`
}

type MoveRequest struct {
	Column string `json:"column" validate:"required"`
}

type ColumnRequest struct {
	Title string `json:"title" validate:"required,max=60"`
}
