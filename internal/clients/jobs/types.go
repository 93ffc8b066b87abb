package jobs

import "time"

// OperationResponse is the job service's representation of an operation
type OperationResponse struct {
	ID           string     `json:"id"`
	RelativeID   string     `json:"relativeId"`
	Description  string     `json:"description"`
	State        string     `json:"state"`
	Created      *Stamp     `json:"created,omitempty"`
	LastModified *Stamp     `json:"lastModified,omitempty"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
}

// Stamp records who changed the resource and when
type Stamp struct {
	Username string    `json:"username"`
	Time     time.Time `json:"time"`
}

// ProjectResponse is the job service's representation of a project
type ProjectResponse struct {
	ID                 string `json:"id"`
	RelativeID         string `json:"relativeId"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	Type               string `json:"type"`
	UnifiedDatasetName string `json:"unifiedDatasetName"`
}

// ErrorResponse is the job service's error body
type ErrorResponse struct {
	Status  int    `json:"status"`
	Class   string `json:"class"`
	Message string `json:"message"`
}
