package domain

type ProjectType string

const (
	ProjectCategorization ProjectType = "CATEGORIZATION"
	ProjectDedup          ProjectType = "DEDUP"
	ProjectSchemaMapping  ProjectType = "SCHEMA_MAPPING"
)

// Project is a read-only snapshot of a remote project that owns operations
type Project struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Type ProjectType `json:"type"`
}
