package models

type (
	// Info represents the response from 'GET /v1/info'
	Info struct {
		Name          string `json:"name"`
		Version       string `json:"version"`
		SchemaVersion string `json:"schemaVersion"`
	}
)
