package models

import "github.com/drk-nordrhein/selbstauskunft/answer"

type (
	// Error represents any erroneous response
	Error struct {
		Error      string             `json:"error"`
		Violations []answer.Violation `json:"violations,omitempty"`
	}
)
