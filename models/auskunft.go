package models

import (
	"github.com/drk-nordrhein/selbstauskunft/answer"
	"github.com/drk-nordrhein/selbstauskunft/schema"
)

type (
	// Auskunft is the body of POST /v1/auskunft and POST /v1/auskunft/code.
	// Answers stay untyped until the validator has looked at them.
	Auskunft struct {
		answer.Person
		Answers    map[string]interface{} `json:"answers"`
		Deviations map[string]string      `json:"deviations,omitempty"`
	}

	// SchemaQuestion describes one question to an API client
	SchemaQuestion struct {
		ID            string            `json:"id"`
		Text          string            `json:"text"`
		Type          schema.Type       `json:"type"`
		Required      bool              `json:"required"`
		ConditionalOn *schema.Condition `json:"conditionalOn,omitempty"`
		AllowedValues []string          `json:"allowedValues,omitempty"`
	}

	// SchemaSection groups SchemaQuestions
	SchemaSection struct {
		Section     string           `json:"section"`
		Title       string           `json:"title"`
		Description string           `json:"description"`
		Questions   []SchemaQuestion `json:"questions"`
	}

	// SchemaDescription is the response from 'GET /v1/auskunft'
	SchemaDescription struct {
		Name           string            `json:"name"`
		Version        string            `json:"version"`
		SchemaVersion  string            `json:"schemaVersion"`
		Description    string            `json:"description"`
		Endpoints      map[string]string `json:"endpoints"`
		RequiredFields map[string]string `json:"requiredFields"`
		Sections       []SchemaSection   `json:"sections"`
	}

	// ResumeCode is the response from 'POST /v1/auskunft/code'
	ResumeCode struct {
		Code string `json:"code"`
		URL  string `json:"url"`
	}
)
