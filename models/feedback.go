package models

type (
	// Feedback is the body of POST /v1/feedback
	Feedback struct {
		InstanceID string `json:"instanceId"`
		Type       string `json:"type"`
		Message    string `json:"message"`
		UserAgent  string `json:"userAgent,omitempty"`
		Timestamp  int64  `json:"timestamp"`
	}

	// FeedbackReceipt is returned for every accepted feedback, stored or not
	FeedbackReceipt struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
)
