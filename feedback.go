package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/drk-nordrhein/selbstauskunft/models"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/lib/pq"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// feedbackDDL creates the feedback table. A client retrying a submission
// sends the same instance id and timestamp, which the unique key turns into
// a 23505 on insert.
const feedbackDDL = `CREATE SCHEMA IF NOT EXISTS selbstauskunft;
CREATE TABLE IF NOT EXISTS selbstauskunft.feedback (
	id           uuid PRIMARY KEY,
	instance_id  uuid NOT NULL,
	type         text NOT NULL,
	message      text NOT NULL,
	user_agent   text NOT NULL DEFAULT '',
	submitted_at timestamptz NOT NULL,
	UNIQUE (instance_id, submitted_at)
)`

const insertFeedback = `INSERT INTO selbstauskunft.feedback (id, instance_id, type, message, user_agent, submitted_at) VALUES ($1, $2, $3, $4, $5, $6)`

var feedbackTypes = map[string]bool{"bug": true, "feature": true, "question": true, "other": true}

var httpClient = &http.Client{}

func postFeedback(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !isEnabled(featureFeedback, false) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, viper.GetInt64("max_body_bytes"))
	var fb models.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		writeError(w, http.StatusBadRequest, models.Error{Error: "Invalid JSON"})
		return
	}

	if fb.InstanceID == "" || fb.Message == "" || fb.Type == "" {
		writeError(w, http.StatusBadRequest, models.Error{Error: "Missing required fields"})
		return
	}
	if _, err := uuid.Parse(fb.InstanceID); err != nil {
		writeError(w, http.StatusBadRequest, models.Error{Error: "Invalid instance id " + fb.InstanceID})
		return
	}
	if !feedbackTypes[fb.Type] {
		writeError(w, http.StatusBadRequest, models.Error{Error: "Invalid feedback type " + fb.Type})
		return
	}

	// Feedback from any other instance is acknowledged and discarded.
	allowed := viper.GetString("feedback_instance_id")
	if allowed == "" || fb.InstanceID != allowed {
		writeReceipt(w, "Feedback erhalten. Vielen Dank!")
		return
	}

	if db == nil {
		logger.Error("feedback received but no database configured")
		writeError(w, http.StatusInternalServerError, models.Error{Error: "Feedback could not be stored"})
		return
	}

	if fb.Timestamp == 0 {
		fb.Timestamp = now().UnixMilli()
	}
	submitted := time.UnixMilli(fb.Timestamp).UTC()

	_, err := db.ExecContext(r.Context(), insertFeedback,
		uuid.New().String(), fb.InstanceID, fb.Type, fb.Message, fb.UserAgent, submitted)
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pqErr) && pqErr.Code == "23505":
		logger.Info("duplicate feedback ignored", zap.Time("submitted_at", submitted))
		writeReceipt(w, "Feedback gespeichert. Vielen Dank!")
		return
	case err != nil:
		logger.Error("storing feedback", zap.Error(err))
		writeError(w, http.StatusInternalServerError, models.Error{Error: "Feedback could not be stored"})
		return
	}

	if err := notifyFeedback(r.Context(), fb); err != nil {
		logger.Warn("feedback notification failed", zap.Error(err))
	}

	writeReceipt(w, "Feedback gespeichert. Vielen Dank!")
}

// migrateFeedback creates the feedback table if it does not exist yet.
func migrateFeedback(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, feedbackDDL); err != nil {
		return fmt.Errorf("create feedback table: %w", err)
	}
	return nil
}

// notifyFeedback forwards stored feedback to feedback_notify_url, if set.
func notifyFeedback(ctx context.Context, fb models.Feedback) error {
	target := viper.GetString("feedback_notify_url")
	if target == "" {
		return nil
	}

	body, err := json.Marshal(fb)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, viper.GetDuration("feedback_notify_timeout"))
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify %s: status %d", target, resp.StatusCode)
	}
	return nil
}

func writeReceipt(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.FeedbackReceipt{Success: true, Message: message})
}
