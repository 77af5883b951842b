package main

import (
	"encoding/json"
	"net/http"

	"github.com/drk-nordrhein/selbstauskunft/models"
	"github.com/drk-nordrhein/selbstauskunft/statecodec"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

func postResumeCode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !isEnabled(featureResume, true) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	state, ok := readAuskunft(w, r, false)
	if !ok {
		return
	}

	token, err := statecodec.Encode(state)
	if err != nil {
		logger.Error("encoding resume code", zap.Error(err))
		writeError(w, http.StatusInternalServerError, models.Error{Error: "Code konnte nicht erstellt werden"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.ResumeCode{Code: token, URL: resumeURL(token)})
}

func getResumeCode(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if !isEnabled(featureResume, true) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	state, err := statecodec.Decode(p.ByName("code"), questions)
	if err != nil {
		logger.Info("rejecting resume code", zap.Error(err))
		writeError(w, http.StatusBadRequest, models.Error{Error: "Ungültiger Wiederherstellungscode"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}
