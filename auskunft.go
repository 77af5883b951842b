package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/drk-nordrhein/selbstauskunft/answer"
	"github.com/drk-nordrhein/selbstauskunft/models"
	"github.com/drk-nordrhein/selbstauskunft/report"
	"github.com/drk-nordrhein/selbstauskunft/schema"
	"github.com/drk-nordrhein/selbstauskunft/statecodec"
	"github.com/julienschmidt/httprouter"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var requiredFields = map[string]string{
	"name":           "string — Vor- und Nachname",
	"role":           "string — Funktion (z.B. Kreisgeschäftsführer)",
	"gliederung":     "string — DRK-Gliederung (z.B. Kreisverband Städteregion Aachen e.V.)",
	"reportTo":       "string — Funktion Aufsichtsorgan (z.B. Präsident)",
	"aufsichtName":   "string — Name des Aufsichtsorganvertreters",
	"geschaeftsjahr": "string — z.B. 2025",
	"ort":            "string — Ort der Erklärung",
	"answers":        "Record<questionId, 'ja'|'nein'|'teilweise'|number|string>",
	"deviations":     "Record<questionId, string> — Begründungen bei Abweichungen (optional)",
}

// now is replaced in tests
var now = time.Now

func getAuskunft(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	desc := models.SchemaDescription{
		Name:          "DRK Selbstauskunft API",
		Version:       viper.GetString("app_version"),
		SchemaVersion: questions.Version,
		Description:   "API zum maschinellen Ausfüllen der DRK Selbstauskunft. POST mit JSON-Body, GET für Schema.",
		Endpoints: map[string]string{
			"GET /v1/auskunft":             "Dieses Schema",
			"POST /v1/auskunft":            "Selbstauskunft einreichen → HTML-Report zurück (?resumeCode=true für QR-Code)",
			"POST /v1/auskunft/code":       "Angaben als Wiederherstellungscode speichern",
			"GET /v1/auskunft/code/{code}": "Wiederherstellungscode in Angaben zurückverwandeln",
		},
		RequiredFields: requiredFields,
	}

	for _, sec := range questions.Sections {
		out := models.SchemaSection{Section: sec.ID, Title: sec.Title, Description: sec.Description}
		for _, q := range sec.Questions {
			sq := models.SchemaQuestion{
				ID:            q.ID,
				Text:          q.Text,
				Type:          q.Type,
				Required:      q.Type == schema.Confirmation || q.Required,
				ConditionalOn: q.ConditionalOn,
			}
			if q.Type == schema.Confirmation {
				for _, c := range answer.Confirmations {
					sq.AllowedValues = append(sq.AllowedValues, string(c))
				}
			}
			out.Questions = append(out.Questions, sq)
		}
		desc.Sections = append(desc.Sections, out)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(desc)
}

// readAuskunft decodes and validates a submitted state. With complete set, all
// person fields and the answers object must be present. It writes the error
// response itself and reports whether the caller may continue.
func readAuskunft(w http.ResponseWriter, r *http.Request, complete bool) (answer.State, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, viper.GetInt64("max_body_bytes"))
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var req models.Auskunft
	if err := dec.Decode(&req); err != nil {
		logger.Debug("rejecting body", zap.Error(err))
		writeError(w, http.StatusBadRequest, models.Error{Error: "Ungültiger JSON-Body"})
		return answer.State{}, false
	}

	if complete {
		if missing := req.Missing(); len(missing) > 0 {
			writeError(w, http.StatusBadRequest, models.Error{Error: "Fehlende Pflichtfelder: " + strings.Join(missing, ", ")})
			return answer.State{}, false
		}
		if req.Answers == nil {
			writeError(w, http.StatusBadRequest, models.Error{Error: "Feld 'answers' fehlt oder ist kein Objekt"})
			return answer.State{}, false
		}
	}

	state, violations := answer.Assemble(questions, req.Person, req.Answers, req.Deviations)
	if len(violations) > 0 {
		writeError(w, http.StatusUnprocessableEntity, models.Error{
			Error:      "Ungültige Antworten: " + strings.Join(violations.Strings(), "; "),
			Violations: violations,
		})
		return answer.State{}, false
	}
	return state, true
}

func postAuskunft(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !isEnabled(featurePostAuskunft, true) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	state, ok := readAuskunft(w, r, true)
	if !ok {
		return
	}

	var resume *report.Resume
	if r.URL.Query().Get("resumeCode") == "true" {
		resume = buildResume(state)
	}

	doc, err := report.Render(report.Input{
		Schema:     questions,
		Person:     state.Person,
		Answers:    state.Answers,
		Deviations: state.Deviations,
		Now:        now().In(location),
		Resume:     resume,
	})
	if err != nil {
		logger.Error("rendering report", zap.Error(err))
		writeError(w, http.StatusInternalServerError, models.Error{Error: "Report konnte nicht erstellt werden"})
		return
	}

	deviating := answer.Eligible(questions, state.Answers)
	logger.Info("report rendered",
		zap.Int("answers", len(state.Answers)),
		zap.Int("deviations", len(deviating)),
		zap.Int("unexplained", len(answer.Unexplained(questions, state.Answers, state.Deviations))),
		zap.Bool("resume_code", resume != nil))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Deviation-Count", strconv.Itoa(len(deviating)))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}

// buildResume encodes state for the report barcode. A code that does not fit
// into a QR symbol is left out of the report.
func buildResume(state answer.State) *report.Resume {
	token, err := statecodec.Encode(state)
	if err != nil {
		logger.Warn("encoding resume code", zap.Error(err))
		return nil
	}
	resume, err := report.NewResume(resumeURL(token), viper.GetInt("qr_size"))
	if err != nil {
		logger.Warn("omitting resume barcode", zap.Int("code_length", len(token)), zap.Error(err))
		return nil
	}
	return resume
}

// resumeURL points resume_base_url at token.
func resumeURL(token string) string {
	return statecodec.URL(viper.GetString("resume_base_url"), token)
}
