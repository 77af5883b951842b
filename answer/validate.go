package answer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/drk-nordrhein/selbstauskunft/schema"
)

// Violation is a shape error for a single answer.
type Violation struct {
	QuestionID string `json:"questionId"`
	Value      string `json:"value"`
	Message    string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: Ungültiger Wert %q — %s", v.QuestionID, v.Value, v.Message)
}

// Violations is the ordered result of Validate. Empty means valid.
type Violations []Violation

// Strings returns the human readable form of every violation.
func (vs Violations) Strings() []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

const (
	msgConfirmation = "erlaubt: ja, nein, teilweise"
	msgNumber       = "Ganzzahl ≥ 0 erwartet"
	msgText         = "Text erwartet"
)

// Validate checks raw answers against s in schema order and narrows them into
// a Set. Numbers in raw may be json.Number, float64, any Go integer type or a
// decimal string.
//
// Conditions are evaluated with Applicable against the answers narrowed so
// far, which is the rule the renderer uses. Questions whose condition is
// unmet are not checked. Their answers are kept in the Set when they narrow
// cleanly and dropped otherwise. Answers for ids unknown to s are dropped.
// raw is never modified.
func Validate(s *schema.Schema, raw map[string]any) (Set, Violations) {
	set := make(Set)
	var violations Violations

	for _, q := range s.Questions() {
		val, present := raw[q.ID]
		if !present || val == nil {
			continue
		}

		v, msg := narrow(q.Type, val)
		if !Applicable(q, set) {
			if msg == "" && !v.IsAbsent() {
				set[q.ID] = v
			}
			continue
		}
		if msg != "" {
			violations = append(violations, Violation{
				QuestionID: q.ID,
				Value:      display(val),
				Message:    msg,
			})
			continue
		}
		if !v.IsAbsent() {
			set[q.ID] = v
		}
	}

	return set, violations
}

// Narrow converts a single untyped value for a question of type t. It is used
// by decoders that must drop values rather than report them.
func Narrow(t schema.Type, val any) (Value, bool) {
	if val == nil {
		return Value{}, true
	}
	v, msg := narrow(t, val)
	return v, msg == ""
}

func narrow(t schema.Type, val any) (Value, string) {
	switch t {
	case schema.Confirmation:
		s, ok := val.(string)
		if !ok {
			return Value{}, msgConfirmation
		}
		c, ok := parseConfirmation(s)
		if !ok {
			return Value{}, msgConfirmation
		}
		return Confirm(c), ""

	case schema.Number:
		if s, ok := val.(string); ok && strings.TrimSpace(s) == "" {
			return Value{}, ""
		}
		n, ok := toInt(val)
		if !ok || n < 0 {
			return Value{}, msgNumber
		}
		return Num(n), ""

	case schema.Text:
		switch x := val.(type) {
		case string:
			return Txt(x), ""
		case json.Number:
			return Txt(x.String()), ""
		case bool:
			return Txt(strconv.FormatBool(x)), ""
		case float64:
			return Txt(strconv.FormatFloat(x, 'f', -1, 64)), ""
		}
		return Value{}, msgText
	}
	return Value{}, fmt.Sprintf("unbekannter Fragetyp %q", t)
}

func toInt(val any) (int64, bool) {
	switch x := val.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case float64:
		return integral(x)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	}
	return 0, false
}

func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Applicable evaluates q's condition against narrowed answers. Conditions
// only reference earlier questions, so a Set filled in schema order is enough.
func Applicable(q schema.Question, set Set) bool {
	c := q.ConditionalOn
	if c == nil {
		return true
	}
	return set.Get(c.QuestionID).String() == c.Value
}

func display(val any) string {
	switch x := val.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(val)
}
