// Package answer models questionnaire answers and the session state built
// from them. Validate is the only place where untyped input is narrowed into
// typed Values.
package answer

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	Absent Kind = iota
	ConfirmationKind
	NumberKind
	TextKind
)

// Confirmation is the tri-state answer of a confirmation question.
type Confirmation string

const (
	Ja        Confirmation = "ja"
	Nein      Confirmation = "nein"
	Teilweise Confirmation = "teilweise"
)

// Confirmations lists the accepted tokens in display order.
var Confirmations = []Confirmation{Ja, Nein, Teilweise}

func parseConfirmation(s string) (Confirmation, bool) {
	for _, c := range Confirmations {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Deviating reports whether c warrants a deviation explanation.
func (c Confirmation) Deviating() bool {
	return c == Nein || c == Teilweise
}

// Value is a single answer. The zero Value is Absent.
type Value struct {
	kind Kind
	conf Confirmation
	num  int64
	text string
}

// Confirm builds a confirmation answer.
func Confirm(c Confirmation) Value {
	return Value{kind: ConfirmationKind, conf: c}
}

// Num builds a number answer. n must not be negative.
func Num(n int64) Value {
	return Value{kind: NumberKind, num: n}
}

// Txt builds a free text answer.
func Txt(s string) Value {
	return Value{kind: TextKind, text: s}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsAbsent() bool { return v.kind == Absent }

// Confirmation returns the token and whether v holds one.
func (v Value) Confirmation() (Confirmation, bool) {
	return v.conf, v.kind == ConfirmationKind
}

// Number returns the integer and whether v holds one.
func (v Value) Number() (int64, bool) {
	return v.num, v.kind == NumberKind
}

// Text returns the text and whether v holds one.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == TextKind
}

// String is the form used to evaluate conditions: the token, the decimal
// number, the text, or "" when absent.
func (v Value) String() string {
	switch v.kind {
	case ConfirmationKind:
		return string(v.conf)
	case NumberKind:
		return strconv.FormatInt(v.num, 10)
	case TextKind:
		return v.text
	}
	return ""
}

// Equal is used by go-cmp and tests.
func (v Value) Equal(o Value) bool {
	return v == o
}

// MarshalJSON writes confirmations and text as strings and numbers as JSON
// numbers, matching the wire shape accepted by Validate.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ConfirmationKind:
		return marshalString(string(v.conf))
	case NumberKind:
		return []byte(strconv.FormatInt(v.num, 10)), nil
	case TextKind:
		return marshalString(v.text)
	}
	return []byte("null"), nil
}

// marshalString leaves <, > and & alone; the caller's encoder decides.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Set maps question ids to answers.
type Set map[string]Value

// Get returns the answer for id, Absent when missing.
func (s Set) Get(id string) Value {
	return s[id]
}

// Raw converts the set back into the untyped form accepted by Validate.
func (s Set) Raw() map[string]any {
	raw := make(map[string]any, len(s))
	for id, v := range s {
		switch v.kind {
		case ConfirmationKind:
			raw[id] = string(v.conf)
		case NumberKind:
			raw[id] = json.Number(strconv.FormatInt(v.num, 10))
		case TextKind:
			raw[id] = v.text
		}
	}
	return raw
}
