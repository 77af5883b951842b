// Package statecodec turns a session State into a short URL-safe resume code
// and back. Codes use the lz-string "encoded URI component" format, so codes
// printed by the browser version of the questionnaire decode here as well.
package statecodec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	lzstring "github.com/daku10/go-lz-string"

	"github.com/drk-nordrhein/selbstauskunft/answer"
	"github.com/drk-nordrhein/selbstauskunft/schema"
)

const (
	// MaxTokenLength bounds the input accepted by Decode.
	MaxTokenLength = 8192
	// MaxStateBytes bounds the decompressed JSON accepted by Decode. Tokens
	// are measured before they are decompressed.
	MaxStateBytes = 64 << 10

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+-$"
)

// ErrInvalidToken is the only error Decode returns. The wrapped message names
// the stage that failed.
var ErrInvalidToken = errors.New("invalid resume code")

// Encode serialises st as canonical JSON and compresses it.
func Encode(st answer.State) (string, error) {
	st = st.Normalized()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(st); err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	payload := strings.TrimSuffix(buf.String(), "\n")

	token, err := lzstring.CompressToEncodedURIComponent(payload)
	if err != nil {
		return "", fmt.Errorf("compress state: %w", err)
	}
	return token, nil
}

// Decode restores a State from token under schema s. Answers and deviations
// for ids unknown to s are dropped, as are answers that no longer fit the
// question type. Person fields that are missing or not strings become "".
// Any failure yields the zero State and an error wrapping ErrInvalidToken.
func Decode(token string, s *schema.Schema) (st answer.State, err error) {
	defer func() {
		if r := recover(); r != nil {
			st, err = answer.State{}, fmt.Errorf("%w: decompress panicked: %v", ErrInvalidToken, r)
		}
	}()

	token = strings.TrimSpace(token)
	if token == "" {
		return answer.State{}, fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	if len(token) > MaxTokenLength {
		return answer.State{}, fmt.Errorf("%w: %d characters, limit %d", ErrInvalidToken, len(token), MaxTokenLength)
	}
	// a literal space is what a "+" turns into after a careless query decode
	token = strings.ReplaceAll(token, " ", "+")
	if i := strings.IndexFunc(token, func(r rune) bool { return !strings.ContainsRune(alphabet, r) }); i >= 0 {
		return answer.State{}, fmt.Errorf("%w: unexpected character at %d", ErrInvalidToken, i)
	}

	n, err := expandedLength(token, MaxStateBytes)
	if err != nil {
		return answer.State{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if n == 0 {
		return answer.State{}, fmt.Errorf("%w: empty payload", ErrInvalidToken)
	}

	payload, err := lzstring.DecompressFromEncodedURIComponent(token)
	if err != nil {
		return answer.State{}, fmt.Errorf("%w: decompress: %v", ErrInvalidToken, err)
	}
	if payload == "" {
		return answer.State{}, fmt.Errorf("%w: empty payload", ErrInvalidToken)
	}
	if len(payload) > MaxStateBytes {
		return answer.State{}, fmt.Errorf("%w: payload of %d bytes, limit %d", ErrInvalidToken, len(payload), MaxStateBytes)
	}

	return parse(payload, s)
}

func parse(payload string, s *schema.Schema) (answer.State, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return answer.State{}, fmt.Errorf("%w: parse: %v", ErrInvalidToken, err)
	}
	if _, ok := doc["name"].(string); !ok {
		return answer.State{}, fmt.Errorf("%w: name missing", ErrInvalidToken)
	}

	st := answer.State{
		Person: answer.Person{
			Name:           str(doc["name"]),
			Role:           str(doc["role"]),
			Gliederung:     str(doc["gliederung"]),
			ReportTo:       str(doc["reportTo"]),
			AufsichtName:   str(doc["aufsichtName"]),
			Geschaeftsjahr: str(doc["geschaeftsjahr"]),
			Ort:            str(doc["ort"]),
		},
		Answers:    make(answer.Set),
		Deviations: make(answer.Deviations),
	}

	if answers, ok := doc["answers"].(map[string]any); ok {
		for id, raw := range answers {
			q, known := s.Question(id)
			if !known {
				continue
			}
			v, ok := answer.Narrow(q.Type, raw)
			if !ok || v.IsAbsent() {
				continue
			}
			st.Answers[id] = v
		}
	}

	if deviations, ok := doc["deviations"].(map[string]any); ok {
		for id, raw := range deviations {
			text, isString := raw.(string)
			if !isString || !s.Has(id) {
				continue
			}
			st.Deviations[id] = text
		}
	}

	return st, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// URL appends token to base as the code query parameter. The token is not
// escaped; Decode reads a '+' that a query decoder turned into a space. An
// empty base yields the bare token.
func URL(base, token string) string {
	if base == "" {
		return token
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "code=" + token
}
