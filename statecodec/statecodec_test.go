package statecodec

import (
	"errors"
	"strings"
	"testing"

	lzstring "github.com/daku10/go-lz-string"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drk-nordrhein/selbstauskunft/answer"
	"github.com/drk-nordrhein/selbstauskunft/qrsvg"
	"github.com/drk-nordrhein/selbstauskunft/schema"
)

func mustSchema(t *testing.T, questions ...schema.Question) *schema.Schema {
	t.Helper()
	s, err := schema.New("test", schema.Section{ID: "s", Questions: questions})
	require.NoError(t, err)
	return s
}

var person = answer.Person{
	Name:           "Erika Mustermann",
	Role:           "Kreisgeschäftsführerin",
	Gliederung:     "DRK-Kreisverband Musterstadt e.V.",
	ReportTo:       "Präsident",
	AufsichtName:   "Max Beispiel",
	Geschaeftsjahr: "2025",
	Ort:            "Musterstadt",
}

func encode(t *testing.T, st answer.State) string {
	t.Helper()
	token, err := Encode(st)
	require.NoError(t, err)
	return token
}

func TestRoundTrip(t *testing.T) {
	s := mustSchema(t,
		schema.Question{ID: "q1", Type: schema.Confirmation},
		schema.Question{ID: "q2", Type: schema.Number},
		schema.Question{ID: "q3", Type: schema.Text},
		schema.Question{ID: "q4", Type: schema.Confirmation, ConditionalOn: &schema.Condition{QuestionID: "q1", Value: "ja"}},
		schema.Question{ID: "q5", Type: schema.Text},
	)
	want := answer.State{
		Person: person,
		Answers: answer.Set{
			"q1": answer.Confirm(answer.Nein),
			"q2": answer.Num(0),
			"q3": answer.Txt("Zeile 1\nZeile 2 <b>&amp;</b> \"zitiert\" 😀"),
			"q4": answer.Confirm(answer.Teilweise),
			"q5": answer.Txt(""),
		},
		Deviations: answer.Deviations{"q1": "Zustimmung nachträglich eingeholt."},
	}

	token := encode(t, want)
	got, err := Decode(token, s)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripEmptyState(t *testing.T) {
	s := mustSchema(t, schema.Question{ID: "q1", Type: schema.Confirmation})

	got, err := Decode(encode(t, answer.State{}), s)
	require.NoError(t, err)
	assert.Equal(t, answer.State{}.Normalized(), got)
}

func TestRoundTripSkipsAbsentAnswers(t *testing.T) {
	s := mustSchema(t,
		schema.Question{ID: "q1", Type: schema.Confirmation},
		schema.Question{ID: "q2", Type: schema.Number},
	)
	withAbsent := answer.State{Person: person, Answers: answer.Set{"q1": answer.Confirm(answer.Ja), "q2": {}}}
	without := answer.State{Person: person, Answers: answer.Set{"q1": answer.Confirm(answer.Ja)}}

	token := encode(t, withAbsent)
	assert.Equal(t, encode(t, without), token)

	got, err := Decode(token, s)
	require.NoError(t, err)
	if diff := cmp.Diff(withAbsent.Normalized(), got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	_, present := got.Answers["q2"]
	assert.False(t, present)
}

func TestURL(t *testing.T) {
	assert.Equal(t, "abc+d", URL("", "abc+d"))
	assert.Equal(t, "https://selbstauskunft.example/?code=abc+d", URL("https://selbstauskunft.example/", "abc+d"))
	assert.Equal(t, "https://selbstauskunft.example/?lang=de&code=abc", URL("https://selbstauskunft.example/?lang=de", "abc"))
}

func TestEncodeIsURLSafe(t *testing.T) {
	token := encode(t, answer.State{
		Person:  answer.Person{Name: "Ä Ö Ü ß & / ? # = +"},
		Answers: answer.Set{"q": answer.Txt(strings.Repeat("%20 ", 50))},
	})

	for _, r := range token {
		assert.True(t, strings.ContainsRune(alphabet, r), "unexpected %q", r)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	st := answer.State{
		Person:  person,
		Answers: answer.Set{"b": answer.Num(2), "a": answer.Confirm(answer.Ja), "c": answer.Txt("x")},
	}
	assert.Equal(t, encode(t, st), encode(t, st))
}

func TestForwardCompatDropsUnknownIDs(t *testing.T) {
	q1 := mustSchema(t,
		schema.Question{ID: "keep", Type: schema.Confirmation},
		schema.Question{ID: "x", Type: schema.Confirmation},
	)
	q2 := mustSchema(t, schema.Question{ID: "keep", Type: schema.Confirmation})

	token := encode(t, answer.State{
		Person:     person,
		Answers:    answer.Set{"keep": answer.Confirm(answer.Ja), "x": answer.Confirm(answer.Nein)},
		Deviations: answer.Deviations{"x": "weg damit"},
	})

	got, err := Decode(token, q2)
	require.NoError(t, err)
	assert.Equal(t, answer.Set{"keep": answer.Confirm(answer.Ja)}, got.Answers)
	assert.Empty(t, got.Deviations)

	got, err = Decode(token, q1)
	require.NoError(t, err)
	assert.Equal(t, 2, len(got.Answers))
}

func TestBackwardCompatLeavesNewIDsUnanswered(t *testing.T) {
	q2 := mustSchema(t,
		schema.Question{ID: "old", Type: schema.Number},
		schema.Question{ID: "y", Type: schema.Text},
	)

	token := encode(t, answer.State{Person: person, Answers: answer.Set{"old": answer.Num(3)}})

	got, err := Decode(token, q2)
	require.NoError(t, err)
	assert.True(t, got.Answers.Get("y").IsAbsent())
	_, present := got.Answers["y"]
	assert.False(t, present)
	assert.Equal(t, answer.Num(3), got.Answers.Get("old"))
}

func TestDecodeDropsValuesThatChangedType(t *testing.T) {
	before := answer.State{Person: person, Answers: answer.Set{"q": answer.Txt("früher Freitext")}}
	now := mustSchema(t, schema.Question{ID: "q", Type: schema.Number})

	got, err := Decode(encode(t, before), now)
	require.NoError(t, err)
	assert.Empty(t, got.Answers)
}

func TestDecodeRejectsCorruptTokens(t *testing.T) {
	s := mustSchema(t, schema.Question{ID: "q", Type: schema.Text})

	for _, token := range []string{
		"not-a-token!!",
		"",
		"   ",
		"%7B%22name%22%3A%22x%22%7D",
		"AAAAAAAAAAAAAAAA",
		"$$$$",
		strings.Repeat("A", MaxTokenLength+1),
		encode(t, answer.State{Person: person})[:10],
	} {
		st, err := Decode(token, s)
		assert.True(t, errors.Is(err, ErrInvalidToken), "token %.40q: %v", token, err)
		assert.Equal(t, answer.State{}, st)
	}
}

func compress(t *testing.T, payload string) string {
	t.Helper()
	token, err := lzstring.CompressToEncodedURIComponent(payload)
	require.NoError(t, err)
	return token
}

func TestDecodeRequiresName(t *testing.T) {
	s := mustSchema(t)

	for _, payload := range []string{
		`{"role":"GF","answers":{}}`,
		`{"name":42}`,
		`{"name":null}`,
		`[1,2,3]`,
		`"just a string"`,
		`{"name":"x"`,
	} {
		_, err := Decode(compress(t, payload), s)
		assert.True(t, errors.Is(err, ErrInvalidToken), "payload %s", payload)
	}
}

func TestDecodeCoercesPersonFields(t *testing.T) {
	s := mustSchema(t, schema.Question{ID: "q", Type: schema.Confirmation})

	got, err := Decode(compress(t, `{"name":"Erika","role":7,"gliederung":null,"reportTo":{"a":1},"ort":"Bonn","answers":"nope","deviations":{"q":5}}`), s)
	require.NoError(t, err)

	assert.Equal(t, answer.Person{Name: "Erika", Ort: "Bonn"}, got.Person)
	assert.Empty(t, got.Answers)
	assert.Empty(t, got.Deviations)
}

func TestDecodeAcceptsSpaceForPlus(t *testing.T) {
	s := mustSchema(t, schema.Question{ID: "q", Type: schema.Text})
	want := answer.State{Person: person, Answers: answer.Set{"q": answer.Txt(strings.Repeat("ab", 40))}, Deviations: answer.Deviations{}}

	token := encode(t, want)
	got, err := Decode(strings.ReplaceAll(token, "+", " "), s)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeBoundsPayload(t *testing.T) {
	s := mustSchema(t)
	payload := `{"name":"` + strings.Repeat("a", MaxStateBytes) + `"}`

	token := compress(t, payload)
	require.LessOrEqual(t, len(token), MaxTokenLength)

	_, err := Decode(token, s)
	assert.True(t, errors.Is(err, ErrInvalidToken))
	assert.Contains(t, err.Error(), "limit")
}

var deviationTexts = []string{
	"Zustimmung des Präsidiums wurde in der Sitzung vom 14. März nachträglich eingeholt.",
	"Vertretungsregelung während der Elternzeit, Vorstand wurde schriftlich informiert.",
	"Prüfung durch die Revision ist beauftragt, Ergebnis liegt noch nicht vor.",
	"Fristüberschreitung um zwei Wochen wegen Personalwechsel in der Buchhaltung.",
	"Schulung der Mitarbeitenden ist für das zweite Quartal fest eingeplant.",
	"Dokumentation war unvollständig und wurde inzwischen vollständig ergänzt.",
}

// Every question of the shipped schema answered, every second confirmation
// answered "nein" with a realistic explanation. Codes stay below the
// level M capacity until roughly twenty such explanations.
func fullyAnswered(s *schema.Schema) answer.State {
	st := answer.State{
		Person: answer.Person{
			Name:           "Maximiliane Mustermann-Schulze",
			Role:           "Kreisgeschäftsführerin",
			Gliederung:     "DRK-Kreisverband Städteregion Aachen e.V.",
			ReportTo:       "Präsident",
			AufsichtName:   "Hans-Joachim Beispielmann",
			Geschaeftsjahr: "2025",
			Ort:            "Aachen",
		},
		Answers:    answer.Set{},
		Deviations: answer.Deviations{},
	}

	n := 0
	for i, q := range s.Questions() {
		switch q.Type {
		case schema.Confirmation:
			if n%2 == 1 {
				st.Answers[q.ID] = answer.Confirm(answer.Nein)
				st.Deviations[q.ID] = deviationTexts[n%len(deviationTexts)]
			} else {
				st.Answers[q.ID] = answer.Confirm(answer.Ja)
			}
			n++
		case schema.Number:
			st.Answers[q.ID] = answer.Num(int64(i * 3))
		case schema.Text:
			st.Answers[q.ID] = answer.Txt("Verbandsgeschäftsführung Land (4x), Aufsichtsrat Rettungsdienst gGmbH (6x), Kreisversammlung (1x)")
		}
	}
	return st
}

func TestFullyAnsweredStateFitsInQRCode(t *testing.T) {
	s := schema.Default()
	st := fullyAnswered(s)
	require.Equal(t, s.Len(), len(st.Answers))

	token := encode(t, st)
	assert.Less(t, len(token), qrsvg.MaxBytes)

	svg, err := qrsvg.Generate(token, 100)
	require.NoError(t, err)
	assert.NotEmpty(t, svg)

	got, err := Decode(token, s)
	require.NoError(t, err)
	if diff := cmp.Diff(st, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
