package answer

import (
	"github.com/drk-nordrhein/selbstauskunft/schema"
)

type (
	// Person is the metadata block of a Selbstauskunft
	Person struct {
		Name           string `json:"name"`
		Role           string `json:"role"`
		Gliederung     string `json:"gliederung"`
		ReportTo       string `json:"reportTo"`
		AufsichtName   string `json:"aufsichtName"`
		Geschaeftsjahr string `json:"geschaeftsjahr"`
		Ort            string `json:"ort"`
	}

	// Deviations maps question ids to the explanation of a non-affirmative answer
	Deviations map[string]string

	// State is everything a session holds
	State struct {
		Person
		Answers    Set        `json:"answers"`
		Deviations Deviations `json:"deviations"`
	}
)

// Missing returns the JSON names of empty person fields, in form order.
func (p Person) Missing() []string {
	var missing []string
	fields := []struct {
		name, val string
	}{
		{"name", p.Name},
		{"role", p.Role},
		{"gliederung", p.Gliederung},
		{"reportTo", p.ReportTo},
		{"aufsichtName", p.AufsichtName},
		{"geschaeftsjahr", p.Geschaeftsjahr},
		{"ort", p.Ort},
	}
	for _, f := range fields {
		if f.val == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// For returns the explanation for id, "" when missing.
func (d Deviations) For(id string) string {
	return d[id]
}

// Eligible lists, in schema order, the applicable confirmation questions
// answered nein or teilweise.
func Eligible(s *schema.Schema, set Set) []string {
	var ids []string
	for _, q := range s.Questions() {
		if q.Type != schema.Confirmation || !Applicable(q, set) {
			continue
		}
		if c, ok := set.Get(q.ID).Confirmation(); ok && c.Deviating() {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// Unexplained lists the eligible questions that carry no explanation.
func Unexplained(s *schema.Schema, set Set, d Deviations) []string {
	var ids []string
	for _, id := range Eligible(s, set) {
		if d.For(id) == "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Normalized returns a copy with non-nil maps and without Absent answers.
func (st State) Normalized() State {
	out := st
	out.Answers = make(Set, len(st.Answers))
	for k, v := range st.Answers {
		if v.IsAbsent() {
			continue
		}
		out.Answers[k] = v
	}
	out.Deviations = make(Deviations, len(st.Deviations))
	for k, v := range st.Deviations {
		out.Deviations[k] = v
	}
	return out
}

// Assemble validates raw answers against s and keeps the non-empty
// explanations whose ids s knows.
func Assemble(s *schema.Schema, p Person, raw map[string]any, explanations map[string]string) (State, Violations) {
	set, violations := Validate(s, raw)
	if len(violations) > 0 {
		return State{}, violations
	}

	d := make(Deviations)
	for id, text := range explanations {
		if s.Has(id) && text != "" {
			d[id] = text
		}
	}
	return State{Person: p, Answers: set, Deviations: d}, nil
}
