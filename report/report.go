// Package report renders a Selbstauskunft into a self-contained, print-ready
// HTML document. The same renderer serves the HTTP endpoint and the CLI.
package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/drk-nordrhein/selbstauskunft/answer"
	"github.com/drk-nordrhein/selbstauskunft/qrsvg"
	"github.com/drk-nordrhein/selbstauskunft/schema"
)

// DateLayout is the German short date used for the generation date.
const DateLayout = "2.1.2006"

// DefaultQRSize is the edge length of the resume barcode in CSS pixels.
const DefaultQRSize = 100

//go:embed report.html.tmpl
var reportTmpl string

var tmpl = template.Must(template.New("report").Parse(reportTmpl))

var badges = map[answer.Confirmation]string{
	answer.Ja:        "✓ Ja",
	answer.Nein:      "✗ Nein",
	answer.Teilweise: "~ Teilweise",
}

const (
	unanswered  = "— Nicht beantwortet"
	placeholder = "—"
)

type (
	// Input is everything a report depends on. Now is the only clock the
	// renderer reads.
	Input struct {
		Schema     *schema.Schema
		Person     answer.Person
		Answers    answer.Set
		Deviations answer.Deviations
		Now        time.Time
		Resume     *Resume
	}

	// Resume is a resume code together with its pre-drawn barcode.
	Resume struct {
		Code string
		svg  string
	}

	page struct {
		Person   answer.Person
		Date     string
		Sections []section
		Resume   *Resume
	}

	section struct {
		Title   string
		Entries []entry
	}

	entry struct {
		Text         string
		Confirmation bool
		Class        string
		Label        string
		Deviation    string
		Number       bool
		Value        string
	}
)

// NewResume draws the barcode for code. It fails when code is too long for a
// single QR symbol; callers then render without a Resume.
func NewResume(code string, size int) (*Resume, error) {
	svg, err := qrsvg.Generate(code, size)
	if err != nil {
		return nil, fmt.Errorf("resume barcode: %w", err)
	}
	return &Resume{Code: code, svg: svg}, nil
}

// SVG is the inline barcode markup.
func (r *Resume) SVG() template.HTML {
	return template.HTML(r.svg)
}

// Render produces the report document. Output is byte-identical for equal
// inputs. All user supplied strings are escaped by html/template.
func Render(in Input) (string, error) {
	p := page{
		Person: in.Person,
		Date:   in.Now.Format(DateLayout),
		Resume: in.Resume,
	}

	for _, sec := range in.Schema.Sections {
		out := section{Title: sec.Title}
		for _, q := range sec.Questions {
			if !answer.Applicable(q, in.Answers) {
				continue
			}
			out.Entries = append(out.Entries, newEntry(q, in.Answers.Get(q.ID), in.Deviations))
		}
		p.Sections = append(p.Sections, out)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, p); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return b.String(), nil
}

func newEntry(q schema.Question, v answer.Value, deviations answer.Deviations) entry {
	e := entry{Text: q.Text}

	switch q.Type {
	case schema.Confirmation:
		e.Confirmation = true
		e.Class, e.Label = "none", unanswered
		if c, ok := v.Confirmation(); ok {
			e.Class, e.Label = string(c), badges[c]
			if c.Deviating() {
				e.Deviation = deviations.For(q.ID)
			}
		}

	case schema.Number:
		e.Number = true
		e.Value = placeholder
		if n, ok := v.Number(); ok {
			e.Value = fmt.Sprint(n)
		}

	case schema.Text:
		e.Value, _ = v.Text()
	}

	return e
}
