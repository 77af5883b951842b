package main

import (
	"fmt"
	"time"

	"github.com/drk-nordrhein/selbstauskunft/report"
	"github.com/drk-nordrhein/selbstauskunft/schema"
	"github.com/drk-nordrhein/selbstauskunft/statecodec"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	input      string
	output     string
	resumeCode bool
	baseURL    string
	date       string
	timezone   string
	qrSize     int
}

func newRenderCmd(schemaPath *string) *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a Selbstauskunft as a print-ready HTML report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, *schemaPath, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.input, "file", "f", "-", "Auskunft JSON document (- for stdin)")
	f.StringVarP(&flags.output, "output", "o", "-", "Report path (- for stdout)")
	f.BoolVar(&flags.resumeCode, "resume-code", false, "Embed a QR resume code")
	f.StringVar(&flags.baseURL, "base-url", "", "Form URL the resume code points at")
	f.StringVar(&flags.date, "date", "", "Report date as YYYY-MM-DD (default: today)")
	f.StringVar(&flags.timezone, "timezone", "Europe/Berlin", "Time zone for the report date")
	f.IntVar(&flags.qrSize, "qr-size", report.DefaultQRSize, "Resume barcode edge length in pixels")
	return cmd
}

func runRender(cmd *cobra.Command, schemaPath string, flags renderFlags) error {
	s, err := schema.Load(schemaPath)
	if err != nil {
		return err
	}
	st, err := loadState(cmd, s, flags.input, true)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(flags.timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	date := time.Now().In(loc)
	if flags.date != "" {
		date, err = time.ParseInLocation("2006-01-02", flags.date, loc)
		if err != nil {
			return fmt.Errorf("date: %w", err)
		}
	}

	var resume *report.Resume
	if flags.resumeCode {
		token, err := statecodec.Encode(st)
		if err != nil {
			return err
		}
		resume, err = report.NewResume(statecodec.URL(flags.baseURL, token), flags.qrSize)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; rendering without resume code\n", err)
		}
	}

	doc, err := report.Render(report.Input{
		Schema:     s,
		Person:     st.Person,
		Answers:    st.Answers,
		Deviations: st.Deviations,
		Now:        date,
		Resume:     resume,
	})
	if err != nil {
		return err
	}
	return writeOutput(cmd, flags.output, []byte(doc))
}
