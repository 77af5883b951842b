package main

import (
	"fmt"

	"github.com/drk-nordrhein/selbstauskunft/answer"
	"github.com/drk-nordrhein/selbstauskunft/schema"
	"github.com/spf13/cobra"
)

func newValidateCmd(schemaPath *string) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a Selbstauskunft and list deviations without explanation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := schema.Load(*schemaPath)
			if err != nil {
				return err
			}
			st, err := loadState(cmd, s, input, true)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			eligible := answer.Eligible(s, st.Answers)
			fmt.Fprintf(out, "Antworten:    %d von %d\n", len(st.Answers), s.Len())
			fmt.Fprintf(out, "Abweichungen: %d\n", len(eligible))
			for _, id := range answer.Unexplained(s, st.Answers, st.Deviations) {
				fmt.Fprintf(out, "  ohne Begründung: %s\n", id)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "file", "f", "-", "Auskunft JSON document (- for stdin)")
	return cmd
}
