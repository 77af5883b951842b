package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/drk-nordrhein/selbstauskunft/schema"
	"github.com/drk-nordrhein/selbstauskunft/statecodec"
	"github.com/spf13/cobra"
)

func newEncodeCmd(schemaPath *string) *cobra.Command {
	var input, baseURL string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Turn a (possibly incomplete) Selbstauskunft into a resume code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := schema.Load(*schemaPath)
			if err != nil {
				return err
			}
			st, err := loadState(cmd, s, input, false)
			if err != nil {
				return err
			}
			token, err := statecodec.Encode(st)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), statecodec.URL(baseURL, token))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "file", "f", "-", "Auskunft JSON document (- for stdin)")
	f.StringVar(&baseURL, "base-url", "", "Print a form URL instead of the bare code")
	return cmd
}

func newDecodeCmd(schemaPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <code>",
		Short: "Restore the Selbstauskunft held in a resume code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schema.Load(*schemaPath)
			if err != nil {
				return err
			}

			token := args[0]
			// accept a whole resume URL as well as the bare code
			if i := strings.LastIndex(token, "code="); i >= 0 {
				token = token[i+len("code="):]
			}

			st, err := statecodec.Decode(token, s)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		},
	}
}
