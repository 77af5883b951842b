// selbstauskunft works with Selbstauskunft documents offline: render, validate,
// encode and decode resume codes, and print the question catalogue.
//
// Usage:
//
//	selbstauskunft render   -f <auskunft.json> [-o <report.html>] [--resume-code] [--base-url=<url>]
//	selbstauskunft validate -f <auskunft.json>
//	selbstauskunft encode   -f <auskunft.json> [--base-url=<url>]
//	selbstauskunft decode   <code>
//	selbstauskunft schema   [--json]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	var schemaPath string

	root := &cobra.Command{
		Use:   "selbstauskunft",
		Short: "DRK Selbstauskunft tooling",
		Long:  "Render, validate and transport DRK Selbstauskunft documents\nwithout running the HTTP service.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		Version:      version,
	}
	root.PersistentFlags().StringVar(&schemaPath, "schema", "", "Question catalogue YAML (default: built-in)")

	root.AddCommand(
		newRenderCmd(&schemaPath),
		newValidateCmd(&schemaPath),
		newEncodeCmd(&schemaPath),
		newDecodeCmd(&schemaPath),
		newSchemaCmd(&schemaPath),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
