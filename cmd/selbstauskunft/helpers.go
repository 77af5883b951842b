package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/drk-nordrhein/selbstauskunft/answer"
	"github.com/drk-nordrhein/selbstauskunft/models"
	"github.com/drk-nordrhein/selbstauskunft/schema"
	"github.com/spf13/cobra"
)

// openInput returns the named file, or stdin for "" and "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}

// readAuskunft decodes a document in the POST /v1/auskunft body format.
func readAuskunft(cmd *cobra.Command, path string) (models.Auskunft, error) {
	in, err := openInput(cmd, path)
	if err != nil {
		return models.Auskunft{}, err
	}
	defer in.Close()

	dec := json.NewDecoder(in)
	dec.UseNumber()
	var a models.Auskunft
	if err := dec.Decode(&a); err != nil {
		return models.Auskunft{}, fmt.Errorf("parse %s: %w", displayPath(path), err)
	}
	return a, nil
}

// loadState reads and validates a document. With complete set, all person
// fields and the answers object are required.
func loadState(cmd *cobra.Command, s *schema.Schema, path string, complete bool) (answer.State, error) {
	a, err := readAuskunft(cmd, path)
	if err != nil {
		return answer.State{}, err
	}
	if complete {
		if missing := a.Missing(); len(missing) > 0 {
			return answer.State{}, fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))
		}
		if a.Answers == nil {
			return answer.State{}, fmt.Errorf("missing answers object")
		}
	}

	st, violations := answer.Assemble(s, a.Person, a.Answers, a.Deviations)
	if len(violations) > 0 {
		return answer.State{}, fmt.Errorf("invalid answers:\n  %s", strings.Join(violations.Strings(), "\n  "))
	}
	return st, nil
}

// writeOutput writes data to path, or to stdout for "" and "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func displayPath(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}
