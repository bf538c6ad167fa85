package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/dpdp-engine/pkg/report"
	"github.com/ekaya-inc/dpdp-engine/pkg/services"
)

type assessFlags struct {
	attest  bool
	save    bool
	jsonOut bool
}

func newAssessCommand(flags *rootFlags, version string) *cobra.Command {
	af := &assessFlags{}

	cmd := &cobra.Command{
		Use:   "assess <profile.json>",
		Short: "Assess an organization profile against the requirement catalog",
		Long:  "assess reads an assessment request (profile plus optional completed requirement IDs) from a JSON file, or stdin when the path is \"-\", and prints the gap report.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readAssessmentRequest(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if af.attest {
				req.Attest = true
			}
			if af.save {
				req.Save = true
			}

			cfg, logger, err := loadRuntime(flags, version)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			assessment, err := a.assessment.Assess(a.scope(cmd.Context()), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if af.jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(assessment)
			}
			return report.WriteConsole(out, assessment)
		},
	}

	cmd.Flags().BoolVar(&af.attest, "attest", false, "Count requirements evidenced by the profile answers as completed")
	cmd.Flags().BoolVar(&af.save, "save", false, "Persist the organization profile and its score")
	cmd.Flags().BoolVar(&af.jsonOut, "json", false, "Print the assessment as JSON")
	return cmd
}

func readAssessmentRequest(path string, stdin io.Reader) (services.AssessmentRequest, error) {
	var req services.AssessmentRequest

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, fmt.Errorf("failed to read assessment request: %w", err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to parse assessment request %s: %w", path, err)
	}
	return req, nil
}
