package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/services"
)

type extractFlags struct {
	rulesPath  string
	actPath    string
	verifyOnly bool
	jsonOut    bool
}

func newExtractCommand(flags *rootFlags, version string) *cobra.Command {
	ef := &extractFlags{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Build the requirement catalog from the DPDP Rules text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(flags, version)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if ef.rulesPath != "" {
				cfg.Extraction.RulesTextPath = ef.rulesPath
			}
			if ef.actPath != "" {
				cfg.Extraction.ActTextPath = ef.actPath
			}

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.scope(cmd.Context())

			out := cmd.OutOrStdout()
			var result *services.BuildResult
			if !ef.verifyOnly {
				in, err := readBuildInput(cfg.Extraction.RulesTextPath, cfg.Extraction.ActTextPath, logger)
				if err != nil {
					return err
				}
				result, err = a.extraction.Build(ctx, in)
				if err != nil {
					return err
				}
				a.catalog.Invalidate()
			}

			report, err := a.extraction.Verify(ctx)
			if err != nil {
				return err
			}

			if ef.jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(struct {
					Build  *services.BuildResult  `json:"build,omitempty"`
					Verify *services.VerifyReport `json:"verify"`
				}{result, report}); err != nil {
					return err
				}
			} else if err := writeExtractionSummary(out, result, report); err != nil {
				return err
			}

			if !report.Passed() {
				return fmt.Errorf("catalog verification failed: %d duplicate entries, %d of %d thresholds",
					report.DuplicateEntries, len(report.Thresholds), report.ExpectedThresholds)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ef.rulesPath, "rules", "", "Path to the DPDP Rules plain text (overrides extraction.rules_text_path)")
	cmd.Flags().StringVar(&ef.actPath, "act", "", "Path to the DPDP Act plain text (overrides extraction.act_text_path)")
	cmd.Flags().BoolVar(&ef.verifyOnly, "verify-only", false, "Skip the build and only verify the stored catalog")
	cmd.Flags().BoolVar(&ef.jsonOut, "json", false, "Print results as JSON")
	return cmd
}

// readBuildInput loads the rules text. A missing Act file is logged and skipped.
func readBuildInput(rulesPath, actPath string, logger *zap.Logger) (services.BuildInput, error) {
	rules, err := os.ReadFile(rulesPath)
	if err != nil {
		return services.BuildInput{}, fmt.Errorf("failed to read rules text: %w", err)
	}
	in := services.BuildInput{RulesText: string(rules)}

	if actPath == "" {
		return in, nil
	}
	act, err := os.ReadFile(actPath)
	if err != nil {
		logger.Warn("Act text not loaded", zap.String("path", actPath), zap.Error(err))
		return in, nil
	}
	in.ActText = string(act)
	return in, nil
}

func writeExtractionSummary(w io.Writer, result *services.BuildResult, report *services.VerifyReport) error {
	var lines []string
	if result != nil {
		lines = append(lines,
			"Extraction",
			fmt.Sprintf("  Rules segmented:     %d", result.RulesSegmented),
			fmt.Sprintf("  Rules processed:     %d", result.RulesProcessed),
			fmt.Sprintf("  Candidates:          %d", result.Candidates),
			fmt.Sprintf("  Inserted:            %d", result.Inserted),
			fmt.Sprintf("  Duplicates skipped:  %d", result.Duplicates),
			fmt.Sprintf("  Too short:           %d", result.TooShort),
			fmt.Sprintf("  Thresholds:          %d found, %d inserted", result.ThresholdsFound, result.ThresholdsInserted),
			fmt.Sprintf("  Act characters:      %d", result.ActCharacters),
			"",
		)
	}

	rules := make([]int, 0, len(report.ByRule))
	for r := range report.ByRule {
		rules = append(rules, r)
	}
	sort.Ints(rules)

	lines = append(lines,
		"Verification",
		fmt.Sprintf("  Requirements:        %d", report.TotalRequirements),
		fmt.Sprintf("  Duplicate entries:   %d", report.DuplicateEntries),
		fmt.Sprintf("  Shared texts:        %d", report.DuplicateTexts),
		fmt.Sprintf("  Penalty categories:  %d", report.PenaltyCategories),
		fmt.Sprintf("  Thresholds:          %d of %d", len(report.Thresholds), report.ExpectedThresholds),
		"  By rule:",
	)
	for _, r := range rules {
		lines = append(lines, fmt.Sprintf("    Rule %-3d %d", r, report.ByRule[r]))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
