// Package cmd implements the dpdp-engine command line.
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/config"
	"github.com/ekaya-inc/dpdp-engine/pkg/logging"
)

type rootFlags struct {
	configPath string
}

// NewRootCommand builds the dpdp-engine command tree.
func NewRootCommand(version string) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "dpdp-engine",
		Short:         "DPDP Rules compliance catalog and gap assessment",
		Long:          "dpdp-engine extracts obligations from the Digital Personal Data Protection Rules, 2025 into a requirement catalog and assesses organizations against it.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", config.DefaultConfigPath, "Path to config.yaml (environment variables override it)")

	root.AddCommand(
		newServeCommand(flags, version),
		newExtractCommand(flags, version),
		newAssessCommand(flags, version),
	)
	return root
}

// Execute runs the root command.
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}

// loadRuntime reads configuration and builds the process logger.
func loadRuntime(flags *rootFlags, version string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFrom(flags.configPath, version)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
