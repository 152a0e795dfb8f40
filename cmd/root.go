package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/StinkyLord/snapcraft-sbom/internal/config"
	"github.com/StinkyLord/snapcraft-sbom/internal/logging"
	"github.com/StinkyLord/snapcraft-sbom/internal/manifest"
	"github.com/StinkyLord/snapcraft-sbom/internal/model"
	"github.com/StinkyLord/snapcraft-sbom/internal/output"
	"github.com/StinkyLord/snapcraft-sbom/internal/scanner"
)

const toolVersion = "0.1.0"

const defaultManifest = "snapcraft.yaml"

type options struct {
	output  string
	verbose bool
	strict  bool
	config  string
}

// NewRootCmd builds the snapcraft-sbom command.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "snapcraft-sbom [snapcraft.yaml]",
		Short: "Convert a Snapcraft YAML file to a CycloneDX SBOM",
		Long: `snapcraft-sbom reads a snapcraft.yaml and produces a Software Bill of
Materials (SBOM) in CycloneDX 1.6 JSON format.

Every part with a remote source (git repository, tarball, ...) becomes a
library component. The package name is taken from the source URL and the
version from, in order of preference: source-tag, source-branch,
source-commit, or a version number in the source URL. Local parts are
skipped.

By default the manifest is read from ./snapcraft.yaml and the SBOM is
written to stdout.

Examples:
  snapcraft-sbom
  snapcraft-sbom snap/snapcraft.yaml -o sbom.cdx.json
  snapcraft-sbom snapcraft.yaml -v --strict`,
		Args:          cobra.MaximumNArgs(1),
		Version:       toolVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := defaultManifest
			if len(args) > 0 {
				input = args[0]
			}
			return runConvert(input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "Output file path for the SBOM JSON (use '-' for stdout)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail instead of warning when parts have a malformed structure")
	cmd.Flags().StringVar(&opts.config, "config", "", "Config file with vendor/supplier settings (YAML, JSON or TOML)")

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runConvert(input string, opts *options) error {
	log := logging.NewConsole(os.Stderr, opts.verbose)

	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}

	log.Debug("Processing: " + input)
	if opts.output == "-" {
		log.Debug("Output: stdout")
	} else {
		log.Debug("Output file: " + opts.output)
	}

	m, err := manifest.Load(input)
	if err != nil {
		return err
	}

	result, scanErr := scanner.New(log).Scan(m)
	if scanErr != nil {
		var structural *model.StructuralError
		for _, e := range unjoin(scanErr) {
			if errors.As(e, &structural) {
				log.Warn(structural.Error())
			}
		}
		if opts.strict {
			return fmt.Errorf("manifest %s has malformed parts: %w", input, scanErr)
		}
	}

	if opts.verbose {
		if err := output.WriteReport(os.Stderr, result); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	sbomOpts := output.Options{
		ToolName:    cfg.ToolName,
		ToolVersion: toolVersion,
		Vendor:      cfg.Vendor,
		Supplier:    cfg.Supplier,
		BuildTime:   cfg.BuildTime,
	}
	if err := output.WriteCycloneDX(result, opts.output, sbomOpts); err != nil {
		return fmt.Errorf("failed to write CycloneDX output: %w", err)
	}

	log.Debug(fmt.Sprintf("Added %d components to SBOM", len(result.Components)))
	if opts.output != "-" {
		log.Info("SBOM written to: " + opts.output)
	}
	return nil
}

// unjoin flattens an errors.Join result into its parts.
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
