package cmd

import (
	"strings"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/bagit"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type flagsT struct {
	root struct {
		logLevel string
		console  bool
	}
	convert struct {
		avDir          string
		springfieldDir string
		report         string
		algorithms     []string
	}
}

var convertFlags = flagsT{}

func addAVDirFlag(cmd *cobra.Command) string {
	avDir := "av-dir"
	cmd.Flags().StringVar(&convertFlags.convert.avDir, avDir, "",
		"The directory holding the AV files, organized in one sub-directory per dataset group")
	return avDir
}

func addSpringfieldDirFlag(cmd *cobra.Command) string {
	springfieldDir := "springfield-dir"
	cmd.Flags().StringVar(&convertFlags.convert.springfieldDir, springfieldDir, "",
		"The directory holding the streaming versions of the AV files")
	return springfieldDir
}

func addReportFlag(cmd *cobra.Command) string {
	report := "report"
	cmd.Flags().StringVar(&convertFlags.convert.report, report, "", "Write a description of the created revisions to this file, as JSON for a .json file and as YAML otherwise")
	return report
}

func addAlgorithmsFlag(cmd *cobra.Command) string {
	algorithms := "algorithms"
	cmd.Flags().StringSliceVar(&convertFlags.convert.algorithms, algorithms, nil,
		"Manifest algorithms used for bags without payload manifests (defaults to sha1), among: "+strings.Join(bagit.SupportedAlgorithms(), ", "))
	return algorithms
}

func addLogLevelFlag(cmd *cobra.Command) string {
	logLevel := "loglevel"
	cmd.PersistentFlags().StringVar(&convertFlags.root.logLevel, logLevel, "", `The logging level: one of "debug", "info", "warn", "error" or "none" (defaults to "info")`)
	return logLevel
}

func addConsoleFlag(cmd *cobra.Command) string {
	console := "console"
	cmd.PersistentFlags().BoolVar(&convertFlags.root.console, console, false, "Human-readable log lines instead of JSON")
	return console
}

// wordSepNormalizeFunc accepts underscores as word separators in flag names, e.g. --av_dir
func wordSepNormalizeFunc(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
