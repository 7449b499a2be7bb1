// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/dlogger"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/model"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/revision"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "convert-av-dataset [flags] INPUT_DIR MAPPING_CSV OUTPUT_DIR",
	Short: "Converts an AV dataset bag into a chain of revised bags",
	Long: `Converts an AV dataset bag into a chain of revised bags.

INPUT_DIR is the bag to convert, located in a directory named after the dataset group.
MAPPING_CSV maps file identifiers to the AV files and to their streaming versions.
OUTPUT_DIR receives one directory per revision:

  1. the AV placeholders of the input replaced by the actual AV files
  2. the files that are neither accessible nor visible removed
  3. the streaming versions of the AV files added, when the mapping has any

Each revision is a valid bag with an Is-Version-Of reference to the revision it derives from.
The directories of the created revisions are printed on stdout.
`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		logger, err := newLogger()
		if err != nil {
			wrapFatalln("failed to set log level", err)
			return
		}
		defer func() { _ = logger.Sync() }()

		converter := revision.NewConverter(
			revision.Fs(appFs),
			revision.AVDir(convertFlags.convert.avDir),
			revision.SpringfieldDir(convertFlags.convert.springfieldDir),
			revision.Logger(logger),
			revision.DefaultAlgorithms(convertFlags.convert.algorithms...),
		)
		chain, err := converter.Convert(context.Background(), args[0], args[1], args[2])
		if convertFlags.convert.report != "" {
			if rerr := writeReport(convertFlags.convert.report, chain); rerr != nil {
				wrapFatalln("failed to write report", rerr)
				return
			}
		}
		if err != nil {
			wrapFatalln("conversion failed", err)
			return
		}
		for _, dir := range chain.Dirs() {
			logStdOut("%s\n", dir)
		}
	},
}

func newLogger() (*zap.Logger, error) {
	if convertFlags.root.console {
		return dlogger.GetConsoleLogger(convertFlags.root.logLevel)
	}
	return dlogger.GetLogger(convertFlags.root.logLevel)
}

// writeReport writes the chain as JSON when path has a .json extension, as YAML otherwise
func writeReport(path string, chain *model.Chain) error {
	marshal := chain.YAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		marshal = chain.JSON
	}
	b, err := marshal()
	if err != nil {
		return err
	}
	return afero.WriteFile(appFs, path, b, 0644)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)
	rootCmd.SetGlobalNormalizationFunc(wordSepNormalizeFunc)

	addLogLevelFlag(rootCmd)
	addConsoleFlag(rootCmd)
	addAVDirFlag(rootCmd)
	addSpringfieldDirFlag(rootCmd)
	addReportFlag(rootCmd)
	addAlgorithmsFlag(rootCmd)
}
