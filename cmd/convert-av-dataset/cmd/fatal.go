package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/afero"
)

var (
	// globals used to patch over calls to os.Exit() during test

	logFatalln = log.Fatalln
	logFatalf  = log.Fatalf
	osExit     = os.Exit

	// file system holding bags, mapping and reports, patched with an in-memory one during test
	appFs afero.Fs = afero.NewOsFs()

	// infoLogger wraps informative messages to os.Stderr without cluttering the list of revisions on os.Stdout
	infoLogger = log.New(os.Stderr, "", 0)
	logStdOut  = fmt.Printf
)

func wrapFatalln(msg string, err error) {
	if err == nil {
		logFatalln(msg)
	} else {
		logFatalf("%v", fmt.Errorf(msg+": %w", err))
	}
}
