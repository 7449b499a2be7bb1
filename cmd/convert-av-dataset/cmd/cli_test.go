package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/internal/bagtest"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/bagit"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/metadata"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/model"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

const (
	group      = "7bf09491-54b4-436e-7f59-1027f54cbb0c"
	inputBag   = "/input/" + group + "/c9c6fd6e-8bd5-4a3e-a6ba-e7ccaf8f3ff5"
	mappingCsv = "/input/mapping.csv"
	avDir      = "/av"
	sfDir      = "/springfield"
	outputDir  = "/output"
	reportFile = "/output/report.yaml"
)

type ExitMocks struct {
	fatalCalls int
	messages   []string
}

func (m *ExitMocks) Fatalf(format string, v ...interface{}) {
	m.fatalCalls++
	m.messages = append(m.messages, fmt.Sprintf(format, v...))
}

func (m *ExitMocks) Fatalln(v ...interface{}) {
	m.fatalCalls++
	m.messages = append(m.messages, fmt.Sprintln(v...))
}

func (m *ExitMocks) Exit(code int) {
	m.fatalCalls++
	m.messages = append(m.messages, fmt.Sprintf("exit %d", code))
}

// setupTests patches the exits, the file system and the standard output of the CLI
func setupTests(t *testing.T) (*ExitMocks, *bytes.Buffer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	exitMocks := new(ExitMocks)
	out := new(bytes.Buffer)

	savedFs, savedFatalf, savedFatalln, savedExit, savedOut := appFs, logFatalf, logFatalln, osExit, logStdOut
	appFs = fs
	logFatalf = exitMocks.Fatalf
	logFatalln = exitMocks.Fatalln
	osExit = exitMocks.Exit
	logStdOut = func(format string, a ...interface{}) (int, error) {
		return fmt.Fprintf(out, format, a...)
	}
	convertFlags = flagsT{}
	viper.Reset()
	t.Cleanup(func() {
		appFs, logFatalf, logFatalln, osExit, logStdOut = savedFs, savedFatalf, savedFatalln, savedExit, savedOut
		convertFlags = flagsT{}
		viper.Reset()
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		if f := rootCmd.Flags().Lookup("version"); f != nil {
			_ = f.Value.Set("false")
		}
	})

	bagtest.New(fs, inputBag).
		WithInfo(bagit.Field{Key: "Bagging-Date", Value: "2024-01-01"}).
		WithFile("data/video.mp4", nil).
		WithFile("data/secret.txt", []byte("secret")).
		WithFile(metadata.FilesXMLPath, bagtest.FilesXML(
			bagtest.FileXML{Path: "data/video.mp4", ID: "easy-file:1", External: true, Accessible: "ANONYMOUS", Visible: "ANONYMOUS"},
			bagtest.FileXML{Path: "data/secret.txt", ID: "easy-file:2", Accessible: "NONE", Visible: "NONE"},
		)).
		Build(t)
	require.NoError(t, afero.WriteFile(fs, avDir+"/"+group+"/video.mp4", []byte("the real video"), 0644))
	require.NoError(t, afero.WriteFile(fs, sfDir+"/"+group+"/video.mp4", []byte("streaming video"), 0644))
	require.NoError(t, afero.WriteFile(fs, mappingCsv, []byte(
		"easy_file_id,path_in_AV_dir,path_in_springfield_dir\n"+
			"easy-file:1,"+group+"/video.mp4,"+group+"/video.mp4\n"), 0644))
	return exitMocks, out
}

func TestConvertCommand(t *testing.T) {
	exitMocks, out := setupTests(t)

	rootCmd.SetArgs([]string{
		"--av-dir", avDir,
		"--springfield-dir", sfDir,
		"--loglevel", "none",
		"--report", reportFile,
		inputBag, mappingCsv, outputDir,
	})
	require.NoError(t, rootCmd.Execute())
	require.Equal(t, 0, exitMocks.fatalCalls, "%v", exitMocks.messages)

	dirs := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, dirs, 3)
	for _, dir := range dirs {
		assert.True(t, strings.HasPrefix(dir, outputDir+"/"), dir)
		ok, err := afero.Exists(appFs, dir+"/"+bagit.DeclarationFile)
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}

	b, err := afero.ReadFile(appFs, reportFile)
	require.NoError(t, err)
	var chain model.Chain
	require.NoError(t, yaml.Unmarshal(b, &chain))
	assert.Equal(t, inputBag, chain.Input)
	assert.Equal(t, dirs, chain.Dirs())
	require.Len(t, chain.Revisions, 3)
	assert.Equal(t, []string{"data/secret.txt"}, chain.Revisions[1].Removed)
}

func TestConvertCommandJSONReport(t *testing.T) {
	exitMocks, _ := setupTests(t)

	rootCmd.SetArgs([]string{
		"--av-dir", avDir,
		"--springfield-dir", sfDir,
		"--loglevel", "none",
		"--report", "/output/report.json",
		inputBag, mappingCsv, outputDir,
	})
	require.NoError(t, rootCmd.Execute())
	require.Equal(t, 0, exitMocks.fatalCalls, "%v", exitMocks.messages)

	b, err := afero.ReadFile(appFs, "/output/report.json")
	require.NoError(t, err)
	var chain model.Chain
	require.NoError(t, jsoniter.Unmarshal(b, &chain))
	require.Len(t, chain.Revisions, 3)
	assert.Equal(t, []string{"data/video-streaming.mp4"}, chain.Revisions[2].Added)
}

func TestConvertCommandFromConfig(t *testing.T) {
	exitMocks, out := setupTests(t)
	require.NoError(t, afero.WriteFile(appFs, "/etc/convert/avconvert.yaml", []byte(
		"avDir: "+avDir+"\nspringfieldDir: "+sfDir+"\nloglevel: error\n"), 0644))
	t.Setenv(configEnv, "/etc/convert/avconvert.yaml")

	rootCmd.SetArgs([]string{inputBag, mappingCsv, outputDir})
	require.NoError(t, rootCmd.Execute())
	require.Equal(t, 0, exitMocks.fatalCalls, "%v", exitMocks.messages)
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 3)
	assert.Equal(t, avDir, convertFlags.convert.avDir)
	assert.Equal(t, "error", convertFlags.root.logLevel)
	assert.Equal(t, []string{"sha1"}, convertFlags.convert.algorithms)
}

func TestConvertCommandFlagsOverrideConfig(t *testing.T) {
	exitMocks, _ := setupTests(t)
	require.NoError(t, afero.WriteFile(appFs, "/etc/convert/avconvert.yaml", []byte(
		"avDir: /elsewhere\nspringfieldDir: "+sfDir+"\n"), 0644))
	t.Setenv(configEnv, "/etc/convert/avconvert.yaml")

	rootCmd.SetArgs([]string{"--av_dir", avDir, "--loglevel", "none", inputBag, mappingCsv, outputDir})
	require.NoError(t, rootCmd.Execute())
	require.Equal(t, 0, exitMocks.fatalCalls, "%v", exitMocks.messages)
	assert.Equal(t, avDir, convertFlags.convert.avDir)
}

func TestConvertCommandFailure(t *testing.T) {
	exitMocks, out := setupTests(t)

	// no AV directory
	rootCmd.SetArgs([]string{
		"--springfield-dir", sfDir,
		"--loglevel", "none",
		"--report", reportFile,
		inputBag, mappingCsv, outputDir,
	})
	require.NoError(t, rootCmd.Execute())
	require.Equal(t, 1, exitMocks.fatalCalls)
	assert.Contains(t, exitMocks.messages[0], "conversion failed")
	assert.Empty(t, out.String())

	b, err := afero.ReadFile(appFs, reportFile)
	require.NoError(t, err)
	var chain model.Chain
	require.NoError(t, yaml.Unmarshal(b, &chain))
	assert.Empty(t, chain.Revisions)
}

func TestConvertCommandInvalidLogLevel(t *testing.T) {
	exitMocks, _ := setupTests(t)

	rootCmd.SetArgs([]string{"--av-dir", avDir, "--springfield-dir", sfDir, "--loglevel", "chatty", inputBag, mappingCsv, outputDir})
	require.NoError(t, rootCmd.Execute())
	require.Equal(t, 1, exitMocks.fatalCalls)
	assert.Contains(t, exitMocks.messages[0], "failed to set log level")
}

func TestConvertCommandArgs(t *testing.T) {
	exitMocks, _ := setupTests(t)

	rootCmd.SetArgs([]string{inputBag, mappingCsv})
	Execute()
	require.Equal(t, 1, exitMocks.fatalCalls)
	assert.Equal(t, "exit 1", exitMocks.messages[0])
}

func TestVersionCommand(t *testing.T) {
	exitMocks, out := setupTests(t)

	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	require.Zero(t, exitMocks.fatalCalls)
	assert.Contains(t, out.String(), "Version: dev\n")
	assert.Contains(t, out.String(), "Working tree: \n")
}

func TestVersionFlag(t *testing.T) {
	exitMocks, _ := setupTests(t)
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)

	rootCmd.SetArgs([]string{"--version"})
	require.NoError(t, rootCmd.Execute())
	require.Zero(t, exitMocks.fatalCalls)
	assert.Contains(t, out.String(), "Version: dev\n")
	assert.Contains(t, out.String(), "Commit: ")
}
