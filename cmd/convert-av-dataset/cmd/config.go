package cmd

import (
	"os"

	"github.com/spf13/viper"
)

const (
	configEnv    = "AVCONVERT_CONFIG"
	configName   = "avconvert"
	envPrefix    = "AVCONVERT"
	defaultLevel = "info"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	// keep field names the same as the serialized names for viper
	AVDir          string   `json:"avDir" yaml:"avDir" mapstructure:"avDir"`                            // Root of the AV files
	SpringfieldDir string   `json:"springfieldDir" yaml:"springfieldDir" mapstructure:"springfieldDir"` // Root of the streaming files
	LogLevel       string   `json:"loglevel" yaml:"loglevel" mapstructure:"loglevel"`                   // Logging level
	Algorithms     []string `json:"algorithms" yaml:"algorithms" mapstructure:"algorithms"`             // Default manifest algorithms
}

var config *CLIConfig

func newConfig() (*CLIConfig, error) {
	var c CLIConfig
	err := viper.Unmarshal(&c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// setConvertParams fills in the flags left unset by the user
func (c *CLIConfig) setConvertParams(flags *flagsT) {
	if flags.convert.avDir == "" {
		flags.convert.avDir = c.AVDir
	}
	if flags.convert.springfieldDir == "" {
		flags.convert.springfieldDir = c.SpringfieldDir
	}
	if flags.root.logLevel == "" {
		flags.root.logLevel = c.LogLevel
	}
	if len(flags.convert.algorithms) == 0 {
		flags.convert.algorithms = c.Algorithms
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetFs(appFs)
	viper.SetDefault("avDir", "")
	viper.SetDefault("springfieldDir", "")
	viper.SetDefault("loglevel", defaultLevel)
	viper.SetDefault("algorithms", []string{"sha1"})
	if os.Getenv(configEnv) != "" {
		viper.SetConfigFile(os.Getenv(configEnv))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.avconvert")
		viper.AddConfigPath("/etc/avconvert")
		viper.SetConfigName(configName)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		infoLogger.Println("Using config file:", viper.ConfigFileUsed())
	}
	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
		return
	}
	config.setConvertParams(&convertFlags)
}
