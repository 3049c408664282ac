package protocol

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datazip-inc/olake-pager/constants"
	"github.com/datazip-inc/olake-pager/drivers/batch"
	"github.com/datazip-inc/olake-pager/utils"
	"github.com/datazip-inc/olake-pager/utils/logger"
)

// top level config keys that can be set through OLAKE_PAGER_<KEY>
var envKeys = []string{"driver", "host", "port", "username", "password", "database", "path", "dsn", "max_threads"}

var (
	configPath  string
	statePath   string
	outputPath  string
	metricsPath string
	logLevel    string

	commands = []*cobra.Command{}
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "olake-pager",
	Short: "Paged batch importer for SQL sources",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		configFolder := os.TempDir()
		if configPath != "" {
			configFolder = filepath.Dir(configPath)
		}
		viper.Set(constants.ConfigFolder, configFolder)
		viper.SetDefault(constants.StatePath, filepath.Join(configFolder, "state.json"))
		viper.SetDefault(constants.OutputPath, filepath.Join(configFolder, "output.jsonl"))

		// logger uses CONFIG_FOLDER
		logger.Init()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		if ok := utils.IsValidSubcommand(commands, args[0]); !ok {
			return fmt.Errorf("'%s' is an invalid command. Use 'olake-pager --help' to display usage guide", args[0])
		}

		return nil
	},
}

// LoadConfig reads the source config file, environment variables prefixed
// with OLAKE_PAGER_ override top level keys
func LoadConfig(path string) (*batch.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is required, pass --config")
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetEnvPrefix(constants.EnvPrefix)
	reader.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := reader.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := reader.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config[%s]: %s", path, err)
	}

	config := &batch.Config{}
	if err := reader.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config[%s]: %s", path, err)
	}
	return config, nil
}

func init() {
	commands = append(commands, specCmd, checkCmd, syncCmd)
	RootCmd.AddCommand(commands...)

	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "", "", "(Required) Config for the source and its entities")
	RootCmd.PersistentFlags().StringVarP(&statePath, "state", "", "", "(Optional) State file holding the last index time per entity")
	RootCmd.PersistentFlags().StringVarP(&outputPath, "output", "", "", "(Optional) JSONL output file, '-' writes to stdout")
	RootCmd.PersistentFlags().StringVarP(&metricsPath, "metrics-file", "", "", "(Optional) Write prometheus metrics to this textfile after the run")
	RootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "(Optional) Log level: debug, info, warn, error")

	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.AutomaticEnv()
	for key, flag := range map[string]string{
		constants.StatePath:   "state",
		constants.OutputPath:  "output",
		constants.MetricsPath: "metrics-file",
		constants.LogLevel:    "log-level",
	} {
		if err := viper.BindPFlag(key, RootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	// Disable Cobra CLI's built-in usage and error handling
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
}
