package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/placescore/internal/model"
)

// Version is the placescore release, overridable at link time
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool

	// cfg is the effective configuration, loaded before every command runs
	cfg *model.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "placescore",
	Short: "placescore - confidence scoring for place records",
	Long: `placescore rates how trustworthy harvested place records are.

Each record gets a score in [0, 100] built from five transparent blocks
(completeness, freshness, address consistency, name quality, penalties)
and a status: Valid, Review or LikelyInvalid.

placescore does not fetch, fix or deduplicate data. It only scores it.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c

		if err := initLogger(cfg.Log); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "placescore %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.placescore/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".placescore"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := configureEnv(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// configureEnv maps PLACESCORE_* variables onto config keys:
// PLACESCORE_SCORING_PENALTIES_NO_CONTACT overrides scoring.penalties.no_contact
func configureEnv(v *viper.Viper) error {
	v.SetEnvPrefix("PLACESCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return setDefaults(v, model.DefaultConfig())
}

// setDefaults registers every key of the default config so environment
// variables can override keys that no config file mentions
func setDefaults(v *viper.Viper, defaults *model.Config) error {
	data, err := yaml.Marshal(defaults)
	if err != nil {
		return eris.Wrap(err, "config: marshal defaults")
	}

	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return eris.Wrap(err, "config: decode defaults")
	}

	for key, value := range tree {
		v.SetDefault(key, value)
	}
	return nil
}

// loadConfig unmarshals the merged configuration over the built-in defaults
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper(), verbose)
}

func decodeConfig(v *viper.Viper, debug bool) (*model.Config, error) {
	c := model.DefaultConfig()
	if err := v.Unmarshal(c); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if debug {
		c.Log.Level = "debug"
	}
	return c, nil
}

// initLogger replaces the global zap logger according to the log config
func initLogger(lc model.LogConfig) error {
	var zapCfg zap.Config
	if lc.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
