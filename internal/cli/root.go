// Package cli implements the ixbrlcheck command line.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/ixbrlcheck/internal/logger"
	"github.com/ppiankov/ixbrlcheck/internal/model"
)

// version is set at build time with -ldflags "-X .../internal/cli.version=..."
var version = "0.1.0-dev"

// ErrInvalid is returned when at least one validated filing is not valid
var ErrInvalid = errors.New("validation failed")

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ixbrlcheck",
	Short: "ixbrlcheck - Inline XBRL fact extraction and ESEF rule validation",
	Long: `ixbrlcheck reads Inline XBRL filings, extracts their contexts, units and
facts, and checks them against structural and profile rules such as the
ESEF reporting requirements.

Reports are deterministic: the same filing and profile always produce the
same findings in the same order.

Taxonomy schemas are never resolved or fetched; checks that need a full
DTS are out of scope.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps an Execute error to a process exit status:
// 0 success, 1 invalid filing, 2 any other failure
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalid):
		return 1
	default:
		return 2
	}
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of ixbrlcheck.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ixbrlcheck %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.ixbrlcheck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".ixbrlcheck"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match IXBRLCHECK_*, e.g. IXBRLCHECK_PARSER_MODE
	viper.SetEnvPrefix("IXBRLCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	switch {
	case err == nil:
		if verbose {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	case cfgFile != "":
		// An explicit --config must exist
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
	}
}

// setDefaults registers every configuration key so that environment
// variables and Unmarshal see the whole tree
func setDefaults(v *viper.Viper, cfg *model.Config) {
	v.SetDefault("engine.workers", cfg.Engine.Workers)
	v.SetDefault("engine.default_profile", cfg.Engine.DefaultProfile)
	v.SetDefault("engine.profiles_file", cfg.Engine.ProfilesFile)

	v.SetDefault("parser.mode", cfg.Parser.Mode)
	v.SetDefault("parser.max_bytes", cfg.Parser.MaxBytes)

	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)

	v.SetDefault("batch.concurrency", cfg.Batch.Concurrency)
	v.SetDefault("batch.files_per_second", cfg.Batch.FilesPerSecond)
	v.SetDefault("batch.burst", cfg.Batch.Burst)

	v.SetDefault("store.path", cfg.Store.Path)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)

	v.SetDefault("output.verbose", cfg.Output.Verbose)
	v.SetDefault("output.color", cfg.Output.Color)
	v.SetDefault("output.include_footer", cfg.Output.IncludeFooter)
}

// loadConfig merges defaults, config file and environment into a Config.
// Command flags are applied on top by each command.
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}

// newLogger creates the stderr logger for a command
func newLogger(cfg *model.Config) *logger.Logger {
	return logger.NewWithOutput(os.Stderr, cfg.Output.Verbose)
}
