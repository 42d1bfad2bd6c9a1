package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

var (
	cfgFile     string
	verbose     bool
	format      string
	logLevel    string
	logFormat   string
	metricsAddr string
	rulesetPath string
	strict      bool
)

// RootCmd represents the base command
var RootCmd = &cobra.Command{
	Use:   "trustgate",
	Short: "Trustgate - content trust & compliance verification",
	Long: `Trustgate checks generated content before it is published.

It classifies natural-language compliance rules into enforcement tiers,
scores content quality, verifies regulated-industry claims against a client
profile, detects voice drift, and confirms that cited URLs resolve and
support the text around them.

Every verdict carries its inputs so a reviewer can see why it was reached.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Trustgate and the versions of its built-in tables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "trustgate %s\n", Version)
		if !verbose {
			return nil
		}
		rs, err := loadRuleSet()
		if err != nil {
			return err
		}
		for _, name := range []string{"classify", "voice", "facts"} {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-9s %s\n", name, rs.Versions()[name])
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.trustgate/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.StringVarP(&format, "format", "f", "", "output format: terminal or json")
	flags.StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error (default from LOG_LEVEL)")
	flags.StringVar(&logFormat, "log-format", "text", "log format: text or json")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	flags.StringVar(&rulesetPath, "ruleset", "", "YAML rule set overriding the built-in tables")
	flags.BoolVar(&strict, "strict", false, "exit non-zero when any check fails")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("output.format", flags.Lookup("format"))
	_ = viper.BindPFlag("metrics.addr", flags.Lookup("metrics-addr"))
	_ = viper.BindPFlag("ruleset", flags.Lookup("ruleset"))

	// Add subcommands
	RootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := setDefaults(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".trustgate"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// TRUSTGATE_HTTP_TIMEOUT overrides http.timeout
	viper.SetEnvPrefix("TRUSTGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
