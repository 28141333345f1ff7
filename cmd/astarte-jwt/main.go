package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds settings shared by every subcommand.
type Config struct {
	Key      string `mapstructure:"key"`
	LogLevel string `mapstructure:"log_level"`
	Issuer   string `mapstructure:"issuer"`
	Subject  string `mapstructure:"subject"`
	Expiry   int64  `mapstructure:"expiry"`
	NoExpiry bool   `mapstructure:"no_expiry"`
	KeyID    string `mapstructure:"kid"`
}

var (
	cfgFile string
	v       = initViper()
	logger  = newLogger("warn")
)

var rootCmd = &cobra.Command{
	Use:           "astarte-jwt",
	Short:         "Generate and inspect platform API tokens",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cfgFile != "" {
			v.SetConfigFile(cfgFile)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}
		logger = newLogger(v.GetString("log_level"))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./astarte-jwt.yaml)")
	rootCmd.PersistentFlags().StringP("key", "k", "", "PEM private key file (env ASTARTE_JWT_KEY)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	cobra.CheckErr(v.BindPFlag("key", rootCmd.PersistentFlags().Lookup("key")))
	cobra.CheckErr(v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level")))

	rootCmd.AddCommand(tokenCmd, inspectCmd, pubkeyCmd)
}

func initViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("astarte-jwt")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("ASTARTE_JWT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "warn")
	v.SetDefault("expiry", 300)
	v.SetDefault("no_expiry", false)
	return v
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func readKey(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("a private key file is required (--key or ASTARTE_JWT_KEY)")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	return b, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
