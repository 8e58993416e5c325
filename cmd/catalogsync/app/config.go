package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/catalogsync/catalogsync/pkg/reconcile"
)

// Config holds the application configuration loaded from config files,
// environment variables, and .env files, later overlaid by flags.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Source file paths
	InventoryPath  string
	StorefrontPath string
	SheetPath      string

	// Reconciliation policy
	MatchThreshold    float64
	PriceTolerancePct float64
	PriceCriticalPct  float64
	Workers           int

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra, applied via UpdateFromFlags)
//  2. Environment variables
//  3. .env files
//  4. Config file (~/.catalogsync.yaml)
//  5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files before Viper env binding
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".catalogsync")
		}
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),
		Format:  viper.GetString("format"),

		ConfigFile: viper.ConfigFileUsed(),

		InventoryPath:  viper.GetString("inventory_path"),
		StorefrontPath: viper.GetString("storefront_path"),
		SheetPath:      viper.GetString("sheet_path"),

		MatchThreshold:    viper.GetFloat64("match_threshold"),
		PriceTolerancePct: viper.GetFloat64("price_tolerance_pct"),
		PriceCriticalPct:  viper.GetFloat64("price_critical_pct"),
		Workers:           viper.GetInt("workers"),

		LogLevel:  viper.GetString("log_level"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	// Policy defaults
	defaults := reconcile.DefaultConfig()
	if config.MatchThreshold == 0 {
		config.MatchThreshold = defaults.MatchThreshold
	}
	if config.PriceTolerancePct == 0 {
		config.PriceTolerancePct = defaults.PriceTolerancePct
	}
	if config.PriceCriticalPct == 0 {
		config.PriceCriticalPct = defaults.PriceCriticalPct
	}

	return config, nil
}

// Policy assembles the reconciliation policy from the configuration.
func (c *Config) Policy() reconcile.Config {
	return reconcile.Config{
		MatchThreshold:    c.MatchThreshold,
		PriceTolerancePct: c.PriceTolerancePct,
		PriceCriticalPct:  c.PriceCriticalPct,
		Workers:           c.Workers,
	}
}

// UpdateFromFlags updates config values from parsed command flags so
// flags take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	envFiles := []string{
		".env",
		".env.local",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
