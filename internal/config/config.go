package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("edcompanion version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	Frontier FrontierConfig `mapstructure:"frontier"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Settings SettingsConfig `mapstructure:"settings"`
}

// FrontierConfig holds the endpoints and OAuth parameters for the Frontier
// authorization server and the companion API (cAPI).
type FrontierConfig struct {
	AuthURL        string        `mapstructure:"auth_url"`
	CAPIURL        string        `mapstructure:"capi_url"`
	ClientID       string        `mapstructure:"client_id"`
	RedirectScheme string        `mapstructure:"redirect_scheme"`
	Scopes         []string      `mapstructure:"scopes"`
	Audience       string        `mapstructure:"audience"`
	Timeout        time.Duration `mapstructure:"timeout"`
	// LenientStatus restores the legacy "no error, no data" behaviour for
	// unexpected HTTP statuses. The default is to fail loudly.
	LenientStatus bool `mapstructure:"lenient_status"`
}

type JournalConfig struct {
	DBPath          string `mapstructure:"db_path"`
	MaxLookbackDays int    `mapstructure:"max_lookback_days"`
}

// SettingsConfig locates the persistent settings file that backs the token
// store.
type SettingsConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	Color             bool   `mapstructure:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// InitFlags initializes command line flags (without parsing)
func InitFlags() {
	pflag.String("settings-file", "", "Path to the persistent settings file")
	pflag.String("journal-db", "", "Path to the journal sqlite database")
	pflag.Bool("lenient-status", false, "Return no data instead of an error on unexpected HTTP statuses")
	// Note: no pflag.Parse() here as it's called in main.go
}

func setDefaults() {
	viper.SetDefault("frontier.auth_url", "https://auth.frontierstore.net")
	viper.SetDefault("frontier.capi_url", "https://companion.orerve.net")
	viper.SetDefault("frontier.client_id", "3d5e633c-64d7-4f1a-9298-0c2fef730dd7")
	viper.SetDefault("frontier.redirect_scheme", "edcompanion")
	viper.SetDefault("frontier.scopes", []string{"auth", "capi"})
	viper.SetDefault("frontier.audience", "frontier,steam,epic")
	viper.SetDefault("frontier.timeout", "30s")
	viper.SetDefault("frontier.lenient_status", false)
	viper.SetDefault("journal.db_path", "journal.db")
	viper.SetDefault("journal.max_lookback_days", 365)
	viper.SetDefault("settings.path", "settings.json")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

func Load() (*Config, error) {
	viper.Reset() // Ensure clean state

	viper.SetEnvPrefix("EDCOMPANION")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	// Load ./config.yaml if present; the defaults cover everything otherwise
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/edcompanion")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Flags override file and environment values
	if settingsFile := viper.GetString("settings-file"); settingsFile != "" {
		config.Settings.Path = settingsFile
	}
	if journalDB := viper.GetString("journal-db"); journalDB != "" {
		config.Journal.DBPath = journalDB
	}
	if viper.GetBool("lenient-status") {
		config.Frontier.LenientStatus = true
	}

	if config.Frontier.ClientID == "" {
		return nil, fmt.Errorf("frontier.client_id is required, please adjust the config or set EDCOMPANION_FRONTIER_CLIENT_ID")
	}
	if config.Frontier.Timeout <= 0 {
		config.Frontier.Timeout = 30 * time.Second
	}

	return &config, nil
}
