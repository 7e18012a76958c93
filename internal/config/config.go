package config

import (
	"os"

	"codeberg.org/mutker/bydmon/internal/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// MinScanInterval is the lowest accepted polling period in seconds.
	// The BMU drops the connection when polled faster than this.
	MinScanInterval = 10

	defaultAddress      = "192.168.16.254:8080"
	defaultScanInterval = 600
	defaultTimeout      = 10
	defaultListen       = ":9725"
	defaultDatabase     = "/var/lib/bydmon/history.db"
)

type Config struct {
	Address             string `mapstructure:"address"`
	SlaveID             int    `mapstructure:"slave_id"`
	ScanInterval        int    `mapstructure:"scan_interval"`
	Timeout             int    `mapstructure:"timeout"`
	ShowCellVoltage     bool   `mapstructure:"show_cell_voltage"`
	ShowCellTemperature bool   `mapstructure:"show_cell_temperature"`
	ShowTowers          bool   `mapstructure:"show_towers"`
	ShowModules         bool   `mapstructure:"show_modules"`
	ShowResetCounter    bool   `mapstructure:"show_reset_counter"`
	AggregateModules    bool   `mapstructure:"aggregate_modules"`
	History             bool   `mapstructure:"history"`
	Database            string `mapstructure:"database"`
	Listen              string `mapstructure:"listen"`
	Profile             string `mapstructure:"profile"`
	Simulate            bool   `mapstructure:"simulate"`
	Debug               bool   `mapstructure:"debug"`
	Verbose             bool   `mapstructure:"verbose"`
}

func Load() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	v.SetDefault("address", defaultAddress)
	v.SetDefault("slave_id", 1)
	v.SetDefault("scan_interval", defaultScanInterval)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("show_cell_voltage", true)
	v.SetDefault("show_cell_temperature", true)
	v.SetDefault("show_towers", true)
	v.SetDefault("show_modules", false)
	v.SetDefault("show_reset_counter", false)
	v.SetDefault("aggregate_modules", false)
	v.SetDefault("history", false)
	v.SetDefault("database", defaultDatabase)
	v.SetDefault("listen", defaultListen)

	flags := pflag.NewFlagSet("bydmon", pflag.ContinueOnError)
	flags.String("address", defaultAddress, "Battery BMU address (host:port)")
	flags.Int("scan-interval", defaultScanInterval, "Seconds between polls (minimum 10)")
	flags.Int("timeout", defaultTimeout, "Device fetch timeout in seconds")
	flags.String("listen", defaultListen, "Metrics listen address")
	flags.String("profile", "", "Register profile file (YAML)")
	flags.Bool("simulate", false, "Use the built-in battery simulator instead of a device")
	flags.Bool("history", false, "Record committed snapshots to the history database")
	flags.String("database", defaultDatabase, "History database path")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	if err := flags.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	// Load configuration from file
	if path := os.Getenv("BYDMON_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bydmon")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	// Command line flags override config file values
	flags.Visit(func(f *pflag.Flag) {
		key := f.Name
		if key == "scan-interval" {
			key = "scan_interval"
		}
		v.Set(key, f.Value.String())
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Set log level based on config
	if config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else if config.Verbose {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	return config, nil
}

// Validate rejects configurations the poller must never be started with.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.ScanInterval < MinScanInterval {
		return errFactory.WithData(errors.ErrInvalidInterval, struct {
			ScanInterval int
			Minimum      int
		}{
			ScanInterval: c.ScanInterval,
			Minimum:      MinScanInterval,
		})
	}

	if c.Timeout <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "timeout must be positive")
	}

	if !c.Simulate && c.Address == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "address is required")
	}

	if c.History && c.Database == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "database is required when history is enabled")
	}

	return nil
}
