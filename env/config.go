package env

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrPinConfig      = errors.New("pin cannot be mapped to a supported interrupt source")
	ErrDebounceConfig = errors.New("debounce period must be positive")
)

// Config is the station setup. Zero fields in a config file keep the default.
type Config struct {
	WindPin      string        `yaml:"wind_pin"`
	RainPin      string        `yaml:"rain_pin"`
	RainLedPin   string        `yaml:"rain_led_pin"`
	HeartbeatPin string        `yaml:"heartbeat_pin"`
	WindDebounce time.Duration `yaml:"wind_debounce"`
	RainDebounce time.Duration `yaml:"rain_debounce"`

	I2CBus         string `yaml:"i2c_bus"`
	WindDirChannel int    `yaml:"wind_dir_channel"`
	LightChannel   int    `yaml:"light_channel"`
	RefChannel     int    `yaml:"ref_channel"`

	Atmospheric bool   `yaml:"atmospheric"`
	MetricsFile string `yaml:"metrics_file"`
	LogLevel    string `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		WindPin:        WindSensorIn,
		RainPin:        RainSensorIn,
		RainLedPin:     RainTipLed,
		HeartbeatPin:   HeartbeatLed,
		WindDebounce:   WindDebounce,
		RainDebounce:   RainDebounce,
		WindDirChannel: WindDirChannel,
		LightChannel:   LightChannel,
		RefChannel:     Ref3V3Channel,
		Atmospheric:    true,
		MetricsFile:    MetricsTextfile,
		LogLevel:       "info",
	}
}

// Load reads the optional yaml file at path over the defaults, then applies
// WEATHER_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("WEATHER_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv("WEATHER_METRICS_FILE"); ok {
		c.MetricsFile = v
	}
	if v, ok := os.LookupEnv("WEATHER_I2C_BUS"); ok {
		c.I2CBus = v
	}
	if v, ok := os.LookupEnv("WEATHER_WIND_DEBOUNCE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("WEATHER_WIND_DEBOUNCE: %w", err)
		}
		c.WindDebounce = d
	}
	if v, ok := os.LookupEnv("WEATHER_RAIN_DEBOUNCE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("WEATHER_RAIN_DEBOUNCE: %w", err)
		}
		c.RainDebounce = d
	}
	return nil
}

// Validate rejects a setup the accumulator cannot run with. The wind and rain
// reed switches need distinct edge capable pins.
func (c Config) Validate() error {
	if !slices.Contains(EdgePins, c.WindPin) {
		return fmt.Errorf("wind pin %q: %w", c.WindPin, ErrPinConfig)
	}
	if !slices.Contains(EdgePins, c.RainPin) {
		return fmt.Errorf("rain pin %q: %w", c.RainPin, ErrPinConfig)
	}
	if c.WindPin == c.RainPin {
		return fmt.Errorf("wind and rain share %q: %w", c.WindPin, ErrPinConfig)
	}
	if c.WindDebounce <= 0 {
		return fmt.Errorf("wind: %w", ErrDebounceConfig)
	}
	if c.RainDebounce <= 0 {
		return fmt.Errorf("rain: %w", ErrDebounceConfig)
	}
	return nil
}
