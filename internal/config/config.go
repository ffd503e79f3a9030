// Package config loads daemon configuration from a YAML file, an optional
// env file and ROTARY_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/rotary-dial/internal/gpio"
	"github.com/sweeney/rotary-dial/internal/power"
	"github.com/sweeney/rotary-dial/internal/scheduler"
)

// Config is the daemon configuration.
type Config struct {
	Dial    DialConfig    `yaml:"dial"`
	GPIO    GPIOConfig    `yaml:"gpio"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	HTTP    HTTPConfig    `yaml:"http"`
	Store   StoreConfig   `yaml:"store"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// DialConfig holds decoder timings and dial policy.
type DialConfig struct {
	SampleInterval   time.Duration `yaml:"sample_interval"`
	SettleWindow     time.Duration `yaml:"settle_window"`
	HoldThreshold    time.Duration `yaml:"hold_threshold"`
	Inactivity       time.Duration `yaml:"inactivity"` // one of 64ms, 128ms, 2s, 4s, 8s
	Reversed         bool          `yaml:"reversed"`
	SpecialFunctions bool          `yaml:"special_functions"`
}

// GPIOConfig selects the chip and BCM line offsets.
type GPIOConfig struct {
	Chip     string `yaml:"chip"`
	PinDial  int    `yaml:"pin_dial"`
	PinPulse int    `yaml:"pin_pulse"`
}

// MQTTConfig configures the broker connection. An empty broker disables MQTT.
type MQTTConfig struct {
	Broker    string        `yaml:"broker"`
	ClientID  string        `yaml:"client_id"`
	Heartbeat time.Duration `yaml:"heartbeat"` // 0 disables
}

// HTTPConfig configures the status server. An empty address disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// StoreConfig locates the speed dial database. An empty path keeps slots in memory.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Dial: DialConfig{
			SampleInterval:   100 * time.Microsecond,
			SettleWindow:     500 * time.Millisecond,
			HoldThreshold:    2 * time.Second,
			Inactivity:       4 * time.Second,
			SpecialFunctions: true,
		},
		GPIO: GPIOConfig{
			Chip:     gpio.DefaultChip,
			PinDial:  gpio.DefaultPinDial,
			PinPulse: gpio.DefaultPinPulse,
		},
		MQTT: MQTTConfig{
			Broker:    "tcp://192.168.1.200:1883",
			ClientID:  "rotary-dial",
			Heartbeat: 15 * time.Minute,
		},
		HTTP:    HTTPConfig{Addr: ":80"},
		Store:   StoreConfig{Path: "/var/lib/rotary-dial/slots.db"},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads the YAML file at path over the defaults. Environment
// variables in the file are expanded. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overwritten.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from ROTARY_* variables found by lookup
// (normally os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	dur("ROTARY_SAMPLE_INTERVAL", &c.Dial.SampleInterval)
	dur("ROTARY_SETTLE_WINDOW", &c.Dial.SettleWindow)
	dur("ROTARY_HOLD_THRESHOLD", &c.Dial.HoldThreshold)
	dur("ROTARY_INACTIVITY", &c.Dial.Inactivity)
	flag("ROTARY_REVERSED", &c.Dial.Reversed)
	flag("ROTARY_SPECIAL_FUNCTIONS", &c.Dial.SpecialFunctions)
	str("ROTARY_GPIO_CHIP", &c.GPIO.Chip)
	num("ROTARY_PIN_DIAL", &c.GPIO.PinDial)
	num("ROTARY_PIN_PULSE", &c.GPIO.PinPulse)
	str("ROTARY_BROKER", &c.MQTT.Broker)
	str("ROTARY_CLIENT_ID", &c.MQTT.ClientID)
	dur("ROTARY_HEARTBEAT", &c.MQTT.Heartbeat)
	str("ROTARY_HTTP_ADDR", &c.HTTP.Addr)
	str("ROTARY_DB_PATH", &c.Store.Path)
	flag("ROTARY_METRICS", &c.Metrics.Enabled)

	return errors.Join(errs...)
}

// Validate checks timings and pin assignments.
func (c Config) Validate() error {
	d := c.Dial
	if d.SampleInterval <= 0 {
		return fmt.Errorf("dial.sample_interval must be positive, got %v", d.SampleInterval)
	}
	if d.SettleWindow < d.SampleInterval {
		return fmt.Errorf("dial.settle_window %v shorter than sample interval %v", d.SettleWindow, d.SampleInterval)
	}
	if d.HoldThreshold < d.SettleWindow {
		return fmt.Errorf("dial.hold_threshold %v shorter than settle window %v", d.HoldThreshold, d.SettleWindow)
	}
	if _, err := power.ParseTimeoutClass(d.Inactivity); err != nil {
		return fmt.Errorf("dial.inactivity: %w", err)
	}
	if c.GPIO.Chip == "" {
		return errors.New("gpio.chip must be set")
	}
	if c.GPIO.PinDial < 0 || c.GPIO.PinPulse < 0 {
		return fmt.Errorf("gpio pins must be non-negative, got dial=%d pulse=%d", c.GPIO.PinDial, c.GPIO.PinPulse)
	}
	if c.GPIO.PinDial == c.GPIO.PinPulse {
		return fmt.Errorf("gpio.pin_dial and gpio.pin_pulse are both %d", c.GPIO.PinDial)
	}
	if c.MQTT.Heartbeat < 0 {
		return fmt.Errorf("mqtt.heartbeat must not be negative, got %v", c.MQTT.Heartbeat)
	}
	if c.MQTT.Broker != "" && c.MQTT.ClientID == "" {
		return errors.New("mqtt.client_id must be set when a broker is configured")
	}
	return nil
}

// Scheduler returns the dial loop configuration.
func (c Config) Scheduler() (scheduler.Config, error) {
	class, err := power.ParseTimeoutClass(c.Dial.Inactivity)
	if err != nil {
		return scheduler.Config{}, err
	}
	return scheduler.Config{
		SampleInterval:   c.Dial.SampleInterval,
		SettleWindow:     c.Dial.SettleWindow,
		HoldThreshold:    c.Dial.HoldThreshold,
		Inactivity:       class,
		Reversed:         c.Dial.Reversed,
		SpecialFunctions: c.Dial.SpecialFunctions,
	}, nil
}
