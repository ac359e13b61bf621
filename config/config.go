// SPDX-License-Identifier: EPL-2.0

// Package config loads and persists voxswitch settings. Values come from
// defaults, then the config file, then VOXSWITCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/ik5/voxswitch/audio"
	"github.com/ik5/voxswitch/internal/logging"
)

// EnvPrefix prefixes environment overrides, e.g. VOXSWITCH_GAINS_MIC.
const EnvPrefix = "VOXSWITCH"

type Devices struct {
	Input   int `mapstructure:"input"`
	Output  int `mapstructure:"output"`
	Monitor int `mapstructure:"monitor"`
}

type Audio struct {
	SampleRate      int    `mapstructure:"sample_rate"`
	BlockSize       int    `mapstructure:"block_size"`
	QueueCapacity   int    `mapstructure:"queue_capacity"`
	MonitorCapacity int    `mapstructure:"monitor_capacity"`
	Resampler       string `mapstructure:"resampler"`
}

type Gains struct {
	Mic      float64 `mapstructure:"mic"`
	Playback float64 `mapstructure:"playback"`
	Monitor  float64 `mapstructure:"monitor"`
}

type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type Config struct {
	Devices Devices `mapstructure:"devices"`
	Audio   Audio   `mapstructure:"audio"`
	Gains   Gains   `mapstructure:"gains"`
	Music   string  `mapstructure:"music"`

	// Slots maps a soundboard slot id to a file. Viper folds keys to lower case.
	Slots    map[string]string `mapstructure:"slots"`
	Log      Log               `mapstructure:"log"`
	Watchdog time.Duration     `mapstructure:"watchdog"`

	v *viper.Viper
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("devices.input", -1)
	v.SetDefault("devices.output", -1)
	v.SetDefault("devices.monitor", -1)

	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.block_size", 512)
	v.SetDefault("audio.queue_capacity", 100)
	v.SetDefault("audio.monitor_capacity", 16)
	v.SetDefault("audio.resampler", string(audio.Cubic))

	v.SetDefault("gains.mic", 1.0)
	v.SetDefault("gains.playback", 0.8)
	v.SetDefault("gains.monitor", 1.0)

	v.SetDefault("music", "")
	v.SetDefault("slots", map[string]string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("watchdog", time.Second)
}

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path on top of the defaults. A missing file is not an error.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	c := &Config{v: v}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if c.Slots == nil {
		c.Slots = map[string]string{}
	}
	return c, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	for name, id := range map[string]int{
		"devices.input":   c.Devices.Input,
		"devices.output":  c.Devices.Output,
		"devices.monitor": c.Devices.Monitor,
	} {
		if id < -1 {
			errs = append(errs, fmt.Errorf("%s: %w", name, ErrInvalidDevice))
		}
	}

	for name, n := range map[string]int{
		"audio.sample_rate":      c.Audio.SampleRate,
		"audio.block_size":       c.Audio.BlockSize,
		"audio.queue_capacity":   c.Audio.QueueCapacity,
		"audio.monitor_capacity": c.Audio.MonitorCapacity,
	} {
		if n <= 0 {
			errs = append(errs, fmt.Errorf("%s: %w", name, ErrInvalidSize))
		}
	}

	for name, g := range map[string]float64{
		"gains.mic":      c.Gains.Mic,
		"gains.playback": c.Gains.Playback,
		"gains.monitor":  c.Gains.Monitor,
	} {
		if g < 0 || g > 1 {
			errs = append(errs, fmt.Errorf("%s: %w", name, ErrInvalidGain))
		}
	}

	if _, err := audio.ParseResamplerKind(c.Audio.Resampler); err != nil {
		errs = append(errs, fmt.Errorf("audio.resampler: %w", err))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Watchdog < 0 {
		errs = append(errs, fmt.Errorf("watchdog: %w", ErrInvalidSize))
	}

	return errors.Join(errs...)
}

// Resampler returns the parsed resampler kind, Cubic if invalid.
func (c *Config) Resampler() audio.ResamplerKind {
	kind, err := audio.ParseResamplerKind(c.Audio.Resampler)
	if err != nil {
		return audio.Cubic
	}
	return kind
}

// File is the config file Load was given, if any.
func (c *Config) File() string {
	if c.v == nil {
		return ""
	}
	return c.v.ConfigFileUsed()
}

// Watch calls fn with the new values each time the config file changes.
// Reloads that fail to decode or validate are logged and skipped.
func (c *Config) Watch(log zerolog.Logger, fn func(*Config)) {
	if c.v == nil || c.File() == "" {
		return
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		next, err := decode(c.v)
		if err == nil {
			err = next.Validate()
		}
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name).Msg("ignoring invalid config change")
			return
		}
		log.Info().Str("file", e.Name).Stringer("op", e.Op).Msg("config reloaded")
		fn(next)
	})
	c.v.WatchConfig()
}

// Save writes the current values to path. The format follows the extension,
// YAML when there is none.
func (c *Config) Save(path string) error {
	v := viper.New()
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}

	v.Set("devices.input", c.Devices.Input)
	v.Set("devices.output", c.Devices.Output)
	v.Set("devices.monitor", c.Devices.Monitor)
	v.Set("audio.sample_rate", c.Audio.SampleRate)
	v.Set("audio.block_size", c.Audio.BlockSize)
	v.Set("audio.queue_capacity", c.Audio.QueueCapacity)
	v.Set("audio.monitor_capacity", c.Audio.MonitorCapacity)
	v.Set("audio.resampler", c.Audio.Resampler)
	v.Set("gains.mic", c.Gains.Mic)
	v.Set("gains.playback", c.Gains.Playback)
	v.Set("gains.monitor", c.Gains.Monitor)
	v.Set("music", c.Music)
	v.Set("slots", c.Slots)
	v.Set("log.level", c.Log.Level)
	v.Set("log.file", c.Log.File)
	v.Set("watchdog", c.Watchdog.String())

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("saving config %s: %w", path, err)
	}
	return nil
}
